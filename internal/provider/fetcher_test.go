package provider

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"stx-trader/internal/domain"
	"stx-trader/internal/run"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type quoteFunc func(ctx context.Context) (domain.MarketSnapshot, error)

func (f quoteFunc) FetchQuote(ctx context.Context) (domain.MarketSnapshot, error) { return f(ctx) }

type balanceFunc func(ctx context.Context, address string) (domain.WalletBalance, error)

func (f balanceFunc) FetchBalances(ctx context.Context, address string) (domain.WalletBalance, error) {
	return f(ctx, address)
}

func newRun(t *testing.T) (*run.Context, context.Context) {
	t.Helper()
	rc, err := run.New("SP1")
	require.NoError(t, err)
	return rc, run.WithContext(context.Background(), rc)
}

func TestPriceFetcherDegradesToEmpty(t *testing.T) {
	rc, ctx := newRun(t)
	f := NewPriceFetcher(quoteFunc(func(context.Context) (domain.MarketSnapshot, error) {
		return domain.MarketSnapshot{Name: "partial"}, errors.New("dial tcp: connection refused")
	}))

	s := f.Latest(ctx)
	assert.True(t, s.IsEmpty())
	assert.Empty(t, s.Map())

	notices := rc.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, "price", notices[0].Source)
	assert.Contains(t, notices[0].Message, "Error fetching latest price")
}

func TestPriceFetcherWithoutRun(t *testing.T) {
	f := NewPriceFetcher(quoteFunc(func(context.Context) (domain.MarketSnapshot, error) {
		return domain.MarketSnapshot{}, errors.New("boom")
	}))
	assert.True(t, f.Latest(context.Background()).IsEmpty())
}

func TestBalanceFetcherRecordsBalance(t *testing.T) {
	rc, ctx := newRun(t)
	f := NewBalanceFetcher(balanceFunc(func(_ context.Context, address string) (domain.WalletBalance, error) {
		return domain.WalletBalance{Address: address, STXBalance: decimal.NewFromInt(2)}, nil
	}))

	b := f.Balance(ctx, "SP1")
	assert.Equal(t, "SP1", b.Address)
	assert.Equal(t, "SP1", rc.Balance().Address)
	assert.Empty(t, rc.Notices())
}

func TestBalanceFetcherNotFound(t *testing.T) {
	rc, ctx := newRun(t)
	f := NewBalanceFetcher(balanceFunc(func(context.Context, string) (domain.WalletBalance, error) {
		return domain.WalletBalance{}, &domain.StatusError{Upstream: "hiro", Code: http.StatusNotFound, Body: "not found"}
	}))

	b := f.Balance(ctx, "bogus")
	assert.True(t, b.IsEmpty())
	assert.True(t, rc.Balance().IsEmpty())
	require.Len(t, rc.Notices(), 1)
	assert.Equal(t, "Error fetching balance: hiro API error 404: not found", rc.Notices()[0].Message)
}
