package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"stx-trader/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func newTestHiro(t *testing.T, handler http.HandlerFunc) *HiroProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHiroProvider(trace.NewNoopTracerProvider().Tracer("test"), srv.URL, defaultTimeout)
}

func TestHiroFetchBalances(t *testing.T) {
	body, err := os.ReadFile("testdata/hiro_balances.json")
	require.NoError(t, err)

	p := newTestHiro(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/extended/v1/address/SP000EXAMPLE/balances", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	})

	b, err := p.FetchBalances(context.Background(), "SP000EXAMPLE")
	require.NoError(t, err)
	assert.Equal(t, "SP000EXAMPLE", b.Address)
	assert.True(t, b.STXBalance.Equal(decimal.RequireFromString("1.5")), "got %s", b.STXBalance)

	require.Len(t, b.FungibleTokens, 1)
	for _, h := range b.FungibleTokens {
		assert.Equal(t, domain.Amount("2500000"), h.Balance, "fungible balances stay in micro-units")
	}
	require.Len(t, b.NFTHoldings, 1)
	for _, h := range b.NFTHoldings {
		assert.Equal(t, domain.Amount("2"), h.Count)
	}
}

func TestHiroFetchBalancesNumericAndMissing(t *testing.T) {
	p := newTestHiro(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"stx":{"balance":2000000}}`))
	})

	b, err := p.FetchBalances(context.Background(), "SP1")
	require.NoError(t, err)
	assert.Equal(t, "2.000000", b.STXBalance.StringFixed(6))
	assert.NotNil(t, b.NFTHoldings)
	assert.NotNil(t, b.FungibleTokens)

	p = newTestHiro(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	b, err = p.FetchBalances(context.Background(), "SP2")
	require.NoError(t, err)
	assert.True(t, b.STXBalance.IsZero())
}

func TestHiroFetchBalancesNotFound(t *testing.T) {
	p := newTestHiro(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
	})

	b, err := p.FetchBalances(context.Background(), "bogus")
	assert.ErrorIs(t, err, domain.ErrUpstreamStatus)
	assert.Contains(t, err.Error(), "hiro API error 404")
	assert.True(t, b.IsEmpty())
}

func TestHiroFetchBalancesMalformed(t *testing.T) {
	p := newTestHiro(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"stx":{"balance":"abc"}}`))
	})

	_, err := p.FetchBalances(context.Background(), "SP1")
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)

	p = newTestHiro(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})
	_, err = p.FetchBalances(context.Background(), "SP1")
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}
