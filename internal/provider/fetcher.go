package provider

import (
	"context"

	"stx-trader/internal/domain"
	"stx-trader/internal/metrics"
	"stx-trader/internal/run"
	"stx-trader/pkg/logger"
)

type QuoteSource interface {
	FetchQuote(ctx context.Context) (domain.MarketSnapshot, error)
}

type BalanceSource interface {
	FetchBalances(ctx context.Context, address string) (domain.WalletBalance, error)
}

// PriceFetcher turns quote failures into a run notice and an empty snapshot.
type PriceFetcher struct {
	source QuoteSource
}

func NewPriceFetcher(source QuoteSource) *PriceFetcher {
	return &PriceFetcher{source: source}
}

// Latest never fails; an empty snapshot means no data.
func (f *PriceFetcher) Latest(ctx context.Context) domain.MarketSnapshot {
	snapshot, err := f.source.FetchQuote(ctx)
	metrics.RecordUpstream("coinmarketcap", err)
	if err != nil {
		logger.Warnf("latest price unavailable: %v", err)
		run.FromContext(ctx).Notify("price", "Error fetching latest price: %v", err)
		return domain.MarketSnapshot{}
	}
	return snapshot
}

// BalanceFetcher turns balance failures into a run notice and an empty
// balance, and records successful balances on the run.
type BalanceFetcher struct {
	source BalanceSource
}

func NewBalanceFetcher(source BalanceSource) *BalanceFetcher {
	return &BalanceFetcher{source: source}
}

func (f *BalanceFetcher) Balance(ctx context.Context, address string) domain.WalletBalance {
	b, err := f.source.FetchBalances(ctx, address)
	metrics.RecordUpstream("hiro", err)
	if err != nil {
		logger.Warnf("balance unavailable for %s: %v", address, err)
		run.FromContext(ctx).Notify("balance", "Error fetching balance: %v", err)
		return domain.WalletBalance{}
	}
	run.FromContext(ctx).SetBalance(b)
	return b
}
