package tools

import (
	"context"
	"strings"

	"stx-trader/internal/domain"

	"github.com/cloudwego/eino/schema"
)

const (
	BalanceToolName = "get_address_balance_detailed"
	PriceToolName   = "get_latest_stx_price"
)

type PriceSource interface {
	Latest(ctx context.Context) domain.MarketSnapshot
}

type BalanceSource interface {
	Balance(ctx context.Context, address string) domain.WalletBalance
}

type BalanceInput struct {
	Address string `json:"address" jsonschema:"the Stacks (STX) wallet address to look up"`
}

// BalanceOutput is the wallet balance, or an error note when the indexer
// could not be read.
type BalanceOutput struct {
	*domain.WalletBalance
	Error string `json:"error,omitempty"`
}

type PriceInput struct{}

type PriceOutput struct {
	*domain.MarketSnapshot
	Error string `json:"error,omitempty"`
}

func NewBalanceTool(balances BalanceSource) *Tool {
	return newTool(
		BalanceToolName,
		"Get Address Balance Detailed",
		"Fetch detailed balance information for the specified Stacks address using Hiro API.",
		map[string]*schema.ParameterInfo{
			"address": {
				Type:     schema.String,
				Desc:     "The Stacks (STX) wallet address",
				Required: true,
			},
		},
		func(ctx context.Context, in BalanceInput) (BalanceOutput, error) {
			b := balances.Balance(ctx, strings.TrimSpace(in.Address))
			if b.IsEmpty() {
				return BalanceOutput{Error: "balance unavailable for " + in.Address}, nil
			}
			return BalanceOutput{WalletBalance: &b}, nil
		},
	)
}

func NewPriceTool(prices PriceSource) *Tool {
	return newTool(
		PriceToolName,
		"Get Latest STX Price",
		"Fetch the latest STX token price and market metrics from CoinMarketCap.",
		map[string]*schema.ParameterInfo{},
		func(ctx context.Context, _ PriceInput) (PriceOutput, error) {
			s := prices.Latest(ctx)
			if s.IsEmpty() {
				return PriceOutput{Error: "market data unavailable"}, nil
			}
			return PriceOutput{MarketSnapshot: &s}, nil
		},
	)
}

// NewDefaultRegistry builds the registry of every tool the service offers.
func NewDefaultRegistry(prices PriceSource, balances BalanceSource) (*Registry, error) {
	r := NewRegistry()
	for _, t := range []*Tool{NewBalanceTool(balances), NewPriceTool(prices)} {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}
