package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"stx-trader/internal/domain"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	HiroBaseURL      = "https://api.hiro.so"
	hiroBalancesPath = "/extended/v1/address/{address}/balances"
)

// HiroProvider reads address balances from the Hiro Stacks indexer.
type HiroProvider struct {
	client *resty.Client
	tracer trace.Tracer
}

func NewHiroProvider(tracer trace.Tracer, baseURL string, timeout time.Duration) *HiroProvider {
	if baseURL == "" {
		baseURL = HiroBaseURL
	}
	return &HiroProvider{
		client: newRestyClient(baseURL, timeout),
		tracer: tracer,
	}
}

type hiroBalancesResponse struct {
	STX struct {
		Balance domain.Amount `json:"balance"`
	} `json:"stx"`
	NonFungibleTokens map[string]domain.NFTHolding      `json:"non_fungible_tokens"`
	FungibleTokens    map[string]domain.FungibleHolding `json:"fungible_tokens"`
}

// FetchBalances returns the address's STX balance in whole STX along with
// its NFT and fungible holdings as reported. The address is not validated.
func (p *HiroProvider) FetchBalances(ctx context.Context, address string) (domain.WalletBalance, error) {
	ctx, span := p.tracer.Start(ctx, "hiro.fetch-balances")
	defer span.End()
	span.SetAttributes(attribute.String("stx.address", address))

	req := p.client.R().SetPathParam("address", address)
	body, err := doGet(ctx, "hiro", req, hiroBalancesPath)
	if err != nil {
		return domain.WalletBalance{}, fmt.Errorf("fetch balances for %s: %w", address, err)
	}

	var raw hiroBalancesResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.WalletBalance{}, fmt.Errorf("parse balances for %s: %w: %v", address, domain.ErrMalformedResponse, err)
	}

	micro, err := raw.STX.Balance.Decimal()
	if err != nil {
		return domain.WalletBalance{}, fmt.Errorf("parse stx balance %q: %w", raw.STX.Balance, domain.ErrMalformedResponse)
	}

	b := domain.WalletBalance{
		Address:        address,
		STXBalance:     domain.MicroToSTX(micro),
		NFTHoldings:    raw.NonFungibleTokens,
		FungibleTokens: raw.FungibleTokens,
	}
	if b.NFTHoldings == nil {
		b.NFTHoldings = map[string]domain.NFTHolding{}
	}
	if b.FungibleTokens == nil {
		b.FungibleTokens = map[string]domain.FungibleHolding{}
	}
	return b, nil
}
