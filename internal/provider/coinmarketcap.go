package provider

import (
	"context"
	"fmt"
	"time"

	"stx-trader/internal/domain"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/trace"
)

const (
	CoinMarketCapBaseURL = "https://pro-api.coinmarketcap.com"
	cmcQuotesPath        = "/v1/cryptocurrency/quotes/latest"
	cmcAPIKeyHeader      = "X-CMC_PRO_API_KEY"
)

// CoinMarketCapProvider fetches the latest STX quote from CoinMarketCap.
type CoinMarketCapProvider struct {
	client *resty.Client
	apiKey string
	symbol string
	tracer trace.Tracer
}

func NewCoinMarketCapProvider(tracer trace.Tracer, baseURL, apiKey string, timeout time.Duration) *CoinMarketCapProvider {
	if baseURL == "" {
		baseURL = CoinMarketCapBaseURL
	}
	return &CoinMarketCapProvider{
		client: newRestyClient(baseURL, timeout),
		apiKey: apiKey,
		symbol: domain.STXSymbol,
		tracer: tracer,
	}
}

// FetchQuote returns the quote fields copied verbatim from the response.
// A missing field is an error: callers never see a half-filled snapshot.
func (p *CoinMarketCapProvider) FetchQuote(ctx context.Context) (domain.MarketSnapshot, error) {
	ctx, span := p.tracer.Start(ctx, "coinmarketcap.fetch-quote")
	defer span.End()

	req := p.client.R().
		SetHeader(cmcAPIKeyHeader, p.apiKey).
		SetQueryParam("symbol", p.symbol)

	body, err := doGet(ctx, "coinmarketcap", req, cmcQuotesPath)
	if err != nil {
		return domain.MarketSnapshot{}, fmt.Errorf("fetch quote: %w", err)
	}

	snapshot, err := parseQuote(body, p.symbol)
	if err != nil {
		return domain.MarketSnapshot{}, fmt.Errorf("parse quote: %w", err)
	}
	return snapshot, nil
}

func parseQuote(body []byte, symbol string) (domain.MarketSnapshot, error) {
	if !gjson.ValidBytes(body) {
		return domain.MarketSnapshot{}, fmt.Errorf("%w: invalid json", domain.ErrMalformedResponse)
	}

	asset := gjson.GetBytes(body, "data."+symbol)
	if !asset.Exists() {
		return domain.MarketSnapshot{}, fmt.Errorf("%w: missing data.%s", domain.ErrMalformedResponse, symbol)
	}
	usd := asset.Get("quote.USD")

	var s domain.MarketSnapshot
	fields := []struct {
		src  gjson.Result
		path string
		dst  *string
	}{
		{asset, "name", &s.Name},
		{asset, "symbol", &s.Symbol},
		{usd, "price", &s.Price},
		{usd, "market_cap", &s.MarketCap},
		{usd, "volume_24h", &s.Volume24h},
		{usd, "volume_change_24h", &s.VolumeChange24h},
		{usd, "percent_change_1h", &s.PercentChange1h},
		{usd, "percent_change_24h", &s.PercentChange24h},
		{usd, "percent_change_7d", &s.PercentChange7d},
		{usd, "percent_change_30d", &s.PercentChange30d},
		{usd, "market_cap_dominance", &s.MarketCapDominance},
		{usd, "fully_diluted_market_cap", &s.FullyDilutedMarketCap},
		{usd, "last_updated", &s.LastUpdated},
		{asset, "circulating_supply", &s.CirculatingSupply},
	}
	for _, f := range fields {
		r := f.src.Get(f.path)
		if !r.Exists() {
			return domain.MarketSnapshot{}, fmt.Errorf("%w: missing %s", domain.ErrMalformedResponse, f.path)
		}
		*f.dst = verbatim(r)
	}
	return s, nil
}

// verbatim returns the value as it appeared in the document: numbers keep
// their exact text, strings are unquoted, null is blank.
func verbatim(r gjson.Result) string {
	switch r.Type {
	case gjson.String:
		return r.Str
	case gjson.Null:
		return ""
	default:
		return r.Raw
	}
}
