package domain

// MarketSnapshot holds the latest STX quote fields exactly as the
// market-data API returned them. The zero value means "no data".
type MarketSnapshot struct {
	Name                  string `json:"name"`
	Symbol                string `json:"symbol"`
	Price                 string `json:"stx_price"`
	MarketCap             string `json:"market_cap"`
	Volume24h             string `json:"volume_24h"`
	VolumeChange24h       string `json:"volume_change_24h"`
	PercentChange1h       string `json:"percent_change_1h"`
	PercentChange24h      string `json:"percent_change_24h"`
	PercentChange7d       string `json:"percent_change_7d"`
	PercentChange30d      string `json:"percent_change_30d"`
	MarketCapDominance    string `json:"market_cap_dominance"`
	FullyDilutedMarketCap string `json:"fully_diluted_market_cap"`
	LastUpdated           string `json:"last_updated"`
	CirculatingSupply     string `json:"stx_circulating_supply"`
}

// SnapshotFields lists the mapping keys in display order.
var SnapshotFields = []string{
	"name",
	"symbol",
	"stx_price",
	"market_cap",
	"volume_24h",
	"volume_change_24h",
	"percent_change_1h",
	"percent_change_24h",
	"percent_change_7d",
	"percent_change_30d",
	"market_cap_dominance",
	"fully_diluted_market_cap",
	"last_updated",
	"stx_circulating_supply",
}

// Map returns the flat field mapping. An empty snapshot yields an empty map.
func (s MarketSnapshot) Map() map[string]string {
	if s.IsEmpty() {
		return map[string]string{}
	}
	return map[string]string{
		"name":                     s.Name,
		"symbol":                   s.Symbol,
		"stx_price":                s.Price,
		"market_cap":               s.MarketCap,
		"volume_24h":               s.Volume24h,
		"volume_change_24h":        s.VolumeChange24h,
		"percent_change_1h":        s.PercentChange1h,
		"percent_change_24h":       s.PercentChange24h,
		"percent_change_7d":        s.PercentChange7d,
		"percent_change_30d":       s.PercentChange30d,
		"market_cap_dominance":     s.MarketCapDominance,
		"fully_diluted_market_cap": s.FullyDilutedMarketCap,
		"last_updated":             s.LastUpdated,
		"stx_circulating_supply":   s.CirculatingSupply,
	}
}

func (s MarketSnapshot) IsEmpty() bool {
	return s == MarketSnapshot{}
}
