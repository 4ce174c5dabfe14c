package domain

import "strings"

// Asset symbol and display name the workflow reports on.
const (
	STXSymbol = "STX"
	STXName   = "Stacks"
)

// MicroUnitExponent is the number of decimal places between micro-STX and STX.
const MicroUnitExponent = 6

type Recommendation string

const (
	RecommendationBuy  Recommendation = "BUY"
	RecommendationSell Recommendation = "SELL"
	RecommendationHold Recommendation = "HOLD"
)

// ParseRecommendation normalizes a free-form action word. Unknown words yield "".
func ParseRecommendation(s string) Recommendation {
	switch strings.ToUpper(strings.Trim(strings.TrimSpace(s), "*_.:!")) {
	case "BUY":
		return RecommendationBuy
	case "SELL":
		return RecommendationSell
	case "HOLD":
		return RecommendationHold
	}
	return ""
}
