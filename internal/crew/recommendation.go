package crew

import (
	"regexp"

	"stx-trader/internal/domain"
)

var (
	labelledAction = regexp.MustCompile(`(?i)recommend(?:ation|ed action)?\W{0,6}(buy|sell|hold)\b`)
	shoutedAction  = regexp.MustCompile(`\b(BUY|SELL|HOLD)\b`)
)

// ExtractRecommendation finds the action an analyst settled on. A labelled
// "Recommendation: X" wins, the last one if repeated; otherwise the first
// upper-case action word. Returns "" if none is found.
func ExtractRecommendation(text string) domain.Recommendation {
	if m := labelledAction.FindAllStringSubmatch(text, -1); len(m) > 0 {
		return domain.ParseRecommendation(m[len(m)-1][1])
	}
	if m := shoutedAction.FindStringSubmatch(text); m != nil {
		return domain.ParseRecommendation(m[1])
	}
	return ""
}
