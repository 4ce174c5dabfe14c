// Package present turns a finished report into display widgets and renders
// them for the web page, the terminal and chat.
package present

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"stx-trader/internal/crew"
	"stx-trader/internal/domain"

	"github.com/dustin/go-humanize"
	"github.com/tidwall/gjson"
)

type WidgetKind string

const (
	WidgetRecommendation WidgetKind = "recommendation"
	WidgetBalance        WidgetKind = "balance"
	WidgetOutput         WidgetKind = "output"
)

// Holding is one display line of a balance section.
type Holding struct {
	Name  string
	Value string
}

type Widget struct {
	Kind WidgetKind
	Role string
	Text string

	Recommendation domain.Recommendation

	STXBalance string
	NFTs       []Holding
	Fungibles  []Holding
}

// View is everything a renderer needs for one finished run.
type View struct {
	RunID    string
	Address  string
	Filename string
	Usage    domain.TokenUsage
	Notices  []string
	Widgets  []Widget
}

var actionWord = regexp.MustCompile(`(?i)\b(buy|sell|hold)\b`)

// Classify decides how a result should be shown. Tagged results keep their
// kind. Untagged output is a balance report when it contains a JSON object
// with a stx_balance key, a recommendation when it mentions buy, sell or
// hold, and plain output otherwise. The balance check runs first so an
// output matching both is shown as a balance.
func Classify(r domain.TaskResult) (domain.TaskKind, *domain.WalletBalance) {
	switch r.Kind {
	case domain.TaskKindBalanceReport:
		if r.Balance != nil && !r.Balance.IsEmpty() {
			return r.Kind, r.Balance
		}
		if b, ok := balanceFromOutput(r.Output); ok {
			return r.Kind, b
		}
		return r.Kind, nil
	case domain.TaskKindMarketRecommendation:
		return r.Kind, nil
	}

	if b, ok := balanceFromOutput(r.Output); ok {
		return domain.TaskKindBalanceReport, b
	}
	if actionWord.MatchString(r.Output) {
		return domain.TaskKindMarketRecommendation, nil
	}
	return domain.TaskKindUnknown, nil
}

func balanceFromOutput(out string) (*domain.WalletBalance, bool) {
	start := strings.Index(out, "{")
	end := strings.LastIndex(out, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	raw := out[start : end+1]
	if !gjson.Valid(raw) || !gjson.Get(raw, "stx_balance").Exists() {
		return nil, false
	}
	var b domain.WalletBalance
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		return nil, false
	}
	return &b, true
}

// Build lays out the report's results in order.
func Build(r *domain.Report) View {
	v := View{
		RunID:    r.ID,
		Address:  r.Address,
		Filename: r.Filename(),
		Usage:    r.Usage,
	}
	for _, n := range r.Notices {
		v.Notices = append(v.Notices, n.Message)
	}
	for _, res := range r.Results {
		v.Widgets = append(v.Widgets, widgetFor(res))
	}
	return v
}

func widgetFor(res domain.TaskResult) Widget {
	kind, balance := Classify(res)
	w := Widget{Role: res.Role, Text: strings.TrimSpace(res.Output)}

	switch {
	case kind == domain.TaskKindMarketRecommendation:
		w.Kind = WidgetRecommendation
		w.Recommendation = res.Recommendation
		if w.Recommendation == "" {
			w.Recommendation = crew.ExtractRecommendation(res.Output)
		}
	case kind == domain.TaskKindBalanceReport && balance != nil:
		w.Kind = WidgetBalance
		w.STXBalance = balance.STXBalance.StringFixed(6)
		w.NFTs = nftLines(balance.NFTHoldings)
		w.Fungibles = fungibleLines(balance.FungibleTokens)
	default:
		w.Kind = WidgetOutput
	}
	return w
}

func nftLines(m map[string]domain.NFTHolding) []Holding {
	out := make([]Holding, 0, len(m))
	for _, name := range sortedKeys(m) {
		out = append(out, Holding{Name: name, Value: humanCount(m[name].Count)})
	}
	return out
}

// fungibleLines converts each raw micro-unit balance exactly once.
func fungibleLines(m map[string]domain.FungibleHolding) []Holding {
	out := make([]Holding, 0, len(m))
	for _, name := range sortedKeys(m) {
		out = append(out, Holding{Name: name, Value: FungibleAmount(m[name].Balance)})
	}
	return out
}

// FungibleAmount formats a raw micro-unit token balance in whole units.
// Unparseable balances are shown as received.
func FungibleAmount(raw domain.Amount) string {
	d, err := raw.Decimal()
	if err != nil {
		return string(raw)
	}
	return domain.MicroToSTX(d).StringFixed(6)
}

func humanCount(a domain.Amount) string {
	d, err := a.Decimal()
	if err != nil || !d.IsInteger() {
		return string(a)
	}
	return humanize.Comma(d.IntPart())
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
