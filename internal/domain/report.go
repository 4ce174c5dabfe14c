package domain

import (
	"fmt"
	"strings"
	"time"
)

// ReportTimestampLayout formats the download file name prefix.
const ReportTimestampLayout = "20060102_150405"

type Notice struct {
	Source  string    `json:"source"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Report is the combined output of one analysis run.
type Report struct {
	ID        string         `json:"id"`
	Address   string         `json:"address"`
	CreatedAt time.Time      `json:"created_at"`
	Snapshot  MarketSnapshot `json:"snapshot"`
	Results   []TaskResult   `json:"results"`
	Usage     TokenUsage     `json:"token_usage"`
	Notices   []Notice       `json:"notices,omitempty"`
}

func (r *Report) Filename() string {
	return fmt.Sprintf("%s_stx_trader_analysis.txt", r.CreatedAt.Format(ReportTimestampLayout))
}

// Text renders the raw combined run output for download.
func (r *Report) Text() string {
	var b strings.Builder
	b.WriteString("STX Trader Analysis\n")
	fmt.Fprintf(&b, "Run: %s\n", r.ID)
	fmt.Fprintf(&b, "Address: %s\n", r.Address)
	fmt.Fprintf(&b, "Generated: %s\n", r.CreatedAt.UTC().Format(time.RFC3339))

	for i, res := range r.Results {
		fmt.Fprintf(&b, "\n[%d] %s (%s)\n", i+1, res.Role, res.Kind)
		b.WriteString(strings.TrimSpace(res.Output))
		b.WriteString("\n")
		if res.Recommendation != "" {
			fmt.Fprintf(&b, "recommendation: %s\n", res.Recommendation)
		}
		if res.Balance != nil && !res.Balance.IsEmpty() {
			b.WriteString(MarshalOutput(res.Balance))
			b.WriteString("\n")
		}
	}

	fmt.Fprintf(&b, "\nToken usage: total=%d prompt=%d completion=%d requests=%d\n",
		r.Usage.TotalTokens, r.Usage.PromptTokens, r.Usage.CompletionTokens, r.Usage.SuccessfulRequests)

	if len(r.Notices) > 0 {
		b.WriteString("\nNotices:\n")
		for _, n := range r.Notices {
			fmt.Fprintf(&b, "- %s: %s\n", n.Source, n.Message)
		}
	}
	return b.String()
}
