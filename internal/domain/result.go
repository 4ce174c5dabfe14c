package domain

import "encoding/json"

// TaskKind discriminates what a task's output carries.
type TaskKind string

const (
	TaskKindUnknown              TaskKind = ""
	TaskKindMarketRecommendation TaskKind = "market_recommendation"
	TaskKindBalanceReport        TaskKind = "balance_report"
)

// TaskResult is one role's output tagged with its kind. Exactly one of
// the payload fields is meaningful, selected by Kind.
type TaskResult struct {
	Kind   TaskKind `json:"kind"`
	Role   string   `json:"role"`
	Output string   `json:"output"`

	Recommendation Recommendation `json:"recommendation,omitempty"`
	Balance        *WalletBalance `json:"balance,omitempty"`
}

type TokenUsage struct {
	PromptTokens       int `json:"prompt_tokens"`
	CompletionTokens   int `json:"completion_tokens"`
	TotalTokens        int `json:"total_tokens"`
	SuccessfulRequests int `json:"successful_requests"`
}

func (u *TokenUsage) Add(prompt, completion, total int) {
	u.PromptTokens += prompt
	u.CompletionTokens += completion
	u.TotalTokens += total
	u.SuccessfulRequests++
}

// MarshalOutput renders a structured payload the way an agent would print it.
func MarshalOutput(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return string(b)
}
