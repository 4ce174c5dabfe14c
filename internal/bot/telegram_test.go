package bot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"stx-trader/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"
)

type stubAnalyzer struct {
	report *domain.Report
	err    error
	got    string
}

func (s *stubAnalyzer) Analyze(_ context.Context, address string) (*domain.Report, error) {
	s.got = address
	if strings.TrimSpace(address) == "" {
		return nil, domain.ErrEmptyAddress
	}
	return s.report, s.err
}

type stubPrices domain.MarketSnapshot

func (s stubPrices) Latest(context.Context) domain.MarketSnapshot { return domain.MarketSnapshot(s) }

func TestStartTelegramBotSkipsWithoutToken(t *testing.T) {
	called := false
	orig := newBot
	t.Cleanup(func() { newBot = orig })
	newBot = func(tele.Settings) (*tele.Bot, error) {
		called = true
		return nil, errors.New("unexpected")
	}

	require.NoError(t, StartTelegramBot(context.Background(), "", &stubAnalyzer{}, stubPrices{}))
	assert.False(t, called)
}

func TestStartTelegramBotReportsCreateError(t *testing.T) {
	orig := newBot
	t.Cleanup(func() { newBot = orig })
	newBot = func(tele.Settings) (*tele.Bot, error) {
		return nil, errors.New("unauthorized")
	}

	err := StartTelegramBot(context.Background(), "token", &stubAnalyzer{}, stubPrices{})
	assert.ErrorContains(t, err, "unauthorized")
}

func TestAnalyzeReplyUsage(t *testing.T) {
	assert.Equal(t, "Usage: /analyze <STX address>", analyzeReply(context.Background(), &stubAnalyzer{}, nil))
}

func TestAnalyzeReplyRendersReport(t *testing.T) {
	a := &stubAnalyzer{report: &domain.Report{
		ID:        "run-1",
		Address:   "SP000EXAMPLE",
		CreatedAt: time.Now(),
		Results: []domain.TaskResult{
			{Kind: domain.TaskKindMarketRecommendation, Output: "Recommendation: BUY"},
			{Kind: domain.TaskKindBalanceReport, Balance: &domain.WalletBalance{Address: "SP000EXAMPLE", STXBalance: decimal.RequireFromString("2")}},
		},
	}}

	out := analyzeReply(context.Background(), a, []string{"SP000EXAMPLE"})
	assert.Equal(t, "SP000EXAMPLE", a.got)
	assert.Contains(t, out, "Analysis complete!")
	assert.Contains(t, out, "Market Recommendation: Recommendation: BUY")
	assert.Contains(t, out, "STX Balance: 2.000000 STX")
}

func TestAnalyzeReplyError(t *testing.T) {
	a := &stubAnalyzer{err: errors.New("run analysis: model down")}

	out := analyzeReply(context.Background(), a, []string{"SP000EXAMPLE"})
	assert.Equal(t, "An error occurred: run analysis: model down\nPlease check your inputs and try again.", out)
}

func TestPriceReply(t *testing.T) {
	out := priceReply(context.Background(), stubPrices{Name: "Stacks", Symbol: "STX", Price: "1.85", PercentChange24h: "-2.1", Volume24h: "9000", MarketCap: "2700000000"})
	assert.Contains(t, out, "Stacks (STX)")
	assert.Contains(t, out, "Price: $1.85")
	assert.Contains(t, out, "24h Change: -2.1%")

	assert.Equal(t, "Market data is unavailable right now.", priceReply(context.Background(), stubPrices{}))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "abcde\n…", truncate("abcdefgh", 5))
}
