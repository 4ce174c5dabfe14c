package crew

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"stx-trader/internal/domain"
	"stx-trader/internal/tools"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

// scriptedModel answers like a model that calls the balance tool once when
// it has tools and otherwise gives a HOLD recommendation.
type scriptedModel struct {
	mu    *sync.Mutex
	calls *int
	tools []*schema.ToolInfo
	fail  error
}

func newScriptedModel() *scriptedModel {
	return &scriptedModel{mu: &sync.Mutex{}, calls: new(int)}
}

func (m *scriptedModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	*m.calls++
	m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}

	usage := &schema.ResponseMeta{Usage: &schema.TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}}
	last := input[len(input)-1]

	switch {
	case len(m.tools) == 0:
		return &schema.Message{Role: schema.Assistant, Content: "Momentum is flat.\nRecommendation: HOLD", ResponseMeta: usage}, nil
	case last.Role == schema.Tool:
		return &schema.Message{Role: schema.Assistant, Content: "Balance report: " + last.Content, ResponseMeta: usage}, nil
	default:
		address := strings.TrimSpace(last.Content[strings.LastIndex(last.Content, "**Address:**")+len("**Address:**"):])
		if i := strings.Index(address, "\n"); i >= 0 {
			address = address[:i]
		}
		return &schema.Message{
			Role: schema.Assistant,
			ToolCalls: []schema.ToolCall{{
				ID:   "call_1",
				Type: "function",
				Function: schema.FunctionCall{
					Name:      tools.BalanceToolName,
					Arguments: fmt.Sprintf(`{"address":%q}`, address),
				},
			}},
			ResponseMeta: usage,
		}, nil
	}
}

func (m *scriptedModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (m *scriptedModel) WithTools(ts []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return &scriptedModel{mu: m.mu, calls: m.calls, tools: ts, fail: m.fail}, nil
}

type stubPrices struct{}

func (stubPrices) Latest(context.Context) domain.MarketSnapshot { return domain.MarketSnapshot{} }

type stubBalances struct {
	mu        sync.Mutex
	addresses []string
}

func (s *stubBalances) Balance(_ context.Context, address string) domain.WalletBalance {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addresses = append(s.addresses, address)
	return domain.WalletBalance{Address: address, STXBalance: decimal.NewFromInt(2)}
}

func newTestCrew(t *testing.T, m *scriptedModel) (*Crew, *stubBalances) {
	t.Helper()
	balances := &stubBalances{}
	reg, err := tools.NewDefaultRegistry(stubPrices{}, balances)
	require.NoError(t, err)
	return New(trace.NewNoopTracerProvider().Tracer("test"), m, reg, 8), balances
}

func TestKickoffRunsTasksInOrder(t *testing.T) {
	m := newScriptedModel()
	c, balances := newTestCrew(t, m)

	out, err := c.Kickoff(context.Background(), Plan(domain.MarketSnapshot{}, "SP000EXAMPLE", false))
	require.NoError(t, err)
	require.Len(t, out.Results, 2)

	analyst := out.Results[0]
	assert.Equal(t, domain.TaskKindMarketRecommendation, analyst.Kind)
	assert.Equal(t, AnalystRoleName, analyst.Role)
	assert.Equal(t, domain.RecommendationHold, analyst.Recommendation)

	balance := out.Results[1]
	assert.Equal(t, domain.TaskKindBalanceReport, balance.Kind)
	assert.Contains(t, balance.Output, `"stx_balance":"2"`)
	assert.Equal(t, []string{"SP000EXAMPLE"}, balances.addresses)

	assert.Equal(t, 3, *m.calls)
	assert.Equal(t, 45, out.Usage.TotalTokens)
	assert.Equal(t, 30, out.Usage.PromptTokens)
	assert.Equal(t, 3, out.Usage.SuccessfulRequests)
}

func TestKickoffWrapsModelFailure(t *testing.T) {
	m := newScriptedModel()
	m.fail = errors.New("503 upstream overloaded")
	c, _ := newTestCrew(t, m)

	out, err := c.Kickoff(context.Background(), Plan(domain.MarketSnapshot{}, "SP1", true))
	assert.Nil(t, out)
	assert.ErrorIs(t, err, domain.ErrOrchestratorFailed)
	assert.ErrorContains(t, err, "503 upstream overloaded")
	assert.ErrorContains(t, err, AnalystRoleName)
}

func TestKickoffUnknownTool(t *testing.T) {
	c, _ := newTestCrew(t, newScriptedModel())
	tasks := Plan(domain.MarketSnapshot{}, "SP1", false)
	tasks[1].Role.Tools = []string{"missing_tool"}

	_, err := c.Kickoff(context.Background(), tasks)
	assert.ErrorIs(t, err, domain.ErrToolNotFound)
}
