// Package crew runs the two agent roles of an analysis on cloudwego/eino.
package crew

import (
	"context"
	"fmt"

	"stx-trader/internal/domain"
	"stx-trader/internal/tools"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/flow/agent"
	"github.com/cloudwego/eino/flow/agent/react"
	"github.com/cloudwego/eino/schema"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Role describes an agent: who it is, what it wants and which registry
// tools it may call.
type Role struct {
	Name      string
	Goal      string
	Backstory string
	Verbose   bool
	Tools     []string
}

// Task binds a description to the role that performs it. Kind tags the
// task's result.
type Task struct {
	Kind           domain.TaskKind
	Role           Role
	Description    string
	ExpectedOutput string
}

// Output holds per-task results in task order plus aggregate token usage.
type Output struct {
	Results []domain.TaskResult
	Usage   domain.TokenUsage
}

// Orchestrator runs tasks to completion.
type Orchestrator interface {
	Kickoff(ctx context.Context, tasks []Task) (*Output, error)
}

type Crew struct {
	tracer   trace.Tracer
	model    model.ToolCallingChatModel
	registry *tools.Registry
	maxStep  int
}

func New(tracer trace.Tracer, chatModel model.ToolCallingChatModel, registry *tools.Registry, maxStep int) *Crew {
	if maxStep <= 0 {
		maxStep = 12
	}
	return &Crew{
		tracer:   tracer,
		model:    chatModel,
		registry: registry,
		maxStep:  maxStep,
	}
}

// Kickoff runs tasks sequentially. Each task sees the outputs of the tasks
// before it. The first failing task aborts the run.
func (c *Crew) Kickoff(ctx context.Context, tasks []Task) (*Output, error) {
	ctx, span := c.tracer.Start(ctx, "crew.kickoff")
	defer span.End()
	span.SetAttributes(attribute.Int("crew.tasks", len(tasks)))

	usage := &usageCollector{}
	out := &Output{Results: make([]domain.TaskResult, 0, len(tasks))}
	for _, t := range tasks {
		res, err := c.runTask(ctx, t, out.Results, usage.handler(t.Role))
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrOrchestratorFailed, t.Role.Name, err)
		}
		out.Results = append(out.Results, res)
	}
	out.Usage = usage.total()
	return out, nil
}

func (c *Crew) runTask(ctx context.Context, t Task, previous []domain.TaskResult, h callbacks.Handler) (domain.TaskResult, error) {
	ctx, span := c.tracer.Start(ctx, "crew.task")
	defer span.End()
	span.SetAttributes(attribute.String("crew.role", t.Role.Name))

	msgs := []*schema.Message{
		schema.SystemMessage(systemPrompt(t.Role)),
		schema.UserMessage(taskPrompt(t, previous)),
	}

	var (
		msg *schema.Message
		err error
	)
	if len(t.Role.Tools) == 0 {
		msg, err = c.generate(ctx, msgs, h)
	} else {
		msg, err = c.generateWithTools(ctx, t.Role.Tools, msgs, h)
	}
	if err != nil {
		return domain.TaskResult{}, err
	}
	if msg == nil {
		return domain.TaskResult{}, fmt.Errorf("empty reply")
	}

	res := domain.TaskResult{
		Kind:   t.Kind,
		Role:   t.Role.Name,
		Output: msg.Content,
	}
	if t.Kind == domain.TaskKindMarketRecommendation {
		res.Recommendation = ExtractRecommendation(msg.Content)
	}
	return res, nil
}

func (c *Crew) generate(ctx context.Context, msgs []*schema.Message, h callbacks.Handler) (*schema.Message, error) {
	chain := compose.NewChain[[]*schema.Message, *schema.Message]()
	chain.AppendChatModel(c.model)
	r, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile chain: %w", err)
	}
	return r.Invoke(ctx, msgs, compose.WithCallbacks(h))
}

func (c *Crew) generateWithTools(ctx context.Context, names []string, msgs []*schema.Message, h callbacks.Handler) (*schema.Message, error) {
	ts, err := c.registry.EinoTools(names...)
	if err != nil {
		return nil, err
	}
	a, err := react.NewAgent(ctx, &react.AgentConfig{
		ToolCallingModel: c.model,
		ToolsConfig: compose.ToolsNodeConfig{
			Tools: ts,
		},
		MaxStep: c.maxStep,
	})
	if err != nil {
		return nil, fmt.Errorf("create agent: %w", err)
	}
	return a.Generate(ctx, msgs, agent.WithComposeOptions(compose.WithCallbacks(h)))
}
