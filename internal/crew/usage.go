package crew

import (
	"context"
	"sync"

	"stx-trader/internal/domain"
	"stx-trader/pkg/logger"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/model"
)

// usageCollector sums chat-model token usage across every task of a run.
type usageCollector struct {
	mu    sync.Mutex
	usage domain.TokenUsage
}

func (u *usageCollector) total() domain.TokenUsage {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.usage
}

func (u *usageCollector) add(prompt, completion, total int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.usage.Add(prompt, completion, total)
}

// handler counts tokens of chat-model calls and, for verbose roles, logs
// every component step.
func (u *usageCollector) handler(role Role) callbacks.Handler {
	return callbacks.NewHandlerBuilder().
		OnStartFn(func(ctx context.Context, info *callbacks.RunInfo, _ callbacks.CallbackInput) context.Context {
			if role.Verbose && info != nil {
				logger.Infof("[%s] %s %s started", role.Name, info.Component, info.Name)
			}
			return ctx
		}).
		OnEndFn(func(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
			if info == nil || info.Component != components.ComponentOfChatModel {
				return ctx
			}
			co := model.ConvCallbackOutput(output)
			if co == nil {
				return ctx
			}
			switch {
			case co.TokenUsage != nil:
				u.add(co.TokenUsage.PromptTokens, co.TokenUsage.CompletionTokens, co.TokenUsage.TotalTokens)
			case co.Message != nil && co.Message.ResponseMeta != nil && co.Message.ResponseMeta.Usage != nil:
				mu := co.Message.ResponseMeta.Usage
				u.add(mu.PromptTokens, mu.CompletionTokens, mu.TotalTokens)
			default:
				u.add(0, 0, 0)
			}
			if role.Verbose {
				logger.Infof("[%s] %s %s finished", role.Name, info.Component, info.Name)
			}
			return ctx
		}).
		OnErrorFn(func(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
			if info != nil {
				logger.Warnf("[%s] %s %s failed: %v", role.Name, info.Component, info.Name, err)
			}
			return ctx
		}).
		Build()
}
