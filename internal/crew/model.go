package crew

import (
	"context"
	"fmt"

	"stx-trader/internal/config"
	"stx-trader/internal/domain"

	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
)

var (
	newOpenAIModel = func(ctx context.Context, cfg *openai.ChatModelConfig) (model.ToolCallingChatModel, error) {
		return openai.NewChatModel(ctx, cfg)
	}
	newDeepSeekModel = func(ctx context.Context, cfg *deepseek.ChatModelConfig) (model.ToolCallingChatModel, error) {
		return deepseek.NewChatModel(ctx, cfg)
	}
)

// NewChatModel builds the chat model selected by LLM_PROVIDER.
func NewChatModel(ctx context.Context, cfg *config.Config) (model.ToolCallingChatModel, error) {
	switch cfg.LLMProvider {
	case "openai", "":
		maxTokens := cfg.LLMMaxTokens
		m, err := newOpenAIModel(ctx, &openai.ChatModelConfig{
			APIKey:    cfg.OpenAIAPIKey,
			BaseURL:   cfg.OpenAIBaseURL,
			Model:     cfg.OpenAIModel,
			MaxTokens: &maxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}
		return m, nil
	case "deepseek":
		m, err := newDeepSeekModel(ctx, &deepseek.ChatModelConfig{
			APIKey:    cfg.DeepSeekAPIKey,
			Model:     cfg.DeepSeekModel,
			MaxTokens: cfg.LLMMaxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("create deepseek model: %w", err)
		}
		return m, nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedLLM, cfg.LLMProvider)
}
