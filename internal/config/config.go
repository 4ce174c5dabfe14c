package config

import (
	"fmt"
	"strings"
	"time"

	"stx-trader/pkg/logger"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	HTTPPort int    `envconfig:"HTTP_PORT" default:"8080"`

	CMCAPIKey           string `envconfig:"CMC_API_KEY"`
	CMCBaseURL          string `envconfig:"CMC_BASE_URL" default:"https://pro-api.coinmarketcap.com"`
	HiroBaseURL         string `envconfig:"HIRO_BASE_URL" default:"https://api.hiro.so"`
	UpstreamTimeoutSecs int    `envconfig:"UPSTREAM_TIMEOUT_SECS" default:"30"`

	LLMProvider    string `envconfig:"LLM_PROVIDER" default:"openai"`
	OpenAIAPIKey   string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL  string `envconfig:"OPENAI_BASE_URL"`
	OpenAIModel    string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	DeepSeekAPIKey string `envconfig:"DEEPSEEK_API_KEY"`
	DeepSeekModel  string `envconfig:"DEEPSEEK_MODEL" default:"deepseek-chat"`
	LLMMaxTokens   int    `envconfig:"LLM_MAX_TOKENS" default:"2048"`
	AgentMaxStep   int    `envconfig:"AGENT_MAX_STEP" default:"12"`
	AgentVerbose   bool   `envconfig:"AGENT_VERBOSE" default:"true"`

	RedisURL      string `envconfig:"REDIS_URL"`
	ReportTTLMins int    `envconfig:"REPORT_TTL_MINS" default:"60"`

	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN"`

	MCPTransport   string `envconfig:"MCP_TRANSPORT" default:"stdio"`
	MCPHTTPEnabled bool   `envconfig:"MCP_HTTP_ENABLED" default:"false"`
	MCPHTTPBind    string `envconfig:"MCP_HTTP_BIND" default:"127.0.0.1"`
	MCPHTTPPort    int    `envconfig:"MCP_HTTP_PORT" default:"8090"`

	SentryDSN        string `envconfig:"SENTRY_DSN"`
	TracingEnabled   bool   `envconfig:"TRACING_ENABLED" default:"true"`
	OTLPEndpoint     string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"localhost:4317"`
	EinoDebugEnabled bool   `envconfig:"EINO_DEBUG_ENABLED" default:"false"`
}

// Load reads the configuration from the environment. Callers load .env
// files beforehand.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if cfg.CMCAPIKey == "" {
		logger.Warnf("Warning: CMC_API_KEY not set, market data requests will be rejected")
	}

	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			logger.Warnf("Warning: OPENAI_API_KEY not set")
		}
	case "deepseek":
		if cfg.DeepSeekAPIKey == "" {
			logger.Warnf("Warning: DEEPSEEK_API_KEY not set")
		}
	default:
		logger.Warnf("Warning: unsupported LLM_PROVIDER=%q, defaulting to openai", cfg.LLMProvider)
		cfg.LLMProvider = "openai"
	}

	if cfg.RedisURL == "" {
		logger.Warnf("Warning: REDIS_URL not set, reports will be kept in memory")
	}

	cfg.MCPTransport = strings.ToLower(strings.TrimSpace(cfg.MCPTransport))
	if cfg.MCPTransport != "stdio" && cfg.MCPTransport != "http" {
		logger.Warnf("Warning: unsupported MCP_TRANSPORT=%q, defaulting to stdio", cfg.MCPTransport)
		cfg.MCPTransport = "stdio"
	}

	if cfg.UpstreamTimeoutSecs < 0 {
		cfg.UpstreamTimeoutSecs = 0
	}
	if cfg.AgentMaxStep <= 0 {
		cfg.AgentMaxStep = 12
	}
	if cfg.ReportTTLMins <= 0 {
		cfg.ReportTTLMins = 60
	}

	return cfg, nil
}

func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutSecs) * time.Second
}

func (c *Config) ReportTTL() time.Duration {
	return time.Duration(c.ReportTTLMins) * time.Minute
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func (c *Config) MCPHTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.MCPHTTPBind, c.MCPHTTPPort)
}
