// Package app wires the analysis pipeline from configuration. Every binary
// builds the same graph: providers, fetchers, tool registry, crew, service.
package app

import (
	"context"
	"fmt"

	"stx-trader/internal/cache"
	"stx-trader/internal/config"
	"stx-trader/internal/crew"
	"stx-trader/internal/errtrack"
	"stx-trader/internal/provider"
	"stx-trader/internal/service"
	"stx-trader/internal/tools"
	"stx-trader/pkg/logger"

	"github.com/cloudwego/eino/components/model"
	"go.opentelemetry.io/otel/trace"
)

var (
	initRedisFunc    = cache.InitRedis
	newChatModelFunc = crew.NewChatModel
	newTrackerFunc   = errtrack.New
)

// Toolset is the part of the graph that needs no LLM.
type Toolset struct {
	Prices   *provider.PriceFetcher
	Balances *provider.BalanceFetcher
	Registry *tools.Registry
}

type App struct {
	Toolset
	Store    service.ReportStore
	Tracker  errtrack.Tracker
	Model    model.ToolCallingChatModel
	Analysis *service.AnalysisService
}

func NewToolset(cfg *config.Config, tracer trace.Tracer) (*Toolset, error) {
	timeout := cfg.UpstreamTimeout()
	prices := provider.NewPriceFetcher(provider.NewCoinMarketCapProvider(tracer, cfg.CMCBaseURL, cfg.CMCAPIKey, timeout))
	balances := provider.NewBalanceFetcher(provider.NewHiroProvider(tracer, cfg.HiroBaseURL, timeout))

	registry, err := tools.NewDefaultRegistry(prices, balances)
	if err != nil {
		return nil, fmt.Errorf("build tool registry: %w", err)
	}
	return &Toolset{Prices: prices, Balances: balances, Registry: registry}, nil
}

// New builds the full pipeline. A Redis failure falls back to the
// in-memory report store; a chat model failure is fatal.
func New(ctx context.Context, cfg *config.Config, tracer trace.Tracer) (*App, error) {
	ts, err := NewToolset(cfg, tracer)
	if err != nil {
		return nil, err
	}

	tracker, err := newTrackerFunc(cfg.SentryDSN, cfg.Env)
	if err != nil {
		logger.Warnf("sentry disabled: %v", err)
		tracker = errtrack.Noop{}
	}
	logger.SetErrorTracker(tracker)

	chatModel, err := newChatModelFunc(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store := newReportStore(ctx, cfg)
	orchestrator := crew.New(tracer, chatModel, ts.Registry, cfg.AgentMaxStep)
	analysis := service.NewAnalysisService(tracer, ts.Prices, orchestrator, store, tracker, cfg.AgentVerbose)

	return &App{
		Toolset:  *ts,
		Store:    store,
		Tracker:  tracker,
		Model:    chatModel,
		Analysis: analysis,
	}, nil
}

func newReportStore(ctx context.Context, cfg *config.Config) service.ReportStore {
	if cfg.RedisURL == "" {
		return service.NewMemoryReportStore(cfg.ReportTTL())
	}
	client, err := initRedisFunc(ctx, cfg.RedisURL)
	if err != nil {
		logger.Warnf("redis unavailable, keeping reports in memory: %v", err)
		return service.NewMemoryReportStore(cfg.ReportTTL())
	}
	return service.NewRedisReportStore(client, cfg.ReportTTL())
}
