package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stx-trader/internal/app"
	"stx-trader/internal/bot"
	"stx-trader/internal/config"
	"stx-trader/internal/handler"
	"stx-trader/pkg/logger"
	"stx-trader/pkg/tracing"

	"github.com/cloudwego/eino-ext/devops"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "stx-trader/docs"
)

var version = "dev"

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	initLoggerFunc         = logger.Init
	initTracerFunc         = tracing.InitTracer
	newAppFunc             = app.New
	initEinoDebugFunc      = func(ctx context.Context) error { return devops.Init(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.New
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           STX Trader API
// @version         1.0
// @description     Runs STX market and wallet analyses with two LLM agent roles.

// @host      localhost:8080
// @BasePath  /
func main() {
	_ = loadEnvFunc()

	cfg, err := loadConfigFunc()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if err := initLoggerFunc(cfg.LogLevel, cfg.Env); err != nil {
		logger.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx, tracing.Options{
		Enabled:  cfg.TracingEnabled,
		Endpoint: cfg.OTLPEndpoint,
		Version:  version,
	})
	if err != nil {
		logger.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warnf("error shutting down tracer provider: %v", err)
		}
	}()

	if cfg.EinoDebugEnabled {
		if err := initEinoDebugFunc(ctx); err != nil {
			logger.Warnf("eino debug server disabled: %v", err)
		}
	}

	// Build providers, tools, crew and analysis service
	a, err := newAppFunc(ctx, cfg, tracer)
	if err != nil {
		logger.Fatalf("failed to build analysis pipeline: %v", err)
	}
	defer a.Tracker.Flush(2 * time.Second)

	if err := startTelegramBotFunc(ctx, cfg.TelegramBotToken, a.Analysis, a.Prices); err != nil {
		logger.Warnf("telegram bot disabled: %v", err)
	}

	h := newHandlerFunc(tracer, a.Analysis, a.Registry)

	r := newRouterFunc()
	r.Use(gin.Recovery())
	r.Use(handler.RequestLogger("/health", "/metrics"))
	r.Use(otelgin.Middleware(tracing.ServiceName))

	h.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if cfg.MCPHTTPEnabled {
		r.Any("/mcp", gin.WrapH(a.Registry.MCPHandler(version)))
		logger.Infof("MCP streamable HTTP endpoint mounted at /mcp")
	}

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: r,
	}

	go func() {
		logger.Infof("HTTP server listening on %s", srv.Addr)
		if err := startHTTPServerFunc(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	logger.Infof("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Infof("Server exiting")
}
