package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"stx-trader/internal/app"
	"stx-trader/internal/config"
	"stx-trader/internal/domain"
	"stx-trader/internal/present"
	"stx-trader/internal/tui"
	"stx-trader/pkg/logger"
	"stx-trader/pkg/tracing"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"
)

var (
	loadEnvFunc       = godotenv.Load
	loadConfigFunc    = config.Load
	initLoggerFunc    = logger.Init
	newAppFunc        = app.New
	newToolsetFunc    = app.NewToolset
	promptAddressFunc = promptAddress
	runSpinnerFunc    = func(ctx context.Context, address string, run tui.RunFunc) (*domain.Report, error) {
		return tui.Run(ctx, address, run)
	}
	serveStdioFunc = func(ctx context.Context, ts *app.Toolset) error {
		return ts.Registry.ServeStdio(ctx, version)
	}
	listenAndServeFunc = func(srv *http.Server) error { return srv.ListenAndServe() }
)

type cli struct {
	cfg    *config.Config
	tracer trace.Tracer
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "stxtrader",
		Short: "STX Trader Crew - LLM-assisted Stacks market and wallet analysis",
		Long: `stxtrader analyzes STX market conditions and fetches wallet balances
with two LLM agent roles: a market analyst and a balance fetcher.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd.Context())
		},
	}

	root.AddCommand(c.newAnalyzeCmd())
	root.AddCommand(c.newToolsCmd())
	root.AddCommand(c.newMCPCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func (c *cli) setup(ctx context.Context) error {
	_ = loadEnvFunc()
	cfg, err := loadConfigFunc()
	if err != nil {
		return err
	}
	if err := initLoggerFunc(cfg.LogLevel, cfg.Env); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	c.cfg = cfg
	c.tracer = trace.NewNoopTracerProvider().Tracer(tracing.ServiceName)
	return nil
}

func (c *cli) newAnalyzeCmd() *cobra.Command {
	var (
		outDir    string
		noSpinner bool
	)
	cmd := &cobra.Command{
		Use:   "analyze [ADDRESS]",
		Short: "Run a market and wallet analysis for an STX address",
		Long: `Run both agent roles for a Stacks address and print the results.
The address is prompted for when not given.
Example: stxtrader analyze SP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJ7 --out reports/`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			address := ""
			if len(args) == 1 {
				address = args[0]
			} else {
				var err error
				if address, err = promptAddressFunc(); err != nil {
					return err
				}
			}
			return c.runAnalyze(cmd, address, outDir, noSpinner)
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "", "Directory to write the text report to")
	cmd.Flags().BoolVar(&noSpinner, "no-spinner", false, "Disable the progress spinner")
	return cmd
}

func (c *cli) runAnalyze(cmd *cobra.Command, address, outDir string, noSpinner bool) error {
	ctx := cmd.Context()
	a, err := newAppFunc(ctx, c.cfg, c.tracer)
	if err != nil {
		return err
	}
	defer a.Tracker.Flush(2 * time.Second)

	run := func(ctx context.Context) (*domain.Report, error) {
		return a.Analysis.Analyze(ctx, address)
	}

	var report *domain.Report
	if noSpinner {
		report, err = run(ctx)
	} else {
		report, err = runSpinnerFunc(ctx, address, run)
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "An error occurred: %v\nPlease check your inputs and try again.\n", err)
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), present.RenderTerminal(present.Build(report)))

	if outDir == "" {
		return nil
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	path := filepath.Join(outDir, report.Filename())
	if err := os.WriteFile(path, []byte(report.Text()), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Report saved to %s\n", path)
	return nil
}

func (c *cli) newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools available to agents and MCP clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := newToolsetFunc(c.cfg, c.tracer)
			if err != nil {
				return err
			}
			for _, t := range ts.Registry.List() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-32s %s\n  %s\n", t.Name, t.Title, t.Description)
			}
			return nil
		},
	}
}

func (c *cli) newMCPCmd() *cobra.Command {
	var transport string
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the agent tools over the Model Context Protocol",
		RunE: func(cmd *cobra.Command, args []string) error {
			if transport == "" {
				transport = c.cfg.MCPTransport
			}
			ts, err := newToolsetFunc(c.cfg, c.tracer)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			switch transport {
			case "stdio":
				return serveStdioFunc(ctx, ts)
			case "http":
				return serveMCPHTTP(ctx, ts, c.cfg.MCPHTTPAddr())
			}
			return fmt.Errorf("unsupported transport %q (want stdio or http)", transport)
		},
	}
	cmd.Flags().StringVar(&transport, "transport", "", "stdio or http (defaults to MCP_TRANSPORT)")
	return cmd
}

func serveMCPHTTP(ctx context.Context, ts *app.Toolset, addr string) error {
	srv := &http.Server{Addr: addr, Handler: ts.Registry.MCPHandler(version)}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Infof("MCP server listening on http://%s", addr)
	if err := listenAndServeFunc(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("mcp http: %w", err)
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "stxtrader %s\n", version)
		},
	}
}
