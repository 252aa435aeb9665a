// ABOUTME: MCP server command implementation for sectiondiff.
// ABOUTME: Wires the embedding provider through fx and serves comparison tools over stdio.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/2389-research/sectiondiff/internal/compare"
	"github.com/2389-research/sectiondiff/internal/config"
	"github.com/2389-research/sectiondiff/internal/embeddings"
	"github.com/2389-research/sectiondiff/internal/fetch"
	mcppkg "github.com/2389-research/sectiondiff/internal/mcp"
	"github.com/2389-research/sectiondiff/internal/metrics"
)

var mcpMetricsAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server (stdio mode)",
	Long: `Start the Model Context Protocol server for AI agent integration.

The MCP server communicates via stdio and exposes compare_headings,
compare_urls, and find_policy_url. With --metrics-addr, Prometheus
metrics are served on that address while the server runs.`,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	rootCmd.AddCommand(mcpCmd)
}

// newServiceApp builds an fx app that owns the embedding provider's lifecycle.
func newServiceApp(cfg *config.Config, logger *zap.Logger, m *metrics.Metrics, svc **compare.Service) (*fx.App, error) {
	opts, err := cfg.EmbeddingOptions()
	if err != nil {
		return nil, err
	}
	app := fx.New(
		fx.NopLogger,
		fx.Supply(opts, logger, cfg.FetchOptions()),
		embeddings.FXModule,
		fx.Provide(
			fetch.New,
			func(p embeddings.Provider, f *fetch.Fetcher) *compare.Service {
				return compare.NewService(p, f, newSearcher(cfg), m, logger)
			},
		),
		fx.Populate(svc),
	)
	return app, app.Err()
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var m *metrics.Metrics
	if mcpMetricsAddr != "" {
		m = metrics.New(true)
	}

	var svc *compare.Service
	app, err := newServiceApp(globalConfig, globalLogger, m, &svc)
	if err != nil {
		return fmt.Errorf("failed to build service: %w", err)
	}
	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer func() {
		if err := app.Stop(context.Background()); err != nil {
			globalLogger.Warn("shutdown failed", zap.Error(err))
		}
		releaseRuntime(globalConfig, globalLogger)
	}()

	server, err := mcppkg.NewServer(svc,
		mcppkg.WithDefaults(globalConfig.CompareOptions()),
		mcppkg.WithLogger(globalLogger),
	)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	if m != nil {
		g.Go(func() error {
			globalLogger.Info("serving metrics", zap.String("addr", mcpMetricsAddr))
			return m.Serve(gctx, mcpMetricsAddr)
		})
	}
	g.Go(func() error {
		err := server.Serve(gctx)
		cancel()
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	return g.Wait()
}
