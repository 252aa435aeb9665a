// ABOUTME: Root Cobra command and shared wiring for the sectiondiff CLI.
// ABOUTME: Loads config and the logger, and builds the comparison service on demand.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/2389-research/sectiondiff/internal/compare"
	"github.com/2389-research/sectiondiff/internal/config"
	"github.com/2389-research/sectiondiff/internal/embeddings"
	"github.com/2389-research/sectiondiff/internal/fetch"
	"github.com/2389-research/sectiondiff/internal/logging"
	"github.com/2389-research/sectiondiff/internal/metrics"
	"github.com/2389-research/sectiondiff/internal/search"
)

var globalConfig *config.Config
var globalLogger *zap.Logger

var logLevelFlag string

var rootCmd = &cobra.Command{
	Use:   "sectiondiff",
	Short: "Compare document sections by semantic similarity",
	Long: `
███████╗███████╗ ██████╗████████╗██╗ ██████╗ ███╗   ██╗██████╗ ██╗███████╗███████╗
██╔════╝██╔════╝██╔════╝╚══██╔══╝██║██╔═══██╗████╗  ██║██╔══██╗██║██╔════╝██╔════╝
███████╗█████╗  ██║        ██║   ██║██║   ██║██╔██╗ ██║██║  ██║██║█████╗  █████╗
╚════██║██╔══╝  ██║        ██║   ██║██║   ██║██║╚██╗██║██║  ██║██║██╔══╝  ██╔══╝
███████║███████╗╚██████╗   ██║   ██║╚██████╔╝██║ ╚████║██████╔╝██║██║     ██║
╚══════╝╚══════╝ ╚═════╝   ╚═╝   ╚═╝ ╚═════╝ ╚═╝  ╚═══╝╚═════╝ ╚═╝╚═╝     ╚═╝

Extract headings from two documents, embed them, and report which sections
match, which were renamed, and which are missing on either side.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "setup" {
			return nil
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if logLevelFlag != "" {
			cfg.Log.Level = logLevelFlag
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		globalConfig = cfg

		logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		globalLogger = logger
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if globalLogger != nil {
			_ = globalLogger.Sync()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level: debug, info, warning, error")
}

// newSearcher returns a SerpAPI client, or nil when no key is configured.
func newSearcher(cfg *config.Config) compare.Searcher {
	if !cfg.HasSearch() {
		return nil
	}
	return search.NewClient(cfg.Search.Endpoint, cfg.Search.APIKey)
}

// newService builds the comparison service and returns a cleanup that closes the provider.
func newService(cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) (*compare.Service, func(), error) {
	opts, err := cfg.EmbeddingOptions()
	if err != nil {
		return nil, nil, err
	}
	provider, err := embeddings.NewProvider(opts)
	if err != nil {
		return nil, nil, err
	}
	svc := compare.NewService(provider, fetch.New(cfg.FetchOptions()), newSearcher(cfg), m, logger)
	cleanup := func() {
		if err := provider.Close(); err != nil {
			logger.Warn("failed to close embedding provider", zap.Error(err))
		}
		releaseRuntime(cfg, logger)
	}
	return svc, cleanup, nil
}

// releaseRuntime tears down the process-wide ONNX environment once its provider is closed.
func releaseRuntime(cfg *config.Config, logger *zap.Logger) {
	if cfg.Embedding.Backend != embeddings.BackendONNX {
		return
	}
	if err := embeddings.ShutdownRuntime(); err != nil {
		logger.Warn("failed to shut down onnx runtime", zap.Error(err))
	}
}
