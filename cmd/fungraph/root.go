package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/leofalp/fungraph/internal/config"
	"github.com/leofalp/fungraph/providers/observability/logging"
	"github.com/leofalp/fungraph/providers/observability/metrics"
)

// app carries what every subcommand needs once the root command has parsed
// its flags.
type app struct {
	configPath  string
	envFile     string
	logLevel    string
	logFormat   string
	metricsAddr string

	config        *config.Config
	logger        *slog.Logger
	metrics       *metrics.Collector
	metricsServer *http.Server
}

func newRootCommand() *cobra.Command {
	application := &app{}

	rootCmd := &cobra.Command{
		Use:           "fungraph",
		Short:         "Chat with an LLM through tool-calling workflow graphs",
		Long:          `fungraph runs a tool-calling agent against Gemini or any OpenAI-compatible endpoint.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return application.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return application.shutdown(cmd.Context())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&application.configPath, "config", "c", "", "YAML configuration file")
	flags.StringVar(&application.envFile, "env-file", config.DefaultEnvFile, "dotenv file loaded before reading the environment")
	flags.StringVar(&application.logLevel, "log-level", "", "log level (DEBUG, INFO, WARN, ERROR); defaults to FUNGRAPH_LOG_LEVEL")
	flags.StringVar(&application.logFormat, "log-format", string(logging.FormatText), "log format (text or json)")
	flags.StringVar(&application.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")

	rootCmd.AddCommand(
		newAskCommand(application),
		newChatCommand(application),
		newToolsCommand(application),
	)
	return rootCmd
}

func (application *app) setup() error {
	level := logging.LevelFromEnv()
	if application.logLevel != "" {
		parsed, err := logging.ParseLevel(application.logLevel)
		if err != nil {
			return err
		}
		level = parsed
	}
	application.logger = logging.New(level, logging.Format(application.logFormat))
	slog.SetDefault(application.logger)

	loaded, err := config.Load(application.configPath, application.envFile)
	if err != nil {
		return err
	}
	application.config = loaded

	if application.metricsAddr != "" {
		application.startMetricsServer()
	}
	return nil
}

func (application *app) startMetricsServer() {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	application.metrics = metrics.NewCollector(registry)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	application.metricsServer = &http.Server{
		Addr:              application.metricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		application.logger.Info("metrics server listening", "address", application.metricsAddr)
		if err := application.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			application.logger.Error("metrics server stopped", "error", err)
		}
	}()
}

func (application *app) shutdown(ctx context.Context) error {
	if application.metricsServer == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := application.metricsServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to stop metrics server: %w", err)
	}
	return nil
}
