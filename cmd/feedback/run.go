package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"mercator-hq/feedback/pkg/analysis"
	"mercator-hq/feedback/pkg/analytics"
	"mercator-hq/feedback/pkg/cli"
	"mercator-hq/feedback/pkg/config"
	"mercator-hq/feedback/pkg/limits/enforcement"
	"mercator-hq/feedback/pkg/limits/quota"
	"mercator-hq/feedback/pkg/providerfactory"
	"mercator-hq/feedback/pkg/security/secrets"
	feedbacktls "mercator-hq/feedback/pkg/security/tls"
	"mercator-hq/feedback/pkg/server"
	"mercator-hq/feedback/pkg/storage/retention"
	"mercator-hq/feedback/pkg/telemetry/health"
	"mercator-hq/feedback/pkg/telemetry/logging"
	"mercator-hq/feedback/pkg/telemetry/metrics"
	"mercator-hq/feedback/pkg/telemetry/tracing"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
	watchConfig   bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the feedback API server",
	Long: `Start the feedback API server with the specified configuration.

Configuration is read from the config file (optional), then environment
variables such as OPENAI_API_KEY, DATABASE_URL and FEEDBACK_SERVER_LISTEN_ADDRESS.
A .env file in the working directory is loaded first.

Examples:
  # Start with default config
  feedback run

  # Start with custom config
  feedback run --config /etc/feedback/config.yaml

  # Override listen address
  feedback run --listen 0.0.0.0:8080

  # Validate config without starting server
  feedback run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
	runCmd.Flags().BoolVar(&runFlags.watchConfig, "watch-config", true, "reload the log level when the config file changes")
}

func runServer(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError(cfgFile, err)
	}
	cfg := config.GetConfig()

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	logger, err := setupLogging(cfg, os.Stdout)
	if err != nil {
		return err
	}

	ctx, stop := cli.SignalContext(cmd.Context())
	defer stop()

	collector := metrics.NewCollector(cfg.Telemetry.Metrics, nil)

	resolver, err := secrets.FromConfig(cfg.Secrets)
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}
	defer resolver.Close()
	if err := resolver.ResolveProviderKeys(ctx, cfg); err != nil {
		return cli.NewConfigError(cfgFile, err)
	}

	manager := providerfactory.NewManager()
	defer manager.Close()

	analyzer, err := newAnalyzer(cfg, manager, collector)
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}

	if runFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration valid")
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Analysis provider: %s\n", cfg.Analysis.Provider)
		return nil
	}

	tracer, err := tracing.New(cfg.Telemetry.Tracing, Version)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer shutdownTracer(tracer)

	checker := health.New(0)
	checker.RegisterOptionalCheck("providers", health.ProviderCheck(manager))

	store, err := openStore(ctx, cfg)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer store.Close()
	checker.RegisterCheck("storage", health.PingCheck(store))

	var redisClient redis.UniversalClient
	if usesRedis(cfg) {
		client, err := newRedisClient(ctx, cfg.Redis)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		defer client.Close()
		redisClient = client
		checker.RegisterOptionalCheck("redis", health.PingCheck(redisPinger{client: client}))
	}

	resultCache, err := newCache(cfg, redisClient, collector)
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	limiter, memLimiter := newLimiter(cfg, redisClient, collector)
	if memLimiter != nil {
		go memLimiter.StartReaper(ctx)
	}

	scheduler := retention.NewScheduler(retention.NewPruner(store, retention.Config{
		RetentionDays: cfg.Retention.Days,
		PruneSchedule: cfg.Retention.Schedule,
	}))
	if err := scheduler.Start(ctx); err != nil {
		return cli.NewConfigError(cfgFile, err)
	}
	defer scheduler.Stop()

	if runFlags.watchConfig {
		startConfigWatcher(ctx, logger)
	}

	deps := server.Dependencies{
		Analyzer: analysis.NewService(analyzer, resultCache, store, analysis.Config{
			Timeout:       cfg.Analysis.Timeout,
			MinTextLength: cfg.Analysis.MinTextLength,
			MaxTextLength: cfg.Analysis.MaxTextLength,
		}, collector),
		Analytics: analytics.NewService(store),
		Accounts:  newAccounts(store, cfg),
		Enforcer:  enforcement.NewEnforcer(quota.NewGate(store, collector), limiter),
		Health:    checker,
		Metrics:   collector,
		Version:   Version,
		Commit:    GitCommit,
		BuildTime: BuildDate,
	}

	if cfg.Server.TLS.Enabled {
		tlsConfig, reloader, err := feedbacktls.New(cfg.Server.TLS)
		if err != nil {
			return cli.NewConfigError(cfgFile, err)
		}
		go reloader.Start(ctx)
		checker.RegisterOptionalCheck("tls_certificate", reloader.Check)
		deps.TLS = tlsConfig
	}

	srv := server.NewServer(cfg, deps)

	printBanner(cmd, cfg)

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "✓ Server stopped")
	return nil
}

// startConfigWatcher applies log level changes from the config file without
// a restart. Other settings take effect on the next start.
func startConfigWatcher(ctx context.Context, logger *logging.Logger) {
	if _, err := os.Stat(cfgFile); err != nil {
		slog.Debug("config file not present, not watching", "path", cfgFile)
		return
	}

	config.OnReload(func(c *config.Config) {
		if err := logger.SetLevel(c.Telemetry.Logging.Level); err != nil {
			slog.Warn("ignoring invalid log level from reloaded config", "error", err)
			return
		}
		slog.Info("log level updated", "level", logger.Level().String())
	})

	watcher := config.NewWatcher(cfgFile, 0, logger.Logger)
	go func() {
		if err := watcher.Watch(ctx); err != nil {
			slog.Error("config watcher stopped", "error", err)
		}
	}()
}

func shutdownTracer(t *tracing.Tracer) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := t.Shutdown(ctx); err != nil {
		slog.Error("failed to flush traces", "error", err)
	}
}

func printBanner(cmd *cobra.Command, cfg *config.Config) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Feedback Analyzer v%s\n", Version)
	fmt.Fprintf(out, "✓ Analysis provider: %s\n", cfg.Analysis.Provider)
	fmt.Fprintf(out, "✓ Storage: %s\n", redactURL(cfg.Storage.URL))
	fmt.Fprintf(out, "✓ Cache: %s, rate limit: %s (%d per %s)\n",
		cfg.Cache.Backend,
		cfg.Limits.RateLimit.Backend,
		cfg.Limits.RateLimit.Requests,
		cfg.Limits.RateLimit.Window,
	)
	scheme := "http"
	if cfg.Server.TLS.Enabled {
		scheme = "https"
	}
	fmt.Fprintf(out, "✓ Listening on %s://%s\n", scheme, cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Fprintf(out, "✓ Metrics endpoint: %s://%s%s\n", scheme, cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")
}
