package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"mercator-hq/cerberus/pkg/audit"
	"mercator-hq/cerberus/pkg/cli"
	"mercator-hq/cerberus/pkg/config"
	"mercator-hq/cerberus/pkg/guard"
	"mercator-hq/cerberus/pkg/recaptcha"
	"mercator-hq/cerberus/pkg/server"
	"mercator-hq/cerberus/pkg/telemetry/logging"
	"mercator-hq/cerberus/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	watch         bool
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Cerberus verification server",
	Long: `Start the Cerberus verification server with the specified configuration.

The server verifies CAPTCHA tokens on the guarded endpoints, exposes
Prometheus metrics, and optionally records verification decisions to an
audit trail.

Examples:
  # Start with default config
  cerberus run

  # Start with custom config
  cerberus run --config /etc/cerberus/config.yaml

  # Override listen address
  cerberus run --listen 0.0.0.0:8080

  # Reload verification options when the config file changes
  cerberus run --watch

  # Validate config without starting the server
  cerberus run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.watch, "watch", false, "reload verification options on config file changes")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
	})
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Cerberus v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	// Verification core: shared config ref, validators, resolver, guard.
	opts := config.Build(&cfg.Recaptcha)
	ref, err := recaptcha.NewConfigRef(&opts)
	if err != nil {
		return cli.NewConfigError("recaptcha", err.Error())
	}

	client := recaptcha.NewHTTPClient(recaptcha.ClientConfig{Timeout: cfg.Recaptcha.Timeout})
	standard := recaptcha.NewStandardValidator(ref, client, logger)
	enterprise := recaptcha.NewEnterpriseValidator(ref, client, logger)
	resolver := recaptcha.NewValidatorResolver(ref, standard, enterprise)
	g := guard.New(ref, resolver, guard.WithLogger(logger))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Metrics
	var (
		registry *prometheus.Registry
		vm       *metrics.VerificationMetrics
	)
	if cfg.Telemetry.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		vm = metrics.NewVerificationMetrics(metrics.Config{}, registry)
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}

	// Audit trail
	var store audit.Store
	if cfg.Audit.Enabled {
		slog.Info("initializing audit trail", "backend", cfg.Audit.Backend)

		switch cfg.Audit.Backend {
		case "sqlite":
			sqliteCfg := audit.DefaultSQLiteConfig()
			sqliteCfg.Path = cfg.Audit.SQLitePath
			store, err = audit.NewSQLiteStore(sqliteCfg)
			if err != nil {
				return fmt.Errorf("failed to create SQLite audit store: %w", err)
			}
		case "memory":
			store = audit.NewMemoryStore()
		default:
			return fmt.Errorf("unsupported audit backend: %s", cfg.Audit.Backend)
		}
		defer store.Close()

		pruner := audit.NewPruner(store, &audit.RetentionConfig{
			RetentionDays: cfg.Audit.RetentionDays,
			PruneSchedule: cfg.Audit.PruneSchedule,
			MaxRecords:    cfg.Audit.MaxRecords,
		})
		scheduler := audit.NewScheduler(pruner)
		if err := scheduler.Start(ctx); err != nil {
			slog.Warn("failed to start retention scheduler", "error", err)
		} else {
			defer scheduler.Stop()
		}

		fmt.Println("✓ Audit trail initialized")
	}

	// Configuration hot reload
	if runFlags.watch {
		watcher, err := config.NewWatcher(&config.WatcherConfig{Path: cfgFile}, ref, logger)
		if err != nil {
			return fmt.Errorf("failed to create config watcher: %w", err)
		}
		go func() {
			if err := watcher.Watch(ctx); err != nil {
				slog.Error("config watcher failed", "error", err)
			}
		}()
		defer watcher.Stop()
	}

	handler := server.NewRouter(server.RouterConfig{
		Guard:       g,
		Metrics:     vm,
		Registry:    registry,
		MetricsPath: cfg.Telemetry.Metrics.Path,
		AuditStore:  store,
	})
	srv := server.New(&cfg.Server, handler)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/health\n", cfg.Server.ListenAddress)
	fmt.Println("\nPress Ctrl+C to stop")

	sigChan := cli.WaitForShutdown()

	select {
	case err := <-errChan:
		return cli.NewCommandError("run", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal %s, shutting down gracefully...\n", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
			return cli.NewCommandError("run", err)
		}

		fmt.Println("✓ Server stopped")
		return nil
	}
}
