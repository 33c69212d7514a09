package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/snapfile/snapfile/internal/logger"
	"github.com/snapfile/snapfile/pkg/api"
	"github.com/snapfile/snapfile/pkg/auth"
	"github.com/snapfile/snapfile/pkg/config"
	"github.com/snapfile/snapfile/pkg/metadata"
	badgerstore "github.com/snapfile/snapfile/pkg/metadata/store/badger"
	"github.com/snapfile/snapfile/pkg/metadata/store/memory"
	"github.com/snapfile/snapfile/pkg/metrics"
	"github.com/snapfile/snapfile/pkg/ratelimit"
	"github.com/snapfile/snapfile/pkg/storage"
)

// maintenanceInterval paces the revocation sweep and bucket eviction.
const maintenanceInterval = time.Minute

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the snapfile server",
	Long: `Start the snapfile server with the specified configuration.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/snapfile/config.yaml.

Examples:
  # Start with default config location
  snapfile start

  # Start with custom config file
  snapfile start --config /etc/snapfile/config.yaml

  # Start with environment variable overrides
  SNAPFILE_LOGGING_LEVEL=DEBUG snapfile start`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("configuration loaded",
		logger.Path(getConfigSource(GetConfigFile())))

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		logger.Info("metrics enabled", logger.Port(cfg.Metrics.Port))
	}
	httpMetrics := metrics.NewHTTPMetrics()
	metricsServer := metrics.NewServer(cfg.Metrics.Port)

	tableStore, err := newTableStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := tableStore.Close(); err != nil {
			logger.Error("failed to close metadata store", logger.Err(err))
		}
	}()

	meta := metadata.NewService(tableStore)

	tokens, err := auth.NewService(auth.Config{
		Secret:          cfg.Auth.JWTSecret,
		AccessTokenTTL:  cfg.Auth.AccessTokenTTL,
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to create token service: %w", err)
	}

	limiter := ratelimit.New(ratelimit.Config{
		Auth:           ruleFromConfig(cfg.RateLimit.Auth),
		Upload:         ruleFromConfig(cfg.RateLimit.Upload),
		Static:         ruleFromConfig(cfg.RateLimit.Static),
		DisabledRoutes: cfg.RateLimit.DisabledRoutes,
		IdleTTL:        cfg.RateLimit.IdleEviction,
	})

	files, err := storage.NewLocal(cfg.Server.UploadDir)
	if err != nil {
		return fmt.Errorf("failed to open upload directory: %w", err)
	}
	logger.Info("upload directory ready", logger.Path(files.Dir()))

	if orphans, err := countOrphanedUploads(meta, files); err != nil {
		logger.Warn("failed to scan upload directory", logger.Err(err))
	} else if orphans > 0 {
		logger.Warn("stored files missing from the metadata index",
			logger.Count(orphans))
	}

	router := api.NewRouter(api.Deps{
		Config:  cfg,
		Meta:    meta,
		Tokens:  tokens,
		Limiter: limiter,
		Files:   files,
		Metrics: httpMetrics,
		Version: Version,
	})
	server := api.NewServer(cfg, router)

	if metricsServer != nil {
		go func() {
			if err := metricsServer.Start(); err != nil {
				logger.Error("metrics server error", logger.Err(err))
			}
		}()
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer stopCancel()
			if err := metricsServer.Stop(stopCtx); err != nil {
				logger.Error("metrics server shutdown error", logger.Err(err))
			}
		}()
	}

	go maintenanceLoop(ctx, tokens, limiter, httpMetrics)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- server.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("server is running, press Ctrl+C to stop")

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("shutdown signal received, initiating graceful shutdown")
		cancel()

		if err := <-serverDone; err != nil {
			logger.Error("server shutdown error", logger.Err(err))
			return err
		}
		logger.Info("server stopped gracefully")

	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("server error", logger.Err(err))
			return err
		}
		logger.Info("server stopped")
	}

	return nil
}

// newTableStore opens the configured metadata persistence backend.
func newTableStore(cfg *config.Config) (metadata.TableStore, error) {
	switch cfg.Storage.Backend {
	case "memory":
		logger.Info("using in-memory metadata store")
		return memory.New(), nil
	default:
		logger.Info("using badger metadata store",
			logger.Backend(cfg.Storage.Backend),
			logger.Path(cfg.Storage.Path))
		store, err := badgerstore.Open(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open metadata store: %w", err)
		}
		return store, nil
	}
}

// countOrphanedUploads reports how many stored files have no entry in the
// metadata index. Orphans are logged, not deleted: the bytes may belong to
// an upload whose index write was lost, and dropping them is an operator
// decision.
func countOrphanedUploads(meta *metadata.Service, files storage.Store) (int, error) {
	names, err := files.List()
	if err != nil {
		return 0, err
	}

	orphans := 0
	for _, name := range names {
		if _, err := meta.FileFolder(name); metadata.IsNotFound(err) {
			orphans++
		} else if err != nil {
			return 0, err
		}
	}
	return orphans, nil
}

func ruleFromConfig(rule config.RouteRule) ratelimit.Rule {
	return ratelimit.Rule{
		Enabled:           rule.IsEnabled(),
		RequestsPerMinute: rule.RequestsPerMinute,
		BurstSize:         rule.BurstSize,
	}
}

// maintenanceLoop periodically sweeps expired revocation entries and
// evicts idle rate-limit buckets so neither registry grows without bound.
func maintenanceLoop(ctx context.Context, tokens *auth.Service, limiter *ratelimit.Limiter, m *metrics.HTTPMetrics) {
	ticker := time.NewTicker(maintenanceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			swept := tokens.SweepRevoked()
			evicted := limiter.EvictIdle(time.Now())
			m.SetRevokedTokens(tokens.RevokedCount())
			if swept > 0 || evicted > 0 {
				logger.Debug("maintenance pass",
					logger.Count(swept+evicted))
			}
		}
	}
}
