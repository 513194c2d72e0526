package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/natowatch/natowatch/internal/config"
	"github.com/natowatch/natowatch/internal/httpserver"
	"github.com/natowatch/natowatch/internal/httpserver/deps"
	"github.com/natowatch/natowatch/internal/logger"
	"github.com/natowatch/natowatch/internal/redis"
	"github.com/natowatch/natowatch/internal/scheduler"
	"github.com/natowatch/natowatch/internal/scrape"
	"github.com/natowatch/natowatch/internal/sources"
	"github.com/natowatch/natowatch/internal/store/gormstore"
	redisstore "github.com/natowatch/natowatch/internal/store/redis"
	"github.com/natowatch/natowatch/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	db          *gorm.DB
	sched       *scheduler.Scheduler
}

func New() *App {
	cfg := config.Load()

	log := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Redis first - the lease and listing cache depend on it.
	redisClient, err := redis.New(redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
	}, log)
	if err != nil {
		log.Errorf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}

	db, err := gormstore.Open(cfg.DatabaseDSN)
	if err != nil {
		log.Errorf("Failed to open database: %v", err)
		os.Exit(1)
	}
	log.Info("database ready", logger.String("dsn", cfg.DatabaseDSN))

	catalog, err := sources.NewLoader(cfg.SourcesFile).Load()
	if err != nil {
		log.Errorf("Failed to load source catalog: %v", err)
		os.Exit(1)
	}
	log.Info("source catalog loaded",
		logger.String("file", cfg.SourcesFile),
		logger.Int("sources", len(catalog.Sources)))

	opportunities := gormstore.NewOpportunityRepo(db)
	lease := redisstore.NewLease(redisClient, log)
	listCache := redisstore.NewListCache(redisClient, cfg.ListCacheTTL, log)

	runScrape := newRunFunc(cfg, opportunities, lease, listCache, log)

	var sched *scheduler.Scheduler
	var rescrapeTrigger chan string
	if cfg.SchedulerEnabled {
		rescrapeTrigger = make(chan string, 1)
		sched = scheduler.New(catalog.Sources, runScrape, log, rescrapeTrigger)
	} else {
		log.Info("scheduler disabled, serving API only")
	}

	d := deps.Deps{
		Logger:          log,
		StartTime:       time.Now(),
		Version:         version.Version,
		GoVersion:       version.GoVersion,
		TimeNow:         time.Now,
		DB:              db,
		Opportunities:   opportunities,
		Feedback:        gormstore.NewFeedbackRepo(db),
		Roadmap:         gormstore.NewRoadmapRepo(db),
		Subscribers:     gormstore.NewSubscriberRepo(db),
		RedisClient:     redisClient,
		ListCache:       listCache,
		Sources:         catalog.Sources,
		RescrapeTrigger: rescrapeTrigger,
		TrustProxy:      cfg.TrustProxy,
		RateLimitBurst:  cfg.RateLimitBurst,
		RateLimitPerMin: cfg.RateLimitPerMin,
	}

	return &App{
		cfg:         cfg,
		logger:      log,
		server:      httpserver.New(cfg, log, d),
		redisClient: redisClient,
		db:          db,
		sched:       sched,
	}
}

// newRunFunc builds the per-source scrape closure handed to the scheduler.
// Every invocation gets fresh discoverer and extractor instances; the
// repositories and the lease are shared.
func newRunFunc(
	cfg *config.Config,
	opportunities *gormstore.OpportunityRepo,
	lease *redisstore.Lease,
	listCache *redisstore.ListCache,
	log logger.Logger,
) scheduler.RunFunc {
	return func(ctx context.Context, src sources.SourceConfig, mode scrape.Mode) (*scrape.Result, error) {
		disc, err := scrape.NewSiteDiscoverer(src, cfg.ScrapeTimeout, log)
		if err != nil {
			return nil, fmt.Errorf("build discoverer for %s: %w", src.Name, err)
		}
		ext := scrape.NewPageExtractor(src, cfg.ScrapeTimeout)

		runner := scrape.NewRunner(disc, ext, opportunities, lease, log, scrape.RunnerOptions{
			NATOBody: src.NATOBody,
			Category: src.Category,
			Mode:     mode,
			Parallel: cfg.ScrapeParallel,
			Delay:    cfg.ScrapeDelay,
			LeaseTTL: cfg.LeaseTTL,
		})

		res, err := runner.Run(ctx)
		if err != nil {
			return res, err
		}

		if res.New > 0 || res.Amended > 0 || res.Retired > 0 {
			if err := listCache.InvalidateAll(ctx); err != nil {
				log.Warn("listing cache invalidation failed", logger.Error(err))
			}
		}
		return res, nil
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting natowatch %s on %s (go=%s)",
		version.Version, a.cfg.ListenPort, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.sched != nil {
		if err := a.sched.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	if a.sched != nil {
		a.sched.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		}
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				a.logger.Warnf("failed to close database: %v", err)
			}
		}
	}

	a.logger.Info("✅ Shutdown complete")
	return nil
}
