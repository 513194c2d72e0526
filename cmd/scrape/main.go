// Command scrape runs one reconciliation pass from the terminal and exits.
// It talks to the same database and source catalog as the server, which
// makes it suitable for cron jobs and manual backfills.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/natowatch/natowatch/internal/config"
	"github.com/natowatch/natowatch/internal/logger"
	"github.com/natowatch/natowatch/internal/scrape"
	"github.com/natowatch/natowatch/internal/sources"
	"github.com/natowatch/natowatch/internal/store/gormstore"
)

func main() {
	var (
		mode       = flag.String("mode", "incremental", "scrape mode: incremental or full")
		sourceName = flag.String("source", "", "source name from the catalog (empty = all enabled)")
	)
	flag.Parse()

	if *mode != string(scrape.ModeIncremental) && *mode != string(scrape.ModeFull) {
		fmt.Fprintf(os.Stderr, "invalid -mode %q: want incremental or full\n", *mode)
		os.Exit(1)
	}

	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.PrettyLog)
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log, scrape.Mode(*mode), *sourceName); err != nil {
		log.Error("scrape failed", logger.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log logger.Logger, mode scrape.Mode, sourceName string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, err := sources.NewLoader(cfg.SourcesFile).Load()
	if err != nil {
		return fmt.Errorf("load source catalog: %w", err)
	}

	selected := make([]sources.SourceConfig, 0, len(catalog.Sources))
	for _, src := range catalog.Sources {
		if sourceName != "" {
			if src.Name == sourceName {
				selected = append(selected, src)
			}
			continue
		}
		if src.Enabled {
			selected = append(selected, src)
		}
	}
	if len(selected) == 0 {
		if sourceName != "" {
			return fmt.Errorf("source %q not found in catalog", sourceName)
		}
		return fmt.Errorf("no enabled sources in catalog")
	}

	db, err := gormstore.Open(cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()
	opportunities := gormstore.NewOpportunityRepo(db)

	var failed bool
	for _, src := range selected {
		disc, err := scrape.NewSiteDiscoverer(src, cfg.ScrapeTimeout, log)
		if err != nil {
			return fmt.Errorf("build discoverer for %s: %w", src.Name, err)
		}
		ext := scrape.NewPageExtractor(src, cfg.ScrapeTimeout)

		// No lease: the CLI is expected to run against its own database
		// or under an external mutex (cron with flock).
		runner := scrape.NewRunner(disc, ext, opportunities, nil, log, scrape.RunnerOptions{
			NATOBody: src.NATOBody,
			Category: src.Category,
			Mode:     mode,
			Parallel: cfg.ScrapeParallel,
			Delay:    cfg.ScrapeDelay,
		})

		res, err := runner.Run(ctx)
		if err != nil {
			log.Error("source run failed",
				logger.String("source", src.Name),
				logger.Error(err))
			failed = true
			continue
		}
		fmt.Printf("%s: new=%d amended=%d unchanged=%d vanished=%d skipped=%d retired=%d errors=%d\n",
			src.Name, res.New, res.Amended, res.Unchanged, res.Vanished, res.Skipped, res.Retired, len(res.Errors))
	}

	if failed {
		return fmt.Errorf("one or more source runs failed")
	}
	return nil
}
