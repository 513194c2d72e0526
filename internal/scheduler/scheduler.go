// Package scheduler drives periodic scrape runs, one cron entry per
// enabled source.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/natowatch/natowatch/internal/logger"
	"github.com/natowatch/natowatch/internal/scrape"
	"github.com/natowatch/natowatch/internal/sources"
)

// RunFunc executes one scrape pass for a source. The scheduler does not
// care how the runner is wired, only that per-run failures come back as
// errors to log.
type RunFunc func(ctx context.Context, src sources.SourceConfig, mode scrape.Mode) (*scrape.Result, error)

// Scheduler owns the cron table and the manual trigger channel.
type Scheduler struct {
	cron    *cron.Cron
	sources []sources.SourceConfig
	run     RunFunc
	log     logger.Logger

	// manualTrigger carries a source name, or "" for all sources.
	manualTrigger chan string
	stopCh        chan struct{}
}

func New(srcs []sources.SourceConfig, run RunFunc, log logger.Logger, manualTrigger chan string) *Scheduler {
	return &Scheduler{
		cron:          cron.New(),
		sources:       srcs,
		run:           run,
		log:           log,
		manualTrigger: manualTrigger,
		stopCh:        make(chan struct{}),
	}
}

// Start registers one cron entry per enabled source and runs each once
// immediately so a fresh deployment has data before the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	registered := 0
	for _, src := range s.sources {
		if !src.Enabled {
			s.log.Info("source disabled, skipping schedule", logger.String("source", src.Name))
			continue
		}

		src := src
		spec := fmt.Sprintf("@every %s", src.Interval.Std())
		if _, err := s.cron.AddFunc(spec, func() { s.runOne(ctx, src) }); err != nil {
			return fmt.Errorf("schedule source %s (%s): %w", src.Name, spec, err)
		}
		registered++

		s.log.Info("source scheduled",
			logger.String("source", src.Name),
			logger.String("spec", spec))

		go s.runOne(ctx, src)
	}

	s.cron.Start()
	go s.listenManual(ctx)

	s.log.Info("scheduler started", logger.Int("sources", registered))
	return nil
}

// Stop halts the cron table. In-flight runs finish; nothing new starts.
func (s *Scheduler) Stop() {
	close(s.stopCh)
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) listenManual(ctx context.Context) {
	if s.manualTrigger == nil {
		return
	}
	for {
		select {
		case name := <-s.manualTrigger:
			s.log.Info("manual scrape triggered", logger.String("source", name))
			for _, src := range s.sources {
				if !src.Enabled {
					continue
				}
				if name == "" || src.Name == name {
					s.runOne(ctx, src)
				}
			}
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) runOne(ctx context.Context, src sources.SourceConfig) {
	mode := scrape.Mode(src.Mode)
	res, err := s.run(ctx, src, mode)
	if err != nil {
		s.log.Error("scheduled scrape failed",
			logger.String("source", src.Name),
			logger.Error(err))
		return
	}
	s.log.Info("scheduled scrape finished",
		logger.String("source", src.Name),
		logger.String("run_id", res.RunID),
		logger.Int("new", res.New),
		logger.Int("amended", res.Amended),
		logger.Int64("retired", res.Retired))
}
