package scrape

import (
	"context"
	"fmt"
	"time"

	"github.com/natowatch/natowatch/internal/logger"
)

// Sweeper retires opportunities whose bidding deadline has passed.
//
// Retirement is driven purely by the parsed closing date, never by
// discovery results: a record that vanished from the website keeps its
// active flag until its deadline expires, and a record with no parsed
// deadline is never auto-retired.
type Sweeper struct {
	store Store
	log   logger.Logger
}

// NewSweeper creates a retirement sweeper over the given store.
func NewSweeper(store Store, log logger.Logger) *Sweeper {
	return &Sweeper{store: store, log: log}
}

// Sweep deactivates every active record with a parsed closing date before
// now and returns the number retired.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) (int64, error) {
	retired, err := s.store.RetireExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("retire expired opportunities: %w", err)
	}

	if retired > 0 {
		s.log.Info("retired expired opportunities",
			logger.Int64("retired", retired),
			logger.Time("cutoff", now))
	} else {
		s.log.Debug("no expired opportunities to retire")
	}

	return retired, nil
}
