package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/natowatch/natowatch/internal/logger"
	"github.com/natowatch/natowatch/internal/scrape"
	"github.com/natowatch/natowatch/internal/sources"
)

func testSources() []sources.SourceConfig {
	return []sources.SourceConfig{
		{Name: "act", NATOBody: "ACT", Category: "IFIB", Enabled: true, Mode: "incremental", Interval: sources.Duration(time.Hour)},
		{Name: "ncia", NATOBody: "NCIA", Category: "RFI", Enabled: true, Mode: "full", Interval: sources.Duration(time.Hour)},
		{Name: "off", NATOBody: "NSPA", Category: "IFIB", Enabled: false, Interval: sources.Duration(time.Hour)},
	}
}

type runRecorder struct {
	mu   sync.Mutex
	runs []string
	done chan struct{}
}

func (r *runRecorder) run(ctx context.Context, src sources.SourceConfig, mode scrape.Mode) (*scrape.Result, error) {
	r.mu.Lock()
	r.runs = append(r.runs, src.Name+"/"+string(mode))
	r.mu.Unlock()
	select {
	case r.done <- struct{}{}:
	default:
	}
	return &scrape.Result{RunID: "test", State: scrape.StateDone}, nil
}

func (r *runRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.runs...)
}

func waitFor(t *testing.T, rec *runRecorder, want int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if len(rec.snapshot()) >= want {
			return
		}
		select {
		case <-rec.done:
		case <-deadline:
			t.Fatalf("timed out waiting for %d runs, got %v", want, rec.snapshot())
		}
	}
}

func TestStartRunsEnabledSourcesImmediately(t *testing.T) {
	rec := &runRecorder{done: make(chan struct{}, 16)}
	s := New(testSources(), rec.run, logger.Nop(), nil)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer s.Stop()

	waitFor(t, rec, 2)

	runs := rec.snapshot()
	seen := map[string]bool{}
	for _, r := range runs {
		seen[r] = true
	}
	if !seen["act/incremental"] || !seen["ncia/full"] {
		t.Errorf("initial runs = %v, want act/incremental and ncia/full", runs)
	}
	for _, r := range runs {
		if r == "off/incremental" || r == "off/" {
			t.Errorf("disabled source ran: %v", runs)
		}
	}
}

func TestManualTriggerByName(t *testing.T) {
	rec := &runRecorder{done: make(chan struct{}, 16)}
	trigger := make(chan string, 1)
	s := New(testSources(), rec.run, logger.Nop(), trigger)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer s.Stop()
	waitFor(t, rec, 2)

	trigger <- "act"
	waitFor(t, rec, 3)

	runs := rec.snapshot()
	var actRuns int
	for _, r := range runs {
		if r == "act/incremental" {
			actRuns++
		}
	}
	if actRuns != 2 {
		t.Errorf("act runs = %d, want 2 (startup plus manual): %v", actRuns, runs)
	}
}
