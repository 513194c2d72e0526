package scrape

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/natowatch/natowatch/internal/logger"
)

// Mode selects how rediscovered records are processed.
type Mode string

const (
	// ModeIncremental skips re-fetching unchanged records; they only get a
	// last_checked_at refresh.
	ModeIncremental Mode = "incremental"
	// ModeFull re-fetches and re-extracts every discovered link. Identity
	// matching still follows the code-based rule.
	ModeFull Mode = "full"
)

// Run states. FAILED is absorbing and reachable from every step.
const (
	StateDiscovering = "DISCOVERING"
	StateReconciling = "RECONCILING"
	StateProcessing  = "PROCESSING"
	StateRetiring    = "RETIRING"
	StateDone        = "DONE"
	StateFailed      = "FAILED"
)

// ItemError is one per-item failure captured during PROCESSING. Per-item
// failures never abort the run.
type ItemError struct {
	Code  string `json:"code,omitempty"`
	URL   string `json:"url,omitempty"`
	Stage string `json:"stage"`
	Err   string `json:"error"`
}

// Result is the run's deliverable: aggregate counts plus the per-item
// error list. It is returned as a value, not raised.
type Result struct {
	RunID    string `json:"run_id"`
	NATOBody string `json:"nato_body"`
	Category string `json:"category"`
	Mode     Mode   `json:"mode"`
	State    string `json:"state"`

	New        int   `json:"new"`
	Amended    int   `json:"amended"`
	Unchanged  int   `json:"unchanged"`
	Vanished   int   `json:"vanished"`
	Skipped    int   `json:"skipped"`
	Duplicates int   `json:"duplicates"`
	Retired    int64 `json:"retired"`

	Errors []ItemError `json:"errors,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// RunnerOptions configure one orchestrator.
type RunnerOptions struct {
	NATOBody string
	Category string
	Mode     Mode
	// Parallel bounds concurrent item processing. Items are independent by
	// opportunity code, so per-code write serialization holds as long as
	// the classifier emits each code once (it does).
	Parallel int
	// Delay spaces out item launches so the source site is not hammered.
	Delay    time.Duration
	LeaseTTL time.Duration
	Now      func() time.Time
}

// Runner sequences one reconciliation pass:
// DISCOVERING -> RECONCILING -> PROCESSING -> RETIRING -> DONE.
type Runner struct {
	discoverer Discoverer
	extractor  Extractor
	store      Store
	sweeper    *Sweeper
	lease      Lease
	log        logger.Logger
	opts       RunnerOptions
}

// NewRunner wires an orchestrator from its collaborators. lease may be nil
// when the caller already holds exclusivity (tests, one-shot CLI against a
// private database).
func NewRunner(d Discoverer, e Extractor, s Store, lease Lease, log logger.Logger, opts RunnerOptions) *Runner {
	if opts.Parallel < 1 {
		opts.Parallel = 1
	}
	if opts.Mode == "" {
		opts.Mode = ModeIncremental
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.LeaseTTL <= 0 {
		opts.LeaseTTL = 30 * time.Minute
	}
	return &Runner{
		discoverer: d,
		extractor:  e,
		store:      s,
		sweeper:    NewSweeper(s, log),
		lease:      lease,
		log:        log,
		opts:       opts,
	}
}

// Run executes one pass. Fatal failures (discovery, storage read, lease
// contention) return a non-nil error alongside the partial result; per-item
// failures are recorded in Result.Errors and do not abort the run.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	res := &Result{
		RunID:     uuid.NewString(),
		NATOBody:  r.opts.NATOBody,
		Category:  r.opts.Category,
		Mode:      r.opts.Mode,
		StartedAt: r.opts.Now(),
	}

	r.log.Info("scrape run starting",
		logger.String("run_id", res.RunID),
		logger.String("nato_body", res.NATOBody),
		logger.String("category", res.Category),
		logger.String("mode", string(res.Mode)))

	if r.lease != nil {
		release, err := r.lease.Acquire(ctx, r.opts.NATOBody, r.opts.Category, r.opts.LeaseTTL)
		if err != nil {
			return r.fail(res, fmt.Errorf("acquire scrape lease: %w", err))
		}
		defer release(context.WithoutCancel(ctx))
	}

	// DISCOVERING
	res.State = StateDiscovering
	links, err := r.discoverer.Discover(ctx)
	if err != nil {
		return r.fail(res, fmt.Errorf("discover opportunity links: %w", err))
	}
	r.log.Info("discovery complete",
		logger.String("run_id", res.RunID),
		logger.Int("links", len(links)))

	// RECONCILING
	res.State = StateReconciling
	existing, err := r.store.FindByScope(ctx, r.opts.NATOBody, r.opts.Category)
	if err != nil {
		return r.fail(res, fmt.Errorf("load existing records: %w", err))
	}
	cls := Classify(links, existing)

	res.Vanished = len(cls.Vanished)
	res.Skipped = len(cls.Skipped)
	res.Duplicates = cls.DuplicateCodes
	for _, sk := range cls.Skipped {
		r.log.Warn("skipping link without extractable code",
			logger.String("run_id", res.RunID),
			logger.String("url", sk.Link.URL),
			logger.String("reason", sk.Reason))
	}
	if cls.DuplicateCodes > 0 {
		r.log.Warn("duplicate opportunity codes in discovery pass, last link wins",
			logger.String("run_id", res.RunID),
			logger.Int("duplicates", cls.DuplicateCodes))
	}

	// PROCESSING
	res.State = StateProcessing
	r.process(ctx, cls, res)

	// RETIRING runs after processing so it sees post-amendment closing
	// dates, and it runs regardless of per-item failures.
	res.State = StateRetiring
	retired, err := r.sweeper.Sweep(ctx, r.opts.Now())
	if err != nil {
		return r.fail(res, err)
	}
	res.Retired = retired

	res.State = StateDone
	res.FinishedAt = r.opts.Now()
	r.log.Info("scrape run complete",
		logger.String("run_id", res.RunID),
		logger.Int("new", res.New),
		logger.Int("amended", res.Amended),
		logger.Int("unchanged", res.Unchanged),
		logger.Int("vanished", res.Vanished),
		logger.Int("skipped", res.Skipped),
		logger.Int64("retired", res.Retired),
		logger.Int("item_errors", len(res.Errors)),
		logger.Duration("elapsed", res.FinishedAt.Sub(res.StartedAt)))

	return res, nil
}

func (r *Runner) fail(res *Result, err error) (*Result, error) {
	res.State = StateFailed
	res.FinishedAt = r.opts.Now()
	r.log.Error("scrape run failed",
		logger.String("run_id", res.RunID),
		logger.String("nato_body", res.NATOBody),
		logger.String("category", res.Category),
		logger.Error(err))
	return res, err
}

// process works through the classification with bounded parallelism.
// Outcomes land in res under mu. A cancelled context stops new items;
// mutations already committed stay committed.
func (r *Runner) process(ctx context.Context, cls Classification, res *Result) {
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, r.opts.Parallel)
	)

	launch := func(fn func()) bool {
		if ctx.Err() != nil {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			fn()
		}()
		if r.opts.Delay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(r.opts.Delay):
			}
		}
		return true
	}

	record := func(update func()) {
		mu.Lock()
		defer mu.Unlock()
		update()
	}

	for _, item := range cls.New {
		item := item
		if !launch(func() { r.processNew(ctx, item, res, record) }) {
			break
		}
	}
	for _, item := range cls.Amended {
		item := item
		if !launch(func() { r.processAmendment(ctx, item, res, record) }) {
			break
		}
	}
	for _, item := range cls.Unchanged {
		item := item
		if r.opts.Mode == ModeFull {
			if !launch(func() { r.processFullRefresh(ctx, item, res, record) }) {
				break
			}
			continue
		}
		if !launch(func() { r.processUnchanged(ctx, item, res, record) }) {
			break
		}
	}

	wg.Wait()
}

func (r *Runner) processNew(ctx context.Context, item NewItem, res *Result, record func(func())) {
	fields, err := r.extractor.Extract(ctx, item.Link.URL)
	if err != nil {
		r.itemError(item.Code, item.Link.URL, "extract", err, res, record)
		return
	}

	// The scope filter can miss a record created under another category;
	// the code is globally unique, so guard the create.
	prior, err := r.store.FindByCode(ctx, item.Code)
	if err != nil {
		r.itemError(item.Code, item.Link.URL, "store lookup", err, res, record)
		return
	}
	if prior != nil {
		now := r.opts.Now()
		if URLsDifferByEnding(item.Link.URL, prior.URL) {
			ApplyAmendment(prior, fields, now)
			if err := r.store.Update(ctx, prior); err != nil {
				r.itemError(item.Code, item.Link.URL, "store amendment", err, res, record)
				return
			}
			record(func() { res.Amended++ })
			return
		}
		ApplyContent(prior, fields, now)
		if err := r.store.Update(ctx, prior); err != nil {
			r.itemError(item.Code, item.Link.URL, "store update", err, res, record)
			return
		}
		record(func() { res.Unchanged++ })
		return
	}

	rec := NewRecord(item.Code, fields, r.opts.Now())
	if err := r.store.Create(ctx, rec); err != nil {
		r.itemError(item.Code, item.Link.URL, "store create", err, res, record)
		return
	}

	r.log.Info("created opportunity",
		logger.String("code", rec.OpportunityCode),
		logger.String("url", rec.URL))
	record(func() { res.New++ })
}

func (r *Runner) processAmendment(ctx context.Context, item AmendmentItem, res *Result, record func(func())) {
	fields, err := r.extractor.Extract(ctx, item.Link.URL)
	if err != nil {
		// Leave the record untouched so the next pass re-detects the
		// amendment instead of masking it behind a fresh last_checked_at.
		r.itemError(item.Code, item.Link.URL, "extract", err, res, record)
		return
	}

	changed := ApplyAmendment(item.Record, fields, r.opts.Now())
	if err := r.store.Update(ctx, item.Record); err != nil {
		r.itemError(item.Code, item.Link.URL, "store amendment", err, res, record)
		return
	}

	r.log.Info("applied amendment",
		logger.String("code", item.Code),
		logger.String("url", item.Link.URL),
		logger.Int("amendment_count", item.Record.AmendmentCount),
		logger.Int("changed_fields", len(changed)))
	record(func() { res.Amended++ })
}

func (r *Runner) processUnchanged(ctx context.Context, item UnchangedItem, res *Result, record func(func())) {
	Touch(item.Record, r.opts.Now())
	if err := r.store.Update(ctx, item.Record); err != nil {
		r.itemError(item.Code, item.Link.URL, "store touch", err, res, record)
		return
	}
	record(func() { res.Unchanged++ })
}

// processFullRefresh is the full-mode path for records whose URL ending is
// unchanged: re-extract and overwrite content, without amendment counters.
func (r *Runner) processFullRefresh(ctx context.Context, item UnchangedItem, res *Result, record func(func())) {
	fields, err := r.extractor.Extract(ctx, item.Link.URL)
	if err != nil {
		r.itemError(item.Code, item.Link.URL, "extract", err, res, record)
		return
	}

	ApplyContent(item.Record, fields, r.opts.Now())
	if err := r.store.Update(ctx, item.Record); err != nil {
		r.itemError(item.Code, item.Link.URL, "store update", err, res, record)
		return
	}
	record(func() { res.Unchanged++ })
}

func (r *Runner) itemError(code, url, stage string, err error, res *Result, record func(func())) {
	r.log.Warn("item processing failed, continuing",
		logger.String("code", code),
		logger.String("url", url),
		logger.String("stage", stage),
		logger.Error(err))
	record(func() {
		res.Errors = append(res.Errors, ItemError{Code: code, URL: url, Stage: stage, Err: err.Error()})
	})
}
