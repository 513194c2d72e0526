package scrape

import (
	"context"
	"time"

	"github.com/natowatch/natowatch/internal/domain"
)

// Link is one opportunity link discovered on a source listing page.
type Link struct {
	URL  string
	Text string
}

// Discoverer fetches the current set of opportunity links from a source
// website, in listing order.
type Discoverer interface {
	Discover(ctx context.Context) ([]Link, error)
}

// Extractor turns an opportunity page into a fresh field set. Extraction
// heuristics live behind this boundary; the engine only diffs the result.
type Extractor interface {
	Extract(ctx context.Context, url string) (domain.FieldSet, error)
}

// Store is the persistence boundary of the reconciliation engine.
// Create and Update are atomic per call.
type Store interface {
	FindByScope(ctx context.Context, natoBody, category string) ([]*domain.Opportunity, error)
	FindByCode(ctx context.Context, code string) (*domain.Opportunity, error)
	Create(ctx context.Context, opp *domain.Opportunity) error
	Update(ctx context.Context, opp *domain.Opportunity) error

	// RetireExpired deactivates every active record whose parsed closing
	// date is before now. Records without a parsed closing date are exempt.
	RetireExpired(ctx context.Context, now time.Time) (int64, error)
}

// Lease provides mutual exclusion for scrape runs. The (source, category)
// pair is the exclusion boundary; runs for different scopes are independent.
type Lease interface {
	// Acquire returns a release func, or an error when another run holds
	// the lease. Release must be safe to call on every exit path.
	Acquire(ctx context.Context, natoBody, category string, ttl time.Duration) (func(context.Context), error)
}
