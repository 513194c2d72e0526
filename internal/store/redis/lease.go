package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/natowatch/natowatch/internal/logger"
)

// ErrLeaseHeld is returned when another run already holds the scope lease.
var ErrLeaseHeld = errors.New("scrape lease already held")

// releaseScript deletes the lease only if the stored token still matches,
// so an expired lease reacquired by another run is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Lease is the per-(nato_body, category) scrape mutex. Runs for different
// scopes proceed in parallel; a second run on the same scope fails fast
// with ErrLeaseHeld.
type Lease struct {
	client *redis.Client
	log    logger.Logger
}

func NewLease(client *redis.Client, log logger.Logger) *Lease {
	return &Lease{client: client, log: log}
}

// Acquire takes the scope lease for ttl and returns its release func. The
// TTL guarantees a crashed run cannot wedge the scope forever.
func (l *Lease) Acquire(ctx context.Context, natoBody, category string, ttl time.Duration) (func(context.Context), error) {
	key := LeaseKey(natoBody, category)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lease %s: %w", key, err)
	}
	if !ok {
		return nil, fmt.Errorf("lease %s: %w", key, ErrLeaseHeld)
	}

	l.log.Debug("scrape lease acquired",
		logger.String("key", key),
		logger.Duration("ttl", ttl))

	release := func(ctx context.Context) {
		n, err := releaseScript.Run(ctx, l.client, []string{key}, token).Int()
		if err != nil {
			l.log.Warn("lease release failed, will expire by ttl",
				logger.String("key", key),
				logger.Error(err))
			return
		}
		if n == 0 {
			l.log.Warn("lease token mismatch on release, lease expired mid-run",
				logger.String("key", key))
		}
	}
	return release, nil
}
