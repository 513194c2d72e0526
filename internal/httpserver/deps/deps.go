package deps

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/natowatch/natowatch/internal/logger"
	"github.com/natowatch/natowatch/internal/sources"
	"github.com/natowatch/natowatch/internal/store/gormstore"
	redisstore "github.com/natowatch/natowatch/internal/store/redis"
)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	DB            *gorm.DB
	Opportunities *gormstore.OpportunityRepo
	Feedback      *gormstore.FeedbackRepo
	Roadmap       *gormstore.RoadmapRepo
	Subscribers   *gormstore.SubscriberRepo

	RedisClient *redis.Client
	ListCache   *redisstore.ListCache // nil disables listing cache

	Sources []sources.SourceConfig
	// RescrapeTrigger carries a source name ("" = all) to the scheduler.
	RescrapeTrigger chan string

	TrustProxy      bool
	RateLimitBurst  int
	RateLimitPerMin int
}

// Now returns the injected clock, defaulting to time.Now.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
