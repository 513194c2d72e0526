package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/natowatch/natowatch/internal/httpserver/deps"
	"github.com/natowatch/natowatch/internal/store/gormstore"
)

// listCountFilter counts active records as cheaply as List allows.
func listCountFilter() gormstore.ListFilter {
	active := true
	return gormstore.ListFilter{IsActive: &active, PageSize: 1}
}

type componentStatus struct {
	OK      bool   `json:"ok"`
	Detail  string `json:"detail,omitempty"`
	Error   string `json:"error,omitempty"`
	Count   *int64 `json:"count,omitempty"`
	Sources *int   `json:"sources,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports per-component health for the ops dashboard: database with
// record count, redis, and the configured source catalog.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		components := map[string]componentStatus{
			"database": checkDatabase(ctx, d),
			"redis":    checkRedis(ctx, d),
			"sources":  checkSources(d),
		}

		status := "ok"
		for _, c := range components {
			if !c.OK {
				status = "degraded"
				break
			}
		}
		respondJSON(w, http.StatusOK, infraResponse{Status: status, Components: components})
	}
}

func checkDatabase(ctx context.Context, d deps.Deps) componentStatus {
	if d.DB == nil || d.Opportunities == nil {
		return componentStatus{OK: false, Error: "not configured"}
	}
	sqlDB, err := d.DB.DB()
	if err != nil {
		return componentStatus{OK: false, Error: err.Error()}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return componentStatus{OK: false, Error: err.Error()}
	}

	_, total, err := d.Opportunities.List(ctx, listCountFilter())
	if err != nil {
		return componentStatus{OK: false, Error: err.Error()}
	}
	return componentStatus{OK: true, Count: &total}
}

func checkRedis(ctx context.Context, d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{OK: false, Error: "not configured"}
	}
	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{OK: false, Error: err.Error()}
	}
	return componentStatus{OK: true}
}

func checkSources(d deps.Deps) componentStatus {
	enabled := 0
	for _, src := range d.Sources {
		if src.Enabled {
			enabled++
		}
	}
	return componentStatus{OK: enabled > 0, Sources: &enabled}
}
