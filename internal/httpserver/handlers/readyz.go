package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/natowatch/natowatch/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready    bool   `json:"ready"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

// Readyz reports whether both backing stores answer. Readiness fails when
// either is down; the process itself may still be healthy.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := readyzResponse{Ready: true, Database: "ok", Redis: "ok"}

		if d.DB == nil {
			resp.Ready, resp.Database = false, "not configured"
		} else if sqlDB, err := d.DB.DB(); err != nil {
			resp.Ready, resp.Database = false, err.Error()
		} else if err := sqlDB.PingContext(ctx); err != nil {
			resp.Ready, resp.Database = false, err.Error()
		}

		if d.RedisClient == nil {
			resp.Ready, resp.Redis = false, "not configured"
		} else if err := d.RedisClient.Ping(ctx).Err(); err != nil {
			resp.Ready, resp.Redis = false, err.Error()
		}

		status := http.StatusOK
		if !resp.Ready {
			status = http.StatusServiceUnavailable
		}
		respondJSON(w, status, resp)
	}
}
