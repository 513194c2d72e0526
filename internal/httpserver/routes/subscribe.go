package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/natowatch/natowatch/internal/httpserver/deps"
	"github.com/natowatch/natowatch/internal/httpserver/handlers"
	"github.com/natowatch/natowatch/internal/httpserver/mw"
)

func init() { Register(registerSubscribe) }

func registerSubscribe(r chi.Router, d deps.Deps) {
	limited := r.With(mw.RateLimit(mw.RateLimitConfig{
		Burst:             d.RateLimitBurst,
		RefillPerIPPerMin: d.RateLimitPerMin,
		TrustProxy:        d.TrustProxy,
	}))
	limited.Post("/api/subscribe", handlers.Subscribe(d))
	limited.Post("/api/subscribe/unsubscribe", handlers.Unsubscribe(d))
}
