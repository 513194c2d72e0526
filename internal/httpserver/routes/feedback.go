package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/natowatch/natowatch/internal/httpserver/deps"
	"github.com/natowatch/natowatch/internal/httpserver/handlers"
	"github.com/natowatch/natowatch/internal/httpserver/mw"
)

func init() { Register(registerFeedback) }

func registerFeedback(r chi.Router, d deps.Deps) {
	r.Get("/api/feedback", handlers.ListFeedback(d))
	r.With(mw.RateLimit(mw.RateLimitConfig{
		Burst:             d.RateLimitBurst,
		RefillPerIPPerMin: d.RateLimitPerMin,
		TrustProxy:        d.TrustProxy,
	})).Post("/api/feedback", handlers.SubmitFeedback(d))
}
