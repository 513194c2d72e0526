package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/natowatch/natowatch/internal/httpserver/deps"
	"github.com/natowatch/natowatch/internal/httpserver/handlers"
)

func init() { Register(registerOpportunities) }

func registerOpportunities(r chi.Router, d deps.Deps) {
	r.Get("/api/opportunities", handlers.ListOpportunities(d))
	r.Get("/api/opportunities/{id}", handlers.GetOpportunity(d))
}
