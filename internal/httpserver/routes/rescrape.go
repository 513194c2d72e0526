package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/natowatch/natowatch/internal/httpserver/deps"
	"github.com/natowatch/natowatch/internal/httpserver/handlers"
)

func init() { Register(registerRescrape) }

func registerRescrape(r chi.Router, d deps.Deps) {
	r.Post("/internal/rescrape", handlers.Rescrape(d))
}
