package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/natowatch/natowatch/internal/httpserver/deps"
	"github.com/natowatch/natowatch/internal/httpserver/handlers"
)

func init() { Register(registerRoadmap) }

func registerRoadmap(r chi.Router, d deps.Deps) {
	r.Get("/api/roadmap", handlers.ListRoadmap(d))
}
