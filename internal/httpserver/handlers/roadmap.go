package handlers

import (
	"net/http"

	"github.com/natowatch/natowatch/internal/domain"
	"github.com/natowatch/natowatch/internal/httpserver/deps"
	"github.com/natowatch/natowatch/internal/logger"
)

// ListRoadmap serves the public roadmap, optionally filtered by category
// and status.
func ListRoadmap(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		category := q.Get("category")
		switch category {
		case "", domain.RoadmapCategoryNewFeature, domain.RoadmapCategoryImprovement:
		default:
			respondError(w, http.StatusBadRequest, "invalid roadmap category")
			return
		}
		status := q.Get("status")
		switch status {
		case "", domain.RoadmapStatusPlanned, domain.RoadmapStatusInProgress,
			domain.RoadmapStatusCompleted, domain.RoadmapStatusCancelled:
		default:
			respondError(w, http.StatusBadRequest, "invalid roadmap status")
			return
		}

		items, err := d.Roadmap.List(r.Context(), category, status)
		if err != nil {
			d.Logger.Error("list roadmap failed", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "could not list roadmap")
			return
		}
		if items == nil {
			items = []*domain.RoadmapItem{}
		}
		respondJSON(w, http.StatusOK, items)
	}
}
