package handlers

import (
	"net/http"

	"github.com/natowatch/natowatch/internal/httpserver/deps"
	"github.com/natowatch/natowatch/internal/logger"
)

type rescrapeResponse struct {
	Triggered bool   `json:"triggered"`
	Source    string `json:"source,omitempty"`
}

// Rescrape hands a manual scrape request to the scheduler. The run itself
// happens asynchronously; 202 only acknowledges the trigger.
func Rescrape(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.RescrapeTrigger == nil {
			respondError(w, http.StatusServiceUnavailable, "scheduler disabled")
			return
		}

		name := r.URL.Query().Get("source")
		if name != "" && !sourceKnown(d, name) {
			respondError(w, http.StatusNotFound, "unknown source")
			return
		}

		select {
		case d.RescrapeTrigger <- name:
			d.Logger.Info("rescrape queued", logger.String("source", name))
			respondJSON(w, http.StatusAccepted, rescrapeResponse{Triggered: true, Source: name})
		default:
			respondError(w, http.StatusConflict, "a rescrape is already queued")
		}
	}
}

func sourceKnown(d deps.Deps, name string) bool {
	for _, src := range d.Sources {
		if src.Name == name {
			return true
		}
	}
	return false
}
