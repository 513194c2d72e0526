package handlers

import (
	"net/http"
	"strings"

	"github.com/natowatch/natowatch/internal/domain"
	"github.com/natowatch/natowatch/internal/httpserver/deps"
	"github.com/natowatch/natowatch/internal/logger"
)

type feedbackRequest struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	SubmittedBy string `json:"submitted_by"`
}

const (
	maxFeedbackTitle       = 200
	maxFeedbackDescription = 5000
)

// SubmitFeedback accepts a public bug report or improvement suggestion.
func SubmitFeedback(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req feedbackRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		req.Title = strings.TrimSpace(req.Title)
		req.Description = strings.TrimSpace(req.Description)
		switch {
		case !domain.ValidFeedbackType(req.Type):
			respondError(w, http.StatusBadRequest, "type must be bug or improvement")
			return
		case req.Title == "" || len(req.Title) > maxFeedbackTitle:
			respondError(w, http.StatusBadRequest, "title is required (200 chars max)")
			return
		case req.Description == "" || len(req.Description) > maxFeedbackDescription:
			respondError(w, http.StatusBadRequest, "description is required (5000 chars max)")
			return
		}

		fb := &domain.Feedback{
			Type:        req.Type,
			Title:       req.Title,
			Description: req.Description,
			SubmittedBy: strings.TrimSpace(req.SubmittedBy),
			SubmittedAt: d.Now(),
		}
		if err := d.Feedback.Create(r.Context(), fb); err != nil {
			d.Logger.Error("store feedback failed", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "could not store feedback")
			return
		}
		respondJSON(w, http.StatusCreated, fb)
	}
}

// ListFeedback serves submitted feedback, optionally filtered by type and
// status.
func ListFeedback(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		feedbackType := q.Get("type")
		if feedbackType != "" && !domain.ValidFeedbackType(feedbackType) {
			respondError(w, http.StatusBadRequest, "invalid feedback type")
			return
		}
		status := q.Get("status")
		if status != "" && !domain.ValidFeedbackStatus(status) {
			respondError(w, http.StatusBadRequest, "invalid feedback status")
			return
		}

		items, err := d.Feedback.List(r.Context(), feedbackType, status)
		if err != nil {
			d.Logger.Error("list feedback failed", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "could not list feedback")
			return
		}
		if items == nil {
			items = []*domain.Feedback{}
		}
		respondJSON(w, http.StatusOK, items)
	}
}
