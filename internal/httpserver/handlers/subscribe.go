package handlers

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/natowatch/natowatch/internal/httpserver/deps"
	"github.com/natowatch/natowatch/internal/logger"
	"github.com/natowatch/natowatch/internal/store/gormstore"
)

type subscribeRequest struct {
	Email string `json:"email"`
}

type subscribeResponse struct {
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

func parseEmail(raw string) (string, bool) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	return strings.ToLower(addr.Address), true
}

// Subscribe signs an email address up for opportunity alerts.
func Subscribe(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req subscribeRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		email, ok := parseEmail(req.Email)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid email address")
			return
		}

		sub, err := d.Subscribers.Subscribe(r.Context(), email, d.Now())
		if errors.Is(err, gormstore.ErrAlreadySubscribed) {
			respondError(w, http.StatusConflict, "email already subscribed")
			return
		}
		if err != nil {
			d.Logger.Error("subscribe failed", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "could not subscribe")
			return
		}
		respondJSON(w, http.StatusCreated, subscribeResponse{Email: sub.Email, IsActive: sub.IsActive})
	}
}

// Unsubscribe deactivates an alert subscription.
func Unsubscribe(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req subscribeRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		email, ok := parseEmail(req.Email)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid email address")
			return
		}

		err := d.Subscribers.Unsubscribe(r.Context(), email, d.Now())
		if errors.Is(err, gormstore.ErrNotSubscribed) {
			respondError(w, http.StatusNotFound, "email not subscribed")
			return
		}
		if err != nil {
			d.Logger.Error("unsubscribe failed", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "could not unsubscribe")
			return
		}
		respondJSON(w, http.StatusOK, subscribeResponse{Email: email, IsActive: false})
	}
}
