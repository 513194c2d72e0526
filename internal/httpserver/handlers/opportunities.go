package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/natowatch/natowatch/internal/domain"
	"github.com/natowatch/natowatch/internal/httpserver/deps"
	"github.com/natowatch/natowatch/internal/logger"
	"github.com/natowatch/natowatch/internal/store/gormstore"
)

type opportunityListResponse struct {
	Items      []*domain.Opportunity `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalPages int                   `json:"total_pages"`
}

var validSorts = map[string]bool{
	gormstore.SortClosingDateAsc:  true,
	gormstore.SortClosingDateDesc: true,
	gormstore.SortRecentlyUpdated: true,
	gormstore.SortRecentlyAdded:   true,
	gormstore.SortNameAsc:         true,
}

// ListOpportunities serves the filtered, paginated listing. Responses are
// cached in Redis keyed by the canonical query string; the database stays
// authoritative on any cache trouble.
func ListOpportunities(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseListFilter(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Now = d.Now()

		cacheKey := r.URL.Query().Encode()
		if d.ListCache != nil {
			var cached opportunityListResponse
			if hit, _ := d.ListCache.Get(r.Context(), cacheKey, &cached); hit {
				respondJSON(w, http.StatusOK, cached)
				return
			}
		}

		items, total, err := d.Opportunities.List(r.Context(), filter)
		if err != nil {
			d.Logger.Error("list opportunities failed", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "could not list opportunities")
			return
		}
		if items == nil {
			items = []*domain.Opportunity{}
		}

		size := filter.PageSize
		if size < 1 {
			size = gormstore.DefaultPageSize
		}
		if size > gormstore.MaxPageSize {
			size = gormstore.MaxPageSize
		}
		page := filter.Page
		if page < 1 {
			page = 1
		}
		resp := opportunityListResponse{
			Items:      items,
			Total:      total,
			Page:       page,
			PageSize:   size,
			TotalPages: int((total + int64(size) - 1) / int64(size)),
		}

		if d.ListCache != nil {
			_ = d.ListCache.Set(r.Context(), cacheKey, resp)
		}
		respondJSON(w, http.StatusOK, resp)
	}
}

// GetOpportunity serves one record by numeric ID.
func GetOpportunity(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid opportunity id")
			return
		}

		opp, err := d.Opportunities.GetByID(r.Context(), uint(id))
		if err != nil {
			d.Logger.Error("get opportunity failed", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "could not load opportunity")
			return
		}
		if opp == nil {
			respondError(w, http.StatusNotFound, "opportunity not found")
			return
		}
		respondJSON(w, http.StatusOK, opp)
	}
}

func parseListFilter(r *http.Request) (gormstore.ListFilter, error) {
	q := r.URL.Query()
	var f gormstore.ListFilter

	// Active records by default; is_active=all lifts the filter.
	switch q.Get("is_active") {
	case "", "true":
		active := true
		f.IsActive = &active
	case "false":
		inactive := false
		f.IsActive = &inactive
	case "all":
	default:
		return f, errBadParam("is_active")
	}

	f.OpportunityTypes = q["opportunity_type"]
	f.NATOBodies = q["nato_body"]
	f.Search = q.Get("search")

	for name, dst := range map[string]*bool{
		"closing_in_7_days": &f.ClosingIn7Days,
		"new_this_week":     &f.NewThisWeek,
		"updated_this_week": &f.UpdatedThisWeek,
	} {
		switch q.Get(name) {
		case "", "false":
		case "true":
			*dst = true
		default:
			return f, errBadParam(name)
		}
	}

	if sort := q.Get("sort"); sort != "" {
		if !validSorts[sort] {
			return f, errBadParam("sort")
		}
		f.Sort = sort
	}

	var err error
	if f.Page, err = intParam(q.Get("page"), 1); err != nil {
		return f, errBadParam("page")
	}
	if f.PageSize, err = intParam(q.Get("page_size"), gormstore.DefaultPageSize); err != nil {
		return f, errBadParam("page_size")
	}
	return f, nil
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, errBadParam(raw)
	}
	return n, nil
}

type paramError string

func errBadParam(name string) paramError { return paramError(name) }

func (e paramError) Error() string { return "invalid value for parameter " + string(e) }
