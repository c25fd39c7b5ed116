package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/hackslate/hackathon-system/models"
	"github.com/hackslate/hackathon-system/services"
)

type SearchHandler struct {
	searchService services.SearchService
}

func NewSearchHandler(searchService services.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// Search runs the combined participant/project search. All filters arrive as
// query parameters; absent parameters contribute no filter stage.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query, err := parseSearchQuery(r)
	if err != nil {
		classifiedErrorResponse(w, r, err)
		return
	}

	result, err := h.searchService.Search(r.Context(), *query)
	if err != nil {
		classifiedErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Suggest is the typeahead endpoint: students only, minimal projection.
func (h *SearchHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.searchService.Suggest(r.Context(), r.URL.Query().Get("inputText"))
	if err != nil {
		classifiedErrorResponse(w, r, err)
		return
	}
	if suggestions == nil {
		suggestions = []models.Suggestion{}
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"suggestions": suggestions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func parseSearchQuery(r *http.Request) (*models.SearchQuery, error) {
	values := r.URL.Query()
	query := &models.SearchQuery{InputText: values.Get("inputText")}

	if raw := values.Get("role"); raw != "" {
		role := models.UserRole(raw)
		if role != models.RoleStudent && role != models.RoleOrganizer {
			return nil, &services.StatusError{Code: http.StatusBadRequest, Message: "invalid role filter"}
		}
		query.Role = &role
	}

	if raw := values.Get("available"); raw != "" {
		available, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, &services.StatusError{Code: http.StatusBadRequest, Message: "invalid available filter"}
		}
		query.Available = &available
	}

	if raw := values.Get("status"); raw != "" {
		status := models.ProjectStatus(raw)
		if status != models.StatusPlanned && status != models.StatusOngoing && status != models.StatusCompleted {
			return nil, &services.StatusError{Code: http.StatusBadRequest, Message: "invalid status filter"}
		}
		query.Status = &status
	}

	if raw := values.Get("maxTeamSize"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size <= 0 {
			return nil, &services.StatusError{Code: http.StatusBadRequest, Message: "invalid maxTeamSize filter"}
		}
		query.MaxTeamSize = &size
	}

	if raw := values.Get("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, &services.StatusError{Code: http.StatusBadRequest, Message: "invalid from date"}
		}
		query.From = &from
	}

	if raw := values.Get("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, &services.StatusError{Code: http.StatusBadRequest, Message: "invalid to date"}
		}
		query.To = &to
	}

	return query, nil
}
