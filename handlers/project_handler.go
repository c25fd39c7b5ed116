package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hackslate/hackathon-system/middleware"
	"github.com/hackslate/hackathon-system/services"
)

const maxLogoBytes = 5 << 20 // 5MB

type ProjectHandler struct {
	projectService services.ProjectService
}

func NewProjectHandler(projectService services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projectService.List(r.Context())
	if err != nil {
		classifiedErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"projects": projects}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	publicID := chi.URLParam(r, "publicID")

	project, err := h.projectService.GetByPublicID(r.Context(), publicID)
	if err != nil {
		classifiedErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"project": project}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Create registers a new project owned by the session organizer.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input services.CreateProjectInput
	if err := readAndValidateJSON(w, r, &input); err != nil {
		classifiedErrorResponse(w, r, err)
		return
	}

	project, err := h.projectService.Create(r.Context(), actor.ID, input)
	if err != nil {
		classifiedErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"project": project}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	publicID := chi.URLParam(r, "publicID")
	actor, ok := middleware.UserFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input services.UpdateProjectInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	project, err := h.projectService.Update(r.Context(), publicID, actor.ID, input)
	if err != nil {
		classifiedErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"project": project}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	publicID := chi.URLParam(r, "publicID")
	actor, ok := middleware.UserFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	if err := h.projectService.Delete(r.Context(), publicID, actor.ID); err != nil {
		classifiedErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "project deleted"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UploadLogo replaces the project logo from a multipart form with a "logo"
// file field. Owner-only, enforced in the service.
func (h *ProjectHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	publicID := chi.URLParam(r, "publicID")
	actor, ok := middleware.UserFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	if err := r.ParseMultipartForm(maxLogoBytes); err != nil {
		badRequestResponse(w, r, errors.New("invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("logo")
	if err != nil {
		badRequestResponse(w, r, errors.New("logo file is required"))
		return
	}
	defer file.Close()

	project, err := h.projectService.UpdateLogo(r.Context(), publicID, actor.ID, file, header.Header.Get("Content-Type"))
	if err != nil {
		classifiedErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"project": project}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RegisterTeam enrolls a team into the project. The session user becomes the
// accepted leader; listed usernames are invited as pending members.
func (h *ProjectHandler) RegisterTeam(w http.ResponseWriter, r *http.Request) {
	publicID := chi.URLParam(r, "publicID")
	actor, ok := middleware.UserFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input services.RegisterTeamInput
	if err := readAndValidateJSON(w, r, &input); err != nil {
		classifiedErrorResponse(w, r, err)
		return
	}

	team, err := h.projectService.RegisterTeam(r.Context(), publicID, actor.ID, input)
	if err != nil {
		classifiedErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AcceptTeamMember moves a pending member to accepted. Leader-only.
func (h *ProjectHandler) AcceptTeamMember(w http.ResponseWriter, r *http.Request) {
	publicID := chi.URLParam(r, "publicID")
	actor, ok := middleware.UserFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	teamID, err := strconv.Atoi(chi.URLParam(r, "teamID"))
	if err != nil {
		badRequestResponse(w, r, errors.New("invalid team id"))
		return
	}

	team, err := h.projectService.AcceptTeamMember(r.Context(), publicID, teamID, actor.ID, chi.URLParam(r, "username"))
	if err != nil {
		classifiedErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
