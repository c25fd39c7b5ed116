package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hackslate/hackathon-system/middleware"
	"github.com/hackslate/hackathon-system/services"
)

const maxAvatarBytes = 5 << 20 // 5MB

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetProfile serves a public profile. With an authenticated session the
// response also flags whether the viewer is looking at their own profile.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	profile, err := h.userService.GetProfileByUsername(r.Context(), username)
	if err != nil {
		classifiedErrorResponse(w, r, err)
		return
	}

	isSelf := false
	if viewer, ok := middleware.UserFromContext(r.Context()); ok {
		isSelf = viewer.ID == profile.ID
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"user": profile, "isSelf": isSelf}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateProfile applies a partial profile update to the session's own account.
// The username in the path must match the session identity.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	actor, ok := middleware.UserFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	if actor.Username != username {
		forbiddenResponse(w, r, "cannot edit another user's profile")
		return
	}

	var input services.UpdateProfileInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), actor.ID, input)
	if err != nil {
		classifiedErrorResponse(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"user": user}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UploadAvatar replaces the session user's avatar from a multipart form with
// an "avatar" file field.
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	actor, ok := middleware.UserFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	if actor.Username != username {
		forbiddenResponse(w, r, "cannot edit another user's profile")
		return
	}

	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		badRequestResponse(w, r, errors.New("invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		badRequestResponse(w, r, errors.New("avatar file is required"))
		return
	}
	defer file.Close()

	user, err := h.userService.UpdateAvatar(r.Context(), actor.ID, file, header.Header.Get("Content-Type"))
	if err != nil {
		classifiedErrorResponse(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"user": user}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
