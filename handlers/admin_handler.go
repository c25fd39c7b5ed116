package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hackslate/hackathon-system/middleware"
	"github.com/hackslate/hackathon-system/models"
	"github.com/hackslate/hackathon-system/services"
)

// AdminHandler serves the organizer surface: the shared admin gate plus
// organizer signup/login. The gate cookie carries no identity; organizer
// routes additionally require an organizer session.
type AdminHandler struct {
	authService  services.AuthService
	tokenService services.TokenService
	emailService *services.EmailService
	logger       *slog.Logger
}

func NewAdminHandler(
	authService services.AuthService,
	tokenService services.TokenService,
	emailService *services.EmailService,
	logger *slog.Logger,
) *AdminHandler {
	return &AdminHandler{
		authService:  authService,
		tokenService: tokenService,
		emailService: emailService,
		logger:       logger,
	}
}

type adminGateInput struct {
	Password string `json:"password" validate:"required"`
}

// Authenticate checks the shared admin password and, on success, installs the
// short-lived gate cookie.
func (h *AdminHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	var input adminGateInput
	if err := readAndValidateJSON(w, r, &input); err != nil {
		classifiedErrorResponse(w, r, err)
		return
	}

	if err := h.authService.CheckAdminGatePassword(input.Password); err != nil {
		classifiedErrorResponse(w, r, err)
		return
	}

	token, err := h.tokenService.IssueAdminGateToken()
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}
	setCookie(w, middleware.AdminGateCookieName, token, h.tokenService.AdminGateTTL())

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "admin gate opened"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Signup registers an organizer account. Requires the gate cookie so the
// shared password also guards account creation.
func (h *AdminHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput
	if err := readAndValidateJSON(w, r, &input); err != nil {
		classifiedErrorResponse(w, r, err)
		return
	}

	user, code, err := h.authService.RegisterOrganizer(r.Context(), input)
	if err != nil {
		classifiedErrorResponse(w, r, err)
		return
	}

	h.sendVerificationEmail(user.Email, user.FullName, user.Username, code)

	if err := h.openSession(w, r, user); err != nil {
		return
	}

	user.PasswordHash = ""
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"user": user}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Login is the organizer variant of login: the same identifier resolution,
// but non-organizer accounts are rejected even with correct credentials.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput
	if err := readAndValidateJSON(w, r, &input); err != nil {
		classifiedErrorResponse(w, r, err)
		return
	}

	user, err := h.authService.Login(r.Context(), input)
	if err != nil {
		classifiedErrorResponse(w, r, err)
		return
	}

	if user.Role != models.RoleOrganizer {
		classifiedErrorResponse(w, r, services.ErrForbiddenOperation)
		return
	}

	if err := h.openSession(w, r, user); err != nil {
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"user": user}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Logout clears both the session and the gate cookie.
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	clearCookie(w, middleware.SessionCookieName)
	clearCookie(w, middleware.AdminGateCookieName)
	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "logged out"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AdminHandler) openSession(w http.ResponseWriter, r *http.Request, user *models.User) error {
	token, err := h.tokenService.IssueSessionToken(user)
	if err != nil {
		serverErrorResponse(w, r, err)
		return err
	}
	setCookie(w, middleware.SessionCookieName, token, h.tokenService.SessionTTL())
	return nil
}

func (h *AdminHandler) sendVerificationEmail(email, fullName, username, code string) {
	if h.emailService == nil {
		return
	}
	if err := h.emailService.SendVerificationEmail(email, fullName, username, code); err != nil {
		h.logger.Error("failed to send verification email",
			slog.String("email", email), slog.Any("error", err))
	}
}
