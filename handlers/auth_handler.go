package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hackslate/hackathon-system/middleware"
	"github.com/hackslate/hackathon-system/models"
	"github.com/hackslate/hackathon-system/services"
)

type AuthHandler struct {
	authService  services.AuthService
	tokenService services.TokenService
	emailService *services.EmailService
	logger       *slog.Logger
}

func NewAuthHandler(
	authService services.AuthService,
	tokenService services.TokenService,
	emailService *services.EmailService,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		tokenService: tokenService,
		emailService: emailService,
		logger:       logger,
	}
}

// Signup creates a student identity and opens a session in the same response.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput
	if err := readAndValidateJSON(w, r, &input); err != nil {
		classifiedErrorResponse(w, r, err)
		return
	}

	user, code, err := h.authService.RegisterStudent(r.Context(), input)
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

// Login accepts an email, enrollment number, or username as the identifier.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
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

	if err := h.openSession(w, r, user); err != nil {
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"user": user}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	clearCookie(w, middleware.SessionCookieName)
	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "logged out"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// VerifyEmail consumes the emailed verification code.
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	code := chi.URLParam(r, "code")

	if err := h.authService.VerifyEmail(r.Context(), username, code); err != nil {
		classifiedErrorResponse(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "email verified"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// openSession signs a session token for the user and installs the cookie.
// A signing failure is answered directly and reported as a non-nil error.
func (h *AuthHandler) openSession(w http.ResponseWriter, r *http.Request, user *models.User) error {
	token, err := h.tokenService.IssueSessionToken(user)
	if err != nil {
		serverErrorResponse(w, r, err)
		return err
	}
	setCookie(w, middleware.SessionCookieName, token, h.tokenService.SessionTTL())
	return nil
}

func (h *AuthHandler) sendVerificationEmail(email, fullName, username, code string) {
	if h.emailService == nil {
		return
	}
	if err := h.emailService.SendVerificationEmail(email, fullName, username, code); err != nil {
		h.logger.Error("failed to send verification email",
			slog.String("email", email), slog.Any("error", err))
	}
}
