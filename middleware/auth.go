package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hackslate/hackathon-system/models"
	"github.com/hackslate/hackathon-system/repositories"
	"github.com/hackslate/hackathon-system/services"
)

const (
	SessionCookieName   = "jwt_token"
	AdminGateCookieName = "admin"
)

type contextKey string

const (
	userContextKey      contextKey = "user"
	adminGateContextKey contextKey = "admin_gate"
)

type AuthMiddleware struct {
	tokens   services.TokenService
	userRepo repositories.UserRepository
}

func NewAuthMiddleware(tokens services.TokenService, userRepo repositories.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:   tokens,
		userRepo: userRepo,
	}
}

// RequireAuth gates protected routes. The identity is re-resolved on every
// request by the immutable user id claim, so a token issued before a profile
// change still authenticates the same account.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, status := m.resolveSession(r)
		switch status {
		case http.StatusOK:
			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
		case http.StatusNotFound:
			writeAuthError(w, http.StatusNotFound, "identity not found")
		default:
			writeAuthError(w, http.StatusUnauthorized, "authentication required")
		}
	})
}

// OptionalAuth personalizes public routes: any failure in the session
// pipeline degrades to anonymous instead of rejecting.
func (m *AuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, status := m.resolveSession(r); status == http.StatusOK {
			r = r.WithContext(withUser(r.Context(), user))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdminGate checks the independent flag-only gate cookie. It does not
// replace session authentication; organizer routes stack both.
func (m *AuthMiddleware) RequireAdminGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(AdminGateCookieName)
		if err != nil || m.tokens.VerifyAdminGateToken(cookie.Value) != nil {
			writeAuthError(w, http.StatusForbidden, "admin gate required")
			return
		}
		next.ServeHTTP(w, r.WithContext(withAdminGate(r.Context())))
	})
}

// RequireOrganizer applies the two-factor organizer predicate. Must be
// mounted after RequireAuth and RequireAdminGate.
func (m *AuthMiddleware) RequireOrganizer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ := UserFromContext(r.Context())
		if err := AuthorizeOrganizer(user, HasAdminGate(r.Context())); err != nil {
			writeAuthError(w, http.StatusForbidden, err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AuthorizeOrganizer is the organizer-route authorization predicate:
// an authenticated organizer identity AND a valid admin gate, combined with
// logical AND. Kept free of HTTP plumbing so the composition is testable.
func AuthorizeOrganizer(user *models.User, hasGate bool) error {
	if user == nil {
		return errors.New("authentication required")
	}
	if user.Role != models.RoleOrganizer {
		return errors.New("organizer role required")
	}
	if !hasGate {
		return errors.New("admin gate required")
	}
	return nil
}

// resolveSession runs the per-request session state machine and returns the
// terminal state as an HTTP status: 200 (authenticated), 401 (no usable
// token), 404 (token valid but identity gone).
func (m *AuthMiddleware) resolveSession(r *http.Request) (*models.User, int) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil, http.StatusUnauthorized
	}

	claims, err := m.tokens.VerifySessionToken(cookie.Value)
	if err != nil {
		return nil, http.StatusUnauthorized
	}

	user, err := m.userRepo.GetByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, http.StatusNotFound
		}
		return nil, http.StatusUnauthorized
	}

	return user, http.StatusOK
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
