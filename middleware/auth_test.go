package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackslate/hackathon-system/models"
	"github.com/hackslate/hackathon-system/repositories"
	"github.com/hackslate/hackathon-system/services"
)

type stubUserRepo struct {
	repositories.UserRepository

	users map[int]*models.User
}

func (r *stubUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	if user, ok := r.users[id]; ok {
		return user, nil
	}
	return nil, repositories.ErrUserNotFound
}

func newTestMiddleware(t *testing.T, users ...*models.User) (*AuthMiddleware, services.TokenService) {
	t.Helper()
	tokens := services.NewTokenService("test-secret", time.Hour, time.Minute)
	repo := &stubUserRepo{users: map[int]*models.User{}}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return NewAuthMiddleware(tokens, repo), tokens
}

func okHandler(captured **models.User) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, ok := UserFromContext(r.Context()); ok {
			*captured = user
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuthNoCookie(t *testing.T) {
	mw, _ := newTestMiddleware(t)

	var captured *models.User
	rr := httptest.NewRecorder()
	mw.RequireAuth(okHandler(&captured)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Nil(t, captured)
}

func TestRequireAuthInvalidToken(t *testing.T) {
	mw, _ := newTestMiddleware(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "garbage"})

	rr := httptest.NewRecorder()
	mw.RequireAuth(okHandler(new(*models.User))).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequireAuthExpiredToken(t *testing.T) {
	user := &models.User{ID: 1, Username: "ada", Role: models.RoleStudent}
	repo := &stubUserRepo{users: map[int]*models.User{1: user}}
	expired := services.NewTokenService("test-secret", -time.Minute, time.Minute)
	mw := NewAuthMiddleware(expired, repo)

	token, err := expired.IssueSessionToken(user)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})

	rr := httptest.NewRecorder()
	mw.RequireAuth(okHandler(new(*models.User))).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequireAuthIdentityGone(t *testing.T) {
	// Token is valid but the account no longer exists.
	mw, tokens := newTestMiddleware(t)

	token, err := tokens.IssueSessionToken(&models.User{ID: 99, Username: "ghost"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})

	rr := httptest.NewRecorder()
	mw.RequireAuth(okHandler(new(*models.User))).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRequireAuthValid(t *testing.T) {
	user := &models.User{ID: 7, Username: "ada", Role: models.RoleStudent}
	mw, tokens := newTestMiddleware(t, user)

	token, err := tokens.IssueSessionToken(user)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})

	var captured *models.User
	rr := httptest.NewRecorder()
	mw.RequireAuth(okHandler(&captured)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, captured)
	assert.Equal(t, 7, captured.ID)
}

func TestRequireAuthStaleClaims(t *testing.T) {
	// The token carries display claims frozen at issue time; the attached
	// identity must reflect current repository state.
	user := &models.User{ID: 7, Username: "ada", Role: models.RoleStudent}
	mw, tokens := newTestMiddleware(t, user)

	token, err := tokens.IssueSessionToken(&models.User{ID: 7, Username: "old-name"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})

	var captured *models.User
	rr := httptest.NewRecorder()
	mw.RequireAuth(okHandler(&captured)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "ada", captured.Username)
}

func TestOptionalAuthDegradesToAnonymous(t *testing.T) {
	mw, _ := newTestMiddleware(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "garbage"})

	var captured *models.User
	rr := httptest.NewRecorder()
	mw.OptionalAuth(okHandler(&captured)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Nil(t, captured)
}

func TestRequireAdminGate(t *testing.T) {
	mw, tokens := newTestMiddleware(t)

	gateToken, err := tokens.IssueAdminGateToken()
	require.NoError(t, err)

	var sawGate bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawGate = HasAdminGate(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	// No cookie.
	rr := httptest.NewRecorder()
	mw.RequireAdminGate(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// Valid gate cookie.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: AdminGateCookieName, Value: gateToken})
	rr = httptest.NewRecorder()
	mw.RequireAdminGate(next).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, sawGate)
}

func TestAuthorizeOrganizer(t *testing.T) {
	organizer := &models.User{ID: 1, Role: models.RoleOrganizer}
	student := &models.User{ID: 2, Role: models.RoleStudent}

	tests := []struct {
		name    string
		user    *models.User
		hasGate bool
		wantErr bool
	}{
		{"organizer with gate", organizer, true, false},
		{"organizer without gate", organizer, false, true},
		{"student with gate", student, true, true},
		{"student without gate", student, false, true},
		{"anonymous with gate", nil, true, true},
		{"anonymous without gate", nil, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AuthorizeOrganizer(tt.user, tt.hasGate)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
