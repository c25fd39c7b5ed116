package middleware

import (
	"context"

	"github.com/hackslate/hackathon-system/models"
)

func withUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the authenticated identity attached by RequireAuth
// or OptionalAuth. The second return is false on anonymous requests.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok
}

func withAdminGate(ctx context.Context) context.Context {
	return context.WithValue(ctx, adminGateContextKey, true)
}

// HasAdminGate reports whether RequireAdminGate validated the gate cookie.
func HasAdminGate(ctx context.Context) bool {
	gate, ok := ctx.Value(adminGateContextKey).(bool)
	return ok && gate
}
