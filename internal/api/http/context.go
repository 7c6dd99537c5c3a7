package http

import (
	"context"

	"rentacar-backend/internal/security"
)

type contextKey string

const claimsKey contextKey = "claims"

func withClaims(ctx context.Context, claims *security.UserClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext returns the token claims injected by the auth middleware.
func ClaimsFromContext(ctx context.Context) (*security.UserClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(*security.UserClaims)
	return claims, ok && claims != nil
}

// GetUserIDFromContext returns the authenticated user id, or 0 for public routes.
func GetUserIDFromContext(ctx context.Context) int32 {
	if claims, ok := ClaimsFromContext(ctx); ok {
		return claims.UserID
	}
	return 0
}

func isAdmin(ctx context.Context) bool {
	claims, ok := ClaimsFromContext(ctx)
	return ok && claims.Role == "admin"
}
