package auth

import (
	"context"
	"time"
)

// AdminContext describes the admin token a request was authorized with
type AdminContext struct {
	TokenID   string
	Subject   string
	ExpiresAt time.Time
}

type contextKey string

const adminContextKey contextKey = "adminContext"

// WithAdminContext adds admin context to the context
func WithAdminContext(ctx context.Context, admin *AdminContext) context.Context {
	return context.WithValue(ctx, adminContextKey, admin)
}

// FromContext extracts admin context from the context
func FromContext(ctx context.Context) (*AdminContext, bool) {
	admin, ok := ctx.Value(adminContextKey).(*AdminContext)
	return admin, ok
}
