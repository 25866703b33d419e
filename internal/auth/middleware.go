package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/straye-as/toolshelf/internal/domain"
	"go.uber.org/zap"
)

// Middleware guards admin-only routes
type Middleware struct {
	tokens *TokenService
	logger *zap.Logger
}

// NewMiddleware creates a new authorization middleware
func NewMiddleware(tokens *TokenService, logger *zap.Logger) *Middleware {
	return &Middleware{
		tokens: tokens,
		logger: logger,
	}
}

// RequireAdmin rejects requests without a valid admin bearer token
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			unauthorized(w, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			unauthorized(w, "invalid authorization header format")
			return
		}

		claims, err := m.tokens.ValidateToken(parts[1])
		if err != nil {
			m.logger.Warn("admin token validation failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Error(err),
			)
			unauthorized(w, err.Error())
			return
		}

		admin := &AdminContext{
			TokenID: claims.ID,
			Subject: claims.Subject,
		}
		if claims.ExpiresAt != nil {
			admin.ExpiresAt = claims.ExpiresAt.Time
		}

		m.logger.Info("request authorized",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("token_id", admin.TokenID),
		)

		next.ServeHTTP(w, r.WithContext(WithAdminContext(r.Context(), admin)))
	})
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="toolshelf"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(domain.APIError{
		Type:   domain.ErrorTypeUnauthorized,
		Title:  "Unauthorized",
		Status: http.StatusUnauthorized,
		Detail: detail,
	})
}
