package handler

import (
	"errors"
	"net/http"

	"github.com/straye-as/toolshelf/internal/auth"
	"github.com/straye-as/toolshelf/internal/domain"
	"go.uber.org/zap"
)

type AuthHandler struct {
	tokens *auth.TokenService
	logger *zap.Logger
}

func NewAuthHandler(tokens *auth.TokenService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		tokens: tokens,
		logger: logger,
	}
}

// Token godoc
// @Summary Exchange the admin secret for a bearer token
// @Description The token authorizes destructive catalog actions such as deleting a tool
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.TokenRequest true "Admin secret"
// @Success 200 {object} domain.TokenResponse
// @Failure 401 {object} domain.APIError
// @Router /auth/token [post]
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req domain.TokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	token, ttl, err := h.tokens.Issue(req.Secret)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidSecret) {
			h.logger.Warn("admin token requested with wrong secret",
				zap.String("remote_addr", r.RemoteAddr),
			)
			respondWithError(w, http.StatusUnauthorized, "Incorrect password")
			return
		}
		h.logger.Error("failed to issue admin token", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	respondJSON(w, http.StatusOK, domain.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(ttl.Seconds()),
	})
}
