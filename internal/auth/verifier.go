package auth

import "context"

// Verifier authorizes destructive catalog actions in-process by checking
// the shared admin secret.
type Verifier struct {
	tokens *TokenService
}

// NewVerifier creates a verifier backed by the token service
func NewVerifier(tokens *TokenService) *Verifier {
	return &Verifier{tokens: tokens}
}

// Authorize returns ErrInvalidSecret unless secret matches the admin secret
func (v *Verifier) Authorize(ctx context.Context, secret string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return v.tokens.VerifySecret(secret)
}
