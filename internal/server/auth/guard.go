package auth

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/devconnector/internal/common"
)

// TokenVerifier is the part of TokenService the guard depends on.
type TokenVerifier interface {
	Verify(token string) (*Identity, error)
}

// Guard authenticates requests from their Authorization header.
type Guard struct {
	tokens TokenVerifier
}

func NewGuard(tokens TokenVerifier) *Guard {
	return &Guard{tokens: tokens}
}

// Authenticate expects "Bearer <token>". Every failure is reported as
// common.ErrorUnauthorized wrapping the cause.
func (g *Guard) Authenticate(header string) (*Identity, error) {
	token, ok := strings.CutPrefix(header, common.BearerPrefix)
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		return nil, fmt.Errorf("%w: missing bearer token", common.ErrorUnauthorized)
	}

	id, err := g.tokens.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}
	return id, nil
}
