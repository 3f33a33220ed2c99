package auth

import "lexlib/internal/domain/models"

// JWTVerifier verifies bearer tokens issued by the external identity provider.
// The middleware only depends on this interface.
type JWTVerifier interface {
	// VerifyToken validates a JWT and returns its claims.
	// Invalid, expired or wrongly signed tokens yield domain.ErrUnauthorized.
	VerifyToken(tokenString string) (*models.SupabaseClaims, error)

	// Close releases resources held by the verifier
	Close() error
}
