package auth

import "quarry/internal/domain/models"

// JWTVerifier validates bearer tokens. Abstracted so the middleware
// stays agnostic to the verification backend.
type JWTVerifier interface {
	// VerifyToken validates a JWT token string and returns the parsed claims.
	VerifyToken(tokenString string) (*models.AccessClaims, error)

	// Close releases any resources held by the verifier.
	Close() error
}
