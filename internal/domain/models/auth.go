package models

import "github.com/golang-jwt/jwt/v5"

// SupabaseClaims holds the token claims the library reads. Editors are identified
// by the subject; annotations are keyed by it.
type SupabaseClaims struct {
	jwt.RegisteredClaims
	Email       string `json:"email"`
	Role        string `json:"role"`
	SessionID   string `json:"session_id"`
	IsAnonymous bool   `json:"is_anonymous"`
}

// GetUserID returns the subject claim
func (c *SupabaseClaims) GetUserID() string {
	return c.Subject
}

// Authenticated reports whether the token belongs to a signed-in user.
// Anonymous sessions carry role "anon".
func (c *SupabaseClaims) Authenticated() bool {
	return c.Subject != "" && c.Role == "authenticated" && !c.IsAnonymous
}
