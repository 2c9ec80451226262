package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionSubject is the input to token issuance
type SessionSubject struct {
	ID    string
	Email string
	// Role is empty for regular users
	Role string
}

// SubjectFromIdentity builds the issuance input for an identity. The user
// role stays implicit in the token.
func SubjectFromIdentity(identity Identity) SessionSubject {
	s := SessionSubject{
		ID:    identity.ID(),
		Email: identity.Email(),
	}
	if identity.Role() != RoleUser {
		s.Role = identity.Role()
	}
	return s
}

// JWTClaims is the signed session assertion. `id` and `email` keep the
// names the browser client decodes.
type JWTClaims struct {
	jwt.RegisteredClaims
	UID       string `json:"id,omitempty"`
	UserEmail string `json:"email,omitempty"`
	UserRole  string `json:"role,omitempty"`
}

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user ID
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// Email returns the email claim
func (c *JWTClaims) Email() string {
	return c.UserEmail
}

// Role returns the effective role, defaulting to RoleUser
func (c *JWTClaims) Role() string {
	role, _ := ParseRole(c.UserRole)
	return role
}

// HasRole checks if the session carries the given role
func (c *JWTClaims) HasRole(role string) bool {
	return c.Role() == role
}

// IsAdmin reports whether this is an administrator session
func (c *JWTClaims) IsAdmin() bool {
	return c.UserRole == RoleAdmin
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// SessionSubject returns the issuance input these claims were built from
func (c *JWTClaims) SessionSubject() SessionSubject {
	return SessionSubject{
		ID:    c.UserID(),
		Email: c.UserEmail,
		Role:  c.UserRole,
	}
}
