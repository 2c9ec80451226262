package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultPasswordCost matches the work factor the portal has always used
const DefaultPasswordCost = 10

// BcryptHasher implements PasswordHasher. The cost is fixed for the lifetime
// of the hasher.
type BcryptHasher struct {
	cost int
}

var _ PasswordHasher = (*BcryptHasher)(nil)

// NewBcryptHasher clamps cost to the bcrypt bounds. Zero selects the build
// default.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = passwordHashCost()
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &BcryptHasher{cost: cost}
}

// Cost returns the configured work factor
func (h *BcryptHasher) Cost() int {
	return h.cost
}

// Hash will generate a salted password hash. Two calls with the same
// plaintext produce different digests.
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrValidation.WithReason(ReasonEmptySecret, nil)
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrValidation.WithReason(ReasonSecretTooLong, err).WithFields(FieldError{
			Type:     "field",
			Path:     "password",
			Msg:      msgPasswordTooLong,
			Location: "body",
		})
	}
	if err != nil {
		return "", Internal(err, "hash password")
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. Malformed digests
// simply do not match.
func (h *BcryptHasher) Verify(plaintext, digest string) bool {
	if digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
