package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL applies to user and administrator sessions alike
const DefaultTokenTTL = 24 * time.Hour

var signingMethod = jwt.SigningMethodHS256

type signingKey struct {
	kid    string
	secret []byte
}

// TokenService issues and verifies HS256 session tokens. It holds no state
// besides its keys, which never change after construction.
type TokenService struct {
	active  signingKey
	retired []signingKey
	keyFunc jwt.Keyfunc
	ttl     time.Duration
	issuer  string
	now     func() time.Time
	logger  Logger
}

var (
	_ TokenIssuer    = (*TokenService)(nil)
	_ TokenValidator = (*TokenService)(nil)
)

// TokenServiceOption configures a TokenService
type TokenServiceOption func(*TokenService)

// WithClock replaces time.Now, mostly for expiry tests
func WithClock(now func() time.Time) TokenServiceOption {
	return func(ts *TokenService) {
		if now != nil {
			ts.now = now
		}
	}
}

// WithRetiredSigningKeys accepts tokens signed with previous secrets. They
// are never used to sign.
func WithRetiredSigningKeys(secrets ...[]byte) TokenServiceOption {
	return func(ts *TokenService) {
		for _, secret := range secrets {
			if len(secret) == 0 {
				continue
			}
			ts.retired = append(ts.retired, newSigningKey(secret))
		}
	}
}

// WithTokenLogger sets the logger
func WithTokenLogger(logger Logger) TokenServiceOption {
	return func(ts *TokenService) {
		ts.logger = resolveLogger(logger)
	}
}

// NewTokenService creates a TokenService. A non-positive ttl selects
// DefaultTokenTTL.
func NewTokenService(secret []byte, ttl time.Duration, issuer string, opts ...TokenServiceOption) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, errors.New("token service: signing key must not be empty")
	}

	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	ts := &TokenService{
		active: newSigningKey(secret),
		ttl:    ttl,
		issuer: issuer,
		now:    time.Now,
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(ts)
		}
	}

	given := make(map[string]keyfunc.GivenKey, len(ts.retired)+1)
	for _, key := range ts.retired {
		given[key.kid] = keyfunc.NewGivenCustom(key.secret, keyfunc.GivenKeyOptions{
			Algorithm: signingMethod.Alg(),
		})
	}
	given[ts.active.kid] = keyfunc.NewGivenCustom(ts.active.secret, keyfunc.GivenKeyOptions{
		Algorithm: signingMethod.Alg(),
	})
	ts.keyFunc = keyfunc.NewGiven(given).Keyfunc

	return ts, nil
}

// NewTokenServiceFromConfig builds the service from Config
func NewTokenServiceFromConfig(cfg Config, opts ...TokenServiceOption) (*TokenService, error) {
	retired := make([][]byte, 0, len(cfg.GetRetiredSigningKeys()))
	for _, secret := range cfg.GetRetiredSigningKeys() {
		retired = append(retired, []byte(secret))
	}
	opts = append([]TokenServiceOption{WithRetiredSigningKeys(retired...)}, opts...)
	return NewTokenService([]byte(cfg.GetSigningKey()), cfg.GetTokenTTL(), cfg.GetIssuer(), opts...)
}

// TTL returns the lifetime of issued tokens
func (ts *TokenService) TTL() time.Duration {
	return ts.ttl
}

// Issue signs a token for subject that expires ttl after issuance
func (ts *TokenService) Issue(subject SessionSubject) (string, time.Time, error) {
	if subject.ID == "" {
		return "", time.Time{}, Internal(errors.New("empty subject"), "issue token")
	}

	// NumericDate has second precision, issue on a whole second so that
	// exp is exactly iat + ttl.
	issuedAt := ts.now().Truncate(time.Second)
	expiresAt := issuedAt.Add(ts.ttl)

	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    ts.issuer,
			Subject:   subject.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UID:       subject.ID,
		UserEmail: subject.Email,
		UserRole:  subject.Role,
	}

	token := jwt.NewWithClaims(signingMethod, claims)
	token.Header["kid"] = ts.active.kid

	signed, err := token.SignedString(ts.active.secret)
	if err != nil {
		return "", time.Time{}, Internal(err, "sign token")
	}

	return signed, expiresAt, nil
}

// Validate parses and verifies raw. Every failure is ErrInvalidToken; the
// underlying reason is only recorded on the returned error.
func (ts *TokenService) Validate(raw string) (*JWTClaims, error) {
	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ts.now),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(raw, &JWTClaims{}, ts.keyFunc, parserOptions...)
	if err != nil {
		return nil, ts.rejected(ErrInvalidToken.WithReason(tokenFailureReason(err), err))
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid || claims.Subject() == "" {
		return nil, ts.rejected(ErrInvalidToken.WithReason(ReasonTokenClaims, nil))
	}

	if _, ok := ParseRole(claims.UserRole); !ok {
		return nil, ts.rejected(ErrInvalidToken.WithReason(ReasonTokenClaims, nil))
	}

	return claims, nil
}

func (ts *TokenService) rejected(err *Error) error {
	ts.logger.Debug("token rejected", "reason", string(err.Reason))
	return err
}

func tokenFailureReason(err error) Reason {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ReasonTokenExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ReasonTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ReasonTokenSignature
	default:
		return ReasonTokenClaims
	}
}

func newSigningKey(secret []byte) signingKey {
	sum := sha256.Sum256(secret)
	return signingKey{
		kid:    hex.EncodeToString(sum[:8]),
		secret: append([]byte(nil), secret...),
	}
}
