package auth

import (
	"context"
	"errors"
	"strings"
)

// DefaultAuthScheme is the scheme expected in the Authorization header
const DefaultAuthScheme = "Bearer"

// GateStage is how far a request got through the gate
type GateStage int

const (
	StageStart GateStage = iota
	StageTokenExtracted
	StageTokenVerified
	StageRoleChecked
	StageIdentityResolved
	StageAuthorized
)

func (s GateStage) String() string {
	switch s {
	case StageStart:
		return "start"
	case StageTokenExtracted:
		return "token_extracted"
	case StageTokenVerified:
		return "token_verified"
	case StageRoleChecked:
		return "role_checked"
	case StageIdentityResolved:
		return "identity_resolved"
	case StageAuthorized:
		return "authorized"
	default:
		return "unknown"
	}
}

// Requirement describes what a protected operation needs
type Requirement struct {
	// Role, when set, must equal the token role
	Role string
	// ResolveIdentity loads the stored user named by the token subject
	ResolveIdentity bool
}

var (
	// RequireUser protects operations on the caller's own record
	RequireUser = Requirement{ResolveIdentity: true}
	// RequireAdmin protects administrative operations
	RequireAdmin = Requirement{Role: RoleAdmin}
)

// Grant is the result of a successful authorization
type Grant struct {
	Claims *JWTClaims
	// User is nil unless the requirement asked for identity resolution
	User  *User
	Stage GateStage
}

// Gate extracts, verifies and authorizes session tokens
type Gate struct {
	validator  TokenValidator
	users      Users
	authScheme string
	logger     Logger
}

// NewGate creates a Gate. users may be nil when no requirement resolves
// identities.
func NewGate(validator TokenValidator, users Users) *Gate {
	return &Gate{
		validator:  validator,
		users:      users,
		authScheme: DefaultAuthScheme,
		logger:     defLogger{},
	}
}

func (g *Gate) WithLogger(logger Logger) *Gate {
	g.logger = resolveLogger(logger)
	return g
}

// WithAuthScheme overrides the expected header scheme
func (g *Gate) WithAuthScheme(scheme string) *Gate {
	if scheme = strings.TrimSpace(scheme); scheme != "" {
		g.authScheme = scheme
	}
	return g
}

// Authorize runs the gate for the raw Authorization header value
func (g *Gate) Authorize(ctx context.Context, header string, req Requirement) (*Grant, error) {
	grant := &Grant{Stage: StageStart}

	raw, ok := ExtractBearerToken(header, g.authScheme)
	if !ok {
		return nil, g.reject(grant, ErrMissingToken)
	}
	grant.Stage = StageTokenExtracted

	claims, err := g.validator.Validate(raw)
	if err != nil {
		if !errors.Is(err, ErrInvalidToken) {
			err = ErrInvalidToken.WithReason(ReasonTokenClaims, err)
		}
		return nil, g.reject(grant, err)
	}
	grant.Claims = claims
	grant.Stage = StageTokenVerified

	if req.Role != "" && !claims.HasRole(req.Role) {
		return nil, g.reject(grant, ErrForbidden.WithReason(ReasonRoleMismatch, nil))
	}
	grant.Stage = StageRoleChecked

	if req.ResolveIdentity {
		if g.users == nil {
			return nil, g.reject(grant, Internal(errors.New("no credential store"), "resolve identity"))
		}
		user, err := g.users.FindByID(ctx, claims.Subject())
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				err = ErrIdentityNotFound
			}
			return nil, g.reject(grant, err)
		}
		grant.User = user
		grant.Stage = StageIdentityResolved
	}

	grant.Stage = StageAuthorized
	return grant, nil
}

// Check binds a requirement, returning a function transports can call per request
func (g *Gate) Check(req Requirement) func(ctx context.Context, header string) (any, error) {
	return func(ctx context.Context, header string) (any, error) {
		return g.Authorize(ctx, header, req)
	}
}

func (g *Gate) reject(grant *Grant, err error) error {
	richErr := AsError(err)
	args := []any{
		"stage", grant.Stage.String(),
		"text_code", richErr.TextCode,
	}
	if richErr.Reason != "" {
		args = append(args, "reason", string(richErr.Reason))
	}
	if grant.Claims != nil {
		args = append(args, "subject", grant.Claims.Subject())
	}
	g.logger.Debug("access denied", args...)
	return err
}

// ExtractBearerToken returns the token from an "<scheme> <token>" header.
// The scheme comparison is case-insensitive.
func ExtractBearerToken(header, scheme string) (string, bool) {
	header = strings.TrimSpace(header)
	l := len(scheme)
	if l == 0 || len(header) <= l+1 {
		return "", false
	}
	if !strings.EqualFold(header[:l], scheme) || header[l] != ' ' {
		return "", false
	}
	token := strings.TrimSpace(header[l:])
	if token == "" {
		return "", false
	}
	return token, true
}
