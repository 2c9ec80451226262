package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"
)

// AuthResult is returned by every successful login style operation
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      PublicUser
}

// AdminAuthResult is returned by AdminLogin
type AdminAuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      AdminProfile
}

// UserList is the admin listing
type UserList struct {
	Total int          `json:"total"`
	Users []ListedUser `json:"users"`
}

// AdminCredential is the single administrator account. The password is only
// kept as a digest.
type AdminCredential struct {
	Email        string
	PasswordHash string
}

// NewAdminCredential resolves the configured administrator. A configured hash
// wins over a plaintext password, which is hashed once here.
func NewAdminCredential(email, password, passwordHash string, hasher PasswordHasher) (AdminCredential, error) {
	if email == "" {
		return AdminCredential{}, errors.New("admin credential: email must not be empty")
	}

	if passwordHash != "" {
		return AdminCredential{Email: email, PasswordHash: passwordHash}, nil
	}

	digest, err := hasher.Hash(password)
	if err != nil {
		return AdminCredential{}, err
	}

	return AdminCredential{Email: email, PasswordHash: digest}, nil
}

// Auther orchestrates the credential store, hasher, token service and gate
// into the request level operations.
type Auther struct {
	users  Users
	hasher PasswordHasher
	tokens TokenIssuer
	gate   *Gate
	admin  AdminCredential
	logger Logger
}

// NewAuthenticator returns a new Auther
func NewAuthenticator(users Users, hasher PasswordHasher, tokens TokenIssuer, gate *Gate, admin AdminCredential) *Auther {
	return &Auther{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		gate:   gate,
		admin:  admin,
		logger: defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = resolveLogger(logger)
	return s
}

// Gate returns the gate used by the protected operations
func (s *Auther) Gate() *Gate {
	return s.gate
}

// Register creates a user and signs them in
func (s *Auther) Register(ctx context.Context, msg RegisterUserMessage) (*AuthResult, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	// Fail fast before paying for a hash. Insert re-checks atomically.
	if _, err := s.users.FindByEmail(ctx, msg.Email); err == nil {
		s.logger.Info("register rejected", "reason", "duplicate_email")
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	digest, err := s.hasher.Hash(msg.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Insert(ctx, &User{
		FullName:     msg.FullName,
		Email:        msg.Email,
		PasswordHash: digest,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			s.logger.Info("register rejected", "reason", "duplicate_email")
		}
		return nil, err
	}

	token, expiresAt, err := s.tokens.Issue(SubjectFromIdentity(user.Identity()))
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID)

	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user.Public()}, nil
}

// Login verifies credentials. Unknown email and wrong password are the same
// error to the caller.
func (s *Auther) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, s.loginFailed(ErrInvalidCredentials.WithReason(ReasonUnknownEmail, nil))
		}
		return nil, err
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return nil, s.loginFailed(ErrInvalidCredentials.WithReason(ReasonPasswordMismatch, nil))
	}

	token, expiresAt, err := s.tokens.Issue(SubjectFromIdentity(user.Identity()))
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", "user_id", user.ID)

	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user.Public()}, nil
}

// AdminLogin checks the configured administrator credential
func (s *Auther) AdminLogin(_ context.Context, req AdminLoginRequest) (*AdminAuthResult, error) {
	emailOK := subtle.ConstantTimeCompare([]byte(req.Email), []byte(s.admin.Email)) == 1
	// Always run the hash comparison so timing does not reveal which field failed.
	passwordOK := s.hasher.Verify(req.Password, s.admin.PasswordHash)

	switch {
	case !emailOK:
		return nil, s.loginFailed(ErrInvalidCredentials.WithReason(ReasonAdminEmail, nil))
	case !passwordOK:
		return nil, s.loginFailed(ErrInvalidCredentials.WithReason(ReasonAdminPassword, nil))
	}

	token, expiresAt, err := s.tokens.Issue(SessionSubject{
		ID:    AdminSubjectID,
		Email: s.admin.Email,
		Role:  RoleAdmin,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("admin logged in")

	return &AdminAuthResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      newAdminProfile(AdminSubjectID, s.admin.Email),
	}, nil
}

// VerifyUser resolves the caller's own record
func (s *Auther) VerifyUser(ctx context.Context, header string) (PublicUser, error) {
	grant, err := s.gate.Authorize(ctx, header, RequireUser)
	if err != nil {
		return PublicUser{}, err
	}
	return grant.User.Public(), nil
}

// VerifyAdmin describes the administrator session from its claims
func (s *Auther) VerifyAdmin(ctx context.Context, header string) (AdminProfile, error) {
	grant, err := s.gate.Authorize(ctx, header, RequireAdmin)
	if err != nil {
		return AdminProfile{}, adminOnly(err)
	}
	return AdminProfileFromGrant(grant), nil
}

// adminVerifyCheck is the gate check behind GET /admin/verify
func (s *Auther) adminVerifyCheck() func(ctx context.Context, header string) (any, error) {
	return func(ctx context.Context, header string) (any, error) {
		grant, err := s.gate.Authorize(ctx, header, RequireAdmin)
		if err != nil {
			return nil, adminOnly(err)
		}
		return grant, nil
	}
}

// adminOnly swaps the role mismatch message for the short one
func adminOnly(err error) error {
	if errors.Is(err, ErrForbidden) {
		return AsError(err).WithMessage(ErrAdminOnly.Message)
	}
	return err
}

// ListUsers returns every registered user
func (s *Auther) ListUsers(ctx context.Context, header string) (*UserList, error) {
	if _, err := s.gate.Authorize(ctx, header, RequireAdmin); err != nil {
		return nil, err
	}
	return s.listUsers(ctx)
}

// DeleteUser removes a user and returns what was removed
func (s *Auther) DeleteUser(ctx context.Context, header, id string) (ListedUser, error) {
	grant, err := s.gate.Authorize(ctx, header, RequireAdmin)
	if err != nil {
		return ListedUser{}, err
	}
	return s.deleteUser(ctx, grant, id)
}

// AdminProfileFromGrant builds the synthetic admin projection
func AdminProfileFromGrant(grant *Grant) AdminProfile {
	return newAdminProfile(grant.Claims.UserID(), grant.Claims.Email())
}

func (s *Auther) listUsers(ctx context.Context) (*UserList, error) {
	records, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	list := &UserList{
		Total: len(records),
		Users: make([]ListedUser, 0, len(records)),
	}
	for _, r := range records {
		list.Users = append(list.Users, r.Listed())
	}
	return list, nil
}

func (s *Auther) deleteUser(ctx context.Context, grant *Grant, id string) (ListedUser, error) {
	removed, err := s.users.Remove(ctx, id)
	if err != nil {
		return ListedUser{}, err
	}

	s.logger.Info("user deleted", "user_id", removed.ID, "by", grant.Claims.Subject())

	return removed.Listed(), nil
}

func (s *Auther) loginFailed(err *Error) error {
	s.logger.Info("login rejected", "reason", string(err.Reason))
	return err
}
