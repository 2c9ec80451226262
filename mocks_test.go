package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	auth "github.com/gunung/portal-auth"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testSecret        = "test-signing-secret"
	testIssuer        = "test-portal"
	testAdminEmail    = "admin@gunung.com"
	testAdminPassword = "admin123456"
)

// MockUsers implements auth.Users
type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

func (m *MockUsers) FindByID(ctx context.Context, id string) (*auth.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

func (m *MockUsers) Insert(ctx context.Context, candidate *auth.User) (*auth.User, error) {
	args := m.Called(ctx, candidate)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

func (m *MockUsers) Remove(ctx context.Context, id string) (*auth.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

func (m *MockUsers) List(ctx context.Context) ([]*auth.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]*auth.User)
	return users, args.Error(1)
}

// recordingLogger keeps every entry so tests can assert on what was logged
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

type logEntry struct {
	level string
	msg   string
	args  []any
}

func (l *recordingLogger) Debug(msg string, args ...any) { l.add("debug", msg, args) }
func (l *recordingLogger) Info(msg string, args ...any)  { l.add("info", msg, args) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.add("warn", msg, args) }
func (l *recordingLogger) Error(msg string, args ...any) { l.add("error", msg, args) }

func (l *recordingLogger) add(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, args: args})
}

// value returns the last logged value for key under msg
func (l *recordingLogger) value(msg, key string) (any, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.entries) - 1; i >= 0; i-- {
		e := l.entries[i]
		if e.msg != msg {
			continue
		}
		for j := 0; j+1 < len(e.args); j += 2 {
			if e.args[j] == key {
				return e.args[j+1], true
			}
		}
	}
	return nil, false
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	clock  *fakeClock
	users  *auth.MemoryUsers
	hasher *auth.BcryptHasher
	tokens *auth.TokenService
	gate   *auth.Gate
	auther *auth.Auther
	logger *recordingLogger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		clock:  newFakeClock(),
		hasher: auth.NewBcryptHasher(bcrypt.MinCost),
		logger: &recordingLogger{},
	}
	f.users = auth.NewMemoryUsers(auth.WithUsersClock(f.clock.Now))

	tokens, err := auth.NewTokenService([]byte(testSecret), auth.DefaultTokenTTL, testIssuer,
		auth.WithClock(f.clock.Now),
		auth.WithTokenLogger(f.logger),
	)
	require.NoError(t, err)
	f.tokens = tokens

	admin, err := auth.NewAdminCredential(testAdminEmail, testAdminPassword, "", f.hasher)
	require.NoError(t, err)

	f.gate = auth.NewGate(f.tokens, f.users).WithLogger(f.logger)
	f.auther = auth.NewAuthenticator(f.users, f.hasher, f.tokens, f.gate, admin).WithLogger(f.logger)

	return f
}

func (f *fixture) register(t *testing.T, name, email, password string) *auth.AuthResult {
	t.Helper()
	result, err := f.auther.Register(context.Background(), auth.RegisterUserMessage{
		FullName:        name,
		Email:           email,
		Password:        password,
		ConfirmPassword: password,
	})
	require.NoError(t, err)
	return result
}

func (f *fixture) adminToken(t *testing.T) string {
	t.Helper()
	result, err := f.auther.AdminLogin(context.Background(), auth.AdminLoginRequest{
		Email:    testAdminEmail,
		Password: testAdminPassword,
	})
	require.NoError(t, err)
	return result.Token
}

func bearer(token string) string {
	return "Bearer " + token
}
