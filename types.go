package auth

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Logger is the logging contract every component accepts. Arguments after the
// message are key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Identity holds the attributes of an authenticated principal
type Identity interface {
	ID() string
	Email() string
	Role() string
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetRetiredSigningKeys() []string
	GetIssuer() string
	GetTokenTTL() time.Duration
	GetPasswordCost() int
	GetAdminEmail() string
	GetAdminPassword() string
	GetAdminPasswordHash() string
}

// Users is the credential store. It is the sole owner of user records.
type Users interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	Insert(ctx context.Context, candidate *User) (*User, error)
	Remove(ctx context.Context, id string) (*User, error)
	List(ctx context.Context) ([]*User, error)
}

// PasswordHasher hashes and verifies plaintext secrets
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// TokenIssuer signs session assertions
type TokenIssuer interface {
	Issue(subject SessionSubject) (string, time.Time, error)
}

type defLogger struct{}

func (d defLogger) Debug(msg string, args ...any) { d.print("DBG", msg, args) }
func (d defLogger) Info(msg string, args ...any)  { d.print("INF", msg, args) }
func (d defLogger) Warn(msg string, args ...any)  { d.print("WRN", msg, args) }
func (d defLogger) Error(msg string, args ...any) { d.print("ERR", msg, args) }

func (d defLogger) print(level, msg string, args []any) {
	var b strings.Builder
	b.WriteString("[" + level + "] AUTH " + msg)
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
			continue
		}
		fmt.Fprintf(&b, " %v", args[i])
	}
	fmt.Println(b.String())
}
