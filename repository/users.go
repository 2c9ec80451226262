package repository

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	auth "github.com/gunung/portal-auth"
	"github.com/uptrace/bun"
)

// UserModel is the Bun model for registered users. Seq keeps insertion order.
type UserModel struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	Seq          int64     `bun:"seq,pk,autoincrement"`
	ID           string    `bun:"id,notnull,unique"`
	FullName     string    `bun:"full_name,notnull"`
	Email        string    `bun:"email,notnull,unique"`
	PasswordHash string    `bun:"password_hash,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
}

// UserRepository implements auth.Users on top of Bun
type UserRepository struct {
	db *bun.DB
	// mu serializes check-then-write sequences
	mu  sync.Mutex
	now func() time.Time
}

var _ auth.Users = (*UserRepository)(nil)

// NewUserRepository creates a repository. Call Migrate before use.
func NewUserRepository(db *bun.DB) *UserRepository {
	return &UserRepository{db: db, now: time.Now}
}

// WithClock sets the clock used for CreatedAt
func (r *UserRepository) WithClock(now func() time.Time) *UserRepository {
	if now != nil {
		r.now = now
	}
	return r
}

// Migrate creates the users table
func (r *UserRepository) Migrate(ctx context.Context) error {
	_, err := r.db.NewCreateTable().
		Model((*UserModel)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

// FindByEmail is an exact, case-sensitive lookup
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.findOne(ctx, r.db, "email = ?", email)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*auth.User, error) {
	return r.findOne(ctx, r.db, "id = ?", id)
}

// Insert assigns id and creation time and stores the record
func (r *UserRepository) Insert(ctx context.Context, candidate *auth.User) (*auth.User, error) {
	if candidate == nil {
		return nil, auth.Internal(errors.New("nil candidate"), "insert user")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var created *auth.User
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := r.findOne(ctx, tx, "email = ?", candidate.Email); err == nil {
			return auth.ErrDuplicateEmail
		} else if !errors.Is(err, auth.ErrNotFound) {
			return err
		}

		model := &UserModel{
			ID:           uuid.NewString(),
			FullName:     candidate.FullName,
			Email:        candidate.Email,
			PasswordHash: candidate.PasswordHash,
			CreatedAt:    r.now().UTC(),
		}

		if _, err := tx.NewInsert().Model(model).Exec(ctx); err != nil {
			return auth.Internal(err, "insert user")
		}

		created = toUser(model)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// Remove deletes the record and returns it
func (r *UserRepository) Remove(ctx context.Context, id string) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed *auth.User
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		user, err := r.findOne(ctx, tx, "id = ?", id)
		if err != nil {
			return err
		}

		if _, err := tx.NewDelete().
			Model((*UserModel)(nil)).
			Where("id = ?", id).
			Exec(ctx); err != nil {
			return auth.Internal(err, "delete user")
		}

		removed = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	return removed, nil
}

// List returns all users in insertion order
func (r *UserRepository) List(ctx context.Context) ([]*auth.User, error) {
	var models []UserModel
	if err := r.db.NewSelect().
		Model(&models).
		Order("seq ASC").
		Scan(ctx); err != nil {
		return nil, auth.Internal(err, "list users")
	}

	out := make([]*auth.User, 0, len(models))
	for i := range models {
		out = append(out, toUser(&models[i]))
	}
	return out, nil
}

func (r *UserRepository) findOne(ctx context.Context, db bun.IDB, where string, arg any) (*auth.User, error) {
	model := new(UserModel)
	err := db.NewSelect().
		Model(model).
		Where(where, arg).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrNotFound
		}
		return nil, auth.Internal(err, "find user")
	}
	return toUser(model), nil
}

func toUser(m *UserModel) *auth.User {
	return &auth.User{
		ID:           m.ID,
		FullName:     m.FullName,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt.UTC(),
	}
}
