package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryUsers is the default Users store. Records live in process memory and
// are lost on restart.
type MemoryUsers struct {
	mu      sync.RWMutex
	records []*User
	byID    map[string]*User
	byEmail map[string]*User
	now     func() time.Time
	newID   func() string
}

var _ Users = (*MemoryUsers)(nil)

// MemoryUsersOption configures a MemoryUsers store
type MemoryUsersOption func(*MemoryUsers)

// WithUsersClock sets the clock used for CreatedAt
func WithUsersClock(now func() time.Time) MemoryUsersOption {
	return func(m *MemoryUsers) {
		if now != nil {
			m.now = now
		}
	}
}

// WithUsersIDGenerator replaces the UUID generator
func WithUsersIDGenerator(gen func() string) MemoryUsersOption {
	return func(m *MemoryUsers) {
		if gen != nil {
			m.newID = gen
		}
	}
}

// NewMemoryUsers returns an empty store
func NewMemoryUsers(opts ...MemoryUsersOption) *MemoryUsers {
	m := &MemoryUsers{
		byID:    make(map[string]*User),
		byEmail: make(map[string]*User),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// FindByEmail is an exact, case-sensitive lookup
func (m *MemoryUsers) FindByEmail(_ context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return user.Clone(), nil
}

func (m *MemoryUsers) FindByID(_ context.Context, id string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return user.Clone(), nil
}

// Insert assigns id and creation time and appends the record. The
// candidate's ID and CreatedAt are ignored.
func (m *MemoryUsers) Insert(_ context.Context, candidate *User) (*User, error) {
	if candidate == nil {
		return nil, Internal(errors.New("nil candidate"), "insert user")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byEmail[candidate.Email]; exists {
		return nil, ErrDuplicateEmail
	}

	record := candidate.Clone()
	record.ID = m.uniqueID()
	record.CreatedAt = m.now().UTC()

	m.records = append(m.records, record)
	m.byID[record.ID] = record
	m.byEmail[record.Email] = record

	return record.Clone(), nil
}

// Remove deletes the record and returns it
func (m *MemoryUsers) Remove(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}

	for i, r := range m.records {
		if r.ID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			break
		}
	}
	delete(m.byID, id)
	delete(m.byEmail, record.Email)

	return record.Clone(), nil
}

// List returns all users in insertion order
func (m *MemoryUsers) List(_ context.Context) ([]*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*User, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r.Clone())
	}
	return out, nil
}

// Len returns the number of stored users
func (m *MemoryUsers) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// uniqueID must be called with the write lock held
func (m *MemoryUsers) uniqueID() string {
	for {
		id := m.newID()
		if _, taken := m.byID[id]; !taken {
			return id
		}
	}
}
