package auth

import (
	"time"
)

// UserRole is the role embedded in a session assertion
type UserRole = string

const (
	// RoleUser is the implicit role of every registered user
	RoleUser UserRole = "user"
	// RoleAdmin is only ever issued to the configured administrator
	RoleAdmin UserRole = "admin"
)

// AdminSubjectID is the synthetic subject used in administrator tokens
const AdminSubjectID = "admin"

// AdminDisplayName is shown by the admin dashboard
const AdminDisplayName = "Administrator"

// User is a registered end user. PasswordHash never leaves the process.
type User struct {
	ID           string    `json:"id"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Clone returns a detached copy
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// Public projects the user to the fields a client may see about itself
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		FullName: u.FullName,
		Email:    u.Email,
	}
}

// Listed projects the user for the admin dashboard
func (u *User) Listed() ListedUser {
	return ListedUser{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// Identity adapts the record to the Identity interface
func (u *User) Identity() Identity {
	return authIdentity{id: u.ID, email: u.Email, role: RoleUser}
}

// PublicUser is returned by register, login and verify
type PublicUser struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// ListedUser is returned by the admin listing and deletion endpoints
type ListedUser struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// AdminProfile describes the administrator session. It is built from
// configuration or token claims, never from a stored record.
type AdminProfile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Name  string `json:"name"`
}

func newAdminProfile(id, email string) AdminProfile {
	return AdminProfile{
		ID:    id,
		Email: email,
		Role:  RoleAdmin,
		Name:  AdminDisplayName,
	}
}

type authIdentity struct {
	id    string
	email string
	role  string
}

func (a authIdentity) ID() string    { return a.id }
func (a authIdentity) Email() string { return a.email }
func (a authIdentity) Role() string  { return a.role }
