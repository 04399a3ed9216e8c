package admin

import (
	"time"

	"github.com/google/uuid"
)

// User is a back-office operator account. Accounts are provisioned by
// seed or by another operator; there is no self-registration.
type User struct {
	id           uuid.UUID
	username     string
	passwordHash string
	isActive     bool
	createdAt    time.Time
}

func ReconstructUser(id uuid.UUID, username, passwordHash string, isActive bool, createdAt time.Time) *User {
	return &User{
		id:           id,
		username:     username,
		passwordHash: passwordHash,
		isActive:     isActive,
		createdAt:    createdAt,
	}
}

func (u *User) ID() uuid.UUID        { return u.id }
func (u *User) Username() string     { return u.username }
func (u *User) PasswordHash() string { return u.passwordHash }
func (u *User) IsActive() bool       { return u.isActive }
func (u *User) CreatedAt() time.Time { return u.createdAt }
