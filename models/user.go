package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an account that can authenticate and own projects.
// PasswordHash is never serialized.
type User struct {
	ID           uuid.UUID  `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Email        string     `json:"email" db:"email" gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string     `json:"-" db:"password_hash" gorm:"type:text;not null"`
	Name         string     `json:"name,omitempty" db:"name" gorm:"type:text"`
	Role         string     `json:"role" db:"role" gorm:"type:text;not null"`
	LastLogin    *time.Time `json:"lastLogin,omitempty" db:"last_login"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
