// Package models contains data structures for the application's domain models.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a NestAway account. Email is stored lowercased and is the
// case-insensitive lookup key.
type User struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"_id" bson:"_id"`
	FirstName string    `gorm:"not null" json:"firstName" bson:"firstName"`
	LastName  string    `gorm:"not null" json:"lastName" bson:"lastName"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email" bson:"email"`
	Password  string    `gorm:"not null" json:"-" bson:"password"`
	Verified  bool      `gorm:"not null;default:false" json:"verified" bson:"verified"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// BeforeCreate assigns an opaque ID and normalizes the email key.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	u.Prepare()
	return nil
}

// Prepare fills generated fields for stores without gorm hooks.
func (u *User) Prepare() {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = NormalizeEmail(u.Email)
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = now
	}
}

// PublicUser is the client-safe projection returned by auth endpoints.
type PublicUser struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Verified  bool   `json:"verified"`
}

// UserSummary is the identity joined onto listings and reviews.
type UserSummary struct {
	ID        string `json:"_id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Public returns the password-free projection of u.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Verified:  u.Verified,
	}
}

// Summary returns the host/reviewer identity of u.
func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName}
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
