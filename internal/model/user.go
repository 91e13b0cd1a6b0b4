package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a platform account.
type User struct {
	ID        string    `json:"id" gorm:"type:char(36);primaryKey"`
	Username  string    `json:"username" gorm:"type:varchar(64);uniqueIndex;not null"`
	Email     string    `json:"email" gorm:"type:varchar(128);uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"type:varchar(128);not null"`
	IsSuper   bool      `json:"is_super" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name of the User model.
func (u *User) TableName() string {
	return "users"
}

// BeforeCreate assigns a UUID primary key if one is not set.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// APIKey is a per-user, per-project programmatic credential.
// A user holds at most one key per project.
type APIKey struct {
	ID        string    `json:"id" gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id" gorm:"type:char(36);uniqueIndex:uk_api_key_user_project;not null"`
	ProjectID string    `json:"project_id" gorm:"type:char(36);uniqueIndex:uk_api_key_user_project;not null"`
	Key       string    `json:"-" gorm:"type:varchar(128);uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the table name of the APIKey model.
func (k *APIKey) TableName() string {
	return "api_keys"
}

// BeforeCreate assigns a UUID primary key if one is not set.
func (k *APIKey) BeforeCreate(tx *gorm.DB) error {
	if k.ID == "" {
		k.ID = uuid.NewString()
	}
	return nil
}
