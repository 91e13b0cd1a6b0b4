package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kart-io/insight/pkg/errors"
)

// Role is a named bundle of permission grants. A role is either global
// (visible in every project) or scoped to exactly one project. The two
// constructors below are the only supported ways to build one; a role
// that is neither global nor project-bound is rejected before it can be
// persisted.
type Role struct {
	ID          string    `json:"id" gorm:"type:char(36);primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(64);not null"`
	Description string    `json:"description" gorm:"type:varchar(512)"`
	ProjectID   *string   `json:"project_id,omitempty" gorm:"type:char(36);index"`
	IsGlobal    bool      `json:"is_global" gorm:"default:false"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Permissions is populated on reads; grants live in role_permissions.
	Permissions []Permission `json:"permissions,omitempty" gorm:"-"`
}

// NewGlobalRole creates a role visible in every project.
func NewGlobalRole(name, description string) *Role {
	return &Role{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		IsGlobal:    true,
	}
}

// NewProjectRole creates a role scoped to a single project.
func NewProjectRole(name, description, projectID string) *Role {
	return &Role{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		ProjectID:   &projectID,
	}
}

// TableName returns the table name of the Role model.
func (r *Role) TableName() string {
	return "roles"
}

// Validate checks the scope invariant.
func (r *Role) Validate() error {
	if !r.IsGlobal && (r.ProjectID == nil || *r.ProjectID == "") {
		return errors.ErrRoleScopeInvalid
	}
	if r.IsGlobal && r.ProjectID != nil {
		return errors.ErrRoleScopeInvalid.WithMessage("global role must not reference a project")
	}
	return nil
}

// BeforeSave enforces the scope invariant on every write path.
func (r *Role) BeforeSave(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return r.Validate()
}

// Permission is a row of the immutable permission catalog.
type Permission struct {
	ID   string `json:"id" gorm:"type:char(36);primaryKey"`
	Type string `json:"type" gorm:"type:varchar(64);uniqueIndex;not null"`
}

// TableName returns the table name of the Permission model.
func (p *Permission) TableName() string {
	return "permissions"
}

// RolePermission links a role to one catalog permission.
type RolePermission struct {
	ID           string `json:"id" gorm:"type:char(36);primaryKey"`
	RoleID       string `json:"role_id" gorm:"type:char(36);uniqueIndex:uk_role_permission;not null"`
	PermissionID string `json:"permission_id" gorm:"type:char(36);uniqueIndex:uk_role_permission;not null"`
}

// TableName returns the table name of the RolePermission model.
func (rp *RolePermission) TableName() string {
	return "role_permissions"
}

// BeforeCreate assigns a UUID primary key if one is not set.
func (rp *RolePermission) BeforeCreate(tx *gorm.DB) error {
	if rp.ID == "" {
		rp.ID = uuid.NewString()
	}
	return nil
}

// Membership binds a user to a project with exactly one role.
// The (user_id, project_id) unique index is what makes concurrent
// duplicate additions surface as conflicts instead of double rows.
type Membership struct {
	ID        string    `json:"id" gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id" gorm:"type:char(36);uniqueIndex:uk_membership_user_project;not null"`
	ProjectID string    `json:"project_id" gorm:"type:char(36);uniqueIndex:uk_membership_user_project;index;not null"`
	RoleID    string    `json:"role_id" gorm:"type:char(36);index;not null"`
	IsOwner   bool      `json:"is_owner" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name of the Membership model.
func (m *Membership) TableName() string {
	return "memberships"
}

// BeforeCreate assigns a UUID primary key if one is not set.
func (m *Membership) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
