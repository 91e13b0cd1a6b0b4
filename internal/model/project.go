package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project is the tenant boundary of the platform. Dashboards, charts,
// datasource connections and memberships all hang off a project.
type Project struct {
	ID          string    `json:"id" gorm:"type:char(36);primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(128);uniqueIndex;not null"`
	Description string    `json:"description" gorm:"type:varchar(512)"`
	SuperUserID string    `json:"super_user_id" gorm:"type:char(36);index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the table name of the Project model.
func (p *Project) TableName() string {
	return "projects"
}

// BeforeCreate assigns a UUID primary key if one is not set.
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
