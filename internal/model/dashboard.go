package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Dashboard is a project-scoped collection of charts.
type Dashboard struct {
	ID          string    `json:"id" gorm:"type:char(36);primaryKey"`
	ProjectID   string    `json:"project_id" gorm:"type:char(36);index;not null"`
	Name        string    `json:"name" gorm:"type:varchar(128);not null"`
	Description string    `json:"description" gorm:"type:varchar(512)"`
	CreatedBy   string    `json:"created_by" gorm:"type:char(36);index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the table name of the Dashboard model.
func (d *Dashboard) TableName() string {
	return "dashboards"
}

// BeforeCreate assigns a UUID primary key if one is not set.
func (d *Dashboard) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// Chart is a single visualization backed by a query.
type Chart struct {
	ID        string    `json:"id" gorm:"type:char(36);primaryKey"`
	ProjectID string    `json:"project_id" gorm:"type:char(36);index;not null"`
	Name      string    `json:"name" gorm:"type:varchar(128);not null"`
	ChartType string    `json:"chart_type" gorm:"type:varchar(32)"`
	Query     string    `json:"query" gorm:"type:text"`
	CreatedBy string    `json:"created_by" gorm:"type:char(36);index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name of the Chart model.
func (c *Chart) TableName() string {
	return "charts"
}

// BeforeCreate assigns a UUID primary key if one is not set.
func (c *Chart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// DashboardChart places a chart on a dashboard.
type DashboardChart struct {
	ID          string `json:"id" gorm:"type:char(36);primaryKey"`
	DashboardID string `json:"dashboard_id" gorm:"type:char(36);uniqueIndex:uk_dashboard_chart;not null"`
	ChartID     string `json:"chart_id" gorm:"type:char(36);uniqueIndex:uk_dashboard_chart;not null"`
}

// TableName returns the table name of the DashboardChart model.
func (dc *DashboardChart) TableName() string {
	return "dashboard_charts"
}

// BeforeCreate assigns a UUID primary key if one is not set.
func (dc *DashboardChart) BeforeCreate(tx *gorm.DB) error {
	if dc.ID == "" {
		dc.ID = uuid.NewString()
	}
	return nil
}

// UserDashboard is a per-user access grant on one dashboard.
// Absence of a row means no access; there is no implicit grant.
type UserDashboard struct {
	ID          string    `json:"id" gorm:"type:char(36);primaryKey"`
	UserID      string    `json:"user_id" gorm:"type:char(36);uniqueIndex:uk_user_dashboard;not null"`
	DashboardID string    `json:"dashboard_id" gorm:"type:char(36);uniqueIndex:uk_user_dashboard;index;not null"`
	CanRead     bool      `json:"can_read" gorm:"default:true"`
	CanWrite    bool      `json:"can_write" gorm:"default:false"`
	CanDelete   bool      `json:"can_delete" gorm:"default:false"`
	IsOwner     bool      `json:"is_owner" gorm:"default:false"`
	IsFavorite  bool      `json:"is_favorite" gorm:"default:false"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the table name of the UserDashboard model.
func (ud *UserDashboard) TableName() string {
	return "user_dashboards"
}

// BeforeCreate assigns a UUID primary key if one is not set.
func (ud *UserDashboard) BeforeCreate(tx *gorm.DB) error {
	if ud.ID == "" {
		ud.ID = uuid.NewString()
	}
	return nil
}

// UserChart is a per-user access grant on one chart.
type UserChart struct {
	ID         string    `json:"id" gorm:"type:char(36);primaryKey"`
	UserID     string    `json:"user_id" gorm:"type:char(36);uniqueIndex:uk_user_chart;not null"`
	ChartID    string    `json:"chart_id" gorm:"type:char(36);uniqueIndex:uk_user_chart;index;not null"`
	CanRead    bool      `json:"can_read" gorm:"default:true"`
	CanWrite   bool      `json:"can_write" gorm:"default:false"`
	CanDelete  bool      `json:"can_delete" gorm:"default:false"`
	IsOwner    bool      `json:"is_owner" gorm:"default:false"`
	IsFavorite bool      `json:"is_favorite" gorm:"default:false"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName returns the table name of the UserChart model.
func (uc *UserChart) TableName() string {
	return "user_charts"
}

// BeforeCreate assigns a UUID primary key if one is not set.
func (uc *UserChart) BeforeCreate(tx *gorm.DB) error {
	if uc.ID == "" {
		uc.ID = uuid.NewString()
	}
	return nil
}
