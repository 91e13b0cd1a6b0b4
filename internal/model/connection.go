package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Connection is a datasource registered within a project. The schema
// prober fills connection_tables when the connection is added.
type Connection struct {
	ID        string    `json:"id" gorm:"type:char(36);primaryKey"`
	ProjectID string    `json:"project_id" gorm:"type:char(36);index;not null"`
	Name      string    `json:"name" gorm:"type:varchar(128);not null"`
	Driver    string    `json:"driver" gorm:"type:varchar(32);not null"`
	Host      string    `json:"host" gorm:"type:varchar(255);not null"`
	Port      int       `json:"port"`
	Username  string    `json:"username" gorm:"type:varchar(128)"`
	Password  string    `json:"-" gorm:"type:varchar(255)"`
	Database  string    `json:"database" gorm:"type:varchar(128);not null"`
	Consented bool      `json:"consented" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name of the Connection model.
func (c *Connection) TableName() string {
	return "database_connections"
}

// BeforeCreate assigns a UUID primary key if one is not set.
func (c *Connection) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// ConnectionTable is one table discovered by the schema prober.
// Columns holds the probed column list serialized as JSON.
type ConnectionTable struct {
	ID           string `json:"id" gorm:"type:char(36);primaryKey"`
	ConnectionID string `json:"connection_id" gorm:"type:char(36);uniqueIndex:uk_connection_table;index;not null"`
	Name         string `json:"name" gorm:"type:varchar(128);uniqueIndex:uk_connection_table;not null"`
	Columns      string `json:"columns" gorm:"type:text"`
}

// TableName returns the table name of the ConnectionTable model.
func (t *ConnectionTable) TableName() string {
	return "connection_tables"
}

// BeforeCreate assigns a UUID primary key if one is not set.
func (t *ConnectionTable) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// RoleTableBan hides one probed table from members holding the role.
type RoleTableBan struct {
	ID           string `json:"id" gorm:"type:char(36);primaryKey"`
	RoleID       string `json:"role_id" gorm:"type:char(36);uniqueIndex:uk_role_table_ban;index;not null"`
	ConnectionID string `json:"connection_id" gorm:"type:char(36);uniqueIndex:uk_role_table_ban;not null"`
	Table        string `json:"table_name" gorm:"column:table_name;type:varchar(128);uniqueIndex:uk_role_table_ban;not null"`
}

// TableName returns the table name of the RoleTableBan model.
func (b *RoleTableBan) TableName() string {
	return "role_table_bans"
}

// BeforeCreate assigns a UUID primary key if one is not set.
func (b *RoleTableBan) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// RelatedConnection records that two connections expose related data.
type RelatedConnection struct {
	ID           string `json:"id" gorm:"type:char(36);primaryKey"`
	ConnectionID string `json:"connection_id" gorm:"type:char(36);uniqueIndex:uk_related_connection;not null"`
	RelatedID    string `json:"related_id" gorm:"type:char(36);uniqueIndex:uk_related_connection;not null"`
}

// TableName returns the table name of the RelatedConnection model.
func (r *RelatedConnection) TableName() string {
	return "related_connections"
}

// BeforeCreate assigns a UUID primary key if one is not set.
func (r *RelatedConnection) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
