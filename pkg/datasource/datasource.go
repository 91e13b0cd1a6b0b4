// Package datasource probes external SQL databases for their schema.
package datasource

import (
	"context"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kart-io/insight/pkg/errors"
)

// Config describes how to reach an external database.
type Config struct {
	Driver   string
	Host     string
	Port     int
	Username string
	Password string
	Database string
}

// Column is one probed column.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Table is one probed table with its columns.
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// Prober inspects external databases. Ping verifies connectivity;
// Probe lists the tables and columns visible to the configured user.
type Prober interface {
	Ping(ctx context.Context, cfg Config) error
	Probe(ctx context.Context, cfg Config) ([]Table, error)
}

type sqlProber struct{}

// NewProber returns a Prober for MySQL and PostgreSQL sources.
func NewProber() Prober {
	return &sqlProber{}
}

func open(cfg Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	switch cfg.Driver {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database)
		return gorm.Open(mysql.Open(dsn), gormCfg)
	case "postgres", "postgresql":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Database)
		return gorm.Open(postgres.Open(dsn), gormCfg)
	default:
		return nil, errors.ErrInvalidParam.WithMessagef("unsupported driver: %s", cfg.Driver)
	}
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// Ping verifies the connection settings.
func (p *sqlProber) Ping(ctx context.Context, cfg Config) error {
	db, err := open(cfg)
	if err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	defer closeDB(db)

	sqlDB, err := db.DB()
	if err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// Probe lists tables and columns from information_schema.
func (p *sqlProber) Probe(ctx context.Context, cfg Config) ([]Table, error) {
	db, err := open(cfg)
	if err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	defer closeDB(db)

	schema := cfg.Database
	if cfg.Driver != "mysql" {
		schema = "public"
	}

	var names []string
	err = db.WithContext(ctx).
		Raw("SELECT table_name FROM information_schema.tables WHERE table_schema = ? ORDER BY table_name", schema).
		Scan(&names).Error
	if err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}

	tables := make([]Table, 0, len(names))
	for _, name := range names {
		var cols []Column
		err = db.WithContext(ctx).
			Raw("SELECT column_name AS name, data_type AS type FROM information_schema.columns WHERE table_schema = ? AND table_name = ? ORDER BY ordinal_position",
				schema, name).
			Scan(&cols).Error
		if err != nil {
			return nil, errors.ErrDatabase.WithCause(err)
		}
		tables = append(tables, Table{Name: name, Columns: cols})
	}
	return tables, nil
}
