// Package options contains the flags and options of the insight server.
package options

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/insight/pkg/auth/jwt"
	"github.com/kart-io/insight/pkg/querygen"
)

// DBOptions configures the platform database.
type DBOptions struct {
	Driver string `json:"driver" mapstructure:"driver"`
	DSN    string `json:"dsn" mapstructure:"dsn"`
}

// RedisOptions configures the optional redis token blacklist.
type RedisOptions struct {
	Addr     string `json:"addr" mapstructure:"addr"`
	Password string `json:"-" mapstructure:"password"`
	DB       int    `json:"db" mapstructure:"db"`
}

// Options aggregates every server option.
type Options struct {
	Addr            string            `json:"addr" mapstructure:"addr"`
	DB              *DBOptions        `json:"db" mapstructure:"db"`
	Redis           *RedisOptions     `json:"redis" mapstructure:"redis"`
	JWT             *jwt.Options      `json:"jwt" mapstructure:"jwt"`
	QueryGen        *querygen.Config  `json:"querygen" mapstructure:"querygen"`
	ShutdownTimeout time.Duration     `json:"shutdown-timeout" mapstructure:"shutdown-timeout"`
}

// NewOptions creates Options with default values.
func NewOptions() *Options {
	return &Options{
		Addr: ":8080",
		DB: &DBOptions{
			Driver: "sqlite",
			DSN:    "insight.db",
		},
		Redis:           &RedisOptions{},
		JWT:             jwt.NewOptions(),
		QueryGen:        querygen.DefaultConfig(),
		ShutdownTimeout: 30 * time.Second,
	}
}

// AddFlags adds the server flags to the flag set.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Addr, "addr", o.Addr, "HTTP listen address")
	fs.StringVar(&o.DB.Driver, "db.driver", o.DB.Driver, "Database driver: mysql, postgres or sqlite")
	fs.StringVar(&o.DB.DSN, "db.dsn", o.DB.DSN, "Database DSN")
	fs.StringVar(&o.Redis.Addr, "redis.addr", o.Redis.Addr, "Redis address for the token blacklist; empty keeps it in memory")
	fs.StringVar(&o.Redis.Password, "redis.password", o.Redis.Password, "Redis password")
	fs.IntVar(&o.Redis.DB, "redis.db", o.Redis.DB, "Redis database index")
	fs.StringVar(&o.QueryGen.BaseURL, "querygen.base-url", o.QueryGen.BaseURL, "Query generation service base URL")
	fs.DurationVar(&o.QueryGen.Timeout, "querygen.timeout", o.QueryGen.Timeout, "Query generation request timeout")
	fs.DurationVar(&o.ShutdownTimeout, "shutdown-timeout", o.ShutdownTimeout, "Graceful shutdown timeout")

	o.JWT.AddFlags(fs)
}

// Validate checks whether the options are valid.
func (o *Options) Validate() error {
	switch o.DB.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported db driver: %s", o.DB.Driver)
	}
	if o.DB.DSN == "" {
		return fmt.Errorf("db.dsn is required")
	}

	if errs := o.JWT.Validate(); len(errs) > 0 {
		return errs[0]
	}
	return nil
}
