// Package insight assembles and runs the insight server.
package insight

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/kart-io/logger"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/kart-io/insight/cmd/insight/app/options"
	"github.com/kart-io/insight/internal/insight/router"
	"github.com/kart-io/insight/internal/insight/store"
	"github.com/kart-io/insight/pkg/auth/jwt"
	"github.com/kart-io/insight/pkg/datasource"
	"github.com/kart-io/insight/pkg/middleware"
	"github.com/kart-io/insight/pkg/querygen"
	"github.com/kart-io/insight/pkg/validator"
)

func openDB(opts *options.DBOptions) (*gorm.DB, error) {
	// TranslateError is required so unique violations surface as
	// gorm.ErrDuplicatedKey across drivers.
	cfg := &gorm.Config{TranslateError: true}

	switch opts.Driver {
	case "mysql":
		return gorm.Open(mysql.Open(opts.DSN), cfg)
	case "postgres":
		return gorm.Open(postgres.Open(opts.DSN), cfg)
	case "sqlite":
		return gorm.Open(sqlite.Open(opts.DSN), cfg)
	default:
		return nil, fmt.Errorf("unsupported db driver: %s", opts.Driver)
	}
}

func newTokenStore(opts *options.RedisOptions) jwt.Store {
	if opts == nil || opts.Addr == "" {
		return jwt.NewMemoryStore()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return jwt.NewRedisStore(client, "")
}

// Run starts the insight server and blocks until shutdown.
func Run(opts *options.Options) error {
	db, err := openDB(opts.DB)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	ds := store.New(db)
	defer func() {
		_ = ds.Close()
	}()

	if err := ds.AutoMigrate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := store.Seed(context.Background(), ds); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	tokenStore := newTokenStore(opts.Redis)
	defer func() {
		_ = tokenStore.Close()
	}()
	authn, err := jwt.New(jwt.WithOptions(opts.JWT), jwt.WithStore(tokenStore))
	if err != nil {
		return fmt.Errorf("build authenticator: %w", err)
	}

	if err := validator.RegisterBindingRules(); err != nil {
		return fmt.Errorf("register validators: %w", err)
	}

	engine := newEngine(ds, authn, opts)

	srv := &http.Server{
		Addr:    opts.Addr,
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("insight server listening", "addr", opts.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Infow("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}

func newEngine(ds store.Factory, authn *jwt.JWT, opts *options.Options) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(middleware.Recovery(), middleware.RequestID(), middleware.Logger())

	router.Register(engine, ds, authn, datasource.NewProber(), querygen.New(opts.QueryGen))
	return engine
}
