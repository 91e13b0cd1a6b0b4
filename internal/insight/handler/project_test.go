package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kart-io/insight/internal/insight/biz"
	"github.com/kart-io/insight/internal/insight/store"
	"github.com/kart-io/insight/internal/model"
	"github.com/kart-io/insight/pkg/auth"
)

func newHandlerFactory(t *testing.T) store.Factory {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	f := store.New(db)
	require.NoError(t, f.AutoMigrate())
	require.NoError(t, store.Seed(context.Background(), f))
	return f
}

// asUser injects the verified identity the way the auth middleware does.
func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := auth.InjectAuth(c.Request.Context(), &auth.Claims{Subject: userID}, "")
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func newProjectEngine(f store.Factory, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewProjectHandler(biz.NewProjectService(f), biz.NewMembershipService(f), biz.NewAuthzService(f))

	engine := gin.New()
	engine.POST("/v1/projects", asUser(userID), h.Create)
	return engine
}

func TestCreateProjectDeniedWithoutRoles(t *testing.T) {
	ctx := context.Background()
	f := newHandlerFactory(t)

	drifter := &model.User{Username: "drifter", Email: "drifter@example.com"}
	require.NoError(t, f.Users().Create(ctx, drifter))

	engine := newProjectEngine(f, drifter.ID)

	req := httptest.NewRequest(http.MethodPost, "/v1/projects", bytes.NewBufferString(`{"name":"alpha"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)

	// 被拒绝的请求不能留下任何项目
	total, _, err := f.Projects().List(ctx, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestCreateProjectAllowedWithGrant(t *testing.T) {
	ctx := context.Background()
	f := newHandlerFactory(t)

	alice := &model.User{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, f.Users().Create(ctx, alice))

	// Creating the first project enrolls alice under the built-in ALL
	// role, which carries CREATE_PROJECT.
	first := &model.Project{Name: "first"}
	require.NoError(t, biz.NewProjectService(f).Create(ctx, first, alice.ID))

	engine := newProjectEngine(f, alice.ID)

	req := httptest.NewRequest(http.MethodPost, "/v1/projects", bytes.NewBufferString(`{"name":"second"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	total, _, err := f.Projects().List(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}
