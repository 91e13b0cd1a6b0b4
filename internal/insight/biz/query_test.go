package biz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/insight/internal/model"
	"github.com/kart-io/insight/internal/perm"
	"github.com/kart-io/insight/pkg/datasource"
	"github.com/kart-io/insight/pkg/errors"
	"github.com/kart-io/insight/pkg/querygen"
)

// fakeProber serves a fixed schema without touching a real database.
type fakeProber struct {
	tables []datasource.Table
}

func (p *fakeProber) Ping(ctx context.Context, cfg datasource.Config) error {
	return nil
}

func (p *fakeProber) Probe(ctx context.Context, cfg datasource.Config) ([]datasource.Table, error) {
	return p.tables, nil
}

// fakeGenerator records the last request and echoes a canned query.
type fakeGenerator struct {
	lastReq *querygen.Request
}

func (g *fakeGenerator) Generate(ctx context.Context, req *querygen.Request) (*querygen.Result, error) {
	g.lastReq = req
	return &querygen.Result{Query: "SELECT 1"}, nil
}

func newTestConnection(t *testing.T, svc *ConnectionService, projectID string) *model.Connection {
	t.Helper()
	c := &model.Connection{
		ProjectID: projectID,
		Name:      "warehouse",
		Driver:    "mysql",
		Host:      "db.internal",
		Port:      3306,
		Username:  "reader",
		Password:  "pw",
		Database:  "warehouse",
	}
	require.NoError(t, svc.Create(context.Background(), c))
	return c
}

func TestConnectionCreateProbesSchema(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory(t)

	prober := &fakeProber{tables: []datasource.Table{
		{Name: "orders", Columns: []datasource.Column{{Name: "id", Type: "bigint"}}},
		{Name: "customers", Columns: []datasource.Column{{Name: "id", Type: "bigint"}}},
	}}
	svc := NewConnectionService(f, prober)

	owner := mustCreateUser(t, f, "owner", false)
	project := mustCreateProject(t, f, "analytics", owner.ID)
	conn := newTestConnection(t, svc, project.ID)

	tables, err := svc.ListTables(ctx, conn.ID)
	require.NoError(t, err)
	assert.Len(t, tables, 2)
}

func TestTableBans(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory(t)

	prober := &fakeProber{tables: []datasource.Table{
		{Name: "orders"}, {Name: "salaries"},
	}}
	svc := NewConnectionService(f, prober)

	owner := mustCreateUser(t, f, "owner", false)
	member := mustCreateUser(t, f, "member", false)
	project := mustCreateProject(t, f, "analytics", owner.ID)
	conn := newTestConnection(t, svc, project.ID)

	role := mustCreateRole(t, f, "Analyst", project.ID, perm.ViewDatasource)
	mustAddMember(t, f, member.ID, project.ID, role.ID)

	// Names must refer to probed tables.
	err := svc.SetTableBans(ctx, role.ID, conn.ID, []string{"no_such_table"})
	assert.True(t, errors.IsCode(err, errors.ErrInvalidParam.Code))

	require.NoError(t, svc.SetTableBans(ctx, role.ID, conn.ID, []string{"salaries"}))

	visible, err := svc.VisibleTables(ctx, member.ID, conn.ID)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "orders", visible[0].Name)

	// 超级用户不受屏蔽影响
	root := mustCreateUser(t, f, "root", true)
	all, err := svc.VisibleTables(ctx, root.ID, conn.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestQueryGenerateGatedOnAdmin(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory(t)

	prober := &fakeProber{tables: []datasource.Table{{Name: "orders"}, {Name: "salaries"}}}
	connections := NewConnectionService(f, prober)
	gen := &fakeGenerator{}
	svc := NewQueryService(f, gen, connections)

	owner := mustCreateUser(t, f, "owner", false)
	analyst := mustCreateUser(t, f, "analyst", false)
	admin := mustCreateUser(t, f, "admin", false)
	project := mustCreateProject(t, f, "analytics", owner.ID)
	conn := newTestConnection(t, connections, project.ID)

	viewerRole := mustCreateRole(t, f, "Viewer", project.ID, perm.ViewDatasource)
	adminRole := mustCreateRole(t, f, AdminRoleName, project.ID, perm.ViewDatasource)
	mustAddMember(t, f, analyst.ID, project.ID, viewerRole.ID)
	mustAddMember(t, f, admin.ID, project.ID, adminRole.ID)

	_, err := svc.Generate(ctx, "", conn.ID, "total sales")
	assert.True(t, errors.IsCode(err, errors.ErrUnauthorized.Code))

	_, err = svc.Generate(ctx, analyst.ID, conn.ID, "total sales")
	assert.True(t, errors.IsCode(err, errors.ErrNotProjectAdmin.Code))

	result, err := svc.Generate(ctx, admin.ID, conn.ID, "total sales")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", result.Query)
	assert.Equal(t, "mysql", gen.lastReq.Dialect)

	// The creator holds the built-in ALL role and passes the gate too.
	_, err = svc.Generate(ctx, owner.ID, conn.ID, "total sales")
	assert.NoError(t, err)
}

func TestQuerySchemaExcludesBannedTables(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory(t)

	prober := &fakeProber{tables: []datasource.Table{{Name: "orders"}, {Name: "salaries"}}}
	connections := NewConnectionService(f, prober)
	gen := &fakeGenerator{}
	svc := NewQueryService(f, gen, connections)

	owner := mustCreateUser(t, f, "owner", false)
	admin := mustCreateUser(t, f, "admin", false)
	project := mustCreateProject(t, f, "analytics", owner.ID)
	conn := newTestConnection(t, connections, project.ID)

	adminRole := mustCreateRole(t, f, AdminRoleName, project.ID, perm.ViewDatasource)
	mustAddMember(t, f, admin.ID, project.ID, adminRole.ID)
	require.NoError(t, connections.SetTableBans(ctx, adminRole.ID, conn.ID, []string{"salaries"}))

	_, err := svc.Generate(ctx, admin.ID, conn.ID, "total sales")
	require.NoError(t, err)

	require.Len(t, gen.lastReq.Tables, 1)
	assert.Equal(t, "orders", gen.lastReq.Tables[0].Name)
}

func TestConnectionRelate(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory(t)
	svc := NewConnectionService(f, &fakeProber{})

	owner := mustCreateUser(t, f, "owner", false)
	project := mustCreateProject(t, f, "analytics", owner.ID)

	c1 := newTestConnection(t, svc, project.ID)
	c2 := &model.Connection{ProjectID: project.ID, Name: "replica", Driver: "mysql", Host: "db2", Port: 3306, Database: "warehouse"}
	require.NoError(t, svc.Create(ctx, c2))

	err := svc.Relate(ctx, c1.ID, c1.ID)
	assert.True(t, errors.IsCode(err, errors.ErrInvalidParam.Code))

	require.NoError(t, svc.Relate(ctx, c1.ID, c2.ID))
	related, err := svc.ListRelated(ctx, c1.ID)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, c2.ID, related[0].ID)
}
