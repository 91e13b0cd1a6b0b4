package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/kart-io/insight/internal/model"
)

// datastore implements the Factory interface.
type datastore struct {
	db *gorm.DB
}

// New creates a Factory backed by the given gorm database handle.
// The handle must be opened with TranslateError enabled so unique
// constraint violations surface as gorm.ErrDuplicatedKey.
func New(db *gorm.DB) Factory {
	return &datastore{db: db}
}

// Users returns the user store.
func (ds *datastore) Users() UserStore {
	return newUsers(ds.db)
}

// Projects returns the project store.
func (ds *datastore) Projects() ProjectStore {
	return newProjects(ds.db)
}

// Roles returns the role store.
func (ds *datastore) Roles() RoleStore {
	return newRoles(ds.db)
}

// Permissions returns the permission catalog store.
func (ds *datastore) Permissions() PermissionStore {
	return newPermissions(ds.db)
}

// Memberships returns the membership store.
func (ds *datastore) Memberships() MembershipStore {
	return newMemberships(ds.db)
}

// Dashboards returns the dashboard store.
func (ds *datastore) Dashboards() DashboardStore {
	return newDashboards(ds.db)
}

// Charts returns the chart store.
func (ds *datastore) Charts() ChartStore {
	return newCharts(ds.db)
}

// Shares returns the resource share store.
func (ds *datastore) Shares() ShareStore {
	return newShares(ds.db)
}

// Connections returns the datasource connection store.
func (ds *datastore) Connections() ConnectionStore {
	return newConnections(ds.db)
}

// TX runs fn inside a single database transaction.
func (ds *datastore) TX(ctx context.Context, fn func(Factory) error) error {
	return ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&datastore{db: tx})
	})
}

// AutoMigrate migrates the database schema.
func (ds *datastore) AutoMigrate() error {
	return ds.db.AutoMigrate(
		&model.User{},
		&model.APIKey{},
		&model.Project{},
		&model.Role{},
		&model.Permission{},
		&model.RolePermission{},
		&model.Membership{},
		&model.Dashboard{},
		&model.Chart{},
		&model.DashboardChart{},
		&model.UserDashboard{},
		&model.UserChart{},
		&model.Connection{},
		&model.ConnectionTable{},
		&model.RoleTableBan{},
		&model.RelatedConnection{},
	)
}

// Close closes the underlying database connection.
func (ds *datastore) Close() error {
	sqlDB, err := ds.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
