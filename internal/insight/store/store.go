// Package store implements the data access layer over gorm.
package store

import (
	"context"

	"github.com/kart-io/insight/internal/model"
)

// Factory defines the factory interface for creating stores.
// TX runs fn against a factory bound to a single database transaction;
// any error from fn rolls the whole transaction back.
type Factory interface {
	Users() UserStore
	Projects() ProjectStore
	Roles() RoleStore
	Permissions() PermissionStore
	Memberships() MembershipStore
	Dashboards() DashboardStore
	Charts() ChartStore
	Shares() ShareStore
	Connections() ConnectionStore

	TX(ctx context.Context, fn func(Factory) error) error
	AutoMigrate() error
	Close() error
}

// UserStore defines the user storage interface.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context, offset, limit int) (int64, []*model.User, error)
	ListSupers(ctx context.Context) ([]*model.User, error)

	CreateAPIKey(ctx context.Context, key *model.APIKey) error
	GetAPIKey(ctx context.Context, userID, projectID string) (*model.APIKey, error)
	DeleteAPIKeysByUser(ctx context.Context, userID string) error
	DeleteAPIKeysByProject(ctx context.Context, projectID string) error
}

// ProjectStore defines the project storage interface.
type ProjectStore interface {
	Create(ctx context.Context, project *model.Project) error
	Update(ctx context.Context, project *model.Project) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*model.Project, error)
	List(ctx context.Context, offset, limit int) (int64, []*model.Project, error)
	ListByIDs(ctx context.Context, ids []string) ([]*model.Project, error)
}

// RoleStore defines the role storage interface.
type RoleStore interface {
	Create(ctx context.Context, role *model.Role) error
	Update(ctx context.Context, role *model.Role) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*model.Role, error)
	GetGlobalByName(ctx context.Context, name string) (*model.Role, error)
	ListVisible(ctx context.Context, projectID string) ([]*model.Role, error)
	DeleteByProject(ctx context.Context, projectID string) error

	AddGrants(ctx context.Context, roleID string, permissionIDs []string) error
	DeleteGrants(ctx context.Context, roleID string) error
	ListGrants(ctx context.Context, roleID string) ([]*model.Permission, error)
	HasGrant(ctx context.Context, roleID, permissionID string) (bool, error)
}

// PermissionStore defines the permission catalog storage interface.
type PermissionStore interface {
	Get(ctx context.Context, id string) (*model.Permission, error)
	List(ctx context.Context) ([]*model.Permission, error)
	Seed(ctx context.Context, permissions []*model.Permission) error
}

// MembershipStore defines the membership ledger storage interface.
type MembershipStore interface {
	Create(ctx context.Context, m *model.Membership) error
	Update(ctx context.Context, m *model.Membership) error
	Delete(ctx context.Context, userID, projectID string) error
	Get(ctx context.Context, userID, projectID string) (*model.Membership, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Membership, error)
	ListByProject(ctx context.Context, projectID string) ([]*model.Membership, error)
	ListOwners(ctx context.Context, projectID string) ([]*model.Membership, error)
	DeleteByUser(ctx context.Context, userID string) error
	DeleteByProject(ctx context.Context, projectID string) error
	DeleteByRole(ctx context.Context, roleID string) error
}

// DashboardStore defines the dashboard storage interface.
type DashboardStore interface {
	Create(ctx context.Context, d *model.Dashboard) error
	Update(ctx context.Context, d *model.Dashboard) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*model.Dashboard, error)
	ListByProject(ctx context.Context, projectID string) ([]*model.Dashboard, error)
	DeleteByProject(ctx context.Context, projectID string) error

	AttachChart(ctx context.Context, dashboardID, chartID string) error
	DetachChart(ctx context.Context, dashboardID, chartID string) error
	ListChartIDs(ctx context.Context, dashboardID string) ([]string, error)
	DeleteChartLinks(ctx context.Context, dashboardID string) error
	DeleteLinksByChart(ctx context.Context, chartID string) error
}

// ChartStore defines the chart storage interface.
type ChartStore interface {
	Create(ctx context.Context, c *model.Chart) error
	Update(ctx context.Context, c *model.Chart) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*model.Chart, error)
	ListByProject(ctx context.Context, projectID string) ([]*model.Chart, error)
	DeleteByProject(ctx context.Context, projectID string) error
}

// ShareStore defines storage for per-user resource access grants.
type ShareStore interface {
	UpsertDashboard(ctx context.Context, row *model.UserDashboard) error
	GetDashboard(ctx context.Context, userID, dashboardID string) (*model.UserDashboard, error)
	DeleteDashboard(ctx context.Context, userID, dashboardID string) error
	ListByDashboard(ctx context.Context, dashboardID string) ([]*model.UserDashboard, error)
	ListFavoriteDashboards(ctx context.Context, userID string) ([]*model.UserDashboard, error)
	DeleteByDashboard(ctx context.Context, dashboardID string) error

	UpsertChart(ctx context.Context, row *model.UserChart) error
	GetChart(ctx context.Context, userID, chartID string) (*model.UserChart, error)
	DeleteChart(ctx context.Context, userID, chartID string) error
	ListByChart(ctx context.Context, chartID string) ([]*model.UserChart, error)
	DeleteByChart(ctx context.Context, chartID string) error

	DeleteByUser(ctx context.Context, userID string) error
}

// ConnectionStore defines the datasource connection storage interface.
type ConnectionStore interface {
	Create(ctx context.Context, c *model.Connection) error
	Update(ctx context.Context, c *model.Connection) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*model.Connection, error)
	ListByProject(ctx context.Context, projectID string) ([]*model.Connection, error)
	DeleteByProject(ctx context.Context, projectID string) error

	ReplaceTables(ctx context.Context, connectionID string, tables []*model.ConnectionTable) error
	ListTables(ctx context.Context, connectionID string) ([]*model.ConnectionTable, error)

	ReplaceTableBans(ctx context.Context, roleID, connectionID string, tableNames []string) error
	ListTableBans(ctx context.Context, roleID, connectionID string) ([]string, error)
	DeleteTableBansByRole(ctx context.Context, roleID string) error

	AddRelated(ctx context.Context, connectionID, relatedID string) error
	ListRelated(ctx context.Context, connectionID string) ([]string, error)
	DeleteRelated(ctx context.Context, connectionID string) error
}
