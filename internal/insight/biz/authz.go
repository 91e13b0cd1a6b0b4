// Package biz implements the business logic of the insight platform.
package biz

import (
	"context"

	"github.com/kart-io/insight/internal/insight/store"
	"github.com/kart-io/insight/internal/model"
	"github.com/kart-io/insight/internal/perm"
	"github.com/kart-io/insight/pkg/errors"
)

// AuthzService answers the question "may user U perform action A within
// project P". Every decision path either returns nil (allow) or a
// specific errno (deny); store failures deny.
type AuthzService struct {
	ds store.Factory
}

// NewAuthzService creates a new AuthzService.
func NewAuthzService(ds store.Factory) *AuthzService {
	return &AuthzService{ds: ds}
}

// Can checks whether the user may perform the action within the project.
//
// Super users pass every check. Project-independent actions (creating
// or deleting projects) are satisfied by a grant on any role the user
// holds anywhere; everything else requires a membership in the target
// project whose role carries the grant.
func (s *AuthzService) Can(ctx context.Context, userID string, kind perm.Kind, projectID string) error {
	if userID == "" {
		return errors.ErrUnauthorized
	}

	user, err := s.ds.Users().Get(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsSuper {
		return nil
	}

	permissionID, err := kind.ID()
	if err != nil {
		return err
	}

	if kind.ProjectIndependent() {
		return s.anyProjectGrant(ctx, userID, permissionID)
	}

	membership, err := s.ds.Memberships().Get(ctx, userID, projectID)
	if err != nil {
		if errors.IsCode(err, errors.ErrMembershipNotFound.Code) {
			return errors.ErrNoProjectAccess
		}
		return err
	}

	ok, err := s.ds.Roles().HasGrant(ctx, membership.RoleID, permissionID)
	if err != nil {
		return err
	}
	if !ok {
		return errors.ErrMissingPermission
	}
	return nil
}

// anyProjectGrant allows the action if any role the user holds, in any
// project, carries the permission.
func (s *AuthzService) anyProjectGrant(ctx context.Context, userID, permissionID string) error {
	list, err := s.ds.Memberships().ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return errors.ErrNoRolesAssigned
	}

	for _, m := range list {
		ok, err := s.ds.Roles().HasGrant(ctx, m.RoleID, permissionID)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return errors.ErrMissingPermission
}

// CanReadDashboard checks the per-user grant on one dashboard. Role
// permissions gate the dashboard feature as a whole; the share table
// decides which dashboards the user actually sees.
func (s *AuthzService) CanReadDashboard(ctx context.Context, userID, dashboardID string) error {
	row, err := s.dashboardGrant(ctx, userID, dashboardID)
	if err != nil {
		return err
	}
	if !row.CanRead {
		return errors.ErrForbidden
	}
	return nil
}

// CanWriteDashboard checks the write grant on one dashboard.
func (s *AuthzService) CanWriteDashboard(ctx context.Context, userID, dashboardID string) error {
	row, err := s.dashboardGrant(ctx, userID, dashboardID)
	if err != nil {
		return err
	}
	if !row.CanWrite && !row.IsOwner {
		return errors.ErrForbidden
	}
	return nil
}

// CanDeleteDashboard checks the delete grant on one dashboard.
func (s *AuthzService) CanDeleteDashboard(ctx context.Context, userID, dashboardID string) error {
	row, err := s.dashboardGrant(ctx, userID, dashboardID)
	if err != nil {
		return err
	}
	if !row.CanDelete && !row.IsOwner {
		return errors.ErrForbidden
	}
	return nil
}

func (s *AuthzService) dashboardGrant(ctx context.Context, userID, dashboardID string) (*model.UserDashboard, error) {
	if userID == "" {
		return nil, errors.ErrUnauthorized
	}

	user, err := s.ds.Users().Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsSuper {
		return &model.UserDashboard{CanRead: true, CanWrite: true, CanDelete: true, IsOwner: true}, nil
	}

	row, err := s.ds.Shares().GetDashboard(ctx, userID, dashboardID)
	if err != nil {
		if errors.IsCode(err, errors.ErrShareNotFound.Code) {
			return nil, errors.ErrForbidden
		}
		return nil, err
	}
	return row, nil
}

// CanReadChart checks the per-user grant on one chart.
func (s *AuthzService) CanReadChart(ctx context.Context, userID, chartID string) error {
	row, err := s.chartGrant(ctx, userID, chartID)
	if err != nil {
		return err
	}
	if !row.CanRead {
		return errors.ErrForbidden
	}
	return nil
}

// CanWriteChart checks the write grant on one chart.
func (s *AuthzService) CanWriteChart(ctx context.Context, userID, chartID string) error {
	row, err := s.chartGrant(ctx, userID, chartID)
	if err != nil {
		return err
	}
	if !row.CanWrite && !row.IsOwner {
		return errors.ErrForbidden
	}
	return nil
}

// CanDeleteChart checks the delete grant on one chart.
func (s *AuthzService) CanDeleteChart(ctx context.Context, userID, chartID string) error {
	row, err := s.chartGrant(ctx, userID, chartID)
	if err != nil {
		return err
	}
	if !row.CanDelete && !row.IsOwner {
		return errors.ErrForbidden
	}
	return nil
}

func (s *AuthzService) chartGrant(ctx context.Context, userID, chartID string) (*model.UserChart, error) {
	if userID == "" {
		return nil, errors.ErrUnauthorized
	}

	user, err := s.ds.Users().Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsSuper {
		return &model.UserChart{CanRead: true, CanWrite: true, CanDelete: true, IsOwner: true}, nil
	}

	row, err := s.ds.Shares().GetChart(ctx, userID, chartID)
	if err != nil {
		if errors.IsCode(err, errors.ErrShareNotFound.Code) {
			return nil, errors.ErrForbidden
		}
		return nil, err
	}
	return row, nil
}

// RequireSuper denies unless the user is a super user.
func (s *AuthzService) RequireSuper(ctx context.Context, userID string) error {
	if userID == "" {
		return errors.ErrUnauthorized
	}

	user, err := s.ds.Users().Get(ctx, userID)
	if err != nil {
		return err
	}
	if !user.IsSuper {
		return errors.ErrSuperRequired
	}
	return nil
}

// RequireProjectRole denies unless the user's role in the project has
// the given name. Super users pass.
func (s *AuthzService) RequireProjectRole(ctx context.Context, userID, projectID, roleName string) error {
	if userID == "" {
		return errors.ErrUnauthorized
	}

	user, err := s.ds.Users().Get(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsSuper {
		return nil
	}

	membership, err := s.ds.Memberships().Get(ctx, userID, projectID)
	if err != nil {
		if errors.IsCode(err, errors.ErrMembershipNotFound.Code) {
			return errors.ErrNoProjectAccess
		}
		return err
	}

	role, err := s.ds.Roles().Get(ctx, membership.RoleID)
	if err != nil {
		return err
	}
	if role.Name != roleName {
		return errors.ErrNotProjectAdmin
	}
	return nil
}
