package biz

import (
	"context"

	"github.com/kart-io/insight/internal/insight/store"
	"github.com/kart-io/insight/internal/model"
	"github.com/kart-io/insight/pkg/errors"
)

// MembershipService manages the user-project-role ledger.
type MembershipService struct {
	ds store.Factory
}

// NewMembershipService creates a new MembershipService.
func NewMembershipService(ds store.Factory) *MembershipService {
	return &MembershipService{ds: ds}
}

// Add enrolls a user in a project under the given role. The role must
// be global or scoped to that same project.
func (s *MembershipService) Add(ctx context.Context, userID, projectID, roleID string, isOwner bool) (*model.Membership, error) {
	if _, err := s.ds.Users().Get(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.ds.Projects().Get(ctx, projectID); err != nil {
		return nil, err
	}

	role, err := s.ds.Roles().Get(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if !role.IsGlobal && (role.ProjectID == nil || *role.ProjectID != projectID) {
		return nil, errors.ErrRoleScopeInvalid.WithMessage("role belongs to another project")
	}

	m := &model.Membership{
		UserID:    userID,
		ProjectID: projectID,
		RoleID:    roleID,
		IsOwner:   isOwner,
	}
	if err := s.ds.Memberships().Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// SetRole changes the role a member holds within a project.
func (s *MembershipService) SetRole(ctx context.Context, userID, projectID, roleID string) (*model.Membership, error) {
	m, err := s.ds.Memberships().Get(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	role, err := s.ds.Roles().Get(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if !role.IsGlobal && (role.ProjectID == nil || *role.ProjectID != projectID) {
		return nil, errors.ErrRoleScopeInvalid.WithMessage("role belongs to another project")
	}

	m.RoleID = roleID
	if err := s.ds.Memberships().Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Remove drops a user from a project. The last owner cannot leave; a
// project without owners would be unmanageable.
func (s *MembershipService) Remove(ctx context.Context, userID, projectID string) error {
	m, err := s.ds.Memberships().Get(ctx, userID, projectID)
	if err != nil {
		return err
	}

	if m.IsOwner {
		owners, err := s.ds.Memberships().ListOwners(ctx, projectID)
		if err != nil {
			return err
		}
		if len(owners) <= 1 {
			return errors.ErrForbidden.WithMessage("cannot remove the last project owner")
		}
	}
	return s.ds.Memberships().Delete(ctx, userID, projectID)
}

// Get retrieves one membership.
func (s *MembershipService) Get(ctx context.Context, userID, projectID string) (*model.Membership, error) {
	return s.ds.Memberships().Get(ctx, userID, projectID)
}

// ListByProject lists the members of a project.
func (s *MembershipService) ListByProject(ctx context.Context, projectID string) ([]*model.Membership, error) {
	if _, err := s.ds.Projects().Get(ctx, projectID); err != nil {
		return nil, err
	}
	return s.ds.Memberships().ListByProject(ctx, projectID)
}

// ListOwners lists the owner memberships of a project.
func (s *MembershipService) ListOwners(ctx context.Context, projectID string) ([]*model.Membership, error) {
	if _, err := s.ds.Projects().Get(ctx, projectID); err != nil {
		return nil, err
	}
	return s.ds.Memberships().ListOwners(ctx, projectID)
}

// ListByUser lists the memberships a user holds.
func (s *MembershipService) ListByUser(ctx context.Context, userID string) ([]*model.Membership, error) {
	if _, err := s.ds.Users().Get(ctx, userID); err != nil {
		return nil, err
	}
	return s.ds.Memberships().ListByUser(ctx, userID)
}
