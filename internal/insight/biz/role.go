package biz

import (
	"context"

	"github.com/kart-io/insight/internal/insight/store"
	"github.com/kart-io/insight/internal/model"
	"github.com/kart-io/insight/internal/perm"
	"github.com/kart-io/insight/pkg/errors"
)

// RoleService handles roles and their permission grants.
type RoleService struct {
	ds store.Factory
}

// NewRoleService creates a new RoleService.
func NewRoleService(ds store.Factory) *RoleService {
	return &RoleService{ds: ds}
}

// resolveKinds maps permission kind names to catalog ids, rejecting
// unknown names before anything is written.
func resolveKinds(kinds []string) ([]string, error) {
	ids := make([]string, 0, len(kinds))
	for _, k := range kinds {
		id, err := perm.Kind(k).ID()
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Create creates a role and attaches its initial grants in one
// transaction.
func (s *RoleService) Create(ctx context.Context, role *model.Role, kinds []string) error {
	if err := role.Validate(); err != nil {
		return err
	}
	if role.ProjectID != nil {
		if _, err := s.ds.Projects().Get(ctx, *role.ProjectID); err != nil {
			return err
		}
	}

	ids, err := resolveKinds(kinds)
	if err != nil {
		return err
	}

	return s.ds.TX(ctx, func(tx store.Factory) error {
		if err := tx.Roles().Create(ctx, role); err != nil {
			return err
		}
		return tx.Roles().AddGrants(ctx, role.ID, ids)
	})
}

// Get retrieves a role with its grants populated.
func (s *RoleService) Get(ctx context.Context, id string) (*model.Role, error) {
	role, err := s.ds.Roles().Get(ctx, id)
	if err != nil {
		return nil, err
	}

	grants, err := s.ds.Roles().ListGrants(ctx, id)
	if err != nil {
		return nil, err
	}
	role.Permissions = make([]model.Permission, 0, len(grants))
	for _, g := range grants {
		role.Permissions = append(role.Permissions, *g)
	}
	return role, nil
}

// Update changes a role. Nil fields keep their current value; a nil
// kinds slice keeps the grant set, while an empty one clears it. When
// grants are replaced the old ones are dropped and the new ones
// inserted in the same transaction, so a concurrent read never sees a
// half-updated role.
func (s *RoleService) Update(ctx context.Context, id string, name, description *string, kinds []string) (*model.Role, error) {
	role, err := s.ds.Roles().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if role.IsGlobal && role.Name == store.SuperRoleName {
		return nil, errors.ErrForbidden.WithMessage("built-in role cannot be modified")
	}

	var ids []string
	if kinds != nil {
		if ids, err = resolveKinds(kinds); err != nil {
			return nil, err
		}
	}

	if name != nil {
		role.Name = *name
	}
	if description != nil {
		role.Description = *description
	}
	err = s.ds.TX(ctx, func(tx store.Factory) error {
		if err := tx.Roles().Update(ctx, role); err != nil {
			return err
		}
		if kinds == nil {
			return nil
		}
		if err := tx.Roles().DeleteGrants(ctx, role.ID); err != nil {
			return err
		}
		return tx.Roles().AddGrants(ctx, role.ID, ids)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a role together with its grants, its table bans and
// every membership that referenced it.
func (s *RoleService) Delete(ctx context.Context, id string) error {
	role, err := s.ds.Roles().Get(ctx, id)
	if err != nil {
		return err
	}
	if role.IsGlobal && role.Name == store.SuperRoleName {
		return errors.ErrForbidden.WithMessage("built-in role cannot be deleted")
	}

	return s.ds.TX(ctx, func(tx store.Factory) error {
		if err := tx.Memberships().DeleteByRole(ctx, id); err != nil {
			return err
		}
		if err := tx.Roles().DeleteGrants(ctx, id); err != nil {
			return err
		}
		if err := tx.Connections().DeleteTableBansByRole(ctx, id); err != nil {
			return err
		}
		return tx.Roles().Delete(ctx, id)
	})
}

// ListVisible lists the roles assignable within a project, grants
// included.
func (s *RoleService) ListVisible(ctx context.Context, projectID string) ([]*model.Role, error) {
	roles, err := s.ds.Roles().ListVisible(ctx, projectID)
	if err != nil {
		return nil, err
	}

	for _, role := range roles {
		grants, err := s.ds.Roles().ListGrants(ctx, role.ID)
		if err != nil {
			return nil, err
		}
		role.Permissions = make([]model.Permission, 0, len(grants))
		for _, g := range grants {
			role.Permissions = append(role.Permissions, *g)
		}
	}
	return roles, nil
}

// Catalog lists the immutable permission catalog.
func (s *RoleService) Catalog(ctx context.Context) ([]*model.Permission, error) {
	return s.ds.Permissions().List(ctx)
}
