package store

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"github.com/kart-io/insight/internal/model"
	"github.com/kart-io/insight/pkg/errors"
)

type roles struct {
	db *gorm.DB
}

func newRoles(db *gorm.DB) *roles {
	return &roles{db}
}

// Create creates a new role. The scope invariant is enforced by the
// model's BeforeSave hook.
func (r *roles) Create(ctx context.Context, role *model.Role) error {
	if err := r.db.WithContext(ctx).Create(role).Error; err != nil {
		if errors.IsCode(err, errors.ErrRoleScopeInvalid.Code) {
			return err
		}
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.ErrAlreadyExists.WithMessage("role already exists")
		}
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// Update updates an existing role.
func (r *roles) Update(ctx context.Context, role *model.Role) error {
	if err := r.db.WithContext(ctx).Save(role).Error; err != nil {
		if errors.IsCode(err, errors.ErrRoleScopeInvalid.Code) {
			return err
		}
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// Delete deletes a role by id.
func (r *roles) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Role{}).Error; err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// Get retrieves a role by id.
func (r *roles) Get(ctx context.Context, id string) (*model.Role, error) {
	var role model.Role
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&role).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrRoleNotFound
		}
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return &role, nil
}

// GetGlobalByName retrieves a global role by its name.
func (r *roles) GetGlobalByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	err := r.db.WithContext(ctx).
		Where("name = ? AND is_global = ?", name, true).
		First(&role).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrRoleNotFound
		}
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return &role, nil
}

// ListVisible lists the roles assignable within a project: every global
// role plus the roles scoped to that project.
func (r *roles) ListVisible(ctx context.Context, projectID string) ([]*model.Role, error) {
	var list []*model.Role
	err := r.db.WithContext(ctx).
		Where("is_global = ? OR project_id = ?", true, projectID).
		Find(&list).Error
	if err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return list, nil
}

// DeleteByProject removes all roles scoped to a project.
func (r *roles) DeleteByProject(ctx context.Context, projectID string) error {
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&model.Role{}).Error; err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// AddGrants attaches catalog permissions to a role.
func (r *roles) AddGrants(ctx context.Context, roleID string, permissionIDs []string) error {
	if len(permissionIDs) == 0 {
		return nil
	}

	rows := make([]*model.RolePermission, 0, len(permissionIDs))
	for _, pid := range permissionIDs {
		rows = append(rows, &model.RolePermission{RoleID: roleID, PermissionID: pid})
	}

	if err := r.db.WithContext(ctx).Create(rows).Error; err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.ErrAlreadyExists.WithMessage("permission already granted")
		}
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// DeleteGrants removes every grant held by a role.
func (r *roles) DeleteGrants(ctx context.Context, roleID string) error {
	if err := r.db.WithContext(ctx).Where("role_id = ?", roleID).Delete(&model.RolePermission{}).Error; err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// ListGrants lists the catalog permissions granted to a role.
func (r *roles) ListGrants(ctx context.Context, roleID string) ([]*model.Permission, error) {
	var list []*model.Permission
	err := r.db.WithContext(ctx).
		Model(&model.Permission{}).
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", roleID).
		Find(&list).Error
	if err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return list, nil
}

// HasGrant reports whether a role holds the given catalog permission.
func (r *roles) HasGrant(ctx context.Context, roleID, permissionID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.RolePermission{}).
		Where("role_id = ? AND permission_id = ?", roleID, permissionID).
		Count(&count).Error
	if err != nil {
		return false, errors.ErrDatabase.WithCause(err)
	}
	return count > 0, nil
}
