package store

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"github.com/kart-io/insight/internal/model"
	"github.com/kart-io/insight/pkg/errors"
)

type memberships struct {
	db *gorm.DB
}

func newMemberships(db *gorm.DB) *memberships {
	return &memberships{db}
}

// Create adds a user to a project. The (user_id, project_id) unique
// index turns concurrent duplicate adds into a conflict.
func (m *memberships) Create(ctx context.Context, row *model.Membership) error {
	if err := m.db.WithContext(ctx).Create(row).Error; err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.ErrMembershipExists
		}
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// Update updates an existing membership.
func (m *memberships) Update(ctx context.Context, row *model.Membership) error {
	if err := m.db.WithContext(ctx).Save(row).Error; err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// Delete removes a user from a project.
func (m *memberships) Delete(ctx context.Context, userID, projectID string) error {
	err := m.db.WithContext(ctx).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Delete(&model.Membership{}).Error
	if err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// Get retrieves the membership of a user within a project.
func (m *memberships) Get(ctx context.Context, userID, projectID string) (*model.Membership, error) {
	var row model.Membership
	err := m.db.WithContext(ctx).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		First(&row).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrMembershipNotFound
		}
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return &row, nil
}

// ListByUser lists every membership a user holds.
func (m *memberships) ListByUser(ctx context.Context, userID string) ([]*model.Membership, error) {
	var list []*model.Membership
	if err := m.db.WithContext(ctx).Where("user_id = ?", userID).Find(&list).Error; err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return list, nil
}

// ListByProject lists every membership within a project.
func (m *memberships) ListByProject(ctx context.Context, projectID string) ([]*model.Membership, error) {
	var list []*model.Membership
	if err := m.db.WithContext(ctx).Where("project_id = ?", projectID).Find(&list).Error; err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return list, nil
}

// ListOwners lists the owner memberships of a project.
func (m *memberships) ListOwners(ctx context.Context, projectID string) ([]*model.Membership, error) {
	var list []*model.Membership
	err := m.db.WithContext(ctx).
		Where("project_id = ? AND is_owner = ?", projectID, true).
		Find(&list).Error
	if err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return list, nil
}

// DeleteByUser removes every membership a user holds.
func (m *memberships) DeleteByUser(ctx context.Context, userID string) error {
	if err := m.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Membership{}).Error; err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// DeleteByProject removes every membership within a project.
func (m *memberships) DeleteByProject(ctx context.Context, projectID string) error {
	if err := m.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&model.Membership{}).Error; err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// DeleteByRole removes every membership that references a role.
func (m *memberships) DeleteByRole(ctx context.Context, roleID string) error {
	if err := m.db.WithContext(ctx).Where("role_id = ?", roleID).Delete(&model.Membership{}).Error; err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}
