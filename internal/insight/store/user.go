package store

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"github.com/kart-io/insight/internal/model"
	"github.com/kart-io/insight/pkg/errors"
)

type users struct {
	db *gorm.DB
}

func newUsers(db *gorm.DB) *users {
	return &users{db}
}

// Create creates a new user.
func (u *users) Create(ctx context.Context, user *model.User) error {
	if err := u.db.WithContext(ctx).Create(user).Error; err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.ErrUserExists
		}
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// Update updates an existing user.
func (u *users) Update(ctx context.Context, user *model.User) error {
	if err := u.db.WithContext(ctx).Save(user).Error; err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.ErrUserExists
		}
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// Delete deletes a user by id.
func (u *users) Delete(ctx context.Context, id string) error {
	if err := u.db.WithContext(ctx).Where("id = ?", id).Delete(&model.User{}).Error; err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// Get retrieves a user by id.
func (u *users) Get(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := u.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound
		}
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return &user, nil
}

// GetByUsername retrieves a user by username.
func (u *users) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := u.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound
		}
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return &user, nil
}

// List lists users with pagination.
func (u *users) List(ctx context.Context, offset, limit int) (int64, []*model.User, error) {
	var count int64
	var list []*model.User

	if err := u.db.WithContext(ctx).Model(&model.User{}).Count(&count).Error; err != nil {
		return 0, nil, errors.ErrDatabase.WithCause(err)
	}

	if err := u.db.WithContext(ctx).Offset(offset).Limit(limit).Find(&list).Error; err != nil {
		return 0, nil, errors.ErrDatabase.WithCause(err)
	}

	return count, list, nil
}

// ListSupers lists all super users.
func (u *users) ListSupers(ctx context.Context) ([]*model.User, error) {
	var list []*model.User
	if err := u.db.WithContext(ctx).Where("is_super = ?", true).Find(&list).Error; err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return list, nil
}

// CreateAPIKey creates an API key for a user within a project.
func (u *users) CreateAPIKey(ctx context.Context, key *model.APIKey) error {
	if err := u.db.WithContext(ctx).Create(key).Error; err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.ErrAPIKeyExists
		}
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// GetAPIKey retrieves the API key of a user within a project.
func (u *users) GetAPIKey(ctx context.Context, userID, projectID string) (*model.APIKey, error) {
	var key model.APIKey
	err := u.db.WithContext(ctx).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		First(&key).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrNotFound.WithMessage("api key not found")
		}
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return &key, nil
}

// DeleteAPIKeysByUser removes all API keys of a user.
func (u *users) DeleteAPIKeysByUser(ctx context.Context, userID string) error {
	if err := u.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.APIKey{}).Error; err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// DeleteAPIKeysByProject removes all API keys issued for a project.
func (u *users) DeleteAPIKeysByProject(ctx context.Context, projectID string) error {
	if err := u.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&model.APIKey{}).Error; err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}
