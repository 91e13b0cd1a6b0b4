package store

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kart-io/insight/internal/model"
	"github.com/kart-io/insight/pkg/errors"
)

type permissions struct {
	db *gorm.DB
}

func newPermissions(db *gorm.DB) *permissions {
	return &permissions{db}
}

// Get retrieves a catalog permission by id.
func (p *permissions) Get(ctx context.Context, id string) (*model.Permission, error) {
	var perm model.Permission
	if err := p.db.WithContext(ctx).Where("id = ?", id).First(&perm).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUnknownPermission
		}
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return &perm, nil
}

// List lists the full permission catalog.
func (p *permissions) List(ctx context.Context) ([]*model.Permission, error) {
	var list []*model.Permission
	if err := p.db.WithContext(ctx).Order("type").Find(&list).Error; err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return list, nil
}

// Seed inserts catalog rows, skipping ones that already exist. Seeding
// runs on every startup so it has to be idempotent.
func (p *permissions) Seed(ctx context.Context, perms []*model.Permission) error {
	if len(perms) == 0 {
		return nil
	}

	err := p.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(perms).Error
	if err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}
