package store

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"github.com/kart-io/insight/internal/model"
	"github.com/kart-io/insight/pkg/errors"
)

type projects struct {
	db *gorm.DB
}

func newProjects(db *gorm.DB) *projects {
	return &projects{db}
}

// Create creates a new project.
func (p *projects) Create(ctx context.Context, project *model.Project) error {
	if err := p.db.WithContext(ctx).Create(project).Error; err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.ErrProjectNameTaken
		}
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// Update updates an existing project.
func (p *projects) Update(ctx context.Context, project *model.Project) error {
	if err := p.db.WithContext(ctx).Save(project).Error; err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.ErrProjectNameTaken
		}
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// Delete deletes a project by id.
func (p *projects) Delete(ctx context.Context, id string) error {
	if err := p.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Project{}).Error; err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// Get retrieves a project by id.
func (p *projects) Get(ctx context.Context, id string) (*model.Project, error) {
	var project model.Project
	if err := p.db.WithContext(ctx).Where("id = ?", id).First(&project).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrProjectNotFound
		}
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return &project, nil
}

// List lists projects with pagination.
func (p *projects) List(ctx context.Context, offset, limit int) (int64, []*model.Project, error) {
	var count int64
	var list []*model.Project

	if err := p.db.WithContext(ctx).Model(&model.Project{}).Count(&count).Error; err != nil {
		return 0, nil, errors.ErrDatabase.WithCause(err)
	}

	if err := p.db.WithContext(ctx).Offset(offset).Limit(limit).Find(&list).Error; err != nil {
		return 0, nil, errors.ErrDatabase.WithCause(err)
	}

	return count, list, nil
}

// ListByIDs retrieves the projects whose ids appear in ids.
func (p *projects) ListByIDs(ctx context.Context, ids []string) ([]*model.Project, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var list []*model.Project
	if err := p.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return list, nil
}
