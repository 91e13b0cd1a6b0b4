package store

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"github.com/kart-io/insight/internal/model"
	"github.com/kart-io/insight/pkg/errors"
)

type charts struct {
	db *gorm.DB
}

func newCharts(db *gorm.DB) *charts {
	return &charts{db}
}

// Create creates a new chart.
func (c *charts) Create(ctx context.Context, row *model.Chart) error {
	if err := c.db.WithContext(ctx).Create(row).Error; err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// Update updates an existing chart.
func (c *charts) Update(ctx context.Context, row *model.Chart) error {
	if err := c.db.WithContext(ctx).Save(row).Error; err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// Delete deletes a chart by id.
func (c *charts) Delete(ctx context.Context, id string) error {
	if err := c.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Chart{}).Error; err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// Get retrieves a chart by id.
func (c *charts) Get(ctx context.Context, id string) (*model.Chart, error) {
	var row model.Chart
	if err := c.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrChartNotFound
		}
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return &row, nil
}

// ListByProject lists every chart within a project.
func (c *charts) ListByProject(ctx context.Context, projectID string) ([]*model.Chart, error) {
	var list []*model.Chart
	if err := c.db.WithContext(ctx).Where("project_id = ?", projectID).Find(&list).Error; err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return list, nil
}

// DeleteByProject removes every chart within a project.
func (c *charts) DeleteByProject(ctx context.Context, projectID string) error {
	if err := c.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&model.Chart{}).Error; err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}
