package biz

import (
	"context"

	"github.com/kart-io/insight/internal/insight/store"
	"github.com/kart-io/insight/internal/model"
)

// ChartService handles charts.
type ChartService struct {
	ds store.Factory
}

// NewChartService creates a new ChartService.
func NewChartService(ds store.Factory) *ChartService {
	return &ChartService{ds: ds}
}

// Create creates a chart and grants the creator full access to it.
func (s *ChartService) Create(ctx context.Context, c *model.Chart, creatorID string) error {
	if _, err := s.ds.Projects().Get(ctx, c.ProjectID); err != nil {
		return err
	}

	c.CreatedBy = creatorID
	return s.ds.TX(ctx, func(tx store.Factory) error {
		if err := tx.Charts().Create(ctx, c); err != nil {
			return err
		}
		return tx.Shares().UpsertChart(ctx, &model.UserChart{
			UserID:    creatorID,
			ChartID:   c.ID,
			CanRead:   true,
			CanWrite:  true,
			CanDelete: true,
			IsOwner:   true,
		})
	})
}

// Get retrieves a chart by id.
func (s *ChartService) Get(ctx context.Context, id string) (*model.Chart, error) {
	return s.ds.Charts().Get(ctx, id)
}

// Update updates a chart's name, type and query.
func (s *ChartService) Update(ctx context.Context, c *model.Chart) error {
	current, err := s.ds.Charts().Get(ctx, c.ID)
	if err != nil {
		return err
	}
	c.ProjectID = current.ProjectID
	c.CreatedBy = current.CreatedBy
	return s.ds.Charts().Update(ctx, c)
}

// Delete removes a chart, its dashboard placements and every per-user
// grant on it.
func (s *ChartService) Delete(ctx context.Context, id string) error {
	if _, err := s.ds.Charts().Get(ctx, id); err != nil {
		return err
	}

	return s.ds.TX(ctx, func(tx store.Factory) error {
		if err := tx.Dashboards().DeleteLinksByChart(ctx, id); err != nil {
			return err
		}
		if err := tx.Shares().DeleteByChart(ctx, id); err != nil {
			return err
		}
		return tx.Charts().Delete(ctx, id)
	})
}

// ListByProject lists the charts of a project.
func (s *ChartService) ListByProject(ctx context.Context, projectID string) ([]*model.Chart, error) {
	return s.ds.Charts().ListByProject(ctx, projectID)
}

// ListReadable lists the charts of a project the user holds a read
// grant on. Super users see every chart in the project.
func (s *ChartService) ListReadable(ctx context.Context, projectID, userID string) ([]*model.Chart, error) {
	user, err := s.ds.Users().Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	charts, err := s.ds.Charts().ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if user.IsSuper {
		return charts, nil
	}

	readable := make([]*model.Chart, 0, len(charts))
	for _, c := range charts {
		row, err := s.ds.Shares().GetChart(ctx, userID, c.ID)
		if err != nil {
			continue
		}
		if row.CanRead {
			readable = append(readable, c)
		}
	}
	return readable, nil
}
