package biz

import (
	"context"

	"github.com/kart-io/insight/internal/insight/store"
	"github.com/kart-io/insight/internal/model"
	"github.com/kart-io/insight/pkg/errors"
)

// DashboardService handles dashboards and their chart placements.
type DashboardService struct {
	ds store.Factory
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(ds store.Factory) *DashboardService {
	return &DashboardService{ds: ds}
}

// Create creates a dashboard and grants the creator full access to it
// in the same transaction.
func (s *DashboardService) Create(ctx context.Context, d *model.Dashboard, creatorID string) error {
	if _, err := s.ds.Projects().Get(ctx, d.ProjectID); err != nil {
		return err
	}

	d.CreatedBy = creatorID
	return s.ds.TX(ctx, func(tx store.Factory) error {
		if err := tx.Dashboards().Create(ctx, d); err != nil {
			return err
		}
		return tx.Shares().UpsertDashboard(ctx, &model.UserDashboard{
			UserID:      creatorID,
			DashboardID: d.ID,
			CanRead:     true,
			CanWrite:    true,
			CanDelete:   true,
			IsOwner:     true,
		})
	})
}

// Get retrieves a dashboard by id.
func (s *DashboardService) Get(ctx context.Context, id string) (*model.Dashboard, error) {
	return s.ds.Dashboards().Get(ctx, id)
}

// Update updates a dashboard's name and description.
func (s *DashboardService) Update(ctx context.Context, d *model.Dashboard) error {
	current, err := s.ds.Dashboards().Get(ctx, d.ID)
	if err != nil {
		return err
	}
	d.ProjectID = current.ProjectID
	d.CreatedBy = current.CreatedBy
	return s.ds.Dashboards().Update(ctx, d)
}

// Delete removes a dashboard, its chart placements and every per-user
// grant on it.
func (s *DashboardService) Delete(ctx context.Context, id string) error {
	if _, err := s.ds.Dashboards().Get(ctx, id); err != nil {
		return err
	}

	return s.ds.TX(ctx, func(tx store.Factory) error {
		if err := tx.Dashboards().DeleteChartLinks(ctx, id); err != nil {
			return err
		}
		if err := tx.Shares().DeleteByDashboard(ctx, id); err != nil {
			return err
		}
		return tx.Dashboards().Delete(ctx, id)
	})
}

// ListByProject lists the dashboards of a project.
func (s *DashboardService) ListByProject(ctx context.Context, projectID string) ([]*model.Dashboard, error) {
	return s.ds.Dashboards().ListByProject(ctx, projectID)
}

// ListReadable lists the dashboards of a project the user holds a read
// grant on. Super users see every dashboard in the project.
func (s *DashboardService) ListReadable(ctx context.Context, projectID, userID string) ([]*model.Dashboard, error) {
	user, err := s.ds.Users().Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	boards, err := s.ds.Dashboards().ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if user.IsSuper {
		return boards, nil
	}

	readable := make([]*model.Dashboard, 0, len(boards))
	for _, d := range boards {
		row, err := s.ds.Shares().GetDashboard(ctx, userID, d.ID)
		if err != nil {
			continue
		}
		if row.CanRead {
			readable = append(readable, d)
		}
	}
	return readable, nil
}

// AttachChart places a chart on a dashboard. Both must belong to the
// same project.
func (s *DashboardService) AttachChart(ctx context.Context, dashboardID, chartID string) error {
	d, err := s.ds.Dashboards().Get(ctx, dashboardID)
	if err != nil {
		return err
	}
	c, err := s.ds.Charts().Get(ctx, chartID)
	if err != nil {
		return err
	}
	if d.ProjectID != c.ProjectID {
		return errors.ErrInvalidParam.WithMessage("chart belongs to another project")
	}
	return s.ds.Dashboards().AttachChart(ctx, dashboardID, chartID)
}

// DetachChart removes a chart from a dashboard.
func (s *DashboardService) DetachChart(ctx context.Context, dashboardID, chartID string) error {
	return s.ds.Dashboards().DetachChart(ctx, dashboardID, chartID)
}

// ListCharts lists the charts placed on a dashboard.
func (s *DashboardService) ListCharts(ctx context.Context, dashboardID string) ([]*model.Chart, error) {
	if _, err := s.ds.Dashboards().Get(ctx, dashboardID); err != nil {
		return nil, err
	}

	ids, err := s.ds.Dashboards().ListChartIDs(ctx, dashboardID)
	if err != nil {
		return nil, err
	}

	charts := make([]*model.Chart, 0, len(ids))
	for _, id := range ids {
		c, err := s.ds.Charts().Get(ctx, id)
		if err != nil {
			return nil, err
		}
		charts = append(charts, c)
	}
	return charts, nil
}
