package biz

import (
	"context"

	"github.com/kart-io/insight/internal/insight/store"
	"github.com/kart-io/insight/internal/model"
	"github.com/kart-io/insight/pkg/errors"
)

// ShareGrant carries the access flags of one share request.
type ShareGrant struct {
	CanRead   bool `json:"can_read"`
	CanWrite  bool `json:"can_write"`
	CanDelete bool `json:"can_delete"`
}

// ShareService manages per-user grants on dashboards and charts.
// Sharing the same resource with the same user again updates the
// existing grant instead of failing.
type ShareService struct {
	ds store.Factory
}

// NewShareService creates a new ShareService.
func NewShareService(ds store.Factory) *ShareService {
	return &ShareService{ds: ds}
}

// ShareDashboard grants a user access to a dashboard.
func (s *ShareService) ShareDashboard(ctx context.Context, userID, dashboardID string, grant ShareGrant) error {
	if _, err := s.ds.Users().Get(ctx, userID); err != nil {
		return err
	}
	if _, err := s.ds.Dashboards().Get(ctx, dashboardID); err != nil {
		return err
	}

	return s.ds.Shares().UpsertDashboard(ctx, &model.UserDashboard{
		UserID:      userID,
		DashboardID: dashboardID,
		CanRead:     grant.CanRead,
		CanWrite:    grant.CanWrite,
		CanDelete:   grant.CanDelete,
	})
}

// RevokeDashboard removes a user's grant on a dashboard. The owner's
// grant cannot be revoked.
func (s *ShareService) RevokeDashboard(ctx context.Context, userID, dashboardID string) error {
	row, err := s.ds.Shares().GetDashboard(ctx, userID, dashboardID)
	if err != nil {
		return err
	}
	if row.IsOwner {
		return errors.ErrForbidden.WithMessage("owner grant cannot be revoked")
	}
	return s.ds.Shares().DeleteDashboard(ctx, userID, dashboardID)
}

// ListDashboardGrants lists the per-user grants on a dashboard.
func (s *ShareService) ListDashboardGrants(ctx context.Context, dashboardID string) ([]*model.UserDashboard, error) {
	if _, err := s.ds.Dashboards().Get(ctx, dashboardID); err != nil {
		return nil, err
	}
	return s.ds.Shares().ListByDashboard(ctx, dashboardID)
}

// SetDashboardFavorite toggles the favorite flag on the user's grant.
func (s *ShareService) SetDashboardFavorite(ctx context.Context, userID, dashboardID string, favorite bool) error {
	row, err := s.ds.Shares().GetDashboard(ctx, userID, dashboardID)
	if err != nil {
		return err
	}
	row.IsFavorite = favorite
	return s.ds.Shares().UpsertDashboard(ctx, row)
}

// ListFavorites lists the dashboards a user marked favorite.
func (s *ShareService) ListFavorites(ctx context.Context, userID string) ([]*model.Dashboard, error) {
	rows, err := s.ds.Shares().ListFavoriteDashboards(ctx, userID)
	if err != nil {
		return nil, err
	}

	boards := make([]*model.Dashboard, 0, len(rows))
	for _, row := range rows {
		d, err := s.ds.Dashboards().Get(ctx, row.DashboardID)
		if err != nil {
			continue
		}
		boards = append(boards, d)
	}
	return boards, nil
}

// ShareChart grants a user access to a chart.
func (s *ShareService) ShareChart(ctx context.Context, userID, chartID string, grant ShareGrant) error {
	if _, err := s.ds.Users().Get(ctx, userID); err != nil {
		return err
	}
	if _, err := s.ds.Charts().Get(ctx, chartID); err != nil {
		return err
	}

	return s.ds.Shares().UpsertChart(ctx, &model.UserChart{
		UserID:    userID,
		ChartID:   chartID,
		CanRead:   grant.CanRead,
		CanWrite:  grant.CanWrite,
		CanDelete: grant.CanDelete,
	})
}

// RevokeChart removes a user's grant on a chart.
func (s *ShareService) RevokeChart(ctx context.Context, userID, chartID string) error {
	row, err := s.ds.Shares().GetChart(ctx, userID, chartID)
	if err != nil {
		return err
	}
	if row.IsOwner {
		return errors.ErrForbidden.WithMessage("owner grant cannot be revoked")
	}
	return s.ds.Shares().DeleteChart(ctx, userID, chartID)
}

// SetChartFavorite toggles the favorite flag on the user's grant.
func (s *ShareService) SetChartFavorite(ctx context.Context, userID, chartID string, favorite bool) error {
	row, err := s.ds.Shares().GetChart(ctx, userID, chartID)
	if err != nil {
		return err
	}
	row.IsFavorite = favorite
	return s.ds.Shares().UpsertChart(ctx, row)
}

// ListChartGrants lists the per-user grants on a chart.
func (s *ShareService) ListChartGrants(ctx context.Context, chartID string) ([]*model.UserChart, error) {
	if _, err := s.ds.Charts().Get(ctx, chartID); err != nil {
		return nil, err
	}
	return s.ds.Shares().ListByChart(ctx, chartID)
}
