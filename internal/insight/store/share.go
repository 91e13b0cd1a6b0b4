package store

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kart-io/insight/internal/model"
	"github.com/kart-io/insight/pkg/errors"
)

type shares struct {
	db *gorm.DB
}

func newShares(db *gorm.DB) *shares {
	return &shares{db}
}

// UpsertDashboard writes a per-user dashboard grant. Sharing the same
// dashboard with the same user again updates the flags in place.
func (s *shares) UpsertDashboard(ctx context.Context, row *model.UserDashboard) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "dashboard_id"}},
			// is_owner stays out of the update set: re-sharing with the
			// owner must not strip ownership.
			DoUpdates: clause.AssignmentColumns([]string{
				"can_read", "can_write", "can_delete", "is_favorite", "updated_at",
			}),
		}).
		Create(row).Error
	if err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// GetDashboard retrieves the grant of a user on a dashboard.
func (s *shares) GetDashboard(ctx context.Context, userID, dashboardID string) (*model.UserDashboard, error) {
	var row model.UserDashboard
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND dashboard_id = ?", userID, dashboardID).
		First(&row).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrShareNotFound
		}
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return &row, nil
}

// DeleteDashboard revokes the grant of a user on a dashboard.
func (s *shares) DeleteDashboard(ctx context.Context, userID, dashboardID string) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND dashboard_id = ?", userID, dashboardID).
		Delete(&model.UserDashboard{}).Error
	if err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// ListByDashboard lists every grant on a dashboard.
func (s *shares) ListByDashboard(ctx context.Context, dashboardID string) ([]*model.UserDashboard, error) {
	var list []*model.UserDashboard
	err := s.db.WithContext(ctx).Where("dashboard_id = ?", dashboardID).Find(&list).Error
	if err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return list, nil
}

// ListFavoriteDashboards lists the dashboard grants a user marked favorite.
func (s *shares) ListFavoriteDashboards(ctx context.Context, userID string) ([]*model.UserDashboard, error) {
	var list []*model.UserDashboard
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_favorite = ?", userID, true).
		Find(&list).Error
	if err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return list, nil
}

// DeleteByDashboard removes every grant on a dashboard.
func (s *shares) DeleteByDashboard(ctx context.Context, dashboardID string) error {
	err := s.db.WithContext(ctx).
		Where("dashboard_id = ?", dashboardID).
		Delete(&model.UserDashboard{}).Error
	if err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// UpsertChart writes a per-user chart grant.
func (s *shares) UpsertChart(ctx context.Context, row *model.UserChart) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "chart_id"}},
			// is_owner stays out of the update set, same as dashboards.
			DoUpdates: clause.AssignmentColumns([]string{
				"can_read", "can_write", "can_delete", "is_favorite", "updated_at",
			}),
		}).
		Create(row).Error
	if err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// GetChart retrieves the grant of a user on a chart.
func (s *shares) GetChart(ctx context.Context, userID, chartID string) (*model.UserChart, error) {
	var row model.UserChart
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND chart_id = ?", userID, chartID).
		First(&row).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrShareNotFound
		}
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return &row, nil
}

// DeleteChart revokes the grant of a user on a chart.
func (s *shares) DeleteChart(ctx context.Context, userID, chartID string) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND chart_id = ?", userID, chartID).
		Delete(&model.UserChart{}).Error
	if err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// ListByChart lists every grant on a chart.
func (s *shares) ListByChart(ctx context.Context, chartID string) ([]*model.UserChart, error) {
	var list []*model.UserChart
	if err := s.db.WithContext(ctx).Where("chart_id = ?", chartID).Find(&list).Error; err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return list, nil
}

// DeleteByChart removes every grant on a chart.
func (s *shares) DeleteByChart(ctx context.Context, chartID string) error {
	if err := s.db.WithContext(ctx).Where("chart_id = ?", chartID).Delete(&model.UserChart{}).Error; err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// DeleteByUser removes every grant a user holds, on dashboards and charts.
func (s *shares) DeleteByUser(ctx context.Context, userID string) error {
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.UserDashboard{}).Error; err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.UserChart{}).Error; err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}
