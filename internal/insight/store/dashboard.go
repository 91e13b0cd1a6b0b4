package store

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"github.com/kart-io/insight/internal/model"
	"github.com/kart-io/insight/pkg/errors"
)

type dashboards struct {
	db *gorm.DB
}

func newDashboards(db *gorm.DB) *dashboards {
	return &dashboards{db}
}

// Create creates a new dashboard.
func (d *dashboards) Create(ctx context.Context, row *model.Dashboard) error {
	if err := d.db.WithContext(ctx).Create(row).Error; err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// Update updates an existing dashboard.
func (d *dashboards) Update(ctx context.Context, row *model.Dashboard) error {
	if err := d.db.WithContext(ctx).Save(row).Error; err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// Delete deletes a dashboard by id.
func (d *dashboards) Delete(ctx context.Context, id string) error {
	if err := d.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Dashboard{}).Error; err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// Get retrieves a dashboard by id.
func (d *dashboards) Get(ctx context.Context, id string) (*model.Dashboard, error) {
	var row model.Dashboard
	if err := d.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrDashboardNotFound
		}
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return &row, nil
}

// ListByProject lists every dashboard within a project.
func (d *dashboards) ListByProject(ctx context.Context, projectID string) ([]*model.Dashboard, error) {
	var list []*model.Dashboard
	if err := d.db.WithContext(ctx).Where("project_id = ?", projectID).Find(&list).Error; err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return list, nil
}

// DeleteByProject removes every dashboard within a project.
func (d *dashboards) DeleteByProject(ctx context.Context, projectID string) error {
	if err := d.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&model.Dashboard{}).Error; err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// AttachChart places a chart on a dashboard.
func (d *dashboards) AttachChart(ctx context.Context, dashboardID, chartID string) error {
	link := &model.DashboardChart{DashboardID: dashboardID, ChartID: chartID}
	if err := d.db.WithContext(ctx).Create(link).Error; err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.ErrAlreadyExists.WithMessage("chart already on dashboard")
		}
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// DetachChart removes a chart from a dashboard.
func (d *dashboards) DetachChart(ctx context.Context, dashboardID, chartID string) error {
	err := d.db.WithContext(ctx).
		Where("dashboard_id = ? AND chart_id = ?", dashboardID, chartID).
		Delete(&model.DashboardChart{}).Error
	if err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// ListChartIDs lists the ids of the charts placed on a dashboard.
func (d *dashboards) ListChartIDs(ctx context.Context, dashboardID string) ([]string, error) {
	var ids []string
	err := d.db.WithContext(ctx).
		Model(&model.DashboardChart{}).
		Where("dashboard_id = ?", dashboardID).
		Pluck("chart_id", &ids).Error
	if err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return ids, nil
}

// DeleteChartLinks removes every chart placement of a dashboard.
func (d *dashboards) DeleteChartLinks(ctx context.Context, dashboardID string) error {
	err := d.db.WithContext(ctx).
		Where("dashboard_id = ?", dashboardID).
		Delete(&model.DashboardChart{}).Error
	if err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// DeleteLinksByChart removes a chart from every dashboard it sits on.
func (d *dashboards) DeleteLinksByChart(ctx context.Context, chartID string) error {
	err := d.db.WithContext(ctx).
		Where("chart_id = ?", chartID).
		Delete(&model.DashboardChart{}).Error
	if err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}
