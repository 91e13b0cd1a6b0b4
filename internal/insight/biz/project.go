package biz

import (
	"context"

	"github.com/kart-io/insight/internal/insight/store"
	"github.com/kart-io/insight/internal/model"
)

// ProjectService handles project lifecycle and visibility.
type ProjectService struct {
	ds store.Factory
}

// NewProjectService creates a new ProjectService.
func NewProjectService(ds store.Factory) *ProjectService {
	return &ProjectService{ds: ds}
}

// Create creates a project and enrolls the creator as its owner,
// holding the built-in ALL role. Both writes commit together.
func (s *ProjectService) Create(ctx context.Context, project *model.Project, creatorID string) error {
	all, err := s.ds.Roles().GetGlobalByName(ctx, store.SuperRoleName)
	if err != nil {
		return err
	}

	project.SuperUserID = creatorID
	return s.ds.TX(ctx, func(tx store.Factory) error {
		if err := tx.Projects().Create(ctx, project); err != nil {
			return err
		}
		return tx.Memberships().Create(ctx, &model.Membership{
			UserID:    creatorID,
			ProjectID: project.ID,
			RoleID:    all.ID,
			IsOwner:   true,
		})
	})
}

// Get retrieves a project by id.
func (s *ProjectService) Get(ctx context.Context, id string) (*model.Project, error) {
	return s.ds.Projects().Get(ctx, id)
}

// Update updates a project's name and description.
func (s *ProjectService) Update(ctx context.Context, project *model.Project) error {
	current, err := s.ds.Projects().Get(ctx, project.ID)
	if err != nil {
		return err
	}
	project.SuperUserID = current.SuperUserID
	return s.ds.Projects().Update(ctx, project)
}

// Delete removes a project and every record scoped to it: memberships,
// project roles with their grants and table bans, dashboards and charts
// with their per-user grants, datasource connections and API keys.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	if _, err := s.ds.Projects().Get(ctx, id); err != nil {
		return err
	}

	return s.ds.TX(ctx, func(tx store.Factory) error {
		if err := tx.Memberships().DeleteByProject(ctx, id); err != nil {
			return err
		}

		roles, err := tx.Roles().ListVisible(ctx, id)
		if err != nil {
			return err
		}
		for _, role := range roles {
			if role.IsGlobal {
				continue
			}
			if err := tx.Roles().DeleteGrants(ctx, role.ID); err != nil {
				return err
			}
			if err := tx.Connections().DeleteTableBansByRole(ctx, role.ID); err != nil {
				return err
			}
		}
		if err := tx.Roles().DeleteByProject(ctx, id); err != nil {
			return err
		}

		boards, err := tx.Dashboards().ListByProject(ctx, id)
		if err != nil {
			return err
		}
		for _, d := range boards {
			if err := tx.Dashboards().DeleteChartLinks(ctx, d.ID); err != nil {
				return err
			}
			if err := tx.Shares().DeleteByDashboard(ctx, d.ID); err != nil {
				return err
			}
		}
		if err := tx.Dashboards().DeleteByProject(ctx, id); err != nil {
			return err
		}

		charts, err := tx.Charts().ListByProject(ctx, id)
		if err != nil {
			return err
		}
		for _, c := range charts {
			if err := tx.Shares().DeleteByChart(ctx, c.ID); err != nil {
				return err
			}
		}
		if err := tx.Charts().DeleteByProject(ctx, id); err != nil {
			return err
		}

		if err := tx.Connections().DeleteByProject(ctx, id); err != nil {
			return err
		}
		if err := tx.Users().DeleteAPIKeysByProject(ctx, id); err != nil {
			return err
		}
		return tx.Projects().Delete(ctx, id)
	})
}

// List lists all projects with pagination.
func (s *ProjectService) List(ctx context.Context, offset, limit int) (int64, []*model.Project, error) {
	return s.ds.Projects().List(ctx, offset, limit)
}

// ListVisible lists the projects a user belongs to. Super users see
// everything.
func (s *ProjectService) ListVisible(ctx context.Context, userID string) ([]*model.Project, error) {
	user, err := s.ds.Users().Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsSuper {
		_, list, err := s.ds.Projects().List(ctx, 0, -1)
		return list, err
	}

	memberships, err := s.ds.Memberships().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.ProjectID)
	}
	return s.ds.Projects().ListByIDs(ctx, ids)
}
