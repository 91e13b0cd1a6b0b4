package biz

import (
	"context"

	"github.com/kart-io/insight/internal/insight/store"
	"github.com/kart-io/insight/internal/model"
	"github.com/kart-io/insight/pkg/datasource"
	"github.com/kart-io/insight/pkg/errors"
	"github.com/kart-io/insight/pkg/utils/json"
)

// ConnectionService manages datasource connections, their probed
// schema and per-role table bans.
type ConnectionService struct {
	ds     store.Factory
	prober datasource.Prober
}

// NewConnectionService creates a new ConnectionService.
func NewConnectionService(ds store.Factory, prober datasource.Prober) *ConnectionService {
	return &ConnectionService{ds: ds, prober: prober}
}

func probeConfig(c *model.Connection) datasource.Config {
	return datasource.Config{
		Driver:   c.Driver,
		Host:     c.Host,
		Port:     c.Port,
		Username: c.Username,
		Password: c.Password,
		Database: c.Database,
	}
}

// Create registers a connection. The source must be reachable; its
// schema is probed and stored in the same transaction as the row.
func (s *ConnectionService) Create(ctx context.Context, c *model.Connection) error {
	if _, err := s.ds.Projects().Get(ctx, c.ProjectID); err != nil {
		return err
	}
	if err := s.prober.Ping(ctx, probeConfig(c)); err != nil {
		return err
	}

	tables, err := s.prober.Probe(ctx, probeConfig(c))
	if err != nil {
		return err
	}

	return s.ds.TX(ctx, func(tx store.Factory) error {
		if err := tx.Connections().Create(ctx, c); err != nil {
			return err
		}
		rows, err := tableRows(c.ID, tables)
		if err != nil {
			return err
		}
		return tx.Connections().ReplaceTables(ctx, c.ID, rows)
	})
}

func tableRows(connectionID string, tables []datasource.Table) ([]*model.ConnectionTable, error) {
	rows := make([]*model.ConnectionTable, 0, len(tables))
	for _, t := range tables {
		cols, err := json.Marshal(t.Columns)
		if err != nil {
			return nil, errors.ErrInternal.WithCause(err)
		}
		rows = append(rows, &model.ConnectionTable{
			ConnectionID: connectionID,
			Name:         t.Name,
			Columns:      string(cols),
		})
	}
	return rows, nil
}

// Get retrieves a connection by id.
func (s *ConnectionService) Get(ctx context.Context, id string) (*model.Connection, error) {
	return s.ds.Connections().Get(ctx, id)
}

// Update updates a connection's settings and re-probes the schema.
func (s *ConnectionService) Update(ctx context.Context, c *model.Connection) error {
	current, err := s.ds.Connections().Get(ctx, c.ID)
	if err != nil {
		return err
	}
	c.ProjectID = current.ProjectID
	if c.Password == "" {
		c.Password = current.Password
	}

	if err := s.prober.Ping(ctx, probeConfig(c)); err != nil {
		return err
	}
	tables, err := s.prober.Probe(ctx, probeConfig(c))
	if err != nil {
		return err
	}

	return s.ds.TX(ctx, func(tx store.Factory) error {
		if err := tx.Connections().Update(ctx, c); err != nil {
			return err
		}
		rows, err := tableRows(c.ID, tables)
		if err != nil {
			return err
		}
		return tx.Connections().ReplaceTables(ctx, c.ID, rows)
	})
}

// Refresh re-probes the schema of an existing connection.
func (s *ConnectionService) Refresh(ctx context.Context, id string) ([]*model.ConnectionTable, error) {
	c, err := s.ds.Connections().Get(ctx, id)
	if err != nil {
		return nil, err
	}

	tables, err := s.prober.Probe(ctx, probeConfig(c))
	if err != nil {
		return nil, err
	}
	rows, err := tableRows(c.ID, tables)
	if err != nil {
		return nil, err
	}
	if err := s.ds.Connections().ReplaceTables(ctx, c.ID, rows); err != nil {
		return nil, err
	}
	return s.ds.Connections().ListTables(ctx, id)
}

// Delete removes a connection with its probed tables and relations.
func (s *ConnectionService) Delete(ctx context.Context, id string) error {
	if _, err := s.ds.Connections().Get(ctx, id); err != nil {
		return err
	}

	return s.ds.TX(ctx, func(tx store.Factory) error {
		if err := tx.Connections().ReplaceTables(ctx, id, nil); err != nil {
			return err
		}
		if err := tx.Connections().DeleteRelated(ctx, id); err != nil {
			return err
		}
		return tx.Connections().Delete(ctx, id)
	})
}

// ListByProject lists the connections of a project.
func (s *ConnectionService) ListByProject(ctx context.Context, projectID string) ([]*model.Connection, error) {
	return s.ds.Connections().ListByProject(ctx, projectID)
}

// ListTables lists the probed tables of a connection.
func (s *ConnectionService) ListTables(ctx context.Context, connectionID string) ([]*model.ConnectionTable, error) {
	if _, err := s.ds.Connections().Get(ctx, connectionID); err != nil {
		return nil, err
	}
	return s.ds.Connections().ListTables(ctx, connectionID)
}

// SetTableBans replaces the tables a role may not see on a connection.
// Every name must refer to a probed table.
func (s *ConnectionService) SetTableBans(ctx context.Context, roleID, connectionID string, tableNames []string) error {
	if _, err := s.ds.Roles().Get(ctx, roleID); err != nil {
		return err
	}
	tables, err := s.ds.Connections().ListTables(ctx, connectionID)
	if err != nil {
		return err
	}
	if _, err := s.ds.Connections().Get(ctx, connectionID); err != nil {
		return err
	}

	known := make(map[string]bool, len(tables))
	for _, t := range tables {
		known[t.Name] = true
	}
	for _, name := range tableNames {
		if !known[name] {
			return errors.ErrInvalidParam.WithMessagef("unknown table: %s", name)
		}
	}
	return s.ds.Connections().ReplaceTableBans(ctx, roleID, connectionID, tableNames)
}

// ListTableBans lists the tables a role may not see on a connection.
func (s *ConnectionService) ListTableBans(ctx context.Context, roleID, connectionID string) ([]string, error) {
	return s.ds.Connections().ListTableBans(ctx, roleID, connectionID)
}

// VisibleTables lists the probed tables minus the ones banned for the
// user's role. Super users see every table.
func (s *ConnectionService) VisibleTables(ctx context.Context, userID, connectionID string) ([]*model.ConnectionTable, error) {
	c, err := s.ds.Connections().Get(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	tables, err := s.ds.Connections().ListTables(ctx, connectionID)
	if err != nil {
		return nil, err
	}

	user, err := s.ds.Users().Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsSuper {
		return tables, nil
	}

	membership, err := s.ds.Memberships().Get(ctx, userID, c.ProjectID)
	if err != nil {
		if errors.IsCode(err, errors.ErrMembershipNotFound.Code) {
			return nil, errors.ErrNoProjectAccess
		}
		return nil, err
	}

	banned, err := s.ds.Connections().ListTableBans(ctx, membership.RoleID, connectionID)
	if err != nil {
		return nil, err
	}
	bans := make(map[string]bool, len(banned))
	for _, name := range banned {
		bans[name] = true
	}

	visible := make([]*model.ConnectionTable, 0, len(tables))
	for _, t := range tables {
		if !bans[t.Name] {
			visible = append(visible, t)
		}
	}
	return visible, nil
}

// Relate records that two connections expose related data.
func (s *ConnectionService) Relate(ctx context.Context, connectionID, relatedID string) error {
	if _, err := s.ds.Connections().Get(ctx, connectionID); err != nil {
		return err
	}
	if _, err := s.ds.Connections().Get(ctx, relatedID); err != nil {
		return err
	}
	if connectionID == relatedID {
		return errors.ErrInvalidParam.WithMessage("connection cannot relate to itself")
	}
	return s.ds.Connections().AddRelated(ctx, connectionID, relatedID)
}

// ListRelated lists the connections related to one connection.
func (s *ConnectionService) ListRelated(ctx context.Context, connectionID string) ([]*model.Connection, error) {
	ids, err := s.ds.Connections().ListRelated(ctx, connectionID)
	if err != nil {
		return nil, err
	}

	list := make([]*model.Connection, 0, len(ids))
	for _, id := range ids {
		c, err := s.ds.Connections().Get(ctx, id)
		if err != nil {
			continue
		}
		list = append(list, c)
	}
	return list, nil
}
