package store

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"github.com/kart-io/insight/internal/model"
	"github.com/kart-io/insight/pkg/errors"
)

type connections struct {
	db *gorm.DB
}

func newConnections(db *gorm.DB) *connections {
	return &connections{db}
}

// Create registers a new datasource connection.
func (c *connections) Create(ctx context.Context, row *model.Connection) error {
	if err := c.db.WithContext(ctx).Create(row).Error; err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// Update updates an existing connection.
func (c *connections) Update(ctx context.Context, row *model.Connection) error {
	if err := c.db.WithContext(ctx).Save(row).Error; err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// Delete deletes a connection by id.
func (c *connections) Delete(ctx context.Context, id string) error {
	if err := c.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Connection{}).Error; err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// Get retrieves a connection by id.
func (c *connections) Get(ctx context.Context, id string) (*model.Connection, error) {
	var row model.Connection
	if err := c.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrConnectionNotFound
		}
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return &row, nil
}

// ListByProject lists every connection within a project.
func (c *connections) ListByProject(ctx context.Context, projectID string) ([]*model.Connection, error) {
	var list []*model.Connection
	if err := c.db.WithContext(ctx).Where("project_id = ?", projectID).Find(&list).Error; err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return list, nil
}

// DeleteByProject removes every connection within a project.
func (c *connections) DeleteByProject(ctx context.Context, projectID string) error {
	if err := c.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&model.Connection{}).Error; err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// ReplaceTables swaps the probed table list of a connection.
func (c *connections) ReplaceTables(ctx context.Context, connectionID string, tables []*model.ConnectionTable) error {
	err := c.db.WithContext(ctx).
		Where("connection_id = ?", connectionID).
		Delete(&model.ConnectionTable{}).Error
	if err != nil {
		return errors.ErrDatabase.WithCause(err)
	}

	if len(tables) == 0 {
		return nil
	}
	if err := c.db.WithContext(ctx).Create(tables).Error; err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// ListTables lists the probed tables of a connection.
func (c *connections) ListTables(ctx context.Context, connectionID string) ([]*model.ConnectionTable, error) {
	var list []*model.ConnectionTable
	err := c.db.WithContext(ctx).
		Where("connection_id = ?", connectionID).
		Order("name").
		Find(&list).Error
	if err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return list, nil
}

// ReplaceTableBans swaps the banned table list of a role on a connection.
func (c *connections) ReplaceTableBans(ctx context.Context, roleID, connectionID string, tableNames []string) error {
	err := c.db.WithContext(ctx).
		Where("role_id = ? AND connection_id = ?", roleID, connectionID).
		Delete(&model.RoleTableBan{}).Error
	if err != nil {
		return errors.ErrDatabase.WithCause(err)
	}

	if len(tableNames) == 0 {
		return nil
	}

	rows := make([]*model.RoleTableBan, 0, len(tableNames))
	for _, name := range tableNames {
		rows = append(rows, &model.RoleTableBan{
			RoleID:       roleID,
			ConnectionID: connectionID,
			Table:        name,
		})
	}
	if err := c.db.WithContext(ctx).Create(rows).Error; err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// ListTableBans lists the table names a role is banned from on a connection.
func (c *connections) ListTableBans(ctx context.Context, roleID, connectionID string) ([]string, error) {
	var names []string
	err := c.db.WithContext(ctx).
		Model(&model.RoleTableBan{}).
		Where("role_id = ? AND connection_id = ?", roleID, connectionID).
		Pluck("table_name", &names).Error
	if err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return names, nil
}

// DeleteTableBansByRole removes every table ban held by a role.
func (c *connections) DeleteTableBansByRole(ctx context.Context, roleID string) error {
	if err := c.db.WithContext(ctx).Where("role_id = ?", roleID).Delete(&model.RoleTableBan{}).Error; err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// AddRelated records that two connections expose related data.
func (c *connections) AddRelated(ctx context.Context, connectionID, relatedID string) error {
	row := &model.RelatedConnection{ConnectionID: connectionID, RelatedID: relatedID}
	if err := c.db.WithContext(ctx).Create(row).Error; err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.ErrAlreadyExists.WithMessage("connections already related")
		}
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// DeleteRelated removes every relation a connection participates in.
func (c *connections) DeleteRelated(ctx context.Context, connectionID string) error {
	err := c.db.WithContext(ctx).
		Where("connection_id = ? OR related_id = ?", connectionID, connectionID).
		Delete(&model.RelatedConnection{}).Error
	if err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// ListRelated lists the ids of the connections related to one connection.
func (c *connections) ListRelated(ctx context.Context, connectionID string) ([]string, error) {
	var ids []string
	err := c.db.WithContext(ctx).
		Model(&model.RelatedConnection{}).
		Where("connection_id = ?", connectionID).
		Pluck("related_id", &ids).Error
	if err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return ids, nil
}
