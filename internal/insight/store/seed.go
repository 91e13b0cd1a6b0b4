package store

import (
	"context"
	stderrors "errors"

	"github.com/kart-io/insight/internal/model"
	"github.com/kart-io/insight/internal/perm"
	"github.com/kart-io/insight/pkg/errors"
)

// SuperRoleName is the name of the built-in global role that carries
// every catalog permission. Project creators receive it as owners.
const SuperRoleName = "ALL"

// Seed loads the permission catalog and the built-in ALL role. It runs
// on every startup and is idempotent.
func Seed(ctx context.Context, f Factory) error {
	kinds := perm.All()
	rows := make([]*model.Permission, 0, len(kinds))
	for _, k := range kinds {
		id, err := k.ID()
		if err != nil {
			return err
		}
		rows = append(rows, &model.Permission{ID: id, Type: k.String()})
	}

	return f.TX(ctx, func(tx Factory) error {
		if err := tx.Permissions().Seed(ctx, rows); err != nil {
			return err
		}

		_, err := tx.Roles().GetGlobalByName(ctx, SuperRoleName)
		if err == nil {
			return nil
		}
		if !stderrors.Is(err, errors.ErrRoleNotFound) {
			return err
		}

		role := model.NewGlobalRole(SuperRoleName, "grants every permission")
		if err := tx.Roles().Create(ctx, role); err != nil {
			return err
		}

		ids := make([]string, 0, len(rows))
		for _, p := range rows {
			ids = append(ids, p.ID)
		}
		return tx.Roles().AddGrants(ctx, role.ID, ids)
	})
}
