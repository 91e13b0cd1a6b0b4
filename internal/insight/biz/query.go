package biz

import (
	"context"

	"github.com/kart-io/insight/internal/insight/store"
	"github.com/kart-io/insight/pkg/errors"
	"github.com/kart-io/insight/pkg/querygen"
)

// AdminRoleName is the role name that unlocks query generation within
// a project.
const AdminRoleName = "admin"

// QueryService turns natural language questions into SQL against a
// registered connection. Only project admins and super users may call
// it; the schema sent to the generator excludes tables banned for the
// caller's role.
type QueryService struct {
	ds          store.Factory
	gen         querygen.Client
	connections *ConnectionService
}

// NewQueryService creates a new QueryService.
func NewQueryService(ds store.Factory, gen querygen.Client, connections *ConnectionService) *QueryService {
	return &QueryService{ds: ds, gen: gen, connections: connections}
}

// Generate answers the question with a SQL query for the connection.
func (s *QueryService) Generate(ctx context.Context, userID, connectionID, question string) (*querygen.Result, error) {
	if userID == "" {
		return nil, errors.ErrUnauthorized
	}

	conn, err := s.ds.Connections().Get(ctx, connectionID)
	if err != nil {
		return nil, err
	}

	user, err := s.ds.Users().Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsSuper {
		membership, err := s.ds.Memberships().Get(ctx, userID, conn.ProjectID)
		if err != nil {
			if errors.IsCode(err, errors.ErrMembershipNotFound.Code) {
				return nil, errors.ErrNoProjectAccess
			}
			return nil, err
		}
		role, err := s.ds.Roles().Get(ctx, membership.RoleID)
		if err != nil {
			return nil, err
		}
		if role.Name != AdminRoleName && role.Name != store.SuperRoleName {
			return nil, errors.ErrNotProjectAdmin
		}
	}

	visible, err := s.connections.VisibleTables(ctx, userID, connectionID)
	if err != nil {
		return nil, err
	}

	tables := make([]querygen.Table, 0, len(visible))
	for _, t := range visible {
		tables = append(tables, querygen.Table{Name: t.Name, Columns: t.Columns})
	}

	return s.gen.Generate(ctx, &querygen.Request{
		Question: question,
		Dialect:  conn.Driver,
		Tables:   tables,
	})
}
