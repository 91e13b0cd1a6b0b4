// Package perm defines the immutable permission catalog.
//
// The catalog is a fixed enumeration of every action the platform can
// authorize. Each kind maps to a stable UUID that is seeded into the
// permissions table at migration time; roles reference these ids in their
// grant sets. The catalog never changes at runtime.
package perm

import (
	"github.com/kart-io/insight/pkg/errors"
)

// Kind identifies a single permission in the catalog.
type Kind string

// All permission kinds.
const (
	ViewChart        Kind = "VIEW_CHART"
	CreateChart      Kind = "CREATE_CHART"
	DeleteChart      Kind = "DELETE_CHART"
	ViewDashboard    Kind = "VIEW_DASHBOARD"
	CreateDashboard  Kind = "CREATE_DASHBOARD"
	EditDashboard    Kind = "EDIT_DASHBOARD"
	DeleteDashboard  Kind = "DELETE_DASHBOARD"
	ShareDashboard   Kind = "ADD_USER_DASHBOARD"
	CreateProject    Kind = "CREATE_PROJECT"
	EditProject      Kind = "EDIT_PROJECT"
	DeleteProject    Kind = "DELETE_PROJECT"
	CreateRole       Kind = "CREATE_ROLE"
	EditRole         Kind = "EDIT_ROLE"
	DeleteRole       Kind = "DELETE_ROLE"
	CreateUser       Kind = "CREATE_USER"
	EditUser         Kind = "EDIT_USER"
	DeleteUser       Kind = "DELETE_USER"
	AddDatasource    Kind = "ADD_DATASOURCE"
	ViewDatasource   Kind = "VIEW_DATASOURCE"
	EditDatasource   Kind = "EDIT_DATASOURCE"
	DeleteDatasource Kind = "DELETE_DATASOURCE"
)

// ids maps each kind to its stable catalog UUID. These identifiers are
// persisted in every deployment and must never be regenerated.
var ids = map[Kind]string{
	ViewChart:        "6e073b1d-f56c-4a6e-8a9d-2cb37a4702a2",
	CreateChart:      "6e073b1d-f56c-4a6e-8a9d-2cb37a4702a3",
	CreateRole:       "6e073b1d-f56c-4a6e-8a9d-2cb37a4702a4",
	CreateUser:       "6e073b1d-f56c-4a6e-8a9d-2cb37a4702a5",
	ViewDashboard:    "6e073b1d-f56c-4a6e-8a9d-2cb37a4702a6",
	CreateDashboard:  "6e073b1d-f56c-4a6e-8a9d-2cb37a4702a7",
	DeleteChart:      "6e073b1d-f56c-4a6e-8a9d-2cb37a4702a9",
	DeleteDashboard:  "6e073b1d-f56c-4a6e-8a9d-2cb37a4702b4",
	CreateProject:    "8e1c6f1e-7c99-4f28-bd2e-c7b79d6122c1",
	AddDatasource:    "f11a63e3-fc6e-4d36-aeae-943d118c3e27",
	ViewDatasource:   "6e073b1d-f56c-4a6e-8a9d-2cb37a470393",
	ShareDashboard:   "f89c88c2-64a1-4c73-9a71-72cf02e6f2f0",
	EditProject:      "6e073b1d-f56c-4a6e-8a9d-2cb37a4703a8",
	DeleteProject:    "f89c88c2-64a1-4c73-9a71-72cf02e6f2f1",
	EditDashboard:    "0a4d0f7e-3ae5-4c13-9cc4-dc7e487cdb48",
	EditRole:         "0a4d0f7e-3ae5-4c13-9cc4-dc7e487cdb49",
	DeleteRole:       "3f62d2c3-58ff-402f-bf1a-b199a43f607e",
	EditUser:         "0a4d0f7e-3ae5-4c13-9cc4-dc7e487cdb50",
	DeleteUser:       "0a4d0f7e-3ae5-4c13-9cc4-dc7e487cdb51",
	EditDatasource:   "0a4d0f7e-3ae5-4c13-9cc4-dc7e487cdb52",
	DeleteDatasource: "0a4d0f7e-3ae5-4c13-9cc4-dc7e487cdb53",
}

// kindsByID is the reverse index of ids.
var kindsByID = func() map[string]Kind {
	m := make(map[string]Kind, len(ids))
	for k, id := range ids {
		m[id] = k
	}
	return m
}()

// String returns the kind as a string.
func (k Kind) String() string {
	return string(k)
}

// ProjectIndependent reports whether the kind is evaluated across all of
// a user's memberships rather than against a single target project.
// Creating or deleting a project is not an action inside any one project.
func (k Kind) ProjectIndependent() bool {
	return k == CreateProject || k == DeleteProject
}

// ID returns the stable catalog UUID for the kind.
func (k Kind) ID() (string, error) {
	id, ok := ids[k]
	if !ok {
		return "", errors.ErrUnknownPermission.WithMessagef("unknown permission kind %q", k)
	}
	return id, nil
}

// Lookup resolves a catalog UUID back to its kind.
func Lookup(id string) (Kind, error) {
	k, ok := kindsByID[id]
	if !ok {
		return "", errors.ErrUnknownPermission.WithMessagef("unknown permission id %q", id)
	}
	return k, nil
}

// IsValidID reports whether the id belongs to the catalog.
func IsValidID(id string) bool {
	_, ok := kindsByID[id]
	return ok
}

// All returns every kind in the catalog.
func All() []Kind {
	kinds := make([]Kind, 0, len(ids))
	for k := range ids {
		kinds = append(kinds, k)
	}
	return kinds
}
