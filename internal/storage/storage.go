// Package storage defines the Storage interface the local stub backend
// keeps records in.
//
// Handlers depend only on this interface, so tests can hand them any
// implementation.
package storage

import (
	"errors"

	"github.com/aanand-mishra/school-admin/internal/types"
)

// ErrNotFound is returned when no record of the kind has the id.
var ErrNotFound = errors.New("record not found")

// Storage is the database contract. Records are grouped by kind and keyed
// by opaque string ids the implementation assigns.
type Storage interface {
	// Create inserts r (its ID is ignored) and returns it with the
	// generated ID.
	Create(kind types.Kind, r types.Record) (types.Record, error)

	// GetByID fetches a single record. Returns ErrNotFound if absent.
	GetByID(kind types.Kind, id string) (types.Record, error)

	// List returns every record of the kind.
	// Returns an empty slice (not nil) if there are none.
	List(kind types.Kind) ([]types.Record, error)

	// Update replaces the fields of an existing record and returns it.
	// Returns ErrNotFound if absent.
	Update(kind types.Kind, id string, r types.Record) (types.Record, error)

	// Delete removes a record permanently. Returns ErrNotFound if absent.
	Delete(kind types.Kind, id string) error
}
