package storage

import (
	"errors"
	"strconv"

	"github.com/stubkit/stubd/pkg/stub"
)

// ErrNotFound is returned when an index or id does not address a lifecycle.
var ErrNotFound = errors.New("stub lifecycle not found")

// ErrDuplicateID is returned when a write would give two lifecycles the same id.
var ErrDuplicateID = errors.New("duplicate stub lifecycle id")

// LifecycleStore defines the catalog operations used by the portal and admin
// handlers.
type LifecycleStore interface {
	// FindStubResponseFor resolves a request to an outcome. A Matched
	// outcome records a hit and advances the response cursor exactly once.
	FindStubResponseFor(req *stub.Request) stub.Outcome

	// All returns the current snapshot. Callers must not modify it.
	All() []*stub.Lifecycle

	// Get returns the lifecycle at index.
	Get(index int) (*stub.Lifecycle, bool)

	// Count returns the number of lifecycles.
	Count() int

	// ExistsByIndex reports whether index addresses a lifecycle.
	ExistsByIndex(index int) bool

	// IndexOf resolves a lifecycle id to its current index.
	IndexOf(id string) (int, bool)

	// ReplaceAll swaps the whole catalog. Ids must be unique.
	ReplaceAll(catalog []*stub.Lifecycle) error

	// Append adds lifecycles to the end and returns the index of the first.
	// Ids must not collide with each other or with the catalog.
	Append(lifecycles ...*stub.Lifecycle) (int, error)

	// UpdateByIndex replaces one entry and returns its locator. The entry's
	// id survives unless the replacement declares its own.
	UpdateByIndex(index int, lc *stub.Lifecycle) (string, error)

	// DeleteByIndex removes one entry, shifting later entries down.
	DeleteByIndex(index int) (*stub.Lifecycle, error)

	// UpdateByID replaces the entry with the given id, resolving its index
	// under the write lock.
	UpdateByID(id string, lc *stub.Lifecycle) (int, error)

	// DeleteByID removes the entry with the given id.
	DeleteByID(id string) (int, *stub.Lifecycle, error)

	// Unused returns lifecycles that have never been matched.
	Unused() []Indexed
}

// Indexed pairs a lifecycle with its position in a snapshot.
type Indexed struct {
	Index     int
	Lifecycle *stub.Lifecycle
}

// Locator returns the admin path addressing index.
func Locator(index int) string {
	return "/" + strconv.Itoa(index)
}
