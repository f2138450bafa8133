package storage

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/stubkit/stubd/internal/matching"
	"github.com/stubkit/stubd/pkg/stub"
)

// Repository is the copy-on-write implementation of LifecycleStore.
type Repository struct {
	mu       sync.Mutex
	snapshot atomic.Pointer[[]*stub.Lifecycle]

	onChange func(count int)
}

var _ LifecycleStore = (*Repository)(nil)

// NewRepository creates a repository holding catalog. The slice is copied.
func NewRepository(catalog []*stub.Lifecycle) *Repository {
	r := &Repository{}
	r.publish(clone(catalog))
	return r
}

// OnChange registers fn to be called with the new size after every write.
// It is called with the write lock held and must not call back into the
// repository's mutating methods.
func (r *Repository) OnChange(fn func(count int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChange = fn
	if fn != nil {
		fn(len(r.load()))
	}
}

func (r *Repository) load() []*stub.Lifecycle {
	if p := r.snapshot.Load(); p != nil {
		return *p
	}
	return nil
}

func (r *Repository) publish(catalog []*stub.Lifecycle) {
	r.snapshot.Store(&catalog)
	if r.onChange != nil {
		r.onChange(len(catalog))
	}
}

func clone(catalog []*stub.Lifecycle) []*stub.Lifecycle {
	out := make([]*stub.Lifecycle, 0, len(catalog))
	for _, lc := range catalog {
		if lc != nil {
			out = append(out, lc)
		}
	}
	return out
}

// FindStubResponseFor resolves req against the current snapshot.
func (r *Repository) FindStubResponseFor(req *stub.Request) stub.Outcome {
	catalog := r.load()
	res := matching.FindBestMatch(catalog, req)
	switch res.Verdict {
	case matching.Match:
		lc := catalog[res.Index]
		return stub.Matched{Index: res.Index, ID: lc.ID, Response: lc.Advance()}
	case matching.AuthorizationRequired:
		return stub.Unauthorized{Index: res.Index, ID: catalog[res.Index].ID}
	default:
		return stub.NotFound{}
	}
}

// All returns the current snapshot.
func (r *Repository) All() []*stub.Lifecycle {
	return r.load()
}

// Get returns the lifecycle at index.
func (r *Repository) Get(index int) (*stub.Lifecycle, bool) {
	catalog := r.load()
	if index < 0 || index >= len(catalog) {
		return nil, false
	}
	return catalog[index], true
}

// Count returns the number of lifecycles.
func (r *Repository) Count() int {
	return len(r.load())
}

// ExistsByIndex reports whether index addresses a lifecycle.
func (r *Repository) ExistsByIndex(index int) bool {
	_, ok := r.Get(index)
	return ok
}

// IndexOf resolves a lifecycle id to its current index.
func (r *Repository) IndexOf(id string) (int, bool) {
	i := indexOf(r.load(), id)
	return i, i >= 0
}

// ReplaceAll swaps the whole catalog. In-flight matches finish against the
// snapshot they loaded. A catalog with duplicate ids is rejected.
func (r *Repository) ReplaceAll(catalog []*stub.Lifecycle) error {
	next := clone(catalog)
	if err := checkUnique(nil, next); err != nil {
		return fmt.Errorf("replace catalog: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.publish(next)
	return nil
}

// Append adds lifecycles to the end of the catalog and returns the index of
// the first one added. Ids already in the catalog are rejected.
func (r *Repository) Append(lifecycles ...*stub.Lifecycle) (int, error) {
	added := clone(lifecycles)
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.load()
	if err := checkUnique(current, added); err != nil {
		return -1, fmt.Errorf("append: %w", err)
	}
	next := make([]*stub.Lifecycle, 0, len(current)+len(added))
	next = append(next, current...)
	next = append(next, added...)
	r.publish(next)
	return len(current), nil
}

// checkUnique reports the first id in added that is already used in current
// or earlier in added.
func checkUnique(current, added []*stub.Lifecycle) error {
	seen := make(map[string]struct{}, len(current)+len(added))
	for _, lc := range current {
		seen[lc.ID] = struct{}{}
	}
	for _, lc := range added {
		if _, dup := seen[lc.ID]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateID, lc.ID)
		}
		seen[lc.ID] = struct{}{}
	}
	return nil
}

// UpdateByIndex replaces the entry at index. Other entries keep their hit
// counters and cursors. A replacement without a declared id takes over the
// id of the entry it replaces; a declared id must not belong to another entry.
func (r *Repository) UpdateByIndex(index int, lc *stub.Lifecycle) (string, error) {
	if lc == nil {
		return "", fmt.Errorf("update index %d: nil lifecycle", index)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.load()
	if index < 0 || index >= len(current) {
		return "", fmt.Errorf("update index %d: %w", index, ErrNotFound)
	}
	if lc.GeneratedID() {
		lc.ID = current[index].ID
	} else if other := indexOf(current, lc.ID); other >= 0 && other != index {
		return "", fmt.Errorf("update index %d: %w: %q is index %d", index, ErrDuplicateID, lc.ID, other)
	}
	next := make([]*stub.Lifecycle, len(current))
	copy(next, current)
	next[index] = lc
	r.publish(next)
	return Locator(index), nil
}

// DeleteByIndex removes the entry at index and returns it.
func (r *Repository) DeleteByIndex(index int) (*stub.Lifecycle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.load()
	if index < 0 || index >= len(current) {
		return nil, fmt.Errorf("delete index %d: %w", index, ErrNotFound)
	}
	removed := current[index]
	next := make([]*stub.Lifecycle, 0, len(current)-1)
	next = append(next, current[:index]...)
	next = append(next, current[index+1:]...)
	r.publish(next)
	return removed, nil
}

// UpdateByID replaces the entry whose id is id and returns its index.
// The replacement keeps the id of the entry it replaces.
func (r *Repository) UpdateByID(id string, lc *stub.Lifecycle) (int, error) {
	if lc == nil {
		return -1, fmt.Errorf("update id %s: nil lifecycle", id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.load()
	index := indexOf(current, id)
	if index < 0 {
		return -1, fmt.Errorf("update id %s: %w", id, ErrNotFound)
	}
	lc.ID = id
	next := make([]*stub.Lifecycle, len(current))
	copy(next, current)
	next[index] = lc
	r.publish(next)
	return index, nil
}

// DeleteByID removes the entry whose id is id.
func (r *Repository) DeleteByID(id string) (int, *stub.Lifecycle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.load()
	index := indexOf(current, id)
	if index < 0 {
		return -1, nil, fmt.Errorf("delete id %s: %w", id, ErrNotFound)
	}
	removed := current[index]
	next := make([]*stub.Lifecycle, 0, len(current)-1)
	next = append(next, current[:index]...)
	next = append(next, current[index+1:]...)
	r.publish(next)
	return index, removed, nil
}

func indexOf(catalog []*stub.Lifecycle, id string) int {
	for i, lc := range catalog {
		if lc.ID == id {
			return i
		}
	}
	return -1
}

// Unused returns lifecycles with zero hits, in catalog order.
func (r *Repository) Unused() []Indexed {
	var out []Indexed
	for i, lc := range r.load() {
		if lc.Hits() == 0 {
			out = append(out, Indexed{Index: i, Lifecycle: lc})
		}
	}
	return out
}
