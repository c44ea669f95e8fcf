package object

import "sync"

// Arena is the realm's registry of every object record it has
// allocated. It stamps each record with a monotonically increasing id
// - the opaque identity that shows up in logs and debug output. The
// arena holds records by reference; it is a registry, not an owner,
// so sharing a record across chains costs nothing.
type Arena struct {
	mu      sync.Mutex
	records []*PlainObject
	nextID  uint64
}

// NewArena creates an arena with the specified initial capacity.
func NewArena(initialCapacity int) *Arena {
	return &Arena{records: make([]*PlainObject, 0, initialCapacity)}
}

// Register stamps o with the next id and records it. Returns the id.
func (a *Arena) Register(o *PlainObject) uint64 {
	a.mu.Lock()
	a.nextID++
	o.id = a.nextID
	a.records = append(a.records, o)
	a.mu.Unlock()
	return o.id
}

// Get retrieves a record by id. Ids start at 1.
func (a *Arena) Get(id uint64) (*PlainObject, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if id == 0 || id > uint64(len(a.records)) {
		return nil, false
	}
	return a.records[id-1], true
}

// Size returns the number of records allocated so far.
func (a *Arena) Size() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.records)
}

// Records returns a copy of all registered records (for debugging).
func (a *Arena) Records() []*PlainObject {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*PlainObject, len(a.records))
	copy(out, a.records)
	return out
}
