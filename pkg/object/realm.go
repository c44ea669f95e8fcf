package object

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"protolith/pkg/errors"
)

// Config carries the knobs a realm is created with.
type Config struct {
	// Strict selects strict write semantics: writes through a
	// setter-less accessor or onto a non-writable property return
	// ReadOnlyError instead of being silently dropped.
	Strict bool

	// Logger receives trace events for every mutation. Nil means no
	// logging.
	Logger *zerolog.Logger

	// DisableLookupCache turns off the prototype-lookup cache for
	// this realm regardless of the package-level default.
	DisableLookupCache bool
}

// Realm is an isolated object-model instance. Each realm owns its
// object arena, its default prototype, and the lock that serializes
// mutations against chain traversal.
type Realm struct {
	id     int
	strict bool
	logger zerolog.Logger

	// mu implements the reader-writer discipline: traversals take the
	// read side, anything that changes descriptors or links takes the
	// write side. Accessor bodies always run outside the lock so they
	// can re-enter the realm.
	mu    sync.RWMutex
	arena *Arena
	cache *lookupCache

	// epoch is bumped by every mutation that can change what a
	// chain lookup resolves to; cached lookup paths are only valid
	// within one epoch.
	epoch atomic.Uint64

	// ObjectPrototype is the default prototype for objects created
	// without an explicit one.
	ObjectPrototype Value
}

var nextRealmID atomic.Int64

// NewRealm creates a fresh realm with its own default object
// prototype.
func NewRealm(cfg Config) *Realm {
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	r := &Realm{
		id:     int(nextRealmID.Add(1)),
		strict: cfg.Strict,
		arena:  NewArena(16),
	}
	r.logger = logger.With().Str("src", "object-model").Int("realm", r.id).Logger()
	if EnableLookupCache && !cfg.DisableLookupCache {
		r.cache = newLookupCache()
	}
	proto := newPlainObject(Null)
	r.arena.Register(proto)
	r.ObjectPrototype = NewValueFromPlainObject(proto)
	r.logger.Debug().Bool("strict", cfg.Strict).Msg("realm created")
	return r
}

// Strict reports whether the realm uses strict write semantics.
func (r *Realm) Strict() bool { return r.strict }

// Arena returns the realm's object arena.
func (r *Realm) Arena() *Arena { return r.arena }

// NewObject allocates an empty object with the given prototype. Pass
// Null (or Undefined) for a chain-terminal object. Never fails.
func (r *Realm) NewObject(proto Value) Value {
	r.mu.Lock()
	o := newPlainObject(proto)
	r.arena.Register(o)
	r.mu.Unlock()
	r.logger.Trace().Uint64("obj", o.id).Str("proto", proto.Inspect()).Msg("object created")
	return NewValueFromPlainObject(o)
}

// SetPrototypeOf reassigns obj's prototype link. Fails with CycleError
// when the new prototype's chain already contains obj; the link is
// unchanged on failure. Every cached lookup path in the realm is
// invalidated on success.
func (r *Realm) SetPrototypeOf(obj Value, proto Value) error {
	table := tableOf(obj)
	if table == nil {
		return errors.NewNotCallableError("cannot relink prototype of %s", obj.TypeName())
	}
	r.mu.Lock()
	err := table.SetPrototype(proto)
	if err == nil {
		r.epoch.Add(1)
	}
	r.mu.Unlock()
	if err != nil {
		r.logger.Trace().Uint64("obj", table.id).Err(err).Msg("prototype relink rejected")
		return err
	}
	r.logger.Trace().Uint64("obj", table.id).Str("proto", proto.Inspect()).Msg("prototype relinked")
	return nil
}

// PrototypeOf returns obj's current prototype link. Never fails; a
// non-object yields Null.
func (r *Realm) PrototypeOf(obj Value) Value {
	table := tableOf(obj)
	if table == nil {
		return Null
	}
	r.mu.RLock()
	proto := table.GetPrototype()
	r.mu.RUnlock()
	return proto
}

// DefineOwn installs or replaces a descriptor for name on obj only,
// never touching the prototype chain. desc.Accessor selects the kind.
func (r *Realm) DefineOwn(obj Value, name string, desc PropertyDescriptor) error {
	table := tableOf(obj)
	if table == nil {
		return errors.NewNotCallableError("cannot define property '%s' on %s", name, obj.TypeName())
	}
	w, e, c := desc.Writable, desc.Enumerable, desc.Configurable
	r.mu.Lock()
	var err error
	if desc.Accessor {
		err = table.DefineAccessorProperty(name, desc.Getter, true, desc.Setter, true, &e, &c)
	} else {
		err = table.DefineOwnProperty(name, desc.Value, &w, &e, &c)
	}
	if err == nil {
		r.epoch.Add(1)
	}
	r.mu.Unlock()
	if err != nil {
		return err
	}
	r.logger.Trace().Uint64("obj", table.id).Str("key", name).Bool("accessor", desc.Accessor).Msg("own property defined")
	return nil
}

// DeleteOwn removes the own descriptor for name if present and
// configurable; reports whether removal happened. Missing keys are a
// no-op returning false. Never traverses the chain.
func (r *Realm) DeleteOwn(obj Value, name string) bool {
	table := tableOf(obj)
	if table == nil {
		return false
	}
	r.mu.Lock()
	deleted := table.DeleteOwn(name)
	if deleted {
		r.epoch.Add(1)
	}
	r.mu.Unlock()
	if deleted {
		r.logger.Trace().Uint64("obj", table.id).Str("key", name).Msg("own property deleted")
	}
	return deleted
}

// HasOwn reports whether obj itself holds a descriptor for name.
func (r *Realm) HasOwn(obj Value, name string) bool {
	table := tableOf(obj)
	if table == nil {
		return false
	}
	r.mu.RLock()
	ok := table.HasOwn(name)
	r.mu.RUnlock()
	return ok
}

// OwnDescriptor reads back the descriptor for an own property.
func (r *Realm) OwnDescriptor(obj Value, name string) (PropertyDescriptor, bool) {
	table := tableOf(obj)
	if table == nil {
		return PropertyDescriptor{}, false
	}
	r.mu.RLock()
	desc, ok := table.OwnDescriptor(name)
	r.mu.RUnlock()
	return desc, ok
}

// OwnKeys returns obj's enumerable own property names in insertion
// order.
func (r *Realm) OwnKeys(obj Value) []string {
	table := tableOf(obj)
	if table == nil {
		return nil
	}
	r.mu.RLock()
	keys := table.OwnKeys()
	r.mu.RUnlock()
	return keys
}

// SetExtensible clears (one-way) the extensible flag of obj.
func (r *Realm) SetExtensible(obj Value, extensible bool) {
	table := tableOf(obj)
	if table == nil {
		return
	}
	r.mu.Lock()
	table.SetExtensible(extensible)
	r.mu.Unlock()
}

// IsExtensible reports whether new properties can be added to obj.
func (r *Realm) IsExtensible(obj Value) bool {
	table := tableOf(obj)
	if table == nil {
		return false
	}
	r.mu.RLock()
	ok := table.IsExtensible()
	r.mu.RUnlock()
	return ok
}
