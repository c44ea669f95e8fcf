package object

import (
	"fmt"

	"protolith/pkg/errors"
)

// The resolver implements the three access operations whose traversal
// rules differ per operation:
//
//   - Get walks the chain and stops at the first descriptor found by
//     key, whatever its kind. An accessor without a getter yields
//     Undefined; the walk never continues looking for a getter further
//     up. This is what lets a setter-only accessor on a descendant
//     shadow an ancestor's getter.
//   - Set walks the chain looking for an accessor to invoke; absent
//     one, the write always lands as an own value property on the
//     receiver. Ancestor storage is never mutated by Set.
//   - Delete never walks the chain at all.
//
// Accessor bodies run outside the realm lock so they can re-enter the
// resolver.

// Get resolves name starting at obj, walking the prototype chain.
// Missing properties resolve to Undefined, not an error.
func (r *Realm) Get(obj Value, name string) (Value, error) {
	return r.GetWith(obj, name, obj)
}

// GetWith resolves name starting at obj with an explicit receiver: a
// getter found on an ancestor is invoked with receiver bound as its
// implicit self, so inherited accessors read fields on the original
// receiver rather than on the ancestor that defined them.
func (r *Realm) GetWith(obj Value, name string, receiver Value) (Value, error) {
	if !obj.IsChainable() {
		return Undefined, fmt.Errorf("cannot read property '%s' of %s", name, obj.TypeName())
	}

	var (
		found    bool
		accessor bool
		result   Value
		getter   Value
	)

	r.mu.RLock()
	epoch := r.epoch.Load()
	start := tableOf(obj)
	owner := r.cachedOwner(start, name, epoch)
	if owner == nil {
		current := obj
		for current.IsChainable() {
			table := tableOf(current)
			if _, ok := table.lookupOwn(name); ok {
				owner = table
				break
			}
			current = table.prototype
		}
		if owner != nil && r.cache != nil {
			r.cache.store(start, name, owner, epoch)
		}
	}
	if owner != nil {
		f, ok := owner.lookupOwn(name)
		if ok {
			found = true
			if f.isAccessor {
				accessor = true
				getter, _ = owner.accessorPair(name)
			} else {
				result, _ = owner.GetOwn(name)
			}
		}
	}
	r.mu.RUnlock()

	if !found {
		return Undefined, nil
	}
	if accessor {
		if getter.IsUndefined() {
			// First match wins: no getter means Undefined, even if an
			// ancestor further up has one.
			return Undefined, nil
		}
		return r.Call(getter, receiver, nil)
	}
	return result, nil
}

// Set writes name on obj. See SetWith.
func (r *Realm) Set(obj Value, name string, value Value) error {
	return r.SetWith(obj, name, value, obj)
}

// SetWith walks obj's chain looking for an existing accessor for name.
// If one is found anywhere, its setter is invoked bound to receiver
// (no setter: dropped in sloppy mode, ReadOnlyError in strict mode).
// Otherwise the value lands as an own value property on receiver,
// regardless of any ancestor's own value descriptor for the same key.
func (r *Realm) SetWith(obj Value, name string, value Value, receiver Value) error {
	if !obj.IsChainable() {
		return fmt.Errorf("cannot set property '%s' on %s", name, obj.TypeName())
	}
	recvTable := tableOf(receiver)
	if recvTable == nil {
		return fmt.Errorf("cannot set property '%s' on receiver %s", name, receiver.TypeName())
	}

	var (
		accessor bool
		setter   Value
	)

	r.mu.RLock()
	current := obj
	for current.IsChainable() {
		table := tableOf(current)
		if f, ok := table.lookupOwn(name); ok {
			if f.isAccessor {
				accessor = true
				_, setter = table.accessorPair(name)
			}
			break
		}
		current = table.prototype
	}
	r.mu.RUnlock()

	if accessor {
		if setter.IsUndefined() {
			if r.strict {
				return errors.NewReadOnlyError(name, "inherited accessor has no setter")
			}
			return nil
		}
		_, err := r.Call(setter, receiver, []Value{value})
		return err
	}

	r.mu.Lock()
	wrote := recvTable.SetOwn(name, value)
	if wrote {
		r.epoch.Add(1)
	}
	r.mu.Unlock()
	if !wrote {
		if r.strict {
			return errors.NewReadOnlyError(name, "property is not writable")
		}
		return nil
	}
	r.logger.Trace().Uint64("obj", recvTable.id).Str("key", name).Msg("own value written")
	return nil
}

// Has reports whether obj or any ancestor holds a descriptor for name.
// A value descriptor holding Undefined still counts.
func (r *Realm) Has(obj Value, name string) bool {
	if !obj.IsChainable() {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	current := obj
	for current.IsChainable() {
		table := tableOf(current)
		if table.HasOwn(name) {
			return true
		}
		current = table.prototype
	}
	return false
}

// Delete removes an own descriptor from obj only; it never mutates an
// ancestor. Deleting a key that exists only on the chain is a no-op
// returning true (there is nothing to do); a key present nowhere
// returns false. After deleting an own shadowing property, the next
// Get sees the ancestor's descriptor again.
func (r *Realm) Delete(obj Value, name string) bool {
	table := tableOf(obj)
	if table == nil {
		return false
	}
	r.mu.Lock()
	if table.HasOwn(name) {
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
	current := table.prototype
	r.mu.Unlock()

	r.mu.RLock()
	defer r.mu.RUnlock()
	for current.IsChainable() {
		t := tableOf(current)
		if t.HasOwn(name) {
			return true
		}
		current = t.prototype
	}
	return false
}

// Call invokes a callable value with receiver bound as its implicit
// self.
func (r *Realm) Call(fn Value, receiver Value, args []Value) (Value, error) {
	nf := fn.AsNativeFunction()
	if nf == nil {
		return Undefined, errors.NewNotCallableError("value %s is not callable", fn.Inspect())
	}
	return nf.Fn(receiver, args)
}
