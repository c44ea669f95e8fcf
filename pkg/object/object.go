package object

import (
	"protolith/pkg/errors"
)

// PlainObject is one object record: a prototype link plus an
// insertion-ordered descriptor table. Property values live in the
// properties slice at the offsets the shape assigns; accessor pairs
// live in the side maps keyed by property name.
type PlainObject struct {
	id         uint64
	shape      *Shape
	prototype  Value
	properties []Value
	getters    map[string]Value
	setters    map[string]Value
	// Extensible flag - when false, no new properties can be added
	// and the prototype link is frozen.
	extensible bool
}

func newPlainObject(proto Value) *PlainObject {
	prototype := Null
	if proto.IsChainable() {
		prototype = proto
	}
	return &PlainObject{prototype: prototype, shape: rootShape, extensible: true}
}

// ID returns the arena id the owning realm stamped on this record.
func (o *PlainObject) ID() uint64 { return o.id }

// tableOf returns the descriptor table backing a chain member.
// Constructors resolve properties through their own table, so the
// static chain and the instance chain share one traversal.
func tableOf(v Value) *PlainObject {
	switch v.typ {
	case TypeObject:
		return v.AsPlainObject()
	case TypeConstructor:
		return v.AsConstructor().properties
	default:
		return nil
	}
}

// GetOwn looks up a direct (own) property by name. Returns (value, true)
// if present. For accessor properties the raw slot (Undefined) is
// returned; callers that care use lookupOwn and the accessor maps.
func (o *PlainObject) GetOwn(name string) (Value, bool) {
	f, ok := o.shape.lookup(name)
	if !ok {
		return Undefined, false
	}
	if f.offset < len(o.properties) {
		return o.properties[f.offset], true
	}
	return Undefined, true
}

func (o *PlainObject) lookupOwn(name string) (Field, bool) {
	return o.shape.lookup(name)
}

// HasOwn reports whether an own property with the given name exists.
func (o *PlainObject) HasOwn(name string) bool {
	_, ok := o.shape.lookup(name)
	return ok
}

// accessorPair returns the getter and setter for an own accessor
// property. Either may be Undefined when absent.
func (o *PlainObject) accessorPair(name string) (Value, Value) {
	var g, s Value = Undefined, Undefined
	if o.getters != nil {
		if v, ok := o.getters[name]; ok {
			g = v
		}
	}
	if o.setters != nil {
		if v, ok := o.setters[name]; ok {
			s = v
		}
	}
	return g, s
}

// SetOwn sets or defines an own property with plain-assignment
// semantics (writable, enumerable, configurable). Returns false when an
// existing non-writable property or a non-extensible object blocked the
// write.
func (o *PlainObject) SetOwn(name string, v Value) bool {
	if f, ok := o.shape.lookup(name); ok {
		if f.isAccessor {
			// Assignment through an own accessor is the resolver's
			// job; a raw SetOwn on an accessor field is a no-op.
			return false
		}
		if !f.writable {
			return false
		}
		o.properties[f.offset] = v
		return true
	}
	if !o.extensible {
		return false
	}
	fld := Field{offset: len(o.shape.fields), name: name, writable: true, enumerable: true, configurable: true}
	o.shape = o.shape.transition("s:"+name, fld)
	o.properties = append(o.properties, v)
	return true
}

// SetOwnNonEnumerable sets or defines an own property as non-enumerable
// (for built-in plumbing like the constructor back-reference).
func (o *PlainObject) SetOwnNonEnumerable(name string, v Value) bool {
	if f, ok := o.shape.lookup(name); ok {
		if f.isAccessor || !f.writable {
			return false
		}
		o.properties[f.offset] = v
		return true
	}
	if !o.extensible {
		return false
	}
	fld := Field{offset: len(o.shape.fields), name: name, writable: true, enumerable: false, configurable: true}
	o.shape = o.shape.transition("s:"+name+"_nonenum", fld)
	o.properties = append(o.properties, v)
	return true
}

// DefineOwnProperty defines or updates an own data property with
// explicit attributes. Unspecified attributes (nil) keep previous
// values for existing properties and default to false for new ones.
// Incompatible redefinition of a non-configurable property fails with
// NotConfigurableError and leaves the descriptor untouched.
func (o *PlainObject) DefineOwnProperty(name string, value Value, writable, enumerable, configurable *bool) error {
	idx := o.shape.lookupIndex(name)
	if idx >= 0 {
		f := o.shape.fields[idx]
		newF := f
		if f.isAccessor {
			if !f.configurable {
				return errors.NewNotConfigurableError(name, "cannot redefine non-configurable accessor as data property")
			}
			newF.isAccessor = false
			newF.writable = false
			if o.getters != nil {
				delete(o.getters, name)
			}
			if o.setters != nil {
				delete(o.setters, name)
			}
		} else if !f.configurable {
			if configurable != nil && *configurable != f.configurable {
				return errors.NewNotConfigurableError(name, "cannot change configurable flag")
			}
			if enumerable != nil && *enumerable != f.enumerable {
				return errors.NewNotConfigurableError(name, "cannot change enumerable flag")
			}
			if !f.writable && writable != nil && *writable {
				return errors.NewNotConfigurableError(name, "cannot make non-writable property writable")
			}
			if !f.writable && !value.Is(o.properties[f.offset]) {
				return errors.NewNotConfigurableError(name, "cannot change value of non-writable property")
			}
		}
		o.properties[f.offset] = value
		if writable != nil {
			newF.writable = *writable
		}
		if enumerable != nil {
			newF.enumerable = *enumerable
		}
		if configurable != nil {
			newF.configurable = *configurable
		}
		o.shape = o.shape.withField(idx, newF)
		return nil
	}
	if !o.extensible {
		return errors.NewNotConfigurableError(name, "cannot define property on non-extensible object")
	}
	fld := Field{offset: len(o.shape.fields), name: name}
	if writable != nil {
		fld.writable = *writable
	}
	if enumerable != nil {
		fld.enumerable = *enumerable
	}
	if configurable != nil {
		fld.configurable = *configurable
	}
	o.shape = o.shape.extend(fld)
	o.properties = append(o.properties, value)
	return nil
}

// DefineAccessorProperty defines or updates an own accessor property.
// Replacing a descriptor installs exactly the getter/setter pair given:
// defining a setter-only accessor over a key that previously had a
// getter removes that getter.
func (o *PlainObject) DefineAccessorProperty(name string, getter Value, hasGetter bool, setter Value, hasSetter bool, enumerable, configurable *bool) error {
	if hasGetter && !getter.IsCallable() && !getter.IsUndefined() {
		return errors.NewNotCallableError("getter for '%s' is not callable", name)
	}
	if hasSetter && !setter.IsCallable() && !setter.IsUndefined() {
		return errors.NewNotCallableError("setter for '%s' is not callable", name)
	}
	idx := o.shape.lookupIndex(name)
	if idx >= 0 {
		f := o.shape.fields[idx]
		if !f.configurable {
			return errors.NewNotConfigurableError(name, "cannot redefine non-configurable property as accessor")
		}
		newF := f
		newF.isAccessor = true
		newF.writable = false
		if enumerable != nil {
			newF.enumerable = *enumerable
		}
		if configurable != nil {
			newF.configurable = *configurable
		}
		o.shape = o.shape.withField(idx, newF)
		o.properties[f.offset] = Undefined
		o.installAccessors(name, getter, hasGetter, setter, hasSetter, true)
		return nil
	}
	if !o.extensible {
		return errors.NewNotConfigurableError(name, "cannot define property on non-extensible object")
	}
	fld := Field{offset: len(o.shape.fields), name: name, isAccessor: true}
	if enumerable != nil {
		fld.enumerable = *enumerable
	}
	if configurable != nil {
		fld.configurable = *configurable
	}
	o.shape = o.shape.extend(fld)
	o.properties = append(o.properties, Undefined)
	o.installAccessors(name, getter, hasGetter, setter, hasSetter, true)
	return nil
}

// installAccessors replaces the stored pair for name. replace clears
// whichever half was not supplied, enforcing whole-record replacement.
func (o *PlainObject) installAccessors(name string, getter Value, hasGetter bool, setter Value, hasSetter bool, replace bool) {
	if o.getters == nil {
		o.getters = make(map[string]Value)
	}
	if o.setters == nil {
		o.setters = make(map[string]Value)
	}
	if replace {
		delete(o.getters, name)
		delete(o.setters, name)
	}
	if hasGetter && !getter.IsUndefined() {
		o.getters[name] = getter
	}
	if hasSetter && !setter.IsUndefined() {
		o.setters[name] = setter
	}
}

// DeleteOwn removes an own property if present and configurable.
// Returns true if the property was deleted; a missing or
// non-configurable property returns false. The prototype chain is
// never consulted.
func (o *PlainObject) DeleteOwn(name string) bool {
	idx := o.shape.lookupIndex(name)
	if idx == -1 {
		return false
	}
	f := o.shape.fields[idx]
	if !f.configurable {
		return false
	}
	newFields := make([]Field, 0, len(o.shape.fields)-1)
	for i, fld := range o.shape.fields {
		if i == idx {
			continue
		}
		nf := fld
		if fld.offset > f.offset {
			nf.offset = fld.offset - 1
		}
		newFields = append(newFields, nf)
	}
	newProps := make([]Value, 0, len(o.properties)-1)
	for i := range o.properties {
		if i == f.offset {
			continue
		}
		newProps = append(newProps, o.properties[i])
	}
	// Deletion shapes are not interned; bump version so caches drop
	// any path through the old layout.
	o.shape = &Shape{parent: o.shape.parent, fields: newFields, transitions: make(map[string]*Shape), version: o.shape.version + 1}
	o.properties = newProps
	if f.isAccessor {
		if o.getters != nil {
			delete(o.getters, name)
		}
		if o.setters != nil {
			delete(o.setters, name)
		}
	}
	return true
}

// OwnKeys returns the enumerable own property names in insertion order.
func (o *PlainObject) OwnKeys() []string {
	keys := make([]string, 0, len(o.shape.fields))
	for _, f := range o.shape.fields {
		if f.enumerable {
			keys = append(keys, f.name)
		}
	}
	return keys
}

// OwnPropertyNames returns all own property names (including
// non-enumerable) in insertion order.
func (o *PlainObject) OwnPropertyNames() []string {
	names := make([]string, 0, len(o.shape.fields))
	for _, f := range o.shape.fields {
		names = append(names, f.name)
	}
	return names
}

// GetPrototype returns the object's prototype link (Null terminates
// the chain).
func (o *PlainObject) GetPrototype() Value {
	return o.prototype
}

// SetPrototype reassigns the prototype link. Fails with CycleError if
// the new prototype's chain already contains this object, and with
// NotConfigurableError if the object is non-extensible. On failure the
// link is unchanged.
func (o *PlainObject) SetPrototype(proto Value) error {
	if proto.Is(o.prototype) {
		return nil
	}
	if !o.extensible {
		return errors.NewNotConfigurableError("[[Prototype]]", "cannot relink prototype of non-extensible object")
	}
	if !proto.IsChainable() && !proto.IsNullish() {
		return errors.NewNotCallableError("prototype must be an object, a constructor, or null")
	}
	if chainContains(proto, o) {
		return errors.NewCycleError("prototype chain of %s already contains object #%d", proto.Inspect(), o.id)
	}
	if proto.IsNullish() {
		proto = Null
	}
	o.prototype = proto
	return nil
}

// chainContains walks start's prototype chain (start included) looking
// for target's descriptor table. Used to reject circular relinks before
// they happen; traversal itself therefore never needs a cycle guard.
func chainContains(start Value, target *PlainObject) bool {
	current := start
	for current.IsChainable() {
		table := tableOf(current)
		if table == target {
			return true
		}
		current = table.prototype
	}
	return false
}

// IsExtensible returns whether new properties can be added to this
// object.
func (o *PlainObject) IsExtensible() bool {
	return o.extensible
}

// SetExtensible clears the extensible flag. Once cleared it cannot be
// set back; attempts to do so are silently ignored.
func (o *PlainObject) SetExtensible(extensible bool) {
	if !extensible {
		o.extensible = false
	}
}

// PropertyDescriptor is the read-back form of one descriptor record.
// Accessor selects which half of the union is meaningful.
type PropertyDescriptor struct {
	Value        Value
	Getter       Value
	Setter       Value
	Writable     bool
	Enumerable   bool
	Configurable bool
	Accessor     bool
}

// OwnDescriptor returns the descriptor for an own property, if any.
func (o *PlainObject) OwnDescriptor(name string) (PropertyDescriptor, bool) {
	f, ok := o.shape.lookup(name)
	if !ok {
		return PropertyDescriptor{}, false
	}
	if f.isAccessor {
		g, s := o.accessorPair(name)
		return PropertyDescriptor{
			Getter:       g,
			Setter:       s,
			Enumerable:   f.enumerable,
			Configurable: f.configurable,
			Accessor:     true,
		}, true
	}
	var v Value = Undefined
	if f.offset < len(o.properties) {
		v = o.properties[f.offset]
	}
	return PropertyDescriptor{
		Value:        v,
		Writable:     f.writable,
		Enumerable:   f.enumerable,
		Configurable: f.configurable,
	}, true
}
