package object

import (
	"protolith/pkg/errors"
)

// Initializer populates a freshly allocated object's own properties.
// By convention a subclass initializer invokes its superclass
// initializer against the same object first; the facility never chains
// this automatically, and forgetting to do so is a caller bug, not a
// facility error.
type Initializer func(r *Realm, this Value, args []Value) error

// ConstructorObject models a constructible object. It owns a property
// table of its own, so lookups performed directly on the constructor
// resolve through the same chain rules as instance lookups; the
// table's prototype link is the static link.
type ConstructorObject struct {
	Name        string
	initializer Initializer
	properties  *PlainObject
}

// Init runs the constructor's initializer against this. Exposed so
// subclass initializers can chain superclass initialization onto the
// same object.
func (c *ConstructorObject) Init(r *Realm, this Value, args []Value) error {
	if c.initializer == nil {
		return nil
	}
	return c.initializer(r, this, args)
}

// NewConstructor creates a constructor with a fresh construction
// prototype. The prototype object gets a non-enumerable "constructor"
// back-reference; the constructor gets a writable, non-enumerable
// "prototype" own property. Both are ordinary shared descriptors:
// reassigning either later is legal and immediately visible through
// every chain that reaches them.
func (r *Realm) NewConstructor(name string, init Initializer) Value {
	r.mu.Lock()
	props := newPlainObject(Null)
	r.arena.Register(props)
	ctor := &ConstructorObject{Name: name, initializer: init, properties: props}
	ctorVal := NewValueFromConstructor(ctor)

	proto := newPlainObject(r.ObjectPrototype)
	r.arena.Register(proto)
	proto.SetOwnNonEnumerable("constructor", ctorVal)
	props.SetOwnNonEnumerable("prototype", NewValueFromPlainObject(proto))
	r.epoch.Add(1)
	r.mu.Unlock()

	r.logger.Trace().Str("ctor", name).Uint64("proto", proto.id).Msg("constructor created")
	return ctorVal
}

// Construct allocates a new object linked to the constructor's current
// construction prototype, then runs the initializer against it.
// The prototype is re-resolved at every call: reassigning the
// constructor's "prototype" property affects objects constructed
// afterwards, never those already created.
func (r *Realm) Construct(ctorVal Value, args []Value) (Value, error) {
	ctor := ctorVal.AsConstructor()
	if ctor == nil {
		return Undefined, errors.NewNotCallableError("%s is not a constructor", ctorVal.TypeName())
	}
	protoVal, err := r.Get(ctorVal, "prototype")
	if err != nil {
		return Undefined, err
	}
	if !protoVal.IsChainable() {
		protoVal = r.ObjectPrototype
	}
	obj := r.NewObject(protoVal)
	if err := ctor.Init(r, obj, args); err != nil {
		return Undefined, err
	}
	r.logger.Trace().Str("ctor", ctor.Name).Uint64("obj", obj.AsPlainObject().id).Msg("object constructed")
	return obj, nil
}

// LinkStatic sets sub's static link to sup: property lookups performed
// directly on sub (not on its instances) fall through to sup's own
// properties under the usual resolver rules. Fails with CycleError if
// the static chain would become circular.
func (r *Realm) LinkStatic(sub, sup Value) error {
	subCtor := sub.AsConstructor()
	if subCtor == nil {
		return errors.NewNotCallableError("%s is not a constructor", sub.TypeName())
	}
	if sup.AsConstructor() == nil && !sup.IsNullish() {
		return errors.NewNotCallableError("static link target %s is not a constructor", sup.TypeName())
	}
	r.mu.Lock()
	err := subCtor.properties.SetPrototype(sup)
	if err == nil {
		r.epoch.Add(1)
	}
	r.mu.Unlock()
	if err != nil {
		return err
	}
	r.logger.Trace().Str("sub", subCtor.Name).Str("sup", sup.Inspect()).Msg("static link set")
	return nil
}

// LinkInstancePrototype chains sub's construction prototype to sup's,
// establishing the instance-side inheritance chain. Both constructors
// must carry an object-valued own "prototype" property.
func (r *Realm) LinkInstancePrototype(sub, sup Value) error {
	subProto, err := r.constructionPrototype(sub)
	if err != nil {
		return err
	}
	supProto, err := r.constructionPrototype(sup)
	if err != nil {
		return err
	}
	return r.SetPrototypeOf(subProto, supProto)
}

func (r *Realm) constructionPrototype(ctorVal Value) (Value, error) {
	ctor := ctorVal.AsConstructor()
	if ctor == nil {
		return Undefined, errors.NewNotCallableError("%s is not a constructor", ctorVal.TypeName())
	}
	r.mu.RLock()
	protoVal, ok := ctor.properties.GetOwn("prototype")
	r.mu.RUnlock()
	if !ok || !protoVal.IsObject() {
		return Undefined, errors.NewNotCallableError("constructor %s has no object-valued prototype", ctor.Name)
	}
	return protoVal, nil
}

// InstanceOf reports whether ctor's current construction prototype
// appears on val's prototype chain.
func (r *Realm) InstanceOf(val Value, ctorVal Value) (bool, error) {
	protoVal, err := r.constructionPrototype(ctorVal)
	if err != nil {
		return false, err
	}
	target := protoVal.AsPlainObject()
	if !val.IsChainable() {
		return false, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	current := tableOf(val).prototype
	for current.IsChainable() {
		table := tableOf(current)
		if table == target {
			return true, nil
		}
		current = table.prototype
	}
	return false, nil
}
