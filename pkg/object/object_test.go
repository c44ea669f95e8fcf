package object

import (
	"testing"

	"protolith/pkg/errors"
)

func TestPlainObjectBasic(t *testing.T) {
	r := NewRealm(Config{})
	poVal := r.NewObject(r.ObjectPrototype)
	po := poVal.AsPlainObject()
	// No properties initially
	if po.HasOwn("foo") {
		t.Errorf("expected HasOwn(\"foo\") to be false on new object")
	}
	if v, ok := po.GetOwn("foo"); ok {
		t.Errorf("expected GetOwn(\"foo\") ok=false, got ok=true, v=%v", v)
	}
	// Define a property
	po.SetOwn("foo", IntegerValue(42))
	if !po.HasOwn("foo") {
		t.Errorf("expected HasOwn(\"foo\") true after SetOwn")
	}
	v, ok := po.GetOwn("foo")
	if !ok {
		t.Fatalf("expected GetOwn(\"foo\") ok=true after SetOwn")
	}
	if v.AsInteger() != 42 {
		t.Errorf("expected GetOwn to return 42, got %d", v.AsInteger())
	}
	// Overwrite existing property
	po.SetOwn("foo", IntegerValue(7))
	v2, ok2 := po.GetOwn("foo")
	if !ok2 || v2.AsInteger() != 7 {
		t.Errorf("expected overwritten value 7, got %v (ok=%v)", v2, ok2)
	}
	// OwnKeys should list "foo"
	keys := po.OwnKeys()
	if len(keys) != 1 || keys[0] != "foo" {
		t.Errorf("OwnKeys mismatch, expected [foo], got %v", keys)
	}
}

func TestPlainObjectShapeTransitions(t *testing.T) {
	r := NewRealm(Config{})
	po := r.NewObject(r.ObjectPrototype).AsPlainObject()
	root := po.shape
	// first definition creates new shape
	po.SetOwn("a", IntegerValue(1))
	s1 := po.shape
	if s1 == root {
		t.Errorf("expected new shape after first property, got same shape")
	}
	// redefining same property should keep shape
	po.SetOwn("a", IntegerValue(2))
	s2 := po.shape
	if s2 != s1 {
		t.Errorf("expected same shape on overwrite, got different shapes")
	}
	// adding another property creates another shape
	po.SetOwn("b", IntegerValue(3))
	s3 := po.shape
	if s3 == s2 {
		t.Errorf("expected new shape after adding second property, got same shape")
	}
	// fields order
	keys := po.OwnKeys()
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Errorf("OwnKeys order mismatch, expected [a b], got %v", keys)
	}
}

func TestDefineOwnPropertyFlags(t *testing.T) {
	r := NewRealm(Config{})
	po := r.NewObject(r.ObjectPrototype).AsPlainObject()

	f, tr := false, true
	if err := po.DefineOwnProperty("ro", IntegerValue(1), &f, &tr, &tr); err != nil {
		t.Fatalf("unexpected error defining non-writable property: %v", err)
	}
	// plain assignment must not overwrite a non-writable property
	if po.SetOwn("ro", IntegerValue(2)) {
		t.Errorf("expected SetOwn on non-writable property to report blocked")
	}
	if v, _ := po.GetOwn("ro"); v.AsInteger() != 1 {
		t.Errorf("expected non-writable value to stay 1, got %d", v.AsInteger())
	}

	// non-configurable property rejects incompatible redefinition
	if err := po.DefineOwnProperty("locked", IntegerValue(5), &tr, &f, &f); err != nil {
		t.Fatalf("unexpected error defining locked property: %v", err)
	}
	err := po.DefineOwnProperty("locked", IntegerValue(5), &tr, &tr, &f)
	if err == nil {
		t.Fatalf("expected NotConfigurableError when flipping enumerable on non-configurable property")
	}
	if !errors.IsNotConfigurableError(err) {
		t.Errorf("expected NotConfigurableError, got %v", err)
	}
	// value update through writable non-configurable property is fine
	if err := po.DefineOwnProperty("locked", IntegerValue(6), nil, nil, nil); err != nil {
		t.Errorf("expected value update on writable non-configurable property, got %v", err)
	}
	if v, _ := po.GetOwn("locked"); v.AsInteger() != 6 {
		t.Errorf("expected locked value 6, got %d", v.AsInteger())
	}

	// converting a non-configurable data property to an accessor fails
	getter := NewNativeFunction(0, false, "get locked", func(receiver Value, args []Value) (Value, error) {
		return IntegerValue(0), nil
	})
	err = po.DefineAccessorProperty("locked", getter, true, Undefined, false, nil, nil)
	if err == nil || !errors.IsNotConfigurableError(err) {
		t.Errorf("expected NotConfigurableError converting non-configurable data to accessor, got %v", err)
	}
}

func TestAccessorReplacesWholeDescriptor(t *testing.T) {
	r := NewRealm(Config{})
	po := r.NewObject(r.ObjectPrototype).AsPlainObject()

	tr := true
	getter := NewNativeFunction(0, false, "get k", func(receiver Value, args []Value) (Value, error) {
		return NewString("from getter"), nil
	})
	if err := po.DefineAccessorProperty("k", getter, true, Undefined, false, &tr, &tr); err != nil {
		t.Fatalf("unexpected error defining getter: %v", err)
	}
	g, s := po.accessorPair("k")
	if g.IsUndefined() || !s.IsUndefined() {
		t.Fatalf("expected getter-only pair, got getter=%v setter=%v", g.Inspect(), s.Inspect())
	}

	// redefining with a setter-only accessor silently removes the getter
	setter := NewNativeFunction(1, false, "set k", func(receiver Value, args []Value) (Value, error) {
		return Undefined, nil
	})
	if err := po.DefineAccessorProperty("k", Undefined, false, setter, true, &tr, &tr); err != nil {
		t.Fatalf("unexpected error redefining as setter-only: %v", err)
	}
	g, s = po.accessorPair("k")
	if !g.IsUndefined() {
		t.Errorf("expected getter to be gone after setter-only redefinition")
	}
	if s.IsUndefined() {
		t.Errorf("expected setter to be installed")
	}
}

func TestRedefineIsolatedFromSharedShape(t *testing.T) {
	r := NewRealm(Config{})
	a := r.NewObject(r.ObjectPrototype)
	b := r.NewObject(r.ObjectPrototype)
	pa, pb := a.AsPlainObject(), b.AsPlainObject()

	// identical assignment order interns one shared shape
	pa.SetOwn("x", IntegerValue(1))
	pb.SetOwn("x", IntegerValue(2))
	pa.SetOwn("y", IntegerValue(1))
	pb.SetOwn("y", IntegerValue(2))
	if pa.shape != pb.shape {
		t.Fatalf("expected a and b to share a transition shape")
	}

	// freezing x on a must not leak into b's descriptor
	ff := false
	if err := pa.DefineOwnProperty("x", IntegerValue(1), &ff, nil, nil); err != nil {
		t.Fatalf("unexpected error redefining a.x: %v", err)
	}
	if pa.shape == pb.shape {
		t.Errorf("expected redefinition to give a a private shape")
	}
	if !pb.SetOwn("x", IntegerValue(4)) {
		t.Errorf("expected b.x to stay writable after freezing a.x")
	}
	if v, _ := pb.GetOwn("x"); v.AsInteger() != 4 {
		t.Errorf("expected b.x = 4, got %d", v.AsInteger())
	}
	if pa.SetOwn("x", IntegerValue(9)) {
		t.Errorf("expected a.x to be non-writable")
	}

	// converting a.y to an accessor must leave b.y a data property
	tr := true
	getter := NewNativeFunction(0, false, "get y", func(receiver Value, args []Value) (Value, error) {
		return IntegerValue(-1), nil
	})
	if err := pa.DefineAccessorProperty("y", getter, true, Undefined, false, &tr, &tr); err != nil {
		t.Fatalf("unexpected error redefining a.y: %v", err)
	}
	if v, err := r.Get(b, "y"); err != nil || v.AsInteger() != 2 {
		t.Errorf("expected b.y = 2 after converting a.y to accessor, got %v (err=%v)", v.Inspect(), err)
	}
	if v, err := r.Get(a, "y"); err != nil || v.AsInteger() != -1 {
		t.Errorf("expected a.y to go through the accessor, got %v (err=%v)", v.Inspect(), err)
	}
}

func TestClearShapeCache(t *testing.T) {
	r := NewRealm(Config{})
	a := r.NewObject(r.ObjectPrototype).AsPlainObject()
	a.SetOwn("k", IntegerValue(1))

	ClearShapeCache()

	// interning restarts, behavior does not change
	b := r.NewObject(r.ObjectPrototype).AsPlainObject()
	b.SetOwn("k", IntegerValue(2))
	if a.shape == b.shape {
		t.Errorf("expected a fresh transition shape after clearing the cache")
	}
	if v, ok := a.GetOwn("k"); !ok || v.AsInteger() != 1 {
		t.Errorf("expected a.k = 1 to survive the clear, got %v (ok=%v)", v, ok)
	}
	if v, ok := b.GetOwn("k"); !ok || v.AsInteger() != 2 {
		t.Errorf("expected b.k = 2, got %v (ok=%v)", v, ok)
	}
}

func TestDeleteOwn(t *testing.T) {
	r := NewRealm(Config{})
	po := r.NewObject(r.ObjectPrototype).AsPlainObject()

	po.SetOwn("a", IntegerValue(1))
	po.SetOwn("b", IntegerValue(2))
	if !po.DeleteOwn("a") {
		t.Errorf("expected DeleteOwn(\"a\") true")
	}
	if po.HasOwn("a") {
		t.Errorf("expected \"a\" gone after delete")
	}
	if v, ok := po.GetOwn("b"); !ok || v.AsInteger() != 2 {
		t.Errorf("expected \"b\" to survive deletion of \"a\", got %v (ok=%v)", v, ok)
	}
	// missing own key is a no-op returning false
	if po.DeleteOwn("a") {
		t.Errorf("expected DeleteOwn of missing key to return false")
	}
	// non-configurable properties cannot be deleted
	ff := false
	if err := po.DefineOwnProperty("pinned", IntegerValue(3), &ff, &ff, &ff); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if po.DeleteOwn("pinned") {
		t.Errorf("expected DeleteOwn of non-configurable property to return false")
	}
	if !po.HasOwn("pinned") {
		t.Errorf("expected non-configurable property to survive delete attempt")
	}
}

func TestDescriptorRoundTrip(t *testing.T) {
	r := NewRealm(Config{})
	obj := r.NewObject(r.ObjectPrototype)

	if err := r.DefineOwn(obj, "n", PropertyDescriptor{Value: IntegerValue(9), Writable: true, Enumerable: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	desc, ok := r.OwnDescriptor(obj, "n")
	if !ok {
		t.Fatalf("expected descriptor for \"n\"")
	}
	if desc.Accessor {
		t.Errorf("expected data descriptor")
	}
	if desc.Value.AsInteger() != 9 || !desc.Writable || !desc.Enumerable || desc.Configurable {
		t.Errorf("descriptor mismatch: %+v", desc)
	}

	getter := NewNativeFunction(0, false, "get g", func(receiver Value, args []Value) (Value, error) {
		return IntegerValue(1), nil
	})
	if err := r.DefineOwn(obj, "g", PropertyDescriptor{Accessor: true, Getter: getter, Configurable: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	desc, ok = r.OwnDescriptor(obj, "g")
	if !ok || !desc.Accessor {
		t.Fatalf("expected accessor descriptor for \"g\", got %+v (ok=%v)", desc, ok)
	}
	if desc.Getter.IsUndefined() || !desc.Setter.IsUndefined() {
		t.Errorf("expected getter-only descriptor, got %+v", desc)
	}
	if !desc.Configurable || desc.Enumerable {
		t.Errorf("accessor flags mismatch: %+v", desc)
	}
}

func TestSetPrototypeCycle(t *testing.T) {
	r := NewRealm(Config{})
	a := r.NewObject(Null)
	b := r.NewObject(a)
	c := r.NewObject(b)

	// relinking a under c would close the loop a -> c -> b -> a
	err := r.SetPrototypeOf(a, c)
	if err == nil {
		t.Fatalf("expected CycleError relinking a under c")
	}
	if !errors.IsCycleError(err) {
		t.Errorf("expected CycleError, got %v", err)
	}
	// the link must be unchanged
	if !r.PrototypeOf(a).IsNull() {
		t.Errorf("expected a's prototype to stay null after rejected relink")
	}
	// self-link is also a cycle
	if err := r.SetPrototypeOf(a, a); err == nil || !errors.IsCycleError(err) {
		t.Errorf("expected CycleError on self-link, got %v", err)
	}
	// a legal relink still works
	d := r.NewObject(Null)
	if err := r.SetPrototypeOf(a, d); err != nil {
		t.Errorf("unexpected error on legal relink: %v", err)
	}
	if !r.PrototypeOf(a).Is(d) {
		t.Errorf("expected a's prototype to be d")
	}
}

func TestNonExtensibleObject(t *testing.T) {
	r := NewRealm(Config{})
	obj := r.NewObject(r.ObjectPrototype)
	po := obj.AsPlainObject()
	po.SetOwn("kept", IntegerValue(1))

	r.SetExtensible(obj, false)
	if r.IsExtensible(obj) {
		t.Fatalf("expected object to be non-extensible")
	}
	// new properties are rejected
	if po.SetOwn("fresh", IntegerValue(2)) {
		t.Errorf("expected SetOwn of new property on non-extensible object to be blocked")
	}
	if err := r.DefineOwn(obj, "fresh", PropertyDescriptor{Value: IntegerValue(2)}); err == nil {
		t.Errorf("expected DefineOwn of new property on non-extensible object to fail")
	}
	// existing writable properties still update
	if !po.SetOwn("kept", IntegerValue(3)) {
		t.Errorf("expected existing property to stay writable")
	}
	// prototype is frozen
	other := r.NewObject(Null)
	if err := r.SetPrototypeOf(obj, other); err == nil {
		t.Errorf("expected prototype relink of non-extensible object to fail")
	}
	// the flag is one-way
	r.SetExtensible(obj, true)
	if r.IsExtensible(obj) {
		t.Errorf("expected extensible flag to stay cleared")
	}
}

func TestArenaIdentity(t *testing.T) {
	r := NewRealm(Config{})
	before := r.Arena().Size()
	obj := r.NewObject(r.ObjectPrototype)
	po := obj.AsPlainObject()
	if po.ID() == 0 {
		t.Errorf("expected arena to stamp a non-zero id")
	}
	if r.Arena().Size() != before+1 {
		t.Errorf("expected arena size %d, got %d", before+1, r.Arena().Size())
	}
	got, ok := r.Arena().Get(po.ID())
	if !ok || got != po {
		t.Errorf("expected arena to resolve id %d back to the record", po.ID())
	}
}
