package object

import "sync"

// Field describes one own property: where its value slot lives and the
// descriptor flags that govern it. An accessor field keeps its slot (it
// always holds Undefined) so offsets stay dense.
type Field struct {
	offset       int
	name         string
	writable     bool
	enumerable   bool
	configurable bool
	isAccessor   bool
}

// Shape is a shared property layout. Objects that acquired the same
// properties in the same order share a Shape; adding a property walks
// or extends the transition tree. Insertion order of fields is the
// enumeration order.
type Shape struct {
	parent      *Shape
	fields      []Field
	transitions map[string]*Shape
	mu          sync.RWMutex // Protects transitions map
	version     uint32       // Bumped on any layout/flags change
}

// rootShape is the empty layout every object starts from.
var rootShape *Shape

func init() {
	rootShape = &Shape{
		fields:      []Field{},
		transitions: make(map[string]*Shape),
	}
}

func (s *Shape) lookup(name string) (Field, bool) {
	for _, f := range s.fields {
		if f.name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (s *Shape) lookupIndex(name string) int {
	for i := range s.fields {
		if s.fields[i].name == name {
			return i
		}
	}
	return -1
}

// transition returns the shape reached by appending fld, creating and
// caching it if this is the first time the transition is taken. hashKey
// disambiguates same-named transitions with different flags.
func (s *Shape) transition(hashKey string, fld Field) *Shape {
	s.mu.RLock()
	next, ok := s.transitions[hashKey]
	s.mu.RUnlock()
	if ok {
		return next
	}
	newFields := make([]Field, len(s.fields)+1)
	copy(newFields, s.fields)
	newFields[len(s.fields)] = fld
	next = &Shape{parent: s, fields: newFields, transitions: make(map[string]*Shape), version: s.version + 1}
	s.mu.Lock()
	if existing, exists := s.transitions[hashKey]; exists {
		next = existing
	} else {
		s.transitions[hashKey] = next
	}
	s.mu.Unlock()
	return next
}

// withField returns a fresh, non-cached shape with fields[idx]
// replaced by fld. Interned shapes are shared by every object that
// acquired the same keys by assignment, so redefinition must never
// touch a shared fields slice in place; the caller swaps the returned
// private shape onto the one object being redefined.
func (s *Shape) withField(idx int, fld Field) *Shape {
	newFields := make([]Field, len(s.fields))
	copy(newFields, s.fields)
	newFields[idx] = fld
	return &Shape{parent: s.parent, fields: newFields, transitions: make(map[string]*Shape), version: s.version + 1}
}

// extend returns a fresh, non-cached shape with fld appended. Used for
// descriptor-defined properties, whose flag combinations are too varied
// to be worth interning in the transition tree.
func (s *Shape) extend(fld Field) *Shape {
	newFields := make([]Field, len(s.fields)+1)
	copy(newFields, s.fields)
	newFields[len(s.fields)] = fld
	return &Shape{parent: s, fields: newFields, transitions: make(map[string]*Shape), version: s.version + 1}
}

// ClearShapeCache clears the root transition map to prevent memory
// bloat. This should be called periodically in test runners that create
// many short-lived realms.
func ClearShapeCache() {
	if rootShape != nil {
		rootShape.mu.Lock()
		rootShape.transitions = make(map[string]*Shape)
		rootShape.mu.Unlock()
	}
}
