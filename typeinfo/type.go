package typeinfo

import (
	"reflect"
	"strings"
	"sync"
)

// Type describes a host type.
type Type struct {
	rt      reflect.Type
	super   *Type
	members *memberSet
	decl    *declarations
	name    string
	flags   Flags
	virtual bool

	superOnce sync.Once
	mu        sync.Mutex
}

// Typed is implemented by values whose host type is not their Go type,
// such as instances of a virtual type.
type Typed interface {
	HostType() *Type
}

var (
	// Unknown is the runtime type of a nil argument.
	Unknown = &Type{name: "<unknown>", virtual: true}
	// Void is the main type of a method without results.
	Void = &Type{name: "void", virtual: true}

	goTypes sync.Map // reflect.Type -> *Type
)

// TypeOf returns the descriptor for a Go type.
func TypeOf(rt reflect.Type) *Type {
	if rt == nil {
		return Unknown
	}
	if t, ok := goTypes.Load(rt); ok {
		return t.(*Type)
	}
	t, _ := goTypes.LoadOrStore(rt, newGoType(rt))
	return t.(*Type)
}

// For returns the descriptor for T.
func For[T any]() *Type {
	return TypeOf(reflect.TypeFor[T]())
}

// Of returns the runtime type of v. A nil v maps to Unknown.
func Of(v any) *Type {
	if v == nil {
		return Unknown
	}
	if typed, ok := v.(Typed); ok {
		if t := typed.HostType(); t != nil {
			return t
		}
	}
	return TypeOf(reflect.TypeOf(v))
}

func newGoType(rt reflect.Type) *Type {
	t := &Type{rt: rt, name: goTypeName(rt)}
	switch rt.Kind() {
	case reflect.Interface:
		t.flags = Public | Abstract | Interface
	default:
		nt := rt
		for nt.Kind() == reflect.Pointer && nt.Name() == "" {
			nt = nt.Elem()
		}
		if nt.PkgPath() == "" || isExportedName(nt.Name()) {
			t.flags = Public
		} else {
			t.flags = Private
		}
	}
	return t
}

func goTypeName(rt reflect.Type) string {
	if rt.Name() != "" {
		if rt.PkgPath() != "" {
			return rt.PkgPath() + "." + rt.Name()
		}
		return rt.Name()
	}
	if rt.Kind() == reflect.Pointer {
		return "*" + goTypeName(rt.Elem())
	}
	return rt.String()
}

// Name returns the fully qualified type name ("example.com/pkg.Server", "*example.com/pkg.Server", "int32").
func (t *Type) Name() string {
	return t.name
}

// SimpleName returns the name without package path or pointer marker.
// Package paths may contain dots, so Go types use the declared name and
// virtual names are cut at their last dot.
func (t *Type) SimpleName() string {
	if !t.virtual && t.rt != nil {
		rt := t.rt
		for rt.Kind() == reflect.Pointer && rt.Name() == "" {
			rt = rt.Elem()
		}
		if n := rt.Name(); n != "" {
			return n
		}
	}
	n := strings.TrimLeft(t.name, "*")
	if i := strings.LastIndexByte(n, '/'); i >= 0 {
		n = n[i+1:]
	}
	if i := strings.LastIndexByte(n, '.'); i >= 0 {
		n = n[i+1:]
	}
	return n
}

func (t *Type) String() string {
	return t.name
}

// Flags returns the type's own attributes (Public/Private, Abstract, Interface).
func (t *Type) Flags() Flags {
	return t.flags
}

// Reflect returns the Go type of instances, or nil for placeholders.
func (t *Type) Reflect() reflect.Type {
	return t.rt
}

// IsVirtual reports whether the type was assembled with a Builder.
func (t *Type) IsVirtual() bool {
	return t.virtual
}

// IsAbstract reports whether instances cannot be created directly.
func (t *Type) IsAbstract() bool {
	return t.flags&(Abstract|Interface) != 0
}

// IsPrimitive reports whether t is an unnamed bool, integer or float type.
func (t *Type) IsPrimitive() bool {
	if t.virtual || t.rt == nil || t.rt.PkgPath() != "" {
		return false
	}
	return isPrimitiveKind(t.rt.Kind())
}

// IsBoxed reports whether t is a pointer to a primitive.
func (t *Type) IsBoxed() bool {
	if t.virtual || t.rt == nil || t.rt.Kind() != reflect.Pointer || t.rt.Name() != "" {
		return false
	}
	return TypeOf(t.rt.Elem()).IsPrimitive()
}

// Canonical returns the primitive form of a primitive or boxed type, or nil.
func (t *Type) Canonical() *Type {
	switch {
	case t.IsPrimitive():
		return t
	case t.IsBoxed():
		return TypeOf(t.rt.Elem())
	default:
		return nil
	}
}

// Box returns the boxed form of a primitive type, or nil.
func (t *Type) Box() *Type {
	if !t.IsPrimitive() {
		return nil
	}
	return TypeOf(reflect.PointerTo(t.rt))
}

// IsNillable reports whether nil is a valid value of t.
func (t *Type) IsNillable() bool {
	if t.rt == nil {
		return t == Unknown
	}
	switch t.rt.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return true
	}
	return false
}

// Super returns the supertype, or nil.
func (t *Type) Super() *Type {
	if t.virtual {
		return t.super
	}
	t.superOnce.Do(func() {
		if st := embeddedSuper(t.rt); st != nil {
			t.super = TypeOf(st)
		}
	})
	return t.super
}

// AcceptsInstanceOf reports whether a value of type c can be used where t is
// declared: identity, Go assignability, interface implementation or the
// embedding chain.
func (t *Type) AcceptsInstanceOf(c *Type) bool {
	if t == nil || c == nil {
		return false
	}
	if t == c {
		return true
	}
	if c == Unknown {
		return t.IsNillable()
	}
	if t == Unknown || t == Void || c == Void {
		return false
	}
	if !t.virtual && t.rt != nil && c.rt != nil {
		if !c.virtual && c.rt.AssignableTo(t.rt) {
			return true
		}
		if t.rt.Kind() == reflect.Interface && c.rt.Implements(t.rt) {
			return true
		}
	}
	for s := c.Super(); s != nil; s = s.Super() {
		if s == t {
			return true
		}
	}
	return false
}

// embeddedSuper returns the Go type of the first embedded struct of rt,
// keeping rt's pointer-ness.
func embeddedSuper(rt reflect.Type) reflect.Type {
	if rt == nil {
		return nil
	}
	ptr := false
	st := rt
	if st.Kind() == reflect.Pointer && st.Name() == "" {
		st = st.Elem()
		ptr = true
	}
	if st.Kind() != reflect.Struct {
		return nil
	}
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		if !f.Anonymous {
			continue
		}
		et := f.Type
		if et.Kind() == reflect.Pointer {
			et = et.Elem()
		}
		if et.Kind() != reflect.Struct {
			continue
		}
		if ptr {
			return reflect.PointerTo(et)
		}
		return et
	}
	return nil
}

func isPrimitiveKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isExportedName(name string) bool {
	return name != "" && name[0] >= 'A' && name[0] <= 'Z'
}
