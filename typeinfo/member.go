package typeinfo

import (
	"reflect"
	"strings"
)

// Member is a resolved field, method or constructor.
type Member interface {
	Name() string
	Kind() MemberKind
	// Owner is the declaring type.
	Owner() *Type
	Flags() Flags
	// MainType is the field type, the method's first result (Void if none)
	// or the constructed type.
	MainType() *Type
	Params() []*Type
	String() string
}

// Getter reads a virtual field from an instance.
type Getter func(recv reflect.Value) (reflect.Value, error)

// Setter writes a virtual field on an instance.
type Setter func(recv reflect.Value, v reflect.Value) error

// Field describes a struct field, a static variable or a virtual field.
type Field struct {
	owner  *Type
	typ    *Type
	name   string
	index  []int
	static reflect.Value // pointer to a static variable, or a constant value
	get    Getter
	set    Setter
	flags  Flags
}

func (f *Field) Name() string     { return f.name }
func (f *Field) Kind() MemberKind { return FieldKind }
func (f *Field) Owner() *Type     { return f.owner }
func (f *Field) Flags() Flags     { return f.flags }
func (f *Field) MainType() *Type  { return f.typ }
func (f *Field) Params() []*Type  { return nil }

// StructIndex returns the reflect index path of a struct field, or nil.
func (f *Field) StructIndex() []int { return f.index }

// StaticValue returns the pointer backing a static field (the value itself
// for a Final constant), or an invalid Value.
func (f *Field) StaticValue() reflect.Value { return f.static }

// Accessors returns the accessors of a virtual field.
func (f *Field) Accessors() (Getter, Setter) { return f.get, f.set }

func (f *Field) String() string {
	return f.flags.String() + " " + f.typ.Name() + " " + f.owner.Name() + "." + f.name
}

// Method describes an instance method, a static function or a virtual method.
type Method struct {
	owner  *Type
	result *Type
	fn     reflect.Value
	name   string
	params []*Type
	flags  Flags
}

func (m *Method) Name() string     { return m.name }
func (m *Method) Kind() MemberKind { return MethodKind }
func (m *Method) Owner() *Type     { return m.owner }
func (m *Method) Flags() Flags     { return m.flags }
func (m *Method) MainType() *Type  { return m.result }
func (m *Method) Params() []*Type  { return append([]*Type(nil), m.params...) }

// Func returns the implementation. Instance methods take the receiver as
// their first argument. Interface methods have no implementation and return
// an invalid Value.
func (m *Method) Func() reflect.Value { return m.fn }

func (m *Method) String() string {
	return m.flags.String() + " " + m.result.Name() + " " + m.owner.Name() + "." + m.name +
		"(" + strings.Join(Names(m.params), ", ") + ")"
}

// Constructor describes a declared constructor function or the synthetic
// zero-value constructor of a struct type.
type Constructor struct {
	owner  *Type
	fn     reflect.Value
	params []*Type
	flags  Flags
}

func (c *Constructor) Name() string     { return "<init>" }
func (c *Constructor) Kind() MemberKind { return ConstructorKind }
func (c *Constructor) Owner() *Type     { return c.owner }
func (c *Constructor) Flags() Flags     { return c.flags }
func (c *Constructor) MainType() *Type  { return c.owner }
func (c *Constructor) Params() []*Type  { return append([]*Type(nil), c.params...) }

// Func returns the constructor function.
func (c *Constructor) Func() reflect.Value { return c.fn }

func (c *Constructor) String() string {
	return c.flags.String() + " " + c.owner.Name() + "(" + strings.Join(Names(c.params), ", ") + ")"
}

type memberSet struct {
	fields  []*Field
	methods []*Method
	ctors   []*Constructor
}

// Fields returns the declared fields in declaration order: struct fields
// (exported and unexported) followed by declared static fields.
func (t *Type) Fields() []*Field {
	return append([]*Field(nil), t.memberSet().fields...)
}

// Methods returns the declared methods: the Go method set (including
// compiler-generated promoted and pointer wrappers) followed by declared
// static functions.
func (t *Type) Methods() []*Method {
	return append([]*Method(nil), t.memberSet().methods...)
}

// Constructors returns the declared constructors.
func (t *Type) Constructors() []*Constructor {
	return append([]*Constructor(nil), t.memberSet().ctors...)
}

// Members returns the declared members of the given kind.
func (t *Type) Members(kind MemberKind) []Member {
	ms := t.memberSet()
	var out []Member
	switch kind {
	case FieldKind:
		out = make([]Member, len(ms.fields))
		for i, f := range ms.fields {
			out[i] = f
		}
	case MethodKind:
		out = make([]Member, len(ms.methods))
		for i, m := range ms.methods {
			out[i] = m
		}
	case ConstructorKind:
		out = make([]Member, len(ms.ctors))
		for i, c := range ms.ctors {
			out[i] = c
		}
	}
	return out
}

func (t *Type) memberSet() *memberSet {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.members == nil {
		t.members = t.collect()
	}
	return t.members
}

func (t *Type) collect() *memberSet {
	ms := &memberSet{}
	if !t.virtual && t.rt != nil {
		ms.fields = goFields(t)
		ms.methods = goMethods(t)
	}
	if t.decl != nil {
		ms.fields = append(ms.fields, t.decl.fields...)
		ms.methods = append(ms.methods, t.decl.methods...)
		ms.ctors = append(ms.ctors, t.decl.ctors...)
	}
	if len(ms.ctors) == 0 && !t.virtual {
		if c := zeroConstructor(t); c != nil {
			ms.ctors = append(ms.ctors, c)
		}
	}
	return ms
}

func goFields(t *Type) []*Field {
	st := t.rt
	owner := t
	if st.Kind() == reflect.Pointer && st.Name() == "" {
		st = st.Elem()
		owner = TypeOf(st)
	}
	if st.Kind() != reflect.Struct {
		return nil
	}
	fields := make([]*Field, 0, st.NumField())
	for i := 0; i < st.NumField(); i++ {
		sf := st.Field(i)
		flags := Private
		if sf.IsExported() {
			flags = Public
		}
		if sf.Anonymous {
			flags |= Embedded
		}
		fields = append(fields, &Field{
			owner: owner,
			typ:   TypeOf(sf.Type),
			name:  sf.Name,
			index: sf.Index,
			flags: flags,
		})
	}
	return fields
}

func goMethods(t *Type) []*Method {
	rt := t.rt
	n := rt.NumMethod()
	if n == 0 {
		return nil
	}
	iface := rt.Kind() == reflect.Interface
	methods := make([]*Method, 0, n)
	for i := 0; i < n; i++ {
		rm := rt.Method(i)
		ft := rm.Type
		first := 1
		flags := Public
		if iface {
			first = 0
			flags |= Abstract
		} else {
			if isBridge(rt, rm.Name) {
				flags |= Bridge | Synthetic
			} else if isPromoted(rt, rm.Name) {
				flags |= Synthetic
			}
		}
		if ft.IsVariadic() {
			flags |= Variadic
		}
		params := make([]*Type, 0, ft.NumIn()-first)
		for j := first; j < ft.NumIn(); j++ {
			params = append(params, TypeOf(ft.In(j)))
		}
		var fn reflect.Value
		if !iface {
			fn = rm.Func
		}
		methods = append(methods, &Method{
			owner:  t,
			result: resultType(ft),
			fn:     fn,
			name:   rm.Name,
			params: params,
			flags:  flags,
		})
	}
	return methods
}

// isBridge reports whether the method of pointer type rt is the wrapper the
// compiler generates for a value-receiver method.
func isBridge(rt reflect.Type, name string) bool {
	if rt.Kind() != reflect.Pointer || rt.Name() != "" {
		return false
	}
	_, ok := rt.Elem().MethodByName(name)
	return ok
}

// isPromoted reports whether the method is reachable through an embedded
// field. An explicit method shadowing an embedded one with the same name
// cannot be told apart through reflect and is reported as promoted as well.
func isPromoted(rt reflect.Type, name string) bool {
	st := rt
	ptr := false
	if st.Kind() == reflect.Pointer && st.Name() == "" {
		st = st.Elem()
		ptr = true
	}
	if st.Kind() != reflect.Struct {
		return false
	}
	for i := 0; i < st.NumField(); i++ {
		sf := st.Field(i)
		if !sf.Anonymous {
			continue
		}
		et := sf.Type
		if ptr && et.Kind() != reflect.Pointer {
			et = reflect.PointerTo(et)
		}
		if _, ok := et.MethodByName(name); ok {
			return true
		}
	}
	return false
}

// resultType is the first result, or Void when there is none besides a
// trailing error.
func resultType(ft reflect.Type) *Type {
	if ft.NumOut() == 0 || (ft.NumOut() == 1 && isErrorType(ft.Out(0))) {
		return Void
	}
	return TypeOf(ft.Out(0))
}

// zeroConstructor builds the synthetic constructor of struct types and
// pointers to structs.
func zeroConstructor(t *Type) *Constructor {
	rt := t.rt
	switch {
	case rt.Kind() == reflect.Struct:
	case rt.Kind() == reflect.Pointer && rt.Name() == "" && rt.Elem().Kind() == reflect.Struct:
	default:
		return nil
	}
	fnType := reflect.FuncOf(nil, []reflect.Type{rt}, false)
	fn := reflect.MakeFunc(fnType, func([]reflect.Value) []reflect.Value {
		if rt.Kind() == reflect.Pointer {
			return []reflect.Value{reflect.New(rt.Elem())}
		}
		return []reflect.Value{reflect.New(rt).Elem()}
	})
	return &Constructor{
		owner: t,
		fn:    fn,
		flags: t.flags&(Public|Private) | Synthetic,
	}
}
