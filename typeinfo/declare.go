package typeinfo

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

type declarations struct {
	fields  []*Field
	methods []*Method
	ctors   []*Constructor
}

// Declarer adds members Go reflection cannot see to a type: constructors,
// package-level variables and functions.
type Declarer struct {
	t *Type
}

// Declare returns a Declarer for t.
func Declare(t *Type) *Declarer {
	return &Declarer{t: t}
}

// DeclareFor returns a Declarer for T.
func DeclareFor[T any]() *Declarer {
	return Declare(For[T]())
}

// Type returns the type being declared.
func (d *Declarer) Type() *Type {
	return d.t
}

// Constructor declares fn as a constructor. fn must return the type's Go type
// (or something assignable to it), optionally followed by an error.
// Visibility follows fn's name.
func (d *Declarer) Constructor(fn any) error {
	rv := reflect.ValueOf(fn)
	if err := checkFunc(rv, "constructor"); err != nil {
		return err
	}
	ft := rv.Type()
	if d.t.rt == nil || ft.NumOut() == 0 || !ft.Out(0).AssignableTo(d.t.rt) {
		return fmt.Errorf("constructor %s must return %s", ft, d.t.name)
	}
	if ft.NumOut() > 2 || (ft.NumOut() == 2 && !isErrorType(ft.Out(1))) {
		return fmt.Errorf("constructor %s may only return an instance and an error", ft)
	}
	flags := funcVisibility(rv)
	if ft.IsVariadic() {
		flags |= Variadic
	}
	d.add(func(dc *declarations) {
		dc.ctors = append(dc.ctors, &Constructor{
			owner:  d.t,
			fn:     rv,
			params: inTypes(ft, 0),
			flags:  flags,
		})
	})
	return nil
}

// StaticField declares the variable ptr points to as a static field.
func (d *Declarer) StaticField(name string, ptr any) error {
	rv := reflect.ValueOf(ptr)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("static field %s needs a non-nil pointer, got %T", name, ptr)
	}
	d.add(func(dc *declarations) {
		dc.fields = append(dc.fields, &Field{
			owner:  d.t,
			typ:    TypeOf(rv.Type().Elem()),
			name:   name,
			static: rv,
			flags:  nameVisibility(name) | Static,
		})
	})
	return nil
}

// Const declares a static final field holding value.
func (d *Declarer) Const(name string, value any) error {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() {
		return fmt.Errorf("constant %s needs a typed value", name)
	}
	d.add(func(dc *declarations) {
		dc.fields = append(dc.fields, &Field{
			owner:  d.t,
			typ:    TypeOf(rv.Type()),
			name:   name,
			static: rv,
			flags:  nameVisibility(name) | Static | Final,
		})
	})
	return nil
}

// StaticMethod declares a package-level function as a static method.
func (d *Declarer) StaticMethod(name string, fn any) error {
	rv := reflect.ValueOf(fn)
	if err := checkFunc(rv, "static method "+name); err != nil {
		return err
	}
	ft := rv.Type()
	flags := nameVisibility(name) | Static
	if ft.IsVariadic() {
		flags |= Variadic
	}
	d.add(func(dc *declarations) {
		dc.methods = append(dc.methods, &Method{
			owner:  d.t,
			result: resultType(ft),
			fn:     rv,
			name:   name,
			params: inTypes(ft, 0),
			flags:  flags,
		})
	})
	return nil
}

func (d *Declarer) add(fn func(*declarations)) {
	d.t.mu.Lock()
	defer d.t.mu.Unlock()
	if d.t.decl == nil {
		d.t.decl = &declarations{}
	}
	fn(d.t.decl)
	d.t.members = nil
}

func checkFunc(rv reflect.Value, what string) error {
	if !rv.IsValid() || rv.Kind() != reflect.Func || rv.IsNil() {
		return fmt.Errorf("%s must be a non-nil function", what)
	}
	return nil
}

func inTypes(ft reflect.Type, first int) []*Type {
	params := make([]*Type, 0, ft.NumIn()-first)
	for i := first; i < ft.NumIn(); i++ {
		params = append(params, TypeOf(ft.In(i)))
	}
	return params
}

var errorType = reflect.TypeFor[error]()

func isErrorType(rt reflect.Type) bool {
	return rt == errorType
}

func nameVisibility(name string) Flags {
	if isExportedName(name) {
		return Public
	}
	return Private
}

// funcVisibility derives visibility from the function's symbol name.
// Closures and unnamed functions count as private.
func funcVisibility(rv reflect.Value) Flags {
	f := runtime.FuncForPC(rv.Pointer())
	if f == nil {
		return Private
	}
	name := strings.ReplaceAll(f.Name(), "[...]", "")
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	parts := strings.Split(name, ".")
	if len(parts) != 2 {
		return Private
	}
	return nameVisibility(parts[1])
}
