package typeinfo

import (
	"fmt"
	"reflect"
)

// Builder assembles a virtual type whose instances are values of a Go type
// but whose members are supplied explicitly.
type Builder struct {
	t    *Type
	decl declarations
	err  error
}

// NewBuilder starts a virtual type called name. Instances are values of
// instanceType and should implement Typed to report the virtual type.
func NewBuilder(name string, instanceType reflect.Type) *Builder {
	return &Builder{t: &Type{
		name:    name,
		rt:      instanceType,
		flags:   Public,
		virtual: true,
	}}
}

// Super sets the supertype.
func (b *Builder) Super(s *Type) *Builder {
	b.t.super = s
	return b
}

// Flags adds type attributes such as Abstract.
func (b *Builder) Flags(f Flags) *Builder {
	b.t.flags |= f
	return b
}

// Field adds an instance field accessed through get and set. A nil set makes
// the field Final. Visibility follows the name unless flags carries Public
// or Private.
func (b *Builder) Field(name string, typ *Type, get Getter, set Setter, flags Flags) *Builder {
	if get == nil {
		b.fail(fmt.Errorf("field %s needs a getter", name))
		return b
	}
	if flags&(Public|Private) == 0 {
		flags |= nameVisibility(name)
	}
	if set == nil {
		flags |= Final
	}
	b.decl.fields = append(b.decl.fields, &Field{
		owner: b.t,
		typ:   typ,
		name:  name,
		get:   get,
		set:   set,
		flags: flags,
	})
	return b
}

// Method adds a method. Unless flags has Static, fn takes the instance as its
// first argument.
func (b *Builder) Method(name string, fn any, flags Flags) *Builder {
	rv := reflect.ValueOf(fn)
	if err := checkFunc(rv, "method "+name); err != nil {
		b.fail(err)
		return b
	}
	ft := rv.Type()
	first := 1
	if flags&Static != 0 {
		first = 0
	} else if ft.NumIn() == 0 || (b.t.rt != nil && !b.t.rt.AssignableTo(ft.In(0))) {
		b.fail(fmt.Errorf("method %s must take the instance as its first argument", name))
		return b
	}
	if ft.IsVariadic() {
		flags |= Variadic
	}
	if flags&(Public|Private) == 0 {
		flags |= nameVisibility(name)
	}
	b.decl.methods = append(b.decl.methods, &Method{
		owner:  b.t,
		result: resultType(ft),
		fn:     rv,
		name:   name,
		params: inTypes(ft, first),
		flags:  flags,
	})
	return b
}

// Constructor adds a constructor returning an instance, optionally followed by an error.
func (b *Builder) Constructor(fn any, flags Flags) *Builder {
	rv := reflect.ValueOf(fn)
	if err := checkFunc(rv, "constructor"); err != nil {
		b.fail(err)
		return b
	}
	ft := rv.Type()
	if ft.NumOut() == 0 || (b.t.rt != nil && !ft.Out(0).AssignableTo(b.t.rt)) {
		b.fail(fmt.Errorf("constructor %s must return %s", ft, b.t.rt))
		return b
	}
	if flags&(Public|Private) == 0 {
		flags |= Public
	}
	if ft.IsVariadic() {
		flags |= Variadic
	}
	b.decl.ctors = append(b.decl.ctors, &Constructor{
		owner:  b.t,
		fn:     rv,
		params: inTypes(ft, 0),
		flags:  flags,
	})
	return b
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Build returns the type or the first error recorded while building.
func (b *Builder) Build() (*Type, error) {
	if b.err != nil {
		return nil, b.err
	}
	decl := b.decl
	b.t.decl = &decl
	return b.t, nil
}
