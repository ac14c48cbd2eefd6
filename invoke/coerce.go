package invoke

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/typeinfo"
)

var errorType = reflect.TypeFor[error]()

// coerceArgs converts args to the parameters of ft starting at index first.
// For variadic functions a final slice argument is passed through as is
// (spread reports CallSlice), otherwise the trailing arguments are packed.
func coerceArgs(ft reflect.Type, first int, args []any) (in []reflect.Value, spread bool, err error) {
	fixed := ft.NumIn() - first
	if ft.IsVariadic() {
		fixed--
	}
	if len(args) < fixed || (!ft.IsVariadic() && len(args) != fixed) {
		return nil, false, errors.InvalidInput(errors.PhaseInvoke,
			fmt.Sprintf("%d arguments for %d parameters", len(args), ft.NumIn()-first))
	}

	in = make([]reflect.Value, 0, len(args))
	for k := 0; k < fixed; k++ {
		v, err := coerce(args[k], ft.In(first+k))
		if err != nil {
			return nil, false, errors.InvalidInput(errors.PhaseInvoke, fmt.Sprintf("argument %d: %v", k, err))
		}
		in = append(in, v)
	}
	if !ft.IsVariadic() {
		return in, false, nil
	}

	sliceType := ft.In(ft.NumIn() - 1)
	extra := args[fixed:]
	if len(extra) == 1 && extra[0] != nil && reflect.TypeOf(extra[0]).AssignableTo(sliceType) {
		return append(in, reflect.ValueOf(extra[0])), true, nil
	}
	for k, a := range extra {
		v, err := coerce(a, sliceType.Elem())
		if err != nil {
			return nil, false, errors.InvalidInput(errors.PhaseInvoke, fmt.Sprintf("argument %d: %v", fixed+k, err))
		}
		in = append(in, v)
	}
	return in, false, nil
}

// coerceTo converts v for a parameter declared as t. Virtual types accept
// their Go instance type.
func coerceTo(v any, t *typeinfo.Type) (reflect.Value, error) {
	rt := t.Reflect()
	if rt == nil {
		if v == nil {
			return reflect.Value{}, fmt.Errorf("nil is not a %s", t)
		}
		return reflect.ValueOf(v), nil
	}
	return coerce(v, rt)
}

func coerce(v any, to reflect.Type) (reflect.Value, error) {
	if v == nil {
		if nillable(to) {
			return reflect.Zero(to), nil
		}
		return reflect.Value{}, fmt.Errorf("nil is not a %s", to)
	}
	rv := reflect.ValueOf(v)
	from := rv.Type()
	switch {
	case from.AssignableTo(to):
		return rv, nil
	case to.Kind() == reflect.Pointer && from == to.Elem() && typeinfo.TypeOf(from).IsPrimitive():
		box := reflect.New(from)
		box.Elem().Set(rv)
		return box, nil
	case from.Kind() == reflect.Pointer && from.Elem().AssignableTo(to):
		if rv.IsNil() {
			return reflect.Value{}, fmt.Errorf("nil %s cannot be dereferenced", from)
		}
		return rv.Elem(), nil
	}
	if up, ok := upcast(rv, to); ok {
		return up, nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %s as %s", from, to)
}

// upcast walks the first-embedded-struct chain of rv until a value
// assignable to to is found. Pointer receivers yield pointers into the
// original value.
func upcast(rv reflect.Value, to reflect.Type) (reflect.Value, bool) {
	for {
		ptr := rv.Kind() == reflect.Pointer
		st := rv
		if ptr {
			if rv.IsNil() {
				return reflect.Value{}, false
			}
			st = rv.Elem()
		}
		if st.Kind() != reflect.Struct {
			return reflect.Value{}, false
		}
		if !st.CanAddr() {
			tmp := reflect.New(st.Type()).Elem()
			tmp.Set(st)
			st = tmp
		}
		next, ok := embedded(st)
		if !ok {
			return reflect.Value{}, false
		}
		switch {
		case ptr && next.Kind() != reflect.Pointer && next.CanAddr():
			next = next.Addr()
		case !ptr && next.Kind() == reflect.Pointer:
			if next.IsNil() {
				return reflect.Value{}, false
			}
			next = next.Elem()
		}
		if next.Type().AssignableTo(to) {
			return next, true
		}
		rv = next
	}
}

// embedded returns the first embedded struct field of the addressable struct st.
func embedded(st reflect.Value) (reflect.Value, bool) {
	t := st.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.Anonymous {
			continue
		}
		et := sf.Type
		if et.Kind() == reflect.Pointer {
			et = et.Elem()
		}
		if et.Kind() != reflect.Struct {
			continue
		}
		fv := st.Field(i)
		if !sf.IsExported() {
			fv = reflect.NewAt(fv.Type(), unsafe.Pointer(fv.UnsafeAddr())).Elem()
		}
		return fv, true
	}
	return reflect.Value{}, false
}

func nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return true
	}
	return false
}
