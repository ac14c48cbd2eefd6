package invoke

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/resolve"
	"github.com/wippyai/hostbridge/typeinfo"
)

// AccessPolicy reports whether a private member may be forced accessible.
type AccessPolicy func(m typeinfo.Member) bool

// AllowPrivate permits every private member.
func AllowPrivate(typeinfo.Member) bool { return true }

// DenyPrivate refuses every private member.
func DenyPrivate(typeinfo.Member) bool { return false }

// Invoker calls members.
type Invoker struct {
	resolver *resolve.Resolver
	policy   AccessPolicy
}

// Option configures an Invoker.
type Option func(*Invoker)

// WithResolver sets the resolver used by Method and Instantiate.
func WithResolver(r *resolve.Resolver) Option {
	return func(i *Invoker) {
		i.resolver = r
	}
}

// WithAccessPolicy sets the policy for private members.
func WithAccessPolicy(p AccessPolicy) Option {
	return func(i *Invoker) {
		i.policy = p
	}
}

// NewInvoker creates an Invoker that allows private access and uses
// resolve.Default.
func NewInvoker(opts ...Option) *Invoker {
	i := &Invoker{
		resolver: resolve.Default,
		policy:   AllowPrivate,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Default is the invoker used by the package-level functions.
var Default = NewInvoker()

// Call invokes m on recv. recv is ignored for static methods.
// No result yields nil, one result its value, several results a []any.
// A trailing error result is not part of the value.
func (i *Invoker) Call(m *typeinfo.Method, recv any, args ...any) (any, error) {
	if m == nil {
		return nil, errors.InvalidInput(errors.PhaseInvoke, "call of nil method")
	}
	if err := i.checkAccess(m); err != nil {
		return nil, err
	}
	static := m.Flags().Has(typeinfo.Static)
	if !static && recv == nil {
		return nil, errors.InvalidInput(errors.PhaseInvoke, "instance method "+m.Name()+" needs a receiver")
	}

	fn := m.Func()
	var in []reflect.Value
	switch {
	case !fn.IsValid():
		// Abstract method: dispatch on the receiver's dynamic type.
		fn = reflect.ValueOf(recv).MethodByName(m.Name())
		if !fn.IsValid() {
			return nil, errors.InvalidInput(errors.PhaseInvoke,
				fmt.Sprintf("%T does not implement %s", recv, m.Name()))
		}
	case !static:
		rv, err := coerce(recv, fn.Type().In(0))
		if err != nil {
			return nil, errors.InvalidInput(errors.PhaseInvoke, "receiver: "+err.Error())
		}
		in = append(in, rv)
	}

	first := len(in)
	rest, spread, err := coerceArgs(fn.Type(), first, args)
	if err != nil {
		return nil, err
	}
	out, err := i.call(m, fn, append(in, rest...), spread)
	if err != nil {
		return nil, err
	}
	return results(out), nil
}

// New invokes a constructor.
func (i *Invoker) New(c *typeinfo.Constructor, args ...any) (any, error) {
	if c == nil {
		return nil, errors.InvalidInput(errors.PhaseInvoke, "instantiation with nil constructor")
	}
	if err := instantiable(c.Owner()); err != nil {
		return nil, err
	}
	if err := i.checkAccess(c); err != nil {
		return nil, err
	}
	fn := c.Func()
	in, spread, err := coerceArgs(fn.Type(), 0, args)
	if err != nil {
		return nil, err
	}
	out, err := i.call(c, fn, in, spread)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, errors.InstantiationFailed(c.Owner().Name(), "constructor returned no instance")
	}
	return out[0].Interface(), nil
}

// Get reads f from recv. recv is ignored for static fields.
func (i *Invoker) Get(f *typeinfo.Field, recv any) (any, error) {
	if f == nil {
		return nil, errors.InvalidInput(errors.PhaseInvoke, "read of nil field")
	}
	if err := i.checkAccess(f); err != nil {
		return nil, err
	}

	if f.Flags().Has(typeinfo.Static) {
		sv := f.StaticValue()
		if f.Flags().Has(typeinfo.Final) {
			return sv.Interface(), nil
		}
		return sv.Elem().Interface(), nil
	}
	if recv == nil {
		return nil, errors.InvalidInput(errors.PhaseInvoke, "instance field "+f.Name()+" needs a receiver")
	}

	if get, _ := f.Accessors(); get != nil {
		v, err := get(reflect.ValueOf(recv))
		if err != nil {
			return nil, failed(f, err)
		}
		return v.Interface(), nil
	}

	fv, err := structField(f, reflect.ValueOf(recv), false)
	if err != nil {
		return nil, err
	}
	return fv.Interface(), nil
}

// Set writes value to f on recv. Struct fields need a pointer receiver.
func (i *Invoker) Set(f *typeinfo.Field, recv any, value any) error {
	if f == nil {
		return errors.InvalidInput(errors.PhaseInvoke, "write of nil field")
	}
	if f.Flags().Has(typeinfo.Final) {
		return errors.AccessDenied("field", f.Owner().Name(), f.Name(), "field is final")
	}
	if err := i.checkAccess(f); err != nil {
		return err
	}

	if f.Flags().Has(typeinfo.Static) {
		target := f.StaticValue().Elem()
		v, err := coerce(value, target.Type())
		if err != nil {
			return errors.InvalidInput(errors.PhaseInvoke, "field "+f.Name()+": "+err.Error())
		}
		target.Set(v)
		return nil
	}
	if recv == nil {
		return errors.InvalidInput(errors.PhaseInvoke, "instance field "+f.Name()+" needs a receiver")
	}

	if _, set := f.Accessors(); set != nil {
		v, err := coerceTo(value, f.MainType())
		if err != nil {
			return errors.InvalidInput(errors.PhaseInvoke, "field "+f.Name()+": "+err.Error())
		}
		if err := set(reflect.ValueOf(recv), v); err != nil {
			return failed(f, err)
		}
		return nil
	}

	fv, err := structField(f, reflect.ValueOf(recv), true)
	if err != nil {
		return err
	}
	v, err := coerce(value, fv.Type())
	if err != nil {
		return errors.InvalidInput(errors.PhaseInvoke, "field "+f.Name()+": "+err.Error())
	}
	fv.Set(v)
	return nil
}

// Method resolves name on t from the runtime types of args and calls it.
// A nil argument matches any nillable parameter, so it cannot pick between
// overloads.
func (i *Invoker) Method(t *typeinfo.Type, recv any, name string, args ...any) (any, error) {
	m, err := i.resolver.Method(t, name, typeinfo.TypesOf(args...)...)
	if err != nil {
		return nil, err
	}
	return i.Call(m, recv, args...)
}

// Instantiate resolves a constructor of t from the runtime types of args and
// calls it.
func (i *Invoker) Instantiate(t *typeinfo.Type, args ...any) (any, error) {
	if t == nil {
		return nil, errors.InvalidInput(errors.PhaseInvoke, "instantiation of nil type")
	}
	if err := instantiable(t); err != nil {
		return nil, err
	}
	c, err := i.resolver.Constructor(t, typeinfo.TypesOf(args...)...)
	if err != nil {
		return nil, err
	}
	return i.New(c, args...)
}

func (i *Invoker) checkAccess(m typeinfo.Member) error {
	if !m.Flags().Has(typeinfo.Private) || i.policy == nil || i.policy(m) {
		return nil
	}
	return errors.AccessDenied(m.Kind().String(), m.Owner().Name(), m.Name(), "private access refused by policy")
}

func (i *Invoker) call(m typeinfo.Member, fn reflect.Value, in []reflect.Value, spread bool) (out []reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = failed(m, panicError(r))
		}
	}()
	if spread {
		out = fn.CallSlice(in)
	} else {
		out = fn.Call(in)
	}
	if n := len(out); n > 0 && out[n-1].Type() == errorType {
		if e, _ := out[n-1].Interface().(error); e != nil {
			return nil, failed(m, e)
		}
		out = out[:n-1]
	}
	return out, nil
}

func instantiable(t *typeinfo.Type) error {
	switch {
	case t.IsAbstract():
		return errors.InstantiationFailed(t.Name(), "type is abstract")
	case t.IsPrimitive():
		return errors.InstantiationFailed(t.Name(), "type is primitive")
	case t == typeinfo.Unknown || t == typeinfo.Void:
		return errors.InstantiationFailed(t.Name(), "type is a placeholder")
	}
	return nil
}

// structField locates the field of recv backing f, forcing access to
// unexported fields. Writes need an addressable receiver.
func structField(f *typeinfo.Field, rv reflect.Value, write bool) (reflect.Value, error) {
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, errors.InvalidInput(errors.PhaseInvoke, "nil receiver for field "+f.Name())
		}
		rv = rv.Elem()
	} else if write {
		return reflect.Value{}, errors.AccessDenied("field", f.Owner().Name(), f.Name(), "receiver is not addressable")
	}

	owner := f.Owner().Reflect()
	if owner == nil || f.StructIndex() == nil {
		return reflect.Value{}, errors.InvalidInput(errors.PhaseInvoke, "field "+f.Name()+" has no storage")
	}
	if rv.Type() != owner {
		up, ok := upcast(rv, owner)
		if !ok {
			return reflect.Value{}, errors.InvalidInput(errors.PhaseInvoke,
				fmt.Sprintf("receiver %s has no field %s.%s", rv.Type(), f.Owner().Name(), f.Name()))
		}
		rv = up
	}
	if !rv.CanAddr() {
		tmp := reflect.New(rv.Type()).Elem()
		tmp.Set(rv)
		rv = tmp
	}

	fv, err := rv.FieldByIndexErr(f.StructIndex())
	if err != nil {
		return reflect.Value{}, errors.InvalidInput(errors.PhaseInvoke, err.Error())
	}
	if !fv.CanInterface() || (write && !fv.CanSet()) {
		fv = reflect.NewAt(fv.Type(), unsafe.Pointer(fv.UnsafeAddr())).Elem()
	}
	return fv, nil
}

func failed(m typeinfo.Member, cause error) error {
	return errors.InvocationFailed(m.Kind().String(), m.Owner().Name(), m.Name(), unwrapTarget(cause))
}

// unwrapTarget strips TargetError wrappers and nested invocation failures.
func unwrapTarget(err error) error {
	for {
		switch e := err.(type) {
		case *typeinfo.TargetError:
			if e.Err == nil {
				return err
			}
			err = e.Err
		case *errors.Error:
			if e.Kind != errors.KindInvocationFailed || e.Cause == nil {
				return err
			}
			err = e.Cause
		default:
			return err
		}
	}
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", r)
}

func results(out []reflect.Value) any {
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0].Interface()
	}
	vals := make([]any, len(out))
	for i, v := range out {
		vals[i] = v.Interface()
	}
	return vals
}
