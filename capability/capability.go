package capability

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/invoke"
	"github.com/wippyai/hostbridge/typeinfo"
	"github.com/wippyai/hostbridge/version"
)

// State is the binding state of one capability.
type State int32

const (
	Unbound State = iota
	Resolving
	Bound
	Failed
)

func (s State) String() string {
	switch s {
	case Unbound:
		return "unbound"
	case Resolving:
		return "resolving"
	case Bound:
		return "bound"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Name returns the registry name of capability's implementation for tag.
func Name(tag version.Tag, capability *typeinfo.Type) string {
	return tag.Namespace() + capability.SimpleName()
}

// Provide registers T as the implementation of capability C for the tag
// called versionName. ctors are declared as constructors of T; without any,
// T's zero-value constructor is used.
func Provide[C, T any](reg *typeinfo.Registry, versionName string, ctors ...any) error {
	capType := typeinfo.For[C]()
	impl := typeinfo.For[T]()
	if !capType.AcceptsInstanceOf(impl) {
		return errors.InvalidInput(errors.PhaseBind,
			fmt.Sprintf("%s does not implement %s", impl.Name(), capType.Name()))
	}
	d := typeinfo.Declare(impl)
	for _, ctor := range ctors {
		if err := d.Constructor(ctor); err != nil {
			return errors.Wrap(errors.PhaseBind, errors.KindInvalidInput, err, "constructor for "+impl.Name())
		}
	}
	return reg.RegisterAs(versionName+"."+capType.SimpleName(), impl)
}

type binding struct {
	state    atomic.Int32
	done     chan struct{}
	instance any
	err      error
}

type bindingKey struct {
	registry   *typeinfo.Registry
	tag        string
	capability *typeinfo.Type
}

// bindings is shared by every Resolver, so a capability is bound at most
// once per process for a registry and tag.
var bindings sync.Map // bindingKey -> *binding

// Resolver binds capabilities for one version tag. Resolvers over the same
// registry and tag see the same bindings; the invoker of whichever resolver
// binds first constructs the instance.
type Resolver struct {
	registry *typeinfo.Registry
	tag      version.Tag
	invoker  *invoke.Invoker
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithInvoker sets the invoker used to instantiate implementations.
func WithInvoker(i *invoke.Invoker) Option {
	return func(r *Resolver) {
		r.invoker = i
	}
}

// NewResolver creates a Resolver over reg for tag. A nil reg means
// typeinfo.DefaultRegistry().
func NewResolver(reg *typeinfo.Registry, tag version.Tag, opts ...Option) *Resolver {
	if reg == nil {
		reg = typeinfo.DefaultRegistry()
	}
	r := &Resolver{
		registry: reg,
		tag:      tag,
		invoker:  invoke.Default,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Tag returns the resolver's version tag.
func (r *Resolver) Tag() version.Tag {
	return r.tag
}

// Instance returns the bound instance of capability, binding it on first
// use. args are passed to the implementation's constructor; they only matter
// for the call that performs the binding.
func (r *Resolver) Instance(capability *typeinfo.Type, args ...any) (any, error) {
	if capability == nil {
		return nil, errors.InvalidInput(errors.PhaseBind, "nil capability")
	}
	b := r.binding(capability)
	if b.state.CompareAndSwap(int32(Unbound), int32(Resolving)) {
		r.settle(b, capability, args)
	} else {
		<-b.done
	}
	return b.instance, b.err
}

// settle binds capability into b. A panic while binding leaves b Failed so
// waiters are always released.
func (r *Resolver) settle(b *binding, capability *typeinfo.Type, args []any) {
	defer close(b.done)
	defer func() {
		if p := recover(); p != nil {
			b.err = errors.InstantiationFailed(capability.Name(), fmt.Sprintf("panic while binding: %v", p))
		}
		if b.err != nil {
			b.instance = nil
			b.state.Store(int32(Failed))
			return
		}
		b.state.Store(int32(Bound))
	}()
	b.instance, b.err = r.bind(capability, args)
}

// StateOf reports the binding state of capability.
func (r *Resolver) StateOf(capability *typeinfo.Type) State {
	v, ok := bindings.Load(r.key(capability))
	if !ok {
		return Unbound
	}
	return State(v.(*binding).state.Load())
}

func (r *Resolver) key(capability *typeinfo.Type) bindingKey {
	return bindingKey{registry: r.registry, tag: r.tag.Name(), capability: capability}
}

func (r *Resolver) binding(capability *typeinfo.Type) *binding {
	k := r.key(capability)
	if v, ok := bindings.Load(k); ok {
		return v.(*binding)
	}
	v, _ := bindings.LoadOrStore(k, &binding{done: make(chan struct{})})
	return v.(*binding)
}

func (r *Resolver) bind(capability *typeinfo.Type, args []any) (any, error) {
	capName := capability.SimpleName()
	if r.tag.IsZero() {
		return nil, errors.UnsupportedCapability(capName, "", fmt.Errorf("no version tag"))
	}
	impl, err := r.registry.Lookup(Name(r.tag, capability))
	if err != nil {
		return nil, errors.UnsupportedCapability(capName, r.tag.Name(), err)
	}
	inst, err := r.invoker.Instantiate(impl, args...)
	if err != nil {
		return nil, err
	}
	if !capability.AcceptsInstanceOf(typeinfo.Of(inst)) {
		return nil, errors.InstantiationFailed(impl.Name(),
			fmt.Sprintf("instance of %s does not implement %s", typeinfo.Of(inst).Name(), capability.Name()))
	}
	return inst, nil
}

// Default returns a resolver over the default registry for the process-wide
// tag set by version.Init. It reports false until the tag is known.
func Default(opts ...Option) (*Resolver, bool) {
	tag, ok := version.Current()
	if !ok {
		return nil, false
	}
	return NewResolver(nil, tag, opts...), true
}

// Instance returns the process-wide binding of capability.
func Instance(capability *typeinfo.Type, args ...any) (any, error) {
	if capability == nil {
		return nil, errors.InvalidInput(errors.PhaseBind, "nil capability")
	}
	r, ok := Default()
	if !ok {
		return nil, uninitialized(capability)
	}
	return r.Instance(capability, args...)
}

// For returns the process-wide binding of capability C.
func For[C any](args ...any) (C, error) {
	r, ok := Default()
	if !ok {
		var zero C
		return zero, uninitialized(typeinfo.For[C]())
	}
	return Get[C](r, args...)
}

func uninitialized(capability *typeinfo.Type) error {
	return errors.UnsupportedCapability(capability.SimpleName(), "", fmt.Errorf("version tag not initialized"))
}

// Get returns the bound instance of capability C.
func Get[C any](r *Resolver, args ...any) (C, error) {
	var zero C
	inst, err := r.Instance(typeinfo.For[C](), args...)
	if err != nil {
		return zero, err
	}
	c, ok := inst.(C)
	if !ok {
		return zero, errors.InstantiationFailed(typeinfo.For[C]().Name(), fmt.Sprintf("bound instance is %T", inst))
	}
	return c, nil
}

// Lazy returns a function binding C on its first call. It suits
// package-level accessors:
//
//	var chat = capability.Lazy[Chat](resolver)
func Lazy[C any](r *Resolver, args ...any) func() (C, error) {
	return func() (C, error) {
		return Get[C](r, args...)
	}
}

// StateFor reports the binding state of capability C.
func StateFor[C any](r *Resolver) State {
	return r.StateOf(typeinfo.For[C]())
}
