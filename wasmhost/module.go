package wasmhost

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync/atomic"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/typeinfo"
)

var (
	instanceType = reflect.TypeFor[*Instance]()
	errorType    = reflect.TypeFor[error]()
)

// Module is a compiled module and its host type.
type Module struct {
	host      *Host
	compiled  wazero.CompiledModule
	typ       *typeinfo.Type
	name      string
	functions []*export
	memories  []string
}

// Name returns the module name.
func (m *Module) Name() string { return m.name }

// Type returns the module's host type.
func (m *Module) Type() *typeinfo.Type { return m.typ }

// Instantiate creates an instance. Calls on the instance run under ctx.
func (m *Module) Instantiate(ctx context.Context) (*Instance, error) {
	mod, err := m.host.runtime.InstantiateModule(ctx, m.compiled, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		return nil, errors.New(errors.PhaseLoad, errors.KindInstantiationFailed).
			Type(m.name).
			Cause(err).
			Build()
	}
	return &Instance{module: m, mod: mod, ctx: ctx}, nil
}

func (m *Module) buildType(sigs map[string]*signature) (*typeinfo.Type, error) {
	b := typeinfo.NewBuilder(m.name, instanceType)

	defs := m.compiled.ExportedFunctions()
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, c := defs[names[i]], defs[names[j]]
		if a.Index() != c.Index() {
			return a.Index() < c.Index()
		}
		return names[i] < names[j]
	})
	for _, name := range names {
		e, err := newExport(name, defs[name], sigs[name])
		if err != nil {
			return nil, err
		}
		m.functions = append(m.functions, e)
		b.Method(name, e.adapter(), typeinfo.Public)
	}

	for name := range m.compiled.ExportedMemories() {
		m.memories = append(m.memories, name)
	}
	sort.Strings(m.memories)
	for _, name := range m.memories {
		b.Field(name, typeinfo.For[api.Memory](), memoryGetter(name), nil, typeinfo.Public)
	}

	b.Constructor(func() (*Instance, error) {
		return m.Instantiate(context.Background())
	}, typeinfo.Public)
	b.Constructor(func(ctx context.Context) (*Instance, error) {
		return m.Instantiate(ctx)
	}, typeinfo.Public)

	return b.Build()
}

func memoryGetter(name string) typeinfo.Getter {
	return func(recv reflect.Value) (reflect.Value, error) {
		inst, ok := recv.Interface().(*Instance)
		if !ok || inst == nil {
			return reflect.Value{}, fmt.Errorf("memory %s: receiver is %s", name, recv.Type())
		}
		mem := inst.mod.ExportedMemory(name)
		if mem == nil {
			return reflect.Value{}, fmt.Errorf("memory %s not exported", name)
		}
		return reflect.ValueOf(&mem).Elem(), nil
	}
}

// Instance is an instantiated module. It reports its module's type to
// typeinfo.Of.
type Instance struct {
	module *Module
	mod    api.Module
	ctx    context.Context
	closed atomic.Bool
}

// HostType implements typeinfo.Typed.
func (i *Instance) HostType() *typeinfo.Type { return i.module.typ }

// Module returns the underlying wazero module.
func (i *Instance) Module() api.Module { return i.mod }

// Close releases the instance.
func (i *Instance) Close(ctx context.Context) error {
	if !i.closed.CompareAndSwap(false, true) {
		return nil
	}
	return i.mod.Close(ctx)
}

// export adapts one exported function to a Go function value.
type export struct {
	def     api.FunctionDefinition
	name    string
	params  []valueType
	results []valueType
}

func newExport(name string, def api.FunctionDefinition, sig *signature) (*export, error) {
	e := &export{def: def, name: name}
	var err error
	if e.params, err = valueTypes(def.ParamTypes(), sig.paramTypes()); err != nil {
		return nil, fmt.Errorf("export %s params: %w", name, err)
	}
	if e.results, err = valueTypes(def.ResultTypes(), sig.resultTypes()); err != nil {
		return nil, fmt.Errorf("export %s results: %w", name, err)
	}
	return e, nil
}

// adapter returns func(*Instance, params...) (results..., error).
func (e *export) adapter() any {
	in := make([]reflect.Type, 0, len(e.params)+1)
	in = append(in, instanceType)
	for _, p := range e.params {
		in = append(in, p.goType)
	}
	out := make([]reflect.Type, 0, len(e.results)+1)
	for _, r := range e.results {
		out = append(out, r.goType)
	}
	out = append(out, errorType)

	ft := reflect.FuncOf(in, out, false)
	return reflect.MakeFunc(ft, func(args []reflect.Value) []reflect.Value {
		inst, _ := args[0].Interface().(*Instance)
		results, err := e.call(inst, args[1:])
		vals := make([]reflect.Value, len(out))
		for i, r := range e.results {
			if err != nil {
				vals[i] = reflect.Zero(r.goType)
				continue
			}
			vals[i] = results[i]
		}
		vals[len(vals)-1] = reflect.Zero(errorType)
		if err != nil {
			vals[len(vals)-1] = reflect.ValueOf(&err).Elem()
		}
		return vals
	}).Interface()
}

func (e *export) call(inst *Instance, args []reflect.Value) ([]reflect.Value, error) {
	if inst == nil {
		return nil, fmt.Errorf("%s called on nil instance", e.name)
	}
	fn := inst.mod.ExportedFunction(e.name)
	if fn == nil {
		return nil, fmt.Errorf("function %s not exported", e.name)
	}
	stack := make([]uint64, len(args))
	for i, a := range args {
		stack[i] = encode(a, e.params[i].core)
	}
	raw, err := fn.Call(inst.ctx, stack...)
	if err != nil {
		return nil, &typeinfo.TargetError{Err: err}
	}
	if len(raw) != len(e.results) {
		return nil, fmt.Errorf("%s returned %d values, want %d", e.name, len(raw), len(e.results))
	}
	results := make([]reflect.Value, len(raw))
	for i, r := range raw {
		results[i] = decode(r, e.results[i])
	}
	return results, nil
}
