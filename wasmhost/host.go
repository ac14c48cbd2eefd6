package wasmhost

import (
	"context"
	"sort"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/logging"
	"github.com/wippyai/hostbridge/typeinfo"
)

// Config holds runtime settings.
type Config struct {
	// MemoryLimitPages caps each instance's memory in 64KiB pages.
	// 0 keeps the runtime default.
	MemoryLimitPages uint32

	// CloseOnContextDone stops running calls when their context ends.
	CloseOnContextDone bool

	// WASI instantiates wasi_snapshot_preview1 so modules importing it load.
	WASI bool
}

// Host owns a wazero runtime and the types of the modules loaded into it.
type Host struct {
	runtime  wazero.Runtime
	registry *typeinfo.Registry
	modules  map[string]*Module
	mu       sync.Mutex
}

// New creates a Host registering module types in reg
// (typeinfo.DefaultRegistry() when nil).
func New(ctx context.Context, cfg Config, reg *typeinfo.Registry) (*Host, error) {
	rc := wazero.NewRuntimeConfig().WithCloseOnContextDone(cfg.CloseOnContextDone)
	if cfg.MemoryLimitPages > 0 {
		rc = rc.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	r := wazero.NewRuntimeWithConfig(ctx, rc)

	if cfg.WASI {
		if _, err := wasi_snapshot_preview1.Instantiate(ctx, r); err != nil {
			_ = r.Close(ctx)
			return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "instantiate WASI")
		}
	}
	if reg == nil {
		reg = typeinfo.DefaultRegistry()
	}
	return &Host{
		runtime:  r,
		registry: reg,
		modules:  make(map[string]*Module),
	}, nil
}

// Registry returns the registry module types are declared in.
func (h *Host) Registry() *typeinfo.Registry {
	return h.registry
}

// Load compiles wasm and registers its type under name. witText may be empty.
func (h *Host) Load(ctx context.Context, name string, wasm []byte, witText string) (*Module, error) {
	if name == "" {
		return nil, errors.InvalidInput(errors.PhaseLoad, "module name is empty")
	}
	var sigs map[string]*signature
	if witText != "" {
		var err error
		if sigs, err = parseWitFunctions(witText); err != nil {
			return nil, err
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.modules[name]; ok {
		return nil, errors.InvalidInput(errors.PhaseLoad, "module "+name+" already loaded")
	}

	compiled, err := h.runtime.CompileModule(ctx, wasm)
	if err != nil {
		return nil, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
			Type(name).
			Detail("compile failed").
			Cause(err).
			Build()
	}

	m := &Module{host: h, name: name, compiled: compiled}
	if m.typ, err = m.buildType(sigs); err != nil {
		_ = compiled.Close(ctx)
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "build type for "+name)
	}
	if err := h.registry.RegisterAs(name, m.typ); err != nil {
		_ = compiled.Close(ctx)
		return nil, err
	}
	h.modules[name] = m

	logging.Debugf("loaded wasm module {} ({} functions, {} memories)", name, len(m.functions), len(m.memories))
	return m, nil
}

// Module returns a loaded module.
func (h *Host) Module(name string) (*Module, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.modules[name]
	return m, ok
}

// Modules returns the names of loaded modules, sorted.
func (h *Host) Modules() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	names := make([]string, 0, len(h.modules))
	for name := range h.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Unload removes a module's type and releases its compiled code.
// Existing instances keep running until closed.
func (h *Host) Unload(ctx context.Context, name string) error {
	h.mu.Lock()
	m, ok := h.modules[name]
	delete(h.modules, name)
	h.mu.Unlock()
	if !ok {
		return errors.TypeNotFound(name, typeinfo.ErrNotRegistered)
	}
	h.registry.Unregister(name)
	return m.compiled.Close(ctx)
}

// Close unregisters every module and closes the runtime with all instances.
func (h *Host) Close(ctx context.Context) error {
	h.mu.Lock()
	for name := range h.modules {
		h.registry.Unregister(name)
	}
	h.modules = make(map[string]*Module)
	h.mu.Unlock()
	return h.runtime.Close(ctx)
}
