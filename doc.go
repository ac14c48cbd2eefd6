// Package hostbridge resolves and invokes members of host types at runtime
// and dispatches to version-specific implementations.
//
// # Architecture Overview
//
// The module is organized into packages with distinct responsibilities:
//
//	hostbridge/
//	├── typeinfo/     Type descriptors, member tables, compatibility, registry
//	├── member/       Field, method and constructor queries
//	├── resolve/      Overload resolution with supertype fallback
//	├── invoke/       Calls, instantiation and field access with coercion
//	├── caller/       Type name of the calling code
//	├── version/      Host version tags and detection
//	├── capability/   Per-version implementations bound on first use
//	├── wasmhost/     WebAssembly modules exposed as host types
//	├── config/       YAML and environment configuration
//	├── logging/      zap logger shared by all packages
//	├── errors/       Structured error types
//	└── cmd/hostbridge
//
// # Quick Start
//
// Resolve and call a method by argument types:
//
//	t := typeinfo.For[*Account]()
//	m, err := resolve.Method(t, "Deposit", typeinfo.For[int64]())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	balance, err := invoke.Call(m, acct, int64(100))
//
// Bind a version-specific implementation:
//
//	enum, _ := version.NewEnumeration(
//	    version.Entry{Name: "v1_17_R1", Constraint: "~1.17"},
//	    version.Entry{Name: "v1_18_R1", Constraint: "~1.18"},
//	)
//	_, err := version.Init(enum, reportedVersion)
//
//	_ = capability.Provide[Chat, *chatV118](typeinfo.DefaultRegistry(), "v1_18_R1", newChatV118)
//	chat, err := capability.For[Chat]()
//
// # WebAssembly Modules
//
// A module loaded through wasmhost is a virtual type: exported functions are
// methods taking the instance, exported memories are final fields and
// instantiation is the constructor. The same resolver and invoker serve it:
//
//	h, _ := wasmhost.New(ctx, wasmhost.Config{}, nil)
//	mod, err := h.Load(ctx, "calc", wasmBytes, "")
//	inst, err := invoke.Instantiate(mod.Type())
//	sum, err := invoke.Method(mod.Type(), inst, "add", int32(2), int32(3))
//
// # Thread Safety
//
// Descriptors, registries and resolvers are safe for concurrent use. A
// capability is constructed at most once per process for a registry and
// version tag, even under concurrent first use. A wasmhost Instance should be used by one goroutine at a time.
package hostbridge
