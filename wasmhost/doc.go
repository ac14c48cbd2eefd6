// Package wasmhost exposes WebAssembly modules as virtual host types.
//
// A loaded module becomes a typeinfo.Type named after the module:
//   - every exported function is a public method taking the instance first
//   - every exported memory is a public final field of type api.Memory
//   - instantiation is the type's constructor, with or without a context
//
// Parameter and result types default to the core value types (i32 as int32,
// i64 as int64, f32 as float32, f64 as float64). Optional WIT text refines
// them per export, so "add: func(a: u32, b: u32) -> u32" yields uint32.
// Only WIT types that lower to a single matching core value are applied.
//
// Because the module is an ordinary host type, the resolve and invoke
// packages reach wasm exports exactly like Go members:
//
//	mod, _ := host.Load(ctx, "calc", wasmBytes, "")
//	inst, _ := invoke.Instantiate(mod.Type())
//	sum, _ := invoke.Method(mod.Type(), inst, "add", int32(2), int32(3))
//
// Traps surface as errors.KindInvocationFailed with the runtime error as cause.
package wasmhost
