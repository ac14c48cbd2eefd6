// Package invoke calls resolved members: methods, constructors and field
// accessors.
//
// Arguments are coerced to the declared parameter types. Accepted
// conversions are Go assignability, boxing and unboxing of primitives
// (int32 <-> *int32), upcasting to an embedded supertype, dereferencing a
// receiver pointer, and nil for nillable parameters.
//
// Faults raised by the called code, whether a trailing non-nil error or a
// panic, surface as errors.KindInvocationFailed with the original fault as
// cause. typeinfo.TargetError wrappers and nested invocation failures are
// stripped first.
//
// Unexported struct fields are read and written by forcing accessibility.
// An AccessPolicy decides whether private members may be used at all.
package invoke
