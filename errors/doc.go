// Package errors provides the structured error taxonomy of hostbridge.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the member kind, owning type, member name and cause chain
// so a failed lookup can be diagnosed without a debugger.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseResolve, errors.KindMemberNotFound).
//		Member("method").
//		Type("example.com/pkg.Server").
//		Detail("required=%08b disallowed=%08b", req, dis).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.TypeNotFound("v1_20_R1.Renderer", cause)
//	err := errors.IndexOutOfRange("field", owner, 5, 2)
//
// All errors implement the standard error interface and support errors.Is/As.
// Is matches on Kind, and on Phase as well when the target sets one.
package errors
