// Package resolve finds fields, methods and constructors on a typeinfo.Type.
//
// # Resolution Modes
//
// By name and parameter types (methods, constructors, fields by name):
//
//  1. Own declared member with identical parameter types
//  2. Own declared member with compatible parameter types (same name, same arity)
//  3. Supertype's public members, repeating 1 and 2 (skipped for constructors,
//     or when hierarchy matching is disabled)
//
// By query: the n-th own declared member, in declaration order, that
// satisfies a member.Criteria. Query mode never consults the supertype:
// it exists to pick one of several same-named members the compiler generated,
// and positions are only stable within one type.
//
// Resolution holds no locks beyond the type's member cache and never logs.
package resolve
