// Package member provides declarative search criteria for fields, methods and
// constructors.
//
// A query is a short-lived builder describing required and disallowed
// attribute flags, a main type (field type, method result, constructed type),
// an exact-match switch and optionally the parameter list:
//
//	q := member.Fields().
//		RequireFlags(typeinfo.Static).
//		DisallowFlags(typeinfo.Final).
//		Type(typeinfo.For[int32]())
//
// Flags outside those legal for the member kind are silently dropped. A flag
// both required and disallowed makes the query unmatchable; this is logged as
// a warning, not rejected.
package member
