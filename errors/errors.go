package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLookup  Phase = "lookup"  // type-by-name lookup
	PhaseResolve Phase = "resolve" // member resolution
	PhaseInvoke  Phase = "invoke"  // invocation, instantiation, field access
	PhaseBind    Phase = "bind"    // capability binding
	PhaseVersion Phase = "version" // host version detection
	PhaseLoad    Phase = "load"    // host module loading
	PhaseConfig  Phase = "config"  // configuration loading
)

// Kind categorizes the error
type Kind string

const (
	KindTypeNotFound          Kind = "type_not_found"
	KindMemberNotFound        Kind = "member_not_found"
	KindIndexOutOfRange       Kind = "index_out_of_range"
	KindAccessDenied          Kind = "access_denied"
	KindInstantiationFailed   Kind = "instantiation_failed"
	KindInvocationFailed      Kind = "invocation_failed"
	KindUnsupportedCapability Kind = "unsupported_capability"
	KindUnsupportedVersion    Kind = "unsupported_version"
	KindInvalidInput          Kind = "invalid_input"
)

// Error is the structured error type used throughout hostbridge
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Member string // field, method or constructor
	Type   string
	Name   string
	Detail string
	// Index and Count are set for KindIndexOutOfRange.
	Index int
	Count int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Member != "" || e.Type != "" || e.Name != "" {
		b.WriteString(": ")
		if e.Member != "" {
			b.WriteString(e.Member)
			b.WriteByte(' ')
		}
		switch {
		case e.Type != "" && e.Name != "":
			b.WriteString(e.Type)
			b.WriteByte('.')
			b.WriteString(e.Name)
		case e.Type != "":
			b.WriteString(e.Type)
		default:
			b.WriteString(e.Name)
		}
	}

	if e.Detail != "" {
		if e.Member != "" || e.Type != "" || e.Name != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// A target without a Phase matches any phase.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase != "" && t.Phase != e.Phase {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf returns the Kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err's chain contains an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return stderrors.Is(err, &Error{Kind: kind})
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Member sets the member kind (field, method, constructor)
func (b *Builder) Member(kind string) *Builder {
	b.err.Member = kind
	return b
}

// Type sets the owning type name
func (b *Builder) Type(name string) *Builder {
	b.err.Type = name
	return b
}

// Name sets the member or capability name
func (b *Builder) Name(name string) *Builder {
	b.err.Name = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for the closed taxonomy

// TypeNotFound creates an error for a type name the registry cannot resolve
func TypeNotFound(name string, cause error) *Error {
	return &Error{
		Phase:  PhaseLookup,
		Kind:   KindTypeNotFound,
		Type:   name,
		Detail: "no type registered under this name",
		Cause:  cause,
	}
}

// MemberNotFound creates an error for a lookup no declared or inherited member satisfied
func MemberNotFound(member, typeName, name, criteria string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindMemberNotFound,
		Member: member,
		Type:   typeName,
		Name:   name,
		Detail: criteria,
	}
}

// IndexOutOfRange creates an error for a positional query past the match count
func IndexOutOfRange(member, typeName string, requested, found int) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindIndexOutOfRange,
		Member: member,
		Type:   typeName,
		Detail: fmt.Sprintf("index %d requested, %d matching", requested, found),
		Value:  requested,
		Index:  requested,
		Count:  found,
	}
}

// AccessDenied creates an error for refused accessibility forcing
func AccessDenied(member, typeName, name, reason string) *Error {
	return &Error{
		Phase:  PhaseInvoke,
		Kind:   KindAccessDenied,
		Member: member,
		Type:   typeName,
		Name:   name,
		Detail: reason,
	}
}

// InstantiationFailed creates an error for types that cannot be constructed
func InstantiationFailed(typeName, reason string) *Error {
	return &Error{
		Phase:  PhaseInvoke,
		Kind:   KindInstantiationFailed,
		Type:   typeName,
		Detail: reason,
	}
}

// InvocationFailed creates an error for a fault raised by invoked code.
// cause should already be unwrapped from any invocation wrapper.
func InvocationFailed(member, typeName, name string, cause error) *Error {
	return &Error{
		Phase:  PhaseInvoke,
		Kind:   KindInvocationFailed,
		Member: member,
		Type:   typeName,
		Name:   name,
		Cause:  cause,
	}
}

// UnsupportedCapability creates an error for a capability with no implementation
// for the running host version
func UnsupportedCapability(capability, versionTag string, cause error) *Error {
	return &Error{
		Phase:  PhaseBind,
		Kind:   KindUnsupportedCapability,
		Name:   capability,
		Detail: fmt.Sprintf("no implementation for version %s", versionTag),
		Value:  versionTag,
		Cause:  cause,
	}
}

// UnsupportedVersion creates an error for a host version outside the enumeration
func UnsupportedVersion(reported string, cause error) *Error {
	return &Error{
		Phase:  PhaseVersion,
		Kind:   KindUnsupportedVersion,
		Detail: fmt.Sprintf("host version %q is not supported", reported),
		Value:  reported,
		Cause:  cause,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
