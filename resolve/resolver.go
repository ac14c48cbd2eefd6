package resolve

import (
	"reflect"
	"strings"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/member"
	"github.com/wippyai/hostbridge/typeinfo"
)

// Resolver locates members. The zero value has hierarchy matching disabled;
// use New.
type Resolver struct {
	hierarchy bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHierarchy toggles the supertype fallback. It is on by default.
func WithHierarchy(enabled bool) Option {
	return func(r *Resolver) {
		r.hierarchy = enabled
	}
}

// New creates a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{hierarchy: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Default is the resolver used by the package-level functions.
var Default = New()

// Hierarchy reports whether the supertype fallback is enabled.
func (r *Resolver) Hierarchy() bool {
	return r.hierarchy
}

// Method resolves a method by name and parameter types.
func (r *Resolver) Method(t *typeinfo.Type, name string, params ...*typeinfo.Type) (*typeinfo.Method, error) {
	if t == nil {
		return nil, errors.InvalidInput(errors.PhaseResolve, "method lookup on nil type")
	}
	publicOnly := false
	for cur := t; cur != nil; cur = cur.Super() {
		if m := matchMethod(cur.Methods(), name, params, publicOnly); m != nil {
			return m, nil
		}
		if !r.hierarchy {
			break
		}
		publicOnly = true
	}
	return nil, errors.MemberNotFound("method", t.Name(), name, signature(params))
}

// Constructor resolves a constructor by parameter types. Constructors are
// not inherited, so the supertype is never consulted.
func (r *Resolver) Constructor(t *typeinfo.Type, params ...*typeinfo.Type) (*typeinfo.Constructor, error) {
	if t == nil {
		return nil, errors.InvalidInput(errors.PhaseResolve, "constructor lookup on nil type")
	}
	ctors := t.Constructors()
	for _, exact := range []bool{true, false} {
		for _, c := range ctors {
			if typeinfo.ParamsCompatible(c.Params(), params, exact) {
				return c, nil
			}
		}
	}
	return nil, errors.MemberNotFound("constructor", t.Name(), "", signature(params))
}

// Field resolves a field by exact name: own declared fields first, then
// public fields up the supertype chain.
func (r *Resolver) Field(t *typeinfo.Type, name string) (*typeinfo.Field, error) {
	if t == nil {
		return nil, errors.InvalidInput(errors.PhaseResolve, "field lookup on nil type")
	}
	publicOnly := false
	for cur := t; cur != nil; cur = cur.Super() {
		for _, f := range cur.Fields() {
			if f.Name() != name {
				continue
			}
			if publicOnly && !f.Flags().Has(typeinfo.Public) {
				continue
			}
			return f, nil
		}
		if !r.hierarchy {
			break
		}
		publicOnly = true
	}
	return nil, errors.MemberNotFound("field", t.Name(), name, "")
}

// Find returns the index-th own declared member satisfying q.
func (r *Resolver) Find(t *typeinfo.Type, q member.Criteria, index int) (typeinfo.Member, error) {
	if t == nil || nilCriteria(q) {
		return nil, errors.InvalidInput(errors.PhaseResolve, "query lookup needs a type and a query")
	}
	if index < 0 {
		return nil, errors.InvalidInput(errors.PhaseResolve, "query index must not be negative")
	}
	found := 0
	for _, m := range t.Members(q.Kind()) {
		if !q.Matches(m) {
			continue
		}
		if found == index {
			return m, nil
		}
		found++
	}
	if found == 0 {
		return nil, q.NotFoundError(t)
	}
	return nil, errors.IndexOutOfRange(q.Kind().String(), t.Name(), index, found)
}

// FindAll returns every own declared member satisfying q, in declaration order.
func (r *Resolver) FindAll(t *typeinfo.Type, q member.Criteria) []typeinfo.Member {
	if t == nil || nilCriteria(q) {
		return nil
	}
	var out []typeinfo.Member
	for _, m := range t.Members(q.Kind()) {
		if q.Matches(m) {
			out = append(out, m)
		}
	}
	return out
}

// nilCriteria also catches a nil query pointer stored in the interface.
func nilCriteria(q member.Criteria) bool {
	if q == nil {
		return true
	}
	v := reflect.ValueOf(q)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// FindField returns the index-th own field satisfying q.
func (r *Resolver) FindField(t *typeinfo.Type, q *member.FieldQuery, index int) (*typeinfo.Field, error) {
	m, err := r.Find(t, q, index)
	if err != nil {
		return nil, err
	}
	return m.(*typeinfo.Field), nil
}

// FindMethod returns the index-th own method satisfying q.
func (r *Resolver) FindMethod(t *typeinfo.Type, q *member.MethodQuery, index int) (*typeinfo.Method, error) {
	m, err := r.Find(t, q, index)
	if err != nil {
		return nil, err
	}
	return m.(*typeinfo.Method), nil
}

// FindConstructor returns the index-th constructor satisfying q.
func (r *Resolver) FindConstructor(t *typeinfo.Type, q *member.ConstructorQuery, index int) (*typeinfo.Constructor, error) {
	m, err := r.Find(t, q, index)
	if err != nil {
		return nil, err
	}
	return m.(*typeinfo.Constructor), nil
}

// matchMethod scans methods for name, first with identical parameter types,
// then with compatible ones.
func matchMethod(methods []*typeinfo.Method, name string, params []*typeinfo.Type, publicOnly bool) *typeinfo.Method {
	for _, exact := range []bool{true, false} {
		for _, m := range methods {
			if m.Name() != name {
				continue
			}
			if publicOnly && !m.Flags().Has(typeinfo.Public) {
				continue
			}
			if typeinfo.ParamsCompatible(m.Params(), params, exact) {
				return m
			}
		}
	}
	return nil
}

func signature(params []*typeinfo.Type) string {
	return "params=(" + strings.Join(typeinfo.Names(params), ", ") + ")"
}
