package member

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/hostbridge/caller"
	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/logging"
	"github.com/wippyai/hostbridge/typeinfo"
)

// Query holds the criteria shared by every member kind.
type Query struct {
	mainType   *typeinfo.Type
	name       string
	params     []*typeinfo.Type
	kind       typeinfo.MemberKind
	required   typeinfo.Flags
	disallowed typeinfo.Flags
	hasParams  bool
	exact      bool
}

func (q *Query) require(flags []typeinfo.Flags, mask typeinfo.Flags) {
	for _, f := range flags {
		f &= mask
		if overlap := f & q.disallowed; overlap != 0 {
			logging.WarnWith(builderCaller(), "{} query requires flags it already disallows: {} ({:%b})", q.kind, overlap, uint32(overlap))
		}
		q.required |= f
	}
}

func (q *Query) disallow(flags []typeinfo.Flags, mask typeinfo.Flags) {
	for _, f := range flags {
		f &= mask
		if overlap := f & q.required; overlap != 0 {
			logging.WarnWith(builderCaller(), "{} query disallows flags it already requires: {} ({:%b})", q.kind, overlap, uint32(overlap))
		}
		q.disallowed |= f
	}
}

const pkgPath = "github.com/wippyai/hostbridge/member"

// queryTypes are the frames skipped when naming the code that built a query.
var queryTypes = []string{
	pkgPath,
	pkgPath + ".Query",
	pkgPath + ".FieldQuery",
	pkgPath + ".MethodQuery",
	pkgPath + ".ConstructorQuery",
}

func builderCaller() []zap.Field {
	return []zap.Field{zap.String("caller", caller.CallerType(0, queryTypes...))}
}

// Kind returns the member kind the query selects.
func (q *Query) Kind() typeinfo.MemberKind { return q.kind }

// Required returns the flags a match must carry.
func (q *Query) Required() typeinfo.Flags { return q.required }

// Disallowed returns the flags a match must not carry.
func (q *Query) Disallowed() typeinfo.Flags { return q.disallowed }

// MainType returns the main type constraint, or nil.
func (q *Query) MainType() *typeinfo.Type { return q.mainType }

// Name returns the name filter, or "".
func (q *Query) Name() string { return q.name }

// Exact reports whether types are compared by identity.
func (q *Query) Exact() bool { return q.exact }

// Contradictory reports whether some flag is both required and disallowed.
func (q *Query) Contradictory() bool { return q.required&q.disallowed != 0 }

// Matches reports whether m satisfies every criterion.
func (q *Query) Matches(m typeinfo.Member) bool {
	if m == nil || m.Kind() != q.kind {
		return false
	}
	if q.name != "" && m.Name() != q.name {
		return false
	}
	actual := m.Flags() & q.kind.MatchMask()
	if actual&q.required != q.required || actual&q.disallowed != 0 {
		return false
	}
	if q.mainType != nil && !typeinfo.Compatible(q.mainType, m.MainType(), q.exact) {
		return false
	}
	if q.hasParams {
		exactParams := q.exact && q.kind == typeinfo.ConstructorKind
		if !typeinfo.ParamsCompatible(m.Params(), q.params, exactParams) {
			return false
		}
	}
	return true
}

// NotFoundError describes the criteria that found nothing on owner.
func (q *Query) NotFoundError(owner *typeinfo.Type) error {
	ownerName := ""
	if owner != nil {
		ownerName = owner.Name()
	}
	return errors.MemberNotFound(q.kind.String(), ownerName, q.name, q.String())
}

// String renders the criteria as flag bit patterns plus type names.
func (q *Query) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "required=%s disallowed=%s", q.required.Bits(), q.disallowed.Bits())
	if q.mainType != nil {
		b.WriteString(" type=")
		b.WriteString(q.mainType.Name())
		if q.exact {
			b.WriteString(" (exact)")
		}
	}
	if q.hasParams {
		b.WriteString(" params=(")
		b.WriteString(strings.Join(typeinfo.Names(q.params), ", "))
		b.WriteByte(')')
	}
	return b.String()
}

// Criteria is implemented by every query kind.
type Criteria interface {
	Kind() typeinfo.MemberKind
	Matches(m typeinfo.Member) bool
	NotFoundError(owner *typeinfo.Type) error
}

// FieldQuery selects fields.
type FieldQuery struct {
	Query
}

// Fields starts a field query.
func Fields() *FieldQuery {
	return &FieldQuery{Query{kind: typeinfo.FieldKind}}
}

// RequireFlags ORs flags into the required set.
func (q *FieldQuery) RequireFlags(flags ...typeinfo.Flags) *FieldQuery {
	q.require(flags, q.kind.LegalFlags())
	return q
}

// DisallowFlags ORs flags into the disallowed set.
func (q *FieldQuery) DisallowFlags(flags ...typeinfo.Flags) *FieldQuery {
	q.disallow(flags, q.kind.LegalFlags())
	return q
}

func (q *FieldQuery) RequireSynthetic() *FieldQuery {
	q.require([]typeinfo.Flags{typeinfo.Synthetic}, typeinfo.Synthetic)
	return q
}

func (q *FieldQuery) DisallowSynthetic() *FieldQuery {
	q.disallow([]typeinfo.Flags{typeinfo.Synthetic}, typeinfo.Synthetic)
	return q
}

// Type constrains the field type.
func (q *FieldQuery) Type(t *typeinfo.Type) *FieldQuery {
	q.mainType = t
	return q
}

func (q *FieldQuery) RequireExactTypeMatch() *FieldQuery {
	q.exact = true
	return q
}

// Named restricts matches to one name.
func (q *FieldQuery) Named(name string) *FieldQuery {
	q.name = name
	return q
}

// MethodQuery selects methods.
type MethodQuery struct {
	Query
}

// Methods starts a method query.
func Methods() *MethodQuery {
	return &MethodQuery{Query{kind: typeinfo.MethodKind}}
}

func (q *MethodQuery) RequireFlags(flags ...typeinfo.Flags) *MethodQuery {
	q.require(flags, q.kind.LegalFlags())
	return q
}

func (q *MethodQuery) DisallowFlags(flags ...typeinfo.Flags) *MethodQuery {
	q.disallow(flags, q.kind.LegalFlags())
	return q
}

func (q *MethodQuery) RequireSynthetic() *MethodQuery {
	q.require([]typeinfo.Flags{typeinfo.Synthetic}, typeinfo.Synthetic)
	return q
}

func (q *MethodQuery) DisallowSynthetic() *MethodQuery {
	q.disallow([]typeinfo.Flags{typeinfo.Synthetic}, typeinfo.Synthetic)
	return q
}

// RequireBridge selects compiler-generated pointer wrappers.
func (q *MethodQuery) RequireBridge() *MethodQuery {
	q.require([]typeinfo.Flags{typeinfo.Bridge}, typeinfo.Bridge)
	return q
}

func (q *MethodQuery) DisallowBridge() *MethodQuery {
	q.disallow([]typeinfo.Flags{typeinfo.Bridge}, typeinfo.Bridge)
	return q
}

// Type constrains the method's first result.
func (q *MethodQuery) Type(t *typeinfo.Type) *MethodQuery {
	q.mainType = t
	return q
}

func (q *MethodQuery) RequireExactTypeMatch() *MethodQuery {
	q.exact = true
	return q
}

// Params constrains the parameter list. Parameters are compared non-exactly.
func (q *MethodQuery) Params(types ...*typeinfo.Type) *MethodQuery {
	q.params = types
	q.hasParams = true
	return q
}

func (q *MethodQuery) Named(name string) *MethodQuery {
	q.name = name
	return q
}

// ConstructorQuery selects constructors.
type ConstructorQuery struct {
	Query
}

// Constructors starts a constructor query.
func Constructors() *ConstructorQuery {
	return &ConstructorQuery{Query{kind: typeinfo.ConstructorKind}}
}

func (q *ConstructorQuery) RequireFlags(flags ...typeinfo.Flags) *ConstructorQuery {
	q.require(flags, q.kind.LegalFlags())
	return q
}

func (q *ConstructorQuery) DisallowFlags(flags ...typeinfo.Flags) *ConstructorQuery {
	q.disallow(flags, q.kind.LegalFlags())
	return q
}

func (q *ConstructorQuery) RequireSynthetic() *ConstructorQuery {
	q.require([]typeinfo.Flags{typeinfo.Synthetic}, typeinfo.Synthetic)
	return q
}

func (q *ConstructorQuery) DisallowSynthetic() *ConstructorQuery {
	q.disallow([]typeinfo.Flags{typeinfo.Synthetic}, typeinfo.Synthetic)
	return q
}

// RequireExactTypeMatch compares the constructed type and the parameters by identity.
func (q *ConstructorQuery) RequireExactTypeMatch() *ConstructorQuery {
	q.exact = true
	return q
}

// Params constrains the parameter list.
func (q *ConstructorQuery) Params(types ...*typeinfo.Type) *ConstructorQuery {
	q.params = types
	q.hasParams = true
	return q
}
