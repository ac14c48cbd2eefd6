package typeinfo

import (
	"fmt"
	"strings"
)

// Flags is a bitset of declaration attributes.
type Flags uint32

const (
	Public Flags = 1 << iota
	Private
	Static
	Final
	Abstract
	Interface
	Synthetic
	Bridge
	Embedded
	Variadic
)

var flagNames = [...]struct {
	flag Flags
	name string
}{
	{Public, "public"},
	{Private, "private"},
	{Static, "static"},
	{Final, "final"},
	{Abstract, "abstract"},
	{Interface, "interface"},
	{Synthetic, "synthetic"},
	{Bridge, "bridge"},
	{Embedded, "embedded"},
	{Variadic, "variadic"},
}

// Has reports whether all bits of x are set.
func (f Flags) Has(x Flags) bool {
	return f&x == x
}

// Bits renders the set as a fixed-width bit pattern, highest flag first.
func (f Flags) Bits() string {
	return fmt.Sprintf("%0*b", len(flagNames), uint32(f))
}

func (f Flags) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			parts = append(parts, fn.name)
		}
	}
	return strings.Join(parts, "|")
}

// MemberKind distinguishes fields, methods and constructors.
type MemberKind uint8

const (
	FieldKind MemberKind = iota
	MethodKind
	ConstructorKind
)

func (k MemberKind) String() string {
	switch k {
	case FieldKind:
		return "field"
	case MethodKind:
		return "method"
	case ConstructorKind:
		return "constructor"
	default:
		return fmt.Sprintf("MemberKind(%d)", uint8(k))
	}
}

// LegalFlags returns the declaration attributes a member of kind k can carry.
// Synthetic and Bridge are not declaration attributes and are excluded.
func (k MemberKind) LegalFlags() Flags {
	switch k {
	case FieldKind:
		return Public | Private | Static | Final | Embedded
	case MethodKind:
		return Public | Private | Static | Abstract | Variadic
	case ConstructorKind:
		return Public | Private | Variadic
	default:
		return 0
	}
}

// MatchMask returns the bits compared when matching a member of kind k.
func (k MemberKind) MatchMask() Flags {
	mask := k.LegalFlags() | Synthetic
	if k == MethodKind {
		mask |= Bridge
	}
	return mask
}

// Inherits reports whether members of kind k are visible through a subtype.
func (k MemberKind) Inherits() bool {
	return k != ConstructorKind
}
