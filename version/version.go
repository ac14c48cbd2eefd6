// Package version maps a host-reported version string onto an ordered set of
// named tags. Tags name the versioned implementations the capability
// resolver binds.
package version

import (
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/Masterminds/semver/v3"

	"github.com/wippyai/hostbridge/errors"
)

// Entry declares a tag and the host versions it covers.
type Entry struct {
	Name       string `mapstructure:"name" yaml:"name"`
	Constraint string `mapstructure:"constraint" yaml:"constraint"`
}

type compiled struct {
	name       string
	raw        string
	constraint *semver.Constraints
}

// Enumeration is an ordered list of tags. Order defines the tag ordinals.
type Enumeration struct {
	entries []compiled
}

// NewEnumeration validates and compiles entries.
func NewEnumeration(entries ...Entry) (*Enumeration, error) {
	if len(entries) == 0 {
		return nil, errors.InvalidInput(errors.PhaseVersion, "enumeration needs at least one entry")
	}
	e := &Enumeration{entries: make([]compiled, 0, len(entries))}
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		name := strings.TrimSpace(entry.Name)
		if name == "" || strings.ContainsAny(name, ". ") {
			return nil, errors.InvalidInput(errors.PhaseVersion, fmt.Sprintf("invalid tag name %q", entry.Name))
		}
		if seen[name] {
			return nil, errors.InvalidInput(errors.PhaseVersion, "duplicate tag "+name)
		}
		seen[name] = true
		c, err := semver.NewConstraint(entry.Constraint)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseVersion, errors.KindInvalidInput, err,
				fmt.Sprintf("tag %s: bad constraint %q", name, entry.Constraint))
		}
		e.entries = append(e.entries, compiled{name: name, raw: entry.Constraint, constraint: c})
	}
	return e, nil
}

// Tags returns every tag in order.
func (e *Enumeration) Tags() []Tag {
	tags := make([]Tag, len(e.entries))
	for i := range e.entries {
		tags[i] = Tag{enum: e, ordinal: i}
	}
	return tags
}

// Entries returns the declarations the enumeration was built from.
func (e *Enumeration) Entries() []Entry {
	out := make([]Entry, len(e.entries))
	for i, c := range e.entries {
		out[i] = Entry{Name: c.name, Constraint: c.raw}
	}
	return out
}

// Tag returns the tag called name.
func (e *Enumeration) Tag(name string) (Tag, bool) {
	for i, c := range e.entries {
		if c.name == name {
			return Tag{enum: e, ordinal: i}, true
		}
	}
	return Tag{}, false
}

// Detect returns the first tag whose constraint accepts reported.
// Unknown versions fail with errors.KindUnsupportedVersion.
func (e *Enumeration) Detect(reported string) (Tag, error) {
	v, err := Parse(reported)
	if err != nil {
		return Tag{}, errors.UnsupportedVersion(reported, err)
	}
	for i, c := range e.entries {
		if c.constraint.Check(v) {
			return Tag{enum: e, ordinal: i}, nil
		}
	}
	return Tag{}, errors.UnsupportedVersion(reported, fmt.Errorf("%s matches no known tag", v))
}

var versionPattern = regexp.MustCompile(`\d+\.\d+(\.\d+)?`)

// Parse extracts a release version from a host version string. Pre-release
// and build suffixes are dropped ("1.16.5-R0.1-SNAPSHOT" is 1.16.5). When the
// whole string is not a version, the first dotted number inside it is used
// ("git-Server-412 (MC: 1.16.5)").
func Parse(reported string) (*semver.Version, error) {
	s := strings.TrimSpace(reported)
	v, err := semver.NewVersion(s)
	if err != nil {
		m := versionPattern.FindString(s)
		if m == "" {
			return nil, fmt.Errorf("no version in %q", reported)
		}
		if v, err = semver.NewVersion(m); err != nil {
			return nil, err
		}
	}
	return semver.New(v.Major(), v.Minor(), v.Patch(), "", ""), nil
}

// Tag identifies a host version range. Tags of one enumeration compare by
// ordinal. The zero Tag belongs to no enumeration.
type Tag struct {
	enum    *Enumeration
	ordinal int
}

// Name returns the tag name, or "" for the zero Tag.
func (t Tag) Name() string {
	if t.enum == nil {
		return ""
	}
	return t.enum.entries[t.ordinal].name
}

// Ordinal returns the tag's position in its enumeration.
func (t Tag) Ordinal() int { return t.ordinal }

// IsZero reports whether t is the zero Tag.
func (t Tag) IsZero() bool { return t.enum == nil }

// Is reports whether t and o are the same tag.
func (t Tag) Is(o Tag) bool {
	return t.enum != nil && t.enum == o.enum && t.ordinal == o.ordinal
}

func (t Tag) LessThan(o Tag) bool       { return t.ordinal < o.ordinal }
func (t Tag) GreaterThan(o Tag) bool    { return t.ordinal > o.ordinal }
func (t Tag) LessOrEqual(o Tag) bool    { return t.ordinal <= o.ordinal }
func (t Tag) GreaterOrEqual(o Tag) bool { return t.ordinal >= o.ordinal }

// Namespace returns the prefix of implementation names for this tag.
func (t Tag) Namespace() string {
	return t.Name() + "."
}

func (t Tag) String() string {
	return t.Name()
}

var current atomic.Pointer[Tag]

// Init detects the process-wide tag. Only the first successful call
// computes it; later calls return that tag whatever their arguments.
func Init(enum *Enumeration, reported string) (Tag, error) {
	if t := current.Load(); t != nil {
		return *t, nil
	}
	if enum == nil {
		return Tag{}, errors.InvalidInput(errors.PhaseVersion, "nil enumeration")
	}
	tag, err := enum.Detect(reported)
	if err != nil {
		return Tag{}, err
	}
	if !current.CompareAndSwap(nil, &tag) {
		return *current.Load(), nil
	}
	return tag, nil
}

// Current returns the process-wide tag set by Init.
func Current() (Tag, bool) {
	if t := current.Load(); t != nil {
		return *t, true
	}
	return Tag{}, false
}
