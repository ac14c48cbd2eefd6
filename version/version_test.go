package version

import (
	"sync"
	"testing"

	"github.com/wippyai/hostbridge/errors"
)

func testEnumeration(t *testing.T) *Enumeration {
	t.Helper()
	e, err := NewEnumeration(
		Entry{Name: "v1_16_R3", Constraint: ">=1.16.4, <1.17"},
		Entry{Name: "v1_17_R1", Constraint: "~1.17"},
		Entry{Name: "v1_18_R1", Constraint: ">=1.18, <1.18.2"},
		Entry{Name: "v1_18_R2", Constraint: ">=1.18.2, <1.19"},
	)
	if err != nil {
		t.Fatalf("NewEnumeration: %v", err)
	}
	return e
}

func TestDetect(t *testing.T) {
	e := testEnumeration(t)
	tests := []struct {
		reported string
		want     string
	}{
		{"1.16.5", "v1_16_R3"},
		{"v1.17.1", "v1_17_R1"},
		{"1.18.1-R0.1-SNAPSHOT", "v1_18_R1"},
		{"1.18.2", "v1_18_R2"},
		{"git-Server-412 (MC: 1.18.2)", "v1_18_R2"},
		{"1.18", "v1_18_R1"},
	}
	for _, tt := range tests {
		t.Run(tt.reported, func(t *testing.T) {
			tag, err := e.Detect(tt.reported)
			if err != nil {
				t.Fatalf("Detect: %v", err)
			}
			if tag.Name() != tt.want {
				t.Errorf("Detect(%q) = %s, want %s", tt.reported, tag, tt.want)
			}
		})
	}
}

func TestDetectUnsupported(t *testing.T) {
	e := testEnumeration(t)
	for _, reported := range []string{"1.12.2", "2.0.0", "", "snapshot"} {
		if _, err := e.Detect(reported); !errors.IsKind(err, errors.KindUnsupportedVersion) {
			t.Errorf("Detect(%q) error = %v, want unsupported_version", reported, err)
		}
	}
}

func TestNewEnumerationValidation(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
	}{
		{"empty", nil},
		{"blank name", []Entry{{Name: " ", Constraint: "1.x"}}},
		{"dotted name", []Entry{{Name: "v1.2", Constraint: "1.x"}}},
		{"duplicate", []Entry{{Name: "a", Constraint: "1.x"}, {Name: "a", Constraint: "2.x"}}},
		{"bad constraint", []Entry{{Name: "a", Constraint: "bogus"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewEnumeration(tt.entries...); !errors.IsKind(err, errors.KindInvalidInput) {
				t.Errorf("expected invalid_input, got %v", err)
			}
		})
	}
}

func TestTagOrdering(t *testing.T) {
	e := testEnumeration(t)
	old, _ := e.Tag("v1_16_R3")
	cur, _ := e.Tag("v1_18_R1")
	same, _ := e.Tag("v1_18_R1")

	if !cur.Is(same) || cur.Is(old) {
		t.Error("Is should compare identity")
	}
	if !old.LessThan(cur) || cur.LessThan(old) || cur.LessThan(same) {
		t.Error("LessThan")
	}
	if !cur.GreaterThan(old) || old.GreaterThan(cur) {
		t.Error("GreaterThan")
	}
	if !cur.GreaterOrEqual(same) || !cur.GreaterOrEqual(old) || old.GreaterOrEqual(cur) {
		t.Error("GreaterOrEqual")
	}
	if !old.LessOrEqual(cur) || !cur.LessOrEqual(same) {
		t.Error("LessOrEqual")
	}
	if cur.Ordinal() != 2 || cur.Namespace() != "v1_18_R1." || cur.String() != "v1_18_R1" {
		t.Errorf("ordinal %d namespace %q", cur.Ordinal(), cur.Namespace())
	}
	if _, ok := e.Tag("v9"); ok {
		t.Error("unknown tag should not be found")
	}
	if !(Tag{}).IsZero() || (Tag{}).Is(Tag{}) {
		t.Error("zero tag")
	}
	if len(e.Tags()) != 4 || e.Entries()[1].Constraint != "~1.17" {
		t.Error("Tags/Entries should preserve declarations")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.16.5-R0.1-SNAPSHOT", "1.16.5"},
		{"v1.17", "1.17.0"},
		{"  1.18.2+build.7 ", "1.18.2"},
		{"This server is running 1.19.4 (build 55)", "1.19.4"},
	}
	for _, tt := range tests {
		v, err := Parse(tt.in)
		if err != nil {
			t.Errorf("Parse(%q): %v", tt.in, err)
			continue
		}
		if v.String() != tt.want {
			t.Errorf("Parse(%q) = %s, want %s", tt.in, v, tt.want)
		}
	}
}

func TestInitOnce(t *testing.T) {
	resetCurrent()
	defer resetCurrent()

	if _, ok := Current(); ok {
		t.Fatal("no tag before Init")
	}
	e := testEnumeration(t)
	if _, err := Init(e, "0.1"); !errors.IsKind(err, errors.KindUnsupportedVersion) {
		t.Fatalf("failed detection should not set the tag: %v", err)
	}

	var wg sync.WaitGroup
	tags := make([]Tag, 20)
	for i := range tags {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tags[i], _ = Init(e, "1.17.1")
		}()
	}
	wg.Wait()
	for _, tag := range tags {
		if tag.Name() != "v1_17_R1" {
			t.Fatalf("Init returned %q", tag)
		}
	}

	again, err := Init(e, "1.18.2")
	if err != nil || again.Name() != "v1_17_R1" {
		t.Errorf("re-initialisation = %s, %v; want the original tag", again, err)
	}
	cur, ok := Current()
	if !ok || !cur.Is(again) {
		t.Errorf("Current() = %s, %v", cur, ok)
	}
}
