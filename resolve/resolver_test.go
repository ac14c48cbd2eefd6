package resolve

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/member"
	"github.com/wippyai/hostbridge/typeinfo"
)

type animal struct {
	Legs   int32
	weight int32
}

func (a *animal) Feed(grams int32) { a.weight += grams }

type dog struct {
	animal
	Name string
}

func (d dog) Speak(times int32) string { return d.Name }

type puppy struct {
	dog
}

type kennel struct{}

type shelter struct{}

type gauge struct {
	Level int32
}

type widget struct {
	Size  int32
	Boxed bool
	limit int32
}

var (
	widgetCount int32
	widgetScale float64
)

func runDog(d dog) string       { return "dog" }
func runAnimal(a animal) string { return "animal" }
func countAnimals() int         { return 4 }
func hiddenAnimals() int        { return 0 }

func newGauge(level *int32) gauge { return gauge{Level: *level} }

func newWidget(size int32) *widget       { return &widget{Size: size} }
func newBoxedWidget(size *int32) *widget { return &widget{Size: *size, Boxed: true} }

func init() {
	k := typeinfo.DeclareFor[kennel]()
	mustDeclare(k.StaticMethod("Run", runDog))
	mustDeclare(k.StaticMethod("Run", runAnimal))

	mustDeclare(typeinfo.DeclareFor[shelter]().StaticMethod("Run", runAnimal))
	mustDeclare(typeinfo.DeclareFor[gauge]().Constructor(newGauge))

	a := typeinfo.DeclareFor[animal]()
	mustDeclare(a.StaticMethod("Count", countAnimals))
	mustDeclare(a.StaticMethod("hidden", hiddenAnimals))

	w := typeinfo.DeclareFor[*widget]()
	mustDeclare(w.Constructor(newBoxedWidget))
	mustDeclare(w.Constructor(newWidget))
	mustDeclare(w.StaticField("Count", &widgetCount))
	mustDeclare(w.StaticField("Scale", &widgetScale))
}

func mustDeclare(err error) {
	if err != nil {
		panic(err)
	}
}

func TestMethodPrefersExactOverload(t *testing.T) {
	kt := typeinfo.For[kennel]()
	tests := []struct {
		name string
		arg  *typeinfo.Type
		want string
	}{
		{"exact dog", typeinfo.For[dog](), "dog"},
		{"exact animal", typeinfo.For[animal](), "animal"},
		{"subtype takes first compatible", typeinfo.For[puppy](), "dog"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Method(kt, "Run", tt.arg)
			if err != nil {
				t.Fatalf("Method: %v", err)
			}
			want := typeinfo.For[animal]()
			if tt.want == "dog" {
				want = typeinfo.For[dog]()
			}
			if got := m.Params(); len(got) != 1 || got[0] != want {
				t.Errorf("resolved %s, want parameter %s", m, want)
			}
		})
	}
}

func TestMethodSubtypeArgument(t *testing.T) {
	m, err := Method(typeinfo.For[shelter](), "Run", typeinfo.For[dog]())
	if err != nil {
		t.Fatalf("Method: %v", err)
	}
	if m.Params()[0] != typeinfo.For[animal]() {
		t.Errorf("resolved %s, want the animal overload", m)
	}
}

func TestMethodNotFound(t *testing.T) {
	_, err := Method(typeinfo.For[kennel](), "Run", typeinfo.For[string]())
	if !errors.IsKind(err, errors.KindMemberNotFound) {
		t.Fatalf("expected member_not_found, got %v", err)
	}
	_, err = Method(typeinfo.For[kennel](), "Run")
	if !errors.IsKind(err, errors.KindMemberNotFound) {
		t.Errorf("arity mismatch should not resolve, got %v", err)
	}
}

func TestMethodBoxedParameter(t *testing.T) {
	m, err := Method(typeinfo.For[dog](), "Speak", typeinfo.For[*int32]())
	if err != nil {
		t.Fatalf("Method: %v", err)
	}
	if m.Name() != "Speak" {
		t.Errorf("resolved %s", m)
	}
}

func TestMethodHierarchyFallback(t *testing.T) {
	dt := typeinfo.For[dog]()

	m, err := Method(dt, "Count")
	if err != nil {
		t.Fatalf("Method(Count): %v", err)
	}
	if m.Owner() != typeinfo.For[animal]() {
		t.Errorf("Count owner = %s, want animal", m.Owner())
	}

	if _, err := Method(dt, "hidden"); !errors.IsKind(err, errors.KindMemberNotFound) {
		t.Errorf("private supertype method should not resolve, got %v", err)
	}

	flat := New(WithHierarchy(false))
	if flat.Hierarchy() {
		t.Fatal("hierarchy should be disabled")
	}
	if _, err := flat.Method(dt, "Count"); !errors.IsKind(err, errors.KindMemberNotFound) {
		t.Errorf("disabled hierarchy should not reach the supertype, got %v", err)
	}
}

func TestMethodIsIdempotent(t *testing.T) {
	kt := typeinfo.For[kennel]()
	first, err := Method(kt, "Run", typeinfo.For[puppy]())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		again, err := Method(kt, "Run", typeinfo.For[puppy]())
		if err != nil {
			t.Fatal(err)
		}
		if again != first {
			t.Fatalf("resolution %d returned %s, want %s", i, again, first)
		}
	}
}

func TestConstructorBoxing(t *testing.T) {
	wt := typeinfo.For[*widget]()
	tests := []struct {
		name      string
		arg       *typeinfo.Type
		wantBoxed bool
	}{
		{"primitive", typeinfo.For[int32](), false},
		{"boxed", typeinfo.For[*int32](), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Constructor(wt, tt.arg)
			if err != nil {
				t.Fatalf("Constructor: %v", err)
			}
			if c.Params()[0] != tt.arg {
				t.Errorf("resolved %s, want exact %s", c, tt.arg)
			}
		})
	}

	if _, err := Constructor(wt, typeinfo.For[int64]()); !errors.IsKind(err, errors.KindMemberNotFound) {
		t.Errorf("int64 should not resolve, got %v", err)
	}
	if _, err := Constructor(wt); !errors.IsKind(err, errors.KindMemberNotFound) {
		t.Errorf("declared constructors replace the zero constructor, got %v", err)
	}
}

func TestConstructorPrimitiveForBoxed(t *testing.T) {
	c, err := Constructor(typeinfo.For[gauge](), typeinfo.For[int32]())
	if err != nil {
		t.Fatalf("Constructor: %v", err)
	}
	if c.Params()[0] != typeinfo.For[*int32]() {
		t.Errorf("resolved %s", c)
	}
}

func TestConstructorIgnoresSupertype(t *testing.T) {
	// dog has a zero constructor of its own; puppy must not borrow dog's.
	if _, err := Constructor(typeinfo.For[puppy](), typeinfo.For[string]()); !errors.IsKind(err, errors.KindMemberNotFound) {
		t.Errorf("expected member_not_found, got %v", err)
	}
	c, err := Constructor(typeinfo.For[puppy]())
	if err != nil {
		t.Fatal(err)
	}
	if c.Owner() != typeinfo.For[puppy]() {
		t.Errorf("constructor owner = %s", c.Owner())
	}
}

func TestFieldByName(t *testing.T) {
	dt := typeinfo.For[dog]()

	f, err := Field(dt, "Name")
	if err != nil || f.Owner() != dt {
		t.Fatalf("Field(Name) = %v, %v", f, err)
	}

	f, err = Field(dt, "Legs")
	if err != nil {
		t.Fatalf("Field(Legs): %v", err)
	}
	if f.Owner() != typeinfo.For[animal]() {
		t.Errorf("Legs owner = %s, want animal", f.Owner())
	}

	if _, err := Field(dt, "weight"); !errors.IsKind(err, errors.KindMemberNotFound) {
		t.Errorf("private supertype field should not resolve, got %v", err)
	}
	if _, err := New(WithHierarchy(false)).Field(dt, "Legs"); !errors.IsKind(err, errors.KindMemberNotFound) {
		t.Errorf("disabled hierarchy should not reach the supertype, got %v", err)
	}
}

func TestFindFieldStatic(t *testing.T) {
	wt := typeinfo.For[*widget]()
	q := member.Fields().RequireFlags(typeinfo.Static).Type(typeinfo.For[int32]()).RequireExactTypeMatch()

	f, err := FindField(wt, q, 0)
	if err != nil {
		t.Fatalf("FindField: %v", err)
	}
	if f.Name() != "Count" {
		t.Errorf("got %s, want Count", f.Name())
	}

	_, err = FindField(wt, q, 1)
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Kind != errors.KindIndexOutOfRange {
		t.Fatalf("expected index_out_of_range, got %v", err)
	}
	if e.Index != 1 || e.Count != 1 {
		t.Errorf("index=%d count=%d, want 1/1", e.Index, e.Count)
	}
}

func TestFindIndexOutOfRange(t *testing.T) {
	wt := typeinfo.For[*widget]()
	q := member.Fields().DisallowFlags(typeinfo.Static).Type(typeinfo.For[int32]()).RequireExactTypeMatch()

	_, err := FindField(wt, q, 5)
	var e *errors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("expected *errors.Error, got %v", err)
	}
	if e.Kind != errors.KindIndexOutOfRange || e.Index != 5 || e.Count != 2 {
		t.Errorf("got kind=%s index=%d count=%d, want index_out_of_range 5/2", e.Kind, e.Index, e.Count)
	}

	second, err := FindField(wt, q, 1)
	if err != nil || second.Name() != "limit" {
		t.Errorf("FindField(1) = %v, %v; want limit", second, err)
	}
}

func TestFindNoMatch(t *testing.T) {
	q := member.Fields().Type(typeinfo.For[string]())
	_, err := FindField(typeinfo.For[*widget](), q, 0)
	if !errors.IsKind(err, errors.KindMemberNotFound) {
		t.Fatalf("expected member_not_found, got %v", err)
	}
	if _, err := FindField(typeinfo.For[*widget](), q, -1); !errors.IsKind(err, errors.KindInvalidInput) {
		t.Errorf("negative index should be invalid input, got %v", err)
	}
}

func TestFindNilQuery(t *testing.T) {
	var (
		fields *member.FieldQuery
		meths  *member.MethodQuery
		ctors  *member.ConstructorQuery
	)
	typ := typeinfo.For[*widget]()
	tests := []struct {
		name string
		find func() error
	}{
		{"field", func() error { _, err := FindField(typ, fields, 0); return err }},
		{"method", func() error { _, err := FindMethod(typ, meths, 0); return err }},
		{"constructor", func() error { _, err := FindConstructor(typ, ctors, 0); return err }},
		{"criteria", func() error { _, err := Default.Find(typ, member.Criteria(fields), 0); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.find(); !errors.IsKind(err, errors.KindInvalidInput) {
				t.Errorf("expected invalid_input, got %v", err)
			}
		})
	}
	if all := Default.FindAll(typ, fields); all != nil {
		t.Errorf("FindAll with nil query = %v, want nil", all)
	}
}

func TestFindMethodAndConstructor(t *testing.T) {
	m, err := FindMethod(typeinfo.For[*dog](), member.Methods().RequireBridge().Named("Speak"), 0)
	if err != nil {
		t.Fatalf("FindMethod: %v", err)
	}
	if !m.Flags().Has(typeinfo.Bridge) {
		t.Errorf("%s should be a bridge", m)
	}

	c, err := FindConstructor(typeinfo.For[*widget](), member.Constructors().Params(typeinfo.For[*int32]()), 0)
	if err != nil {
		t.Fatalf("FindConstructor: %v", err)
	}
	if c.Params()[0] != typeinfo.For[*int32]() {
		t.Errorf("got %s", c)
	}

	all := Default.FindAll(typeinfo.For[*widget](), member.Constructors())
	if len(all) != 2 {
		t.Errorf("FindAll returned %d constructors, want 2", len(all))
	}
}

func TestFindIgnoresSupertype(t *testing.T) {
	q := member.Fields().Named("Legs")
	if _, err := FindField(typeinfo.For[dog](), q, 0); !errors.IsKind(err, errors.KindMemberNotFound) {
		t.Errorf("query mode should only see own fields, got %v", err)
	}
}
