package invoke

import (
	stderrors "errors"
	"fmt"
	"io"
	"reflect"
	"testing"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/resolve"
	"github.com/wippyai/hostbridge/typeinfo"
)

var (
	errNegative = stderrors.New("negative amount")
	errBoom     = stderrors.New("boom")
)

type account struct {
	Owner   string
	balance int64
}

func (a account) String() string            { return a.Owner }
func (a account) Balance() int64            { return a.balance }
func (a *account) Attach(note *string) bool { return note == nil }
func (a *account) Crash()                   { panic(errBoom) }
func (a *account) Shout()                   { panic("boom") }
func (a *account) Split() (string, int64)   { return a.Owner, a.balance }

func (a *account) Deposit(n int64) (int64, error) {
	if n < 0 {
		return 0, errNegative
	}
	a.balance += n
	return a.balance, nil
}

type savings struct {
	account
	Rate float64
}

type gauge struct {
	Level int32
}

type counter struct {
	n int
}

var counterType *typeinfo.Type

func (c *counter) HostType() *typeinfo.Type { return counterType }

var gaugeMax int32 = 10

func NewGauge(level *int32) *gauge { return &gauge{Level: *level} }

func describe(a account) string { return "account " + a.Owner }
func hidden() string            { return "hidden" }

func sum(xs ...int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}

func wrapped() error {
	return errors.InvocationFailed("method", "remote", "call", &typeinfo.TargetError{Err: errBoom})
}

func init() {
	s := typeinfo.DeclareFor[savings]()
	must(s.StaticMethod("Describe", describe))
	must(s.StaticMethod("Sum", sum))
	must(s.StaticMethod("Wrapped", wrapped))
	must(s.StaticMethod("hidden", hidden))

	g := typeinfo.DeclareFor[*gauge]()
	must(g.Constructor(NewGauge))
	must(g.StaticField("Max", &gaugeMax))
	must(g.Const("Unit", "bar"))

	var err error
	counterType, err = typeinfo.NewBuilder("test.Counter", reflect.TypeFor[*counter]()).
		Field("Value", typeinfo.For[int](),
			func(recv reflect.Value) (reflect.Value, error) {
				return reflect.ValueOf(recv.Interface().(*counter).n), nil
			},
			func(recv, v reflect.Value) error {
				if v.Int() < 0 {
					return &typeinfo.TargetError{Err: errNegative}
				}
				recv.Interface().(*counter).n = int(v.Int())
				return nil
			}, 0).
		Method("Inc", func(c *counter, by int) int { c.n += by; return c.n }, 0).
		Constructor(func() *counter { return &counter{} }, 0).
		Build()
	must(err)
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func asError(t *testing.T, err error, kind errors.Kind) *errors.Error {
	t.Helper()
	var e *errors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("expected *errors.Error, got %v", err)
	}
	if e.Kind != kind {
		t.Fatalf("kind = %s, want %s (%v)", e.Kind, kind, err)
	}
	return e
}

func TestMethodCall(t *testing.T) {
	acc := &account{Owner: "ann"}
	at := typeinfo.For[*account]()

	res, err := Method(at, acc, "Deposit", int64(5))
	if err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	if res != int64(5) || acc.balance != 5 {
		t.Errorf("Deposit returned %v, balance %d", res, acc.balance)
	}

	n := int64(3)
	res, err = Method(at, acc, "Deposit", &n)
	if err != nil {
		t.Fatalf("Deposit(*int64): %v", err)
	}
	if res != int64(8) {
		t.Errorf("boxed argument: got %v, want 8", res)
	}

	res, err = Method(at, acc, "Split")
	if err != nil {
		t.Fatal(err)
	}
	if got, ok := res.([]any); !ok || len(got) != 2 || got[0] != "ann" || got[1] != int64(8) {
		t.Errorf("Split returned %#v", res)
	}

	res, err = Method(at, acc, "Attach", nil)
	if err != nil || res != true {
		t.Errorf("Attach(nil) = %v, %v", res, err)
	}
}

func TestMethodValueReceiverThroughPointer(t *testing.T) {
	res, err := Method(typeinfo.For[account](), &account{balance: 7}, "Balance")
	if err != nil || res != int64(7) {
		t.Errorf("Balance = %v, %v", res, err)
	}
}

func TestMethodAbstractDispatch(t *testing.T) {
	res, err := Method(typeinfo.For[fmt.Stringer](), account{Owner: "bo"}, "String")
	if err != nil || res != "bo" {
		t.Errorf("String = %v, %v", res, err)
	}
}

func TestInvocationFaults(t *testing.T) {
	at := typeinfo.For[*account]()
	tests := []struct {
		name  string
		call  func() error
		cause func(error) bool
	}{
		{
			name: "returned error",
			call: func() error { _, err := Method(at, &account{}, "Deposit", int64(-1)); return err },
			cause: func(c error) bool { return c == errNegative },
		},
		{
			name: "panic with error",
			call: func() error { _, err := Method(at, &account{}, "Crash"); return err },
			cause: func(c error) bool { return c == errBoom },
		},
		{
			name: "panic with value",
			call: func() error { _, err := Method(at, &account{}, "Shout"); return err },
			cause: func(c error) bool { return c != nil && c.Error() == "panic: boom" },
		},
		{
			name: "wrapped target error",
			call: func() error { _, err := Method(typeinfo.For[savings](), nil, "Wrapped"); return err },
			cause: func(c error) bool { return c == errBoom },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := asError(t, tt.call(), errors.KindInvocationFailed)
			if !tt.cause(e.Cause) {
				t.Errorf("unexpected cause %v", e.Cause)
			}
		})
	}
}

func TestStaticMethods(t *testing.T) {
	st := typeinfo.For[savings]()

	res, err := Method(st, nil, "Describe", savings{account: account{Owner: "ann"}})
	if err != nil || res != "account ann" {
		t.Errorf("Describe(savings) = %v, %v", res, err)
	}

	m, err := resolve.Method(st, "Sum", typeinfo.For[[]int]())
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		args []any
		want int
	}{
		{nil, 0},
		{[]any{1, 2, 3}, 6},
		{[]any{[]int{4, 5}}, 9},
	}
	for _, tt := range tests {
		res, err := Call(m, nil, tt.args...)
		if err != nil || res != tt.want {
			t.Errorf("Sum(%v) = %v, %v; want %d", tt.args, res, err, tt.want)
		}
	}
}

func TestAccessPolicy(t *testing.T) {
	st := typeinfo.For[savings]()
	if res, err := Method(st, nil, "hidden"); err != nil || res != "hidden" {
		t.Errorf("hidden = %v, %v", res, err)
	}

	strict := NewInvoker(WithAccessPolicy(DenyPrivate))
	_, err := strict.Method(st, nil, "hidden")
	asError(t, err, errors.KindAccessDenied)

	f, err := resolve.Field(typeinfo.For[*account](), "balance")
	if err != nil {
		t.Fatal(err)
	}
	_, err = strict.Get(f, &account{})
	asError(t, err, errors.KindAccessDenied)
}

func TestUnexportedField(t *testing.T) {
	f, err := resolve.Field(typeinfo.For[*account](), "balance")
	if err != nil {
		t.Fatal(err)
	}
	acc := account{balance: 4}

	if v, err := Get(f, &acc); err != nil || v != int64(4) {
		t.Errorf("Get(&acc) = %v, %v", v, err)
	}
	if v, err := Get(f, acc); err != nil || v != int64(4) {
		t.Errorf("Get(acc) = %v, %v", v, err)
	}

	asError(t, Set(f, acc, int64(1)), errors.KindAccessDenied)

	if err := Set(f, &acc, int64(9)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if acc.balance != 9 {
		t.Errorf("balance = %d, want 9", acc.balance)
	}
}

func TestInheritedField(t *testing.T) {
	f, err := resolve.Field(typeinfo.For[*savings](), "Owner")
	if err != nil {
		t.Fatal(err)
	}
	s := &savings{Rate: 0.5}
	if err := Set(f, s, "cy"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if s.Owner != "cy" {
		t.Errorf("Owner = %q", s.Owner)
	}
	if v, err := Get(f, *s); err != nil || v != "cy" {
		t.Errorf("Get = %v, %v", v, err)
	}
}

func TestStaticFields(t *testing.T) {
	gt := typeinfo.For[*gauge]()
	limit, err := resolve.Field(gt, "Max")
	if err != nil {
		t.Fatal(err)
	}
	if err := Set(limit, nil, int32(12)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, err := Get(limit, nil); err != nil || v != int32(12) {
		t.Errorf("Get(Max) = %v, %v", v, err)
	}

	unit, err := resolve.Field(gt, "Unit")
	if err != nil {
		t.Fatal(err)
	}
	if v, err := Get(unit, nil); err != nil || v != "bar" {
		t.Errorf("Get(Unit) = %v, %v", v, err)
	}
	asError(t, Set(unit, nil, "psi"), errors.KindAccessDenied)
}

func TestInstantiate(t *testing.T) {
	v, err := Instantiate(typeinfo.For[*gauge](), int32(4))
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	if g, ok := v.(*gauge); !ok || g.Level != 4 {
		t.Errorf("got %#v", v)
	}

	v, err = Instantiate(typeinfo.For[*account]())
	if err != nil {
		t.Fatalf("zero constructor: %v", err)
	}
	if _, ok := v.(*account); !ok {
		t.Errorf("got %T", v)
	}

	for _, typ := range []*typeinfo.Type{typeinfo.For[io.Reader](), typeinfo.For[int32](), typeinfo.Unknown} {
		_, err := Instantiate(typ)
		asError(t, err, errors.KindInstantiationFailed)
	}

	_, err = Instantiate(typeinfo.For[*gauge](), "high")
	asError(t, err, errors.KindMemberNotFound)
}

func TestVirtualType(t *testing.T) {
	obj, err := Instantiate(counterType)
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	if typeinfo.Of(obj) != counterType {
		t.Fatalf("instance reports %s", typeinfo.Of(obj))
	}

	if res, err := Method(counterType, obj, "Inc", 2); err != nil || res != 2 {
		t.Errorf("Inc = %v, %v", res, err)
	}

	f, err := resolve.Field(counterType, "Value")
	if err != nil {
		t.Fatal(err)
	}
	if v, err := Get(f, obj); err != nil || v != 2 {
		t.Errorf("Get = %v, %v", v, err)
	}
	if err := Set(f, obj, 5); err != nil {
		t.Fatalf("Set: %v", err)
	}
	e := asError(t, Set(f, obj, -1), errors.KindInvocationFailed)
	if e.Cause != errNegative {
		t.Errorf("cause = %v", e.Cause)
	}
}

func TestCallInputErrors(t *testing.T) {
	m, err := resolve.Method(typeinfo.For[*account](), "Deposit", typeinfo.For[int64]())
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		recv any
		args []any
	}{
		{"missing receiver", nil, []any{int64(1)}},
		{"wrong arity", &account{}, nil},
		{"wrong type", &account{}, []any{"one"}},
		{"nil primitive", &account{}, []any{nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Call(m, tt.recv, tt.args...)
			asError(t, err, errors.KindInvalidInput)
		})
	}
}
