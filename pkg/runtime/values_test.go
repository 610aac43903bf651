package runtime

import (
	"errors"
	"testing"
)

type fakeRef struct {
	id, typ string
	supers  []string
}

func (r fakeRef) ID() string           { return r.id }
func (r fakeRef) TypeName() string     { return r.typ }
func (r fakeRef) Supertypes() []string { return r.supers }

func TestRender(t *testing.T) {
	cases := []struct {
		value Value
		want  string
	}{
		{nil, "null"},
		{NullValue{}, "null"},
		{BooleanValue{Val: true}, "true"},
		{IntegerValue{Val: -42}, "-42"},
		{RealValue{Val: 3.5}, "3.5"},
		{RealValue{Val: 1}, "1"},
		{RealValue{Val: 1e21}, "1e+21"},
		{StringValue{Val: "hi there"}, "hi there"},
		{NewSequence(IntegerValue{Val: 1}, StringValue{Val: "a"}, nil), "[1, a, null]"},
		{NewSequence(), "[]"},
		{NewSequence(NewSequence(IntegerValue{Val: 1})), "[[1]]"},
		{Object(fakeRef{id: "c1", typ: "Circle"}), "Circle@c1"},
	}
	for _, tc := range cases {
		if got := Render(tc.value); got != tc.want {
			t.Fatalf("Render(%#v) = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestNormalizeNilSequence(t *testing.T) {
	var missing *SequenceValue
	seq, ok := Normalize(missing).(*SequenceValue)
	if !ok || seq == nil || len(seq.Elements) != 0 {
		t.Fatalf("expected an empty sequence, got %#v", Normalize(missing))
	}
	if got := Render(missing); got != "[]" {
		t.Fatalf("expected [], got %q", got)
	}
}

func TestKindNames(t *testing.T) {
	cases := map[string]Value{
		"Null":     NullValue{},
		"Boolean":  BooleanValue{},
		"Integer":  IntegerValue{},
		"Real":     RealValue{},
		"String":   StringValue{},
		"Sequence": NewSequence(),
		"Object":   Object(fakeRef{id: "x", typ: "T"}),
	}
	for want, v := range cases {
		if got := KindName(v); got != want {
			t.Fatalf("expected %s, got %s", want, got)
		}
	}
	if got := KindName(nil); got != "Null" {
		t.Fatalf("nil should report Null, got %s", got)
	}
}

func TestObjectNilReferenceIsNull(t *testing.T) {
	if !IsNull(Object(nil)) {
		t.Fatalf("expected Object(nil) to be null")
	}
}

func TestAsBool(t *testing.T) {
	if b, ok := AsBool(Bool(true)); !ok || !b {
		t.Fatalf("expected true")
	}
	if _, ok := AsBool(IntegerValue{Val: 1}); ok {
		t.Fatalf("integers must not coerce to booleans")
	}
	if _, ok := AsBool(NullValue{}); ok {
		t.Fatalf("null must be unknown")
	}
}

func TestFromGo(t *testing.T) {
	v, err := FromGo([]any{1, "x", true, nil, 2.5})
	if err != nil {
		t.Fatalf("FromGo: %v", err)
	}
	if got := Render(v); got != "[1, x, true, null, 2.5]" {
		t.Fatalf("unexpected conversion %q", got)
	}
	if _, err := FromGo(map[string]any{"a": 1}); err == nil {
		t.Fatalf("expected mappings to be rejected")
	}
	if _, err := ToInteger(2.0); err != nil {
		t.Fatalf("integral real should convert: %v", err)
	}
	if _, err := ToInteger("2"); err == nil {
		t.Fatalf("strings are not integers")
	}
	if _, err := ToInteger(float64(1 << 63)); err == nil {
		t.Fatalf("2^63 does not fit an int64")
	}
	if n, err := ToInteger(float64(-1 << 63)); err != nil || n.Val != -1<<63 {
		t.Fatalf("-2^63 should convert, got %v, %v", n, err)
	}
}

func TestErrorTaxonomy(t *testing.T) {
	err := NewVariableNotFound("name")
	if !errors.Is(err, ErrVariableNotFound) || errors.Is(err, ErrTypeError) {
		t.Fatalf("unexpected sentinel matching for %v", err)
	}
	if got := err.Error(); got != "VariableNotFound: 'name'" {
		t.Fatalf("unexpected message %q", got)
	}
	wrapped := errors.Join(errors.New("context"), NewInvalidOperation("division by zero"))
	if ErrorKindOf(wrapped) != KindInvalidOperation {
		t.Fatalf("expected kind through wrapping, got %q", ErrorKindOf(wrapped))
	}
	if ErrorKindOf(errors.New("engine down")) != "" {
		t.Fatalf("foreign errors have no kind")
	}
	if got := NewTypeError("bad %s", "operand").Error(); got != "TypeError: bad operand" {
		t.Fatalf("unexpected message %q", got)
	}
}
