package model

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"aql/interpreter-go/pkg/runtime"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func shapes(t *testing.T) *TypeRegistry {
	t.Helper()
	r := NewTypeRegistry()
	for _, decl := range [][]string{
		{"Element"},
		{"Named", "Element"},
		{"Shape", "Named", "Element"},
		{"Circle", "Shape"},
		{"Rectangle", "Shape"},
		{"Square", "Rectangle", "Named"},
	} {
		if err := r.Declare(decl[0], decl[1:]...); err != nil {
			t.Fatalf("declare %s: %v", decl[0], err)
		}
	}
	if err := r.Seal(); err != nil {
		t.Fatalf("seal: %v", err)
	}
	return r
}

func TestClosureOrderAndDedup(t *testing.T) {
	r := shapes(t)
	cases := map[string][]string{
		"Element": {},
		"Named":   {"Element"},
		"Circle":  {"Shape", "Named", "Element"},
		"Square":  {"Rectangle", "Shape", "Named", "Element"},
	}
	for name, want := range cases {
		got, err := r.Closure(name)
		if err != nil {
			t.Fatalf("closure %s: %v", name, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("closure of %s mismatch (-want +got):\n%s", name, diff)
		}
	}
	if _, err := r.Closure("Triangle"); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestSealRejectsBadHierarchies(t *testing.T) {
	cycle := NewTypeRegistry()
	_ = cycle.Declare("A", "C")
	_ = cycle.Declare("B", "A")
	_ = cycle.Declare("C", "B")
	err := cycle.Seal()
	if !errors.Is(err, ErrCyclicHierarchy) {
		t.Fatalf("expected ErrCyclicHierarchy, got %v", err)
	}
	if !strings.Contains(err.Error(), "A -> C -> B -> A") {
		t.Fatalf("cycle path missing from %q", err)
	}

	self := NewTypeRegistry()
	_ = self.Declare("Loop", "Loop")
	if err := self.Seal(); !errors.Is(err, ErrCyclicHierarchy) {
		t.Fatalf("expected ErrCyclicHierarchy, got %v", err)
	}

	dangling := NewTypeRegistry()
	_ = dangling.Declare("Circle", "Shape")
	if err := dangling.Seal(); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestDeclareAfterSeal(t *testing.T) {
	r := shapes(t)
	if err := r.Declare("Triangle", "Shape"); !errors.Is(err, ErrSealed) {
		t.Fatalf("expected ErrSealed, got %v", err)
	}
	fresh := NewTypeRegistry()
	_ = fresh.Declare("A")
	if err := fresh.Declare("A"); !errors.Is(err, ErrDuplicateType) {
		t.Fatalf("expected ErrDuplicateType, got %v", err)
	}
}

func TestModelNavigate(t *testing.T) {
	m, err := New(shapes(t))
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	c, err := m.Add("Circle", "c1")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := m.Set("c1", "radius", runtime.IntegerValue{Val: 2}); err != nil {
		t.Fatalf("set: %v", err)
	}
	ctx := context.Background()
	v, err := m.Navigate(ctx, c, "radius")
	if err != nil || runtime.Render(v) != "2" {
		t.Fatalf("expected radius 2, got %v, %v", v, err)
	}
	v, err = m.Navigate(ctx, c, "colour")
	if err != nil || !runtime.IsNull(v) {
		t.Fatalf("unknown property should be null, got %v, %v", v, err)
	}
	foreign := &Object{id: "elsewhere", typeName: "Circle"}
	if _, err := m.Navigate(ctx, foreign, "radius"); !errors.Is(err, ErrUnknownObject) {
		t.Fatalf("expected ErrUnknownObject, got %v", err)
	}
	if diff := cmp.Diff([]string{"Shape", "Named", "Element"}, c.Supertypes()); diff != "" {
		t.Fatalf("object closure mismatch (-want +got):\n%s", diff)
	}
}

func TestModelAddErrors(t *testing.T) {
	m, err := New(shapes(t))
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	if _, err := m.Add("Triangle", "t1"); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
	if _, err := m.Add("Circle", "c1"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := m.Add("Circle", "c1"); !errors.Is(err, ErrDuplicateObject) {
		t.Fatalf("expected ErrDuplicateObject, got %v", err)
	}
	if err := m.Set("missing", "p", nil); !errors.Is(err, ErrUnknownObject) {
		t.Fatalf("expected ErrUnknownObject, got %v", err)
	}
}

func TestGeneratedIdentity(t *testing.T) {
	m, err := New(shapes(t))
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	obj, err := m.Add("Circle", "")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := uuid.Parse(obj.ID()); err != nil {
		t.Fatalf("expected a UUID identity, got %q", obj.ID())
	}
}

func TestNavigateCancelled(t *testing.T) {
	m, _ := New(shapes(t))
	c, _ := m.Add("Circle", "c1")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.Navigate(ctx, c, "radius"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestConcurrentReads(t *testing.T) {
	m, _ := New(shapes(t))
	c, _ := m.Add("Circle", "c1")
	_ = m.Set("c1", "radius", runtime.RealValue{Val: 1.5})
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				if v, err := m.Navigate(context.Background(), c, "radius"); err != nil || runtime.Render(v) != "1.5" {
					t.Errorf("unexpected read %v, %v", v, err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

const sampleModel = `
types:
  - name: Shape
  - name: Circle
    supertypes: [Shape]
  - name: Drawing
objects:
  - id: d1
    type: Drawing
    properties:
      title: Sketch
      shapes: [{ref: c1}, {ref: c2}]
  - id: c1
    type: Circle
    properties:
      radius: 2
      owner: {ref: d1}
  - id: c2
    type: Circle
    properties:
      radius: 0.5
      tags: [round, small]
  - type: Shape
`

func TestDecode(t *testing.T) {
	m, err := Decode(strings.NewReader(sampleModel))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := len(m.Objects()); got != 4 {
		t.Fatalf("expected 4 objects, got %d", got)
	}
	d1, _ := m.Object("d1")
	ctx := context.Background()
	shapesVal, err := m.Navigate(ctx, d1, "shapes")
	if err != nil {
		t.Fatalf("navigate: %v", err)
	}
	if got := runtime.Render(shapesVal); got != "[Circle@c1, Circle@c2]" {
		t.Fatalf("unexpected shapes %s", got)
	}
	c1, _ := m.Object("c1")
	owner, _ := m.Navigate(ctx, c1, "owner")
	if ref, ok := runtime.ObjectRef(owner); !ok || ref.ID() != "d1" {
		t.Fatalf("expected owner reference to d1, got %s", runtime.Render(owner))
	}
	c2, _ := m.Object("c2")
	tags, _ := m.Navigate(ctx, c2, "tags")
	if got := runtime.Render(tags); got != "[round, small]" {
		t.Fatalf("unexpected tags %s", got)
	}
}

func TestDecodeErrors(t *testing.T) {
	cases := map[string]struct {
		doc  string
		want error
	}{
		"dangling ref":   {doc: "types: [{name: A}]\nobjects: [{id: a, type: A, properties: {p: {ref: zz}}}]", want: ErrUnknownObject},
		"unknown type":   {doc: "types: [{name: A}]\nobjects: [{id: a, type: B}]", want: ErrUnknownType},
		"cycle":          {doc: "types: [{name: A, supertypes: [B]}, {name: B, supertypes: [A]}]", want: ErrCyclicHierarchy},
		"duplicate":      {doc: "types: [{name: A}]\nobjects: [{id: a, type: A}, {id: a, type: A}]", want: ErrDuplicateObject},
		"duplicate type": {doc: "types: [{name: A}, {name: A}]", want: ErrDuplicateType},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Decode(strings.NewReader(tc.doc)); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
	if _, err := Decode(strings.NewReader("types: []\nextra: 1\n")); err == nil {
		t.Fatalf("unknown fields must be rejected")
	}
	if _, err := Decode(strings.NewReader("types: [{name: A}]\nobjects: [{id: a, type: A, properties: {p: {x: 1}}}]")); err == nil {
		t.Fatalf("non-ref mappings must be rejected")
	}
}

func TestBindingValue(t *testing.T) {
	m, err := Decode(strings.NewReader(sampleModel))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	cases := []struct {
		raw  any
		want string
	}{
		{"c1", "Circle@c1"},
		{map[string]any{"value": "c1"}, "c1"},
		{map[string]any{"ref": "d1"}, "Drawing@d1"},
		{3, "3"},
		{[]any{"a", map[string]any{"ref": "c2"}}, "[a, Circle@c2]"},
	}
	for _, tc := range cases {
		v, err := m.BindingValue(tc.raw)
		if err != nil {
			t.Fatalf("binding %v: %v", tc.raw, err)
		}
		if got := runtime.Render(v); got != tc.want {
			t.Fatalf("binding %v: expected %s, got %s", tc.raw, tc.want, got)
		}
	}
	if _, err := m.BindingValue("nobody"); !errors.Is(err, ErrUnknownObject) {
		t.Fatalf("expected ErrUnknownObject, got %v", err)
	}
}
