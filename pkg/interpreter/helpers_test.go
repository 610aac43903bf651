package interpreter

import (
	"context"
	"sync"
	"testing"

	"aql/interpreter-go/pkg/ast"
	"aql/interpreter-go/pkg/runtime"
)

type stubRef struct {
	id, typ string
	supers  []string
}

func (r *stubRef) ID() string           { return r.id }
func (r *stubRef) TypeName() string     { return r.typ }
func (r *stubRef) Supertypes() []string { return r.supers }

// stubEngine serves properties from a map, counts navigations, and fails
// on the properties listed in fail.
type stubEngine struct {
	mu    sync.Mutex
	props map[string]map[string]runtime.Value
	fail  map[string]error
	calls int
}

func newStubEngine() *stubEngine {
	return &stubEngine{
		props: make(map[string]map[string]runtime.Value),
		fail:  make(map[string]error),
	}
}

func (e *stubEngine) set(ref *stubRef, property string, value runtime.Value) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.props[ref.id] == nil {
		e.props[ref.id] = make(map[string]runtime.Value)
	}
	e.props[ref.id][property] = value
}

func (e *stubEngine) Navigate(_ context.Context, object runtime.ObjectReference, property string) (runtime.Value, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if err, ok := e.fail[property]; ok {
		return nil, err
	}
	return e.props[object.ID()][property], nil
}

func (e *stubEngine) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

var (
	shapeRef  = &stubRef{id: "s0", typ: "Shape"}
	circleRef = &stubRef{id: "c1", typ: "Circle", supers: []string{"Shape", "Element"}}
)

func circle() runtime.Value { return runtime.Object(circleRef) }

func str(s string) runtime.Value      { return runtime.StringValue{Val: s} }
func integer(n int64) runtime.Value   { return runtime.IntegerValue{Val: n} }
func realNum(f float64) runtime.Value { return runtime.RealValue{Val: f} }

func mustEval(t *testing.T, expr ast.Expression, ec *runtime.Context) runtime.Value {
	t.Helper()
	if ec == nil {
		ec = runtime.NewContext(nil)
	}
	val, err := New().Evaluate(context.Background(), expr, ec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ec.Depth() != 0 {
		t.Fatalf("scope stack unbalanced: depth %d", ec.Depth())
	}
	return val
}

func evalErr(t *testing.T, expr ast.Expression, ec *runtime.Context) error {
	t.Helper()
	if ec == nil {
		ec = runtime.NewContext(nil)
	}
	val, err := New().Evaluate(context.Background(), expr, ec)
	if err == nil {
		t.Fatalf("expected error, got %s", runtime.Render(val))
	}
	if ec.Depth() != 0 {
		t.Fatalf("scope stack unbalanced after error: depth %d", ec.Depth())
	}
	return err
}

func expectRendered(t *testing.T, got runtime.Value, want string) {
	t.Helper()
	if rendered := runtime.Render(got); rendered != want {
		t.Fatalf("expected %s, got %s (%s)", want, rendered, runtime.KindName(got))
	}
}

func expectKind(t *testing.T, err error, kind runtime.ErrorKind) {
	t.Helper()
	if got := runtime.ErrorKindOf(err); got != kind {
		t.Fatalf("expected %s error, got %v", kind, err)
	}
}
