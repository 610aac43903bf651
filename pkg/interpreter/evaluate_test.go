package interpreter

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"aql/interpreter-go/pkg/ast"
	"aql/interpreter-go/pkg/runtime"

	"github.com/google/go-cmp/cmp"
)

func TestLetShadowsWithinBodyOnly(t *testing.T) {
	ec := runtime.NewContext(nil)
	ec.Define("x", integer(1))
	inner := mustEval(t, ast.LetIn(ast.ID("x"), ast.Bind("x", ast.Int(2))), ec)
	expectRendered(t, inner, "2")
	outer := mustEval(t, ast.ID("x"), ec)
	expectRendered(t, outer, "1")
}

func TestLetBindingsAreSequential(t *testing.T) {
	expr := ast.LetIn(
		ast.Bin(ast.ID("a"), "+", ast.ID("b")),
		ast.Bind("a", ast.Int(2)),
		ast.Bind("b", ast.Bin(ast.ID("a"), "*", ast.Int(10))),
	)
	expectRendered(t, mustEval(t, expr, nil), "22")
}

func TestLetBindingFailurePopsScope(t *testing.T) {
	expr := ast.LetIn(ast.ID("a"), ast.Bind("a", ast.Bin(ast.Int(1), "/", ast.Int(0))))
	expectKind(t, evalErr(t, expr, nil), runtime.KindInvalidOperation)
}

func TestLetNullBinding(t *testing.T) {
	ec := runtime.NewContext(nil)
	ec.Define("a", str("outer"))
	got := mustEval(t, ast.LetIn(ast.ID("a"), ast.Bind("a", unknown)), ec)
	if !runtime.IsNull(got) {
		t.Fatalf("null binding should shadow, got %s", runtime.Render(got))
	}
}

func TestConditional(t *testing.T) {
	missing := ast.ID("missing")
	expectRendered(t, mustEval(t, ast.If(tru, ast.Int(1), missing), nil), "1")
	expectRendered(t, mustEval(t, ast.If(fls, missing, ast.Int(2)), nil), "2")
	for _, cond := range []ast.Expression{unknown, ast.Int(1), ast.Str("true")} {
		got := mustEval(t, ast.If(cond, missing, missing), nil)
		if !runtime.IsNull(got) {
			t.Fatalf("non-boolean condition should yield null, got %s", runtime.Render(got))
		}
	}
	expectKind(t, evalErr(t, ast.If(tru, missing, ast.Int(0)), nil), runtime.KindVariableNotFound)
}

func TestConditionalBranchScope(t *testing.T) {
	expr := ast.If(tru, ast.LetIn(ast.ID("v"), ast.Bind("v", ast.Int(5))), ast.Int(0))
	expectRendered(t, mustEval(t, expr, nil), "5")
}

func TestStringInterpolation(t *testing.T) {
	ec := runtime.NewContext(nil)
	ec.Define("name", str("World"))
	ec.Define("nothing", nil)
	expectRendered(t, mustEval(t, ast.Interp("Hello ", ast.ID("name"), "!"), ec), "Hello World!")
	expectRendered(t, mustEval(t, ast.Interp("value=", ast.ID("nothing")), ec), "value=null")
	expectRendered(t, mustEval(t, ast.Interp(ast.Int(1), " ", ast.Real(2.5), " ", ast.Seq(integer(1), str("a"))), ec), "1 2.5 [1, a]")
	expectRendered(t, mustEval(t, ast.Interp(), ec), "")
}

func TestImplicitSelfMatchesExplicitNavigation(t *testing.T) {
	engine := newStubEngine()
	engine.set(circleRef, "name", str("unit circle"))
	ec := runtime.NewContext(engine)
	ec.Define("self", circle())
	implicit := mustEval(t, ast.ID("name"), ec)
	explicit := mustEval(t, ast.Nav(ast.Self(), "name"), ec)
	if diff := cmp.Diff(explicit, implicit); diff != "" {
		t.Fatalf("implicit self mismatch (-explicit +implicit):\n%s", diff)
	}
	expectRendered(t, implicit, "unit circle")
}

func TestNavigationNullSafety(t *testing.T) {
	engine := newStubEngine()
	ec := runtime.NewContext(engine)
	ec.Define("nothing", nil)
	for _, expr := range []ast.Expression{
		ast.Nav(ast.ID("nothing"), "name"),
		ast.SafeNav(ast.ID("nothing"), "name"),
		ast.Nav(ast.Int(3), "name"),
	} {
		if got := mustEval(t, expr, ec); !runtime.IsNull(got) {
			t.Fatalf("expected null, got %s", runtime.Render(got))
		}
	}
	if engine.callCount() != 0 {
		t.Fatalf("engine must not be consulted, got %d calls", engine.callCount())
	}
}

func TestNavigationOverSequenceCollects(t *testing.T) {
	engine := newStubEngine()
	a := &stubRef{id: "a", typ: "Node"}
	b := &stubRef{id: "b", typ: "Node"}
	c := &stubRef{id: "c", typ: "Node"}
	engine.set(a, "tags", runtime.NewSequence(str("x"), nil, str("y")))
	engine.set(b, "tags", str("z"))
	ec := runtime.NewContext(engine)
	ec.Define("nodes", runtime.NewSequence(runtime.Object(a), runtime.Object(b), runtime.Object(c), nil))
	got := mustEval(t, ast.Nav(ast.ID("nodes"), "tags"), ec)
	expectRendered(t, got, "[x, y, z]")
}

func TestNilSequencePointerIsEmpty(t *testing.T) {
	var missing *runtime.SequenceValue
	expectRendered(t, mustEval(t, ast.Nav(ast.NewLiteral(missing), "x"), nil), "[]")

	engine := newStubEngine()
	self := &stubRef{id: "n1", typ: "Node"}
	engine.set(self, "children", missing)
	ec := runtime.NewContext(engine)
	ec.Define("self", runtime.Object(self))
	expectRendered(t, mustEval(t, ast.Nav(ast.ID("children"), "name"), ec), "[]")
	expectRendered(t, mustEval(t, ast.CallExpr(ast.ID("children"), "size"), ec), "0")
	expectRendered(t, mustEval(t, ast.Coll(ast.ID("children"), "select", "c", tru), ec), "[]")
}

func TestEngineErrorPropagatesVerbatim(t *testing.T) {
	engine := newStubEngine()
	down := errors.New("model storage unavailable")
	engine.fail["owner"] = down
	ec := runtime.NewContext(engine)
	ec.Define("self", circle())
	expr := ast.LetIn(
		ast.Coll(ast.Seq(integer(1)), "collect", "i", ast.If(tru, ast.ID("owner"), ast.Int(0))),
		ast.Bind("unused", ast.Int(1)),
	)
	_, err := New().Evaluate(context.Background(), expr, ec)
	if err != down {
		t.Fatalf("expected engine error verbatim, got %v", err)
	}
	if ec.Depth() != 0 {
		t.Fatalf("scope leaked: depth %d", ec.Depth())
	}
	if runtime.ErrorKindOf(err) != "" {
		t.Fatalf("engine errors must stay outside the taxonomy")
	}
}

func TestNavigationWithoutEngine(t *testing.T) {
	ec := runtime.NewContext(nil)
	ec.Define("c", circle())
	expectKind(t, evalErr(t, ast.Nav(ast.ID("c"), "radius"), ec), runtime.KindInvalidOperation)
}

func TestMaxDepth(t *testing.T) {
	var expr ast.Expression = ast.Int(0)
	for range 20 {
		expr = ast.Bin(expr, "+", ast.Int(1))
	}
	ec := runtime.NewContext(nil)
	if _, err := New(WithMaxDepth(10)).Evaluate(context.Background(), expr, ec); !errors.Is(err, runtime.ErrInvalidOperation) {
		t.Fatalf("expected nesting limit error, got %v", err)
	}
	got, err := New(WithMaxDepth(64)).Evaluate(context.Background(), expr, ec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectRendered(t, got, "20")
}

func TestEvaluateRejectsMissingInputs(t *testing.T) {
	if _, err := Evaluate(context.Background(), nil, runtime.NewContext(nil)); !errors.Is(err, runtime.ErrInvalidOperation) {
		t.Fatalf("expected InvalidOperation for nil expression, got %v", err)
	}
	if _, err := Evaluate(context.Background(), ast.Int(1), nil); !errors.Is(err, runtime.ErrInvalidOperation) {
		t.Fatalf("expected InvalidOperation for nil context, got %v", err)
	}
}

func TestEvaluateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Evaluate(ctx, ast.Int(1), runtime.NewContext(nil)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestEvaluateEachIndependentSessions(t *testing.T) {
	engine := newStubEngine()
	contexts := make([]*runtime.Context, 0, 16)
	want := make([]string, 0, 16)
	for i := range 16 {
		ref := &stubRef{id: fmt.Sprintf("o%d", i), typ: "Circle", supers: []string{"Shape"}}
		engine.set(ref, "radius", integer(int64(i)))
		ec := runtime.NewContext(engine)
		ec.Define("self", runtime.Object(ref))
		contexts = append(contexts, ec)
		want = append(want, fmt.Sprintf("r=%d", i*2))
	}
	expr := ast.LetIn(
		ast.Interp("r=", ast.ID("twice")),
		ast.Bind("twice", ast.Bin(ast.ID("radius"), "*", ast.Int(2))),
	)
	results, err := New(WithConcurrency(4)).EvaluateEach(context.Background(), expr, contexts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := make([]string, 0, len(results))
	for _, v := range results {
		got = append(got, runtime.Render(v))
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("results mismatch (-want +got):\n%s", diff)
	}
	for idx, ec := range contexts {
		if ec.Depth() != 0 {
			t.Fatalf("context %d left unbalanced", idx)
		}
	}
}

func TestEvaluateEachReturnsFirstError(t *testing.T) {
	good := runtime.NewContext(nil)
	good.Define("x", integer(1))
	bad := runtime.NewContext(nil)
	_, err := New().EvaluateEach(context.Background(), ast.ID("x"), []*runtime.Context{good, bad})
	if !errors.Is(err, runtime.ErrVariableNotFound) {
		t.Fatalf("expected VariableNotFound, got %v", err)
	}
}
