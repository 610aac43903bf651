package interpreter

import (
	"context"

	"aql/interpreter-go/pkg/ast"
	"aql/interpreter-go/pkg/runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultMaxDepth bounds expression nesting during evaluation.
const DefaultMaxDepth = 512

// Interpreter evaluates query expression trees. It holds no per-session
// state and may be shared by concurrent evaluations.
type Interpreter struct {
	maxDepth    int
	concurrency int
}

type Option func(*Interpreter)

// WithMaxDepth sets the nesting limit; exceeding it is an InvalidOperation.
func WithMaxDepth(depth int) Option {
	return func(i *Interpreter) {
		if depth > 0 {
			i.maxDepth = depth
		}
	}
}

// WithConcurrency bounds the number of sessions EvaluateEach runs at once.
// Zero or less means unbounded.
func WithConcurrency(n int) Option {
	return func(i *Interpreter) {
		i.concurrency = n
	}
}

// New returns an interpreter configured by opts.
func New(opts ...Option) *Interpreter {
	i := &Interpreter{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Evaluate computes the value expr denotes in ec. A successful result is
// never Go nil; absence is runtime.NullValue. The first error raised
// anywhere in the tree aborts evaluation and is returned unchanged.
func (i *Interpreter) Evaluate(ctx context.Context, expr ast.Expression, ec *runtime.Context) (runtime.Value, error) {
	if expr == nil {
		return nil, runtime.NewInvalidOperation("nil expression")
	}
	if ec == nil {
		return nil, runtime.NewInvalidOperation("nil execution context")
	}
	s := &session{interp: i, ctx: ctx, env: ec}
	v, err := s.evaluate(expr)
	if err != nil {
		return nil, err
	}
	return runtime.Normalize(v), nil
}

// EvaluateEach evaluates one tree against independent contexts
// concurrently. Results are in input order. The first failure cancels the
// sessions that have not finished and is returned.
func (i *Interpreter) EvaluateEach(ctx context.Context, expr ast.Expression, contexts []*runtime.Context) ([]runtime.Value, error) {
	results := make([]runtime.Value, len(contexts))
	g, gctx := errgroup.WithContext(ctx)
	if i.concurrency > 0 {
		g.SetLimit(i.concurrency)
	}
	for idx, ec := range contexts {
		g.Go(func() error {
			v, err := i.Evaluate(gctx, expr, ec)
			if err != nil {
				return err
			}
			results[idx] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

var defaultInterpreter = New()

// Evaluate runs expr with the default interpreter.
func Evaluate(ctx context.Context, expr ast.Expression, ec *runtime.Context) (runtime.Value, error) {
	return defaultInterpreter.Evaluate(ctx, expr, ec)
}

// session is the state of one in-flight evaluation.
type session struct {
	interp *Interpreter
	ctx    context.Context
	env    *runtime.Context
	depth  int
}
