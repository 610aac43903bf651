package driver

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"aql/interpreter-go/pkg/debug"
	"aql/interpreter-go/pkg/interpreter"
	"aql/interpreter-go/pkg/model"
	"aql/interpreter-go/pkg/runtime"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
	"golang.org/x/sync/errgroup"
)

// Options tunes a suite run.
type Options struct {
	// Interpreter evaluates the queries; nil uses a default interpreter.
	Interpreter *interpreter.Interpreter
	// Model replaces loading the suite's model file.
	Model *model.Model
	// Concurrency overrides the suite setting when positive.
	Concurrency int
}

// Outcome is the result of one query.
type Outcome struct {
	Name     string
	Expected string
	// Rendered is the textual result, or "error: <Kind>" on failure.
	Rendered string
	Value    runtime.Value
	Err      error
	Passed   bool
}

// Diff renders the expected-versus-actual difference of a failed query.
// With color it uses terminal escapes; otherwise deletions are marked
// [-text-] and insertions {+text+}.
func (o Outcome) Diff(color bool) string {
	if o.Passed {
		return ""
	}
	dmp := diffpatch.New()
	diffs := dmp.DiffMain(o.Expected, o.Rendered, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	if color {
		return dmp.DiffPrettyText(diffs)
	}
	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffpatch.DiffDelete:
			b.WriteString("[-" + d.Text + "-]")
		case diffpatch.DiffInsert:
			b.WriteString("{+" + d.Text + "+}")
		case diffpatch.DiffEqual:
			b.WriteString(d.Text)
		}
	}
	return b.String()
}

// Run evaluates every query of suite, each in its own execution context,
// and returns outcomes in declaration order. Query failures are reported
// in the outcomes; the returned error covers setup failures and
// cancellation.
func Run(ctx context.Context, suite *Suite, opts Options) ([]Outcome, error) {
	m := opts.Model
	if m == nil {
		loaded, err := model.Load(suite.ModelPath)
		if err != nil {
			return nil, fmt.Errorf("suite %s: %w", suite.Name, err)
		}
		m = loaded
	}
	interp := opts.Interpreter
	if interp == nil {
		interp = interpreter.New()
	}
	limit := suite.Concurrency
	if opts.Concurrency > 0 {
		limit = opts.Concurrency
	}
	if limit <= 0 {
		limit = 1
	}

	contexts := make([]*runtime.Context, len(suite.Queries))
	for idx, q := range suite.Queries {
		ec, err := newQueryContext(m, suite.Bindings, q.Bindings)
		if err != nil {
			return nil, fmt.Errorf("suite %s query %s: %w", suite.Name, q.Name, err)
		}
		contexts[idx] = ec
	}

	outcomes := make([]Outcome, len(suite.Queries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for idx, q := range suite.Queries {
		g.Go(func() error {
			if debug.Suite() {
				debug.Logf("suite %s: query %s\n", suite.Name, q.Name)
			}
			v, err := interp.Evaluate(gctx, q.Expression, contexts[idx])
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			outcomes[idx] = judge(q, v, err)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func newQueryContext(m *model.Model, shared, local map[string]any) (*runtime.Context, error) {
	ec := runtime.NewContext(m)
	for _, bindings := range []map[string]any{shared, local} {
		names := make([]string, 0, len(bindings))
		for name := range bindings {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			v, err := m.BindingValue(bindings[name])
			if err != nil {
				return nil, fmt.Errorf("binding %s: %w", name, err)
			}
			ec.Define(name, v)
		}
	}
	return ec, nil
}

func judge(q *Query, v runtime.Value, err error) Outcome {
	out := Outcome{Name: q.Name, Expected: q.Expect.String(), Value: v, Err: err}
	if err != nil {
		kind := runtime.ErrorKindOf(err)
		if kind == "" {
			out.Rendered = "error: " + err.Error()
		} else {
			out.Rendered = "error: " + string(kind)
		}
		out.Passed = q.Expect.Result == nil && kind == q.Expect.Error
		return out
	}
	out.Rendered = runtime.Render(v)
	out.Passed = q.Expect.Result != nil && *q.Expect.Result == out.Rendered
	return out
}

// Failed counts outcomes that did not pass.
func Failed(outcomes []Outcome) int {
	n := 0
	for _, o := range outcomes {
		if !o.Passed {
			n++
		}
	}
	return n
}
