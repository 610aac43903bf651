package interpreter

import (
	"strings"

	"aql/interpreter-go/pkg/ast"
	"aql/interpreter-go/pkg/debug"
	"aql/interpreter-go/pkg/runtime"
)

func (s *session) evaluate(expr ast.Expression) (runtime.Value, error) {
	if expr == nil {
		return nil, runtime.NewInvalidOperation("missing expression")
	}
	if err := s.ctx.Err(); err != nil {
		return nil, err
	}
	s.depth++
	defer func() { s.depth-- }()
	if s.depth > s.interp.maxDepth {
		return nil, runtime.NewInvalidOperation("expression nesting exceeds %d", s.interp.maxDepth)
	}

	v, err := s.evaluateNode(expr)
	if err != nil {
		return nil, err
	}
	v = runtime.Normalize(v)
	if debug.Eval() {
		debug.Logf("eval %s depth=%d -> %s\n", expr.NodeType(), s.depth, v.Kind())
	}
	return v, nil
}

func (s *session) evaluateNode(expr ast.Expression) (runtime.Value, error) {
	switch n := expr.(type) {
	case *ast.Literal:
		return n.Value, nil
	case *ast.Variable:
		return s.env.GetVariable(s.ctx, n.Name)
	case *ast.Navigation:
		return s.evaluateNavigation(n)
	case *ast.Call:
		return s.evaluateCall(n)
	case *ast.Binary:
		return s.evaluateBinary(n)
	case *ast.Unary:
		return s.evaluateUnary(n)
	case *ast.Conditional:
		return s.evaluateConditional(n)
	case *ast.Let:
		return s.evaluateLet(n)
	case *ast.CollectionOp:
		return s.evaluateCollectionOp(n)
	case *ast.StringInterpolation:
		return s.evaluateStringInterpolation(n)
	default:
		return nil, runtime.NewInvalidOperation("unsupported expression %T", expr)
	}
}

func (s *session) evaluateNavigation(expr *ast.Navigation) (runtime.Value, error) {
	source, err := s.evaluate(expr.Source)
	if err != nil {
		return nil, err
	}
	seq, ok := source.(*runtime.SequenceValue)
	if !ok {
		return s.env.Navigate(s.ctx, source, expr.Property)
	}
	// Navigating a sequence collects the property of every element.
	out := make([]runtime.Value, 0, len(seq.Elements))
	for _, el := range seq.Elements {
		v, err := s.env.Navigate(s.ctx, el, expr.Property)
		if err != nil {
			return nil, err
		}
		switch val := v.(type) {
		case runtime.NullValue:
		case *runtime.SequenceValue:
			for _, inner := range val.Elements {
				if !runtime.IsNull(inner) {
					out = append(out, inner)
				}
			}
		default:
			out = append(out, val)
		}
	}
	return &runtime.SequenceValue{Elements: out}, nil
}

func (s *session) evaluateBinary(expr *ast.Binary) (runtime.Value, error) {
	left, err := s.evaluate(expr.Left)
	if err != nil {
		return nil, err
	}
	right, err := s.evaluate(expr.Right)
	if err != nil {
		return nil, err
	}
	return applyBinaryOperator(expr.Operator, left, right)
}

func (s *session) evaluateUnary(expr *ast.Unary) (runtime.Value, error) {
	operand, err := s.evaluate(expr.Operand)
	if err != nil {
		return nil, err
	}
	return applyUnaryOperator(expr.Operator, operand)
}

func (s *session) evaluateConditional(expr *ast.Conditional) (runtime.Value, error) {
	cond, err := s.evaluate(expr.Condition)
	if err != nil {
		return nil, err
	}
	truth, ok := runtime.AsBool(cond)
	if !ok {
		return runtime.NullValue{}, nil
	}
	branch := expr.Else
	if truth {
		branch = expr.Then
	}
	return s.env.WithScope(func() (runtime.Value, error) {
		return s.evaluate(branch)
	})
}

func (s *session) evaluateLet(expr *ast.Let) (runtime.Value, error) {
	return s.env.WithScope(func() (runtime.Value, error) {
		for _, binding := range expr.Bindings {
			if binding == nil || binding.Name == "" {
				return nil, runtime.NewInvalidOperation("let binding requires a name")
			}
			v, err := s.evaluate(binding.Value)
			if err != nil {
				return nil, err
			}
			s.env.Define(binding.Name, v)
		}
		return s.evaluate(expr.Body)
	})
}

func (s *session) evaluateStringInterpolation(expr *ast.StringInterpolation) (runtime.Value, error) {
	var builder strings.Builder
	for _, part := range expr.Parts {
		v, err := s.evaluate(part)
		if err != nil {
			return nil, err
		}
		builder.WriteString(runtime.Render(v))
	}
	return runtime.StringValue{Val: builder.String()}, nil
}
