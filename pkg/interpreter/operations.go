package interpreter

import (
	"cmp"
	"math"

	"aql/interpreter-go/pkg/runtime"
)

func applyBinaryOperator(op string, left, right runtime.Value) (runtime.Value, error) {
	switch op {
	case "and", "or", "implies", "xor":
		return evaluateLogical(op, left, right), nil
	case "=":
		return runtime.Bool(valuesEqual(left, right)), nil
	case "<>":
		return runtime.Bool(!valuesEqual(left, right)), nil
	case "+", "-", "*", "/", "div", "mod", "%":
		return evaluateArithmetic(op, left, right)
	case "<", ">", "<=", ">=":
		return evaluateComparison(op, left, right)
	default:
		return nil, runtime.NewInvalidOperation("unknown binary operator '%s'", op)
	}
}

func applyUnaryOperator(op string, operand runtime.Value) (runtime.Value, error) {
	switch op {
	case "not":
		b, ok := runtime.AsBool(operand)
		if !ok {
			return runtime.NullValue{}, nil
		}
		return runtime.Bool(!b), nil
	case "-":
		switch v := runtime.Normalize(operand).(type) {
		case runtime.NullValue:
			return v, nil
		case runtime.IntegerValue:
			return runtime.IntegerValue{Val: -v.Val}, nil
		case runtime.RealValue:
			return runtime.RealValue{Val: -v.Val}, nil
		default:
			return nil, runtime.NewTypeError("cannot negate %s", v.Kind())
		}
	default:
		return nil, runtime.NewInvalidOperation("unknown unary operator '%s'", op)
	}
}

// evaluateLogical implements three-valued logic. Non-boolean operands,
// null included, are unknown.
func evaluateLogical(op string, left, right runtime.Value) runtime.Value {
	l, lok := runtime.AsBool(left)
	r, rok := runtime.AsBool(right)
	lFalse, rFalse := lok && !l, rok && !r
	lTrue, rTrue := lok && l, rok && r
	switch op {
	case "and":
		if lFalse || rFalse {
			return runtime.Bool(false)
		}
		if lTrue && rTrue {
			return runtime.Bool(true)
		}
	case "or":
		if lTrue || rTrue {
			return runtime.Bool(true)
		}
		if lFalse && rFalse {
			return runtime.Bool(false)
		}
	case "implies":
		if lFalse || rTrue {
			return runtime.Bool(true)
		}
		if lTrue && rFalse {
			return runtime.Bool(false)
		}
	case "xor":
		if lok && rok {
			return runtime.Bool(l != r)
		}
	}
	return runtime.NullValue{}
}

// valuesEqual compares two non-null values by their textual
// representation, so Integer 1 equals Real 1.0 and the String "1".
func valuesEqual(left, right runtime.Value) bool {
	lNull, rNull := runtime.IsNull(left), runtime.IsNull(right)
	if lNull || rNull {
		return lNull && rNull
	}
	return runtime.Render(left) == runtime.Render(right)
}

func numericToFloat(v runtime.Value) (float64, bool) {
	switch n := v.(type) {
	case runtime.IntegerValue:
		return float64(n.Val), true
	case runtime.RealValue:
		return n.Val, true
	default:
		return 0, false
	}
}

func evaluateArithmetic(op string, left, right runtime.Value) (runtime.Value, error) {
	if runtime.IsNull(left) || runtime.IsNull(right) {
		return runtime.NullValue{}, nil
	}
	if li, ok := left.(runtime.IntegerValue); ok {
		if ri, ok := right.(runtime.IntegerValue); ok {
			return integerArithmetic(op, li.Val, ri.Val)
		}
	}
	lf, lok := numericToFloat(left)
	rf, rok := numericToFloat(right)
	if lok && rok {
		return realArithmetic(op, lf, rf)
	}
	if op == "+" {
		ls, lok := left.(runtime.StringValue)
		rs, rok := right.(runtime.StringValue)
		if lok && rok {
			return runtime.StringValue{Val: ls.Val + rs.Val}, nil
		}
	}
	return nil, runtime.NewTypeError("unsupported operand types for %s: %s and %s", op, left.Kind(), right.Kind())
}

func integerArithmetic(op string, l, r int64) (runtime.Value, error) {
	switch op {
	case "+":
		return runtime.IntegerValue{Val: l + r}, nil
	case "-":
		return runtime.IntegerValue{Val: l - r}, nil
	case "*":
		return runtime.IntegerValue{Val: l * r}, nil
	case "/", "div":
		if r == 0 {
			return nil, runtime.NewInvalidOperation("division by zero")
		}
		return runtime.IntegerValue{Val: l / r}, nil
	default:
		if r == 0 {
			return nil, runtime.NewInvalidOperation("modulo by zero")
		}
		return runtime.IntegerValue{Val: l % r}, nil
	}
}

func realArithmetic(op string, l, r float64) (runtime.Value, error) {
	switch op {
	case "+":
		return runtime.RealValue{Val: l + r}, nil
	case "-":
		return runtime.RealValue{Val: l - r}, nil
	case "*":
		return runtime.RealValue{Val: l * r}, nil
	case "/", "div":
		if r == 0 {
			return nil, runtime.NewInvalidOperation("division by zero")
		}
		return runtime.RealValue{Val: l / r}, nil
	default:
		if r == 0 {
			return nil, runtime.NewInvalidOperation("modulo by zero")
		}
		return runtime.RealValue{Val: math.Mod(l, r)}, nil
	}
}

func evaluateComparison(op string, left, right runtime.Value) (runtime.Value, error) {
	if runtime.IsNull(left) || runtime.IsNull(right) {
		return runtime.NullValue{}, nil
	}
	var order int
	li, lInt := left.(runtime.IntegerValue)
	ri, rInt := right.(runtime.IntegerValue)
	ls, lStr := left.(runtime.StringValue)
	rs, rStr := right.(runtime.StringValue)
	switch {
	case lInt && rInt:
		order = cmp.Compare(li.Val, ri.Val)
	case lStr && rStr:
		order = cmp.Compare(ls.Val, rs.Val)
	default:
		lf, lok := numericToFloat(left)
		rf, rok := numericToFloat(right)
		if !lok || !rok {
			return nil, runtime.NewTypeError("cannot compare %s and %s with %s", left.Kind(), right.Kind(), op)
		}
		order = cmp.Compare(lf, rf)
	}
	switch op {
	case "<":
		return runtime.Bool(order < 0), nil
	case ">":
		return runtime.Bool(order > 0), nil
	case "<=":
		return runtime.Bool(order <= 0), nil
	default:
		return runtime.Bool(order >= 0), nil
	}
}
