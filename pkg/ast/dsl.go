package ast

import "aql/interpreter-go/pkg/runtime"

// Literal helpers.

func Str(value string) *Literal {
	return NewLiteral(runtime.StringValue{Val: value})
}

func Int(value int64) *Literal {
	return NewLiteral(runtime.IntegerValue{Val: value})
}

func Real(value float64) *Literal {
	return NewLiteral(runtime.RealValue{Val: value})
}

func Bool(value bool) *Literal {
	return NewLiteral(runtime.BooleanValue{Val: value})
}

func Null() *Literal {
	return NewLiteral(runtime.NullValue{})
}

// Seq builds a literal sequence from already evaluated values.
func Seq(values ...runtime.Value) *Literal {
	return NewLiteral(runtime.NewSequence(values...))
}

// Names and navigation.

func ID(name string) *Variable {
	return NewVariable(name)
}

func Self() *Variable {
	return NewVariable(runtime.SelfName)
}

func Nav(source Expression, property string) *Navigation {
	return NewNavigation(source, property, false)
}

func SafeNav(source Expression, property string) *Navigation {
	return NewNavigation(source, property, true)
}

func CallExpr(source Expression, method string, args ...Expression) *Call {
	return NewCall(source, method, args)
}

// Operators.

func Bin(left Expression, operator string, right Expression) *Binary {
	return NewBinary(left, operator, right)
}

func Un(operator string, operand Expression) *Unary {
	return NewUnary(operator, operand)
}

// Control.

func If(condition, then, els Expression) *Conditional {
	return NewConditional(condition, then, els)
}

func Bind(name string, value Expression) *LetBinding {
	return &LetBinding{Name: name, Value: value}
}

func LetIn(body Expression, bindings ...*LetBinding) *Let {
	return NewLet(bindings, body)
}

func Coll(source Expression, operation, iterator string, body Expression) *CollectionOp {
	return NewCollectionOp(source, operation, iterator, body)
}

// Interp builds an interpolation; plain strings become string literals.
func Interp(parts ...any) *StringInterpolation {
	exprs := make([]Expression, 0, len(parts))
	for _, part := range parts {
		switch p := part.(type) {
		case string:
			exprs = append(exprs, Str(p))
		case Expression:
			exprs = append(exprs, p)
		}
	}
	return NewStringInterpolation(exprs)
}
