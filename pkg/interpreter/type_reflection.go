package interpreter

import (
	"slices"

	"aql/interpreter-go/pkg/ast"
	"aql/interpreter-go/pkg/runtime"
)

type typeReflection func(source runtime.Value, typeName string) runtime.Value

var typeReflectionOperations = map[string]typeReflection{
	"oclIsKindOf": isKindOf,
	"oclIsTypeOf": isTypeOf,
	"oclAsType":   asType,
}

// typeArgument extracts the literal type name; the argument must be a bare
// name and is never evaluated.
func typeArgument(method string, args []ast.Expression) (string, error) {
	if len(args) == 0 {
		return "", runtime.NewInvalidOperation("%s requires a type argument", method)
	}
	if len(args) > 1 {
		return "", runtime.NewInvalidOperation("%s takes exactly one type argument, got %d", method, len(args))
	}
	name, ok := args[0].(*ast.Variable)
	if !ok || name.Name == "" {
		return "", runtime.NewInvalidOperation("%s argument must name a type, got %s", method, args[0].NodeType())
	}
	return name.Name, nil
}

func isKindOf(source runtime.Value, typeName string) runtime.Value {
	if runtime.IsNull(source) {
		return runtime.Bool(false)
	}
	if ref, ok := runtime.ObjectRef(source); ok {
		return runtime.Bool(ref.TypeName() == typeName || slices.Contains(ref.Supertypes(), typeName))
	}
	return runtime.Bool(runtime.KindName(source) == typeName)
}

func isTypeOf(source runtime.Value, typeName string) runtime.Value {
	if runtime.IsNull(source) {
		return runtime.Bool(false)
	}
	if ref, ok := runtime.ObjectRef(source); ok {
		return runtime.Bool(ref.TypeName() == typeName)
	}
	return runtime.Bool(runtime.KindName(source) == typeName)
}

// asType is an identity pass-through; null stays null.
func asType(source runtime.Value, _ string) runtime.Value {
	return runtime.Normalize(source)
}
