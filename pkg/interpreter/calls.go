package interpreter

import (
	"aql/interpreter-go/pkg/ast"
	"aql/interpreter-go/pkg/runtime"
)

// evaluateCall evaluates the source (or the implicit self) and then each
// argument in order before dispatching by method name. Type reflection
// operations receive their type argument unevaluated.
func (s *session) evaluateCall(call *ast.Call) (runtime.Value, error) {
	var (
		source runtime.Value
		err    error
	)
	if call.Source == nil {
		source, err = s.env.GetVariable(s.ctx, runtime.SelfName)
	} else {
		source, err = s.evaluate(call.Source)
	}
	if err != nil {
		return nil, err
	}
	if reflect, ok := typeReflectionOperations[call.Method]; ok {
		typeName, err := typeArgument(call.Method, call.Arguments)
		if err != nil {
			return nil, err
		}
		return reflect(source, typeName), nil
	}
	args := make([]runtime.Value, 0, len(call.Arguments))
	for _, argExpr := range call.Arguments {
		arg, err := s.evaluate(argExpr)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return invokeMethod(call.Method, source, args)
}

func invokeMethod(method string, source runtime.Value, args []runtime.Value) (runtime.Value, error) {
	source = runtime.Normalize(source)
	if method == "toString" {
		if err := checkArity(method, 0, 0, len(args)); err != nil {
			return nil, err
		}
		if runtime.IsNull(source) {
			return runtime.NullValue{}, nil
		}
		return runtime.StringValue{Val: runtime.Render(source)}, nil
	}
	strDef, isString := stringOperations[method]
	seqDef, isSequence := sequenceOperations[method]
	if !isString && !isSequence {
		return nil, runtime.NewInvalidOperation("unknown operation '%s' on %s", method, source.Kind())
	}
	switch src := source.(type) {
	case runtime.NullValue:
		return runtime.NullValue{}, nil
	case runtime.StringValue:
		if isString {
			if err := checkArity(method, strDef.MinArgs, strDef.MaxArgs, len(args)); err != nil {
				return nil, err
			}
			return strDef.Impl(src.Val, args)
		}
	}
	// Anything else, strings included, goes to the sequence library as a
	// singleton when it is not already a sequence.
	if !isSequence {
		return nil, runtime.NewInvalidOperation("operation '%s' is not defined on %s", method, source.Kind())
	}
	if err := checkArity(method, seqDef.MinArgs, seqDef.MaxArgs, len(args)); err != nil {
		return nil, err
	}
	return seqDef.Impl(asElements(source), args)
}

func checkArity(method string, min, max, got int) error {
	if got < min {
		return runtime.NewInvalidOperation("'%s' requires %d argument(s), got %d", method, min, got)
	}
	if got > max {
		return runtime.NewInvalidOperation("'%s' accepts at most %d argument(s), got %d", method, max, got)
	}
	return nil
}
