package interpreter

import (
	"slices"

	"aql/interpreter-go/pkg/ast"
	"aql/interpreter-go/pkg/runtime"

	"github.com/emirpasic/gods/sets/linkedhashset"
)

// sequenceOperationDef describes a direct, non-iterating sequence
// operation. Operations taking no arguments are also available as
// collection operations.
type sequenceOperationDef struct {
	Name    string
	MinArgs int
	MaxArgs int
	// NullDefault is the collection-operation result for a null source.
	NullDefault runtime.Value
	Impl        func(elements []runtime.Value, args []runtime.Value) (runtime.Value, error)
}

var sequenceOperations = map[string]*sequenceOperationDef{}

func registerSequenceOperation(def *sequenceOperationDef) {
	if def.NullDefault == nil {
		def.NullDefault = runtime.NullValue{}
	}
	sequenceOperations[def.Name] = def
}

func init() {
	registerSequenceOperation(&sequenceOperationDef{Name: "size", NullDefault: runtime.IntegerValue{Val: 0}, Impl: func(els []runtime.Value, _ []runtime.Value) (runtime.Value, error) {
		return runtime.IntegerValue{Val: int64(len(els))}, nil
	}})
	registerSequenceOperation(&sequenceOperationDef{Name: "isEmpty", NullDefault: runtime.Bool(true), Impl: func(els []runtime.Value, _ []runtime.Value) (runtime.Value, error) {
		return runtime.Bool(len(els) == 0), nil
	}})
	registerSequenceOperation(&sequenceOperationDef{Name: "notEmpty", NullDefault: runtime.Bool(false), Impl: func(els []runtime.Value, _ []runtime.Value) (runtime.Value, error) {
		return runtime.Bool(len(els) > 0), nil
	}})
	registerSequenceOperation(&sequenceOperationDef{Name: "first", Impl: func(els []runtime.Value, _ []runtime.Value) (runtime.Value, error) {
		if len(els) == 0 {
			return runtime.NullValue{}, nil
		}
		return els[0], nil
	}})
	registerSequenceOperation(&sequenceOperationDef{Name: "last", Impl: func(els []runtime.Value, _ []runtime.Value) (runtime.Value, error) {
		if len(els) == 0 {
			return runtime.NullValue{}, nil
		}
		return els[len(els)-1], nil
	}})
	registerSequenceOperation(&sequenceOperationDef{Name: "includes", MinArgs: 1, MaxArgs: 1, Impl: func(els []runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return runtime.Bool(sequenceIncludes(els, args[0])), nil
	}})
	registerSequenceOperation(&sequenceOperationDef{Name: "excludes", MinArgs: 1, MaxArgs: 1, Impl: func(els []runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return runtime.Bool(!sequenceIncludes(els, args[0])), nil
	}})
	registerSequenceOperation(&sequenceOperationDef{Name: "at", MinArgs: 1, MaxArgs: 1, Impl: sequenceAt})
	registerSequenceOperation(&sequenceOperationDef{Name: "sum", Impl: sequenceSum})
	registerSequenceOperation(&sequenceOperationDef{Name: "reverse", Impl: func(els []runtime.Value, _ []runtime.Value) (runtime.Value, error) {
		out := slices.Clone(els)
		slices.Reverse(out)
		return sequenceOf(out), nil
	}})
	registerSequenceOperation(&sequenceOperationDef{Name: "asSet", Impl: func(els []runtime.Value, _ []runtime.Value) (runtime.Value, error) {
		return &runtime.SequenceValue{Elements: distinct(els)}, nil
	}})
}

// asElements views a non-null source as a sequence; scalars become a
// single-element sequence.
func asElements(source runtime.Value) []runtime.Value {
	if seq, ok := source.(*runtime.SequenceValue); ok {
		if seq == nil {
			return nil
		}
		return seq.Elements
	}
	return []runtime.Value{source}
}

func sequenceIncludes(els []runtime.Value, needle runtime.Value) bool {
	for _, el := range els {
		if valuesEqual(el, needle) {
			return true
		}
	}
	return false
}

// sequenceAt reads a 1-based index.
func sequenceAt(els []runtime.Value, args []runtime.Value) (runtime.Value, error) {
	idx, err := integerArg("at", args, 0)
	if err != nil {
		return nil, err
	}
	if idx < 1 || idx > int64(len(els)) {
		return nil, runtime.NewTypeError("index %d out of bounds for size %d", idx, len(els))
	}
	return els[idx-1], nil
}

// sequenceSum adds numeric elements, widening to Real when any element is
// Real. An empty sequence sums to Integer 0.
func sequenceSum(els []runtime.Value, _ []runtime.Value) (runtime.Value, error) {
	var acc runtime.Value = runtime.IntegerValue{Val: 0}
	for _, el := range els {
		switch el.(type) {
		case runtime.IntegerValue, runtime.RealValue:
		default:
			return nil, runtime.NewTypeError("sum expects numeric elements, got %s", runtime.KindName(el))
		}
		next, err := evaluateArithmetic("+", acc, el)
		if err != nil {
			return nil, err
		}
		acc = next
	}
	return acc, nil
}

// distinct keeps the first occurrence of every value, comparing by
// textual representation like the equality operators.
func distinct(els []runtime.Value) []runtime.Value {
	seen := linkedhashset.New()
	out := make([]runtime.Value, 0, len(els))
	for _, el := range els {
		key := runtime.Render(el)
		if seen.Contains(key) {
			continue
		}
		seen.Add(key)
		out = append(out, el)
	}
	return out
}

// iteratorOperation runs a body once per element, in order, and decides
// the result. It stops early when the step reports done.
type iteratorOperation struct {
	start  func() iteratorState
	finish func(st iteratorState) runtime.Value
}

type iteratorState interface {
	step(element, result runtime.Value) (done bool)
}

var iteratorOperations = map[string]iteratorOperation{
	"select": {
		start:  func() iteratorState { return &filterState{keep: isTrue} },
		finish: func(st iteratorState) runtime.Value { return st.(*filterState).result() },
	},
	"reject": {
		start:  func() iteratorState { return &filterState{keep: func(v runtime.Value) bool { return !isTrue(v) }} },
		finish: func(st iteratorState) runtime.Value { return st.(*filterState).result() },
	},
	"collect": {
		start:  func() iteratorState { return &collectState{} },
		finish: func(st iteratorState) runtime.Value { return sequenceOf(st.(*collectState).out) },
	},
	"any": {
		start:  func() iteratorState { return &anyState{} },
		finish: func(st iteratorState) runtime.Value { return runtime.Bool(st.(*anyState).found) },
	},
	"exists": {
		start:  func() iteratorState { return &anyState{} },
		finish: func(st iteratorState) runtime.Value { return runtime.Bool(st.(*anyState).found) },
	},
	"forAll": {
		start:  func() iteratorState { return &forAllState{ok: true} },
		finish: func(st iteratorState) runtime.Value { return runtime.Bool(st.(*forAllState).ok) },
	},
	"one": {
		start:  func() iteratorState { return &oneState{} },
		finish: func(st iteratorState) runtime.Value { return runtime.Bool(st.(*oneState).matches == 1) },
	},
	"isUnique": {
		start:  func() iteratorState { return &uniqueState{seen: linkedhashset.New(), unique: true} },
		finish: func(st iteratorState) runtime.Value { return runtime.Bool(st.(*uniqueState).unique) },
	},
}

func isTrue(v runtime.Value) bool {
	b, ok := runtime.AsBool(v)
	return ok && b
}

type filterState struct {
	keep func(runtime.Value) bool
	out  []runtime.Value
}

func (st *filterState) step(element, result runtime.Value) bool {
	if st.keep(result) {
		st.out = append(st.out, element)
	}
	return false
}

func (st *filterState) result() runtime.Value {
	return sequenceOf(st.out)
}

func sequenceOf(elements []runtime.Value) *runtime.SequenceValue {
	if elements == nil {
		elements = []runtime.Value{}
	}
	return &runtime.SequenceValue{Elements: elements}
}

type collectState struct {
	out []runtime.Value
}

func (st *collectState) step(_, result runtime.Value) bool {
	if !runtime.IsNull(result) {
		st.out = append(st.out, result)
	}
	return false
}

type anyState struct {
	found bool
}

func (st *anyState) step(_, result runtime.Value) bool {
	st.found = isTrue(result)
	return st.found
}

type forAllState struct {
	ok bool
}

func (st *forAllState) step(_, result runtime.Value) bool {
	st.ok = isTrue(result)
	return !st.ok
}

type oneState struct {
	matches int
}

func (st *oneState) step(_, result runtime.Value) bool {
	if isTrue(result) {
		st.matches++
	}
	return st.matches > 1
}

type uniqueState struct {
	seen   *linkedhashset.Set
	unique bool
}

func (st *uniqueState) step(_, result runtime.Value) bool {
	key := runtime.Render(result)
	if st.seen.Contains(key) {
		st.unique = false
		return true
	}
	st.seen.Add(key)
	return false
}

func (s *session) evaluateCollectionOp(expr *ast.CollectionOp) (runtime.Value, error) {
	iterOp, isIterator := iteratorOperations[expr.Operation]
	scalarOp, isScalar := sequenceOperations[expr.Operation]
	if isScalar && scalarOp.MinArgs > 0 {
		isScalar = false
	}
	if !isIterator && !isScalar {
		return nil, runtime.NewInvalidOperation("unknown collection operation '%s'", expr.Operation)
	}
	source, err := s.evaluate(expr.Source)
	if err != nil {
		return nil, err
	}
	if runtime.IsNull(source) {
		if isScalar {
			return scalarOp.NullDefault, nil
		}
		return runtime.NullValue{}, nil
	}
	elements := asElements(source)
	if isScalar {
		return scalarOp.Impl(elements, nil)
	}
	if expr.Body == nil {
		return nil, runtime.NewInvalidOperation("collection operation '%s' requires a body", expr.Operation)
	}
	iterator := expr.Iterator
	if iterator == "" {
		iterator = runtime.SelfName
	}
	state := iterOp.start()
	for _, el := range elements {
		result, err := s.env.WithScope(func() (runtime.Value, error) {
			s.env.Define(iterator, el)
			return s.evaluate(expr.Body)
		})
		if err != nil {
			return nil, err
		}
		if state.step(el, result) {
			break
		}
	}
	return iterOp.finish(state), nil
}
