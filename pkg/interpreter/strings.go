package interpreter

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"aql/interpreter-go/pkg/runtime"
)

// stringOperationDef describes one operation of the string library.
type stringOperationDef struct {
	Name    string
	MinArgs int
	MaxArgs int
	Impl    func(s string, args []runtime.Value) (runtime.Value, error)
}

var stringOperations = map[string]*stringOperationDef{}

func registerStringOperation(def *stringOperationDef, aliases ...string) {
	stringOperations[def.Name] = def
	for _, alias := range aliases {
		stringOperations[alias] = def
	}
}

func init() {
	registerStringOperation(&stringOperationDef{Name: "size", Impl: stringSize}, "length")
	registerStringOperation(&stringOperationDef{Name: "toUpperCase", Impl: func(s string, _ []runtime.Value) (runtime.Value, error) {
		return runtime.StringValue{Val: strings.ToUpper(s)}, nil
	}}, "upper")
	registerStringOperation(&stringOperationDef{Name: "toLowerCase", Impl: func(s string, _ []runtime.Value) (runtime.Value, error) {
		return runtime.StringValue{Val: strings.ToLower(s)}, nil
	}}, "lower")
	registerStringOperation(&stringOperationDef{Name: "substring", MinArgs: 1, MaxArgs: 2, Impl: stringSubstring})
	registerStringOperation(&stringOperationDef{Name: "startsWith", MinArgs: 1, MaxArgs: 1, Impl: stringPredicate("startsWith", strings.HasPrefix)})
	registerStringOperation(&stringOperationDef{Name: "endsWith", MinArgs: 1, MaxArgs: 1, Impl: stringPredicate("endsWith", strings.HasSuffix)})
	registerStringOperation(&stringOperationDef{Name: "contains", MinArgs: 1, MaxArgs: 1, Impl: stringPredicate("contains", strings.Contains)})
	registerStringOperation(&stringOperationDef{Name: "trim", Impl: func(s string, _ []runtime.Value) (runtime.Value, error) {
		return runtime.StringValue{Val: strings.TrimSpace(s)}, nil
	}})
	registerStringOperation(&stringOperationDef{Name: "replace", MinArgs: 2, MaxArgs: 2, Impl: stringReplace})
	registerStringOperation(&stringOperationDef{Name: "concat", MinArgs: 1, MaxArgs: 1, Impl: stringConcat})
	registerStringOperation(&stringOperationDef{Name: "indexOf", MinArgs: 1, MaxArgs: 1, Impl: stringIndexOf})
	registerStringOperation(&stringOperationDef{Name: "matches", MinArgs: 1, MaxArgs: 1, Impl: stringMatches})
	registerStringOperation(&stringOperationDef{Name: "isEmpty", Impl: func(s string, _ []runtime.Value) (runtime.Value, error) {
		return runtime.Bool(s == ""), nil
	}})
	registerStringOperation(&stringOperationDef{Name: "notEmpty", Impl: func(s string, _ []runtime.Value) (runtime.Value, error) {
		return runtime.Bool(s != ""), nil
	}})
	registerStringOperation(&stringOperationDef{Name: "at", MinArgs: 1, MaxArgs: 1, Impl: stringAt})
}

func stringArg(op string, args []runtime.Value, idx int) (string, error) {
	s, ok := args[idx].(runtime.StringValue)
	if !ok {
		return "", runtime.NewTypeError("%s expects a String argument, got %s", op, runtime.KindName(args[idx]))
	}
	return s.Val, nil
}

func integerArg(op string, args []runtime.Value, idx int) (int64, error) {
	n, ok := args[idx].(runtime.IntegerValue)
	if !ok {
		return 0, runtime.NewTypeError("%s expects an Integer argument, got %s", op, runtime.KindName(args[idx]))
	}
	return n.Val, nil
}

func stringSize(s string, _ []runtime.Value) (runtime.Value, error) {
	return runtime.IntegerValue{Val: int64(utf8.RuneCountInString(s))}, nil
}

// stringSubstring takes a half-open [start, end) range of character
// indexes starting at 0; end defaults to the string length.
func stringSubstring(s string, args []runtime.Value) (runtime.Value, error) {
	runes := []rune(s)
	start, err := integerArg("substring", args, 0)
	if err != nil {
		return nil, err
	}
	end := int64(len(runes))
	if len(args) > 1 {
		if end, err = integerArg("substring", args, 1); err != nil {
			return nil, err
		}
	}
	if start < 0 || end < start || end > int64(len(runes)) {
		return nil, runtime.NewTypeError("substring range [%d, %d) out of bounds for length %d", start, end, len(runes))
	}
	return runtime.StringValue{Val: string(runes[start:end])}, nil
}

func stringPredicate(op string, pred func(s, sub string) bool) func(string, []runtime.Value) (runtime.Value, error) {
	return func(s string, args []runtime.Value) (runtime.Value, error) {
		sub, err := stringArg(op, args, 0)
		if err != nil {
			return nil, err
		}
		return runtime.Bool(pred(s, sub)), nil
	}
}

func stringReplace(s string, args []runtime.Value) (runtime.Value, error) {
	old, err := stringArg("replace", args, 0)
	if err != nil {
		return nil, err
	}
	repl, err := stringArg("replace", args, 1)
	if err != nil {
		return nil, err
	}
	return runtime.StringValue{Val: strings.ReplaceAll(s, old, repl)}, nil
}

func stringConcat(s string, args []runtime.Value) (runtime.Value, error) {
	other, err := stringArg("concat", args, 0)
	if err != nil {
		return nil, err
	}
	return runtime.StringValue{Val: s + other}, nil
}

// stringIndexOf is 1-based; 0 means absent.
func stringIndexOf(s string, args []runtime.Value) (runtime.Value, error) {
	sub, err := stringArg("indexOf", args, 0)
	if err != nil {
		return nil, err
	}
	idx := strings.Index(s, sub)
	if idx < 0 {
		return runtime.IntegerValue{Val: 0}, nil
	}
	return runtime.IntegerValue{Val: int64(utf8.RuneCountInString(s[:idx])) + 1}, nil
}

func stringMatches(s string, args []runtime.Value) (runtime.Value, error) {
	pattern, err := stringArg("matches", args, 0)
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, runtime.NewInvalidOperation("invalid pattern %q: %v", pattern, err)
	}
	return runtime.Bool(re.MatchString(s)), nil
}

// stringAt returns the character at a 1-based index.
func stringAt(s string, args []runtime.Value) (runtime.Value, error) {
	idx, err := integerArg("at", args, 0)
	if err != nil {
		return nil, err
	}
	runes := []rune(s)
	if idx < 1 || idx > int64(len(runes)) {
		return nil, runtime.NewTypeError("index %d out of bounds for length %d", idx, len(runes))
	}
	return runtime.StringValue{Val: string(runes[idx-1])}, nil
}
