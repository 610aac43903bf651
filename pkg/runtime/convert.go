package runtime

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// FromGo converts a generic decoded document value (as produced by
// encoding/json or gopkg.in/yaml.v3) into a runtime value. Object
// references cannot be expressed this way.
func FromGo(raw any) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return NullValue{}, nil
	case Value:
		return Normalize(v), nil
	case bool:
		return BooleanValue{Val: v}, nil
	case int:
		return IntegerValue{Val: int64(v)}, nil
	case int64:
		return IntegerValue{Val: v}, nil
	case uint64:
		if v > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d out of range", v)
		}
		return IntegerValue{Val: int64(v)}, nil
	case float64:
		return RealValue{Val: v}, nil
	case json.Number:
		return fromJSONNumber(v)
	case string:
		return StringValue{Val: v}, nil
	case []any:
		elements := make([]Value, 0, len(v))
		for idx, el := range v {
			conv, err := FromGo(el)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			elements = append(elements, conv)
		}
		return &SequenceValue{Elements: elements}, nil
	default:
		return nil, fmt.Errorf("unsupported value %T", raw)
	}
}

func fromJSONNumber(n json.Number) (Value, error) {
	text := n.String()
	if !strings.ContainsAny(text, ".eE") {
		if i, err := n.Int64(); err == nil {
			return IntegerValue{Val: i}, nil
		}
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", text, err)
	}
	return RealValue{Val: f}, nil
}

// ToInteger coerces a decoded number to an integer value, accepting
// integral reals (JSON decodes every number as float64).
func ToInteger(raw any) (IntegerValue, error) {
	v, err := FromGo(raw)
	if err != nil {
		return IntegerValue{}, err
	}
	switch n := v.(type) {
	case IntegerValue:
		return n, nil
	case RealValue:
		if n.Val == math.Trunc(n.Val) && n.Val >= math.MinInt64 && n.Val < -math.MinInt64 {
			return IntegerValue{Val: int64(n.Val)}, nil
		}
		return IntegerValue{}, fmt.Errorf("%v is not an integer", n.Val)
	}
	return IntegerValue{}, fmt.Errorf("expected integer, got %s", KindName(v))
}

// ToReal coerces a decoded number to a real value.
func ToReal(raw any) (RealValue, error) {
	v, err := FromGo(raw)
	if err != nil {
		return RealValue{}, err
	}
	switch n := v.(type) {
	case IntegerValue:
		return RealValue{Val: float64(n.Val)}, nil
	case RealValue:
		return n, nil
	}
	return RealValue{}, fmt.Errorf("expected real, got %s", KindName(v))
}
