package runtime

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNull Kind = iota
	KindBoolean
	KindInteger
	KindReal
	KindString
	KindSequence
	KindObject
)

// String returns the kind name used by type reflection on non-object values.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBoolean:
		return "Boolean"
	case KindInteger:
		return "Integer"
	case KindReal:
		return "Real"
	case KindString:
		return "String"
	case KindSequence:
		return "Sequence"
	case KindObject:
		return "Object"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values. The set of
// implementations is closed: every value is one of the types below.
type Value interface {
	Kind() Kind
	isValue()
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type NullValue struct{}

func (NullValue) Kind() Kind { return KindNull }
func (NullValue) isValue()   {}

type BooleanValue struct {
	Val bool
}

func (v BooleanValue) Kind() Kind { return KindBoolean }
func (BooleanValue) isValue()     {}

type IntegerValue struct {
	Val int64
}

func (v IntegerValue) Kind() Kind { return KindInteger }
func (IntegerValue) isValue()     {}

type RealValue struct {
	Val float64
}

func (v RealValue) Kind() Kind { return KindReal }
func (RealValue) isValue()     {}

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }
func (StringValue) isValue()     {}

//-----------------------------------------------------------------------------
// Sequences
//-----------------------------------------------------------------------------

// SequenceValue is ordered and allows duplicates. Elements are never Go nil.
type SequenceValue struct {
	Elements []Value
}

func (v *SequenceValue) Kind() Kind { return KindSequence }
func (*SequenceValue) isValue()     {}

// NewSequence builds a sequence, normalising Go nil elements to NullValue.
func NewSequence(elements ...Value) *SequenceValue {
	out := make([]Value, len(elements))
	for idx, el := range elements {
		out[idx] = Normalize(el)
	}
	return &SequenceValue{Elements: out}
}

//-----------------------------------------------------------------------------
// Model objects
//-----------------------------------------------------------------------------

// ObjectReference is an opaque handle into the external model.
type ObjectReference interface {
	// ID is the model identity of the object.
	ID() string
	// TypeName is the declared type of the object.
	TypeName() string
	// Supertypes is the precomputed transitive closure of supertype names,
	// nearest first. It never contains TypeName itself.
	Supertypes() []string
}

type ObjectValue struct {
	Ref ObjectReference
}

func (v ObjectValue) Kind() Kind { return KindObject }
func (ObjectValue) isValue()     {}

// Object wraps a model reference; a nil reference yields NullValue.
func Object(ref ObjectReference) Value {
	if ref == nil {
		return NullValue{}
	}
	return ObjectValue{Ref: ref}
}

//-----------------------------------------------------------------------------
// Helpers
//-----------------------------------------------------------------------------

// Bool returns a boolean value.
func Bool(b bool) Value { return BooleanValue{Val: b} }

// Normalize maps a Go nil Value to NullValue and a nil sequence pointer
// to the empty sequence.
func Normalize(v Value) Value {
	switch val := v.(type) {
	case nil:
		return NullValue{}
	case *SequenceValue:
		if val == nil {
			return &SequenceValue{Elements: []Value{}}
		}
	}
	return v
}

// IsNull reports whether v is absent or the null value.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(NullValue)
	return ok
}

// AsBool collapses v to a three-valued boolean: ok is false for anything
// that is not strictly a BooleanValue.
func AsBool(v Value) (val bool, ok bool) {
	b, ok := v.(BooleanValue)
	if !ok {
		return false, false
	}
	return b.Val, true
}

// ObjectRef returns the model reference carried by v, if any.
func ObjectRef(v Value) (ObjectReference, bool) {
	obj, ok := v.(ObjectValue)
	if !ok || obj.Ref == nil {
		return nil, false
	}
	return obj.Ref, true
}

// KindName is the reflection name of v's kind; Go nil counts as Null.
func KindName(v Value) string {
	return Normalize(v).Kind().String()
}

// Render returns the textual representation used by equality and string
// interpolation.
func Render(v Value) string {
	switch val := Normalize(v).(type) {
	case NullValue:
		return "null"
	case BooleanValue:
		return strconv.FormatBool(val.Val)
	case IntegerValue:
		return strconv.FormatInt(val.Val, 10)
	case RealValue:
		return strconv.FormatFloat(val.Val, 'g', -1, 64)
	case StringValue:
		return val.Val
	case *SequenceValue:
		parts := make([]string, 0, len(val.Elements))
		for _, el := range val.Elements {
			parts = append(parts, Render(el))
		}
		return fmt.Sprintf("[%s]", strings.Join(parts, ", "))
	case ObjectValue:
		if val.Ref == nil {
			return "null"
		}
		return fmt.Sprintf("%s@%s", val.Ref.TypeName(), val.Ref.ID())
	default:
		return fmt.Sprintf("[%s]", val.Kind())
	}
}
