package runtime

import "sort"

// Frame is one scope of variable bindings. A binding may hold the null
// value; absence is distinct from a null binding.
type Frame struct {
	values map[string]Value
}

// NewFrame creates an empty frame.
func NewFrame() *Frame {
	return &Frame{values: make(map[string]Value)}
}

// Define inserts or replaces a binding in this frame (last write wins).
func (f *Frame) Define(name string, value Value) {
	f.values[name] = Normalize(value)
}

// Get retrieves a binding from this frame only.
func (f *Frame) Get(name string) (Value, bool) {
	v, ok := f.values[name]
	return v, ok
}

// Keys lists the bound names in sorted order.
func (f *Frame) Keys() []string {
	keys := make([]string, 0, len(f.values))
	for k := range f.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
