package runtime

import (
	"context"

	"aql/interpreter-go/pkg/debug"

	"github.com/emirpasic/gods/stacks/arraystack"
)

// SelfName is the conventional binding for the current model object.
const SelfName = "self"

// ModelEngine performs structural navigation on model objects. It may block
// on model storage; implementations must be safe for concurrent use by
// independent evaluation sessions.
type ModelEngine interface {
	Navigate(ctx context.Context, object ObjectReference, property string) (Value, error)
}

// Context is the mutable state of one evaluation session: the current
// variable frame, the saved outer frames, and the shared model engine.
// A Context is owned by a single evaluation at a time.
type Context struct {
	current *Frame
	outer   *arraystack.Stack
	engine  ModelEngine
}

// NewContext creates a session context bound to engine (which may be nil
// when no object navigation is needed).
func NewContext(engine ModelEngine) *Context {
	return &Context{
		current: NewFrame(),
		outer:   arraystack.New(),
		engine:  engine,
	}
}

// Define binds name in the current frame.
func (c *Context) Define(name string, value Value) {
	c.current.Define(name, value)
}

// Current exposes the innermost frame.
func (c *Context) Current() *Frame {
	return c.current
}

// Depth is the number of saved outer frames.
func (c *Context) Depth() int {
	return c.outer.Size()
}

// PushScope saves the current frame and starts a fresh one.
func (c *Context) PushScope() {
	c.outer.Push(c.current)
	c.current = NewFrame()
	if debug.Scope() {
		debug.Logf("scope push depth=%d\n", c.outer.Size())
	}
}

// PopScope restores the most recently saved frame. Popping with no saved
// frame is a no-op.
func (c *Context) PopScope() {
	top, ok := c.outer.Pop()
	if !ok {
		return
	}
	c.current = top.(*Frame)
	if debug.Scope() {
		debug.Logf("scope pop depth=%d\n", c.outer.Size())
	}
}

// WithScope runs fn inside a freshly pushed scope. The scope is popped on
// every exit path, including a panic unwinding through fn.
func (c *Context) WithScope(fn func() (Value, error)) (Value, error) {
	c.PushScope()
	defer c.PopScope()
	return fn()
}

// Lookup resolves name through the current frame and then the outer
// frames, most recent first. It never consults the model.
func (c *Context) Lookup(name string) (Value, bool) {
	if v, ok := c.current.Get(name); ok {
		return v, true
	}
	it := c.outer.Iterator()
	for it.Next() {
		if v, ok := it.Value().(*Frame).Get(name); ok {
			return v, true
		}
	}
	return nil, false
}

// GetVariable resolves name through the scopes; on a miss it tries one
// implicit lookup of name as a property of self. The fallback itself uses
// Lookup only, so it cannot recurse.
func (c *Context) GetVariable(ctx context.Context, name string) (Value, error) {
	if v, ok := c.Lookup(name); ok {
		return v, nil
	}
	if name == SelfName {
		return nil, NewVariableNotFound(name)
	}
	self, ok := c.Lookup(SelfName)
	if !ok {
		return nil, NewVariableNotFound(name)
	}
	ref, ok := ObjectRef(self)
	if !ok {
		return nil, NewVariableNotFound(name)
	}
	if debug.Navigate() {
		debug.Logf("implicit self lookup %s.%s\n", ref.TypeName(), name)
	}
	return c.navigateRef(ctx, ref, name)
}

// Navigate resolves property on object. Null or non-object sources yield
// Null without consulting the model engine.
func (c *Context) Navigate(ctx context.Context, object Value, property string) (Value, error) {
	ref, ok := ObjectRef(object)
	if !ok {
		return NullValue{}, nil
	}
	return c.navigateRef(ctx, ref, property)
}

func (c *Context) navigateRef(ctx context.Context, ref ObjectReference, property string) (Value, error) {
	if c.engine == nil {
		return nil, NewInvalidOperation("cannot navigate '%s' on %s: no model engine", property, ref.TypeName())
	}
	if debug.Navigate() {
		debug.Logf("navigate %s@%s.%s\n", ref.TypeName(), ref.ID(), property)
	}
	v, err := c.engine.Navigate(ctx, ref, property)
	if err != nil {
		return nil, err
	}
	return Normalize(v), nil
}
