package model

import (
	"context"
	"fmt"
	"sync"

	"aql/interpreter-go/pkg/runtime"

	"github.com/google/uuid"
)

// Object is a model element. It implements runtime.ObjectReference; its
// supertype closure is shared with the type registry.
type Object struct {
	id         string
	typeName   string
	supertypes []string
	properties map[string]runtime.Value
}

func (o *Object) ID() string           { return o.id }
func (o *Object) TypeName() string     { return o.typeName }
func (o *Object) Supertypes() []string { return o.supertypes }

// Model is an in-memory model engine. Reads are safe for concurrent use;
// mutation is expected to finish before evaluation starts.
type Model struct {
	mu      sync.RWMutex
	types   *TypeRegistry
	objects map[string]*Object
	order   []string
}

// New creates an empty model over types, sealing the registry.
func New(types *TypeRegistry) (*Model, error) {
	if types == nil {
		types = NewTypeRegistry()
	}
	if err := types.Seal(); err != nil {
		return nil, err
	}
	return &Model{types: types, objects: make(map[string]*Object)}, nil
}

// Types exposes the sealed type registry.
func (m *Model) Types() *TypeRegistry {
	return m.types
}

// Add creates an object of typeName. An empty id is replaced by a fresh
// UUID.
func (m *Model) Add(typeName, id string) (*Object, error) {
	closure, err := m.types.Closure(typeName)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", id, err)
	}
	if id == "" {
		id = uuid.NewString()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.objects[id]; exists {
		return nil, fmt.Errorf("object %s: %w", id, ErrDuplicateObject)
	}
	obj := &Object{
		id:         id,
		typeName:   typeName,
		supertypes: closure,
		properties: make(map[string]runtime.Value),
	}
	m.objects[id] = obj
	m.order = append(m.order, id)
	return obj, nil
}

// Set assigns a property on the object with the given id.
func (m *Model) Set(id, property string, value runtime.Value) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[id]
	if !ok {
		return fmt.Errorf("object %s: %w", id, ErrUnknownObject)
	}
	obj.properties[property] = runtime.Normalize(value)
	return nil
}

// Object looks up an object by id.
func (m *Model) Object(id string) (*Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[id]
	return obj, ok
}

// Ref returns the runtime value referring to the object with id.
func (m *Model) Ref(id string) (runtime.Value, error) {
	obj, ok := m.Object(id)
	if !ok {
		return nil, fmt.Errorf("object %s: %w", id, ErrUnknownObject)
	}
	return runtime.Object(obj), nil
}

// Objects lists objects in insertion order.
func (m *Model) Objects() []*Object {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Object, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.objects[id])
	}
	return out
}

// Navigate implements runtime.ModelEngine. Unknown properties resolve to
// null; objects foreign to this model are an error.
func (m *Model) Navigate(ctx context.Context, object runtime.ObjectReference, property string) (runtime.Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[object.ID()]
	if !ok {
		return nil, fmt.Errorf("navigate %s.%s: %w", object.ID(), property, ErrUnknownObject)
	}
	v, ok := obj.properties[property]
	if !ok {
		return runtime.NullValue{}, nil
	}
	return v, nil
}
