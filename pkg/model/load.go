package model

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"aql/interpreter-go/pkg/runtime"

	"gopkg.in/yaml.v3"
)

type modelFile struct {
	Types   []typeEntry   `yaml:"types"`
	Objects []objectEntry `yaml:"objects"`
}

type typeEntry struct {
	Name       string   `yaml:"name"`
	Supertypes []string `yaml:"supertypes"`
}

type objectEntry struct {
	ID         string         `yaml:"id"`
	Type       string         `yaml:"type"`
	Properties map[string]any `yaml:"properties"`
}

// Load reads a model file from disk.
func Load(path string) (*Model, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("model: open %s: %w", path, err)
	}
	defer file.Close()
	m, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("model: %s: %w", path, err)
	}
	return m, nil
}

// Decode reads a YAML model document: declared types first, then objects
// whose properties may reference each other with {ref: id}.
func Decode(r io.Reader) (*Model, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var raw modelFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty model document")
		}
		return nil, fmt.Errorf("parse: %w", err)
	}

	types := NewTypeRegistry()
	for _, entry := range raw.Types {
		if err := types.Declare(entry.Name, entry.Supertypes...); err != nil {
			return nil, err
		}
	}
	m, err := New(types)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(raw.Objects))
	for idx, entry := range raw.Objects {
		obj, err := m.Add(entry.Type, entry.ID)
		if err != nil {
			return nil, err
		}
		ids[idx] = obj.ID()
	}
	for idx, entry := range raw.Objects {
		names := make([]string, 0, len(entry.Properties))
		for name := range entry.Properties {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			v, err := m.propertyValue(entry.Properties[name])
			if err != nil {
				return nil, fmt.Errorf("object %s property %s: %w", ids[idx], name, err)
			}
			if err := m.Set(ids[idx], name, v); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Model) propertyValue(raw any) (runtime.Value, error) {
	switch v := raw.(type) {
	case map[string]any:
		id, ok := v["ref"].(string)
		if !ok || len(v) != 1 {
			return nil, fmt.Errorf("mapping values must be {ref: <id>}")
		}
		return m.Ref(id)
	case []any:
		elements := make([]runtime.Value, 0, len(v))
		for _, el := range v {
			conv, err := m.propertyValue(el)
			if err != nil {
				return nil, err
			}
			elements = append(elements, conv)
		}
		return runtime.NewSequence(elements...), nil
	default:
		return runtime.FromGo(raw)
	}
}

// BindingValue converts a decoded binding: a string naming an object
// resolves to that object, {value: x} is a literal, anything else is
// converted as a literal.
func (m *Model) BindingValue(raw any) (runtime.Value, error) {
	switch v := raw.(type) {
	case string:
		return m.Ref(v)
	case map[string]any:
		if literal, ok := v["value"]; ok && len(v) == 1 {
			return runtime.FromGo(literal)
		}
		return m.propertyValue(v)
	default:
		return m.propertyValue(raw)
	}
}
