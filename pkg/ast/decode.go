package ast

import (
	"bytes"
	"encoding/json"
	"fmt"

	"aql/interpreter-go/pkg/runtime"

	"gopkg.in/yaml.v3"
)

// DecodeJSON reads an expression document encoded as JSON.
func DecodeJSON(data []byte) (Expression, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse expression json: %w", err)
	}
	return DecodeAny(raw)
}

// DecodeYAML reads an expression document encoded as YAML.
func DecodeYAML(data []byte) (Expression, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse expression yaml: %w", err)
	}
	return DecodeAny(raw)
}

// DecodeAny decodes an already parsed document.
func DecodeAny(raw any) (Expression, error) {
	node, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expression must be a mapping, got %T", raw)
	}
	return Decode(node)
}

// Decode builds an expression tree from a generic node map keyed by "type".
func Decode(node map[string]any) (Expression, error) {
	typ, _ := node["type"].(string)
	switch NodeType(typ) {
	case NodeLiteral:
		return decodeLiteral(node)
	case NodeVariable:
		name, err := stringField(node, "name")
		if err != nil {
			return nil, err
		}
		return NewVariable(name), nil
	case NodeNavigation:
		source, err := childField(node, "source")
		if err != nil {
			return nil, err
		}
		property, err := stringField(node, "property")
		if err != nil {
			return nil, err
		}
		nullSafe, _ := node["nullSafe"].(bool)
		return NewNavigation(source, property, nullSafe), nil
	case NodeCall:
		var source Expression
		if raw, ok := node["source"]; ok && raw != nil {
			decoded, err := childField(node, "source")
			if err != nil {
				return nil, err
			}
			source = decoded
		}
		method, err := stringField(node, "method")
		if err != nil {
			return nil, err
		}
		args, err := childList(node, "arguments")
		if err != nil {
			return nil, err
		}
		return NewCall(source, method, args), nil
	case NodeBinary:
		op, err := stringField(node, "operator")
		if err != nil {
			return nil, err
		}
		left, err := childField(node, "left")
		if err != nil {
			return nil, err
		}
		right, err := childField(node, "right")
		if err != nil {
			return nil, err
		}
		return NewBinary(left, op, right), nil
	case NodeUnary:
		op, err := stringField(node, "operator")
		if err != nil {
			return nil, err
		}
		operand, err := childField(node, "operand")
		if err != nil {
			return nil, err
		}
		return NewUnary(op, operand), nil
	case NodeConditional:
		cond, err := childField(node, "condition")
		if err != nil {
			return nil, err
		}
		then, err := childField(node, "then")
		if err != nil {
			return nil, err
		}
		els, err := childField(node, "else")
		if err != nil {
			return nil, err
		}
		return NewConditional(cond, then, els), nil
	case NodeLet:
		return decodeLet(node)
	case NodeCollectionOp:
		source, err := childField(node, "source")
		if err != nil {
			return nil, err
		}
		op, err := stringField(node, "operation")
		if err != nil {
			return nil, err
		}
		iterator, _ := node["iterator"].(string)
		var body Expression
		if raw, ok := node["body"]; ok && raw != nil {
			decoded, err := childField(node, "body")
			if err != nil {
				return nil, err
			}
			body = decoded
		}
		return NewCollectionOp(source, op, iterator, body), nil
	case NodeStringInterpolation:
		rawParts, _ := node["parts"].([]any)
		parts := make([]Expression, 0, len(rawParts))
		for idx, raw := range rawParts {
			if text, ok := raw.(string); ok {
				parts = append(parts, Str(text))
				continue
			}
			part, err := DecodeAny(raw)
			if err != nil {
				return nil, fmt.Errorf("interpolation part %d: %w", idx, err)
			}
			parts = append(parts, part)
		}
		return NewStringInterpolation(parts), nil
	case "":
		return nil, fmt.Errorf("expression node missing type")
	default:
		return nil, fmt.Errorf("unsupported expression node type %q", typ)
	}
}

func decodeLiteral(node map[string]any) (Expression, error) {
	raw := node["value"]
	kind, _ := node["kind"].(string)
	switch kind {
	case "":
		v, err := runtime.FromGo(raw)
		if err != nil {
			return nil, fmt.Errorf("literal: %w", err)
		}
		return NewLiteral(v), nil
	case runtime.KindNull.String():
		return Null(), nil
	case runtime.KindBoolean.String():
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("literal: expected boolean, got %T", raw)
		}
		return Bool(b), nil
	case runtime.KindInteger.String():
		v, err := runtime.ToInteger(raw)
		if err != nil {
			return nil, fmt.Errorf("literal: %w", err)
		}
		return NewLiteral(v), nil
	case runtime.KindReal.String():
		v, err := runtime.ToReal(raw)
		if err != nil {
			return nil, fmt.Errorf("literal: %w", err)
		}
		return NewLiteral(v), nil
	case runtime.KindString.String():
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("literal: expected string, got %T", raw)
		}
		return Str(s), nil
	case runtime.KindSequence.String():
		if _, ok := raw.([]any); !ok && raw != nil {
			return nil, fmt.Errorf("literal: expected list, got %T", raw)
		}
		v, err := runtime.FromGo(raw)
		if err != nil {
			return nil, fmt.Errorf("literal: %w", err)
		}
		if runtime.IsNull(v) {
			v = runtime.NewSequence()
		}
		return NewLiteral(v), nil
	default:
		return nil, fmt.Errorf("literal: unsupported kind %q", kind)
	}
}

func decodeLet(node map[string]any) (Expression, error) {
	rawBindings, _ := node["bindings"].([]any)
	bindings := make([]*LetBinding, 0, len(rawBindings))
	for idx, raw := range rawBindings {
		entry, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("let binding %d: expected mapping, got %T", idx, raw)
		}
		name, err := stringField(entry, "name")
		if err != nil {
			return nil, fmt.Errorf("let binding %d: %w", idx, err)
		}
		value, err := childField(entry, "value")
		if err != nil {
			return nil, fmt.Errorf("let binding %q: %w", name, err)
		}
		bindings = append(bindings, &LetBinding{Name: name, Value: value})
	}
	body, err := childField(node, "body")
	if err != nil {
		return nil, err
	}
	return NewLet(bindings, body), nil
}

func stringField(node map[string]any, key string) (string, error) {
	s, ok := node[key].(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%v node missing %q", node["type"], key)
	}
	return s, nil
}

func childField(node map[string]any, key string) (Expression, error) {
	raw, ok := node[key]
	if !ok || raw == nil {
		return nil, fmt.Errorf("%v node missing %q", node["type"], key)
	}
	child, err := DecodeAny(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return child, nil
}

func childList(node map[string]any, key string) ([]Expression, error) {
	raw, _ := node[key].([]any)
	out := make([]Expression, 0, len(raw))
	for idx, el := range raw {
		child, err := DecodeAny(el)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", key, idx, err)
		}
		out = append(out, child)
	}
	return out, nil
}
