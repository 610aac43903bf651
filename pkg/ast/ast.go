package ast

import "aql/interpreter-go/pkg/runtime"

type NodeType string

const (
	NodeLiteral             NodeType = "Literal"
	NodeVariable            NodeType = "Variable"
	NodeNavigation          NodeType = "Navigation"
	NodeCall                NodeType = "Call"
	NodeBinary              NodeType = "Binary"
	NodeUnary               NodeType = "Unary"
	NodeConditional         NodeType = "Conditional"
	NodeLet                 NodeType = "Let"
	NodeCollectionOp        NodeType = "CollectionOp"
	NodeStringInterpolation NodeType = "StringInterpolation"
)

type Node interface {
	NodeType() NodeType
	isNode()
}

type nodeImpl struct {
	Type NodeType `json:"type"`
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (nodeImpl) isNode()              {}

// Expression is the closed set of query expression nodes. Trees are
// immutable once built and may be evaluated concurrently by independent
// sessions.
type Expression interface {
	Node
	expressionNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

// Literal

type Literal struct {
	nodeImpl
	expressionMarker

	Value runtime.Value `json:"-"`
}

func NewLiteral(value runtime.Value) *Literal {
	return &Literal{nodeImpl: newNodeImpl(NodeLiteral), Value: runtime.Normalize(value)}
}

// Variable

type Variable struct {
	nodeImpl
	expressionMarker

	Name string `json:"name"`
}

func NewVariable(name string) *Variable {
	return &Variable{nodeImpl: newNodeImpl(NodeVariable), Name: name}
}

// Navigation reads a named property off its source.

type Navigation struct {
	nodeImpl
	expressionMarker

	Source   Expression `json:"source"`
	Property string     `json:"property"`
	NullSafe bool       `json:"nullSafe,omitempty"`
}

func NewNavigation(source Expression, property string, nullSafe bool) *Navigation {
	return &Navigation{nodeImpl: newNodeImpl(NodeNavigation), Source: source, Property: property, NullSafe: nullSafe}
}

// Call invokes a named operation. Source is nil for a receiver-less call.

type Call struct {
	nodeImpl
	expressionMarker

	Source    Expression   `json:"source,omitempty"`
	Method    string       `json:"method"`
	Arguments []Expression `json:"arguments"`
}

func NewCall(source Expression, method string, arguments []Expression) *Call {
	return &Call{nodeImpl: newNodeImpl(NodeCall), Source: source, Method: method, Arguments: arguments}
}

// Operators

type Binary struct {
	nodeImpl
	expressionMarker

	Left     Expression `json:"left"`
	Operator string     `json:"operator"`
	Right    Expression `json:"right"`
}

func NewBinary(left Expression, operator string, right Expression) *Binary {
	return &Binary{nodeImpl: newNodeImpl(NodeBinary), Left: left, Operator: operator, Right: right}
}

type Unary struct {
	nodeImpl
	expressionMarker

	Operator string     `json:"operator"`
	Operand  Expression `json:"operand"`
}

func NewUnary(operator string, operand Expression) *Unary {
	return &Unary{nodeImpl: newNodeImpl(NodeUnary), Operator: operator, Operand: operand}
}

// Control

type Conditional struct {
	nodeImpl
	expressionMarker

	Condition Expression `json:"condition"`
	Then      Expression `json:"then"`
	Else      Expression `json:"else"`
}

func NewConditional(condition, then, els Expression) *Conditional {
	return &Conditional{nodeImpl: newNodeImpl(NodeConditional), Condition: condition, Then: then, Else: els}
}

type LetBinding struct {
	Name  string     `json:"name"`
	Value Expression `json:"value"`
}

type Let struct {
	nodeImpl
	expressionMarker

	Bindings []*LetBinding `json:"bindings"`
	Body     Expression    `json:"body"`
}

func NewLet(bindings []*LetBinding, body Expression) *Let {
	return &Let{nodeImpl: newNodeImpl(NodeLet), Bindings: bindings, Body: body}
}

// CollectionOp applies a collection operation to its source. Iterator and
// Body are only meaningful for the higher-order operations.

type CollectionOp struct {
	nodeImpl
	expressionMarker

	Source    Expression `json:"source"`
	Operation string     `json:"operation"`
	Iterator  string     `json:"iterator,omitempty"`
	Body      Expression `json:"body,omitempty"`
}

func NewCollectionOp(source Expression, operation, iterator string, body Expression) *CollectionOp {
	return &CollectionOp{nodeImpl: newNodeImpl(NodeCollectionOp), Source: source, Operation: operation, Iterator: iterator, Body: body}
}

type StringInterpolation struct {
	nodeImpl
	expressionMarker

	Parts []Expression `json:"parts"`
}

func NewStringInterpolation(parts []Expression) *StringInterpolation {
	return &StringInterpolation{nodeImpl: newNodeImpl(NodeStringInterpolation), Parts: parts}
}
