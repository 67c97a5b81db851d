// Package autodiff implements a scalar reverse-mode automatic differentiation
// engine.
//
// Computation nodes live in a Tape, an append-only arena addressed by Ref
// handles. Operations only combine nodes that already exist, so every tape is
// a DAG rooted at leaves. A Tape may be forked: the child arena sees every
// node of its parent, while nodes appended to the child can be dropped in bulk
// with Reset without touching the parent. Models keep their parameters in a
// long-lived tape and build each forward pass in a short-lived fork.
package autodiff

import (
	"fmt"
)

// Ref is a handle to a node in a Tape.
type Ref int

// Nil is the Ref used for absent operands.
const Nil Ref = -1

// An Op identifies the local gradient rule of a node.
type Op uint8

// Elementary operations.
const (
	Leaf Op = iota
	Add
	Mul
	Pow
	Exp
	Tanh
	Relu
)

var opNames = [...]string{
	Leaf: "leaf",
	Add:  "add",
	Mul:  "mul",
	Pow:  "pow",
	Exp:  "exp",
	Tanh: "tanh",
	Relu: "relu",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("Op(%d)", uint8(op))
}

// node is a single scalar in the graph. Unary ops leave b as Nil. k is the
// constant exponent of a Pow node.
type node struct {
	data float64
	grad float64
	op   Op
	a, b Ref
	k    float64
}

// A Tape is an arena of computation nodes.
type Tape struct {
	parent *Tape
	base   int
	nodes  []node
}

// NewTape creates an empty root tape.
func NewTape() *Tape {
	return &Tape{}
}

// Fork creates a child tape layered on top of t. Refs of t that exist at the
// time of the fork remain valid in the child. Nodes appended to t afterwards
// are not visible to the child.
func (t *Tape) Fork() *Tape {
	return &Tape{parent: t, base: t.Len()}
}

// Parent returns the tape t was forked from, or nil for a root tape.
func (t *Tape) Parent() *Tape {
	return t.parent
}

// Len returns the number of nodes addressable from t, including those of its
// ancestors.
func (t *Tape) Len() int {
	return t.base + len(t.nodes)
}

// Reset drops every node owned by t. Nodes of ancestor tapes are untouched.
func (t *Tape) Reset() {
	t.nodes = t.nodes[:0]
}

// Owns reports whether r was appended to t itself rather than to an ancestor.
func (t *Tape) Owns(r Ref) bool {
	return int(r) >= t.base && int(r) < t.Len()
}

func (t *Tape) node(r Ref) *node {
	if r < 0 || int(r) >= t.Len() {
		panic(fmt.Sprintf("autodiff: ref %d out of range [0, %d)", r, t.Len()))
	}
	for int(r) < t.base {
		t = t.parent
	}
	return &t.nodes[int(r)-t.base]
}

func (t *Tape) push(n node) Ref {
	t.nodes = append(t.nodes, n)
	return Ref(t.Len() - 1)
}

// Leaf appends a new leaf node holding value.
func (t *Tape) Leaf(value float64) Ref {
	return t.push(node{data: value, op: Leaf, a: Nil, b: Nil})
}

// Const is an alias of Leaf for values that are not meant to be trained.
func (t *Tape) Const(value float64) Ref {
	return t.Leaf(value)
}

// Data returns the value of r.
func (t *Tape) Data(r Ref) float64 {
	return t.node(r).data
}

// SetData overwrites the value of r. Only leaves should be mutated; derived
// nodes do not recompute.
func (t *Tape) SetData(r Ref, value float64) {
	t.node(r).data = value
}

// Grad returns the accumulated gradient of r.
func (t *Tape) Grad(r Ref) float64 {
	return t.node(r).grad
}

// SetGrad overwrites the gradient of r.
func (t *Tape) SetGrad(r Ref, grad float64) {
	t.node(r).grad = grad
}

// Op returns the operation that produced r.
func (t *Tape) Op(r Ref) Op {
	return t.node(r).op
}

// Operands returns the nodes r was derived from, in order.
func (t *Tape) Operands(r Ref) []Ref {
	n := t.node(r)
	switch {
	case n.a == Nil:
		return nil
	case n.b == Nil:
		return []Ref{n.a}
	default:
		return []Ref{n.a, n.b}
	}
}

// ZeroGrad zeroes the gradient of every node owned by t.
func (t *Tape) ZeroGrad() {
	for i := range t.nodes {
		t.nodes[i].grad = 0.0
	}
}
