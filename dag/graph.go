// Package dag describes a network as a directed acyclic graph of Input,
// Neuron and Layer nodes, and provides the cycle check and topological order
// a model compiler walks it in.
package dag

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrCycle is returned when a description contains a cycle.
	ErrCycle = errors.New("graph contains a cycle")
	// ErrDuplicateNode is returned when two nodes share an ID.
	ErrDuplicateNode = errors.New("duplicate node id")
	// ErrUnknownKind is returned for a node kind other than Input, Neuron or Layer.
	ErrUnknownKind = errors.New("unknown node kind")
	// ErrInconsistentEdges is returned when declared dependents do not mirror
	// the dependencies of other nodes.
	ErrInconsistentEdges = errors.New("dependent ids do not mirror dependency ids")
	// ErrMissingField is returned when an encoded node omits a required field.
	ErrMissingField = errors.New("missing required field")
)

// A Kind is the role of a node in the description.
type Kind int

// Node kinds.
const (
	Input Kind = iota
	Neuron
	Layer
)

var kindNames = [...]string{
	Input:  "Input",
	Neuron: "Neuron",
	Layer:  "Layer",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind parses "Input", "Neuron" or "Layer".
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownKind, "%q", s)
}

// MarshalJSON encodes the kind by name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes a kind name.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.Wrap(err, "node kind")
	}
	parsed, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// A Node is one entry of the description. Width attributes are only
// meaningful for the kinds noted.
type Node struct {
	ID   string `json:"id"`
	Kind Kind   `json:"kind"`
	// Neuron and Layer.
	InputWidth int    `json:"input_width,omitempty"`
	Activation string `json:"activation,omitempty"`
	NoBias     bool   `json:"no_bias,omitempty"`
	// Layer only; a Neuron always produces one output.
	OutputWidth int `json:"output_width,omitempty"`
	// Input only: position in the raw input vector.
	InputIndex int `json:"input_index,omitempty"`

	DependencyIDs []string `json:"dependency_ids"`
	// Optional. When present it must mirror the derived dependents.
	DependentIDs []string `json:"dependent_ids,omitempty"`
}

// Width returns the number of values the node produces.
func (n *Node) Width() int {
	if n.Kind == Layer {
		return n.OutputWidth
	}
	return 1
}

// A Graph is a description in insertion order. Edges run dependency ->
// dependent and are derived from each node's DependencyIDs; dependency IDs
// naming nodes that do not exist produce no edge.
type Graph struct {
	nodes []*Node
	index map[string]int
}

// New creates an empty description.
func New() *Graph {
	return &Graph{index: make(map[string]int)}
}

// AddNode appends a node. IDs must be unique.
func (g *Graph) AddNode(n Node) error {
	if _, ok := g.index[n.ID]; ok {
		return errors.Wrapf(ErrDuplicateNode, "%q", n.ID)
	}
	if n.Kind < Input || n.Kind > Layer {
		return errors.Wrapf(ErrUnknownKind, "node %q: %v", n.ID, n.Kind)
	}
	n.DependencyIDs = append([]string(nil), n.DependencyIDs...)
	n.DependentIDs = append([]string(nil), n.DependentIDs...)
	g.index[n.ID] = len(g.nodes)
	g.nodes = append(g.nodes, &n)
	return nil
}

// Node looks up a node by ID.
func (g *Graph) Node(id string) (*Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return g.nodes[i], true
}

// Nodes returns every node in description order.
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Dependencies returns the existing nodes id depends on, without duplicates,
// in declaration order.
func (g *Graph) Dependencies(id string) []string {
	n, ok := g.Node(id)
	if !ok {
		return nil
	}
	var deps []string
	seen := make(map[string]bool)
	for _, d := range n.DependencyIDs {
		if _, exists := g.index[d]; exists && !seen[d] {
			deps = append(deps, d)
			seen[d] = true
		}
	}
	return deps
}

// Dependents returns the nodes that depend on id, in description order.
func (g *Graph) Dependents(id string) []string {
	var out []string
	for _, n := range g.nodes {
		for _, d := range n.DependencyIDs {
			if d == id {
				out = append(out, n.ID)
				break
			}
		}
	}
	return out
}

// Terminals returns the non-Input nodes without dependents, in description
// order. These are the outputs of the network.
func (g *Graph) Terminals() []string {
	consumed := make(map[string]bool)
	for _, n := range g.nodes {
		for _, d := range n.DependencyIDs {
			consumed[d] = true
		}
	}
	var out []string
	for _, n := range g.nodes {
		if n.Kind != Input && !consumed[n.ID] {
			out = append(out, n.ID)
		}
	}
	return out
}

// CheckEdges verifies that every explicitly declared DependentIDs list
// matches the dependents derived from DependencyIDs.
func (g *Graph) CheckEdges() error {
	for _, n := range g.nodes {
		if len(n.DependentIDs) == 0 {
			continue
		}
		derived := make(map[string]bool)
		for _, d := range g.Dependents(n.ID) {
			derived[d] = true
		}
		declared := make(map[string]bool)
		for _, d := range n.DependentIDs {
			declared[d] = true
		}
		if len(derived) != len(declared) {
			return errors.Wrapf(ErrInconsistentEdges, "node %q declares %v, derived %v",
				n.ID, n.DependentIDs, g.Dependents(n.ID))
		}
		for d := range declared {
			if !derived[d] {
				return errors.Wrapf(ErrInconsistentEdges, "node %q declares dependent %q", n.ID, d)
			}
		}
	}
	return nil
}
