package dag

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
)

// jsonNode decodes a Node while recording which zero-valued fields were
// present. The outer fields shadow the embedded ones.
type jsonNode struct {
	Node
	Kind       *Kind `json:"kind"`
	InputIndex *int  `json:"input_index,omitempty"`
}

func encodeNode(n Node) jsonNode {
	jn := jsonNode{Node: n, Kind: &n.Kind}
	if n.Kind == Input {
		jn.InputIndex = &n.InputIndex
	}
	return jn
}

func (jn jsonNode) node() (Node, error) {
	n := jn.Node
	if jn.Kind == nil {
		return n, errors.Wrapf(ErrMissingField, "node %q: kind", n.ID)
	}
	n.Kind = *jn.Kind
	if n.Kind == Input {
		if jn.InputIndex == nil {
			return n, errors.Wrapf(ErrMissingField, "input %q: input_index", n.ID)
		}
		n.InputIndex = *jn.InputIndex
	}
	return n, nil
}

// Load reads a description encoded as a JSON array of nodes. Array order is
// the description order. Every node needs a kind, and Input nodes an
// input_index.
func Load(r io.Reader) (*Graph, error) {
	var nodes []jsonNode
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&nodes); err != nil {
		return nil, errors.Wrap(err, "parsing description JSON")
	}

	g := New()
	for _, jn := range nodes {
		n, err := jn.node()
		if err != nil {
			return nil, err
		}
		if err := g.AddNode(n); err != nil {
			return nil, err
		}
	}
	if err := g.CheckEdges(); err != nil {
		return nil, err
	}
	return g, nil
}

// LoadFile reads a description from a JSON file.
func LoadFile(filename string) (*Graph, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "reading description file")
	}
	defer f.Close()
	return Load(f)
}

// Write encodes g as a JSON array of nodes, with dependents filled in.
func Write(w io.Writer, g *Graph) error {
	nodes := make([]jsonNode, g.Len())
	for i, n := range g.Nodes() {
		nodes[i] = encodeNode(*n)
		nodes[i].DependentIDs = g.Dependents(n.ID)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(nodes), "encoding description JSON")
}
