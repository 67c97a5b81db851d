package smallneuron_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/clane9/go-smallneuron/dag"
)

// Test whether two values are equal up to a relative tolerance.
func almostEqual(a, b float64) bool {
	const tol = 1.0e-06
	if b == 0 {
		return math.Abs(a) < tol
	}
	return math.Abs(a-b)/math.Abs(b) < tol
}

// seeded returns a deterministic random source.
func seeded() *rand.Rand {
	return rand.New(rand.NewSource(12))
}

// mustGraph builds a description from nodes or fails the test.
func mustGraph(t *testing.T, nodes ...dag.Node) *dag.Graph {
	t.Helper()
	g := dag.New()
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			t.Fatalf("AddNode(%s): %v", n.ID, err)
		}
	}
	return g
}
