package autodiff

// frame is one entry of the explicit DFS stack used by topo.
type frame struct {
	ref      Ref
	expanded bool
}

// topo returns the nodes reachable from root in post-order: every node comes
// after all of its operands. Each node appears once even when it is shared by
// many consumers. The traversal uses an explicit stack so deep graphs do not
// exhaust the goroutine stack.
func (t *Tape) topo(root Ref) []Ref {
	visited := make([]bool, t.Len())
	order := make([]Ref, 0, 64)
	stack := []frame{{ref: root}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.expanded {
			order = append(order, top.ref)
			continue
		}
		if visited[top.ref] {
			continue
		}
		visited[top.ref] = true
		stack = append(stack, frame{ref: top.ref, expanded: true})
		n := t.node(top.ref)
		// Push b first so a is expanded first, matching recursive order.
		if n.b != Nil && !visited[n.b] {
			stack = append(stack, frame{ref: n.b})
		}
		if n.a != Nil && !visited[n.a] {
			stack = append(stack, frame{ref: n.a})
		}
	}
	return order
}

// Backward computes the gradient of root with respect to every node it
// depends on. root's gradient is seeded with 1; gradients of the other nodes
// accumulate onto whatever they already hold, so callers clear them first when
// reusing leaves across passes.
func (t *Tape) Backward(root Ref) {
	order := t.topo(root)
	t.node(root).grad = 1.0
	for i := len(order) - 1; i >= 0; i-- {
		n := t.node(order[i])
		rules[n.op](t, n)
	}
}

// ClearGradients zeroes the gradient of root and of every node reachable from
// it. The graph itself is left intact.
func (t *Tape) ClearGradients(root Ref) {
	for _, r := range t.topo(root) {
		t.node(r).grad = 0.0
	}
}
