package autodiff

import (
	"math"
)

// binary appends the result of a two-operand op whose value is already known.
func (t *Tape) binary(op Op, a, b Ref, data float64) Ref {
	return t.push(node{data: data, op: op, a: a, b: b})
}

func (t *Tape) unary(op Op, a Ref, data float64) Ref {
	return t.push(node{data: data, op: op, a: a, b: Nil})
}

// Add returns a + b.
func (t *Tape) Add(a, b Ref) Ref {
	return t.binary(Add, a, b, t.Data(a)+t.Data(b))
}

// Mul returns a * b.
func (t *Tape) Mul(a, b Ref) Ref {
	return t.binary(Mul, a, b, t.Data(a)*t.Data(b))
}

// Pow returns a ** k. The exponent is a constant and receives no gradient.
func (t *Tape) Pow(a Ref, k float64) Ref {
	r := t.unary(Pow, a, math.Pow(t.Data(a), k))
	t.node(r).k = k
	return r
}

// Exp returns e ** a.
func (t *Tape) Exp(a Ref) Ref {
	return t.unary(Exp, a, math.Exp(t.Data(a)))
}

// Tanh returns the hyperbolic tangent of a.
func (t *Tape) Tanh(a Ref) Ref {
	return t.unary(Tanh, a, math.Tanh(t.Data(a)))
}

// Relu returns max(a, 0).
func (t *Tape) Relu(a Ref) Ref {
	return t.unary(Relu, a, math.Max(t.Data(a), 0))
}

// Neg returns -a.
func (t *Tape) Neg(a Ref) Ref {
	return t.Mul(a, t.Const(-1))
}

// Sub returns a - b.
func (t *Tape) Sub(a, b Ref) Ref {
	return t.Add(a, t.Neg(b))
}

// Inv returns 1 / a. A zero-valued a gives a signed infinity.
func (t *Tape) Inv(a Ref) Ref {
	return t.Pow(a, -1)
}

// Div returns a / b.
func (t *Tape) Div(a, b Ref) Ref {
	return t.Mul(a, t.Inv(b))
}

// Sum folds refs with Add. The sum of no refs is a zero constant.
func (t *Tape) Sum(refs ...Ref) Ref {
	if len(refs) == 0 {
		return t.Const(0)
	}
	acc := refs[0]
	for _, r := range refs[1:] {
		acc = t.Add(acc, r)
	}
	return acc
}

// A rule distributes the gradient of out to its operands.
type rule func(t *Tape, out *node)

// rules maps each op to its local gradient rule.
var rules = [...]rule{
	Leaf: func(*Tape, *node) {},
	Add: func(t *Tape, out *node) {
		t.node(out.a).grad += out.grad
		t.node(out.b).grad += out.grad
	},
	Mul: func(t *Tape, out *node) {
		a, b := t.node(out.a), t.node(out.b)
		a.grad += b.data * out.grad
		b.grad += a.data * out.grad
	},
	Pow: func(t *Tape, out *node) {
		a := t.node(out.a)
		a.grad += out.k * math.Pow(a.data, out.k-1) * out.grad
	},
	Exp: func(t *Tape, out *node) {
		t.node(out.a).grad += out.data * out.grad
	},
	Tanh: func(t *Tape, out *node) {
		t.node(out.a).grad += (1 - out.data*out.data) * out.grad
	},
	Relu: func(t *Tape, out *node) {
		a := t.node(out.a)
		if a.data > 0 {
			a.grad += out.grad
		}
	},
}
