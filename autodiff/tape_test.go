package autodiff_test

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/clane9/go-smallneuron/autodiff"
)

func TestAddGradients(t *testing.T) {
	tp := autodiff.NewTape()
	a := tp.Leaf(3)
	b := tp.Leaf(7)
	out := tp.Add(a, b)
	if tp.Data(out) != 10 {
		t.Errorf("3 + 7 = %v", tp.Data(out))
	}

	tp.Backward(out)
	for _, r := range []autodiff.Ref{out, a, b} {
		if g := tp.Grad(r); g != 1 {
			t.Errorf("grad of %v is %v; expected 1", tp.Op(r), g)
		}
	}
}

func TestAddChainGradients(t *testing.T) {
	tp := autodiff.NewTape()
	leaves := []autodiff.Ref{tp.Leaf(1), tp.Leaf(-2), tp.Leaf(3), tp.Leaf(4.5), tp.Leaf(0)}
	out := tp.Sum(leaves...)
	if tp.Data(out) != 6.5 {
		t.Errorf("Sum is %v; expected 6.5", tp.Data(out))
	}
	tp.Backward(out)
	for ii, r := range leaves {
		if tp.Grad(r) != 1 {
			t.Errorf("(%d) grad is %v; expected 1", ii, tp.Grad(r))
		}
	}
}

func TestMulGradients(t *testing.T) {
	tp := autodiff.NewTape()
	a := tp.Leaf(3)
	b := tp.Leaf(-4)
	c := tp.Leaf(2)
	// (a*b + a) * c
	out := tp.Mul(tp.Add(tp.Mul(a, b), a), c)
	if tp.Data(out) != -18 {
		t.Errorf("out = %v; expected -18", tp.Data(out))
	}
	tp.Backward(out)

	// d/da = (b+1)*c, d/db = a*c, d/dc = a*b + a
	want := map[autodiff.Ref]float64{a: -6, b: 6, c: -9}
	for r, w := range want {
		if tp.Grad(r) != w {
			t.Errorf("grad = %v; expected %v", tp.Grad(r), w)
		}
	}
}

func TestSquareSharesOperand(t *testing.T) {
	tp := autodiff.NewTape()
	a := tp.Leaf(5)
	out := tp.Mul(a, a)
	tp.Backward(out)
	if tp.Grad(a) != 10 {
		t.Errorf("d(a*a)/da = %v; expected 10", tp.Grad(a))
	}
}

func TestDerivedOps(t *testing.T) {
	tp := autodiff.NewTape()
	a := tp.Leaf(6)
	b := tp.Leaf(-3)

	cases := []struct {
		name string
		got  float64
		want float64
	}{
		{"neg", tp.Data(tp.Neg(a)), -6},
		{"sub", tp.Data(tp.Sub(a, b)), 9},
		{"inv", tp.Data(tp.Inv(b)), -1.0 / 3.0},
		{"div", tp.Data(tp.Div(a, b)), -2},
		{"pow", tp.Data(tp.Pow(b, 2)), 9},
		{"exp", tp.Data(tp.Exp(tp.Const(0))), 1},
	}
	for _, c := range cases {
		if !almostEqual(c.got, c.want) {
			t.Errorf("%s = %v; expected %v", c.name, c.got, c.want)
		}
	}
}

func TestDivideByZero(t *testing.T) {
	tp := autodiff.NewTape()
	pos := tp.Div(tp.Const(1), tp.Const(0))
	if !math.IsInf(tp.Data(pos), 1) {
		t.Errorf("1/0 = %v; expected +Inf", tp.Data(pos))
	}
	neg := tp.Div(tp.Const(-1), tp.Const(0))
	if !math.IsInf(tp.Data(neg), -1) {
		t.Errorf("-1/0 = %v; expected -Inf", tp.Data(neg))
	}
}

func TestTanhGradient(t *testing.T) {
	for _, x := range []float64{-2, -0.4, 0, 0.4, 3} {
		tp := autodiff.NewTape()
		a := tp.Leaf(x)
		out := tp.Tanh(a)
		tp.Backward(out)
		want := 1 - math.Tanh(x)*math.Tanh(x)
		if !scalar.EqualWithinAbs(tp.Data(out), math.Tanh(x), 1e-12) {
			t.Errorf("tanh(%v) = %v", x, tp.Data(out))
		}
		if !scalar.EqualWithinAbs(tp.Grad(a), want, 1e-12) {
			t.Errorf("tanh'(%v) = %v; expected %v", x, tp.Grad(a), want)
		}
	}
}

func TestReluGradient(t *testing.T) {
	cases := []struct{ x, data, grad float64 }{
		{3, 3, 1},
		{-0.4, 0, 0},
		{0, 0, 0},
	}
	for _, c := range cases {
		tp := autodiff.NewTape()
		a := tp.Leaf(c.x)
		out := tp.Relu(a)
		tp.Backward(out)
		if tp.Data(out) != c.data || tp.Grad(a) != c.grad {
			t.Errorf("relu(%v) = (%v, grad %v); expected (%v, grad %v)",
				c.x, tp.Data(out), tp.Grad(a), c.data, c.grad)
		}
	}
}

func TestExpGradient(t *testing.T) {
	tp := autodiff.NewTape()
	a := tp.Leaf(1.5)
	out := tp.Exp(a)
	tp.Backward(out)
	if !almostEqual(tp.Grad(a), math.Exp(1.5)) {
		t.Errorf("exp'(1.5) = %v", tp.Grad(a))
	}
}

func TestClearGradients(t *testing.T) {
	tp := autodiff.NewTape()
	a := tp.Leaf(2)
	b := tp.Leaf(3)

	first := tp.Mul(a, b)
	tp.Backward(first)
	tp.ClearGradients(first)
	tp.ClearGradients(first)
	if tp.Grad(a) != 0 || tp.Grad(b) != 0 || tp.Grad(first) != 0 {
		t.Errorf("gradients not cleared: %v %v %v", tp.Grad(a), tp.Grad(b), tp.Grad(first))
	}

	second := tp.Add(tp.Pow(a, 3), b)
	tp.Backward(second)

	fresh := autodiff.NewTape()
	fa := fresh.Leaf(2)
	fb := fresh.Leaf(3)
	fresh.Backward(fresh.Add(fresh.Pow(fa, 3), fb))
	if tp.Grad(a) != fresh.Grad(fa) || tp.Grad(b) != fresh.Grad(fb) {
		t.Errorf("gradients leaked: (%v, %v); fresh graph gives (%v, %v)",
			tp.Grad(a), tp.Grad(b), fresh.Grad(fa), fresh.Grad(fb))
	}
}

func TestOperandsAndOps(t *testing.T) {
	tp := autodiff.NewTape()
	a := tp.Leaf(1)
	b := tp.Leaf(2)
	sum := tp.Add(a, b)
	act := tp.Relu(sum)

	if ops := tp.Operands(a); len(ops) != 0 || tp.Op(a) != autodiff.Leaf {
		t.Errorf("leaf has operands %v, op %v", ops, tp.Op(a))
	}
	if ops := tp.Operands(sum); len(ops) != 2 || ops[0] != a || ops[1] != b {
		t.Errorf("add operands = %v", ops)
	}
	if ops := tp.Operands(act); len(ops) != 1 || ops[0] != sum {
		t.Errorf("relu operands = %v", ops)
	}
	if tp.Op(act).String() != "relu" {
		t.Errorf("op name = %s", tp.Op(act))
	}
}

func TestForkSharesParentLeaves(t *testing.T) {
	params := autodiff.NewTape()
	w := params.Leaf(4)

	pass := params.Fork()
	if pass.Parent() != params || params.Parent() != nil {
		t.Fatalf("Parent = %p, %p; expected %p, nil", pass.Parent(), params.Parent(), params)
	}
	x := pass.Leaf(3)
	out := pass.Mul(w, x)
	pass.Backward(out)
	if params.Grad(w) != 3 {
		t.Errorf("parent leaf grad = %v; expected 3", params.Grad(w))
	}
	if pass.Owns(w) || !pass.Owns(out) {
		t.Errorf("ownership wrong: w %v, out %v", pass.Owns(w), pass.Owns(out))
	}

	pass.Reset()
	if pass.Len() != params.Len() {
		t.Errorf("reset tape has %d nodes; expected %d", pass.Len(), params.Len())
	}
	params.ZeroGrad()
	if params.Grad(w) != 0 {
		t.Errorf("ZeroGrad left %v", params.Grad(w))
	}
	assertPanic(t, func() { pass.Data(out) })
}

func TestDeepGraph(t *testing.T) {
	tp := autodiff.NewTape()
	a := tp.Leaf(1)
	acc := a
	const depth = 200000
	for ii := 0; ii < depth; ii++ {
		acc = tp.Add(acc, a)
	}
	tp.Backward(acc)
	if tp.Grad(a) != depth+1 {
		t.Errorf("grad = %v; expected %d", tp.Grad(a), depth+1)
	}
}

// expression evaluates a fixed smooth expression of six leaves on a fresh tape.
func expression(x []float64) (*autodiff.Tape, []autodiff.Ref, autodiff.Ref) {
	tp := autodiff.NewTape()
	l := make([]autodiff.Ref, len(x))
	for ii, v := range x {
		l[ii] = tp.Leaf(v)
	}
	a, b, c, d, e, f := l[0], l[1], l[2], l[3], l[4], l[5]

	// -(tanh(-1/a^2) + d/exp(-c))
	inner := tp.Neg(tp.Add(
		tp.Tanh(tp.Div(tp.Const(-1), tp.Pow(a, 2))),
		tp.Mul(tp.Inv(tp.Exp(tp.Neg(c))), d),
	))
	left := tp.Pow(tp.Relu(inner), -3)
	// exp(-(f*(e+b)) / (c*d)) * 1e4
	right := tp.Mul(tp.Exp(tp.Div(tp.Neg(tp.Mul(f, tp.Add(e, b))), tp.Mul(c, d))), tp.Const(1e4))
	out := tp.Div(tp.Sub(left, right), tp.Const(1e2))
	return tp, l, out
}

func TestGradientMatchesFiniteDifference(t *testing.T) {
	x := []float64{2.7, 0, -4, 5, 0.23, 3}

	tp, leaves, out := expression(x)
	tp.Backward(out)

	f := func(x []float64) float64 {
		tp, _, out := expression(x)
		return tp.Data(out)
	}
	want := fd.Gradient(nil, f, x, &fd.Settings{Formula: fd.Central})
	for ii, r := range leaves {
		if !scalar.EqualWithinAbsOrRel(tp.Grad(r), want[ii], 1e-6, 1e-4) {
			t.Errorf("leaf %d: grad %.10e; finite difference %.10e", ii, tp.Grad(r), want[ii])
		}
	}
	if tp.Grad(out) != 1 {
		t.Errorf("root grad = %v", tp.Grad(out))
	}
}
