package smallneuron_test

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/clane9/go-smallneuron"
	"github.com/clane9/go-smallneuron/autodiff"
)

func consts(tp *autodiff.Tape, vs ...float64) []autodiff.Ref {
	refs := make([]autodiff.Ref, len(vs))
	for ii, v := range vs {
		refs[ii] = tp.Const(v)
	}
	return refs
}

// Test mean squared error.
func TestMSELoss(t *testing.T) {
	tp := autodiff.NewTape()
	expected := consts(tp, 1, 2)
	actual := consts(tp, 2, -3)

	loss, err := smallneuron.MSELoss(tp, expected, actual)
	if err != nil {
		t.Fatalf("MSELoss: %v", err)
	}
	if want := ((1.0-2)*(1.0-2) + (2.0+3)*(2.0+3)) / 2; !almostEqual(tp.Data(loss), want) {
		t.Errorf("loss = %v; expected %v", tp.Data(loss), want)
	}

	// d/d actual_i = -(expected_i - actual_i)
	tp.Backward(loss)
	if !almostEqual(tp.Grad(actual[0]), 1) || !almostEqual(tp.Grad(actual[1]), -5) {
		t.Errorf("loss grads = (%v, %v); expected (1, -5)", tp.Grad(actual[0]), tp.Grad(actual[1]))
	}
}

func TestMSELossMismatch(t *testing.T) {
	tp := autodiff.NewTape()
	_, err := smallneuron.MSELoss(tp, consts(tp, 1, 2), consts(tp, 1))
	if !errors.Is(err, smallneuron.ErrWidthMismatch) {
		t.Errorf("error = %v; expected ErrWidthMismatch", err)
	}
}
