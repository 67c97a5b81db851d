package smallneuron

import (
	"github.com/pkg/errors"

	"github.com/clane9/go-smallneuron/autodiff"
)

// A LossKind names a loss function.
type LossKind string

// MeanSquaredError is the only supported loss.
const MeanSquaredError LossKind = "meanSquaredError"

// MSELoss appends mean_i((expected[i] - actual[i])**2) to tp.
func MSELoss(tp *autodiff.Tape, expected, actual []autodiff.Ref) (autodiff.Ref, error) {
	if len(expected) != len(actual) {
		return autodiff.Nil, errors.Wrapf(ErrWidthMismatch,
			"loss expects equal lengths; got %d expected and %d actual", len(expected), len(actual))
	}
	if len(expected) == 0 {
		return autodiff.Nil, errors.Wrap(ErrWidthMismatch, "loss of empty outputs")
	}

	terms := make([]autodiff.Ref, len(expected))
	for ii := range expected {
		terms[ii] = tp.Pow(tp.Sub(expected[ii], actual[ii]), 2)
	}
	return tp.Div(tp.Sum(terms...), tp.Const(float64(len(terms)))), nil
}
