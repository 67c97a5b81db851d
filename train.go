package smallneuron

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/clane9/go-smallneuron/autodiff"
)

// TrainingData pairs raw input vectors with their expected outputs.
type TrainingData struct {
	Inputs  [][]float64 `json:"inputs"`
	Outputs [][]float64 `json:"outputs"`
}

// Validate checks that data is non-empty, that inputs and outputs pair up and
// that every vector has the given width.
func (d TrainingData) Validate(inWidth, outWidth int) error {
	if len(d.Inputs) != len(d.Outputs) {
		return errors.Wrapf(ErrWidthMismatch,
			"%d inputs but %d outputs", len(d.Inputs), len(d.Outputs))
	}
	if len(d.Inputs) == 0 {
		return errors.Wrap(ErrInvalidConfiguration, "no training data")
	}
	for ii := range d.Inputs {
		if len(d.Inputs[ii]) != inWidth || len(d.Outputs[ii]) != outWidth {
			return errors.Wrapf(ErrWidthMismatch,
				"example %d has widths (%d, %d); expected (%d, %d)",
				ii, len(d.Inputs[ii]), len(d.Outputs[ii]), inWidth, outWidth)
		}
	}
	return nil
}

// Progress is one training report.
type Progress struct {
	Epoch    int
	Loss     float64
	Accuracy float64
}

// Train runs Config.EpochCount epochs. See TrainEpochs.
func (m *Model) Train(data TrainingData) ([]float64, error) {
	return m.TrainEpochs(data, m.Config.EpochCount)
}

// TrainEpochs runs minibatch gradient descent. Each epoch samples
// Config.BatchSize examples with replacement, averages their loss, and takes a
// single step at Config.LearningRate. It returns the batch loss of every
// epoch. Progress is reported every epochs/5 epochs.
func (m *Model) TrainEpochs(data TrainingData, epochs int) ([]float64, error) {
	if epochs < 1 {
		return nil, errors.Wrapf(ErrInvalidConfiguration, "epoch count %d", epochs)
	}
	if err := data.Validate(m.Config.InputWidth, m.Config.OutputWidth); err != nil {
		return nil, err
	}

	opt := NewSGD(m.Config.LearningRate)
	interval := epochs / 5
	if interval < 1 {
		interval = 1
	}

	losses := make([]float64, 0, epochs)
	for epoch := 1; epoch <= epochs; epoch++ {
		loss, accuracy, err := m.step(opt, data)
		if err != nil {
			return losses, errors.WithMessagef(err, "epoch %d", epoch)
		}
		losses = append(losses, loss)

		if epoch%interval == 0 || epoch == epochs {
			logf(1, "epoch=%06d\tloss=%.5e\taccuracy=%.3f\n", epoch, loss, accuracy)
			if m.OnProgress != nil {
				m.OnProgress(Progress{Epoch: epoch, Loss: loss, Accuracy: accuracy})
			}
		}
	}
	return losses, nil
}

// step trains on one sampled batch and returns its loss and accuracy.
func (m *Model) step(opt *SGD, data TrainingData) (float64, float64, error) {
	bs := m.Config.BatchSize
	tp := m.NewTape()
	terms := make([]autodiff.Ref, bs)
	correct := 0
	for ii := 0; ii < bs; ii++ {
		idx := m.rng.Intn(len(data.Inputs))
		loss, actual, err := m.exampleLoss(tp, data.Inputs[idx], data.Outputs[idx])
		if err != nil {
			return 0, 0, err
		}
		terms[ii] = loss
		if roundedMatch(tp, actual, data.Outputs[idx]) {
			correct++
		}
	}
	batch := tp.Div(tp.Sum(terms...), tp.Const(float64(bs)))

	m.params.ZeroGrad()
	tp.Backward(batch)
	opt.Step(m.Parameters)
	logf(3, "batch of %d: %d nodes\n", bs, tp.Len())

	return tp.Data(batch), float64(correct) / float64(bs), nil
}

// exampleLoss appends the forward pass and loss of one example to tp.
func (m *Model) exampleLoss(tp *autodiff.Tape, inputs, outputs []float64) (autodiff.Ref, []autodiff.Ref, error) {
	actual, err := m.ForwardValues(tp, inputs)
	if err != nil {
		return autodiff.Nil, nil, err
	}
	expected := make([]autodiff.Ref, len(outputs))
	for jj, v := range outputs {
		expected[jj] = tp.Const(v)
	}
	loss, err := m.EvalLoss(tp, expected, actual)
	return loss, actual, err
}

// Evaluate returns the mean loss and rounded-match accuracy over every example
// of data without updating parameters.
func (m *Model) Evaluate(data TrainingData) (loss, accuracy float64, err error) {
	if err = data.Validate(m.Config.InputWidth, m.Config.OutputWidth); err != nil {
		return
	}
	correct := 0
	for ii := range data.Inputs {
		tp := m.NewTape()
		var (
			l      autodiff.Ref
			actual []autodiff.Ref
		)
		if l, actual, err = m.exampleLoss(tp, data.Inputs[ii], data.Outputs[ii]); err != nil {
			return 0, 0, err
		}
		loss += tp.Data(l)
		if roundedMatch(tp, actual, data.Outputs[ii]) {
			correct++
		}
	}
	n := float64(len(data.Inputs))
	return loss / n, float64(correct) / n, nil
}

// roundedMatch reports whether every output rounds to its expected value.
func roundedMatch(tp *autodiff.Tape, actual []autodiff.Ref, expected []float64) bool {
	for jj, r := range actual {
		if scalar.Round(tp.Data(r), 0) != scalar.Round(expected[jj], 0) {
			return false
		}
	}
	return true
}
