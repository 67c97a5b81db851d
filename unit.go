// Package smallneuron compiles a DAG description of neurons and layers into a
// differentiable model built on the scalar autodiff engine, and trains it with
// minibatch gradient descent.
//
// Parameters live in a long-lived tape owned by the model. Every forward pass
// is built in a fork of that tape, so the per-pass graph can be dropped in bulk
// while gradients still accumulate on the shared parameter leaves.
package smallneuron

import (
	"fmt"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/clane9/go-smallneuron/autodiff"
)

// A Unit is a parametric building block of a model: it owns trainable
// parameters and maps input nodes to output nodes.
type Unit interface {
	// Width is the number of outputs Apply produces.
	Width() int
	// Params returns the trainable parameters in instantiation order.
	Params() []*Param
	Apply(tp *autodiff.Tape, inputs []autodiff.Ref) ([]autodiff.Ref, error)
}

// A Neuron computes activ(sum_i inputs[i]*weights[i] + bias).
type Neuron struct {
	ID         string
	InputWidth int
	Weights    []*Param
	// Bias is always present. Under NoBias it is fixed at 0 and does not
	// require a gradient.
	Bias   *Param
	Activ  Activation
	NoBias bool
}

// A Layer is a group of neurons sharing the same inputs.
type Layer struct {
	ID         string
	InputWidth int
	Neurons    []*Neuron
}

// NewNeuron creates a neuron with weights (and bias, unless noBias) sampled
// from the standard normal distribution of rng. Parameters are appended to tp.
func NewNeuron(id string, tp *autodiff.Tape, rng *rand.Rand, inputWidth int,
	activ Activation, noBias bool) (*Neuron, error) {
	if inputWidth < 1 {
		return nil, errors.Wrapf(ErrInvalidConfiguration,
			"neuron %q needs input width >= 1; got %d", id, inputWidth)
	}

	n := Neuron{
		ID:         id,
		InputWidth: inputWidth,
		Weights:    make([]*Param, inputWidth),
		Activ:      activ,
		NoBias:     noBias,
	}
	for ii := range n.Weights {
		n.Weights[ii] = newParam(tp, rng.NormFloat64(), true)
	}
	if noBias {
		n.Bias = newParam(tp, 0.0, false)
	} else {
		n.Bias = newParam(tp, rng.NormFloat64(), true)
	}

	logf(3, "New neuron %s (in=%d, %s)\n", id, inputWidth, activ)
	return &n, nil
}

// NewLayer creates outputWidth neurons of the given input width.
func NewLayer(id string, tp *autodiff.Tape, rng *rand.Rand, inputWidth, outputWidth int,
	activ Activation, noBias bool) (*Layer, error) {
	if outputWidth < 1 {
		return nil, errors.Wrapf(ErrInvalidConfiguration,
			"layer %q cannot have output width less than 1; got %d", id, outputWidth)
	}

	l := Layer{
		ID:         id,
		InputWidth: inputWidth,
		Neurons:    make([]*Neuron, outputWidth),
	}
	for jj := range l.Neurons {
		n, err := NewNeuron(fmt.Sprintf("%s_%06d", id, jj), tp, rng, inputWidth, activ, noBias)
		if err != nil {
			return nil, err
		}
		l.Neurons[jj] = n
	}

	logf(3, "New layer %s (in=%d, out=%d)\n", id, inputWidth, outputWidth)
	return &l, nil
}

// Call appends the neuron's subgraph to tp and returns its output. Parameters
// are shared by reference; every intermediate node is new.
func (n *Neuron) Call(tp *autodiff.Tape, inputs []autodiff.Ref) (autodiff.Ref, error) {
	if len(inputs) != n.InputWidth {
		return autodiff.Nil, errors.Wrapf(ErrWidthMismatch,
			"neuron %q expects %d inputs; got %d", n.ID, n.InputWidth, len(inputs))
	}

	act := tp.Mul(inputs[0], n.Weights[0].Ref)
	for ii := 1; ii < n.InputWidth; ii++ {
		act = tp.Add(act, tp.Mul(inputs[ii], n.Weights[ii].Ref))
	}
	act = tp.Add(act, n.Bias.Ref)
	return n.Activ.Apply(tp, act), nil
}

// Width is always 1 for a neuron.
func (n *Neuron) Width() int {
	return 1
}

// Params returns the weights, then the bias if it is trainable.
func (n *Neuron) Params() []*Param {
	params := make([]*Param, 0, len(n.Weights)+1)
	params = append(params, n.Weights...)
	if n.Bias.RequiresGrad {
		params = append(params, n.Bias)
	}
	return params
}

// Apply is Call for the Unit interface.
func (n *Neuron) Apply(tp *autodiff.Tape, inputs []autodiff.Ref) ([]autodiff.Ref, error) {
	out, err := n.Call(tp, inputs)
	if err != nil {
		return nil, err
	}
	return []autodiff.Ref{out}, nil
}

// Call feeds the same inputs to every neuron and returns their outputs in
// order.
func (l *Layer) Call(tp *autodiff.Tape, inputs []autodiff.Ref) ([]autodiff.Ref, error) {
	outputs := make([]autodiff.Ref, len(l.Neurons))
	for jj, n := range l.Neurons {
		out, err := n.Call(tp, inputs)
		if err != nil {
			return nil, errors.WithMessagef(err, "layer %q", l.ID)
		}
		outputs[jj] = out
	}
	return outputs, nil
}

// Width returns the number of neurons.
func (l *Layer) Width() int {
	return len(l.Neurons)
}

// Params returns the parameters of every neuron in order.
func (l *Layer) Params() []*Param {
	var params []*Param
	for _, n := range l.Neurons {
		params = append(params, n.Params()...)
	}
	return params
}

// Apply is Call for the Unit interface.
func (l *Layer) Apply(tp *autodiff.Tape, inputs []autodiff.Ref) ([]autodiff.Ref, error) {
	return l.Call(tp, inputs)
}
