package smallneuron

import (
	"github.com/clane9/go-smallneuron/autodiff"
)

// A Param is a neural network parameter: a leaf in a model's parameter tape.
type Param struct {
	Ref          autodiff.Ref
	RequiresGrad bool
	tape         *autodiff.Tape
}

func newParam(tp *autodiff.Tape, data float64, requiresGrad bool) *Param {
	return &Param{
		Ref:          tp.Leaf(data),
		RequiresGrad: requiresGrad,
		tape:         tp,
	}
}

// Data returns the current value.
func (p *Param) Data() float64 {
	return p.tape.Data(p.Ref)
}

// SetData overwrites the current value.
func (p *Param) SetData(v float64) {
	p.tape.SetData(p.Ref, v)
}

// Grad returns the accumulated gradient.
func (p *Param) Grad() float64 {
	return p.tape.Grad(p.Ref)
}

// ZeroGrad zeros out the parameter's gradient
func (p *Param) ZeroGrad() {
	p.tape.SetGrad(p.Ref, 0.0)
}
