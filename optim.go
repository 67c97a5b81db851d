package smallneuron

// SGD is plain gradient descent: value -= lr * grad.
type SGD struct {
	Lr float64
}

// NewSGD creates a new SGD optimizer.
func NewSGD(lr float64) *SGD {
	return &SGD{Lr: lr}
}

// Step takes a descent step on every parameter that requires a gradient.
// Gradients are left in place; callers zero them before the next backward.
func (opt *SGD) Step(params []*Param) {
	for _, p := range params {
		if !p.RequiresGrad {
			continue
		}
		p.SetData(p.Data() - p.Grad()*opt.Lr)
	}
}

// ZeroGrad zeros the gradient of every parameter.
func (opt *SGD) ZeroGrad(params []*Param) {
	for _, p := range params {
		p.ZeroGrad()
	}
}
