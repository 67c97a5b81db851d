package smallneuron

import (
	"github.com/pkg/errors"

	"github.com/clane9/go-smallneuron/autodiff"
)

// An Activation is the nonlinearity applied by a neuron.
type Activation int

// Supported activations.
const (
	Relu Activation = iota
	Tanh
)

func (a Activation) String() string {
	switch a {
	case Relu:
		return "relu"
	case Tanh:
		return "tanh"
	}
	return "unknown"
}

// ParseActivation parses "relu" or "tanh".
func ParseActivation(s string) (Activation, error) {
	switch s {
	case "relu":
		return Relu, nil
	case "tanh":
		return Tanh, nil
	}
	return 0, errors.Wrapf(ErrInvalidConfiguration, "unknown activation %q", s)
}

// MarshalText encodes the activation name.
func (a Activation) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText decodes an activation name.
func (a *Activation) UnmarshalText(text []byte) error {
	parsed, err := ParseActivation(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Apply appends the activation of x to tp.
func (a Activation) Apply(tp *autodiff.Tape, x autodiff.Ref) autodiff.Ref {
	if a == Tanh {
		return tp.Tanh(x)
	}
	return tp.Relu(x)
}
