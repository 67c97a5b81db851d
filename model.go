package smallneuron

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/clane9/go-smallneuron/autodiff"
	"github.com/clane9/go-smallneuron/dag"
)

// A Description is the network graph a model is compiled from. *dag.Graph
// implements it.
type Description interface {
	Node(id string) (*dag.Node, bool)
	// Terminals returns the output nodes in description order.
	Terminals() []string
	HasCycle() bool
	TopologicalOrder() ([]string, error)
}

// A Model is a compiled description: one Unit per Neuron or Layer node, and
// the flattened list of their trainable parameters.
type Model struct {
	Config Config
	// Parameters holds every trainable parameter in instantiation order.
	Parameters []*Param
	// OnProgress, if set, is called at every progress report of Train.
	OnProgress func(Progress)

	desc    Description
	order   []string
	units   map[string]Unit
	widths  map[string]int
	params  *autodiff.Tape
	rng     *rand.Rand
	pass    *autodiff.Tape
	outputs []autodiff.Ref
}

// NewModel validates desc and instantiates its units in topological order.
// Weights are drawn from rng; a nil rng is seeded from cfg.Seed.
func NewModel(cfg Config, desc Description, rng *rand.Rand) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if desc.HasCycle() {
		return nil, errors.Wrap(ErrCycleDetected, "description is not acyclic")
	}
	order, err := desc.TopologicalOrder()
	if err != nil {
		return nil, errors.WithMessage(err, "ordering description")
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(cfg.Seed))
	}

	m := Model{
		Config: cfg,
		desc:   desc,
		order:  order,
		units:  make(map[string]Unit),
		widths: make(map[string]int),
		params: autodiff.NewTape(),
		rng:    rng,
	}
	for _, id := range order {
		if err := m.build(id); err != nil {
			return nil, err
		}
	}

	outWidth := 0
	for _, id := range desc.Terminals() {
		outWidth += m.widths[id]
	}
	if outWidth != cfg.OutputWidth {
		return nil, errors.Wrapf(ErrWidthMismatch,
			"outputs have width %d; config declares %d", outWidth, cfg.OutputWidth)
	}

	logf(2, "Compiled model: %d nodes, %d units, %d parameters\n",
		len(order), len(m.units), len(m.Parameters))
	return &m, nil
}

// build instantiates the unit for node id. Its dependencies must already be
// built.
func (m *Model) build(id string) error {
	n, _ := m.desc.Node(id)

	width := 0
	for _, dep := range n.DependencyIDs {
		w, ok := m.widths[dep]
		if !ok {
			return unresolved(id, dep)
		}
		width += w
	}

	if n.Kind == dag.Input {
		if len(n.DependencyIDs) > 0 {
			return errors.Wrapf(ErrInvalidConfiguration, "input %q has dependencies", id)
		}
		if n.InputIndex < 0 || n.InputIndex >= m.Config.InputWidth {
			return errors.Wrapf(ErrInvalidConfiguration,
				"input %q index %d outside [0, %d)", id, n.InputIndex, m.Config.InputWidth)
		}
		m.widths[id] = 1
		return nil
	}

	inputWidth := n.InputWidth
	if inputWidth == 0 {
		inputWidth = width
	}
	if inputWidth != width {
		return errors.Wrapf(ErrWidthMismatch,
			"node %q declares input width %d; dependencies provide %d", id, inputWidth, width)
	}
	activ := m.Config.ActivationType
	if n.Activation != "" {
		var err error
		if activ, err = ParseActivation(n.Activation); err != nil {
			return errors.WithMessagef(err, "node %q", id)
		}
	}

	var (
		unit Unit
		err  error
	)
	switch n.Kind {
	case dag.Neuron:
		if n.OutputWidth > 1 {
			return errors.Wrapf(ErrInvalidConfiguration,
				"neuron %q declares output width %d", id, n.OutputWidth)
		}
		unit, err = NewNeuron(id, m.params, m.rng, inputWidth, activ, n.NoBias)
	case dag.Layer:
		unit, err = NewLayer(id, m.params, m.rng, inputWidth, n.OutputWidth, activ, n.NoBias)
	default:
		err = errors.Wrapf(ErrInvalidConfiguration, "node %q has kind %v", id, n.Kind)
	}
	if err != nil {
		return err
	}

	m.units[id] = unit
	m.widths[id] = unit.Width()
	m.Parameters = append(m.Parameters, unit.Params()...)
	return nil
}

// Unit returns the unit compiled for node id.
func (m *Model) Unit(id string) (Unit, bool) {
	u, ok := m.units[id]
	return u, ok
}

// NewTape returns a fresh arena for a forward pass, layered over the
// parameters.
func (m *Model) NewTape() *autodiff.Tape {
	return m.params.Fork()
}

// Forward builds the network's graph on tp for one input vector and returns
// the output nodes of the terminal units in description order.
func (m *Model) Forward(tp *autodiff.Tape, inputs []autodiff.Ref) ([]autodiff.Ref, error) {
	if len(inputs) != m.Config.InputWidth {
		return nil, errors.Wrapf(ErrWidthMismatch,
			"model expects %d inputs; got %d", m.Config.InputWidth, len(inputs))
	}

	bound := make(map[string][]autodiff.Ref, len(m.order))
	for _, id := range m.order {
		n, _ := m.desc.Node(id)
		if n.Kind == dag.Input {
			bound[id] = []autodiff.Ref{inputs[n.InputIndex]}
			continue
		}

		var srcs []autodiff.Ref
		for _, dep := range n.DependencyIDs {
			refs, ok := bound[dep]
			if !ok {
				return nil, unresolved(id, dep)
			}
			srcs = append(srcs, refs...)
		}
		out, err := m.units[id].Apply(tp, srcs)
		if err != nil {
			return nil, err
		}
		bound[id] = out
	}

	var outputs []autodiff.Ref
	for _, id := range m.desc.Terminals() {
		refs, ok := bound[id]
		if !ok {
			return nil, errors.Wrapf(ErrOutputNotFound, "terminal node %q", id)
		}
		outputs = append(outputs, refs...)
	}
	m.pass, m.outputs = tp, outputs
	return outputs, nil
}

// ForwardValues is Forward with raw inputs, each wrapped as a constant leaf.
func (m *Model) ForwardValues(tp *autodiff.Tape, inputs []float64) ([]autodiff.Ref, error) {
	refs := make([]autodiff.Ref, len(inputs))
	for ii, v := range inputs {
		refs[ii] = tp.Const(v)
	}
	return m.Forward(tp, refs)
}

// Predict runs a forward pass on a fresh tape and returns the output values.
func (m *Model) Predict(inputs []float64) ([]float64, error) {
	tp := m.NewTape()
	if _, err := m.ForwardValues(tp, inputs); err != nil {
		return nil, err
	}
	return m.Outputs(), nil
}

// Outputs returns the values of the most recent forward pass, or nil before
// the first one.
func (m *Model) Outputs() []float64 {
	if m.pass == nil {
		return nil
	}
	out := make([]float64, len(m.outputs))
	for ii, r := range m.outputs {
		out[ii] = m.pass.Data(r)
	}
	return out
}

// EvalLoss appends the configured loss of actual against expected to tp.
func (m *Model) EvalLoss(tp *autodiff.Tape, expected, actual []autodiff.Ref) (autodiff.Ref, error) {
	switch m.Config.LossFunction {
	case MeanSquaredError:
		return MSELoss(tp, expected, actual)
	}
	return autodiff.Nil, errors.Wrapf(ErrInvalidConfiguration,
		"loss function %q", m.Config.LossFunction)
}
