package smallneuron

import (
	"math/rand"

	"github.com/clane9/go-smallneuron/dag"
)

// NewMLP constructs a fully-connected model with the given architecture.
// arch[0] is the input width and the last entry the output width; the widths
// in cfg are overwritten to match.
func NewMLP(arch []int, cfg Config, rng *rand.Rand) (*Model, error) {
	g, err := dag.MLP(arch, cfg.ActivationType.String())
	if err != nil {
		return nil, err
	}
	cfg.InputWidth = arch[0]
	cfg.OutputWidth = arch[len(arch)-1]
	return NewModel(cfg, g, rng)
}
