package dag

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrInvalidArch is returned by MLP for unusable architectures.
var ErrInvalidArch = errors.New("invalid architecture")

// MLP builds the description of a fully-connected network. arch[0] is the
// number of inputs and every following entry is the width of one Layer node.
func MLP(arch []int, activation string) (*Graph, error) {
	if len(arch) < 2 {
		return nil, errors.Wrapf(ErrInvalidArch, "MLP needs >= 2 layers; got %d", len(arch))
	}
	for _, sz := range arch {
		if sz < 1 {
			return nil, errors.Wrapf(ErrInvalidArch, "each layer needs >= 1 unit; got %d", sz)
		}
	}

	const idFormStr = "%03d_%06d"

	g := New()
	prev := make([]string, arch[0])
	for jj := 0; jj < arch[0]; jj++ {
		id := fmt.Sprintf(idFormStr, 0, jj)
		prev[jj] = id
		if err := g.AddNode(Node{ID: id, Kind: Input, InputIndex: jj}); err != nil {
			return nil, err
		}
	}

	for ii := 1; ii < len(arch); ii++ {
		id := fmt.Sprintf("%03d", ii)
		err := g.AddNode(Node{
			ID:            id,
			Kind:          Layer,
			InputWidth:    arch[ii-1],
			OutputWidth:   arch[ii],
			Activation:    activation,
			DependencyIDs: prev,
		})
		if err != nil {
			return nil, err
		}
		prev = []string{id}
	}
	return g, nil
}
