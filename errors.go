package smallneuron

import (
	"github.com/pkg/errors"

	"github.com/clane9/go-smallneuron/dag"
)

// Errors returned by model construction, forward passes and loss evaluation.
// Returned errors wrap one of these with context; test with errors.Is.
// ErrCycleDetected is the dag package's ErrCycle.
var (
	ErrCycleDetected        = dag.ErrCycle
	ErrUnresolvedDependency = errors.New("unresolved dependency")
	ErrWidthMismatch        = errors.New("width mismatch")
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrOutputNotFound       = errors.New("output not found")
)

// unresolved builds the stable diagnostic for a dependency that has not been
// built when id needs it.
func unresolved(id, dep string) error {
	return errors.Wrapf(ErrUnresolvedDependency,
		"node %q requires %q which has not been built", id, dep)
}
