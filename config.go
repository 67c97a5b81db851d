package smallneuron

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Config holds the model hyperparameters.
type Config struct {
	InputWidth     int        `json:"input_width"`
	OutputWidth    int        `json:"output_width"`
	LearningRate   float64    `json:"learning_rate"`
	ActivationType Activation `json:"activation_type"`
	LossFunction   LossKind   `json:"loss_function"`
	EpochCount     int        `json:"epoch_count"`
	BatchSize      int        `json:"batch_size"`
	// Seed initializes the random source when NewModel is given none.
	Seed int64 `json:"seed"`
}

// DefaultConfig returns a single-input, single-output configuration.
func DefaultConfig() Config {
	return Config{
		InputWidth:     1,
		OutputWidth:    1,
		LearningRate:   0.003,
		ActivationType: Relu,
		LossFunction:   MeanSquaredError,
		EpochCount:     50,
		BatchSize:      50,
		Seed:           2020,
	}
}

// LoadConfig reads a JSON config file. Missing fields keep their
// DefaultConfig values.
func LoadConfig(filename string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(filename)
	if err != nil {
		return cfg, errors.Wrap(err, "reading config file")
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(err, "parsing config JSON")
	}
	return cfg, cfg.Validate()
}

// Validate checks every hyperparameter.
func (c Config) Validate() error {
	switch {
	case c.InputWidth < 1:
		return errors.Wrapf(ErrInvalidConfiguration, "input width %d", c.InputWidth)
	case c.OutputWidth < 1:
		return errors.Wrapf(ErrInvalidConfiguration, "output width %d", c.OutputWidth)
	case !(c.LearningRate > 0):
		return errors.Wrapf(ErrInvalidConfiguration, "learning rate %v", c.LearningRate)
	case c.EpochCount < 1:
		return errors.Wrapf(ErrInvalidConfiguration, "epoch count %d", c.EpochCount)
	case c.BatchSize < 1:
		return errors.Wrapf(ErrInvalidConfiguration, "batch size %d", c.BatchSize)
	case c.ActivationType != Relu && c.ActivationType != Tanh:
		return errors.Wrapf(ErrInvalidConfiguration, "activation %v", c.ActivationType)
	case c.LossFunction != MeanSquaredError:
		return errors.Wrapf(ErrInvalidConfiguration, "loss function %q", c.LossFunction)
	}
	return nil
}
