package objective

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"neurofit/internal/network"
)

// Model is the mathematical-model collaborator: it produces the trajectory
// a network induces over the model's independent variable.
type Model interface {
	// Simulate returns one row per sample and one column per dependent
	// variable.
	Simulate(ctx context.Context, net network.Network) (*mat.Dense, error)

	DependentVariableCount() int
	IndependentVariableCount() int
}

// GridModel drives a single-input network over a fixed sample grid of the
// independent variable.
type GridModel struct {
	Samples []float64
	Outputs int
}

func (m GridModel) IndependentVariableCount() int { return 1 }

func (m GridModel) DependentVariableCount() int { return m.Outputs }

func (m GridModel) Simulate(ctx context.Context, net network.Network) (*mat.Dense, error) {
	if len(m.Samples) == 0 {
		return nil, errors.New("model has no samples")
	}
	if m.Outputs <= 0 {
		return nil, fmt.Errorf("dependent variable count must be > 0: %d", m.Outputs)
	}
	if net.InputCount() != 1 {
		return nil, fmt.Errorf("grid model requires one network input, got %d", net.InputCount())
	}
	if net.OutputCount() != m.Outputs {
		return nil, fmt.Errorf("network output count mismatch: got=%d want=%d", net.OutputCount(), m.Outputs)
	}

	trajectory := mat.NewDense(len(m.Samples), m.Outputs, nil)
	for r, x := range m.Samples {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := net.Outputs([]float64{x})
		if err != nil {
			return nil, err
		}
		trajectory.SetRow(r, out)
	}
	return trajectory, nil
}
