package objective

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"neurofit/internal/network"
	"neurofit/internal/numeric"
)

// SumSquaredError measures a network against an input/target dataset:
// mean over samples of the squared output error.
type SumSquaredError struct {
	Net     network.Network
	Inputs  *mat.Dense
	Targets *mat.Dense
	Diff    numeric.Differentiator
}

func (f *SumSquaredError) Check() error {
	if f == nil || f.Net == nil {
		return errors.New("network is required")
	}
	if f.Inputs == nil || f.Targets == nil {
		return errors.New("inputs and targets are required")
	}
	inRows, inCols := f.Inputs.Dims()
	tgtRows, tgtCols := f.Targets.Dims()
	if inRows == 0 {
		return errors.New("dataset has no samples")
	}
	if inRows != tgtRows {
		return fmt.Errorf("input and target sample counts differ: %d vs %d", inRows, tgtRows)
	}
	if inCols != f.Net.InputCount() {
		return fmt.Errorf("input variable count mismatch: got=%d want=%d", inCols, f.Net.InputCount())
	}
	if tgtCols != f.Net.OutputCount() {
		return fmt.Errorf("target variable count mismatch: got=%d want=%d", tgtCols, f.Net.OutputCount())
	}
	if _, err := numeric.ParseDifferentiationMethod(string(f.Diff.Method)); err != nil {
		return err
	}
	return nil
}

func (f *SumSquaredError) Network() network.Network { return f.Net }

func (f *SumSquaredError) WithNetwork(n network.Network) Functional {
	out := *f
	out.Net = n
	return &out
}

func (f *SumSquaredError) Evaluate(ctx context.Context, params []float64) (float64, error) {
	if err := f.Check(); err != nil {
		return 0, err
	}

	clone := f.Net.Clone()
	if err := clone.SetParameters(params); err != nil {
		return 0, err
	}

	rows, _ := f.Inputs.Dims()
	sum := 0.0
	for r := 0; r < rows; r++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		out, err := clone.Outputs(f.Inputs.RawRowView(r))
		if err != nil {
			return 0, err
		}
		for c, got := range out {
			delta := got - f.Targets.At(r, c)
			sum += delta * delta
		}
	}
	return sum / float64(rows), nil
}

func (f *SumSquaredError) Gradient(ctx context.Context, params []float64) ([]float64, error) {
	return NumericGradient(ctx, f.Diff, f, params)
}
