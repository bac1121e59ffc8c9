package objective

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"neurofit/internal/network"
	"neurofit/internal/numeric"
)

// ErrorForm selects how trajectory error is aggregated.
type ErrorForm string

const (
	// SumForm sums per-variable weighted trajectory norms.
	SumForm ErrorForm = "sum"
	// IntegralForm is carried for configuration compatibility but is a
	// known gap: it always evaluates to zero.
	IntegralForm ErrorForm = "integral"
)

func ParseErrorForm(name string) (ErrorForm, error) {
	switch name {
	case "", string(SumForm):
		return SumForm, nil
	case string(IntegralForm):
		return IntegralForm, nil
	default:
		return "", fmt.Errorf("unsupported error form: %s", name)
	}
}

// SolutionsError measures a network against a mathematical model: the
// model simulates the network's trajectory and the functional compares it
// to a target trajectory, one weight per dependent variable.
type SolutionsError struct {
	Net     network.Network
	Model   Model
	Targets *mat.Dense
	Weights []float64
	Form    ErrorForm
	Diff    numeric.Differentiator
}

func (f *SolutionsError) Check() error {
	if f == nil || f.Net == nil {
		return errors.New("network is required")
	}
	if f.Model == nil {
		return errors.New("mathematical model is required")
	}
	if f.Targets == nil {
		return errors.New("target trajectory is required")
	}
	if len(f.Weights) == 0 {
		return errors.New("variable weights are required")
	}
	if got, want := len(f.Weights), f.Model.DependentVariableCount(); got != want {
		return fmt.Errorf("weight count mismatch: got=%d want=%d dependent variables", got, want)
	}
	rows, cols := f.Targets.Dims()
	if rows == 0 {
		return errors.New("target trajectory has no samples")
	}
	if cols != f.Model.DependentVariableCount() {
		return fmt.Errorf("target variable count mismatch: got=%d want=%d", cols, f.Model.DependentVariableCount())
	}
	if _, err := ParseErrorForm(string(f.Form)); err != nil {
		return err
	}
	if _, err := numeric.ParseDifferentiationMethod(string(f.Diff.Method)); err != nil {
		return err
	}
	return nil
}

func (f *SolutionsError) Network() network.Network { return f.Net }

func (f *SolutionsError) WithNetwork(n network.Network) Functional {
	out := *f
	out.Net = n
	return &out
}

func (f *SolutionsError) Evaluate(ctx context.Context, params []float64) (float64, error) {
	if err := f.Check(); err != nil {
		return 0, err
	}

	form, err := ParseErrorForm(string(f.Form))
	if err != nil {
		return 0, err
	}
	if form == IntegralForm {
		return 0, nil
	}

	clone := f.Net.Clone()
	if err := clone.SetParameters(params); err != nil {
		return 0, err
	}

	trajectory, err := f.Model.Simulate(ctx, clone)
	if err != nil {
		return 0, err
	}
	simRows, simCols := trajectory.Dims()
	tgtRows, _ := f.Targets.Dims()
	if simRows != tgtRows {
		return 0, fmt.Errorf("simulated and target sample counts differ: %d vs %d", simRows, tgtRows)
	}

	total := 0.0
	for c := 0; c < simCols; c++ {
		sim := mat.Col(nil, c, trajectory)
		tgt := mat.Col(nil, c, f.Targets)
		total += f.Weights[c] * floats.Distance(sim, tgt, 2) / float64(simRows)
	}
	return total, nil
}

func (f *SolutionsError) Gradient(ctx context.Context, params []float64) ([]float64, error) {
	return NumericGradient(ctx, f.Diff, f, params)
}
