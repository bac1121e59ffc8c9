package objective

import (
	"context"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"neurofit/internal/network"
)

func newSolutionsFunctional(t *testing.T) (*SolutionsError, network.Network) {
	t.Helper()
	net, err := network.NewPerceptron(1, 2, 1)
	if err != nil {
		t.Fatalf("new perceptron: %v", err)
	}
	model := GridModel{Samples: []float64{0, 0.5, 1}, Outputs: 1}
	targets := mat.NewDense(3, 1, []float64{0, 0, 0})
	return &SolutionsError{
		Net:     net,
		Model:   model,
		Targets: targets,
		Weights: []float64{1},
	}, net
}

func TestSolutionsErrorCheck(t *testing.T) {
	f, _ := newSolutionsFunctional(t)
	if err := f.Check(); err != nil {
		t.Fatalf("check: %v", err)
	}

	if err := (&SolutionsError{}).Check(); err == nil {
		t.Fatal("expected missing network error")
	}

	noModel := *f
	noModel.Model = nil
	if err := noModel.Check(); err == nil {
		t.Fatal("expected missing model error")
	}

	badWeights := *f
	badWeights.Weights = []float64{1, 2}
	if err := badWeights.Check(); err == nil {
		t.Fatal("expected weight count mismatch error")
	}

	badForm := *f
	badForm.Form = "root_mean"
	if err := badForm.Check(); err == nil {
		t.Fatal("expected error form validation error")
	}
}

func TestSolutionsErrorPerfectFitIsZero(t *testing.T) {
	f, net := newSolutionsFunctional(t)

	// Zero parameters produce a constant-zero trajectory, matching the
	// all-zero target exactly.
	got, err := f.Evaluate(context.Background(), make([]float64, net.ParameterCount()))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got != 0 {
		t.Fatalf("perfect fit: got=%f want=0", got)
	}
}

func TestSolutionsErrorWeightedNorm(t *testing.T) {
	f, net := newSolutionsFunctional(t)
	f.Targets = mat.NewDense(3, 1, []float64{1, 1, 1})
	f.Weights = []float64{2}

	// Zero parameters simulate a zero trajectory against a unit target:
	// weight * ||(1,1,1)||_2 / samples = 2*sqrt(3)/3.
	got, err := f.Evaluate(context.Background(), make([]float64, net.ParameterCount()))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	want := 2 * math.Sqrt(3) / 3
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("weighted norm: got=%f want=%f", got, want)
	}
}

func TestSolutionsErrorIntegralFormIsZeroStub(t *testing.T) {
	f, net := newSolutionsFunctional(t)
	f.Form = IntegralForm
	f.Targets = mat.NewDense(3, 1, []float64{5, 5, 5})

	params := make([]float64, net.ParameterCount())
	for i := range params {
		params[i] = 0.3
	}
	got, err := f.Evaluate(context.Background(), params)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got != 0 {
		t.Fatalf("integral form must evaluate to zero: got=%f", got)
	}
}

func TestSolutionsErrorGradientLength(t *testing.T) {
	f, net := newSolutionsFunctional(t)
	f.Targets = mat.NewDense(3, 1, []float64{1, 1, 1})

	grad, err := f.Gradient(context.Background(), make([]float64, net.ParameterCount()))
	if err != nil {
		t.Fatalf("gradient: %v", err)
	}
	if len(grad) != net.ParameterCount() {
		t.Fatalf("gradient length: got=%d want=%d", len(grad), net.ParameterCount())
	}
}

func TestGridModelValidation(t *testing.T) {
	net, err := network.NewPerceptron(1, 1, 1)
	if err != nil {
		t.Fatalf("new perceptron: %v", err)
	}

	if _, err := (GridModel{Outputs: 1}).Simulate(context.Background(), net); err == nil {
		t.Fatal("expected empty samples error")
	}
	if _, err := (GridModel{Samples: []float64{0}, Outputs: 2}).Simulate(context.Background(), net); err == nil {
		t.Fatal("expected output count mismatch error")
	}

	trajectory, err := (GridModel{Samples: []float64{0, 1}, Outputs: 1}).Simulate(context.Background(), net)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	rows, cols := trajectory.Dims()
	if rows != 2 || cols != 1 {
		t.Fatalf("trajectory dims: got=%dx%d want=2x1", rows, cols)
	}
}
