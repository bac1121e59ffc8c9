// Package problem provides builtin synthetic regression datasets used by
// the CLI and the public API. Each problem carries a training split and a
// disjoint selection split so order selection can score generalization.
package problem

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Problem is a named regression task over one input and one output.
type Problem struct {
	Name             string
	TrainingInputs   *mat.Dense
	TrainingTargets  *mat.Dense
	SelectionInputs  *mat.Dense
	SelectionTargets *mat.Dense
}

type generator struct {
	lo, hi float64
	fn     func(x float64) float64
}

var generators = map[string]generator{
	"sine": {
		lo: -math.Pi, hi: math.Pi,
		fn: math.Sin,
	},
	"cubic": {
		lo: -1, hi: 1,
		fn: func(x float64) float64 { return x*x*x - 0.5*x },
	},
	"gauss": {
		lo: -2, hi: 2,
		fn: func(x float64) float64 { return math.Exp(-x * x) },
	},
}

// Names lists the builtin problems in lexical order.
func Names() []string {
	out := make([]string, 0, len(generators))
	for name := range generators {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Get builds the named problem with the given sample counts. Generation is
// deterministic for a fixed seed.
func Get(name string, trainingSamples, selectionSamples int, seed int64) (Problem, error) {
	gen, ok := generators[name]
	if !ok {
		return Problem{}, fmt.Errorf("unknown problem %q", name)
	}
	if trainingSamples < 2 {
		return Problem{}, fmt.Errorf("problem %q needs at least 2 training samples, got %d", name, trainingSamples)
	}
	if selectionSamples < 2 {
		return Problem{}, fmt.Errorf("problem %q needs at least 2 selection samples, got %d", name, selectionSamples)
	}

	rng := rand.New(rand.NewSource(seed))
	trainIn, trainOut := sample(gen, trainingSamples, rng)
	selIn, selOut := sample(gen, selectionSamples, rng)

	return Problem{
		Name:             name,
		TrainingInputs:   trainIn,
		TrainingTargets:  trainOut,
		SelectionInputs:  selIn,
		SelectionTargets: selOut,
	}, nil
}

func sample(gen generator, n int, rng *rand.Rand) (*mat.Dense, *mat.Dense) {
	inputs := mat.NewDense(n, 1, nil)
	targets := mat.NewDense(n, 1, nil)
	span := gen.hi - gen.lo
	for i := 0; i < n; i++ {
		x := gen.lo + span*rng.Float64()
		inputs.Set(i, 0, x)
		targets.Set(i, 0, gen.fn(x))
	}
	return inputs, targets
}
