package objective

import (
	"context"

	"neurofit/internal/network"
	"neurofit/internal/numeric"
)

// Functional is the scalar objective a trainer minimizes. Implementations
// must be deterministic: identical parameters against an unchanged context
// produce identical values, and evaluation never mutates the bound network
// (what-if evaluation runs on an internal clone).
type Functional interface {
	// Check validates the configuration eagerly, before any numerically
	// expensive work begins.
	Check() error

	// Network returns the bound network. Trainers write final parameters
	// back through it; they never own it.
	Network() network.Network

	// WithNetwork returns a functional with the same configuration bound
	// to another network, used for per-trial clones during order search.
	WithNetwork(n network.Network) Functional

	Evaluate(ctx context.Context, params []float64) (float64, error)

	// Gradient returns the derivative of Evaluate at params, by closed
	// form when the functional has one and by finite differences
	// otherwise.
	Gradient(ctx context.Context, params []float64) ([]float64, error)
}

// NumericGradient differentiates a functional's Evaluate by finite
// differences. Functionals without closed-form gradients delegate here.
func NumericGradient(ctx context.Context, d numeric.Differentiator, f Functional, params []float64) ([]float64, error) {
	return d.Gradient(ctx, func(ctx context.Context, x []float64) (float64, error) {
		return f.Evaluate(ctx, x)
	}, params)
}
