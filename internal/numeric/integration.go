package numeric

import (
	"errors"
	"fmt"
)

// IntegrationMethod selects the quadrature rule for tabulated data.
type IntegrationMethod string

const (
	TrapezoidMethod IntegrationMethod = "trapezoid"
	SimpsonMethod   IntegrationMethod = "simpson"
)

func ParseIntegrationMethod(name string) (IntegrationMethod, error) {
	switch name {
	case "", string(SimpsonMethod):
		return SimpsonMethod, nil
	case string(TrapezoidMethod):
		return TrapezoidMethod, nil
	default:
		return "", fmt.Errorf("unsupported integration method: %s", name)
	}
}

// Integrator computes definite integrals of sampled (x, y) data over
// [x[0], x[n-1]]. Abscissas may be irregularly spaced but must be strictly
// increasing. The zero value uses Simpson's rule.
type Integrator struct {
	Method IntegrationMethod
}

func (n Integrator) Integrate(x, y []float64) (float64, error) {
	method, err := ParseIntegrationMethod(string(n.Method))
	if err != nil {
		return 0, err
	}
	if len(x) != len(y) {
		return 0, fmt.Errorf("abscissa and ordinate counts differ: %d vs %d", len(x), len(y))
	}
	if len(x) < 2 {
		return 0, errors.New("at least 2 points required")
	}
	for i := 1; i < len(x); i++ {
		if x[i] <= x[i-1] {
			return 0, fmt.Errorf("abscissas must be strictly increasing at index %d", i)
		}
	}

	switch method {
	case TrapezoidMethod:
		return trapezoid(x, y), nil
	case SimpsonMethod:
		if len(x) < 3 {
			return 0, errors.New("at least 3 points required for Simpson")
		}
		return simpson(x, y), nil
	default:
		return 0, fmt.Errorf("unsupported integration method: %s", method)
	}
}

func trapezoid(x, y []float64) float64 {
	sum := 0.0
	for i := 0; i+1 < len(x); i++ {
		sum += 0.5 * (x[i+1] - x[i]) * (y[i+1] + y[i])
	}
	return sum
}

// simpson integrates successive non-uniform triples with the quadratic
// interpolation weights for each triple's abscissas. An even point count
// leaves one trailing interval, which is closed with a trapezoid step.
func simpson(x, y []float64) float64 {
	sum := 0.0
	i := 0
	for ; i+2 < len(x); i += 2 {
		wa, wb, wc := simpsonWeights(x[i], x[i+1], x[i+2])
		sum += wa*y[i] + wb*y[i+1] + wc*y[i+2]
	}
	if i == len(x)-2 {
		sum += 0.5 * (x[i+1] - x[i]) * (y[i+1] + y[i])
	}
	return sum
}

// simpsonWeights returns the exact integral weights of the Lagrange
// quadratic through (a, b, c) over [a, c]. For uniform spacing h they
// reduce to the classic h/3, 4h/3, h/3.
func simpsonWeights(a, b, c float64) (wa, wb, wc float64) {
	h0 := b - a
	h1 := c - b
	span := c - a
	wa = span * (2*h0 - h1) / (6 * h0)
	wb = span * span * span / (6 * h0 * h1)
	wc = span * (2*h1 - h0) / (6 * h1)
	return wa, wb, wc
}
