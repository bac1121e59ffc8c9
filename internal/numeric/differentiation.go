package numeric

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// DifferentiationMethod selects the finite-difference scheme used when a
// functional has no closed-form derivatives.
type DifferentiationMethod string

const (
	// ForwardDifferences costs one extra evaluation per dimension.
	ForwardDifferences DifferentiationMethod = "forward_differences"
	// CentralDifferences costs two extra evaluations per dimension but is
	// one order more accurate.
	CentralDifferences DifferentiationMethod = "central_differences"
)

const DefaultPrecisionDigits = 6

func ParseDifferentiationMethod(name string) (DifferentiationMethod, error) {
	switch name {
	case "", string(CentralDifferences):
		return CentralDifferences, nil
	case string(ForwardDifferences):
		return ForwardDifferences, nil
	default:
		return "", fmt.Errorf("unsupported differentiation method: %s", name)
	}
}

// ScalarFn maps one real to one real.
type ScalarFn func(ctx context.Context, x float64) (float64, error)

// VectorFn maps a real vector to one real.
type VectorFn func(ctx context.Context, x []float64) (float64, error)

// Differentiator approximates first and second derivatives by finite
// differences. The zero value uses central differences with
// DefaultPrecisionDigits.
type Differentiator struct {
	Method          DifferentiationMethod
	PrecisionDigits int
}

func (d Differentiator) normalized() (Differentiator, error) {
	method, err := ParseDifferentiationMethod(string(d.Method))
	if err != nil {
		return Differentiator{}, err
	}
	d.Method = method
	if d.PrecisionDigits < 0 {
		return Differentiator{}, errors.New("precision digits must be >= 0")
	}
	if d.PrecisionDigits == 0 {
		d.PrecisionDigits = DefaultPrecisionDigits
	}
	return d, nil
}

// StepSize scales the perturbation with the magnitude of x so large
// coordinates do not cancel and near-zero coordinates do not underflow.
func (d Differentiator) StepSize(x float64) float64 {
	digits := d.PrecisionDigits
	if digits <= 0 {
		digits = DefaultPrecisionDigits
	}
	eta := math.Pow(10, -float64(digits))
	return math.Sqrt(eta) * (1 + math.Abs(x))
}

// StepSizes computes the element-wise step for a vector point.
func (d Differentiator) StepSizes(x []float64) []float64 {
	steps := make([]float64, len(x))
	for i, v := range x {
		steps[i] = d.StepSize(v)
	}
	return steps
}

func (d Differentiator) Derivative(ctx context.Context, f ScalarFn, x float64) (float64, error) {
	d, err := d.normalized()
	if err != nil {
		return 0, err
	}
	if f == nil {
		return 0, errors.New("function is required")
	}
	h := d.StepSize(x)

	switch d.Method {
	case ForwardDifferences:
		fx, err := f(ctx, x)
		if err != nil {
			return 0, err
		}
		fxh, err := f(ctx, x+h)
		if err != nil {
			return 0, err
		}
		return (fxh - fx) / h, nil
	case CentralDifferences:
		fAhead, err := f(ctx, x+h)
		if err != nil {
			return 0, err
		}
		fBehind, err := f(ctx, x-h)
		if err != nil {
			return 0, err
		}
		return (fAhead - fBehind) / (2 * h), nil
	default:
		return 0, fmt.Errorf("unsupported differentiation method: %s", d.Method)
	}
}

func (d Differentiator) SecondDerivative(ctx context.Context, f ScalarFn, x float64) (float64, error) {
	d, err := d.normalized()
	if err != nil {
		return 0, err
	}
	if f == nil {
		return 0, errors.New("function is required")
	}
	h := d.StepSize(x)

	switch d.Method {
	case ForwardDifferences:
		fx, err := f(ctx, x)
		if err != nil {
			return 0, err
		}
		fxh, err := f(ctx, x+h)
		if err != nil {
			return 0, err
		}
		fx2h, err := f(ctx, x+2*h)
		if err != nil {
			return 0, err
		}
		return (fx2h - 2*fxh + fx) / (h * h), nil
	case CentralDifferences:
		fAhead, err := f(ctx, x+h)
		if err != nil {
			return 0, err
		}
		fx, err := f(ctx, x)
		if err != nil {
			return 0, err
		}
		fBehind, err := f(ctx, x-h)
		if err != nil {
			return 0, err
		}
		return (fAhead - 2*fx + fBehind) / (h * h), nil
	default:
		return 0, fmt.Errorf("unsupported differentiation method: %s", d.Method)
	}
}

// PartialDerivative approximates the partial derivative of f with respect
// to component i at x. The input vector is never mutated.
func (d Differentiator) PartialDerivative(ctx context.Context, f VectorFn, x []float64, i int) (float64, error) {
	d, err := d.normalized()
	if err != nil {
		return 0, err
	}
	if f == nil {
		return 0, errors.New("function is required")
	}
	if i < 0 || i >= len(x) {
		return 0, fmt.Errorf("component index out of range: %d of %d", i, len(x))
	}

	point := append([]float64(nil), x...)
	h := d.StepSize(point[i])

	switch d.Method {
	case ForwardDifferences:
		fx, err := f(ctx, point)
		if err != nil {
			return 0, err
		}
		point[i] = x[i] + h
		fxh, err := f(ctx, point)
		if err != nil {
			return 0, err
		}
		return (fxh - fx) / h, nil
	case CentralDifferences:
		point[i] = x[i] + h
		fAhead, err := f(ctx, point)
		if err != nil {
			return 0, err
		}
		point[i] = x[i] - h
		fBehind, err := f(ctx, point)
		if err != nil {
			return 0, err
		}
		return (fAhead - fBehind) / (2 * h), nil
	default:
		return 0, fmt.Errorf("unsupported differentiation method: %s", d.Method)
	}
}

// Gradient approximates the full gradient of f at x. Cost is O(n)
// evaluations for forward differences and O(2n) for central differences.
func (d Differentiator) Gradient(ctx context.Context, f VectorFn, x []float64) ([]float64, error) {
	d, err := d.normalized()
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, errors.New("function is required")
	}
	if len(x) == 0 {
		return nil, errors.New("point must have at least one component")
	}

	grad := make([]float64, len(x))
	point := append([]float64(nil), x...)

	var fx float64
	if d.Method == ForwardDifferences {
		fx, err = f(ctx, point)
		if err != nil {
			return nil, err
		}
	}

	for i := range x {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		h := d.StepSize(x[i])

		switch d.Method {
		case ForwardDifferences:
			point[i] = x[i] + h
			fxh, err := f(ctx, point)
			if err != nil {
				return nil, err
			}
			grad[i] = (fxh - fx) / h
		case CentralDifferences:
			point[i] = x[i] + h
			fAhead, err := f(ctx, point)
			if err != nil {
				return nil, err
			}
			point[i] = x[i] - h
			fBehind, err := f(ctx, point)
			if err != nil {
				return nil, err
			}
			grad[i] = (fAhead - fBehind) / (2 * h)
		}
		point[i] = x[i]
	}

	return grad, nil
}
