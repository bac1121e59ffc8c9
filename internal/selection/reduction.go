package selection

import "fmt"

// Reduction collapses the per-trial performances of one candidate order
// into a single value.
type Reduction string

const (
	ReduceMinimum Reduction = "minimum"
	ReduceMaximum Reduction = "maximum"
	ReduceMean    Reduction = "mean"
)

func ParseReduction(name string) (Reduction, error) {
	switch name {
	case "", string(ReduceMean):
		return ReduceMean, nil
	case string(ReduceMinimum):
		return ReduceMinimum, nil
	case string(ReduceMaximum):
		return ReduceMaximum, nil
	default:
		return "", fmt.Errorf("unsupported reduction: %s", name)
	}
}

// Apply reduces a non-empty value set. A single-element set reduces to its
// element under every policy.
func (r Reduction) Apply(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	switch r {
	case ReduceMinimum:
		out := values[0]
		for _, v := range values[1:] {
			if v < out {
				out = v
			}
		}
		return out
	case ReduceMaximum:
		out := values[0]
		for _, v := range values[1:] {
			if v > out {
				out = v
			}
		}
		return out
	default:
		sum := 0.0
		for _, v := range values {
			sum += v
		}
		return sum / float64(len(values))
	}
}
