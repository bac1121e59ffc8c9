package network

import "math/rand"

// Network is the narrow surface the training and order-selection engines
// consume. The engines never assume a concrete architecture: they read and
// write the flat parameter vector, clone for speculative evaluation, and
// reconfigure the structural order between selection trials.
type Network interface {
	InputCount() int
	OutputCount() int

	// Order is the structural capacity being searched, for a perceptron
	// the hidden-unit count.
	Order() int

	ParameterCount() int
	Parameters() []float64
	SetParameters(params []float64) error

	// Clone returns a deep, independent copy.
	Clone() Network

	// Reconfigure rebuilds the network at the given order. Parameters are
	// reset; callers randomize before training.
	Reconfigure(order int) error

	Outputs(inputs []float64) ([]float64, error)

	Randomize(rng *rand.Rand)
}
