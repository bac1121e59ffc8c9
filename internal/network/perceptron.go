package network

import (
	"fmt"
	"math"
	"math/rand"
)

// Perceptron is a one-hidden-layer network with tanh hidden units and
// linear outputs. Parameters are stored as one flat vector: hidden-layer
// weights and biases first, then output-layer weights and biases.
type Perceptron struct {
	inputs  int
	hidden  int
	outputs int
	weights []float64
}

func NewPerceptron(inputs, hidden, outputs int) (*Perceptron, error) {
	if inputs <= 0 {
		return nil, fmt.Errorf("input count must be > 0: %d", inputs)
	}
	if hidden <= 0 {
		return nil, fmt.Errorf("hidden count must be > 0: %d", hidden)
	}
	if outputs <= 0 {
		return nil, fmt.Errorf("output count must be > 0: %d", outputs)
	}
	p := &Perceptron{inputs: inputs, hidden: hidden, outputs: outputs}
	p.weights = make([]float64, p.ParameterCount())
	return p, nil
}

func (p *Perceptron) InputCount() int  { return p.inputs }
func (p *Perceptron) OutputCount() int { return p.outputs }
func (p *Perceptron) Order() int       { return p.hidden }

func (p *Perceptron) ParameterCount() int {
	return p.hidden*(p.inputs+1) + p.outputs*(p.hidden+1)
}

func (p *Perceptron) Parameters() []float64 {
	return append([]float64(nil), p.weights...)
}

func (p *Perceptron) SetParameters(params []float64) error {
	if len(params) != p.ParameterCount() {
		return fmt.Errorf("parameter count mismatch: got=%d want=%d", len(params), p.ParameterCount())
	}
	copy(p.weights, params)
	return nil
}

func (p *Perceptron) Clone() Network {
	out := &Perceptron{inputs: p.inputs, hidden: p.hidden, outputs: p.outputs}
	out.weights = append([]float64(nil), p.weights...)
	return out
}

func (p *Perceptron) Reconfigure(order int) error {
	if order <= 0 {
		return fmt.Errorf("order must be > 0: %d", order)
	}
	p.hidden = order
	p.weights = make([]float64, p.ParameterCount())
	return nil
}

func (p *Perceptron) Outputs(inputs []float64) ([]float64, error) {
	if len(inputs) != p.inputs {
		return nil, fmt.Errorf("input count mismatch: got=%d want=%d", len(inputs), p.inputs)
	}

	hidden := make([]float64, p.hidden)
	offset := 0
	for h := 0; h < p.hidden; h++ {
		total := 0.0
		for i := 0; i < p.inputs; i++ {
			total += p.weights[offset] * inputs[i]
			offset++
		}
		total += p.weights[offset] // bias
		offset++
		hidden[h] = math.Tanh(total)
	}

	outputs := make([]float64, p.outputs)
	for o := 0; o < p.outputs; o++ {
		total := 0.0
		for h := 0; h < p.hidden; h++ {
			total += p.weights[offset] * hidden[h]
			offset++
		}
		total += p.weights[offset] // bias
		offset++
		outputs[o] = total
	}

	return outputs, nil
}

func (p *Perceptron) Randomize(rng *rand.Rand) {
	for i := range p.weights {
		p.weights[i] = rng.Float64()*2 - 1
	}
}
