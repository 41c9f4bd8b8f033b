// Package neural implements the feed-forward success predictor: a small
// fully connected network trained by per-sample gradient descent.
package neural

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Architecture defaults.
const (
	DefaultInputs       = 10
	DefaultLearningRate = 0.001
	DefaultEpochs       = 50
	DefaultSeed         = 42
	// MaxEpochs is the most epochs a single Train call accepts.
	MaxEpochs = 100_000

	biasJitter = 0.05
)

// DefaultUnits are the unit counts of the four weighted layers.
var DefaultUnits = []int{8, 16, 8, 1} //nolint:gochecknoglobals // fixed architecture

// Layer is one fully connected layer. Weights is Units × previous Units.
type Layer struct {
	Units      int
	Activation Activation
	Weights    *mat.Dense
	Biases     *mat.VecDense
}

// Sample is a training pair.
type Sample struct {
	Input  []float64
	Target float64
}

// Report summarizes a training call. Losses holds the mean loss after each
// epoch.
type Report struct {
	Samples     int       `json:"samples"`
	Epochs      int       `json:"epochs"`
	InitialLoss float64   `json:"initial_loss"`
	FinalLoss   float64   `json:"final_loss"`
	Losses      []float64 `json:"losses"`
}

// Model is the predictor. Forward may run concurrently with other Forward
// calls; Train and UnmarshalBinary need exclusive access.
type Model struct {
	inputs       int
	layers       []Layer
	learningRate float64
	epochs       int
	seed         int64
}

// New builds a model with the default architecture: relu hidden layers,
// a logistic output, Xavier-uniform weights and jittered biases.
func New(opts ...Option) *Model {
	m := &Model{
		inputs:       DefaultInputs,
		learningRate: DefaultLearningRate,
		epochs:       DefaultEpochs,
		seed:         DefaultSeed,
	}
	for _, opt := range opts {
		opt(m)
	}

	rng := rand.New(rand.NewSource(m.seed)) //nolint:gosec // reproducible initialization
	prev := m.inputs
	for i, units := range DefaultUnits {
		act := ReLU
		if i == len(DefaultUnits)-1 {
			act = Logistic
		}
		limit := math.Sqrt(6 / float64(prev+units))
		w := mat.NewDense(units, prev, nil)
		for r := 0; r < units; r++ {
			for c := 0; c < prev; c++ {
				w.Set(r, c, (rng.Float64()*2-1)*limit)
			}
		}
		b := mat.NewVecDense(units, nil)
		for r := 0; r < units; r++ {
			b.SetVec(r, (rng.Float64()*2-1)*biasJitter)
		}
		m.layers = append(m.layers, Layer{Units: units, Activation: act, Weights: w, Biases: b})
		prev = units
	}
	return m
}

// Inputs returns the expected input length.
func (m *Model) Inputs() int { return m.inputs }

// LearningRate returns the gradient descent step.
func (m *Model) LearningRate() float64 { return m.learningRate }

// Units returns the unit count of each layer.
func (m *Model) Units() []int {
	out := make([]int, len(m.layers))
	for i, l := range m.layers {
		out[i] = l.Units
	}
	return out
}

// CheckArchitecture reports whether the model has the default layer stack:
// DefaultUnits wide, relu hidden layers and a logistic output.
func (m *Model) CheckArchitecture() error {
	if len(m.layers) != len(DefaultUnits) {
		return fmt.Errorf("%w: %d layers, want %d", ErrShapeMismatch, len(m.layers), len(DefaultUnits))
	}
	for i, l := range m.layers {
		want := ReLU
		if i == len(m.layers)-1 {
			want = Logistic
		}
		if l.Units != DefaultUnits[i] || l.Activation != want {
			return fmt.Errorf("%w: layer %d is %d %s units, want %d %s",
				ErrShapeMismatch, i, l.Units, l.Activation, DefaultUnits[i], want)
		}
	}
	return nil
}

// Layers returns deep copies of the layers.
func (m *Model) Layers() []Layer {
	out := make([]Layer, len(m.layers))
	for i, l := range m.layers {
		out[i] = Layer{
			Units:      l.Units,
			Activation: l.Activation,
			Weights:    mat.DenseCopyOf(l.Weights),
			Biases:     mat.VecDenseCopyOf(l.Biases),
		}
	}
	return out
}

// Clone returns an independent copy of the model.
func (m *Model) Clone() *Model {
	c := *m
	c.layers = m.Layers()
	return &c
}

// Forward returns the predicted success probability for x, in [0,1].
func (m *Model) Forward(x []float64) (float64, error) {
	_, acts, err := m.forward(x)
	if err != nil {
		return 0, err
	}
	return acts[len(acts)-1].AtVec(0), nil
}

// forward returns the pre-activations of every layer and the activations,
// where acts[0] is the input.
func (m *Model) forward(x []float64) ([]*mat.VecDense, []*mat.VecDense, error) {
	if len(x) != m.inputs {
		return nil, nil, fmt.Errorf("%w: model takes %d inputs, got %d", ErrShapeMismatch, m.inputs, len(x))
	}
	in := make([]float64, len(x))
	copy(in, x)

	zs := make([]*mat.VecDense, len(m.layers))
	acts := make([]*mat.VecDense, len(m.layers)+1)
	acts[0] = mat.NewVecDense(len(in), in)
	for i, l := range m.layers {
		z, err := affine(l.Weights, acts[i], l.Biases)
		if err != nil {
			return nil, nil, fmt.Errorf("layer %d: %w", i, err)
		}
		zs[i] = z
		acts[i+1] = l.Activation.apply(z)
	}
	return zs, acts, nil
}

// Loss returns the mean of ½(y−t)² over samples.
func (m *Model) Loss(samples []Sample) (float64, error) {
	if len(samples) == 0 {
		return 0, ErrEmptyDataset
	}
	var total float64
	for i, s := range samples {
		y, err := m.Forward(s.Input)
		if err != nil {
			return 0, fmt.Errorf("sample %d: %w", i, err)
		}
		total += 0.5 * (y - s.Target) * (y - s.Target)
	}
	return total / float64(len(samples)), nil
}

// Train runs per-sample gradient descent over samples for the given number
// of epochs, or the model default when epochs is zero. Samples are visited
// in order. The model is left untouched when validation fails.
func (m *Model) Train(samples []Sample, epochs int) (Report, error) {
	if len(samples) == 0 {
		return Report{}, ErrEmptyDataset
	}
	for i, s := range samples {
		if len(s.Input) != m.inputs {
			return Report{}, fmt.Errorf("sample %d: %w: want %d inputs, got %d", i, ErrShapeMismatch, m.inputs, len(s.Input))
		}
		if s.Target < 0 || s.Target > 1 || math.IsNaN(s.Target) {
			return Report{}, fmt.Errorf("sample %d: %w: %g", i, ErrInvalidTarget, s.Target)
		}
	}
	if epochs <= 0 {
		epochs = m.epochs
	}
	if epochs > MaxEpochs {
		return Report{}, fmt.Errorf("%w: %d exceeds %d", ErrInvalidEpochs, epochs, MaxEpochs)
	}

	initial, err := m.Loss(samples)
	if err != nil {
		return Report{}, err
	}
	rep := Report{Samples: len(samples), Epochs: epochs, InitialLoss: initial, Losses: make([]float64, 0, epochs)}
	for e := 0; e < epochs; e++ {
		for i, s := range samples {
			if err := m.step(s); err != nil {
				return rep, fmt.Errorf("epoch %d sample %d: %w", e, i, err)
			}
		}
		loss, err := m.Loss(samples)
		if err != nil {
			return rep, err
		}
		rep.Losses = append(rep.Losses, loss)
	}
	rep.FinalLoss = rep.Losses[len(rep.Losses)-1]
	return rep, nil
}

// step performs one backward pass and weight update for a single sample.
func (m *Model) step(s Sample) error {
	zs, acts, err := m.forward(s.Input)
	if err != nil {
		return err
	}

	last := len(m.layers) - 1
	out := acts[last+1]
	// dL/dy for L = ½(y−t)², then through the output activation.
	delta := mat.NewVecDense(out.Len(), nil)
	for i := 0; i < out.Len(); i++ {
		delta.SetVec(i, out.AtVec(i)-s.Target)
	}
	delta.MulElemVec(delta, m.layers[last].Activation.derivative(zs[last], out))

	for l := last; l >= 0; l-- {
		layer := m.layers[l]
		var prev *mat.VecDense
		if l > 0 {
			// carried with the weights as they were before this update
			prev, err = backprop(layer.Weights, delta)
			if err != nil {
				return fmt.Errorf("layer %d: %w", l, err)
			}
			prev.MulElemVec(prev, m.layers[l-1].Activation.derivative(zs[l-1], acts[l]))
		}
		if err := descend(layer.Weights, layer.Biases, delta, acts[l], m.learningRate); err != nil {
			return fmt.Errorf("layer %d: %w", l, err)
		}
		delta = prev
	}
	return nil
}
