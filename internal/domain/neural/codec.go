package neural

import (
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

const codecVersion = 1

type layerDoc struct {
	Units      int         `json:"units"`
	Activation Activation  `json:"activation"`
	Weights    [][]float64 `json:"weights"`
	Biases     []float64   `json:"biases"`
}

type modelDoc struct {
	Version      int        `json:"version"`
	Inputs       int        `json:"inputs"`
	LearningRate float64    `json:"learning_rate"`
	Epochs       int        `json:"epochs"`
	Seed         int64      `json:"seed"`
	Layers       []layerDoc `json:"layers"`
}

// MarshalBinary encodes the model as a JSON document. Float values round
// trip exactly.
func (m *Model) MarshalBinary() ([]byte, error) {
	doc := modelDoc{
		Version:      codecVersion,
		Inputs:       m.inputs,
		LearningRate: m.learningRate,
		Epochs:       m.epochs,
		Seed:         m.seed,
		Layers:       make([]layerDoc, len(m.layers)),
	}
	for i, l := range m.layers {
		r, _ := l.Weights.Dims()
		rows := make([][]float64, r)
		for j := 0; j < r; j++ {
			rows[j] = mat.Row(nil, j, l.Weights)
		}
		doc.Layers[i] = layerDoc{
			Units:      l.Units,
			Activation: l.Activation,
			Weights:    rows,
			Biases:     mat.Col(nil, 0, l.Biases),
		}
	}
	return json.Marshal(doc)
}

// UnmarshalBinary replaces the model with the encoded one. The document is
// fully validated before anything is replaced.
func (m *Model) UnmarshalBinary(data []byte) error {
	var doc modelDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptModel, err)
	}
	if doc.Version != codecVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrCorruptModel, doc.Version)
	}
	if doc.Inputs <= 0 || len(doc.Layers) == 0 {
		return fmt.Errorf("%w: no inputs or layers", ErrCorruptModel)
	}
	if doc.LearningRate <= 0 || math.IsNaN(doc.LearningRate) {
		return fmt.Errorf("%w: learning rate %g", ErrCorruptModel, doc.LearningRate)
	}

	layers := make([]Layer, len(doc.Layers))
	prev := doc.Inputs
	for i, ld := range doc.Layers {
		if !ld.Activation.valid() {
			return fmt.Errorf("%w: layer %d activation %q", ErrCorruptModel, i, ld.Activation)
		}
		if ld.Units <= 0 || len(ld.Weights) != ld.Units || len(ld.Biases) != ld.Units {
			return fmt.Errorf("%w: %w: layer %d declares %d units", ErrCorruptModel, ErrShapeMismatch, i, ld.Units)
		}
		w := mat.NewDense(ld.Units, prev, nil)
		for r, row := range ld.Weights {
			if len(row) != prev {
				return fmt.Errorf("%w: %w: layer %d row %d has %d columns, previous layer has %d units",
					ErrCorruptModel, ErrShapeMismatch, i, r, len(row), prev)
			}
			w.SetRow(r, row)
		}
		b := mat.NewVecDense(ld.Units, append([]float64(nil), ld.Biases...))
		if !finite(w) || !finite(b) {
			return fmt.Errorf("%w: layer %d holds non-finite values", ErrCorruptModel, i)
		}
		layers[i] = Layer{Units: ld.Units, Activation: ld.Activation, Weights: w, Biases: b}
		prev = ld.Units
	}
	if prev != 1 {
		return fmt.Errorf("%w: %w: output layer has %d units", ErrCorruptModel, ErrShapeMismatch, prev)
	}

	m.inputs = doc.Inputs
	m.layers = layers
	m.learningRate = doc.LearningRate
	m.epochs = doc.Epochs
	if m.epochs <= 0 {
		m.epochs = DefaultEpochs
	}
	m.seed = doc.Seed
	return nil
}
