package neural

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// affine returns w·x + b after checking that the shapes line up.
func affine(w *mat.Dense, x, b *mat.VecDense) (*mat.VecDense, error) {
	r, c := w.Dims()
	if x.Len() != c {
		return nil, fmt.Errorf("%w: weights are %dx%d, input has %d", ErrShapeMismatch, r, c, x.Len())
	}
	if b.Len() != r {
		return nil, fmt.Errorf("%w: weights are %dx%d, bias has %d", ErrShapeMismatch, r, c, b.Len())
	}
	z := mat.NewVecDense(r, nil)
	z.MulVec(w, x)
	z.AddVec(z, b)
	return z, nil
}

// backprop returns wᵀ·delta, the error carried to the previous layer.
func backprop(w *mat.Dense, delta *mat.VecDense) (*mat.VecDense, error) {
	r, c := w.Dims()
	if delta.Len() != r {
		return nil, fmt.Errorf("%w: weights are %dx%d, delta has %d", ErrShapeMismatch, r, c, delta.Len())
	}
	out := mat.NewVecDense(c, nil)
	out.MulVec(w.T(), delta)
	return out, nil
}

// descend applies w -= rate·delta⊗input and b -= rate·delta.
func descend(w *mat.Dense, b, delta, input *mat.VecDense, rate float64) error {
	r, c := w.Dims()
	if delta.Len() != r || input.Len() != c || b.Len() != r {
		return fmt.Errorf("%w: weights are %dx%d, delta has %d, input has %d",
			ErrShapeMismatch, r, c, delta.Len(), input.Len())
	}
	grad := mat.NewDense(r, c, nil)
	grad.Outer(rate, delta, input)
	w.Sub(w, grad)
	b.AddScaledVec(b, -rate, delta)
	return nil
}

// finite reports whether every element of m is a finite number.
func finite(m mat.Matrix) bool {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
