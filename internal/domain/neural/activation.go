package neural

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Activation names a layer's nonlinearity.
type Activation string

// Supported activations.
const (
	ReLU     Activation = "relu"
	Logistic Activation = "logistic"
)

func (a Activation) valid() bool {
	return a == ReLU || a == Logistic
}

// apply returns f(z) elementwise.
func (a Activation) apply(z *mat.VecDense) *mat.VecDense {
	out := mat.NewVecDense(z.Len(), nil)
	for i := 0; i < z.Len(); i++ {
		v := z.AtVec(i)
		switch a {
		case ReLU:
			out.SetVec(i, math.Max(0, v))
		case Logistic:
			out.SetVec(i, 1/(1+math.Exp(-v)))
		}
	}
	return out
}

// derivative returns f'(z) elementwise, using the activation output for the
// logistic case.
func (a Activation) derivative(z, out *mat.VecDense) *mat.VecDense {
	d := mat.NewVecDense(z.Len(), nil)
	for i := 0; i < z.Len(); i++ {
		switch a {
		case ReLU:
			if z.AtVec(i) > 0 {
				d.SetVec(i, 1)
			}
		case Logistic:
			y := out.AtVec(i)
			d.SetVec(i, y*(1-y))
		}
	}
	return d
}
