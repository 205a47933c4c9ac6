package model

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
	"golang.org/x/xerrors"
)

/*
MLP is a one hidden layer perceptron with ReLU activation.
It is the reference classifier head for synthetic datasets.
*/
type MLP struct {
	in, hidden, out int

	w1, b1, w2, b2 *Parameter

	training bool
	x, h, a  *mat.Dense // activations of the last forward pass
}

func NewMLP(in, hidden, out int, seed int64) *MLP {
	rng := rand.New(rand.NewSource(seed))
	return &MLP{
		in:       in,
		hidden:   hidden,
		out:      out,
		w1:       uniform("fc1.weight", in, hidden, in, rng),
		b1:       uniform("fc1.bias", 1, hidden, in, rng),
		w2:       uniform("fc2.weight", hidden, out, hidden, rng),
		b2:       uniform("fc2.bias", 1, out, hidden, rng),
		training: true,
	}
}

func uniform(name string, r, c, fanIn int, rng *rand.Rand) *Parameter {
	bound := 1 / math.Sqrt(float64(fanIn))
	data := make([]float64, r*c)
	for i := range data {
		data[i] = (rng.Float64()*2 - 1) * bound
	}
	return &Parameter{Name: name, Value: mat.NewDense(r, c, data), Grad: mat.NewDense(r, c, nil)}
}

func (m *MLP) Parameters() []*Parameter {
	return []*Parameter{m.w1, m.b1, m.w2, m.b2}
}

func (m *MLP) SetTraining(on bool) { m.training = on }
func (m *MLP) Training() bool      { return m.training }

func (m *MLP) Forward(x mat.Matrix) (*mat.Dense, error) {
	r, c := x.Dims()
	if c != m.in {
		return nil, xerrors.Errorf("mlp expects %d features but got %d: %w", m.in, c, ErrInvalidConfiguration)
	}
	h := mat.NewDense(r, m.hidden, nil)
	h.Mul(x, m.w1.Value)
	addRow(h, m.b1.Value)
	a := mat.DenseCopyOf(h)
	a.Apply(func(_, _ int, v float64) float64 { return math.Max(v, 0) }, a)
	o := mat.NewDense(r, m.out, nil)
	o.Mul(a, m.w2.Value)
	addRow(o, m.b2.Value)
	if m.training {
		m.x, m.h, m.a = mat.DenseCopyOf(x), h, a
	} else {
		m.x, m.h, m.a = nil, nil, nil
	}
	return o, nil
}

func (m *MLP) Backward(grad *mat.Dense) error {
	if m.x == nil {
		return xerrors.Errorf("backward requires a forward pass in training mode: %w", ErrInvalidConfiguration)
	}
	var dw2 mat.Dense
	dw2.Mul(m.a.T(), grad)
	m.w2.Grad.Add(m.w2.Grad, &dw2)
	addColSums(m.b2.Grad, grad)

	var da mat.Dense
	da.Mul(grad, m.w2.Value.T())
	da.Apply(func(i, j int, v float64) float64 {
		if m.h.At(i, j) > 0 {
			return v
		}
		return 0
	}, &da)

	var dw1 mat.Dense
	dw1.Mul(m.x.T(), &da)
	m.w1.Grad.Add(m.w1.Grad, &dw1)
	addColSums(m.b1.Grad, &da)
	return nil
}

func addRow(m *mat.Dense, row *mat.Dense) {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			m.Set(i, j, m.At(i, j)+row.At(0, j))
		}
	}
}

func addColSums(dst *mat.Dense, m *mat.Dense) {
	r, c := m.Dims()
	for j := 0; j < c; j++ {
		s := 0.0
		for i := 0; i < r; i++ {
			s += m.At(i, j)
		}
		dst.Set(0, j, dst.At(0, j)+s)
	}
}
