package model

import (
	"go-ml.dev/pkg/zorros/zorros"
	"gonum.org/v1/gonum/mat"
)

/*
Tensor is a serializable row-major copy of a matrix
*/
type Tensor struct {
	Rows, Cols int
	Data       []float64
}

/*
Snapshot is a set of named tensors, parameters of a model or internals of an optimizer
*/
type Snapshot map[string]Tensor

func TensorOf(m mat.Matrix) Tensor {
	r, c := m.Dims()
	t := Tensor{Rows: r, Cols: c, Data: make([]float64, r*c)}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			t.Data[i*c+j] = m.At(i, j)
		}
	}
	return t
}

func Scalar(v float64) Tensor {
	return Tensor{Rows: 1, Cols: 1, Data: []float64{v}}
}

func (t Tensor) Dense() *mat.Dense {
	return mat.NewDense(t.Rows, t.Cols, append([]float64(nil), t.Data...))
}

// CopyTo writes tensor values into the matrix of the same shape
func (t Tensor) CopyTo(m *mat.Dense) error {
	r, c := m.Dims()
	if r != t.Rows || c != t.Cols || len(t.Data) != r*c {
		return zorros.Errorf("shape mismatch %dx%d != %dx%d", t.Rows, t.Cols, r, c)
	}
	m.Copy(mat.NewDense(r, c, t.Data))
	return nil
}

func (t Tensor) Equal(o Tensor) bool {
	if t.Rows != o.Rows || t.Cols != o.Cols || len(t.Data) != len(o.Data) {
		return false
	}
	for i, x := range t.Data {
		if x != o.Data[i] {
			return false
		}
	}
	return true
}

func (s Snapshot) Equal(o Snapshot) bool {
	if len(s) != len(o) {
		return false
	}
	for k, t := range s {
		if x, ok := o[k]; !ok || !t.Equal(x) {
			return false
		}
	}
	return true
}
