package model

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"golang.org/x/xerrors"
)

const adamEps = 1e-8

/*
Adam implements the Adam optimizer with bias correction
*/
type Adam struct {
	params           []*Parameter
	lr               float64
	betas            [2]float64
	step             int
	expAvg, expAvgSq map[string]*mat.Dense
}

func NewAdam(params []*Parameter, lr float64, betas [2]float64) *Adam {
	o := &Adam{
		params:   params,
		lr:       lr,
		betas:    betas,
		expAvg:   map[string]*mat.Dense{},
		expAvgSq: map[string]*mat.Dense{},
	}
	for _, p := range params {
		r, c := p.Value.Dims()
		o.expAvg[p.Name] = mat.NewDense(r, c, nil)
		o.expAvgSq[p.Name] = mat.NewDense(r, c, nil)
	}
	return o
}

func (o *Adam) Step() error {
	o.step++
	b1, b2 := o.betas[0], o.betas[1]
	bc1 := 1 - math.Pow(b1, float64(o.step))
	bc2 := 1 - math.Pow(b2, float64(o.step))
	for _, p := range o.params {
		m, v := o.expAvg[p.Name], o.expAvgSq[p.Name]
		r, c := p.Value.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				g := p.Grad.At(i, j)
				mi := b1*m.At(i, j) + (1-b1)*g
				vi := b2*v.At(i, j) + (1-b2)*g*g
				m.Set(i, j, mi)
				v.Set(i, j, vi)
				p.Value.Set(i, j, p.Value.At(i, j)-o.lr*(mi/bc1)/(math.Sqrt(vi/bc2)+adamEps))
			}
		}
	}
	return nil
}

func (o *Adam) ZeroGrad() {
	for _, p := range o.params {
		p.Grad.Zero()
	}
}

func (o *Adam) State() Snapshot {
	s := Snapshot{
		"step":  Scalar(float64(o.step)),
		"lr":    Scalar(o.lr),
		"betas": {Rows: 1, Cols: 2, Data: []float64{o.betas[0], o.betas[1]}},
	}
	for _, p := range o.params {
		s[p.Name+".exp_avg"] = TensorOf(o.expAvg[p.Name])
		s[p.Name+".exp_avg_sq"] = TensorOf(o.expAvgSq[p.Name])
	}
	return s
}

func (o *Adam) LoadState(s Snapshot) error {
	st, ok := s["step"]
	if !ok || len(st.Data) != 1 {
		return xerrors.Errorf("adam state has no step: %w", ErrInvalidConfiguration)
	}
	for _, p := range o.params {
		for suffix, dst := range map[string]*mat.Dense{".exp_avg": o.expAvg[p.Name], ".exp_avg_sq": o.expAvgSq[p.Name]} {
			t, ok := s[p.Name+suffix]
			if !ok {
				return xerrors.Errorf("adam state has no %v: %w", p.Name+suffix, ErrInvalidConfiguration)
			}
			if err := t.CopyTo(dst); err != nil {
				return xerrors.Errorf("adam state %v: %v: %w", p.Name+suffix, err.Error(), ErrInvalidConfiguration)
			}
		}
	}
	if t, ok := s["lr"]; ok && len(t.Data) == 1 {
		o.lr = t.Data[0]
	}
	if t, ok := s["betas"]; ok && len(t.Data) == 2 {
		o.betas = [2]float64{t.Data[0], t.Data[1]}
	}
	o.step = int(st.Data[0])
	return nil
}
