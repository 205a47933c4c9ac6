package model

import (
	"gonum.org/v1/gonum/mat"
	"golang.org/x/xerrors"
)

/*
Parameter is a named trainable matrix with its accumulated gradient
*/
type Parameter struct {
	Name  string
	Value *mat.Dense
	Grad  *mat.Dense
}

/*
Model is a classifier trained by the trainer core.
Forward maps a batch of rows to logits, Backward accumulates gradients
of the last Forward call into Parameters.
*/
type Model interface {
	Forward(x mat.Matrix) (*mat.Dense, error)
	Backward(grad *mat.Dense) error
	Parameters() []*Parameter
	// SetTraining switches between training and inference modes
	SetTraining(on bool)
	Training() bool
}

/*
Optimizer updates parameters of a model from their gradients
*/
type Optimizer interface {
	Step() error
	ZeroGrad()
	// State returns a deep copy of optimizer internals
	State() Snapshot
	LoadState(Snapshot) error
}

/*
ParametersOf returns a deep copy of all model parameters
*/
func ParametersOf(m Model) Snapshot {
	s := Snapshot{}
	for _, p := range m.Parameters() {
		s[p.Name] = TensorOf(p.Value)
	}
	return s
}

/*
LoadParameters copies snapshot values into model parameters.
Every parameter must be present in the snapshot with the same shape.
*/
func LoadParameters(m Model, s Snapshot) error {
	params := m.Parameters()
	if len(params) != len(s) {
		return xerrors.Errorf("snapshot has %d tensors but model has %d parameters: %w",
			len(s), len(params), ErrInvalidConfiguration)
	}
	for _, p := range params {
		t, ok := s[p.Name]
		if !ok {
			return xerrors.Errorf("parameter %v is missing in snapshot: %w", p.Name, ErrInvalidConfiguration)
		}
		if err := t.CopyTo(p.Value); err != nil {
			return xerrors.Errorf("parameter %v: %v: %w", p.Name, err.Error(), ErrInvalidConfiguration)
		}
	}
	return nil
}
