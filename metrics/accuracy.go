package metrics

import (
	"go-ml.dev/pkg/synthtrain/dataset"
	"go-ml.dev/pkg/synthtrain/fu"
	"go-ml.dev/pkg/synthtrain/model"
	"go-ml.dev/pkg/zorros/zorros"
)

/*
Accuracy is the classification accuracy over all examples and over examples of the target class
*/
type Accuracy struct {
	OverAll    float64
	OverTarget float64
}

// Scalars are accuracy values named for logging
func (a Accuracy) Scalars() map[string]float64 {
	return map[string]float64{
		"acc_over_all": a.OverAll,
		"acc_over_tgt": a.OverTarget,
	}
}

/*
Score compares predicted and true class indices.
OverTarget is 0 without target and NaN when no example has the target class.
*/
func Score(pred, truth []int, target *int) Accuracy {
	if len(pred) != len(truth) {
		panic(zorros.Panic(zorros.Errorf("%d predictions for %d labels", len(pred), len(truth))))
	}
	all := make([]bool, len(pred))
	tgt := []bool{}
	for i, p := range pred {
		all[i] = p == truth[i]
		if target != nil && truth[i] == *target {
			tgt = append(tgt, all[i])
		}
	}
	a := Accuracy{OverAll: fu.Mean(all)}
	if target != nil {
		a.OverTarget = fu.Mean(tgt)
	}
	return a
}

/*
Evaluate switches model to inference mode and computes accuracy of argmax
predictions against argmax labels over all batches concatenated.
It doesn't switch model back to training mode, it's up to caller.
*/
func Evaluate(m model.Model, dev model.Device, batches []dataset.Batch, target *int) (Accuracy, error) {
	m.SetTraining(false)
	pred := []int{}
	truth := []int{}
	for _, b := range batches {
		x, err := dev.Put(b.X)
		if err != nil {
			return Accuracy{}, err
		}
		y, err := dev.Put(b.Y)
		if err != nil {
			return Accuracy{}, err
		}
		out, err := m.Forward(x)
		if err != nil {
			return Accuracy{}, err
		}
		pred = append(pred, fu.Argmax(out)...)
		truth = append(truth, fu.Argmax(y)...)
	}
	return Score(pred, truth, target), nil
}
