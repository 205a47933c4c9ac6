package trainer

import (
	"go-ml.dev/pkg/synthtrain/checkpoint"
	"go-ml.dev/pkg/synthtrain/metrics"
)

/*
Eval is a periodic evaluation done during training
*/
type Eval struct {
	Step      int
	Milestone checkpoint.Milestone
	Accuracy  metrics.Accuracy
}

/*
Report is a training report
*/
type Report struct {
	Start    int     // step training started from
	Steps    int     // step training finished at
	LastLoss float64 // loss of the last iteration
	Evals    []Eval  // periodic evaluations on the eval partition
	Test     metrics.Accuracy
}

// Best returns the periodic evaluation with the highest overall accuracy
func (r *Report) Best() (Eval, bool) {
	if len(r.Evals) == 0 {
		return Eval{}, false
	}
	j := 0
	for i, e := range r.Evals {
		if e.Accuracy.OverAll > r.Evals[j].Accuracy.OverAll {
			j = i
		}
	}
	return r.Evals[j], true
}
