package metrics

import (
	"math"
	"math/rand"
	"testing"

	"go-ml.dev/pkg/synthtrain/dataset"
	"go-ml.dev/pkg/synthtrain/fu"
	"go-ml.dev/pkg/synthtrain/model"
	"gonum.org/v1/gonum/mat"
	"gotest.tools/assert"
)

// constant predicts the same class for every row
type constant struct {
	class    int
	training bool
}

func (c *constant) Forward(x mat.Matrix) (*mat.Dense, error) {
	r, _ := x.Dims()
	o := mat.NewDense(r, 2, nil)
	for i := 0; i < r; i++ {
		o.Set(i, c.class, 1)
	}
	return o, nil
}
func (c *constant) Backward(*mat.Dense) error      { return nil }
func (c *constant) Parameters() []*model.Parameter { return nil }
func (c *constant) SetTraining(on bool)            { c.training = on }
func (c *constant) Training() bool                 { return c.training }

func Test_MajorityClassAccuracy(t *testing.T) {
	s, err := dataset.Generate("nonlinear_additive", 500, 3, rand.New(rand.NewSource(2024)))
	assert.NilError(t, err)
	sp := dataset.Split(s, 0.8, 2024)
	truth := fu.Argmax(dataset.Batches(sp.Test, 1000)[0].Y)
	count := [2]int{}
	for _, y := range truth {
		count[y]++
	}
	major := 0
	if count[1] > count[0] {
		major = 1
	}

	m := &constant{class: major, training: true}
	target := 1
	a, err := Evaluate(m, model.CPU, dataset.Batches(sp.Test, 7), &target)
	assert.NilError(t, err)
	assert.Equal(t, a.OverAll, float64(count[major])/float64(len(truth)))
	assert.Equal(t, a.OverTarget, float64(major))
	assert.Assert(t, !m.Training())
}

func Test_BatchSizeDoesNotBias(t *testing.T) {
	// 3 of 4 correct in the first batch, 0 of 1 in the second
	a := Score([]int{1, 1, 0, 0, 1}, []int{1, 1, 0, 1, 0}, nil)
	assert.Equal(t, a.OverAll, 0.6)
	assert.Equal(t, a.OverTarget, 0.0)
}

func Test_TargetAccuracy(t *testing.T) {
	target := 0
	a := Score([]int{0, 1, 0, 1}, []int{0, 0, 1, 1}, &target)
	assert.Equal(t, a.OverAll, 0.5)
	assert.Equal(t, a.OverTarget, 0.5)
	target = 2
	a = Score([]int{0, 1}, []int{0, 1}, &target)
	assert.Equal(t, a.OverAll, 1.0)
	assert.Assert(t, math.IsNaN(a.OverTarget))
	assert.Equal(t, len(a.Scalars()), 2)
}
