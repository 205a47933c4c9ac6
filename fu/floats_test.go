package fu

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gotest.tools/assert"
	"gotest.tools/assert/cmp"
)

func Test_Argmax(t *testing.T) {
	m := mat.NewDense(3, 3, []float64{
		0.1, 0.7, 0.2,
		0.5, 0.5, 0.0,
		-1, -2, -0.5,
	})
	assert.Assert(t, cmp.DeepEqual(Argmax(m), []int{1, 0, 2}))
}

func Test_DivisibleBy(t *testing.T) {
	assert.Assert(t, !DivisibleBy(0, 5))
	assert.Assert(t, DivisibleBy(10, 5))
	assert.Assert(t, !DivisibleBy(11, 5))
	assert.Assert(t, !DivisibleBy(10, 0))
}

func Test_Mean(t *testing.T) {
	assert.Equal(t, Mean([]bool{true, false, true, true}), 0.75)
	assert.Assert(t, math.IsNaN(Mean(nil)))
	assert.Equal(t, Fnzi(0, 0, 3, 4), 3)
	assert.Equal(t, Maxi(1, 5, 2), 5)
	assert.Equal(t, Mini(4, 5, 2), 2)
}
