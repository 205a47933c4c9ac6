package model

import (
	"math"

	"go-ml.dev/pkg/zorros/zorros"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

/*
CrossEntropy computes mean softmax cross-entropy of logits against class
indices and returns the gradient of the loss with respect to logits
*/
func CrossEntropy(logits mat.Matrix, labels []int) (float64, *mat.Dense) {
	r, c := logits.Dims()
	if r != len(labels) {
		panic(zorros.Panic(zorros.Errorf("logits have %d rows but %d labels given", r, len(labels))))
	}
	grad := mat.NewDense(r, c, nil)
	row := make([]float64, c)
	loss := 0.0
	for i := 0; i < r; i++ {
		mat.Row(row, i, logits)
		mx := floats.Max(row)
		sum := 0.0
		for j, x := range row {
			row[j] = math.Exp(x - mx)
			sum += row[j]
		}
		y := labels[i]
		if y < 0 || y >= c {
			panic(zorros.Panic(zorros.Errorf("label %d is out of range [0,%d)", y, c)))
		}
		loss -= math.Log(row[y] / sum)
		for j := range row {
			g := row[j] / sum
			if j == y {
				g -= 1
			}
			grad.Set(i, j, g/float64(r))
		}
	}
	return loss / float64(r), grad
}
