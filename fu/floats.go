package fu

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Fnzi returns the first non-zero integer or zero
func Fnzi(a ...int) int {
	for _, x := range a {
		if x != 0 {
			return x
		}
	}
	return 0
}

func Maxi(a int, b ...int) int {
	for _, x := range b {
		if x > a {
			a = x
		}
	}
	return a
}

func Mini(a int, b ...int) int {
	for _, x := range b {
		if x < a {
			a = x
		}
	}
	return a
}

// DivisibleBy reports n is a non-zero multiple of d
func DivisibleBy(n, d int) bool {
	return d > 0 && n != 0 && n%d == 0
}

/*
Argmax returns index of the maximal value in every row of the matrix.
Ties resolve to the lowest index.
*/
func Argmax(m mat.Matrix) []int {
	r, c := m.Dims()
	idx := make([]int, r)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, m)
		idx[i] = floats.MaxIdx(row)
	}
	return idx
}

// Mean of bools as a fraction of true values, NaN for empty slice
func Mean(a []bool) float64 {
	if len(a) == 0 {
		return nan()
	}
	c := 0
	for _, x := range a {
		if x {
			c++
		}
	}
	return float64(c) / float64(len(a))
}
