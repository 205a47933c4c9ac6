package dataset

import (
	"math/rand"
)

/*
Subset is a view of the dataset restricted to row indices
*/
type Subset struct {
	Data    *Synthetic
	Indices []int
}

func (s Subset) Len() int { return len(s.Indices) }

/*
Splits are disjoint train, eval and test partitions covering the whole dataset
*/
type Splits struct {
	Train, Eval, Test Subset
}

/*
Split partitions dataset with one generator seeded by seed.
The ratio is applied twice: full set to train/test first, then train to train/eval,
so the train partition holds int(ratio*int(ratio*n)) rows, about ratio^2 of the dataset.
*/
func Split(s *Synthetic, ratio float64, seed int64) Splits {
	rng := rand.New(rand.NewSource(seed))
	all := make([]int, s.Len())
	for i := range all {
		all[i] = i
	}
	train, test := randomSplit(all, int(ratio*float64(len(all))), rng)
	train, eval := randomSplit(train, int(ratio*float64(len(train))), rng)
	return Splits{
		Train: Subset{s, train},
		Eval:  Subset{s, eval},
		Test:  Subset{s, test},
	}
}

// randomSplit permutes indices and cuts them at k
func randomSplit(indices []int, k int, rng *rand.Rand) (a, b []int) {
	perm := rng.Perm(len(indices))
	a = make([]int, 0, k)
	b = make([]int, 0, len(indices)-k)
	for i, p := range perm {
		if i < k {
			a = append(a, indices[p])
		} else {
			b = append(b, indices[p])
		}
	}
	return
}
