package dataset

import (
	"math/rand"

	"go-ml.dev/pkg/synthtrain/model"
	"gonum.org/v1/gonum/mat"
	"golang.org/x/xerrors"
)

/*
Batch is a set of feature rows with their label rows
*/
type Batch struct {
	X, Y *mat.Dense
}

func (b Batch) Len() int {
	r, _ := b.X.Dims()
	return r
}

func gather(s Subset, positions []int) Batch {
	d := s.Data
	_, xc := d.Features.Dims()
	_, yc := d.Labels.Dims()
	x := mat.NewDense(len(positions), xc, nil)
	y := mat.NewDense(len(positions), yc, nil)
	for i, p := range positions {
		j := s.Indices[p]
		copy(x.RawRowView(i), d.Features.RawRowView(j))
		copy(y.RawRowView(i), d.Labels.RawRowView(j))
	}
	return Batch{x, y}
}

/*
Batches slices subset into ordered batches, the last one may be shorter
*/
func Batches(s Subset, size int) []Batch {
	if size <= 0 {
		return nil
	}
	r := []Batch{}
	pos := make([]int, 0, size)
	for i := 0; i < s.Len(); i++ {
		pos = append(pos, i)
		if len(pos) == size || i == s.Len()-1 {
			r = append(r, gather(s, pos))
			pos = pos[:0]
		}
	}
	return r
}

/*
Stream is an infinite sequence of shuffled batches over a subset.
Every pass over the subset starts with a new permutation drawn from the stream's
own generator, so the n-th batch depends only on seed and n.
*/
type Stream struct {
	subset Subset
	size   int
	seed   int64

	rng    *rand.Rand
	order  []int
	pos    int
	served int
}

func NewStream(s Subset, size int, seed int64) (*Stream, error) {
	if s.Len() == 0 || size <= 0 {
		return nil, xerrors.Errorf("can't stream %d rows by %d: %w", s.Len(), size, model.ErrInvalidConfiguration)
	}
	st := &Stream{subset: s, size: size, seed: seed}
	st.Seek(0)
	return st, nil
}

// Next returns the next batch, wrapping around with reshuffle at the end of subset
func (st *Stream) Next() Batch {
	if st.pos >= len(st.order) {
		st.shuffle()
	}
	end := st.pos + st.size
	if end > len(st.order) {
		end = len(st.order)
	}
	b := gather(st.subset, st.order[st.pos:end])
	st.pos = end
	st.served++
	return b
}

func (st *Stream) shuffle() {
	st.order = st.rng.Perm(st.subset.Len())
	st.pos = 0
}

// Seek restarts stream and skips n batches
func (st *Stream) Seek(n int) {
	st.rng = rand.New(rand.NewSource(st.seed))
	st.order = nil
	st.pos = 0
	st.served = 0
	perEpoch := (st.subset.Len() + st.size - 1) / st.size
	for ; n >= perEpoch; n -= perEpoch {
		st.shuffle()
		st.pos = len(st.order)
		st.served += perEpoch
	}
	if n > 0 {
		st.shuffle()
		st.pos = n * st.size
		st.served += n
	}
}

// Served is the count of batches returned since the stream start
func (st *Stream) Served() int { return st.served }

// Epoch is the count of completed passes over subset
func (st *Stream) Epoch() int {
	perEpoch := (st.subset.Len() + st.size - 1) / st.size
	return st.served / perEpoch
}
