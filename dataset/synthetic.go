/*
Package dataset builds synthetic classification datasets with known ground
truth features, caches them on disk and splits them into train, eval and
test partitions
*/
package dataset

import (
	"math"
	"math/rand"
	"sort"

	"go-ml.dev/pkg/synthtrain/model"
	"gonum.org/v1/gonum/mat"
	"golang.org/x/xerrors"
)

/*
Synthetic is a dataset of standard normal features and two-class probability labels
*/
type Synthetic struct {
	Features *mat.Dense // N x D
	Labels   *mat.Dense // N x 2, columns are p0 and p1
}

func (s *Synthetic) Len() int {
	r, _ := s.Features.Dims()
	return r
}

func (s *Synthetic) Dim() int {
	_, c := s.Features.Dims()
	return c
}

type generator struct {
	minDim int
	logit  func(x []float64) float64
}

// only the first three coordinates carry signal
var exponentialInteraction = generator{3, func(x []float64) float64 {
	return math.Exp(x[0] + x[1]*x[2])
}}

var generators = map[string]generator{
	"nonlinear_additive":   exponentialInteraction,
	"orange_skin_additive": exponentialInteraction,
}

// Names lists known synthetic datasets
func Names() []string {
	r := make([]string, 0, len(generators))
	for k := range generators {
		r = append(r, k)
	}
	sort.Strings(r)
	return r
}

func lookup(name string, dim int) (generator, error) {
	g, ok := generators[name]
	if !ok {
		return g, xerrors.Errorf("unknown synthetic dataset %q: %w", name, model.ErrInvalidConfiguration)
	}
	if dim < g.minDim {
		return g, xerrors.Errorf("synthetic dataset %q needs at least %d features, got %d: %w",
			name, g.minDim, dim, model.ErrInvalidConfiguration)
	}
	return g, nil
}

/*
Generate samples n rows of d standard normal features and derives
label probabilities p1 = y/(1+y), p0 = 1-p1 from a dataset specific function y
*/
func Generate(name string, n, d int, rng *rand.Rand) (*Synthetic, error) {
	g, err := lookup(name, d)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, xerrors.Errorf("synthetic dataset size %d: %w", n, model.ErrInvalidConfiguration)
	}
	x := mat.NewDense(n, d, nil)
	y := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		row := x.RawRowView(i)
		for j := range row {
			row[j] = rng.NormFloat64()
		}
		v := g.logit(row)
		p1 := v / (1 + v)
		if math.IsInf(v, 1) {
			p1 = 1
		}
		y.Set(i, 0, 1-p1)
		y.Set(i, 1, p1)
	}
	return &Synthetic{Features: x, Labels: y}, nil
}
