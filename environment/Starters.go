package environment

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"
)

// UniformStarter samples starting states uniformly from the box given
// by one interval per feature
type UniformStarter struct {
	dist *distmv.Uniform
}

// NewUniformStarter returns a UniformStarter which samples feature i
// from bounds[i]
func NewUniformStarter(bounds []r1.Interval, seed uint64) UniformStarter {
	return UniformStarter{distmv.NewUniform(bounds, rand.NewSource(seed))}
}

// Start implements the Starter interface
func (u UniformStarter) Start() *mat.VecDense {
	return mat.NewVecDense(u.dist.Dim(), u.dist.Rand(nil))
}

// CategoricalStarter samples each feature i uniformly from the integers
// 0, 1, ..., counts[i]-1
type CategoricalStarter struct {
	dists []distuv.Categorical
}

// NewCategoricalStarter returns a new CategoricalStarter. All features
// share a single random source seeded with seed.
func NewCategoricalStarter(counts []int,
	seed uint64) (*CategoricalStarter, error) {
	source := rand.NewSource(seed)

	dists := make([]distuv.Categorical, len(counts))
	for i, n := range counts {
		if n <= 0 {
			return nil, fmt.Errorf("newCategoricalStarter: feature %d has "+
				"%d categories", i, n)
		}
		weights := make([]float64, n)
		for j := range weights {
			weights[j] = 1
		}
		dists[i] = distuv.NewCategorical(weights, source)
	}
	return &CategoricalStarter{dists}, nil
}

// Start implements the Starter interface
func (c *CategoricalStarter) Start() *mat.VecDense {
	start := mat.NewVecDense(len(c.dists), nil)
	for i := range c.dists {
		start.SetVec(i, c.dists[i].Rand())
	}
	return start
}
