// Package policy implements policies using linear function
// approximation
package policy

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/onpolicy/environment"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Softmax implements a softmax (Boltzmann) policy over linear action
// preferences: π(a|s) ∝ exp(wₐᵀs)
type Softmax struct {
	weights *mat.Dense // rows = actions, cols = features
	source  rand.Source
}

// NewSoftmax constructs a new Softmax policy with zero weights for the
// environment env. Actions are sampled using a source seeded with seed.
func NewSoftmax(seed uint64, env environment.Environment) (*Softmax,
	error) {
	actions, err := environment.NumActions(env)
	if err != nil {
		return nil, fmt.Errorf("newSoftmax: %v", err)
	}
	features := env.ObservationSpec().Shape.Len()

	return &Softmax{
		weights: mat.NewDense(actions, features, nil),
		source:  rand.NewSource(seed),
	}, nil
}

// Weights returns the weights of the policy. Changes to the returned
// matrix change the policy.
func (p *Softmax) Weights() *mat.Dense {
	return p.weights
}

// SetWeights copies w into the policy weights
func (p *Softmax) SetWeights(w mat.Matrix) error {
	r, c := p.weights.Dims()
	wr, wc := w.Dims()
	if r != wr || c != wc {
		return fmt.Errorf("setWeights: illegal shape \n\twant(%d, %d)"+
			"\n\thave(%d, %d)", r, c, wr, wc)
	}
	p.weights.Copy(w)
	return nil
}

// Probabilities returns the action probabilities in state obs
func (p *Softmax) Probabilities(obs mat.Vector) []float64 {
	numActions, _ := p.weights.Dims()
	prefs := mat.NewVecDense(numActions, nil)
	prefs.MulVec(p.weights, obs)

	probs := prefs.RawVector().Data

	// Subtract the max preference for numerical stability
	floats.AddConst(-floats.Max(probs), probs)
	for i := range probs {
		probs[i] = math.Exp(probs[i])
	}
	floats.Scale(1/floats.Sum(probs), probs)

	return probs
}

// Sample samples an action in state obs
func (p *Softmax) Sample(obs mat.Vector) *mat.VecDense {
	dist := distuv.NewCategorical(p.Probabilities(obs), p.source)
	return mat.NewVecDense(1, []float64{dist.Rand()})
}

// Greedy selects the action of maximum probability in state obs. Ties
// are broken by the lowest action index.
func (p *Softmax) Greedy(obs mat.Vector) *mat.VecDense {
	action := floats.MaxIdx(p.Probabilities(obs))
	return mat.NewVecDense(1, []float64{float64(action)})
}
