package policy

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func TestSoftmaxProbabilities(t *testing.T) {
	p := &Softmax{weights: mat.NewDense(2, 2, []float64{1, 0, 0, 1})}

	probs := p.Probabilities(mat.NewVecDense(2, []float64{math.Log(3), 0}))
	if !floats.EqualApprox(probs, []float64{0.75, 0.25}, 1e-12) {
		t.Errorf("probabilities: want([0.75 0.25]) have(%v)", probs)
	}

	// Large preferences must not overflow
	probs = p.Probabilities(mat.NewVecDense(2, []float64{1000, 999}))
	if math.IsNaN(probs[0]) || probs[0] < probs[1] {
		t.Errorf("probabilities: unstable for large preferences: %v", probs)
	}

	if a := p.Greedy(mat.NewVecDense(2, []float64{0, 2})); a.AtVec(0) != 1 {
		t.Errorf("greedy: want(1) have(%v)", a.AtVec(0))
	}
}
