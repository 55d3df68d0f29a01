package environment

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// SpecType is the quantity a Spec describes
type SpecType int

const (
	Action SpecType = iota
	Observation
	Discount
)

func (s SpecType) String() string {
	switch s {
	case Action:
		return "Action"
	case Observation:
		return "Observation"
	case Discount:
		return "Discount"
	}
	return fmt.Sprintf("SpecType(%d)", int(s))
}

// Cardinality determines whether the values a Spec describes are
// discrete or continuous
type Cardinality string

const (
	Continuous Cardinality = "Continuous"
	Discrete   Cardinality = "Discrete"
)

// Spec describes the shape and bounds of the actions, observations, or
// discount of an environment. Bounds are inclusive.
type Spec struct {
	Shape      mat.Vector
	Type       SpecType
	LowerBound mat.Vector
	UpperBound mat.Vector
	Cardinality
}

// NewSpec returns a new Spec. NewSpec panics if the bounds do not have
// the same length as shape.
func NewSpec(shape mat.Vector, t SpecType, lowerBound,
	upperBound mat.Vector, cardinality Cardinality) Spec {
	if shape.Len() != lowerBound.Len() || shape.Len() != upperBound.Len() {
		panic(fmt.Sprintf("newSpec: %v bounds (%d, %d) do not match shape "+
			"length %d", t, lowerBound.Len(), upperBound.Len(), shape.Len()))
	}
	return Spec{shape, t, lowerBound, upperBound, cardinality}
}

// NewScalarSpec returns a 1-dimensional Spec whose only legal value is
// v, such as a constant discount
func NewScalarSpec(t SpecType, v float64) Spec {
	bound := mat.NewVecDense(1, []float64{v})
	return NewSpec(mat.NewVecDense(1, nil), t, bound, bound, Continuous)
}

// Contains returns whether v lies within the bounds of the Spec. For
// Discrete specs, each element of v must also be integral.
func (s Spec) Contains(v mat.Vector) bool {
	if v == nil || v.Len() != s.Shape.Len() {
		return false
	}
	for i := 0; i < v.Len(); i++ {
		x := v.AtVec(i)
		if x < s.LowerBound.AtVec(i) || x > s.UpperBound.AtVec(i) {
			return false
		}
		if s.Cardinality == Discrete && x != float64(int(x)) {
			return false
		}
	}
	return true
}
