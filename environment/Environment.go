// Package environment outlines the interfaces and structs needed to
// implement concrete environments
package environment

import (
	"fmt"
	"image"

	"github.com/samuelfneumann/onpolicy/timestep"
	"gonum.org/v1/gonum/mat"
)

// Starter implements a distribution of starting states and samples
// starting states for environments
type Starter interface {
	Start() *mat.VecDense
}

// Ender determines when an episode should end. End adjusts the
// argument TimeStep's StepType (and EndType) if it ends the episode.
type Ender interface {
	End(*timestep.TimeStep) bool
}

// Task implements the reward scheme and episode termination for taking
// actions in some environment
type Task interface {
	Starter
	Ender
	GetReward(state, action, nextState mat.Vector) float64
	AtGoal(state mat.Matrix) bool
	Min() float64 // Minimum attainable reward
	Max() float64 // Maximum attainable reward
}

// Environment implements a simualted environment, which includes a Task
// to complete
type Environment interface {
	Reset() (timestep.TimeStep, error)
	Step(action *mat.VecDense) (timestep.TimeStep, bool, error)
	CurrentTimeStep() timestep.TimeStep
	ObservationSpec() Spec
	ActionSpec() Spec
	DiscountSpec() Spec
}

// Renderer is an Environment that can draw its current state
type Renderer interface {
	Environment
	Render() (image.Image, error)
}

// Closer is an Environment that holds resources which must be released
// once it is no longer needed
type Closer interface {
	Environment
	Close() error
}

// NumActions returns the number of actions in an environment with
// 1-dimensional discrete actions. An error is returned if the
// environment's actions are continuous or multi-dimensional.
func NumActions(e Environment) (int, error) {
	spec := e.ActionSpec()
	if spec.Cardinality != Discrete {
		return 0, fmt.Errorf("numActions: actions are not discrete")
	}
	if spec.Shape.Len() != 1 {
		return 0, fmt.Errorf("numActions: actions must be 1-dimensional, "+
			"have %d dimensions", spec.Shape.Len())
	}
	return int(spec.UpperBound.AtVec(0)-spec.LowerBound.AtVec(0)) + 1, nil
}

// DiscountOf returns the constant discount factor of an environment
func DiscountOf(e Environment) float64 {
	return e.DiscountSpec().LowerBound.AtVec(0)
}
