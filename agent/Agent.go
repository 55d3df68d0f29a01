// Package agent defines the interfaces of learning algorithms
package agent

import (
	"encoding/gob"

	"github.com/samuelfneumann/onpolicy/timestep"
	"gonum.org/v1/gonum/mat"
)

// PolicyState is the recurrent state that a Policy carries between
// timesteps. Stateless policies use a nil PolicyState.
type PolicyState []float64

// Policy represents a policy that an agent can have.
//
// Policies determine how agents select actions. For a given agent,
// the Policy and Learner should have pointers to the same weights so
// that any changes the learner makes to the weights are reflected in
// the actions the Policy chooses.
type Policy interface {
	// InitialState returns the PolicyState to use at the start of a
	// run
	InitialState() PolicyState

	// Predict samples an action from the policy in the timestep's
	// observation
	Predict(t timestep.TimeStep, state PolicyState) (*mat.VecDense,
		PolicyState, error)

	// GreedyPredict selects the most probable action of the policy in
	// the timestep's observation
	GreedyPredict(t timestep.TimeStep, state PolicyState) (*mat.VecDense,
		PolicyState, error)
}

// Learner implements a learning algorithm that defines how weights are
// updated.
type Learner interface {
	// ObserveFirst records the first timestep in an episode
	ObserveFirst(timestep.TimeStep) error

	// Observe records that an action lead to some timestep
	Observe(action mat.Vector, nextObs timestep.TimeStep) error

	// Train performs a single update with the experience observed
	// since the last update
	Train() (Losses, error)

	// EndEpisode performs cleanup at the end of an episode
	EndEpisode()
}

// Algorithm is a learning agent that can be checkpointed.
//
// An Algorithm is composed of a Learner, which learns weights, and a
// Policy which chooses actions in each state. Its gob encoding holds
// every learned parameter.
type Algorithm interface {
	Policy
	Learner
	gob.GobEncoder
	gob.GobDecoder
}

// Compiler is an Algorithm whose computations can either be compiled
// ahead of time into a program or interpreted on each call
type Compiler interface {
	Algorithm
	SetCompiled(compiled bool) error
}

// A Closer is an Algorithm that must be closed after it is done
// learning
type Closer interface {
	Algorithm
	Close() error
}

// WeightNormer is an Algorithm that can report the L2 norm of each of
// its weight tensors
type WeightNormer interface {
	Algorithm
	WeightNorms() map[string]float64
}

// Losses holds the losses of a single update
type Losses struct {
	Policy  float64
	Value   float64
	Entropy float64
}
