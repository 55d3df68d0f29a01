// Package timestep implements timesteps of the agent-environment interaction
package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// StepType denotes the type of step that a TimeStep can be, either  first
// environmental step, a middle step, or a last step
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// EndType describes how an episode ended. Only TimeSteps with StepType
// Last have a meaningful EndType.
type EndType int

const (
	// Unended is the EndType of every TimeStep that did not end an
	// episode
	Unended EndType = iota

	// TerminalStateReached denotes that the episode reached a terminal
	// state, so no future rewards are possible
	TerminalStateReached

	// Timeout denotes that the episode was cut off by a step limit. The
	// state reached is not terminal.
	Timeout
)

func (e EndType) String() string {
	switch e {
	case TerminalStateReached:
		return "TerminalStateReached"
	case Timeout:
		return "Timeout"
	default:
		return "Unended"
	}
}

// TimeStep packages together a single timestep in an environment
type TimeStep struct {
	StepType
	Reward      float64
	Discount    float64
	Observation *mat.VecDense
	Number      int
	endType     EndType
}

// New constructs a new TimeStep
func New(t StepType, r, d float64, o *mat.VecDense, n int) TimeStep {
	return TimeStep{StepType: t, Reward: r, Discount: d, Observation: o,
		Number: n}
}

// First returns whether a TimeStep is the first in an environment
func (t TimeStep) First() bool {
	return t.StepType == First
}

// Mid returns whether a TimeStep is a middle step in an environment
func (t TimeStep) Mid() bool {
	return t.StepType == Mid
}

// Last returns whether a TimeStep is the last step in an environment
func (t TimeStep) Last() bool {
	return t.StepType == Last
}

// SetEnd sets the way in which the episode ended
func (t *TimeStep) SetEnd(e EndType) {
	t.endType = e
}

// EndType returns how the episode ended on this TimeStep
func (t TimeStep) EndType() EndType {
	return t.endType
}

// TerminalEnd returns whether the TimeStep ended the episode by
// reaching a terminal state
func (t TimeStep) TerminalEnd() bool {
	return t.Last() && t.endType == TerminalStateReached
}

// Clone returns a deep copy of the TimeStep
func (t TimeStep) Clone() TimeStep {
	clone := t
	if t.Observation != nil {
		clone.Observation = mat.VecDenseCopyOf(t.Observation)
	}
	return clone
}

func (t TimeStep) String() string {
	str := "TimeStep | Type: %v  |  Reward:  %.2f  |  Discount: %.2f  |  " +
		"Step Number:  %v"

	return fmt.Sprintf(str, t.StepType, t.Reward, t.Discount, t.Number)
}
