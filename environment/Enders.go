package environment

import (
	"fmt"

	"github.com/samuelfneumann/onpolicy/timestep"
	"github.com/samuelfneumann/onpolicy/utils/floatutils"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

// endAs marks t as the last step of its episode
func endAs(t *timestep.TimeStep, endType timestep.EndType) bool {
	t.StepType = timestep.Last
	t.SetEnd(endType)
	return true
}

// StepLimit ends episodes as a timeout once a step limit is reached
type StepLimit struct {
	episodeSteps int
}

// NewStepLimit returns a StepLimit which ends episodes at step
// episodeSteps
func NewStepLimit(episodeSteps int) *StepLimit {
	return &StepLimit{episodeSteps}
}

// End implements the Ender interface
func (s *StepLimit) End(t *timestep.TimeStep) bool {
	if t.Number < s.episodeSteps {
		return false
	}
	return endAs(t, timestep.Timeout)
}

// IntervalLimit ends episodes whenever one of a set of observation
// features leaves its legal interval
type IntervalLimit struct {
	intervals []r1.Interval
	indices   []int
	endType   timestep.EndType
}

// NewIntervalLimit returns an IntervalLimit which ends the episode with
// endType when observation feature indices[i] leaves limits[i]
func NewIntervalLimit(limits []r1.Interval, indices []int,
	endType timestep.EndType) (*IntervalLimit, error) {
	if len(limits) != len(indices) {
		return nil, fmt.Errorf("newIntervalLimit: %d limits for %d indices",
			len(limits), len(indices))
	}
	for i, l := range limits {
		if l.Min > l.Max {
			return nil, fmt.Errorf("newIntervalLimit: limit %d has min %v > "+
				"max %v", i, l.Min, l.Max)
		}
	}
	return &IntervalLimit{limits, indices, endType}, nil
}

// End implements the Ender interface
func (i *IntervalLimit) End(t *timestep.TimeStep) bool {
	for j, feature := range i.indices {
		if !floatutils.In(t.Observation.AtVec(feature), i.intervals[j]) {
			return endAs(t, i.endType)
		}
	}
	return false
}

// FunctionEnder ends episodes whenever a predicate on the observation
// holds
type FunctionEnder struct {
	end     func(*mat.VecDense) bool
	endType timestep.EndType
}

// NewFunctionEnder returns a FunctionEnder which ends episodes with
// endType when f returns true
func NewFunctionEnder(f func(*mat.VecDense) bool,
	endType timestep.EndType) *FunctionEnder {
	return &FunctionEnder{f, endType}
}

// End implements the Ender interface
func (f *FunctionEnder) End(t *timestep.TimeStep) bool {
	if !f.end(t.Observation) {
		return false
	}
	return endAs(t, f.endType)
}

// Enders chains Enders, ending the episode with the first that fires
type Enders []Ender

// End implements the Ender interface
func (e Enders) End(t *timestep.TimeStep) bool {
	for _, ender := range e {
		if ender.End(t) {
			return true
		}
	}
	return false
}
