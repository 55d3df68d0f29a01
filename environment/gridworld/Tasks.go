package gridworld

import (
	"fmt"

	"github.com/samuelfneumann/onpolicy/environment"
	"github.com/samuelfneumann/onpolicy/timestep"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Goal represents the task of reaching goal states in a GridWorld.
// Each step yields timeStepReward, and stepping onto a goal yields
// goalReward and terminates the episode.
type Goal struct {
	environment.Starter
	goals          map[int]bool // indices of goal cells
	c              int
	timeStepReward float64
	goalReward     float64

	ender environment.Enders
}

// NewGoal creates and returns a new goal task with goals at positions
// (x[i], y[i]) in a gridworld with r rows and c columns. Episodes are
// cut off after cutoff steps.
func NewGoal(s environment.Starter, x, y []int, r, c, cutoff int, tr,
	gr float64) (*Goal, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("newGoal: x length (%d) != y length (%d)",
			len(x), len(y))
	}

	goals := make(map[int]bool)
	for i := range x {
		if x[i] < 0 || x[i] >= c {
			return nil, fmt.Errorf("newGoal: x[%d] = %d outside [0, %d)", i,
				x[i], c)
		} else if y[i] < 0 || y[i] >= r {
			return nil, fmt.Errorf("newGoal: y[%d] = %d outside [0, %d)", i,
				y[i], r)
		}
		goals[cToInd(x[i], y[i], c)] = true
	}

	g := &Goal{
		Starter:        s,
		goals:          goals,
		c:              c,
		timeStepReward: tr,
		goalReward:     gr,
	}
	g.ender = environment.Enders{
		environment.NewFunctionEnder(
			func(v *mat.VecDense) bool { return g.AtGoal(v) },
			timestep.TerminalStateReached,
		),
		environment.NewStepLimit(cutoff),
	}
	return g, nil
}

// GetReward returns the reward for transitioning to nextState
func (g *Goal) GetReward(_, _, nextState mat.Vector) float64 {
	if g.AtGoal(nextState) {
		return g.goalReward
	}
	return g.timeStepReward
}

// End ends the episode at a goal state or at the step limit
func (g *Goal) End(t *timestep.TimeStep) bool {
	return g.ender.End(t)
}

// AtGoal returns whether the one-hot state is at a goal cell
func (g *Goal) AtGoal(state mat.Matrix) bool {
	v, ok := state.(mat.Vector)
	if !ok {
		return false
	}
	x, y := vToC(v, g.c)
	if x < 0 {
		return false
	}
	return g.goals[cToInd(x, y, g.c)]
}

// Min returns the minimum reward attainable in the Task
func (g *Goal) Min() float64 {
	return floats.Min([]float64{g.timeStepReward, g.goalReward})
}

// Max returns the maximum reward attainable in the Task
func (g *Goal) Max() float64 {
	return floats.Max([]float64{g.timeStepReward, g.goalReward})
}
