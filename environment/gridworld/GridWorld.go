// Package gridworld implements 2D gridworld environments
package gridworld

import (
	"fmt"

	"github.com/samuelfneumann/onpolicy/environment"
	"github.com/samuelfneumann/onpolicy/timestep"
	"gonum.org/v1/gonum/mat"
)

// Actions in the GridWorld
const (
	Left int = iota
	Right
	Up
	Down

	NumActions int = 4
)

// GridWorld represents a gridworld environment.
//
// Observations are one-hot vectors of length rows*cols with a single
// 1.0 at the agent's position; position (x, y) is at index y*cols + x.
// Moving into a wall leaves the agent where it is.
type GridWorld struct {
	environment.Task
	r, c        int
	position    int
	discount    float64
	currentStep timestep.TimeStep
}

// New creates a new gridworld with r rows, c columns, task t, and
// discount factor d. Starting positions are sampled from the Task's
// Starter.
func New(r, c int, t environment.Task, d float64) (*GridWorld,
	timestep.TimeStep, error) {
	if r <= 0 || c <= 0 {
		return nil, timestep.TimeStep{}, fmt.Errorf("new: illegal grid "+
			"size (%d, %d)", r, c)
	}

	g := &GridWorld{Task: t, r: r, c: c, discount: d}
	step, err := g.Reset()
	if err != nil {
		return nil, timestep.TimeStep{}, fmt.Errorf("new: %v", err)
	}
	return g, step, nil
}

// Dims gets the rows and columns of the GridWorld
func (g *GridWorld) Dims() (r, c int) {
	return g.r, g.c
}

// Reset resets the environment to a starting position
func (g *GridWorld) Reset() (timestep.TimeStep, error) {
	start := g.Start()
	if start.Len() != g.r*g.c {
		return timestep.TimeStep{}, fmt.Errorf("reset: illegal starting "+
			"state length \n\twant(%v)\n\thave(%v)", g.r*g.c, start.Len())
	}

	x, y := vToC(start, g.c)
	if x < 0 {
		return timestep.TimeStep{}, fmt.Errorf("reset: starting state " +
			"is not one-hot")
	}
	g.position = cToInd(x, y, g.c)

	startStep := timestep.New(timestep.First, 0, g.discount,
		g.observation(), 0)
	g.currentStep = startStep
	return startStep, nil
}

// CurrentTimeStep returns the last TimeStep generated by the
// environment
func (g *GridWorld) CurrentTimeStep() timestep.TimeStep {
	return g.currentStep
}

// Step takes one environmental step given action a
func (g *GridWorld) Step(a *mat.VecDense) (timestep.TimeStep, bool, error) {
	if !g.ActionSpec().Contains(a) {
		panic(fmt.Sprintf("step: illegal action %v ∉ {0, 1, 2, 3}",
			mat.Formatted(a.T())))
	}
	action := int(a.AtVec(0))

	x, y := g.Coordinates()
	switch action {
	case Left:
		if x > 0 {
			x--
		}
	case Right:
		if x < g.c-1 {
			x++
		}
	case Up:
		if y < g.r-1 {
			y++
		}
	case Down:
		if y > 0 {
			y--
		}
	}

	prev := g.currentStep.Observation
	g.position = cToInd(x, y, g.c)
	obs := g.observation()

	reward := g.GetReward(prev, a, obs)
	step := timestep.New(timestep.Mid, reward, g.discount, obs,
		g.currentStep.Number+1)
	last := g.End(&step)

	g.currentStep = step
	return step, last, nil
}

// Coordinates returns the (x, y) coordinates of the agent
func (g *GridWorld) Coordinates() (int, int) {
	y := g.position / g.c
	x := g.position - (y * g.c)
	return x, y
}

// ObservationSpec returns the observation specification of the
// environment
func (g *GridWorld) ObservationSpec() environment.Spec {
	features := g.r * g.c
	shape := mat.NewVecDense(features, nil)
	lower := mat.NewVecDense(features, nil)
	upper := mat.NewVecDense(features, nil)
	for i := 0; i < features; i++ {
		upper.SetVec(i, 1.0)
	}

	return environment.NewSpec(shape, environment.Observation, lower, upper,
		environment.Discrete)
}

// ActionSpec returns the action specification of the environment
func (g *GridWorld) ActionSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	lower := mat.NewVecDense(1, []float64{0})
	upper := mat.NewVecDense(1, []float64{float64(NumActions - 1)})

	return environment.NewSpec(shape, environment.Action, lower, upper,
		environment.Discrete)
}

// DiscountSpec returns the discounting specification of the environment
func (g *GridWorld) DiscountSpec() environment.Spec {
	return environment.NewScalarSpec(environment.Discount, g.discount)
}

func (g *GridWorld) String() string {
	x, y := g.Coordinates()
	return fmt.Sprintf("GridWorld | At: (%d, %d)  |  Bounds: (%d, %d)",
		x, y, g.r, g.c)
}

func (g *GridWorld) observation() *mat.VecDense {
	obs := mat.NewVecDense(g.r*g.c, nil)
	obs.SetVec(g.position, 1.0)
	return obs
}

// cToV converts coordinates (x, y) to a one-hot vector
func cToV(x, y, r, c int) *mat.VecDense {
	vec := mat.NewVecDense(r*c, nil)
	vec.SetVec(cToInd(x, y, c), 1.0)
	return vec
}

// vToC converts a one-hot vector into (x, y) coordinates. If the
// vector has no non-zero element, (-1, -1) is returned.
func vToC(v mat.Vector, c int) (int, int) {
	for i := 0; i < v.Len(); i++ {
		if v.AtVec(i) != 0.0 {
			y := i / c
			x := i - (y * c)
			return x, y
		}
	}
	return -1, -1
}

func cToInd(x, y, c int) int {
	return y*c + x
}
