// Package cartpole implements the Cartpole classic control environment
package cartpole

import (
	"fmt"
	"math"

	env "github.com/samuelfneumann/onpolicy/environment"
	ts "github.com/samuelfneumann/onpolicy/timestep"
	"github.com/samuelfneumann/onpolicy/utils/floatutils"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

// Physical constants, in SI units
const (
	Gravity        float64 = 9.8
	CartMass       float64 = 1.0
	PoleMass       float64 = 0.1
	HalfPoleLength float64 = 0.5
	ForceMag       float64 = 10.0
	Dt             float64 = 0.02 // integration step
)

// Symmetric bounds on the state features
const (
	PositionBounds        float64 = 2.4
	SpeedBounds           float64 = math.MaxFloat64
	AngleBounds           float64 = math.Pi
	AngularVelocityBounds float64 = math.MaxFloat64
)

const (
	ActionDims        int = 1
	MinDiscreteAction int = 0
	MaxDiscreteAction int = 2

	ObservationDims int = 4
)

// Cartpole is a cart on a track with a pole hinged to its top. The
// observation is the cart position and speed followed by the pole
// angle from vertical and its angular velocity.
//
// Actions push the cart:
//
//	Action		Force
//	  0			left
//	  1			none
//	  2			right
//
// The cart stops dead at either end of the track, and the pole angle
// wraps around to stay in [-π, π]. Step panics on an illegal action.
type Cartpole struct {
	env.Task
	lastStep ts.TimeStep
	discount float64

	bounds [ObservationDims]r1.Interval
}

// New returns a Cartpole running Task t, along with its first step
func New(t env.Task, discount float64) (*Cartpole, ts.TimeStep, error) {
	c := &Cartpole{
		Task:     t,
		discount: discount,
		bounds: [ObservationDims]r1.Interval{
			floatutils.Symmetric(PositionBounds),
			floatutils.Symmetric(SpeedBounds),
			floatutils.Symmetric(AngleBounds),
			floatutils.Symmetric(AngularVelocityBounds),
		},
	}

	step, err := c.Reset()
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: %v", err)
	}
	return c, step, nil
}

// Reset starts a new episode from a state drawn from the Task
func (c *Cartpole) Reset() (ts.TimeStep, error) {
	state := c.Start()
	if err := c.validateState(state); err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: %v", err)
	}

	c.lastStep = ts.New(ts.First, 0, c.discount, state, 0)
	return c.lastStep, nil
}

// CurrentTimeStep returns the most recent step
func (c *Cartpole) CurrentTimeStep() ts.TimeStep {
	return c.lastStep
}

// ActionSpec returns the action specification of the environment
func (c *Cartpole) ActionSpec() env.Spec {
	return env.NewSpec(
		mat.NewVecDense(ActionDims, nil),
		env.Action,
		mat.NewVecDense(ActionDims, []float64{float64(MinDiscreteAction)}),
		mat.NewVecDense(ActionDims, []float64{float64(MaxDiscreteAction)}),
		env.Discrete,
	)
}

// ObservationSpec returns the observation specification of the
// environment
func (c *Cartpole) ObservationSpec() env.Spec {
	lower := mat.NewVecDense(ObservationDims, nil)
	upper := mat.NewVecDense(ObservationDims, nil)
	for i, b := range c.bounds {
		lower.SetVec(i, b.Min)
		upper.SetVec(i, b.Max)
	}
	return env.NewSpec(mat.NewVecDense(ObservationDims, nil),
		env.Observation, lower, upper, env.Continuous)
}

// DiscountSpec returns the discounting specification of the environment
func (c *Cartpole) DiscountSpec() env.Spec {
	return env.NewScalarSpec(env.Discount, c.discount)
}

// Step pushes the cart according to action a and advances the
// simulation by Dt. The returned bool reports whether the episode
// ended.
func (c *Cartpole) Step(a *mat.VecDense) (ts.TimeStep, bool, error) {
	if !c.ActionSpec().Contains(a) {
		panic(fmt.Sprintf("step: illegal action %v ∉ {0, 1, 2}",
			mat.Formatted(a.T())))
	}
	force := float64(int(a.AtVec(0))-1) * ForceMag

	next := c.integrate(c.lastStep.Observation, force)
	reward := c.GetReward(c.lastStep.Observation, a, next)
	step := ts.New(ts.Mid, reward, c.discount, next, c.lastStep.Number+1)
	last := c.End(&step)

	c.lastStep = step
	return step, last, nil
}

// integrate returns the state reached from state after applying force
// for one Euler step of length Dt
func (c *Cartpole) integrate(state mat.Vector, force float64) *mat.VecDense {
	x, xDot := state.AtVec(0), state.AtVec(1)
	th, thDot := state.AtVec(2), state.AtVec(3)

	sin, cos := math.Sincos(th)
	totalMass := PoleMass + CartMass
	poleMoment := PoleMass * HalfPoleLength

	temp := (force + poleMoment*thDot*thDot*sin) / totalMass
	thAcc := (Gravity*sin - cos*temp) /
		(HalfPoleLength * (4.0/3.0 - PoleMass*cos*cos/totalMass))
	xAcc := temp - poleMoment*thAcc*cos/totalMass

	x += Dt * xDot
	xDot += Dt * xAcc
	th += Dt * thDot
	thDot += Dt * thAcc

	track := c.bounds[0]
	if x <= track.Min || x >= track.Max {
		xDot = 0
	}
	x = floatutils.ClipInterval(x, track)
	th = wrapAngle(th)

	return mat.NewVecDense(ObservationDims, []float64{x, xDot, th, thDot})
}

var featureNames = [ObservationDims]string{"position", "speed", "angle",
	"angular velocity"}

func (c *Cartpole) validateState(obs mat.Vector) error {
	if obs.Len() != ObservationDims {
		return fmt.Errorf("validateState: illegal state length "+
			"\n\twant(%v)\n\thave(%v)", ObservationDims, obs.Len())
	}
	for i, b := range c.bounds {
		if !floatutils.In(obs.AtVec(i), b) {
			return fmt.Errorf("validateState: %v %v outside %v",
				featureNames[i], obs.AtVec(i), b)
		}
	}
	return nil
}

func (c *Cartpole) String() string {
	s := c.lastStep.Observation
	return fmt.Sprintf("Cartpole | Position: %.3f | Speed: %.3f | "+
		"Angle: %.3f | Angular Velocity: %.3f", s.AtVec(0), s.AtVec(1),
		s.AtVec(2), s.AtVec(3))
}

// wrapAngle maps th into [-π, π]
func wrapAngle(th float64) float64 {
	if th >= -math.Pi && th <= math.Pi {
		return th
	}
	return th - 2*math.Pi*math.Floor((th+math.Pi)/(2*math.Pi))
}
