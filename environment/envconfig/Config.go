// Package envconfig provides configuration structs for configuring
// environments with default physical parameters and tasks. Environment
// configurations in this package are JSON serializable.
package envconfig

import (
	"fmt"

	env "github.com/samuelfneumann/onpolicy/environment"
	"github.com/samuelfneumann/onpolicy/environment/classiccontrol/cartpole"
	"github.com/samuelfneumann/onpolicy/environment/gridworld"
	ts "github.com/samuelfneumann/onpolicy/timestep"
	"gonum.org/v1/gonum/spatial/r1"
)

// EnvName stores the name of environments that can be configured with
// this package
type EnvName string

// Environments available for configuration
const (
	Cartpole  EnvName = "Cartpole"
	Gridworld EnvName = "Gridworld"
)

// TaskName stores the tasks that can be configured with this package.
// Not all tasks can be used with all environments:
//
//	Environment			Task
//	Cartpole			Balance
//	Gridworld			Goal
type TaskName string

// Tasks available for configuration
const (
	Goal    TaskName = "Goal"
	Balance TaskName = "Balance"
)

// Config implements a specific configuration of a specific environment
// and specific task. Rows and Cols are only used by the Gridworld.
type Config struct {
	Environment   EnvName
	Task          TaskName
	EpisodeCutoff uint
	Discount      float64
	Rows          int `json:",omitempty"`
	Cols          int `json:",omitempty"`
}

// NewConfig returns a new environment Config
func NewConfig(envName EnvName, taskName TaskName, episodeCutoff uint,
	discount float64) Config {
	return Config{
		Environment:   envName,
		Task:          taskName,
		EpisodeCutoff: episodeCutoff,
		Discount:      discount,
	}
}

// Validate checks that the Config describes an environment that can
// be created
func (c Config) Validate() error {
	if c.EpisodeCutoff == 0 {
		return fmt.Errorf("validate: episode cutoff must be positive")
	}
	if c.Discount < 0 || c.Discount > 1 {
		return fmt.Errorf("validate: discount %v ∉ [0, 1]", c.Discount)
	}

	switch c.Environment {
	case Cartpole:
		if c.Task != Balance {
			return fmt.Errorf("validate: Cartpole has no task %v", c.Task)
		}

	case Gridworld:
		if c.Task != Goal {
			return fmt.Errorf("validate: Gridworld has no task %v", c.Task)
		}
		if c.Rows <= 0 || c.Cols <= 0 {
			return fmt.Errorf("validate: illegal Gridworld size (%d, %d)",
				c.Rows, c.Cols)
		}

	default:
		return fmt.Errorf("validate: no such environment %v", c.Environment)
	}
	return nil
}

// Create returns the environment described by the Config as well as
// the first timestep of the environment.
func (c Config) Create(seed uint64) (env.Environment, ts.TimeStep, error) {
	if err := c.Validate(); err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("create: %v", err)
	}

	switch c.Environment {
	case Cartpole:
		return CreateCartpole(int(c.EpisodeCutoff), seed, c.Discount)

	default:
		return CreateGridworld(c.Rows, c.Cols, int(c.EpisodeCutoff), seed,
			c.Discount)
	}
}

// CreateCartpole is a factory for creating the Cartpole environment
// with default physical parameters and default task parameters.
func CreateCartpole(cutoff int, seed uint64,
	discount float64) (env.Environment, ts.TimeStep, error) {
	bounds := r1.Interval{Min: -0.05, Max: 0.05}
	s := env.NewUniformStarter([]r1.Interval{
		bounds,
		bounds,
		bounds,
		bounds,
	}, seed)

	task, err := cartpole.NewBalance(s, cutoff, cartpole.FailAngle)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("createCartpole: %v", err)
	}
	e, step, err := cartpole.New(task, discount)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("createCartpole: %v", err)
	}
	return e, step, nil
}

// CreateGridworld is a factory for creating a Gridworld with uniform
// random starting positions and a single goal in the top right corner.
// Each step yields a reward of -1, and reaching the goal yields 0.
func CreateGridworld(rows, cols, cutoff int, seed uint64,
	discount float64) (env.Environment, ts.TimeStep, error) {
	s, err := gridworld.NewUniformStart(rows, cols, seed)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("createGridworld: %v", err)
	}

	task, err := gridworld.NewGoal(s, []int{cols - 1}, []int{rows - 1},
		rows, cols, cutoff, -1, 0)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("createGridworld: %v", err)
	}

	e, step, err := gridworld.New(rows, cols, task, discount)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("createGridworld: %v", err)
	}
	return e, step, nil
}
