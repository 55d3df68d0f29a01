package actorcritic

import (
	"fmt"

	"github.com/samuelfneumann/onpolicy/agent"
	"github.com/samuelfneumann/onpolicy/environment"
	"github.com/samuelfneumann/onpolicy/initwfn"
	"github.com/samuelfneumann/onpolicy/network"
	"github.com/samuelfneumann/onpolicy/solver"
)

func init() {
	// Register Config type so that it can be typed using
	// agent.TypedConfig to help with serialization/deserialization.
	agent.Register(agent.CategoricalActorCriticLinear, Config{})
}

// Config represents a configuration for a softmax Actor Critic agent
type Config struct {
	// Actor
	ActorLearningRate float64
	EntropyScale      float64

	// GAE(λ)
	Lambda float64

	// Number of transitions collected per update
	BatchSize int

	// State value function neural net
	ValueFnHiddenSizes []int
	ValueFnBiases      []bool
	ValueFnActivations []*network.Activation
	InitWFn            *initwfn.InitWFn
	VSolver            *solver.Solver

	// Number of gradient steps to take for the value function per
	// update
	ValueGradSteps int
}

// DefaultConfig returns a Config with a small tanh critic trained by
// Adam, updating every batchSize transitions
func DefaultConfig(batchSize int) Config {
	vSolver, err := solver.NewDefaultAdam(0.005, 1)
	if err != nil {
		panic(fmt.Sprintf("defaultConfig: %v", err))
	}

	return Config{
		ActorLearningRate:  0.01,
		EntropyScale:       0.01,
		Lambda:             0.95,
		BatchSize:          batchSize,
		ValueFnHiddenSizes: []int{32},
		ValueFnBiases:      []bool{true},
		ValueFnActivations: []*network.Activation{network.TanH()},
		InitWFn:            initwfn.NewGlorotU(1.0, 0),
		VSolver:            vSolver,
		ValueGradSteps:     5,
	}
}

// CreateAgent creates the agent from the Config. Actor weights are
// always initialized to zero, and critic weights are drawn from the
// InitWFn reseeded with seed.
func (c Config) CreateAgent(env environment.Environment,
	seed uint64) (agent.Algorithm, error) {
	a, err := New(env, c, seed)
	if err != nil {
		return nil, fmt.Errorf("createAgent: %v", err)
	}
	return a, nil
}

// ValidAgent returns whether the argument agent is a valid agent for
// construction with the Config
func (c Config) ValidAgent(a agent.Algorithm) bool {
	_, ok := a.(*ActorCritic)
	return ok
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.ActorLearningRate <= 0 {
		return fmt.Errorf("validate: actor learning rate must be positive")
	}
	if c.EntropyScale < 0 {
		return fmt.Errorf("validate: entropy scale must be non-negative")
	}
	if c.Lambda < 0 || c.Lambda > 1 {
		return fmt.Errorf("validate: λ = %v ∉ [0, 1]", c.Lambda)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("validate: batch size must be positive")
	}
	if c.ValueGradSteps <= 0 {
		return fmt.Errorf("validate: value gradient steps must be positive")
	}

	if len(c.ValueFnHiddenSizes) != len(c.ValueFnBiases) {
		return fmt.Errorf("validate: number of value function biases "+
			"\n\twant(%d)\n\thave(%d)", len(c.ValueFnHiddenSizes),
			len(c.ValueFnBiases))
	}
	if len(c.ValueFnHiddenSizes) != len(c.ValueFnActivations) {
		return fmt.Errorf("validate: number of value function activations "+
			"\n\twant(%d)\n\thave(%d)", len(c.ValueFnHiddenSizes),
			len(c.ValueFnActivations))
	}

	if c.InitWFn == nil {
		return fmt.Errorf("validate: no weight initializer")
	}
	if c.VSolver == nil || c.VSolver.Config == nil {
		return fmt.Errorf("validate: no value function solver")
	}
	if err := c.VSolver.Config.Validate(); err != nil {
		return fmt.Errorf("validate: value function solver: %v", err)
	}
	return nil
}

// Type returns the type of the agent constructed by the Config
func (c Config) Type() agent.Type {
	return agent.CategoricalActorCriticLinear
}
