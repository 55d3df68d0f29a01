package experiment

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/samuelfneumann/onpolicy/agent"
	env "github.com/samuelfneumann/onpolicy/environment"
	"github.com/samuelfneumann/onpolicy/environment/envconfig"
)

// RunConfig is the configuration of an entire run: the environment,
// the algorithm, and the experiment
type RunConfig struct {
	Environment envconfig.Config
	Agent       agent.TypedConfig

	// Evaluate creates a separate evaluation environment when training
	Evaluate bool

	Experiment Config
}

// LoadRunConfig reads a RunConfig from the JSON file at path. Fields
// of the experiment configuration missing from the file keep their
// default values.
func LoadRunConfig(path string) (RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RunConfig{}, fmt.Errorf("loadRunConfig: %v", err)
	}

	r := RunConfig{Experiment: DefaultConfig()}
	if err := json.Unmarshal(data, &r); err != nil {
		return RunConfig{}, fmt.Errorf("loadRunConfig: could not decode %v: "+
			"%v", path, err)
	}
	if err := r.Validate(); err != nil {
		return RunConfig{}, fmt.Errorf("loadRunConfig: %v", err)
	}
	return r, nil
}

// Validate returns an error if any part of the configuration is
// invalid
func (r RunConfig) Validate() error {
	if err := r.Environment.Validate(); err != nil {
		return fmt.Errorf("validate: %v", err)
	}
	if r.Agent.Config == nil {
		return fmt.Errorf("validate: no agent configuration, want one of %v",
			agent.RegisteredTypes())
	}
	if err := r.Agent.Config.Validate(); err != nil {
		return fmt.Errorf("validate: %v", err)
	}
	if err := r.Experiment.Validate(); err != nil {
		return fmt.Errorf("validate: %v", err)
	}
	return nil
}

// Create creates the environment and algorithm of the run, seeded with
// the experiment's random seed. If the run evaluates, an evaluation
// environment with a different seed is also returned, otherwise the
// evaluation environment is nil.
func (r RunConfig) Create() (env.Environment, env.Environment,
	agent.Algorithm, error) {
	seed := r.Experiment.RandomSeed
	e, _, err := r.Environment.Create(seed)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create: %v", err)
	}

	var evalEnv env.Environment
	if r.Evaluate {
		if evalEnv, _, err = r.Environment.Create(seed + 1); err != nil {
			return nil, nil, nil, fmt.Errorf("create: could not create "+
				"evaluation environment: %v", err)
		}
	}

	alg, err := r.Agent.CreateAgent(e, seed)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create: could not create agent: %v",
			err)
	}
	if !r.Agent.ValidAgent(alg) {
		return nil, nil, nil, fmt.Errorf("create: invalid agent type %T for "+
			"configuration %v", alg, r.Agent.Type)
	}
	return e, evalEnv, alg, nil
}
