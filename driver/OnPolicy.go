// Package driver implements drivers, which advance the interaction
// between an algorithm and an environment
package driver

import (
	"fmt"
	"sort"

	"github.com/samuelfneumann/onpolicy/agent"
	env "github.com/samuelfneumann/onpolicy/environment"
	"github.com/samuelfneumann/onpolicy/metric"
	"github.com/samuelfneumann/onpolicy/summary"
	ts "github.com/samuelfneumann/onpolicy/timestep"
	"gonum.org/v1/gonum/mat"
)

// Config configures an OnPolicyDriver
type Config struct {
	// TrainInterval is the number of environment transitions collected
	// between calls to the algorithm's Train method
	TrainInterval int

	// Training drivers feed transitions to the algorithm and train it.
	// Otherwise the algorithm only selects actions.
	Training bool

	// Greedy drivers select actions with GreedyPredict rather than
	// Predict
	Greedy bool

	// Counter is incremented once after each call to Train. A new
	// Counter is used if nil.
	Counter *Counter

	// Metrics track every TimeStep the environment produces
	Metrics []metric.Metric

	// Summary receives metric summaries after each update for which
	// it should record. No summaries are written if nil.
	Summary *summary.RecordContext

	// DebugSummaries adds summaries of the losses of each update
	DebugSummaries bool

	// SummarizeGradsAndVars adds summaries of the norm of each weight
	// tensor of the algorithm, if it can report them
	SummarizeGradsAndVars bool

	// Mode is the execution mode applied to the algorithm by New
	Mode ExecutionMode
}

// OnPolicyDriver advances the interaction between an on-policy
// algorithm and an environment. When training, the algorithm is
// trained on the transitions collected every TrainInterval steps.
//
// Episodes are reset lazily: Run returns a Last TimeStep as is, and
// the environment is reset on the following step taken by Run.
type OnPolicyDriver struct {
	env env.Environment
	alg agent.Algorithm

	trainInterval         int
	training              bool
	greedy                bool
	counter               *Counter
	metrics               []metric.Metric
	summary               *summary.RecordContext
	debugSummaries        bool
	summarizeGradsAndVars bool
	mode                  ExecutionMode

	// Transitions collected since the last update
	collected int
}

// New returns a new OnPolicyDriver
func New(e env.Environment, alg agent.Algorithm,
	c Config) (*OnPolicyDriver, error) {
	if e == nil || alg == nil {
		return nil, fmt.Errorf("new: environment and algorithm must not " +
			"be nil")
	}
	if c.Training && c.TrainInterval <= 0 {
		return nil, fmt.Errorf("new: train interval must be positive, "+
			"have %d", c.TrainInterval)
	}
	if err := c.Mode.Apply(alg); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	counter := c.Counter
	if counter == nil {
		counter = NewCounter()
	}

	return &OnPolicyDriver{
		env:                   e,
		alg:                   alg,
		trainInterval:         c.TrainInterval,
		training:              c.Training,
		greedy:                c.Greedy,
		counter:               counter,
		metrics:               c.Metrics,
		summary:               c.Summary,
		debugSummaries:        c.DebugSummaries,
		summarizeGradsAndVars: c.SummarizeGradsAndVars,
		mode:                  c.Mode,
	}, nil
}

// GetInitialTimeStep resets the environment and returns its first
// TimeStep
func (o *OnPolicyDriver) GetInitialTimeStep() (ts.TimeStep, error) {
	t, err := o.reset()
	if err != nil {
		return ts.TimeStep{}, fmt.Errorf("getInitialTimeStep: %v", err)
	}
	return t, nil
}

// GetInitialState returns the initial policy state of the algorithm
func (o *OnPolicyDriver) GetInitialState() agent.PolicyState {
	return o.alg.InitialState()
}

// Metrics returns the metrics tracked by the driver
func (o *OnPolicyDriver) Metrics() []metric.Metric {
	return o.metrics
}

// Counter returns the counter of training updates
func (o *OnPolicyDriver) Counter() *Counter {
	return o.counter
}

// Mode returns the execution mode of the algorithm
func (o *OnPolicyDriver) Mode() ExecutionMode {
	return o.mode
}

// Run takes at most maxNumSteps steps in the environment starting from
// TimeStep t with policy state state, and returns the last TimeStep
// reached and the policy state at that TimeStep. Resetting the
// environment after an episode ends counts as a step.
func (o *OnPolicyDriver) Run(maxNumSteps int, t ts.TimeStep,
	state agent.PolicyState) (ts.TimeStep, agent.PolicyState, error) {
	var err error
	for i := 0; i < maxNumSteps; i++ {
		if t.Last() {
			if t, err = o.reset(); err != nil {
				return t, state, fmt.Errorf("run: %v", err)
			}
			state = o.alg.InitialState()
			continue
		}

		if t, state, err = o.step(t, state); err != nil {
			return t, state, fmt.Errorf("run: %v", err)
		}
	}
	return t, state, nil
}

// reset resets the environment, starting a new episode
func (o *OnPolicyDriver) reset() (ts.TimeStep, error) {
	t, err := o.env.Reset()
	if err != nil {
		return t, fmt.Errorf("could not reset environment: %v", err)
	}
	o.track(t)

	if o.training {
		if err := o.alg.ObserveFirst(t); err != nil {
			return t, fmt.Errorf("could not observe first timestep: %v", err)
		}
	}
	return t, nil
}

// step takes a single environment step from t, training the algorithm
// if enough transitions have been collected
func (o *OnPolicyDriver) step(t ts.TimeStep,
	state agent.PolicyState) (ts.TimeStep, agent.PolicyState, error) {
	var action *mat.VecDense
	var err error
	if o.greedy {
		action, state, err = o.alg.GreedyPredict(t, state)
	} else {
		action, state, err = o.alg.Predict(t, state)
	}
	if err != nil {
		return t, state, fmt.Errorf("could not select action: %v", err)
	}

	next, _, err := o.env.Step(action)
	if err != nil {
		return t, state, fmt.Errorf("could not step environment: %v", err)
	}
	o.track(next)

	if !o.training {
		return next, state, nil
	}

	if err := o.alg.Observe(action, next); err != nil {
		return next, state, fmt.Errorf("could not observe: %v", err)
	}
	if next.Last() {
		o.alg.EndEpisode()
	}

	o.collected++
	if o.collected >= o.trainInterval {
		o.collected = 0
		if err := o.train(); err != nil {
			return next, state, err
		}
	}
	return next, state, nil
}

// train trains the algorithm, increments the counter, and writes the
// summaries of the update
func (o *OnPolicyDriver) train() error {
	losses, err := o.alg.Train()
	if err != nil {
		return fmt.Errorf("could not train: %v", err)
	}
	step := o.counter.Increment()

	if !o.summary.ShouldRecord(step) {
		return nil
	}
	if err := o.writeSummaries(losses, step); err != nil {
		return fmt.Errorf("could not write summaries: %v", err)
	}
	return nil
}

func (o *OnPolicyDriver) writeSummaries(losses agent.Losses,
	step int64) error {
	for _, m := range o.metrics {
		if err := o.summary.Scalar("Metrics/"+m.Name(), m.Result(),
			step); err != nil {
			return err
		}
	}

	if o.debugSummaries {
		scalars := []struct {
			tag   string
			value float64
		}{
			{"Losses/policy", losses.Policy},
			{"Losses/value", losses.Value},
			{"Losses/entropy", losses.Entropy},
		}
		for _, s := range scalars {
			if err := o.summary.Scalar(s.tag, s.value, step); err != nil {
				return err
			}
		}
	}

	if normer, ok := o.alg.(agent.WeightNormer); ok &&
		o.summarizeGradsAndVars {
		norms := normer.WeightNorms()
		names := make([]string, 0, len(norms))
		for name := range norms {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			err := o.summary.Scalar("WeightNorms/"+name, norms[name], step)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (o *OnPolicyDriver) track(t ts.TimeStep) {
	for _, m := range o.metrics {
		m.Track(t)
	}
}
