// Package stub implements deterministic environments and algorithms
// for testing drivers and experiments
package stub

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"image"
	"image/color"

	"github.com/samuelfneumann/onpolicy/agent"
	env "github.com/samuelfneumann/onpolicy/environment"
	ts "github.com/samuelfneumann/onpolicy/timestep"
	"gonum.org/v1/gonum/mat"
)

// Env is an environment whose episodes last exactly EpisodeLength
// steps. Each step has a reward of Reward and the observation is the
// number of the timestep.
type Env struct {
	EpisodeLength int
	Reward        float64

	Resets  int
	Steps   int
	Renders int

	current ts.TimeStep
}

// NewEnv returns a new Env
func NewEnv(episodeLength int, reward float64) *Env {
	return &Env{EpisodeLength: episodeLength, Reward: reward}
}

// Reset starts a new episode
func (e *Env) Reset() (ts.TimeStep, error) {
	e.Resets++
	e.current = ts.New(ts.First, 0, 1, mat.NewVecDense(1, []float64{0}), 0)
	return e.current, nil
}

// Step takes a step in the environment. The action is ignored.
func (e *Env) Step(action *mat.VecDense) (ts.TimeStep, bool, error) {
	if e.current.Last() {
		return e.current, true, fmt.Errorf("step: episode has ended")
	}
	e.Steps++

	n := e.current.Number + 1
	stepType := ts.Mid
	if n >= e.EpisodeLength {
		stepType = ts.Last
	}
	e.current = ts.New(stepType, e.Reward, 1,
		mat.NewVecDense(1, []float64{float64(n)}), n)
	if stepType == ts.Last {
		e.current.SetEnd(ts.TerminalStateReached)
	}
	return e.current, e.current.Last(), nil
}

// CurrentTimeStep returns the last TimeStep produced
func (e *Env) CurrentTimeStep() ts.TimeStep { return e.current }

// ObservationSpec returns the observation specification
func (e *Env) ObservationSpec() env.Spec {
	return env.NewSpec(mat.NewVecDense(1, nil), env.Observation,
		mat.NewVecDense(1, []float64{0}),
		mat.NewVecDense(1, []float64{float64(e.EpisodeLength)}),
		env.Discrete)
}

// ActionSpec returns the action specification
func (e *Env) ActionSpec() env.Spec {
	return env.NewSpec(mat.NewVecDense(1, nil), env.Action,
		mat.NewVecDense(1, []float64{0}), mat.NewVecDense(1, []float64{0}),
		env.Discrete)
}

// DiscountSpec returns the discount specification
func (e *Env) DiscountSpec() env.Spec {
	return env.NewScalarSpec(env.Discount, 1)
}

// Render returns a 1x1 image and counts the number of renders
func (e *Env) Render() (image.Image, error) {
	e.Renders++
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.White)
	return img, nil
}

// Algorithm is an algorithm that always selects action 0 and counts
// the calls made to it. Each call to Train increments Weight, which is
// its only checkpointed parameter.
type Algorithm struct {
	Weight float64

	Predicts       int
	GreedyPredicts int
	FirstObserved  int
	Observed       int
	Trained        int
	EpisodesEnded  int
	Compiled       bool

	// BatchSize is the number of transitions Train requires. Train
	// fails if a different number of transitions was observed.
	BatchSize int
	pending   int
}

// NewAlgorithm returns a new Algorithm requiring batchSize transitions
// per update
func NewAlgorithm(batchSize int) *Algorithm {
	return &Algorithm{BatchSize: batchSize}
}

// InitialState returns nil
func (a *Algorithm) InitialState() agent.PolicyState { return nil }

// Predict returns action 0
func (a *Algorithm) Predict(ts.TimeStep,
	agent.PolicyState) (*mat.VecDense, agent.PolicyState, error) {
	a.Predicts++
	return mat.NewVecDense(1, nil), nil, nil
}

// GreedyPredict returns action 0
func (a *Algorithm) GreedyPredict(ts.TimeStep,
	agent.PolicyState) (*mat.VecDense, agent.PolicyState, error) {
	a.GreedyPredicts++
	return mat.NewVecDense(1, nil), nil, nil
}

// ObserveFirst counts first timesteps
func (a *Algorithm) ObserveFirst(t ts.TimeStep) error {
	if !t.First() {
		return fmt.Errorf("observeFirst: timestep %v is not first", t)
	}
	a.FirstObserved++
	return nil
}

// Observe counts transitions
func (a *Algorithm) Observe(mat.Vector, ts.TimeStep) error {
	a.Observed++
	a.pending++
	return nil
}

// Train increments Weight
func (a *Algorithm) Train() (agent.Losses, error) {
	if a.BatchSize > 0 && a.pending != a.BatchSize {
		return agent.Losses{}, fmt.Errorf("train: need %d transitions, "+
			"have %d", a.BatchSize, a.pending)
	}
	a.pending = 0
	a.Trained++
	a.Weight++
	return agent.Losses{Policy: 1, Value: 2, Entropy: 3}, nil
}

// EndEpisode counts episodes
func (a *Algorithm) EndEpisode() { a.EpisodesEnded++ }

// SetCompiled records the execution mode
func (a *Algorithm) SetCompiled(compiled bool) error {
	a.Compiled = compiled
	return nil
}

// WeightNorms returns the absolute value of Weight
func (a *Algorithm) WeightNorms() map[string]float64 {
	w := a.Weight
	if w < 0 {
		w = -w
	}
	return map[string]float64{"weight": w}
}

// GobEncode implements the gob.GobEncoder interface
func (a *Algorithm) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(a.Weight); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface
func (a *Algorithm) GobDecode(in []byte) error {
	return gob.NewDecoder(bytes.NewReader(in)).Decode(&a.Weight)
}

// ErrEnv is an environment whose Step always fails
type ErrEnv struct {
	*Env
}

// Step returns an error
func (e ErrEnv) Step(*mat.VecDense) (ts.TimeStep, bool, error) {
	return ts.TimeStep{}, false, fmt.Errorf("step: broken environment")
}
