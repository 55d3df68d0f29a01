// Package actorcritic implements a linear softmax Actor-Critic
// algorithm with a neural network critic
package actorcritic

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/samuelfneumann/onpolicy/agent"
	"github.com/samuelfneumann/onpolicy/agent/linear/discrete/policy"
	"github.com/samuelfneumann/onpolicy/buffer/gae"
	"github.com/samuelfneumann/onpolicy/environment"
	"github.com/samuelfneumann/onpolicy/network"
	"github.com/samuelfneumann/onpolicy/solver"
	ts "github.com/samuelfneumann/onpolicy/timestep"
	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// ActorCritic implements an on-policy Actor-Critic algorithm. The
// actor is a softmax policy over linear action preferences, and the
// critic is a neural network state value function.
//
// Experience is collected in a GAE(λ) buffer of BatchSize transitions.
// Each call to Train takes one policy gradient step on the actor,
// weighting ∇ln π(a|s) by the standardized GAE(λ) advantage plus an
// entropy bonus, then regresses the critic on the rewards-to-go for
// ValueGradSteps gradient steps.
type ActorCritic struct {
	actor             *policy.Softmax
	actorLearningRate float64
	entropyScale      float64

	buffer     *gae.Buffer
	prevStep   ts.TimeStep
	features   int
	numActions int

	// State value critic used for prediction, which can be compiled
	// or interpreted. vVM is nil when interpreted.
	vValueFn *network.MLP
	vVM      G.VM
	compiled bool

	// State value critic used for training, always compiled
	vTrainValueFn        network.NeuralNet
	vTrainValueFnVM      G.VM
	vTrainValueFnTargets *G.Node
	vTrainLoss           G.Value
	vSolver              *solver.Solver
	valueGradSteps       int
}

// New returns a new ActorCritic agent
func New(env environment.Environment, c agent.Config,
	seed uint64) (*ActorCritic, error) {
	config, ok := c.(Config)
	if !ok {
		return nil, fmt.Errorf("new: invalid configuration type: %T", c)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	actor, err := policy.NewSoftmax(seed, env)
	if err != nil {
		return nil, fmt.Errorf("new: could not create actor: %v", err)
	}
	numActions, features := actor.Weights().Dims()

	buffer, err := gae.New(features, 1, config.BatchSize, config.Lambda,
		environment.DiscountOf(env))
	if err != nil {
		return nil, fmt.Errorf("new: could not create buffer: %v", err)
	}

	// Create the prediction value function
	init := config.InitWFn.Reseed(seed).InitWFn()
	valueFn, err := network.NewSingleHeadMLP(features, 1, G.NewGraph(),
		config.ValueFnHiddenSizes, config.ValueFnBiases, init,
		config.ValueFnActivations)
	if err != nil {
		return nil, fmt.Errorf("new: could not create value function: %v",
			err)
	}

	// Create the training value function and its MSE loss
	trainValueFn, err := valueFn.CloneWithBatch(config.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("new: could not create training value "+
			"function: %v", err)
	}
	trainValueFnTargets := G.NewMatrix(
		trainValueFn.Graph(),
		tensor.Float64,
		G.WithShape(trainValueFn.Prediction().Shape()...),
		G.WithName("ValueFunctionUpdateTarget"),
		G.WithInit(G.Zeroes()),
	)
	valueFnLoss := G.Must(G.Sub(trainValueFn.Prediction(),
		trainValueFnTargets))
	valueFnLoss = G.Must(G.Square(valueFnLoss))
	valueFnLoss = G.Must(G.Mean(valueFnLoss))

	a := &ActorCritic{
		actor:                actor,
		actorLearningRate:    config.ActorLearningRate,
		entropyScale:         config.EntropyScale,
		buffer:               buffer,
		features:             features,
		numActions:           numActions,
		vValueFn:             valueFn,
		vTrainValueFn:        trainValueFn,
		vTrainValueFnTargets: trainValueFnTargets,
		vSolver:              config.VSolver.Fresh(),
		valueGradSteps:       config.ValueGradSteps,
	}
	G.Read(valueFnLoss, &a.vTrainLoss)

	_, err = G.Grad(valueFnLoss, trainValueFn.Learnables()...)
	if err != nil {
		return nil, fmt.Errorf("new: could not compute value function "+
			"gradient: %v", err)
	}
	a.vTrainValueFnVM = G.NewTapeMachine(trainValueFn.Graph(),
		G.BindDualValues(trainValueFn.Learnables()...))

	if err := a.SetCompiled(true); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}
	return a, nil
}

// SetCompiled determines how the prediction critic is run. A compiled
// critic runs a Gorgonia TapeMachine program built once from its
// graph. An interpreted critic walks the graph with a new forward-only
// LispMachine on each prediction. Both produce the same predictions.
func (a *ActorCritic) SetCompiled(compiled bool) error {
	if err := a.closeVM(); err != nil {
		return fmt.Errorf("setCompiled: %v", err)
	}
	if compiled {
		a.vVM = G.NewTapeMachine(a.vValueFn.Graph())
	}
	a.compiled = compiled
	return nil
}

func (a *ActorCritic) closeVM() error {
	if a.vVM == nil {
		return nil
	}
	err := a.vVM.Close()
	a.vVM = nil
	if err != nil {
		return fmt.Errorf("could not close VM: %v", err)
	}
	return nil
}

// Compiled returns whether the prediction critic is compiled
func (a *ActorCritic) Compiled() bool {
	return a.compiled
}

// BatchSize returns the number of transitions each call to Train
// requires
func (a *ActorCritic) BatchSize() int {
	return a.buffer.Cap()
}

// InitialState returns the initial policy state, which is nil since
// the policy is stateless
func (a *ActorCritic) InitialState() agent.PolicyState {
	return nil
}

// Predict samples an action from the softmax policy
func (a *ActorCritic) Predict(t ts.TimeStep,
	state agent.PolicyState) (*mat.VecDense, agent.PolicyState, error) {
	if err := a.checkObs(t.Observation); err != nil {
		return nil, state, fmt.Errorf("predict: %v", err)
	}
	return a.actor.Sample(t.Observation), state, nil
}

// GreedyPredict selects the most probable action of the softmax policy
func (a *ActorCritic) GreedyPredict(t ts.TimeStep,
	state agent.PolicyState) (*mat.VecDense, agent.PolicyState, error) {
	if err := a.checkObs(t.Observation); err != nil {
		return nil, state, fmt.Errorf("greedyPredict: %v", err)
	}
	return a.actor.Greedy(t.Observation), state, nil
}

// Value returns the critic's estimate of the value of obs
func (a *ActorCritic) Value(obs mat.Vector) (float64, error) {
	if err := a.checkObs(obs); err != nil {
		return 0, fmt.Errorf("value: %v", err)
	}

	input := make([]float64, obs.Len())
	for i := range input {
		input[i] = obs.AtVec(i)
	}
	if err := a.vValueFn.SetInput(input); err != nil {
		return 0, fmt.Errorf("value: could not set critic input: %v", err)
	}
	vm := a.vVM
	if a.compiled {
		defer vm.Reset()
	} else {
		// A LispMachine caches the values it computed, so each
		// prediction needs a fresh one
		vm = G.NewLispMachine(a.vValueFn.Graph(), G.ExecuteFwdOnly())
		defer vm.Close()
	}
	if err := vm.RunAll(); err != nil {
		return 0, fmt.Errorf("value: could not run critic: %v", err)
	}

	value := a.vValueFn.Output().Data().([]float64)
	if len(value) != 1 {
		return 0, fmt.Errorf("value: more than one state value predicted")
	}
	return value[0], nil
}

// WeightNorms returns the L2 norm of the actor weights and of each
// critic weight tensor
func (a *ActorCritic) WeightNorms() map[string]float64 {
	norms := network.WeightNorms(a.vValueFn, "critic/")
	norms["actor/weights"] = mat.Norm(a.actor.Weights(), 2)
	return norms
}

// Close closes the Gorgonia VMs of the agent
func (a *ActorCritic) Close() error {
	if err := a.closeVM(); err != nil {
		return fmt.Errorf("close: %v", err)
	}
	return a.vTrainValueFnVM.Close()
}

func (a *ActorCritic) checkObs(obs mat.Vector) error {
	if obs == nil {
		return fmt.Errorf("no observation")
	}
	if obs.Len() != a.features {
		return fmt.Errorf("illegal observation length \n\twant(%d)"+
			"\n\thave(%d)", a.features, obs.Len())
	}
	return nil
}

type actorCriticGob struct {
	ActorWeights []float64
	Critic       *network.MLP
}

// GobEncode implements the gob.GobEncoder interface. The encoding
// holds the actor and critic weights.
func (a *ActorCritic) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	weights := mat.DenseCopyOf(a.actor.Weights()).RawMatrix().Data

	err := gob.NewEncoder(&buf).Encode(actorCriticGob{
		ActorWeights: weights,
		Critic:       a.vValueFn,
	})
	if err != nil {
		return nil, fmt.Errorf("gobEncode: %v", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface. The receiver
// must have been constructed with New for the same environment, and
// its weights are overwritten with the decoded weights.
func (a *ActorCritic) GobDecode(in []byte) error {
	if a.actor == nil {
		return fmt.Errorf("gobDecode: agent must be constructed before " +
			"decoding")
	}

	var dec actorCriticGob
	if err := gob.NewDecoder(bytes.NewReader(in)).Decode(&dec); err != nil {
		return fmt.Errorf("gobDecode: %v", err)
	}

	if len(dec.ActorWeights) != a.numActions*a.features {
		return fmt.Errorf("gobDecode: illegal number of actor weights "+
			"\n\twant(%d)\n\thave(%d)", a.numActions*a.features,
			len(dec.ActorWeights))
	}
	w := mat.NewDense(a.numActions, a.features, dec.ActorWeights)
	if err := a.actor.SetWeights(w); err != nil {
		return fmt.Errorf("gobDecode: %v", err)
	}

	if dec.Critic == nil {
		return fmt.Errorf("gobDecode: no critic weights")
	}
	if err := a.vValueFn.Set(dec.Critic); err != nil {
		return fmt.Errorf("gobDecode: could not set critic: %v", err)
	}
	if err := a.vTrainValueFn.Set(dec.Critic); err != nil {
		return fmt.Errorf("gobDecode: could not set training critic: %v",
			err)
	}
	return nil
}
