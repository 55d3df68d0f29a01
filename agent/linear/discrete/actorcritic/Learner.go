package actorcritic

import (
	"fmt"
	"math"
	"os"

	"github.com/samuelfneumann/onpolicy/agent"
	ts "github.com/samuelfneumann/onpolicy/timestep"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// ObserveFirst records the first timestep in an episode
func (a *ActorCritic) ObserveFirst(t ts.TimeStep) error {
	if !t.First() {
		fmt.Fprintf(os.Stderr, "Warning: ObserveFirst() should only be "+
			"called on the first timestep (current timestep = %d)\n",
			t.Number)
	}
	if err := a.checkObs(t.Observation); err != nil {
		return fmt.Errorf("observeFirst: %v", err)
	}
	a.prevStep = t.Clone()
	return nil
}

// Observe records that action lead to nextStep. When nextStep ends
// the episode, the trajectory in the buffer is finished, bootstrapping
// from the critic's estimate of the last state unless the episode
// ended in a terminal state.
func (a *ActorCritic) Observe(action mat.Vector,
	nextStep ts.TimeStep) error {
	if nextStep.First() {
		return a.ObserveFirst(nextStep)
	}
	if a.prevStep.Observation == nil {
		return fmt.Errorf("observe: ObserveFirst() must be called first")
	}
	if action.Len() != 1 {
		return fmt.Errorf("observe: actions must be 1-dimensional")
	}

	value, err := a.Value(a.prevStep.Observation)
	if err != nil {
		return fmt.Errorf("observe: %v", err)
	}
	err = a.buffer.Store(vecData(a.prevStep.Observation),
		[]float64{action.AtVec(0)}, nextStep.Reward, value)
	if err != nil {
		return fmt.Errorf("observe: %v", err)
	}

	if nextStep.Last() {
		var lastValue float64
		if !nextStep.TerminalEnd() {
			lastValue, err = a.Value(nextStep.Observation)
			if err != nil {
				return fmt.Errorf("observe: %v", err)
			}
		}
		a.buffer.FinishPath(lastValue)
	}

	a.prevStep = nextStep.Clone()
	return nil
}

// EndEpisode performs cleanup at the end of an episode. Trajectories
// are finished in Observe, so nothing needs to be done.
func (a *ActorCritic) EndEpisode() {}

// Train updates the actor and critic using the BatchSize transitions
// observed since the last update. An error is returned if fewer
// transitions have been observed.
func (a *ActorCritic) Train() (agent.Losses, error) {
	if !a.buffer.Full() {
		return agent.Losses{}, fmt.Errorf("train: need %d transitions, "+
			"have %d", a.buffer.Cap(), a.buffer.Len())
	}

	// Cut off the current trajectory, bootstrapping from the last
	// state seen
	if a.buffer.PathLen() > 0 {
		lastValue, err := a.Value(a.prevStep.Observation)
		if err != nil {
			return agent.Losses{}, fmt.Errorf("train: %v", err)
		}
		a.buffer.FinishPath(lastValue)
	}

	batch, err := a.buffer.Get()
	if err != nil {
		return agent.Losses{}, fmt.Errorf("train: %v", err)
	}

	policyLoss, entropy := a.updateActor(batch.Obs, batch.Actions,
		batch.Advantages)

	valueLoss, err := a.updateCritic(batch.Obs, batch.Returns)
	if err != nil {
		return agent.Losses{}, fmt.Errorf("train: %v", err)
	}

	return agent.Losses{
		Policy:  policyLoss,
		Value:   valueLoss,
		Entropy: entropy,
	}, nil
}

// updateActor takes one gradient ascent step on
//
//	𝔼[ln π(a|s) Â(s, a) + β ℍ[π(⋅|s)]]
//
// and returns the policy loss and mean entropy before the step
func (a *ActorCritic) updateActor(obs, actions,
	advantages []float64) (float64, float64) {
	n := len(advantages)
	grad := mat.NewDense(a.numActions, a.features, nil)

	var policyLoss, entropy float64
	for i := 0; i < n; i++ {
		state := obs[i*a.features : (i+1)*a.features]
		action := int(actions[i])
		adv := advantages[i]

		probs := a.actor.Probabilities(mat.NewVecDense(a.features, state))
		h := categoricalEntropy(probs)

		policyLoss -= math.Log(probs[action]) * adv
		entropy += h

		// ∂/∂zₖ of ln π(a|s) Â + β ℍ, for action preferences zₖ
		for k, p := range probs {
			g := -p * adv
			if k == action {
				g += adv
			}
			if p > 0 {
				g -= a.entropyScale * p * (math.Log(p) + h)
			}
			floats.AddScaled(grad.RawRowView(k), g, state)
		}
	}

	weights := a.actor.Weights()
	weights.Add(weights, scaled(grad, a.actorLearningRate/float64(n)))

	return policyLoss / float64(n), entropy / float64(n)
}

// updateCritic regresses the critic on the returns and returns the
// mean squared error before the first gradient step
func (a *ActorCritic) updateCritic(obs, returns []float64) (float64,
	error) {
	if err := a.vTrainValueFn.SetInput(obs); err != nil {
		return 0, fmt.Errorf("updateCritic: %v", err)
	}

	var loss float64
	for i := 0; i < a.valueGradSteps; i++ {
		target := tensor.NewDense(
			tensor.Float64,
			a.vTrainValueFnTargets.Shape(),
			tensor.WithBacking(append([]float64(nil), returns...)),
		)
		if err := G.Let(a.vTrainValueFnTargets, target); err != nil {
			return 0, fmt.Errorf("updateCritic: %v", err)
		}

		if err := a.vTrainValueFnVM.RunAll(); err != nil {
			return 0, fmt.Errorf("updateCritic: %v", err)
		}
		if i == 0 {
			loss = a.vTrainLoss.Data().(float64)
		}
		if err := a.vSolver.Step(a.vTrainValueFn.Model()); err != nil {
			return 0, fmt.Errorf("updateCritic: %v", err)
		}
		a.vTrainValueFnVM.Reset()
	}

	if err := a.vValueFn.Set(a.vTrainValueFn); err != nil {
		return 0, fmt.Errorf("updateCritic: could not set prediction "+
			"critic: %v", err)
	}
	return loss, nil
}

func categoricalEntropy(probs []float64) float64 {
	var h float64
	for _, p := range probs {
		if p > 0 {
			h -= p * math.Log(p)
		}
	}
	return h
}

func scaled(m *mat.Dense, c float64) *mat.Dense {
	var out mat.Dense
	out.Scale(c, m)
	return &out
}

func vecData(v mat.Vector) []float64 {
	data := make([]float64, v.Len())
	for i := range data {
		data[i] = v.AtVec(i)
	}
	return data
}
