package metric

import (
	"fmt"

	"github.com/samuelfneumann/onpolicy/agent"
	"github.com/samuelfneumann/onpolicy/environment"
	"github.com/samuelfneumann/onpolicy/summary"
	ts "github.com/samuelfneumann/onpolicy/timestep"
	"gonum.org/v1/gonum/mat"
)

// ActionFunc selects an action given a timestep and policy state, such
// as agent.Policy.GreedyPredict
type ActionFunc func(ts.TimeStep, agent.PolicyState) (*mat.VecDense,
	agent.PolicyState, error)

// EagerCompute resets metrics and env, then runs actionFn in env for
// numEpisodes episodes, tracking each timestep with every metric. If
// writer is not nil, the result of each metric is written to it as
// the scalar <prefix>/<metric name> at global step step. The results
// are returned keyed by metric name.
func EagerCompute(metrics []Metric, env environment.Environment,
	actionFn ActionFunc, initialState agent.PolicyState, numEpisodes int,
	step int64, writer *summary.Writer,
	prefix string) (map[string]float64, error) {
	if numEpisodes <= 0 {
		return nil, fmt.Errorf("eagerCompute: number of episodes must be "+
			"positive, have %d", numEpisodes)
	}

	for _, m := range metrics {
		m.Reset()
	}

	t, err := env.Reset()
	if err != nil {
		return nil, fmt.Errorf("eagerCompute: could not reset: %v", err)
	}
	track(metrics, t)
	state := initialState

	for episodes := 0; episodes < numEpisodes; {
		var action *mat.VecDense
		action, state, err = actionFn(t, state)
		if err != nil {
			return nil, fmt.Errorf("eagerCompute: could not select "+
				"action: %v", err)
		}

		t, _, err = env.Step(action)
		if err != nil {
			return nil, fmt.Errorf("eagerCompute: could not step: %v", err)
		}
		track(metrics, t)

		if t.Last() {
			episodes++
			if episodes == numEpisodes {
				break
			}

			if t, err = env.Reset(); err != nil {
				return nil, fmt.Errorf("eagerCompute: could not reset: %v",
					err)
			}
			track(metrics, t)
			state = initialState
		}
	}

	results := make(map[string]float64, len(metrics))
	for _, m := range metrics {
		results[m.Name()] = m.Result()
		if writer == nil {
			continue
		}

		tag := m.Name()
		if prefix != "" {
			tag = prefix + "/" + tag
		}
		if err := writer.Scalar(tag, m.Result(), step); err != nil {
			return nil, fmt.Errorf("eagerCompute: %v", err)
		}
	}
	return results, nil
}

func track(metrics []Metric, t ts.TimeStep) {
	for _, m := range metrics {
		m.Track(t)
	}
}
