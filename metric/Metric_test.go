package metric

import (
	"bytes"
	"encoding/gob"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/samuelfneumann/onpolicy/agent"
	"github.com/samuelfneumann/onpolicy/environment/gridworld"
	"github.com/samuelfneumann/onpolicy/summary"
	ts "github.com/samuelfneumann/onpolicy/timestep"
	"gonum.org/v1/gonum/mat"
)

// episode returns the timesteps of an episode with the given rewards
// on its non-first steps
func episode(rewards ...float64) []ts.TimeStep {
	steps := []ts.TimeStep{ts.New(ts.First, 100, 1, nil, 0)}
	for i, r := range rewards {
		stepType := ts.Mid
		if i == len(rewards)-1 {
			stepType = ts.Last
		}
		steps = append(steps, ts.New(stepType, r, 1, nil, i+1))
	}
	return steps
}

func trackAll(m Metric, episodes ...[]ts.TimeStep) {
	for _, e := range episodes {
		for _, t := range e {
			m.Track(t)
		}
	}
}

func TestAverageReturn(t *testing.T) {
	m := NewAverageReturn(2)
	if m.Result() != 0 {
		t.Errorf("result: want(0) with no episodes have(%v)", m.Result())
	}

	trackAll(m, episode(1, 2), episode(3), episode(-1, -1, -1))
	// Only the last 2 episodes are kept: (3 + -3) / 2
	if m.Result() != 0 {
		t.Errorf("result: want(0) have(%v)", m.Result())
	}

	trackAll(m, episode(5))
	if m.Result() != 1 {
		t.Errorf("result: want(1) have(%v)", m.Result())
	}

	m.Reset()
	if m.Result() != 0 {
		t.Errorf("reset: want(0) have(%v)", m.Result())
	}
}

func TestCounts(t *testing.T) {
	length := NewAverageEpisodeLength(10)
	episodes := NewNumberOfEpisodes()
	steps := NewEnvironmentSteps()

	for _, m := range []Metric{length, episodes, steps} {
		trackAll(m, episode(1, 1, 1), episode(1))
	}
	if length.Result() != 2 {
		t.Errorf("averageEpisodeLength: want(2) have(%v)", length.Result())
	}
	if episodes.Result() != 2 {
		t.Errorf("numberOfEpisodes: want(2) have(%v)", episodes.Result())
	}
	if steps.Result() != 4 {
		t.Errorf("environmentSteps: want(4) have(%v)", steps.Result())
	}
}

func TestGroupGob(t *testing.T) {
	ret := NewAverageReturn(5)
	steps := NewEnvironmentSteps()
	trackAll(ret, episode(2, 2), episode(4))
	trackAll(steps, episode(1, 1, 1))

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(NewGroup(ret, steps)); err != nil {
		t.Fatal(err)
	}

	restoredRet := NewAverageReturn(5)
	restoredSteps := NewEnvironmentSteps()
	trackAll(restoredRet, episode(-10))
	group := NewGroup(restoredRet, restoredSteps)
	if err := gob.NewDecoder(&buf).Decode(group); err != nil {
		t.Fatal(err)
	}

	if restoredRet.Result() != 4 || restoredSteps.Result() != 3 {
		t.Errorf("gobDecode: have return %v steps %v", restoredRet.Result(),
			restoredSteps.Result())
	}

	// The restored window keeps its size
	trackAll(restoredRet, episode(1), episode(1), episode(1), episode(1))
	if restoredRet.Result() != (4+1+1+1+1)/5.0 {
		t.Errorf("gobDecode: window not restored, have %v",
			restoredRet.Result())
	}

	mismatched := NewGroup(NewEnvironmentSteps(), NewAverageReturn(5))
	data, _ := NewGroup(ret, steps).GobEncode()
	if err := mismatched.GobDecode(data); err == nil {
		t.Error("gobDecode: want error for mismatched metrics")
	}
}

func TestEagerCompute(t *testing.T) {
	start, err := gridworld.NewSingleStart(0, 0, 1, 3)
	if err != nil {
		t.Fatal(err)
	}
	task, err := gridworld.NewGoal(start, []int{2}, []int{0}, 1, 3, 10, -1, 0)
	if err != nil {
		t.Fatal(err)
	}
	env, _, err := gridworld.New(1, 3, task, 1)
	if err != nil {
		t.Fatal(err)
	}

	right := func(ts.TimeStep, agent.PolicyState) (*mat.VecDense,
		agent.PolicyState, error) {
		return mat.NewVecDense(1, []float64{float64(gridworld.Right)}), nil,
			nil
	}

	dir := t.TempDir()
	w, err := summary.NewWriter(dir, time.Second)
	if err != nil {
		t.Fatal(err)
	}

	metrics := []Metric{NewAverageReturn(3), NewAverageEpisodeLength(3)}
	results, err := EagerCompute(metrics, env, right, nil, 3, 42, w,
		"Metrics")
	if err != nil {
		t.Fatal(err)
	}
	w.Close()

	// Right, Right reaches the goal with rewards -1 then 0
	if results["AverageReturn"] != -1 {
		t.Errorf("eagerCompute: want return -1 have %v", results)
	}
	if results["AverageEpisodeLength"] != 2 {
		t.Errorf("eagerCompute: want length 2 have %v", results)
	}

	events, err := summary.ReadEvents(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("eagerCompute: want 2 events have %v", events)
	}
	for _, e := range events {
		if e.Step != 42 || !strings.HasPrefix(e.Tag, "Metrics/") {
			t.Errorf("eagerCompute: unexpected event %+v", e)
		}
	}

	var logs bytes.Buffer
	Log(log.New(&logs, "", 0), metrics)
	if !strings.Contains(logs.String(), "AverageReturn = -1") {
		t.Errorf("log: have %q", logs.String())
	}
}
