package driver

import (
	"bytes"
	"encoding/gob"
	"math"
	"testing"
	"time"

	"github.com/samuelfneumann/onpolicy/agent/linear/discrete/actorcritic"
	"github.com/samuelfneumann/onpolicy/environment/gridworld"
	"github.com/samuelfneumann/onpolicy/internal/stub"
	"github.com/samuelfneumann/onpolicy/metric"
	"github.com/samuelfneumann/onpolicy/summary"
)

func TestRunTraining(t *testing.T) {
	e := stub.NewEnv(3, 1)
	alg := stub.NewAlgorithm(4)
	counter := NewCounter()
	ret := metric.NewAverageReturn(10)

	d, err := New(e, alg, Config{
		TrainInterval: 4,
		Training:      true,
		Counter:       counter,
		Metrics:       []metric.Metric{ret},
	})
	if err != nil {
		t.Fatal(err)
	}

	step, err := d.GetInitialTimeStep()
	if err != nil {
		t.Fatal(err)
	}
	step, _, err = d.Run(10, step, d.GetInitialState())
	if err != nil {
		t.Fatal(err)
	}

	// Two episodes of 3 steps, two resets and 2 steps of a third episode
	if e.Steps != 8 || e.Resets != 3 {
		t.Errorf("run: want 8 steps and 3 resets, have %d and %d", e.Steps,
			e.Resets)
	}
	if alg.Trained != 2 || counter.Value() != 2 {
		t.Errorf("run: want 2 updates, have %d (counter %d)", alg.Trained,
			counter.Value())
	}
	if alg.FirstObserved != 3 || alg.Observed != 8 || alg.EpisodesEnded != 2 {
		t.Errorf("run: unexpected observations %+v", alg)
	}
	if step.Number != 2 || step.Last() {
		t.Errorf("run: want to end on step 2 of an episode, have %v", step)
	}
	if ret.Result() != 3 {
		t.Errorf("run: want average return 3 have %v", ret.Result())
	}
}

func TestRunLastTimeStepIsReturned(t *testing.T) {
	e := stub.NewEnv(2, 1)
	alg := stub.NewAlgorithm(0)
	d, err := New(e, alg, Config{TrainInterval: 100, Training: true})
	if err != nil {
		t.Fatal(err)
	}

	step, _ := d.GetInitialTimeStep()
	for i := 0; i < 2; i++ {
		if step, _, err = d.Run(1, step, nil); err != nil {
			t.Fatal(err)
		}
	}
	if !step.Last() {
		t.Fatalf("run: want last timestep, have %v", step)
	}

	// The next step only resets the environment
	if step, _, err = d.Run(1, step, nil); err != nil {
		t.Fatal(err)
	}
	if !step.First() || e.Steps != 2 || e.Resets != 2 {
		t.Errorf("run: want a reset, have %v after %d steps", step, e.Steps)
	}
}

func TestRunInference(t *testing.T) {
	e := stub.NewEnv(5, 1)
	alg := stub.NewAlgorithm(1)
	counter := NewCounter()
	d, err := New(e, alg, Config{Greedy: true, Counter: counter})
	if err != nil {
		t.Fatal(err)
	}

	step, _ := d.GetInitialTimeStep()
	if _, _, err := d.Run(12, step, nil); err != nil {
		t.Fatal(err)
	}
	if alg.GreedyPredicts != 10 || alg.Predicts != 0 {
		t.Errorf("run: want 10 greedy predictions, have %d greedy and %d "+
			"sampled", alg.GreedyPredicts, alg.Predicts)
	}
	if alg.Observed != 0 || alg.FirstObserved != 0 || alg.Trained != 0 {
		t.Errorf("run: algorithm trained during inference: %+v", alg)
	}
	if counter.Value() != 0 {
		t.Errorf("run: counter changed during inference: %d", counter.Value())
	}
}

func TestRunError(t *testing.T) {
	e := stub.ErrEnv{Env: stub.NewEnv(5, 1)}
	d, err := New(e, stub.NewAlgorithm(1), Config{})
	if err != nil {
		t.Fatal(err)
	}

	step, _ := d.GetInitialTimeStep()
	if _, _, err := d.Run(1, step, nil); err == nil {
		t.Error("run: want error from environment")
	}
}

func TestSummaries(t *testing.T) {
	dir := t.TempDir()
	w, err := summary.NewWriter(dir, time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	e := stub.NewEnv(2, 1)
	alg := stub.NewAlgorithm(2)
	d, err := New(e, alg, Config{
		TrainInterval:         2,
		Training:              true,
		Metrics:               []metric.Metric{metric.NewNumberOfEpisodes()},
		Summary:               summary.NewRecordContext(w, 2),
		DebugSummaries:        true,
		SummarizeGradsAndVars: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	step, _ := d.GetInitialTimeStep()
	// 4 updates, recorded on updates 2 and 4
	if _, _, err := d.Run(11, step, nil); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	events, err := summary.ReadEvents(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]int{
		"Metrics/NumberOfEpisodes": 2,
		"Losses/policy":            2,
		"Losses/value":             2,
		"Losses/entropy":           2,
		"WeightNorms/weight":       2,
	}
	have := make(map[string]int)
	for _, event := range events {
		have[event.Tag]++
		if event.Step%2 != 0 {
			t.Errorf("summaries: recorded at step %d", event.Step)
		}
	}
	for tag, n := range want {
		if have[tag] != n {
			t.Errorf("summaries: want %d %q events, have %d", n, tag, have[tag])
		}
	}
	if len(have) != len(want) {
		t.Errorf("summaries: unexpected tags %v", have)
	}
}

func TestExecutionMode(t *testing.T) {
	alg := stub.NewAlgorithm(1)
	if _, err := New(stub.NewEnv(2, 0), alg, Config{Mode: Compiled}); err != nil {
		t.Fatal(err)
	}
	if !alg.Compiled {
		t.Error("new: algorithm not compiled")
	}

	if _, err := New(stub.NewEnv(2, 0), alg,
		Config{Mode: ModeOf(false)}); err != nil {
		t.Fatal(err)
	}
	if alg.Compiled {
		t.Error("new: algorithm not interpreted")
	}

	if err := ExecutionMode(7).Apply(alg); err == nil {
		t.Error("apply: want error for unknown mode")
	}
}

// Training under either execution mode must produce the same
// algorithm
func TestExecutionModesAgree(t *testing.T) {
	run := func(mode ExecutionMode) (*actorcritic.ActorCritic,
		*gridworld.GridWorld) {
		start, err := gridworld.NewSingleStart(0, 0, 1, 4)
		if err != nil {
			t.Fatal(err)
		}
		task, err := gridworld.NewGoal(start, []int{3}, []int{0}, 1, 4, 10,
			-1, 0)
		if err != nil {
			t.Fatal(err)
		}
		e, _, err := gridworld.New(1, 4, task, 0.9)
		if err != nil {
			t.Fatal(err)
		}

		alg, err := actorcritic.New(e, actorcritic.DefaultConfig(8), 11)
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { alg.Close() })

		d, err := New(e, alg, Config{TrainInterval: 8, Training: true,
			Mode: mode})
		if err != nil {
			t.Fatal(err)
		}
		step, err := d.GetInitialTimeStep()
		if err != nil {
			t.Fatal(err)
		}
		if _, _, err := d.Run(80, step, nil); err != nil {
			t.Fatal(err)
		}
		if alg.Compiled() != (mode == Compiled) {
			t.Errorf("run: algorithm has wrong execution mode")
		}
		return alg, e
	}

	compiled, e := run(Compiled)
	interpreted, _ := run(Interpreted)

	step, err := e.Reset()
	if err != nil {
		t.Fatal(err)
	}
	want, _ := compiled.Value(step.Observation)
	have, _ := interpreted.Value(step.Observation)
	if math.Abs(want-have) > 1e-9 {
		t.Errorf("value: compiled(%v) != interpreted(%v)", want, have)
	}

	wantAction, _, _ := compiled.GreedyPredict(step, nil)
	haveAction, _, _ := interpreted.GreedyPredict(step, nil)
	if wantAction.AtVec(0) != haveAction.AtVec(0) {
		t.Errorf("greedyPredict: compiled(%v) != interpreted(%v)",
			wantAction.AtVec(0), haveAction.AtVec(0))
	}
}

func TestCounterGob(t *testing.T) {
	c := NewCounter()
	for i := 0; i < 5; i++ {
		c.Increment()
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(c); err != nil {
		t.Fatal(err)
	}

	restored := NewCounter()
	if err := gob.NewDecoder(&buf).Decode(restored); err != nil {
		t.Fatal(err)
	}
	if restored.Value() != 5 {
		t.Errorf("gobDecode: want(5) have(%d)", restored.Value())
	}
}
