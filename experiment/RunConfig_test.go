package experiment

import (
	"bytes"
	"encoding/json"
	"log"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/samuelfneumann/onpolicy/agent"
	"github.com/samuelfneumann/onpolicy/agent/linear/discrete/actorcritic"
	"github.com/samuelfneumann/onpolicy/environment/envconfig"
)

func TestLoadRunConfigs(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("..", "configs", "*.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Fatal("loadRunConfig: no configuration files found")
	}

	for _, path := range paths {
		r, err := LoadRunConfig(path)
		if err != nil {
			t.Errorf("loadRunConfig: %v", err)
			continue
		}

		e, evalEnv, alg, err := r.Create()
		if err != nil {
			t.Errorf("create %v: %v", path, err)
			continue
		}
		if evalEnv == nil || e == evalEnv {
			t.Errorf("create %v: want a separate evaluation environment",
				path)
		}
		if ac, ok := alg.(*actorcritic.ActorCritic); !ok {
			t.Errorf("create %v: want *ActorCritic have %T", path, alg)
		} else {
			if ac.BatchSize() != r.Experiment.TrainInterval {
				t.Errorf("create %v: batch size %d does not match train "+
					"interval %d", path, ac.BatchSize(),
					r.Experiment.TrainInterval)
			}
			ac.Close()
		}
	}
}

func TestTrainAndPlayActorCritic(t *testing.T) {
	var buf bytes.Buffer
	c := testConfig(&buf)
	c.TrainInterval = 16
	c.NumStepsPerIter = 48
	c.NumIterations = 4
	c.NumEvalEpisodes = 1
	c.EvalInterval = 2
	c.SummarizeGradsAndVars = true
	c.DebugSummaries = true

	r := RunConfig{
		Environment: envconfig.Config{
			Environment:   envconfig.Gridworld,
			Task:          envconfig.Goal,
			EpisodeCutoff: 20,
			Discount:      0.9,
			Rows:          3,
			Cols:          3,
		},
		Agent:      agent.NewTypedConfig(actorcritic.DefaultConfig(16)),
		Evaluate:   true,
		Experiment: c,
	}

	// Configurations survive a round trip through a file
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "run.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadRunConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	loaded.Experiment.Logger = log.New(&buf, "", 0)

	e, evalEnv, alg, err := loaded.Create()
	if err != nil {
		t.Fatal(err)
	}
	defer alg.(agent.Closer).Close()

	trainDir := filepath.Join(t.TempDir(), "train")
	if err := Train(trainDir, e, alg, evalEnv, loaded.Experiment); err != nil {
		t.Fatal(err)
	}
	if have := checkpointNames(t, trainDir); len(have) != 2 {
		t.Errorf("train: want 2 checkpoints have %v", have)
	}

	// Play restores the trained weights into a new algorithm
	e, _, played, err := loaded.Create()
	if err != nil {
		t.Fatal(err)
	}
	defer played.(agent.Closer).Close()

	loaded.Experiment.NumSteps = 30
	if err := Play(trainDir, e, played, loaded.Experiment); err != nil {
		t.Fatal(err)
	}

	obs := e.CurrentTimeStep().Observation
	want, err := alg.(*actorcritic.ActorCritic).Value(obs)
	if err != nil {
		t.Fatal(err)
	}
	have, err := played.(*actorcritic.ActorCritic).Value(obs)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(want-have) > 1e-12 {
		t.Errorf("play: want restored critic value %v have %v", want, have)
	}
}

func TestTrainBatchSizeMismatch(t *testing.T) {
	var buf bytes.Buffer
	c := testConfig(&buf)
	e, _, err := envconfig.CreateGridworld(2, 2, 10, 0, 0.9)
	if err != nil {
		t.Fatal(err)
	}
	alg, err := actorcritic.New(e, actorcritic.DefaultConfig(8), 0)
	if err != nil {
		t.Fatal(err)
	}
	defer alg.Close()

	if err := Train(t.TempDir(), e, alg, nil, c); err == nil {
		t.Error("train: want error when batch size and train interval differ")
	}
}
