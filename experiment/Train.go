package experiment

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/samuelfneumann/onpolicy/agent"
	"github.com/samuelfneumann/onpolicy/checkpoint"
	"github.com/samuelfneumann/onpolicy/driver"
	env "github.com/samuelfneumann/onpolicy/environment"
	"github.com/samuelfneumann/onpolicy/metric"
	"github.com/samuelfneumann/onpolicy/summary"
	"github.com/samuelfneumann/onpolicy/utils/progressbar"
)

const (
	// AlgorithmDir is the directory under the train directory holding
	// checkpoints
	AlgorithmDir = "algorithm"

	// EvalDir is the directory next to the train directory holding
	// evaluation summaries
	EvalDir = "eval"

	// Names of the objects saved in each checkpoint
	algorithmCheckpoint = "algorithm"
	metricsCheckpoint   = "metrics"
	counterCheckpoint   = "global_step"

	progressBarWidth = 50
)

// batchSizer is an algorithm that trains on a fixed number of
// transitions
type batchSizer interface {
	BatchSize() int
}

// Train trains alg on-policy in environment e for c.NumIterations
// iterations, writing summaries and checkpoints to trainDir.
//
// Each iteration takes at most c.NumStepsPerIter environment steps,
// training alg every c.TrainInterval steps. A checkpoint is saved
// every c.CheckpointInterval iterations and once more after the last
// iteration. If evalEnv is not nil, alg is evaluated greedily on it
// every c.EvalInterval iterations and the evaluation summaries are
// written to the eval directory next to trainDir. Training resumes
// from the latest checkpoint in trainDir if one exists.
func Train(trainDir string, e env.Environment, alg agent.Algorithm,
	evalEnv env.Environment, c Config) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("train: %v", err)
	}
	if e == nil || alg == nil {
		return fmt.Errorf("train: environment and algorithm must not be nil")
	}
	if b, ok := alg.(batchSizer); ok && b.BatchSize() != c.TrainInterval {
		return fmt.Errorf("train: algorithm trains on batches of %d "+
			"transitions but the train interval is %d", b.BatchSize(),
			c.TrainInterval)
	}

	trainDir = filepath.Clean(trainDir)
	evalDir := filepath.Join(filepath.Dir(trainDir), EvalDir)

	var evalMetrics []metric.Metric
	var evalWriter *summary.Writer
	if evalEnv != nil {
		evalMetrics = []metric.Metric{
			metric.NewAverageReturn(c.NumEvalEpisodes),
			metric.NewAverageEpisodeLength(c.NumEvalEpisodes),
		}

		var err error
		evalWriter, err = summary.NewWriter(evalDir, c.flushPeriod())
		if err != nil {
			return fmt.Errorf("train: could not create evaluation summary "+
				"writer: %v", err)
		}
		defer evalWriter.Close()
	}

	writer, err := summary.NewWriter(trainDir, c.flushPeriod())
	if err != nil {
		return fmt.Errorf("train: could not create summary writer: %v", err)
	}
	record := summary.NewRecordContext(writer, c.SummaryInterval)

	err = record.Run(func(record *summary.RecordContext) error {
		t := &trainer{
			config:      c,
			trainDir:    trainDir,
			env:         e,
			alg:         alg,
			evalEnv:     evalEnv,
			evalMetrics: evalMetrics,
			evalWriter:  evalWriter,
			record:      record,
		}
		return t.run()
	})
	if err != nil {
		return fmt.Errorf("train: %v", err)
	}

	if evalWriter != nil {
		if err := evalWriter.Close(); err != nil {
			return fmt.Errorf("train: could not close evaluation summary "+
				"writer: %v", err)
		}
	}
	return nil
}

// trainer runs the training loop under a record context
type trainer struct {
	config   Config
	trainDir string
	env      env.Environment
	alg      agent.Algorithm

	evalEnv     env.Environment
	evalMetrics []metric.Metric
	evalWriter  *summary.Writer

	record *summary.RecordContext
}

func (t *trainer) run() error {
	c := t.config
	logger := c.logger()

	counter := driver.NewCounter()
	d, err := driver.New(t.env, t.alg, driver.Config{
		TrainInterval:         c.TrainInterval,
		Training:              true,
		Counter:               counter,
		Metrics:               driverMetrics(),
		Summary:               t.record,
		DebugSummaries:        c.DebugSummaries,
		SummarizeGradsAndVars: c.SummarizeGradsAndVars,
		Mode:                  driver.ModeOf(c.UseCompiledRun),
	})
	if err != nil {
		return err
	}

	manager, err := newManager(t.trainDir, c.MaxCheckpointsToKeep, t.alg, d)
	if err != nil {
		return err
	}
	restored, err := manager.InitializeOrRestore()
	if err != nil {
		return err
	}
	if restored != "" {
		logger.Printf("Restored from checkpoint %v", restored)
	}
	checkpointer, err := checkpoint.NewNStep(c.CheckpointInterval, manager)
	if err != nil {
		return err
	}

	var bar *progressbar.ManualProgressBar
	if c.Progress {
		bar = progressbar.NewManualProgressBar(os.Stderr, progressBarWidth,
			c.NumIterations)
		defer bar.Close()
	}

	step, err := d.GetInitialTimeStep()
	if err != nil {
		return err
	}
	state := d.GetInitialState()

	for iter := 0; iter < c.NumIterations; iter++ {
		start := time.Now()
		step, state, err = d.Run(c.NumStepsPerIter, step, state)
		if err != nil {
			return fmt.Errorf("iteration %d: %v", iter, err)
		}
		logger.Printf("%d time=%.3f", iter, time.Since(start).Seconds())

		if _, err := checkpointer.Checkpoint(iter, counter.Value()); err != nil {
			return fmt.Errorf("iteration %d: %v", iter, err)
		}

		if t.evalEnv != nil && (iter+1)%c.EvalInterval == 0 {
			if err := t.evaluate(counter.Value()); err != nil {
				return fmt.Errorf("iteration %d: %v", iter, err)
			}
		}

		if bar != nil {
			bar.Increment()
			bar.Display()
		}
	}

	if _, err := manager.Save(counter.Value()); err != nil {
		return err
	}
	return nil
}

// evaluate runs the greedy policy in the evaluation environment and
// writes the results at global step step
func (t *trainer) evaluate(step int64) error {
	_, err := metric.EagerCompute(t.evalMetrics, t.evalEnv,
		t.alg.GreedyPredict, t.alg.InitialState(), t.config.NumEvalEpisodes,
		step, t.evalWriter, "Metrics")
	if err != nil {
		return fmt.Errorf("evaluate: %v", err)
	}
	metric.Log(t.config.logger(), t.evalMetrics)
	return nil
}

// driverMetrics returns the metrics tracked by drivers
func driverMetrics() []metric.Metric {
	return []metric.Metric{
		metric.NewNumberOfEpisodes(),
		metric.NewEnvironmentSteps(),
		metric.NewAverageReturn(10),
		metric.NewAverageEpisodeLength(10),
	}
}

// newManager returns a checkpoint manager over the algorithm directory
// of trainDir that saves alg, the metrics of d, and the counter of d
func newManager(trainDir string, maxToKeep int, alg agent.Algorithm,
	d *driver.OnPolicyDriver) (*checkpoint.Manager, error) {
	manager, err := checkpoint.NewManager(filepath.Join(trainDir,
		AlgorithmDir), maxToKeep)
	if err != nil {
		return nil, err
	}
	manager.Register(algorithmCheckpoint, alg)
	manager.Register(metricsCheckpoint, metric.NewGroup(d.Metrics()...))
	manager.Register(counterCheckpoint, d.Counter())
	return manager, nil
}
