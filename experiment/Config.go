// Package experiment implements on-policy training and playback of
// algorithms in environments
package experiment

import (
	"fmt"
	"log"
	"time"
)

// Config configures Train and Play. Fields only used by Play are
// ignored by Train, and vice versa.
type Config struct {
	// RandomSeed seeds the environments and algorithm created from
	// the configuration
	RandomSeed uint64

	// TrainInterval is the number of environment steps between
	// updates of the algorithm
	TrainInterval int

	// NumStepsPerIter is the maximum number of environment steps taken
	// in each training iteration
	NumStepsPerIter int

	// NumIterations is the number of training iterations
	NumIterations int

	// UseCompiledRun compiles the algorithm's computations before
	// running, otherwise they are interpreted. Both produce the same
	// results.
	UseCompiledRun bool

	// SummaryInterval is the number of updates between training
	// summaries
	SummaryInterval int64

	// SummariesFlushSecs is the number of seconds between flushes of
	// summaries to disk
	SummariesFlushSecs float64

	// EvalInterval is the number of iterations between evaluations,
	// which only happen if an evaluation environment is given
	EvalInterval int

	// NumEvalEpisodes is the number of episodes in each evaluation
	NumEvalEpisodes int

	// CheckpointInterval is the number of iterations between
	// checkpoints. A checkpoint is always saved after training.
	CheckpointInterval int

	// MaxCheckpointsToKeep is the number of most recent checkpoints
	// kept on disk
	MaxCheckpointsToKeep int

	// DebugSummaries adds summaries of the losses of each update
	DebugSummaries bool

	// SummarizeGradsAndVars adds summaries of the norm of each weight
	// tensor of the algorithm
	SummarizeGradsAndVars bool

	// Progress displays a progress bar of the training iterations
	Progress bool

	// CheckpointName is the name of the checkpoint to play, such as
	// ckpt-12800. If empty, the latest checkpoint is played.
	CheckpointName string

	// GreedyPredict plays the greedy action rather than sampling
	GreedyPredict bool

	// NumSteps is the number of steps to play
	NumSteps int

	// SleepTimePerStep is the number of seconds to sleep after each
	// step played
	SleepTimePerStep float64

	// RenderDir is the directory that rendered frames are saved to
	// when playing. Frames are not saved if empty.
	RenderDir string

	// Logger logs progress. The standard logger is used if nil.
	Logger *log.Logger `json:"-"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		RandomSeed:           0,
		TrainInterval:        20,
		NumStepsPerIter:      10000,
		NumIterations:        1000,
		UseCompiledRun:       true,
		SummaryInterval:      50,
		SummariesFlushSecs:   1,
		EvalInterval:         10,
		NumEvalEpisodes:      10,
		CheckpointInterval:   1000,
		MaxCheckpointsToKeep: 20,
		GreedyPredict:        true,
		NumSteps:             10000,
		SleepTimePerStep:     0.01,
	}
}

// Validate returns an error if the configuration is invalid
func (c Config) Validate() error {
	positive := []struct {
		name  string
		value int64
	}{
		{"TrainInterval", int64(c.TrainInterval)},
		{"NumStepsPerIter", int64(c.NumStepsPerIter)},
		{"SummaryInterval", c.SummaryInterval},
		{"EvalInterval", int64(c.EvalInterval)},
		{"NumEvalEpisodes", int64(c.NumEvalEpisodes)},
		{"CheckpointInterval", int64(c.CheckpointInterval)},
	}
	for _, field := range positive {
		if field.value <= 0 {
			return fmt.Errorf("validate: %v must be positive, have %d",
				field.name, field.value)
		}
	}

	if c.NumIterations < 0 {
		return fmt.Errorf("validate: NumIterations must be non-negative, "+
			"have %d", c.NumIterations)
	}
	if c.NumSteps < 0 {
		return fmt.Errorf("validate: NumSteps must be non-negative, have %d",
			c.NumSteps)
	}
	if c.SummariesFlushSecs < 0 || c.SleepTimePerStep < 0 {
		return fmt.Errorf("validate: SummariesFlushSecs (%v) and "+
			"SleepTimePerStep (%v) must be non-negative",
			c.SummariesFlushSecs, c.SleepTimePerStep)
	}
	return nil
}

func (c Config) logger() *log.Logger {
	if c.Logger == nil {
		return log.Default()
	}
	return c.Logger
}

func (c Config) flushPeriod() time.Duration {
	return seconds(c.SummariesFlushSecs)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
