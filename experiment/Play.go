package experiment

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fogleman/gg"
	"github.com/samuelfneumann/onpolicy/agent"
	"github.com/samuelfneumann/onpolicy/checkpoint"
	"github.com/samuelfneumann/onpolicy/driver"
	env "github.com/samuelfneumann/onpolicy/environment"
)

// Play plays alg in environment e for c.NumSteps steps using the
// checkpoint c.CheckpointName in trainDir, or the latest checkpoint if
// no name is given. If there is no checkpoint, alg plays with its
// current weights.
//
// Each step is rendered if e is an environment.Renderer, and frames
// are saved to c.RenderDir if set. The length and reward of each
// episode are logged when it ends.
func Play(trainDir string, e env.Environment, alg agent.Algorithm,
	c Config) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("play: %v", err)
	}
	if e == nil || alg == nil {
		return fmt.Errorf("play: environment and algorithm must not be nil")
	}
	logger := c.logger()
	trainDir = filepath.Clean(trainDir)

	d, err := driver.New(e, alg, driver.Config{
		Greedy:  c.GreedyPredict,
		Counter: driver.NewCounter(),
		Metrics: driverMetrics(),
		Mode:    driver.ModeOf(c.UseCompiledRun),
	})
	if err != nil {
		return fmt.Errorf("play: %v", err)
	}

	manager, err := newManager(trainDir, c.MaxCheckpointsToKeep, alg, d)
	if err != nil {
		return fmt.Errorf("play: %v", err)
	}
	var path string
	if c.CheckpointName != "" {
		path = filepath.Join(manager.Dir(), c.CheckpointName)
	} else if path, err = checkpoint.Latest(manager.Dir()); err != nil {
		return fmt.Errorf("play: %v", err)
	}
	if path != "" {
		logger.Printf("Restore from checkpoint %v", path)
		if err := manager.Restore(path); err != nil {
			return fmt.Errorf("play: %v", err)
		}
	}

	r := newRenderer(e, c.RenderDir)
	if err := r.render(); err != nil {
		return fmt.Errorf("play: %v", err)
	}

	step, err := d.GetInitialTimeStep()
	if err != nil {
		return fmt.Errorf("play: %v", err)
	}
	state := d.GetInitialState()

	var episodeReward float64
	var episodeLength int
	for i := 0; i < c.NumSteps; i++ {
		step, state, err = d.Run(1, step, state)
		if err != nil {
			return fmt.Errorf("play: %v", err)
		}

		if step.Last() {
			logger.Printf("episode_length=%v episode_reward=%v", episodeLength,
				episodeReward)
			episodeReward = 0
			episodeLength = 0
		} else {
			episodeReward += step.Reward
			episodeLength++
		}

		if err := r.render(); err != nil {
			return fmt.Errorf("play: %v", err)
		}
		time.Sleep(seconds(c.SleepTimePerStep))
	}

	if _, err := e.Reset(); err != nil {
		return fmt.Errorf("play: could not reset environment: %v", err)
	}
	return nil
}

// renderer renders an environment, possibly saving each frame
type renderer struct {
	env    env.Renderer
	dir    string
	frames int
}

// newRenderer returns a renderer of e which saves frames to dir. If e
// cannot be rendered, the renderer does nothing.
func newRenderer(e env.Environment, dir string) *renderer {
	r, _ := e.(env.Renderer)
	return &renderer{env: r, dir: dir}
}

func (r *renderer) render() error {
	if r.env == nil {
		return nil
	}
	img, err := r.env.Render()
	if err != nil {
		return fmt.Errorf("render: %v", err)
	}
	if r.dir == "" {
		return nil
	}

	if r.frames == 0 {
		if err := os.MkdirAll(r.dir, 0755); err != nil {
			return fmt.Errorf("render: could not create frame directory: %v",
				err)
		}
	}
	name := filepath.Join(r.dir, fmt.Sprintf("frame-%06d.png", r.frames))
	if err := gg.SavePNG(name, img); err != nil {
		return fmt.Errorf("render: could not save frame: %v", err)
	}
	r.frames++
	return nil
}
