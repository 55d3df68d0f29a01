package main

import (
	"testing"

	"github.com/samuelfneumann/onpolicy/experiment"
)

func TestTrainFlagsKeepConfigWhenUnset(t *testing.T) {
	f := newTrainFlags()
	if err := f.Parse([]string{"-dir", "runs"}); err != nil {
		t.Fatal(err)
	}

	c := experiment.DefaultConfig()
	c.UseCompiledRun = false
	c.Progress = true
	c.NumIterations = 7
	f.apply(&c)

	if c.UseCompiledRun || !c.Progress || c.NumIterations != 7 {
		t.Errorf("apply: unset flags changed the configuration: %+v", c)
	}
}

func TestTrainFlagsOverride(t *testing.T) {
	f := newTrainFlags()
	err := f.Parse([]string{"-compiled=false", "-iterations", "3",
		"-progress"})
	if err != nil {
		t.Fatal(err)
	}

	c := experiment.DefaultConfig()
	f.apply(&c)
	if c.UseCompiledRun || !c.Progress || c.NumIterations != 3 {
		t.Errorf("apply: have compiled %v progress %v iterations %d",
			c.UseCompiledRun, c.Progress, c.NumIterations)
	}

	f = newTrainFlags()
	if err := f.Parse([]string{"-compiled"}); err != nil {
		t.Fatal(err)
	}
	c.UseCompiledRun = false
	f.apply(&c)
	if !c.UseCompiledRun {
		t.Error("apply: -compiled did not enable compiled runs")
	}
}

func TestPlayFlags(t *testing.T) {
	f := newPlayFlags()
	if err := f.Parse(nil); err != nil {
		t.Fatal(err)
	}
	c := experiment.DefaultConfig()
	c.GreedyPredict = false
	c.CheckpointName = "ckpt-10"
	f.apply(&c)
	if c.GreedyPredict || c.CheckpointName != "ckpt-10" {
		t.Errorf("apply: unset flags changed the configuration: %+v", c)
	}

	f = newPlayFlags()
	err := f.Parse([]string{"-sample=false", "-checkpoint", "ckpt-4",
		"-steps", "12"})
	if err != nil {
		t.Fatal(err)
	}
	f.apply(&c)
	if !c.GreedyPredict || c.CheckpointName != "ckpt-4" || c.NumSteps != 12 {
		t.Errorf("apply: have greedy %v checkpoint %q steps %d",
			c.GreedyPredict, c.CheckpointName, c.NumSteps)
	}
}
