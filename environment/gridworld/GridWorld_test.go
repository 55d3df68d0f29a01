package gridworld

import (
	"testing"

	"github.com/samuelfneumann/onpolicy/timestep"
	"gonum.org/v1/gonum/mat"
)

func newGrid(t *testing.T, cutoff int) *GridWorld {
	t.Helper()
	start, err := NewSingleStart(0, 0, 3, 4)
	if err != nil {
		t.Fatal(err)
	}
	task, err := NewGoal(start, []int{3}, []int{2}, 3, 4, cutoff, -1, 0)
	if err != nil {
		t.Fatal(err)
	}
	g, step, err := New(3, 4, task, 0.9)
	if err != nil {
		t.Fatal(err)
	}
	if !step.First() {
		t.Fatalf("new: want first step, have %v", step)
	}
	return g
}

func act(a int) *mat.VecDense {
	return mat.NewVecDense(1, []float64{float64(a)})
}

func TestGridWorldReachesGoal(t *testing.T) {
	g := newGrid(t, 100)
	moves := []int{Right, Right, Right, Up, Up}

	var step timestep.TimeStep
	var last bool
	var err error
	for i, m := range moves {
		step, last, err = g.Step(act(m))
		if err != nil {
			t.Fatal(err)
		}
		if i < len(moves)-1 {
			if last || step.Reward != -1 {
				t.Fatalf("step %d: want reward -1 and not last, have %v", i,
					step)
			}
		}
	}

	if !last || !step.TerminalEnd() {
		t.Errorf("goal: want terminal last step, have %v (%v)", step,
			step.EndType())
	}
	if step.Reward != 0 {
		t.Errorf("goal: want reward 0, have %v", step.Reward)
	}
	if x, y := g.Coordinates(); x != 3 || y != 2 {
		t.Errorf("goal: want (3, 2), have (%d, %d)", x, y)
	}
	if step.Observation.AtVec(2*4+3) != 1 || mat.Sum(step.Observation) != 1 {
		t.Errorf("goal: observation is not one-hot at goal: %v",
			mat.Formatted(step.Observation.T()))
	}
}

func TestGridWorldWalls(t *testing.T) {
	g := newGrid(t, 100)
	step, _, err := g.Step(act(Left))
	if err != nil {
		t.Fatal(err)
	}
	if x, y := g.Coordinates(); x != 0 || y != 0 {
		t.Errorf("wall: want (0, 0), have (%d, %d)", x, y)
	}
	if step.Number != 1 {
		t.Errorf("wall: want step number 1, have %d", step.Number)
	}
}

func TestGridWorldTimeout(t *testing.T) {
	g := newGrid(t, 3)
	var step timestep.TimeStep
	var last bool
	for i := 0; i < 3; i++ {
		var err error
		step, last, err = g.Step(act(Down))
		if err != nil {
			t.Fatal(err)
		}
	}
	if !last || step.EndType() != timestep.Timeout {
		t.Errorf("timeout: want timeout after 3 steps, have %v (%v)", step,
			step.EndType())
	}

	reset, err := g.Reset()
	if err != nil {
		t.Fatal(err)
	}
	if !reset.First() || reset.Number != 0 {
		t.Errorf("reset: want first step 0, have %v", reset)
	}
}

func TestUniformStartInGrid(t *testing.T) {
	s, err := NewUniformStart(3, 4, 5)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 50; i++ {
		v := s.Start()
		if v.Len() != 12 || mat.Sum(v) != 1 {
			t.Fatalf("start: want one-hot length 12, have %v",
				mat.Formatted(v.T()))
		}
	}
}

func TestUniformStartIllegalGrid(t *testing.T) {
	if _, err := NewUniformStart(0, 4, 5); err == nil {
		t.Error("newUniformStart: want error for a grid without rows")
	}
}

func TestGridWorldRender(t *testing.T) {
	g := newGrid(t, 10)
	img, err := g.Render()
	if err != nil {
		t.Fatal(err)
	}
	b := img.Bounds()
	if b.Dx() != 4*CellSize || b.Dy() != 3*CellSize {
		t.Errorf("render: want %dx%d, have %dx%d", 4*CellSize, 3*CellSize,
			b.Dx(), b.Dy())
	}
}
