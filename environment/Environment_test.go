package environment

import (
	"math"
	"testing"

	"github.com/samuelfneumann/onpolicy/timestep"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

func TestStepLimit(t *testing.T) {
	limit := NewStepLimit(3)
	obs := mat.NewVecDense(1, nil)

	step := timestep.New(timestep.Mid, 0, 1, obs, 2)
	if limit.End(&step) {
		t.Error("end: episode ended before the step limit")
	}

	step = timestep.New(timestep.Mid, 0, 1, obs, 3)
	if !limit.End(&step) {
		t.Fatal("end: episode did not end at the step limit")
	}
	if !step.Last() || step.EndType() != timestep.Timeout {
		t.Errorf("end: want Last timeout, have %v (%v)", step.StepType,
			step.EndType())
	}
}

func TestIntervalLimit(t *testing.T) {
	limit, err := NewIntervalLimit([]r1.Interval{{Min: -1, Max: 1}},
		[]int{1}, timestep.TerminalStateReached)
	if err != nil {
		t.Fatal(err)
	}

	inside := timestep.New(timestep.Mid, 0, 1,
		mat.NewVecDense(2, []float64{5, 0.5}), 1)
	if limit.End(&inside) {
		t.Error("end: ended while the tracked feature was in bounds")
	}

	outside := timestep.New(timestep.Mid, 0, 1,
		mat.NewVecDense(2, []float64{0, -1.5}), 1)
	if !limit.End(&outside) || !outside.TerminalEnd() {
		t.Error("end: want terminal end when the feature leaves its interval")
	}

	if _, err := NewIntervalLimit([]r1.Interval{{Min: -1, Max: 1}}, nil,
		timestep.Timeout); err == nil {
		t.Error("newIntervalLimit: want error for mismatched indices")
	}
	if _, err := NewIntervalLimit([]r1.Interval{{Min: 1, Max: -1}},
		[]int{0}, timestep.Timeout); err == nil {
		t.Error("newIntervalLimit: want error for an empty interval")
	}
}

func TestEndersFirstWins(t *testing.T) {
	atZero := NewFunctionEnder(func(v *mat.VecDense) bool {
		return v.AtVec(0) == 0
	}, timestep.TerminalStateReached)
	enders := Enders{atZero, NewStepLimit(1)}

	step := timestep.New(timestep.Mid, 0, 1, mat.NewVecDense(1, nil), 5)
	if !enders.End(&step) {
		t.Fatal("end: want episode to end")
	}
	if !step.TerminalEnd() {
		t.Errorf("end: want the first ender's end type, have %v",
			step.EndType())
	}

	step = timestep.New(timestep.Mid, 0, 1,
		mat.NewVecDense(1, []float64{1}), 0)
	if enders.End(&step) || step.Last() {
		t.Error("end: no ender should have fired")
	}
}

func TestUniformStarterDeterministic(t *testing.T) {
	bounds := []r1.Interval{{Min: -0.05, Max: 0.05}, {Min: 2, Max: 3}}
	a := NewUniformStarter(bounds, 42).Start()
	b := NewUniformStarter(bounds, 42).Start()

	if !mat.Equal(a, b) {
		t.Errorf("start: same seed gave different states %v and %v",
			mat.Formatted(a.T()), mat.Formatted(b.T()))
	}
	for i, bound := range bounds {
		if v := a.AtVec(i); v < bound.Min || v > bound.Max {
			t.Errorf("start: feature %d = %v outside %v", i, v, bound)
		}
	}
}

func TestCategoricalStarter(t *testing.T) {
	s, err := NewCategoricalStarter([]int{3, 1}, 7)
	if err != nil {
		t.Fatal(err)
	}
	seen := make(map[float64]bool)
	for i := 0; i < 200; i++ {
		v := s.Start()
		if v.AtVec(1) != 0 {
			t.Fatalf("start: single category feature = %v", v.AtVec(1))
		}
		seen[v.AtVec(0)] = true
	}
	if len(seen) != 3 {
		t.Errorf("start: want 3 distinct values, have %v", seen)
	}

	if _, err := NewCategoricalStarter([]int{2, 0}, 7); err == nil {
		t.Error("newCategoricalStarter: want error for zero categories")
	}
}

func TestSpecContains(t *testing.T) {
	spec := NewSpec(mat.NewVecDense(1, nil), Action,
		mat.NewVecDense(1, []float64{0}), mat.NewVecDense(1, []float64{2}),
		Discrete)

	tests := []struct {
		action []float64
		want   bool
	}{
		{[]float64{0}, true},
		{[]float64{2}, true},
		{[]float64{3}, false},
		{[]float64{-1}, false},
		{[]float64{1.5}, false},
		{[]float64{1, 1}, false},
	}
	for _, test := range tests {
		v := mat.NewVecDense(len(test.action), test.action)
		if have := spec.Contains(v); have != test.want {
			t.Errorf("contains(%v): want(%v) have(%v)", test.action,
				test.want, have)
		}
	}

	obs := NewSpec(mat.NewVecDense(1, nil), Observation,
		mat.NewVecDense(1, []float64{math.Inf(-1)}),
		mat.NewVecDense(1, []float64{math.Inf(1)}), Continuous)
	if !obs.Contains(mat.NewVecDense(1, []float64{1.5})) {
		t.Error("contains: continuous spec rejected a non-integer")
	}
}

func TestScalarSpec(t *testing.T) {
	spec := NewScalarSpec(Discount, 0.9)
	if spec.Type != Discount || spec.Type.String() != "Discount" {
		t.Errorf("newScalarSpec: type %v", spec.Type)
	}
	if spec.LowerBound.AtVec(0) != 0.9 || spec.UpperBound.AtVec(0) != 0.9 {
		t.Errorf("newScalarSpec: bounds [%v, %v]", spec.LowerBound.AtVec(0),
			spec.UpperBound.AtVec(0))
	}
}
