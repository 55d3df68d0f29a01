package solver

import (
	"encoding/json"
	"testing"
)

func TestSolverJSON(t *testing.T) {
	adam, err := NewDefaultAdam(0.01, 32)
	if err != nil {
		t.Fatal(err)
	}

	data, err := json.Marshal(adam)
	if err != nil {
		t.Fatal(err)
	}

	var s Solver
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatal(err)
	}
	if s.Type != Adam || s.Solver == nil {
		t.Fatalf("unmarshal: have %+v", s)
	}
	config, ok := s.Config.(AdamConfig)
	if !ok {
		t.Fatalf("unmarshal: want AdamConfig have %T", s.Config)
	}
	if config.StepSize != 0.01 || config.Batch != 32 || config.Beta2 != 0.999 {
		t.Errorf("unmarshal: have %+v", config)
	}

	if fresh := s.Fresh(); fresh.Solver == s.Solver {
		t.Error("fresh: want a new underlying solver")
	}
}

func TestSolverUnknownType(t *testing.T) {
	var s Solver
	err := json.Unmarshal([]byte(`{"Type": "SGDR", "Config": {}}`), &s)
	if err == nil {
		t.Error("unmarshal: want error for unknown solver type")
	}
}

func TestVanillaTypeCheck(t *testing.T) {
	if _, err := newSolver(Adam, VanillaConfig{StepSize: 1}); err == nil {
		t.Error("newSolver: want error for mismatched type")
	}
	if _, err := NewVanilla(0.1, 1, -1); err != nil {
		t.Errorf("newVanilla: %v", err)
	}
}

func TestValidate(t *testing.T) {
	if _, err := NewDefaultAdam(0, 1); err == nil {
		t.Error("newDefaultAdam: want error for zero step size")
	}
	if _, err := NewAdam(0.1, 1e-8, 1, 0.999, 1); err == nil {
		t.Error("newAdam: want error for β₁ = 1")
	}
	if _, err := NewVanilla(0.1, 0, 0); err == nil {
		t.Error("newVanilla: want error for zero batch size")
	}

	var s Solver
	data := []byte(`{"Type": "Vanilla", "Config": {"StepSize": -1, "Batch": 1}}`)
	if err := json.Unmarshal(data, &s); err == nil {
		t.Error("unmarshal: want error for negative step size")
	}
}
