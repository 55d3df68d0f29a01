package solver

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// AdamConfig configures an Adam solver
type AdamConfig struct {
	StepSize float64
	Epsilon  float64 // Smoothing factor
	Beta1    float64
	Beta2    float64
	Batch    int
}

// NewDefaultAdam returns an Adam Solver with ε = 1e-8, β₁ = 0.9 and
// β₂ = 0.999
func NewDefaultAdam(stepSize float64, batchSize int) (*Solver, error) {
	return NewAdam(stepSize, 1e-8, 0.9, 0.999, batchSize)
}

// NewAdam returns a new Adam Solver
func NewAdam(stepSize, epsilon, beta1, beta2 float64,
	batchSize int) (*Solver, error) {
	return newSolver(Adam, AdamConfig{
		StepSize: stepSize,
		Epsilon:  epsilon,
		Beta1:    beta1,
		Beta2:    beta2,
		Batch:    batchSize,
	})
}

// Create implements the Config interface
func (a AdamConfig) Create() G.Solver {
	return G.NewAdamSolver(
		G.WithLearnRate(a.StepSize),
		G.WithEps(a.Epsilon),
		G.WithBeta1(a.Beta1),
		G.WithBeta2(a.Beta2),
		G.WithBatchSize(float64(a.Batch)),
	)
}

// ValidType implements the Config interface
func (a AdamConfig) ValidType(t Type) bool { return t == Adam }

// Validate implements the Config interface
func (a AdamConfig) Validate() error {
	if err := validateStep(a.StepSize, a.Batch); err != nil {
		return fmt.Errorf("validate: %v", err)
	}
	if a.Epsilon <= 0 {
		return fmt.Errorf("validate: ε = %v must be positive", a.Epsilon)
	}
	if a.Beta1 < 0 || a.Beta1 >= 1 {
		return fmt.Errorf("validate: β₁ = %v ∉ [0, 1)", a.Beta1)
	}
	if a.Beta2 < 0 || a.Beta2 >= 1 {
		return fmt.Errorf("validate: β₂ = %v ∉ [0, 1)", a.Beta2)
	}
	return nil
}

// VanillaConfig configures a stochastic gradient descent solver
type VanillaConfig struct {
	StepSize float64
	Batch    int
	Clip     float64 // <= 0 if no clipping
}

// NewVanilla returns a new Vanilla Solver
func NewVanilla(stepSize float64, batchSize int,
	clip float64) (*Solver, error) {
	return newSolver(Vanilla, VanillaConfig{
		StepSize: stepSize,
		Batch:    batchSize,
		Clip:     clip,
	})
}

// Create implements the Config interface
func (v VanillaConfig) Create() G.Solver {
	opts := []G.SolverOpt{
		G.WithLearnRate(v.StepSize),
		G.WithBatchSize(float64(v.Batch)),
	}
	if v.Clip > 0 {
		opts = append(opts, G.WithClip(v.Clip))
	}
	return G.NewVanillaSolver(opts...)
}

// ValidType implements the Config interface
func (v VanillaConfig) ValidType(t Type) bool { return t == Vanilla }

// Validate implements the Config interface
func (v VanillaConfig) Validate() error {
	if err := validateStep(v.StepSize, v.Batch); err != nil {
		return fmt.Errorf("validate: %v", err)
	}
	return nil
}

func validateStep(stepSize float64, batch int) error {
	if stepSize <= 0 {
		return fmt.Errorf("step size %v must be positive", stepSize)
	}
	if batch <= 0 {
		return fmt.Errorf("batch size %d must be positive", batch)
	}
	return nil
}
