// Package solver pairs Gorgonia gradient descent solvers with the
// hyperparameters that built them, so that a solver can be named and
// configured in a JSON run configuration.
package solver

import (
	"fmt"
	"reflect"

	"github.com/samuelfneumann/onpolicy/internal/typedjson"
	G "gorgonia.org/gorgonia"
)

// Type names a kind of solver in JSON configurations
type Type string

const (
	Adam    Type = "Adam"
	Vanilla Type = "Vanilla"
)

var configTypes = map[string]reflect.Type{
	string(Adam):    reflect.TypeOf(AdamConfig{}),
	string(Vanilla): reflect.TypeOf(VanillaConfig{}),
}

// Config holds the hyperparameters of one kind of solver
type Config interface {
	// Create returns a Gorgonia solver with no accumulated state
	Create() G.Solver

	// ValidType reports whether the Config describes solvers of type t
	ValidType(t Type) bool

	// Validate returns an error if the hyperparameters are illegal
	Validate() error
}

// Solver is a Gorgonia solver along with its Type and Config. It
// encodes to and decodes from JSON as {"Type": ..., "Config": {...}}.
type Solver struct {
	G.Solver `json:"-"`
	Type
	Config
}

func newSolver(t Type, c Config) (*Solver, error) {
	if !c.ValidType(t) {
		return nil, fmt.Errorf("newSolver: %T cannot configure a %v solver",
			c, t)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("newSolver: %v", err)
	}
	return &Solver{Solver: c.Create(), Type: t, Config: c}, nil
}

// Fresh returns a new Solver with the same Config but none of the
// receiver's accumulated state, such as Adam's moment estimates
func (s *Solver) Fresh() *Solver {
	return &Solver{Solver: s.Config.Create(), Type: s.Type, Config: s.Config}
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (s *Solver) UnmarshalJSON(data []byte) error {
	config, name, err := typedjson.Decode(data, configTypes)
	if err != nil {
		return fmt.Errorf("unmarshalJSON: solver: %v", err)
	}

	decoded, err := newSolver(Type(name), config.(Config))
	if err != nil {
		return fmt.Errorf("unmarshalJSON: %v", err)
	}
	*s = *decoded
	return nil
}
