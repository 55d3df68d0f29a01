package gridworld

import (
	"fmt"

	"github.com/samuelfneumann/onpolicy/environment"
	"gonum.org/v1/gonum/mat"
)

// SingleStart always starts the agent at the same position
type SingleStart struct {
	state *mat.VecDense
}

// NewSingleStart returns a Starter which always starts at (x, y) in a
// GridWorld with r rows and c columns
func NewSingleStart(x, y, r, c int) (*SingleStart, error) {
	if x < 0 || x >= c {
		return nil, fmt.Errorf("newSingleStart: x = %d outside [0, %d)", x, c)
	} else if y < 0 || y >= r {
		return nil, fmt.Errorf("newSingleStart: y = %d outside [0, %d)", y, r)
	}

	return &SingleStart{cToV(x, y, r, c)}, nil
}

// Start returns the starting state
func (s *SingleStart) Start() *mat.VecDense {
	return mat.VecDenseCopyOf(s.state)
}

// UniformStart starts the agent uniformly at random in any cell
type UniformStart struct {
	cells *environment.CategoricalStarter
	r, c  int
}

// NewUniformStart returns a Starter which samples starting positions
// uniformly over all cells of a GridWorld with r rows and c columns
func NewUniformStart(r, c int, seed uint64) (*UniformStart, error) {
	cells, err := environment.NewCategoricalStarter([]int{c, r}, seed)
	if err != nil {
		return nil, fmt.Errorf("newUniformStart: %v", err)
	}
	return &UniformStart{cells, r, c}, nil
}

// Start returns a starting state
func (u *UniformStart) Start() *mat.VecDense {
	coords := u.cells.Start()
	return cToV(int(coords.AtVec(0)), int(coords.AtVec(1)), u.r, u.c)
}
