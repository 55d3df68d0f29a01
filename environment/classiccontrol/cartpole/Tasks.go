package cartpole

import (
	"fmt"
	"math"

	env "github.com/samuelfneumann/onpolicy/environment"
	ts "github.com/samuelfneumann/onpolicy/timestep"
	"github.com/samuelfneumann/onpolicy/utils/floatutils"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

// FailAngle is the default angle, in radians, past which the pole has
// fallen
const FailAngle float64 = 12 * 2 * math.Pi / 360

const angleIndex = 2

// Balance is the task of keeping the pole upright. Each step the pole
// stays within ±failAngle of vertical yields +1, and the step on which
// it falls yields -1 and ends the episode in a terminal state. Episodes
// are otherwise cut off as a timeout after episodeSteps steps.
type Balance struct {
	env.Starter
	env.Enders
	failAngle float64
}

// NewBalance returns a new Balance task
func NewBalance(s env.Starter, episodeSteps int,
	failAngle float64) (*Balance, error) {
	if failAngle <= 0 || failAngle > AngleBounds {
		return nil, fmt.Errorf("newBalance: fail angle %v outside (0, %v]",
			failAngle, AngleBounds)
	}

	fallen, err := env.NewIntervalLimit(
		[]r1.Interval{floatutils.Symmetric(failAngle)},
		[]int{angleIndex},
		ts.TerminalStateReached,
	)
	if err != nil {
		return nil, fmt.Errorf("newBalance: %v", err)
	}

	enders := env.Enders{fallen, env.NewStepLimit(episodeSteps)}
	return &Balance{s, enders, failAngle}, nil
}

// GetReward returns +1 if the pole is balanced in nextState and -1
// otherwise
func (b *Balance) GetReward(_, _, nextState mat.Vector) float64 {
	if b.balanced(nextState.AtVec(angleIndex)) {
		return 1.0
	}
	return -1.0
}

// AtGoal returns whether the pole is balanced in state
func (b *Balance) AtGoal(state mat.Matrix) bool {
	return b.balanced(state.At(angleIndex, 0))
}

func (b *Balance) balanced(angle float64) bool {
	return math.Abs(angle) < b.failAngle
}

// Min returns the minimum reward
func (b *Balance) Min() float64 { return -1.0 }

// Max returns the maximum reward
func (b *Balance) Max() float64 { return 1.0 }
