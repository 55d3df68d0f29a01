// Package gae implements functionality for storing a generalized
// advantage estimate buffer
package gae

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Batch is the experience stored in a full Buffer. Observations and
// actions are stored in row major order.
type Batch struct {
	Obs        []float64
	Actions    []float64
	Advantages []float64
	Returns    []float64
}

// Buffer implements a forward view generalized advantage estimate -
// GAE(λ) - buffer following https://arxiv.org/abs/1506.02438.
//
// Experience is stored with Store, and each trajectory (or trajectory
// segment) is closed with FinishPath before the Buffer is emptied with
// Get.
type Buffer struct {
	obsSize    int // Size of state observations
	actionSize int // Number of action dimensions
	maxSize    int // Max buffer size

	currentPos   int // Current position in the buffer
	pathStartIdx int // Position in the buffer where current trajectory starts

	lambda float64 // λ for GAE(λ) calculation
	gamma  float64 // Discount factor ℽ

	obsBuffer []float64
	actBuffer []float64
	advBuffer []float64
	rewBuffer []float64
	retBuffer []float64
	valBuffer []float64
}

// New creates and returns a new GAE(λ) buffer
func New(obsDim, actDim, size int, lambda, gamma float64) (*Buffer, error) {
	if obsDim <= 0 || actDim <= 0 || size <= 0 {
		return nil, fmt.Errorf("new: observation dimension (%d), action "+
			"dimension (%d), and size (%d) must be positive", obsDim, actDim,
			size)
	}
	if lambda < 0 || lambda > 1 {
		return nil, fmt.Errorf("new: λ = %v ∉ [0, 1]", lambda)
	}

	return &Buffer{
		obsSize:    obsDim,
		actionSize: actDim,
		maxSize:    size,
		lambda:     lambda,
		gamma:      gamma,
		obsBuffer:  make([]float64, size*obsDim),
		actBuffer:  make([]float64, size*actDim),
		advBuffer:  make([]float64, size),
		rewBuffer:  make([]float64, size),
		retBuffer:  make([]float64, size),
		valBuffer:  make([]float64, size),
	}, nil
}

// Len returns the number of transitions stored in the Buffer
func (v *Buffer) Len() int {
	return v.currentPos
}

// Cap returns the capacity of the Buffer
func (v *Buffer) Cap() int {
	return v.maxSize
}

// Full returns whether the Buffer is at capacity
func (v *Buffer) Full() bool {
	return v.currentPos == v.maxSize
}

// PathLen returns the number of transitions stored for the trajectory
// which has not yet been finished
func (v *Buffer) PathLen() int {
	return v.currentPos - v.pathStartIdx
}

// Store stores a single timestep state, action, reward, and value to
// the Buffer.
func (v *Buffer) Store(obs, act []float64, rew, val float64) error {
	if v.currentPos >= v.maxSize {
		return fmt.Errorf("store: cannot add new transition, buffer at " +
			"maximum capacity")
	}
	if len(obs) != v.obsSize {
		return fmt.Errorf("store: illegal obs length \n\twant(%v)\n\thave(%v)",
			v.obsSize, len(obs))
	}
	if len(act) != v.actionSize {
		return fmt.Errorf("store: illegal act length \n\twant(%v)\n\thave(%v)",
			v.actionSize, len(act))
	}

	start := v.currentPos * v.obsSize
	copy(v.obsBuffer[start:start+v.obsSize], obs)

	start = v.currentPos * v.actionSize
	copy(v.actBuffer[start:start+v.actionSize], act)

	v.rewBuffer[v.currentPos] = rew
	v.valBuffer[v.currentPos] = val
	v.currentPos++
	return nil
}

// FinishPath computes advantage estimates using GAE(λ) and
// rewards-to-go for each state of the current trajectory. This should
// be called at the end of a trajectory or when one gets cut off by an
// update.
//
// The lastVal argument should be 0 if the trajectory ended because
// the agent reached a terminal state, and otherwise it should be
// v(s), the value estimate of the last state reached. This bootstraps
// the rewards-to-go and advantages for timesteps beyond the episode
// horizon or update cutoff.
func (v *Buffer) FinishPath(lastVal float64) {
	start := v.pathStartIdx
	stop := v.currentPos
	if start == stop {
		return
	}

	n := stop - start
	rews := make([]float64, n+1)
	copy(rews, v.rewBuffer[start:stop])
	rews[n] = lastVal

	vals := make([]float64, n+1)
	copy(vals, v.valBuffer[start:stop])
	vals[n] = lastVal

	// δₜ = rₜ + ℽ v(sₜ₊₁) - v(sₜ)
	stateVals := mat.NewVecDense(n, vals[:n])
	nextStateVals := mat.NewVecDense(n, vals[1:])
	rewards := mat.NewVecDense(n, rews[:n])

	deltas := mat.NewVecDense(n, nil)
	deltas.AddScaledVec(rewards, v.gamma, nextStateVals)
	deltas.SubVec(deltas, stateVals)

	copy(v.advBuffer[start:stop], discountCumSum(deltas, v.gamma*v.lambda))

	rewsToGo := discountCumSum(mat.NewVecDense(n+1, rews), v.gamma)
	copy(v.retBuffer[start:stop], rewsToGo[:n])

	v.pathStartIdx = v.currentPos
}

// Get returns the experience stored in the Buffer and empties it.
// Advantages are first standardized to mean 0 and standard deviation
// 1. The Buffer must be full, and all paths must have been finished.
func (v *Buffer) Get() (Batch, error) {
	if v.currentPos != v.maxSize {
		return Batch{}, fmt.Errorf("get: buffer must be full before " +
			"sampling")
	}
	if v.pathStartIdx != v.currentPos {
		return Batch{}, fmt.Errorf("get: unfinished path of length %d",
			v.PathLen())
	}

	v.Reset()

	adv := append([]float64(nil), v.advBuffer...)
	mean, std := stat.MeanStdDev(adv, nil)
	if len(adv) < 2 {
		std = 0
	}
	floats.AddConst(-mean, adv)
	floats.Scale(1/(std+1e-8), adv)

	return Batch{
		Obs:        append([]float64(nil), v.obsBuffer...),
		Actions:    append([]float64(nil), v.actBuffer...),
		Advantages: adv,
		Returns:    append([]float64(nil), v.retBuffer...),
	}, nil
}

// Reset empties the Buffer
func (v *Buffer) Reset() {
	v.currentPos = 0
	v.pathStartIdx = 0
}

// discountCumSum computes and returns the discounted cumulative sum
// of all elements of a vector. Given a vector v = [x0 x1 x2 ... xN]
// and discount ℽ, this function computes and returns:
//
//	[
//		x0 + ℽ x1 + ℽ^2 x2 + ℽ^3 x3 + ... + ℽ^N xN
//		x1 + ℽ^1 x2 + ℽ^2 x3 + ... + ℽ^(N-1) xN
//		...
//		xN
//	]
func discountCumSum(x *mat.VecDense, discount float64) []float64 {
	cumSums := make([]float64, x.Len())

	var running float64
	for i := x.Len() - 1; i >= 0; i-- {
		running = x.AtVec(i) + discount*running
		cumSums[i] = running
	}
	return cumSums
}
