package initwfn

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// GlorotUConfig draws weights from U(-l, l), where
// l = Gain * sqrt(6 / (fanIn + fanOut))
type GlorotUConfig struct {
	Gain float64
	Seed uint64
}

// NewGlorotU returns a Glorot uniform initializer
func NewGlorotU(gain float64, seed uint64) *InitWFn {
	return newInitWFn(GlorotUConfig{Gain: gain, Seed: seed})
}

// Type implements the Config interface
func (g GlorotUConfig) Type() Type { return GlorotU }

// Create implements the Config interface
func (g GlorotUConfig) Create() G.InitWFn {
	src := rand.NewSource(g.Seed)
	return func(dt tensor.Dtype, s ...int) interface{} {
		fanIn, fanOut := fans(s)
		limit := g.Gain * math.Sqrt(6/(fanIn+fanOut))
		return sample(dt, s, distuv.Uniform{Min: -limit, Max: limit,
			Src: src})
	}
}

func (g GlorotUConfig) withSeed(seed uint64) Config {
	g.Seed = seed
	return g
}

// UniformConfig draws weights from U(Low, High)
type UniformConfig struct {
	Low, High float64
	Seed      uint64
}

// NewUniform returns a uniform initializer
func NewUniform(low, high float64, seed uint64) *InitWFn {
	return newInitWFn(UniformConfig{Low: low, High: high, Seed: seed})
}

// Type implements the Config interface
func (u UniformConfig) Type() Type { return Uniform }

// Create implements the Config interface
func (u UniformConfig) Create() G.InitWFn {
	src := rand.NewSource(u.Seed)
	return func(dt tensor.Dtype, s ...int) interface{} {
		return sample(dt, s, distuv.Uniform{Min: u.Low, Max: u.High,
			Src: src})
	}
}

func (u UniformConfig) withSeed(seed uint64) Config {
	u.Seed = seed
	return u
}

// ZeroesConfig initializes all weights to 0
type ZeroesConfig struct{}

// NewZeroes returns a zero initializer
func NewZeroes() *InitWFn { return newInitWFn(ZeroesConfig{}) }

// Type implements the Config interface
func (z ZeroesConfig) Type() Type { return Zeroes }

// Create implements the Config interface
func (z ZeroesConfig) Create() G.InitWFn { return G.Zeroes() }

// fans returns the fan in and fan out of a weight tensor of shape s
func fans(s []int) (float64, float64) {
	switch len(s) {
	case 0:
		return 1, 1
	case 1:
		return float64(s[0]), float64(s[0])
	}

	receptive := 1
	for _, d := range s[2:] {
		receptive *= d
	}
	return float64(s[0] * receptive), float64(s[1] * receptive)
}

func sample(dt tensor.Dtype, s []int, dist distuv.Uniform) interface{} {
	size := tensor.Shape(s).TotalSize()

	switch dt {
	case tensor.Float32:
		retVal := make([]float32, size)
		for i := range retVal {
			retVal[i] = float32(dist.Rand())
		}
		return retVal

	case tensor.Float64:
		retVal := make([]float64, size)
		for i := range retVal {
			retVal[i] = dist.Rand()
		}
		return retVal
	}
	panic("sample: only float32 and float64 weights are supported")
}
