// Package initwfn names Gorgonia weight initializers so that network
// initialization can be chosen and seeded from a JSON run
// configuration.
package initwfn

import (
	"fmt"
	"reflect"

	"github.com/samuelfneumann/onpolicy/internal/typedjson"
	G "gorgonia.org/gorgonia"
)

// Type names a kind of weight initializer in JSON configurations
type Type string

const (
	GlorotU Type = "GlorotU"
	Uniform Type = "Uniform"
	Zeroes  Type = "Zeroes"
)

var configTypes = map[string]reflect.Type{
	string(GlorotU): reflect.TypeOf(GlorotUConfig{}),
	string(Uniform): reflect.TypeOf(UniformConfig{}),
	string(Zeroes):  reflect.TypeOf(ZeroesConfig{}),
}

// Config holds the parameters of one kind of weight initializer
type Config interface {
	Create() G.InitWFn
	Type() Type
}

// seeder is a Config which draws random weights
type seeder interface {
	Config
	withSeed(uint64) Config
}

// InitWFn is a Gorgonia weight initializer along with the Config that
// built it. It encodes to and decodes from JSON as
// {"Type": ..., "Config": {...}}.
type InitWFn struct {
	initWFn G.InitWFn
	Type
	Config
}

func newInitWFn(c Config) *InitWFn {
	return &InitWFn{initWFn: c.Create(), Type: c.Type(), Config: c}
}

// InitWFn returns the Gorgonia weight initializer
func (i *InitWFn) InitWFn() G.InitWFn {
	return i.initWFn
}

func (i *InitWFn) String() string {
	return fmt.Sprintf("%v%+v", i.Type, i.Config)
}

// Reseed returns an InitWFn with the receiver's Config drawing from a
// new source seeded with seed. Deterministic initializers are returned
// as is.
func (i *InitWFn) Reseed(seed uint64) *InitWFn {
	if s, ok := i.Config.(seeder); ok {
		return newInitWFn(s.withSeed(seed))
	}
	return i
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (i *InitWFn) UnmarshalJSON(data []byte) error {
	config, _, err := typedjson.Decode(data, configTypes)
	if err != nil {
		return fmt.Errorf("unmarshalJSON: weight initializer: %v", err)
	}
	*i = *newInitWFn(config.(Config))
	return nil
}
