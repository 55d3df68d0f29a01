package agent

import (
	"fmt"
	"reflect"

	"github.com/samuelfneumann/onpolicy/environment"
	"github.com/samuelfneumann/onpolicy/internal/typedjson"
)

// Config describes how to construct an Algorithm
type Config interface {
	CreateAgent(env environment.Environment, seed uint64) (Algorithm,
		error)

	// ValidAgent returns whether a was constructed from a Config of
	// this kind
	ValidAgent(a Algorithm) bool

	Validate() error
	Type() Type
}

// Type names a concrete Config so that it can be decoded from a
// TypedConfig
type Type string

const (
	CategoricalActorCriticLinear Type = "CategoricalActorCritic-Linear"
)

// registeredTypes maps each Type to its concrete Config. Packages
// implementing an Algorithm register their Config in an init function,
// which keeps this package free of imports on them.
var registeredTypes = make(map[string]reflect.Type)

// Register associates agentType with the concrete type of config.
// Register panics if agentType is already registered to another type.
func Register(agentType Type, config Config) {
	ty := reflect.TypeOf(config)
	if prev, ok := registeredTypes[string(agentType)]; ok && prev != ty {
		panic(fmt.Sprintf("register: %v already registered to %v",
			agentType, prev))
	}
	registeredTypes[string(agentType)] = ty
}

// Registered returns whether agentType has been registered
func Registered(agentType Type) bool {
	_, ok := registeredTypes[string(agentType)]
	return ok
}

// RegisteredTypes returns the registered Types in sorted order
func RegisteredTypes() []Type {
	names := typedjson.Names(registeredTypes)
	types := make([]Type, len(names))
	for i, name := range names {
		types[i] = Type(name)
	}
	return types
}
