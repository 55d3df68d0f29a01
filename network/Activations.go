package network

import (
	"encoding/json"
	"fmt"
	"sort"

	G "gorgonia.org/gorgonia"
)

// Activation is a named, element-wise activation function. Activations
// are encoded by name in JSON configurations and gob checkpoints.
type Activation struct {
	name string
	f    func(x *G.Node) (*G.Node, error)
}

const identityName = "identity"

// activations maps names to the graph operation they apply. A nil
// operation is the identity.
var activations = map[string]func(*G.Node) (*G.Node, error){
	identityName: nil,
	"relu":       G.Rectify,
	"tanh":       G.Tanh,
	"sigmoid":    G.Sigmoid,
}

// NewActivation returns the Activation with the given name
func NewActivation(name string) (*Activation, error) {
	f, ok := activations[name]
	if !ok {
		names := make([]string, 0, len(activations))
		for n := range activations {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("newActivation: unknown activation %q, "+
			"have %v", name, names)
	}
	return &Activation{name, f}, nil
}

func mustActivation(name string) *Activation {
	a, err := NewActivation(name)
	if err != nil {
		panic(err)
	}
	return a
}

// Identity returns the identity Activation
func Identity() *Activation { return mustActivation(identityName) }

// ReLU returns the rectified linear Activation
func ReLU() *Activation { return mustActivation("relu") }

// TanH returns the hyperbolic tangent Activation
func TanH() *Activation { return mustActivation("tanh") }

// Sigmoid returns the logistic Activation
func Sigmoid() *Activation { return mustActivation("sigmoid") }

func (a *Activation) fwd(x *G.Node) (*G.Node, error) {
	if a.f == nil {
		return x, nil
	}
	return a.f(x)
}

func (a *Activation) String() string {
	return a.name
}

// IsIdentity returns whether the Activation is the identity
func (a *Activation) IsIdentity() bool {
	return a.name == identityName
}

// MarshalJSON implements the json.Marshaler interface
func (a *Activation) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.name)
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (a *Activation) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("unmarshalJSON: %v", err)
	}
	return a.GobDecode([]byte(name))
}

// GobEncode implements the gob.GobEncoder interface
func (a *Activation) GobEncode() ([]byte, error) {
	return []byte(a.name), nil
}

// GobDecode implements the gob.GobDecoder interface
func (a *Activation) GobDecode(encoded []byte) error {
	decoded, err := NewActivation(string(encoded))
	if err != nil {
		return fmt.Errorf("gobDecode: %v", err)
	}
	*a = *decoded
	return nil
}
