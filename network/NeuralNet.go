// Package network implements feed forward neural networks built on
// Gorgonia computational graphs
package network

import (
	"gonum.org/v1/gonum/floats"
	G "gorgonia.org/gorgonia"
)

// Parameterized holds learnable weight tensors
type Parameterized interface {
	// Learnables returns the weight nodes in a fixed order
	Learnables() G.Nodes

	// Model returns the Learnables with their gradients, for use by a
	// Gorgonia Solver
	Model() []G.ValueGrad

	// Weights returns a copy of the backing data of each Learnable
	Weights() [][]float64
	SetWeights([][]float64) error
}

// NeuralNet is a neural network whose forward pass lives in a
// Gorgonia computational graph. A VM must be constructed on Graph()
// and run after SetInput() for Output() to be populated.
type NeuralNet interface {
	Parameterized

	Graph() *G.ExprGraph
	CloneWithBatch(int) (NeuralNet, error)
	BatchSize() int
	Features() int
	Outputs() int
	SetInput([]float64) error
	Set(NeuralNet) error
	Output() G.Value
	Prediction() *G.Node
}

// WeightNorms returns the L2 norm of each weight tensor of p, keyed by
// node name with prefix prepended
func WeightNorms(p Parameterized, prefix string) map[string]float64 {
	nodes := p.Learnables()
	norms := make(map[string]float64, len(nodes))
	for i, w := range p.Weights() {
		norms[prefix+nodes[i].Name()] = floats.Norm(w, 2)
	}
	return norms
}
