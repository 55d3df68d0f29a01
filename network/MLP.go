package network

import (
	"bytes"
	"encoding/gob"
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// MLP implements a multi-layered perceptron. A final linear layer with
// a bias unit is always added so that the network predicts Outputs()
// values for each sample in the batch.
type MLP struct {
	g          *G.ExprGraph
	layers     []*fcLayer
	input      *G.Node
	numOutputs int
	numInputs  int
	batchSize  int

	// Data needed for cloning and gobbing
	hiddenSizes []int
	biases      []bool
	activations []*Activation

	learnables G.Nodes
	model      []G.ValueGrad

	prediction *G.Node
	predVal    *G.Value
}

// NewMLP creates and returns a new multi-layered perceptron with
// outputs output nodes. The graph parameter g is populated with the
// MLP.
//
// The function works such that for index i, hiddenSizes[i] is the
// number of nodes in hidden layer i; biases[i] is true if the
// hidden layer will contain a bias unit and false otherwise; and
// activations[i] is the activation function for hidden layer i.
// Weights are initialized with init.
func NewMLP(features, batch, outputs int, g *G.ExprGraph,
	hiddenSizes []int, biases []bool, init G.InitWFn,
	activations []*Activation) (*MLP, error) {
	if len(hiddenSizes) != len(activations) {
		msg := "newMLP: invalid number of activations" +
			"\n\twant(%d)\n\thave(%d)"
		return nil, fmt.Errorf(msg, len(hiddenSizes), len(activations))
	}
	if len(hiddenSizes) != len(biases) {
		msg := "newMLP: invalid number of biases\n\twant(%d)" +
			"\n\thave(%d)"
		return nil, fmt.Errorf(msg, len(hiddenSizes), len(biases))
	}
	if features <= 0 || batch <= 0 || outputs <= 0 {
		return nil, fmt.Errorf("newMLP: features (%d), batch (%d), and "+
			"outputs (%d) must be positive", features, batch, outputs)
	}

	input := G.NewMatrix(g, tensor.Float64, G.WithShape(batch, features),
		G.WithName("input"), G.WithInit(G.Zeroes()))

	layers := make([]*fcLayer, 0, len(hiddenSizes)+1)
	in := features
	for i := range hiddenSizes {
		layers = append(layers, newFCLayer(g, in, hiddenSizes[i], biases[i],
			activations[i], init, i))
		in = hiddenSizes[i]
	}
	layers = append(layers, newFCLayer(g, in, outputs, true, Identity(),
		init, len(hiddenSizes)))

	net := &MLP{
		g:           g,
		layers:      layers,
		input:       input,
		numOutputs:  outputs,
		numInputs:   features,
		batchSize:   batch,
		hiddenSizes: hiddenSizes,
		biases:      biases,
		activations: activations,
	}
	if err := net.fwd(); err != nil {
		return nil, fmt.Errorf("newMLP: could not compute forward pass: %v",
			err)
	}

	return net, nil
}

// NewSingleHeadMLP returns an MLP with a single output node, such as
// a state value function
func NewSingleHeadMLP(features, batch int, g *G.ExprGraph,
	hiddenSizes []int, biases []bool, init G.InitWFn,
	activations []*Activation) (*MLP, error) {
	return NewMLP(features, batch, 1, g, hiddenSizes, biases, init,
		activations)
}

// fwd adds the forward pass of the MLP to its graph
func (m *MLP) fwd() error {
	pred := m.input
	var err error
	for i, l := range m.layers {
		if pred, err = l.fwd(pred); err != nil {
			return fmt.Errorf("fwd: could not compute forward pass of "+
				"layer %v: %v", i, err)
		}
	}

	m.prediction = pred
	m.predVal = new(G.Value)
	G.Read(m.prediction, m.predVal)
	return nil
}

// Graph returns the computational graph of the MLP
func (m *MLP) Graph() *G.ExprGraph {
	return m.g
}

// CloneWithBatch clones the MLP to a new computational graph with a
// new input batch size. Weights are copied to the clone.
func (m *MLP) CloneWithBatch(batchSize int) (NeuralNet, error) {
	g := G.NewGraph()
	clone, err := NewMLP(m.numInputs, batchSize, m.numOutputs, g,
		m.hiddenSizes, m.biases, G.Zeroes(), m.activations)
	if err != nil {
		return nil, fmt.Errorf("cloneWithBatch: %v", err)
	}

	if err := clone.Set(m); err != nil {
		return nil, fmt.Errorf("cloneWithBatch: could not set weights: %v",
			err)
	}
	return clone, nil
}

// BatchSize returns the batch size of inputs to the network
func (m *MLP) BatchSize() int {
	return m.batchSize
}

// Features returns the number of features in a single input sample
func (m *MLP) Features() int {
	return m.numInputs
}

// Outputs returns the number of outputs per sample
func (m *MLP) Outputs() int {
	return m.numOutputs
}

// SetInput sets the value of the input node before running the forward
// pass. Inputs must be given in row major order.
func (m *MLP) SetInput(input []float64) error {
	if len(input) != m.numInputs*m.batchSize {
		return fmt.Errorf("setInput: invalid number of inputs\n\twant(%v)"+
			"\n\thave(%v)", m.numInputs*m.batchSize, len(input))
	}
	inputTensor := tensor.New(
		tensor.WithBacking(input),
		tensor.WithShape(m.input.Shape()...),
	)
	return G.Let(m.input, inputTensor)
}

// Set sets the weights of the MLP to be equal to the weights of
// source
func (m *MLP) Set(source NeuralNet) error {
	sourceNodes := source.Learnables()
	nodes := m.Learnables()
	if len(sourceNodes) != len(nodes) {
		return fmt.Errorf("set: incompatible networks\n\twant(%d "+
			"learnables)\n\thave(%d learnables)", len(nodes),
			len(sourceNodes))
	}

	for i, destLearnable := range nodes {
		sourceLearnable := sourceNodes[i].Clone()
		err := G.Let(destLearnable, sourceLearnable.(*G.Node).Value())
		if err != nil {
			return fmt.Errorf("set: %v", err)
		}
	}
	return nil
}

// Learnables returns the learnable nodes of the MLP. Each layer
// contributes its weights followed by its bias.
func (m *MLP) Learnables() G.Nodes {
	if m.learnables == nil {
		learnables := make(G.Nodes, 0, 2*len(m.layers))
		for _, l := range m.layers {
			learnables = append(learnables, l.learnables()...)
		}
		m.learnables = learnables
	}
	return m.learnables
}

// Model returns the learnables nodes with their gradients
func (m *MLP) Model() []G.ValueGrad {
	if m.model == nil {
		model := make([]G.ValueGrad, 0, 2*len(m.layers))
		for _, node := range m.Learnables() {
			model = append(model, node)
		}
		m.model = model
	}
	return m.model
}

// Output returns the output of the MLP after a VM has run its graph
func (m *MLP) Output() G.Value {
	if *m.predVal == nil {
		return m.prediction.Value()
	}
	return *m.predVal
}

// Prediction returns the node of the computational graph that stores
// the output of the MLP
func (m *MLP) Prediction() *G.Node {
	return m.prediction
}

// Weights returns a copy of the raw weights of each learnable node in
// the same order as Learnables()
func (m *MLP) Weights() [][]float64 {
	learnables := m.Learnables()
	weights := make([][]float64, len(learnables))
	for i, node := range learnables {
		data := node.Value().Data().([]float64)
		weights[i] = append([]float64(nil), data...)
	}
	return weights
}

// SetWeights sets the raw weights of each learnable node, given in the
// same order as Learnables()
func (m *MLP) SetWeights(weights [][]float64) error {
	learnables := m.Learnables()
	if len(weights) != len(learnables) {
		return fmt.Errorf("setWeights: invalid number of weights "+
			"\n\twant(%d)\n\thave(%d)", len(learnables), len(weights))
	}

	for i, node := range learnables {
		if len(weights[i]) != node.Shape().TotalSize() {
			return fmt.Errorf("setWeights: invalid size for %v \n\twant(%d)"+
				"\n\thave(%d)", node.Name(), node.Shape().TotalSize(),
				len(weights[i]))
		}
		backing := append([]float64(nil), weights[i]...)
		t := tensor.New(tensor.WithShape(node.Shape()...),
			tensor.WithBacking(backing))
		if err := G.Let(node, t); err != nil {
			return fmt.Errorf("setWeights: %v", err)
		}
	}
	return nil
}

type mlpGob struct {
	Features, Batch, Outputs int
	HiddenSizes              []int
	Biases                   []bool
	Activations              []*Activation
	Weights                  [][]float64
}

// GobEncode implements the gob.GobEncoder interface
func (m *MLP) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	err := enc.Encode(mlpGob{
		Features:    m.numInputs,
		Batch:       m.batchSize,
		Outputs:     m.numOutputs,
		HiddenSizes: m.hiddenSizes,
		Biases:      m.biases,
		Activations: m.activations,
		Weights:     m.Weights(),
	})
	if err != nil {
		return nil, fmt.Errorf("gobEncode: %v", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface. The decoded MLP
// is built on a new computational graph.
func (m *MLP) GobDecode(in []byte) error {
	var enc mlpGob
	if err := gob.NewDecoder(bytes.NewReader(in)).Decode(&enc); err != nil {
		return fmt.Errorf("gobDecode: %v", err)
	}

	net, err := NewMLP(enc.Features, enc.Batch, enc.Outputs, G.NewGraph(),
		enc.HiddenSizes, enc.Biases, G.Zeroes(), enc.Activations)
	if err != nil {
		return fmt.Errorf("gobDecode: could not construct MLP: %v", err)
	}
	if err := net.SetWeights(enc.Weights); err != nil {
		return fmt.Errorf("gobDecode: %v", err)
	}

	*m = *net
	return nil
}
