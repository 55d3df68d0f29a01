package network

import (
	"bytes"
	"encoding/gob"
	"testing"

	"gonum.org/v1/gonum/floats"
	G "gorgonia.org/gorgonia"
)

func newTestMLP(t *testing.T, batch int) *MLP {
	t.Helper()
	net, err := NewSingleHeadMLP(3, batch, G.NewGraph(), []int{4},
		[]bool{true}, G.Ones(), []*Activation{ReLU()})
	if err != nil {
		t.Fatal(err)
	}
	return net
}

func predict(t *testing.T, net NeuralNet, input []float64) []float64 {
	t.Helper()
	vm := G.NewTapeMachine(net.Graph())
	defer vm.Close()

	if err := net.SetInput(input); err != nil {
		t.Fatal(err)
	}
	if err := vm.RunAll(); err != nil {
		t.Fatal(err)
	}
	return append([]float64(nil), net.Output().Data().([]float64)...)
}

func TestMLPForward(t *testing.T) {
	net := newTestMLP(t, 2)

	// With all weights 1 and biases 0, each hidden unit is the sum of
	// the (positive) inputs and the output is 4 times that sum
	out := predict(t, net, []float64{1, 2, 3, 0.5, 0.5, 0.5})
	want := []float64{24, 6}
	if !floats.EqualApprox(out, want, 1e-10) {
		t.Errorf("fwd: want(%v) have(%v)", want, out)
	}
}

func TestMLPCloneWithBatch(t *testing.T) {
	net := newTestMLP(t, 4)
	clone, err := net.CloneWithBatch(1)
	if err != nil {
		t.Fatal(err)
	}
	if clone.BatchSize() != 1 || clone.Features() != 3 {
		t.Errorf("clone: have batch %d features %d", clone.BatchSize(),
			clone.Features())
	}

	out := predict(t, clone, []float64{1, 1, 1})
	if out[0] != 12 {
		t.Errorf("clone: want(12) have(%v)", out[0])
	}
}

func TestMLPSetAndGob(t *testing.T) {
	src := newTestMLP(t, 1)
	weights := src.Weights()
	for i := range weights {
		for j := range weights[i] {
			weights[i][j] = 0.5
		}
	}
	if err := src.SetWeights(weights); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(src); err != nil {
		t.Fatal(err)
	}
	dest := &MLP{}
	if err := gob.NewDecoder(&buf).Decode(dest); err != nil {
		t.Fatal(err)
	}

	in := []float64{1, 2, 3}
	want := predict(t, src, in)
	have := predict(t, dest, in)
	if !floats.EqualApprox(want, have, 1e-10) {
		t.Errorf("gob: want(%v) have(%v)", want, have)
	}

	other := newTestMLP(t, 1)
	if err := other.Set(dest); err != nil {
		t.Fatal(err)
	}
	if have := predict(t, other, in); !floats.EqualApprox(want, have, 1e-10) {
		t.Errorf("set: want(%v) have(%v)", want, have)
	}
}

func TestActivationJSON(t *testing.T) {
	a := &Activation{}
	if err := a.UnmarshalJSON([]byte(`"tanh"`)); err != nil {
		t.Fatal(err)
	}
	if a.String() != "tanh" {
		t.Errorf("unmarshalJSON: want(tanh) have(%v)", a)
	}
	if err := a.UnmarshalJSON([]byte(`"softsign"`)); err == nil {
		t.Error("unmarshalJSON: want error for unknown activation")
	}
}

func TestWeightNorms(t *testing.T) {
	net := newTestMLP(t, 1)
	norms := WeightNorms(net, "critic/")
	if len(norms) != len(net.Learnables()) {
		t.Fatalf("weightNorms: want %d norms have %v",
			len(net.Learnables()), norms)
	}
	for i, w := range net.Weights() {
		name := "critic/" + net.Learnables()[i].Name()
		norm, ok := norms[name]
		if !ok {
			t.Errorf("weightNorms: missing %v", name)
			continue
		}
		if want := floats.Norm(w, 2); norm != want {
			t.Errorf("weightNorms: %v want(%v) have(%v)", name, want, norm)
		}
	}
}
