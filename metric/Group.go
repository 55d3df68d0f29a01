package metric

import (
	"fmt"
)

// Group is a gob encodable collection of Metrics. Decoding a Group
// restores the state of each of its Metrics in place.
type Group struct {
	Metrics []Metric
}

// NewGroup returns a new Group of metrics
func NewGroup(metrics ...Metric) *Group {
	return &Group{Metrics: metrics}
}

type groupGob struct {
	Names  []string
	States [][]byte
}

// GobEncode implements the gob.GobEncoder interface
func (g *Group) GobEncode() ([]byte, error) {
	enc := groupGob{
		Names:  make([]string, len(g.Metrics)),
		States: make([][]byte, len(g.Metrics)),
	}
	for i, m := range g.Metrics {
		state, err := m.GobEncode()
		if err != nil {
			return nil, fmt.Errorf("gobEncode: could not encode %v: %v",
				m.Name(), err)
		}
		enc.Names[i] = m.Name()
		enc.States[i] = state
	}
	return encode(enc)
}

// GobDecode implements the gob.GobDecoder interface. The encoded
// Group must hold the same metrics, in the same order, as g.
func (g *Group) GobDecode(in []byte) error {
	var dec groupGob
	if err := decode(in, &dec); err != nil {
		return err
	}

	if len(dec.Names) != len(g.Metrics) {
		return fmt.Errorf("gobDecode: number of metrics \n\twant(%d)"+
			"\n\thave(%d)", len(g.Metrics), len(dec.Names))
	}
	for i, m := range g.Metrics {
		if dec.Names[i] != m.Name() {
			return fmt.Errorf("gobDecode: metric %d \n\twant(%v)\n\thave(%v)",
				i, m.Name(), dec.Names[i])
		}
		if err := m.GobDecode(dec.States[i]); err != nil {
			return fmt.Errorf("gobDecode: could not decode %v: %v", m.Name(),
				err)
		}
	}
	return nil
}
