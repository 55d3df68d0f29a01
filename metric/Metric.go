// Package metric implements streaming metrics of agent-environment
// interaction
package metric

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"log"
	"strings"

	ts "github.com/samuelfneumann/onpolicy/timestep"
	"gonum.org/v1/gonum/stat"
)

// Metric tracks some statistic of the TimeSteps produced by an
// environment. Metrics are gob encodable so that they can be
// checkpointed and restored.
type Metric interface {
	Name() string
	Track(t ts.TimeStep)
	Result() float64
	Reset()
	gob.GobEncoder
	gob.GobDecoder
}

// window stores the most recent values of some statistic
type window struct {
	Values []float64
	Size   int
	Next   int
}

func newWindow(size int) window {
	return window{Values: make([]float64, 0, size), Size: size}
}

func (w *window) add(v float64) {
	if len(w.Values) < w.Size {
		w.Values = append(w.Values, v)
	} else {
		w.Values[w.Next] = v
	}
	w.Next = (w.Next + 1) % w.Size
}

func (w *window) mean() float64 {
	if len(w.Values) == 0 {
		return 0
	}
	return stat.Mean(w.Values, nil)
}

func (w *window) reset() {
	w.Values = w.Values[:0]
	w.Next = 0
}

// AverageReturn tracks the average return of the most recent episodes.
// The reward of a first timestep does not count towards the return.
type AverageReturn struct {
	returns window
	current float64
}

// NewAverageReturn returns a new AverageReturn averaging over the
// last bufferSize episodes
func NewAverageReturn(bufferSize int) *AverageReturn {
	if bufferSize <= 0 {
		panic(fmt.Sprintf("newAverageReturn: buffer size %d must be "+
			"positive", bufferSize))
	}
	return &AverageReturn{returns: newWindow(bufferSize)}
}

// Name returns the name of the metric
func (a *AverageReturn) Name() string { return "AverageReturn" }

// Track tracks the rewards of t
func (a *AverageReturn) Track(t ts.TimeStep) {
	if t.First() {
		a.current = 0
		return
	}

	a.current += t.Reward
	if t.Last() {
		a.returns.add(a.current)
		a.current = 0
	}
}

// Result returns the average return of the tracked episodes
func (a *AverageReturn) Result() float64 { return a.returns.mean() }

// Reset forgets all tracked episodes
func (a *AverageReturn) Reset() {
	a.returns.reset()
	a.current = 0
}

// GobEncode implements the gob.GobEncoder interface
func (a *AverageReturn) GobEncode() ([]byte, error) {
	return encode(a.returns, a.current)
}

// GobDecode implements the gob.GobDecoder interface
func (a *AverageReturn) GobDecode(in []byte) error {
	var returns window
	var current float64
	if err := decode(in, &returns, &current); err != nil {
		return err
	}
	a.returns, a.current = returns, current
	return nil
}

// AverageEpisodeLength tracks the average length of the most recent
// episodes. First timesteps do not count towards the length.
type AverageEpisodeLength struct {
	lengths window
	current float64
}

// NewAverageEpisodeLength returns a new AverageEpisodeLength averaging
// over the last bufferSize episodes
func NewAverageEpisodeLength(bufferSize int) *AverageEpisodeLength {
	if bufferSize <= 0 {
		panic(fmt.Sprintf("newAverageEpisodeLength: buffer size %d must be "+
			"positive", bufferSize))
	}
	return &AverageEpisodeLength{lengths: newWindow(bufferSize)}
}

// Name returns the name of the metric
func (a *AverageEpisodeLength) Name() string { return "AverageEpisodeLength" }

// Track tracks the length of the episode t belongs to
func (a *AverageEpisodeLength) Track(t ts.TimeStep) {
	if t.First() {
		a.current = 0
		return
	}

	a.current++
	if t.Last() {
		a.lengths.add(a.current)
		a.current = 0
	}
}

// Result returns the average length of the tracked episodes
func (a *AverageEpisodeLength) Result() float64 { return a.lengths.mean() }

// Reset forgets all tracked episodes
func (a *AverageEpisodeLength) Reset() {
	a.lengths.reset()
	a.current = 0
}

// GobEncode implements the gob.GobEncoder interface
func (a *AverageEpisodeLength) GobEncode() ([]byte, error) {
	return encode(a.lengths, a.current)
}

// GobDecode implements the gob.GobDecoder interface
func (a *AverageEpisodeLength) GobDecode(in []byte) error {
	var lengths window
	var current float64
	if err := decode(in, &lengths, &current); err != nil {
		return err
	}
	a.lengths, a.current = lengths, current
	return nil
}

// NumberOfEpisodes counts the number of episodes completed
type NumberOfEpisodes struct {
	count float64
}

// NewNumberOfEpisodes returns a new NumberOfEpisodes
func NewNumberOfEpisodes() *NumberOfEpisodes { return &NumberOfEpisodes{} }

// Name returns the name of the metric
func (n *NumberOfEpisodes) Name() string { return "NumberOfEpisodes" }

// Track counts t if it ends an episode
func (n *NumberOfEpisodes) Track(t ts.TimeStep) {
	if t.Last() {
		n.count++
	}
}

// Result returns the number of episodes completed
func (n *NumberOfEpisodes) Result() float64 { return n.count }

// Reset sets the count to 0
func (n *NumberOfEpisodes) Reset() { n.count = 0 }

// GobEncode implements the gob.GobEncoder interface
func (n *NumberOfEpisodes) GobEncode() ([]byte, error) {
	return encode(n.count)
}

// GobDecode implements the gob.GobDecoder interface
func (n *NumberOfEpisodes) GobDecode(in []byte) error {
	return decode(in, &n.count)
}

// EnvironmentSteps counts the number of environment steps taken.
// Resets, which produce first timesteps, are not counted.
type EnvironmentSteps struct {
	count float64
}

// NewEnvironmentSteps returns a new EnvironmentSteps
func NewEnvironmentSteps() *EnvironmentSteps { return &EnvironmentSteps{} }

// Name returns the name of the metric
func (e *EnvironmentSteps) Name() string { return "EnvironmentSteps" }

// Track counts t unless it is a first timestep
func (e *EnvironmentSteps) Track(t ts.TimeStep) {
	if !t.First() {
		e.count++
	}
}

// Result returns the number of environment steps taken
func (e *EnvironmentSteps) Result() float64 { return e.count }

// Reset sets the count to 0
func (e *EnvironmentSteps) Reset() { e.count = 0 }

// GobEncode implements the gob.GobEncoder interface
func (e *EnvironmentSteps) GobEncode() ([]byte, error) {
	return encode(e.count)
}

// GobDecode implements the gob.GobDecoder interface
func (e *EnvironmentSteps) GobDecode(in []byte) error {
	return decode(in, &e.count)
}

// Log logs the result of each metric on a single line
func Log(logger *log.Logger, metrics []Metric) {
	results := make([]string, len(metrics))
	for i, m := range metrics {
		results[i] = fmt.Sprintf("%v = %v", m.Name(), m.Result())
	}
	logger.Printf("\n\t\t %v", strings.Join(results, "\n\t\t "))
}

func encode(values ...interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	for _, v := range values {
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("gobEncode: %v", err)
		}
	}
	return buf.Bytes(), nil
}

func decode(in []byte, values ...interface{}) error {
	dec := gob.NewDecoder(bytes.NewReader(in))
	for _, v := range values {
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("gobDecode: %v", err)
		}
	}
	return nil
}
