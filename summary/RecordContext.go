package summary

import (
	"fmt"
)

// RecordContext decides at which global steps summaries are recorded
// and to which Writer. Summaries are recorded every Interval global
// steps. A nil *RecordContext records nothing.
type RecordContext struct {
	Writer   *Writer
	Interval int64
}

// NewRecordContext returns a new RecordContext recording to w every
// interval global steps
func NewRecordContext(w *Writer, interval int64) *RecordContext {
	return &RecordContext{Writer: w, Interval: interval}
}

// ShouldRecord returns whether summaries should be recorded at step
func (r *RecordContext) ShouldRecord(step int64) bool {
	if r == nil || r.Writer == nil || r.Interval <= 0 {
		return false
	}
	return step%r.Interval == 0
}

// Scalar records a scalar summary at step if ShouldRecord(step)
func (r *RecordContext) Scalar(tag string, value float64, step int64) error {
	if !r.ShouldRecord(step) {
		return nil
	}
	return r.Writer.Scalar(tag, value, step)
}

// Run runs f under the RecordContext. The Writer is always closed
// when f returns, and f's error takes precedence over any error
// closing the Writer.
func (r *RecordContext) Run(f func(*RecordContext) error) error {
	err := f(r)

	if r != nil && r.Writer != nil {
		if closeErr := r.Writer.Close(); closeErr != nil && err == nil {
			return fmt.Errorf("run: could not close writer: %v", closeErr)
		}
	}
	return err
}
