package checkpoint

import "fmt"

// nStep implements checkpointing every N iterations
type nStep struct {
	interval int
	manager  *Manager
}

// NewNStep returns a Checkpointer that saves a checkpoint with m after
// every n iterations, that is after iterations n-1, 2n-1, ... when
// iterations are counted from 0.
func NewNStep(n int, m *Manager) (Checkpointer, error) {
	if n <= 0 {
		return nil, fmt.Errorf("newNStep: interval must be positive, have %d",
			n)
	}
	if m == nil {
		return nil, fmt.Errorf("newNStep: no manager")
	}
	return &nStep{interval: n, manager: m}, nil
}

// Checkpoint saves a checkpoint at global step step if iteration iter
// completes an interval
func (n *nStep) Checkpoint(iter int, step int64) (string, error) {
	if (iter+1)%n.interval != 0 {
		return "", nil
	}
	return n.manager.Save(step)
}
