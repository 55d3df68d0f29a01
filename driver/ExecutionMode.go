package driver

import (
	"fmt"

	"github.com/samuelfneumann/onpolicy/agent"
)

// ExecutionMode determines how an Algorithm runs its computations.
// Both modes produce the same actions, updates, and summaries, and
// differ only in throughput.
type ExecutionMode int

const (
	// Interpreted algorithms walk their computational graphs on each
	// call
	Interpreted ExecutionMode = iota

	// Compiled algorithms build a program from their computational
	// graphs once and execute it on each call
	Compiled
)

// ModeOf returns Compiled if compiled is true and Interpreted
// otherwise
func ModeOf(compiled bool) ExecutionMode {
	if compiled {
		return Compiled
	}
	return Interpreted
}

// Apply sets the execution mode of alg. Algorithms that are not an
// agent.Compiler have a single execution mode and are left unchanged.
func (e ExecutionMode) Apply(alg agent.Algorithm) error {
	if e != Interpreted && e != Compiled {
		return fmt.Errorf("apply: unknown execution mode %d", int(e))
	}

	c, ok := alg.(agent.Compiler)
	if !ok {
		return nil
	}
	if err := c.SetCompiled(e == Compiled); err != nil {
		return fmt.Errorf("apply: %v", err)
	}
	return nil
}

func (e ExecutionMode) String() string {
	switch e {
	case Interpreted:
		return "Interpreted"
	case Compiled:
		return "Compiled"
	default:
		return fmt.Sprintf("ExecutionMode(%d)", int(e))
	}
}
