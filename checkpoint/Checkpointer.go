// Package checkpoint implements saving and restoring the state of an
// experiment to and from disk
package checkpoint

import (
	"encoding/gob"
)

// Serializable is an object that can be saved/serialized
type Serializable interface {
	gob.GobEncoder
	gob.GobDecoder
}

// Checkpointer checkpoints serializable objects based on the iteration
// of an experiment and the global step
type Checkpointer interface {
	// Checkpoint possibly saves a checkpoint after iteration iter,
	// returning the path of the checkpoint saved or "" if none was
	Checkpoint(iter int, step int64) (string, error)
}
