package driver

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sync"
)

// Counter counts the number of training updates performed. It is the
// global step used to name checkpoints and index summaries.
//
// Only a driver increments a Counter. Restoring a checkpoint sets it.
// Everything else should only read its Value.
type Counter struct {
	mu    sync.Mutex
	value int64
}

// NewCounter returns a new Counter at 0
func NewCounter() *Counter {
	return &Counter{}
}

// Value returns the current count
func (c *Counter) Value() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Increment adds one to the count and returns the new count
func (c *Counter) Increment() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value++
	return c.value
}

// Set sets the count
func (c *Counter) Set(value int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = value
}

// GobEncode implements the gob.GobEncoder interface
func (c *Counter) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(c.Value()); err != nil {
		return nil, fmt.Errorf("gobEncode: %v", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface
func (c *Counter) GobDecode(in []byte) error {
	var value int64
	if err := gob.NewDecoder(bytes.NewReader(in)).Decode(&value); err != nil {
		return fmt.Errorf("gobDecode: %v", err)
	}
	c.Set(value)
	return nil
}
