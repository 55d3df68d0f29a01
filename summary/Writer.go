// Package summary implements writing, reading, and plotting of scalar
// training summaries
package summary

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is a single scalar summary recorded at some global step
type Event struct {
	Step     int64
	Tag      string
	Value    float64
	WallTime time.Time
}

// Writer appends Events to an event file in a directory. Each Writer
// owns a uniquely named event file, so many Writers may share the same
// directory. Events are buffered and flushed to disk whenever the
// flush period has elapsed since the last flush, on Flush, and on
// Close.
type Writer struct {
	mu          sync.Mutex
	dir         string
	path        string
	file        *os.File
	buf         *bufio.Writer
	enc         *gob.Encoder
	flushPeriod time.Duration
	lastFlush   time.Time
	closed      bool
}

// NewWriter creates the directory dir if needed and returns a Writer
// to a new event file in dir
func NewWriter(dir string, flushPeriod time.Duration) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("newWriter: could not create summary "+
			"directory: %v", err)
	}

	name := fmt.Sprintf("%v.%d.%v.gob", eventFilePrefix, time.Now().Unix(),
		uuid.New())
	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("newWriter: could not create event file: %v",
			err)
	}

	buf := bufio.NewWriter(file)
	return &Writer{
		dir:         dir,
		path:        path,
		file:        file,
		buf:         buf,
		enc:         gob.NewEncoder(buf),
		flushPeriod: flushPeriod,
		lastFlush:   time.Now(),
	}, nil
}

// Dir returns the directory the Writer writes to
func (w *Writer) Dir() string {
	return w.dir
}

// Path returns the path of the Writer's event file
func (w *Writer) Path() string {
	return w.path
}

// Scalar records a scalar value with the tag at some global step
func (w *Writer) Scalar(tag string, value float64, step int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("scalar: writer closed")
	}

	event := Event{Step: step, Tag: tag, Value: value, WallTime: time.Now()}
	if err := w.enc.Encode(event); err != nil {
		return fmt.Errorf("scalar: could not encode event: %v", err)
	}

	if time.Since(w.lastFlush) >= w.flushPeriod {
		return w.flush()
	}
	return nil
}

// Flush writes all buffered events to disk
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	return w.flush()
}

func (w *Writer) flush() error {
	w.lastFlush = time.Now()
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("flush: %v", err)
	}
	return nil
}

// Close flushes all buffered events and closes the event file.
// Closing a closed Writer does nothing.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.flush(); err != nil {
		w.file.Close()
		return fmt.Errorf("close: %v", err)
	}
	return w.file.Close()
}
