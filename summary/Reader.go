package summary

import (
	"bufio"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const eventFilePrefix = "events"

// ReadEvents reads all events from every event file in dir. Events are
// returned sorted by step, with ties kept in the order they were
// written. An event file whose final event was only partially flushed
// contributes every complete event before it.
func ReadEvents(dir string) ([]Event, error) {
	paths, err := filepath.Glob(filepath.Join(dir, eventFilePrefix+".*.gob"))
	if err != nil {
		return nil, fmt.Errorf("readEvents: %v", err)
	}
	sort.Strings(paths)

	var events []Event
	for _, path := range paths {
		fileEvents, err := readEventFile(path)
		if err != nil {
			return nil, fmt.Errorf("readEvents: %v", err)
		}
		events = append(events, fileEvents...)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Step < events[j].Step
	})
	return events, nil
}

func readEventFile(path string) ([]Event, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var events []Event
	dec := gob.NewDecoder(bufio.NewReader(file))
	for {
		var e Event
		err := dec.Decode(&e)
		if err == io.EOF || errors.Is(err, io.ErrUnexpectedEOF) {
			return events, nil
		} else if err != nil {
			return nil, fmt.Errorf("could not decode %v: %v", path, err)
		}
		events = append(events, e)
	}
}

// Tags returns the sorted unique tags of events, keeping only those
// with the given prefix
func Tags(events []Event, prefix string) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, e := range events {
		if !seen[e.Tag] && strings.HasPrefix(e.Tag, prefix) {
			seen[e.Tag] = true
			tags = append(tags, e.Tag)
		}
	}
	sort.Strings(tags)
	return tags
}
