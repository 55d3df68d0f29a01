package checkpoint

import (
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const (
	// Prefix of each checkpoint file name, which is followed by the
	// global step of the checkpoint
	Prefix = "ckpt-"

	// IndexFile names the file in a checkpoint directory which lists
	// the checkpoints kept
	IndexFile = "checkpoint"

	// DefaultMaxToKeep is the default number of checkpoints kept
	DefaultMaxToKeep = 20
)

// index lists the checkpoints in a directory, oldest first
type index struct {
	Latest string   `json:"latest"`
	All    []string `json:"all"`
}

// entry is a single object stored in a checkpoint file
type entry struct {
	Name string
	Data []byte
}

// Manager saves and restores registered objects to and from
// checkpoint files named ckpt-<global step> in a directory. At most
// MaxToKeep checkpoints are kept, older ones being deleted when new
// ones are saved.
type Manager struct {
	dir       string
	maxToKeep int

	names   []string
	objects map[string]Serializable
}

// NewManager returns a new Manager over dir. The directory is
// created on the first Save. If maxToKeep <= 0, DefaultMaxToKeep is
// used.
func NewManager(dir string, maxToKeep int) (*Manager, error) {
	if dir == "" {
		return nil, fmt.Errorf("newManager: no checkpoint directory")
	}
	if maxToKeep <= 0 {
		maxToKeep = DefaultMaxToKeep
	}

	return &Manager{
		dir:       dir,
		maxToKeep: maxToKeep,
		objects:   make(map[string]Serializable),
	}, nil
}

// Dir returns the checkpoint directory
func (m *Manager) Dir() string {
	return m.dir
}

// Register adds obj to the objects saved in each checkpoint under
// name. Registering a name twice replaces the first object.
func (m *Manager) Register(name string, obj Serializable) {
	if _, ok := m.objects[name]; !ok {
		m.names = append(m.names, name)
	}
	m.objects[name] = obj
}

// Save saves all registered objects to the checkpoint for global step
// step and returns its path. A checkpoint at the same step is
// overwritten.
func (m *Manager) Save(step int64) (string, error) {
	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return "", fmt.Errorf("save: could not create checkpoint "+
			"directory: %v", err)
	}

	entries := make([]entry, 0, len(m.names))
	for _, name := range m.names {
		data, err := m.objects[name].GobEncode()
		if err != nil {
			return "", fmt.Errorf("save: could not encode %v: %v", name, err)
		}
		entries = append(entries, entry{Name: name, Data: data})
	}

	name := Prefix + strconv.FormatInt(step, 10)
	path := filepath.Join(m.dir, name)
	err := writeAtomic(path, func(f *os.File) error {
		return gob.NewEncoder(f).Encode(entries)
	})
	if err != nil {
		return "", fmt.Errorf("save: %v", err)
	}

	idx, err := readIndex(m.dir)
	if err != nil {
		return "", fmt.Errorf("save: %v", err)
	}
	all := make([]string, 0, len(idx.All)+1)
	for _, ckpt := range idx.All {
		if ckpt != name {
			all = append(all, ckpt)
		}
	}
	all = append(all, name)

	for len(all) > m.maxToKeep {
		stale := filepath.Join(m.dir, all[0])
		if err := os.Remove(stale); err != nil && !os.IsNotExist(err) {
			return "", fmt.Errorf("save: could not remove old checkpoint: %v",
				err)
		}
		all = all[1:]
	}

	if err := writeIndex(m.dir, index{Latest: name, All: all}); err != nil {
		return "", fmt.Errorf("save: %v", err)
	}
	return path, nil
}

// Restore restores every registered object from the checkpoint at
// path. Objects in the checkpoint that are not registered are ignored.
func (m *Manager) Restore(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("restore: %v", err)
	}
	defer f.Close()

	var entries []entry
	if err := gob.NewDecoder(f).Decode(&entries); err != nil {
		return fmt.Errorf("restore: could not decode %v: %v", path, err)
	}
	data := make(map[string][]byte, len(entries))
	for _, e := range entries {
		data[e.Name] = e.Data
	}

	for _, name := range m.names {
		d, ok := data[name]
		if !ok {
			return fmt.Errorf("restore: %v not in checkpoint %v", name, path)
		}
		if err := m.objects[name].GobDecode(d); err != nil {
			return fmt.Errorf("restore: could not decode %v: %v", name, err)
		}
	}
	return nil
}

// InitializeOrRestore restores the latest checkpoint in the directory
// and returns its path. If there is no checkpoint, the registered
// objects are left as they are and "" is returned.
func (m *Manager) InitializeOrRestore() (string, error) {
	path, err := Latest(m.dir)
	if err != nil {
		return "", fmt.Errorf("initializeOrRestore: %v", err)
	}
	if path == "" {
		return "", nil
	}
	if err := m.Restore(path); err != nil {
		return "", fmt.Errorf("initializeOrRestore: %v", err)
	}
	return path, nil
}

// Checkpoints returns the paths of the checkpoints kept in the
// directory, oldest first
func (m *Manager) Checkpoints() ([]string, error) {
	idx, err := readIndex(m.dir)
	if err != nil {
		return nil, fmt.Errorf("checkpoints: %v", err)
	}
	paths := make([]string, len(idx.All))
	for i, name := range idx.All {
		paths[i] = filepath.Join(m.dir, name)
	}
	return paths, nil
}

// Latest returns the path of the most recent checkpoint in dir, or
// "" if dir holds no checkpoints or does not exist. Without an index
// file, the checkpoint with the largest global step is the latest.
func Latest(dir string) (string, error) {
	idx, err := readIndex(dir)
	if err != nil {
		return "", fmt.Errorf("latest: %v", err)
	}
	if idx.Latest != "" {
		return filepath.Join(dir, idx.Latest), nil
	}

	matches, err := filepath.Glob(filepath.Join(dir, Prefix+"*"))
	if err != nil {
		return "", fmt.Errorf("latest: %v", err)
	}
	var steps []int64
	for _, match := range matches {
		step, ok := Step(match)
		if ok {
			steps = append(steps, step)
		}
	}
	if len(steps) == 0 {
		return "", nil
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i] < steps[j] })
	return filepath.Join(dir, Prefix+strconv.FormatInt(steps[len(steps)-1],
		10)), nil
}

// Step returns the global step of the checkpoint at path and whether
// path names a checkpoint
func Step(path string) (int64, bool) {
	base := filepath.Base(path)
	if !strings.HasPrefix(base, Prefix) {
		return 0, false
	}
	step, err := strconv.ParseInt(strings.TrimPrefix(base, Prefix), 10, 64)
	if err != nil {
		return 0, false
	}
	return step, true
}

func readIndex(dir string) (index, error) {
	var idx index
	data, err := os.ReadFile(filepath.Join(dir, IndexFile))
	if errors.Is(err, os.ErrNotExist) {
		return idx, nil
	} else if err != nil {
		return idx, fmt.Errorf("could not read index: %v", err)
	}

	if err := json.Unmarshal(data, &idx); err != nil {
		return idx, fmt.Errorf("could not decode index: %v", err)
	}
	return idx, nil
}

func writeIndex(dir string, idx index) error {
	return writeAtomic(filepath.Join(dir, IndexFile), func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(idx)
	})
}

// writeAtomic writes a file at path with write, replacing any existing
// file only once writing succeeds
func writeAtomic(path string, write func(*os.File) error) error {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("could not create file: %v", err)
	}
	tmp := f.Name()

	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("could not write %v: %v", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("could not close %v: %v", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("could not rename %v: %v", path, err)
	}
	return nil
}
