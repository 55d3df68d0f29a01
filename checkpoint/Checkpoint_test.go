package checkpoint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/samuelfneumann/onpolicy/driver"
	"github.com/samuelfneumann/onpolicy/internal/stub"
)

func newManager(t *testing.T, dir string, maxToKeep int) (*Manager,
	*stub.Algorithm, *driver.Counter) {
	t.Helper()
	m, err := NewManager(dir, maxToKeep)
	if err != nil {
		t.Fatal(err)
	}
	alg := stub.NewAlgorithm(0)
	counter := driver.NewCounter()
	m.Register("algorithm", alg)
	m.Register("counter", counter)
	return m, alg, counter
}

func TestSaveAndRestore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "algorithm")
	m, alg, counter := newManager(t, dir, 0)

	alg.Weight = 3.5
	counter.Set(7)
	path, err := m.Save(counter.Value())
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "ckpt-7" {
		t.Errorf("save: want ckpt-7 have %v", path)
	}

	restored, restoredAlg, restoredCounter := newManager(t, dir, 0)
	latest, err := restored.InitializeOrRestore()
	if err != nil {
		t.Fatal(err)
	}
	if latest != path {
		t.Errorf("initializeOrRestore: want %v have %v", path, latest)
	}
	if restoredAlg.Weight != 3.5 || restoredCounter.Value() != 7 {
		t.Errorf("restore: have weight %v counter %v", restoredAlg.Weight,
			restoredCounter.Value())
	}
}

func TestInitializeWithoutCheckpoint(t *testing.T) {
	m, alg, _ := newManager(t, t.TempDir(), 0)
	alg.Weight = 2

	path, err := m.InitializeOrRestore()
	if err != nil {
		t.Fatal(err)
	}
	if path != "" || alg.Weight != 2 {
		t.Errorf("initializeOrRestore: restored %q without checkpoints", path)
	}

	latest, err := Latest(filepath.Join(t.TempDir(), "missing"))
	if err != nil || latest != "" {
		t.Errorf("latest: want no checkpoint, have %q (%v)", latest, err)
	}
}

func TestMaxToKeep(t *testing.T) {
	dir := t.TempDir()
	m, _, _ := newManager(t, dir, 3)

	for step := int64(1); step <= 5; step++ {
		if _, err := m.Save(step); err != nil {
			t.Fatal(err)
		}
	}
	// Saving the same step again does not add a checkpoint
	if _, err := m.Save(5); err != nil {
		t.Fatal(err)
	}

	paths, err := m.Checkpoints()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"ckpt-3", "ckpt-4", "ckpt-5"}
	if len(paths) != len(want) {
		t.Fatalf("checkpoints: want %v have %v", want, paths)
	}
	for i := range want {
		if filepath.Base(paths[i]) != want[i] {
			t.Errorf("checkpoints: want %v have %v", want, paths)
		}
	}

	for _, stale := range []string{"ckpt-1", "ckpt-2"} {
		if _, err := os.Stat(filepath.Join(dir, stale)); !os.IsNotExist(err) {
			t.Errorf("save: %v not removed", stale)
		}
	}
}

func TestLatestWithoutIndex(t *testing.T) {
	dir := t.TempDir()
	m, _, _ := newManager(t, dir, 0)
	for _, step := range []int64{2, 10, 9} {
		if _, err := m.Save(step); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Remove(filepath.Join(dir, IndexFile)); err != nil {
		t.Fatal(err)
	}

	latest, err := Latest(dir)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(latest) != "ckpt-10" {
		t.Errorf("latest: want ckpt-10 have %v", latest)
	}
}

func TestRestoreMissingObject(t *testing.T) {
	dir := t.TempDir()
	m, _, _ := newManager(t, dir, 0)
	path, err := m.Save(1)
	if err != nil {
		t.Fatal(err)
	}

	other, _, _ := newManager(t, dir, 0)
	other.Register("metrics", driver.NewCounter())
	if err := other.Restore(path); err == nil {
		t.Error("restore: want error for object missing from checkpoint")
	}
}

func TestNStep(t *testing.T) {
	m, _, _ := newManager(t, t.TempDir(), 0)
	c, err := NewNStep(2, m)
	if err != nil {
		t.Fatal(err)
	}

	var saved []int
	for iter := 0; iter < 5; iter++ {
		path, err := c.Checkpoint(iter, int64(iter))
		if err != nil {
			t.Fatal(err)
		}
		if path != "" {
			saved = append(saved, iter)
		}
	}
	if len(saved) != 2 || saved[0] != 1 || saved[1] != 3 {
		t.Errorf("checkpoint: want saves after iterations [1 3] have %v",
			saved)
	}

	if _, err := NewNStep(0, m); err == nil {
		t.Error("newNStep: want error for zero interval")
	}
}

func TestStep(t *testing.T) {
	if step, ok := Step("/a/b/ckpt-42"); !ok || step != 42 {
		t.Errorf("step: want 42 have %v (%v)", step, ok)
	}
	if _, ok := Step("/a/b/checkpoint"); ok {
		t.Error("step: index file is not a checkpoint")
	}
}
