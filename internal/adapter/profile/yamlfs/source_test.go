package yamlfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeProfile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

const wolfYAML = `key: wolf
handles:
  - hunger
  - condition
params:
  hunger:
    initial: 80
    decay_per_step: 0.25
handle_dependencies:
  condition:
    - hunger
`

func TestSourceLoad(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "wolf.yaml", wolfYAML)
	writeProfile(t, dir, "sheep.yml", "key: sheep\nhandles: [hunger]\n")
	writeProfile(t, dir, "notes.txt", "ignored")

	s := NewSource(dir)
	if err := s.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := s.Generation(); got != 1 {
		t.Fatalf("Generation()=%d want 1", got)
	}
	if diff := cmp.Diff([]string{"sheep", "wolf"}, s.Keys()); diff != "" {
		t.Fatalf("Keys() mismatch:\n%s", diff)
	}

	wolf, ok := s.ProfileFor("wolf")
	if !ok {
		t.Fatalf("wolf profile missing")
	}
	if wolf.Generation != 1 {
		t.Fatalf("profile generation=%d want 1", wolf.Generation)
	}
	if diff := cmp.Diff([]string{"hunger", "condition"}, wolf.Handles); diff != "" {
		t.Fatalf("handles mismatch:\n%s", diff)
	}
	if got := wolf.FloatParam("hunger", "initial", 0); got != 80 {
		t.Fatalf("param initial=%v want 80", got)
	}
	if got := wolf.HandleDependencies["condition"]; len(got) != 1 || got[0] != "hunger" {
		t.Fatalf("dependencies=%v", got)
	}
}

func TestSourceLoadKeyDefaultsToFilename(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "rabbit.yaml", "handles: [hunger]\n")

	s := NewSource(dir)
	if err := s.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := s.ProfileFor("rabbit"); !ok {
		t.Fatalf("filename-derived key not loaded")
	}
}

func TestSourceReloadBumpsGeneration(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "wolf.yaml", wolfYAML)

	s := NewSource(dir)
	if err := s.Load(); err != nil {
		t.Fatalf("first Load: %v", err)
	}
	if err := s.Load(); err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if got := s.Generation(); got != 2 {
		t.Fatalf("Generation()=%d want 2", got)
	}
	wolf, _ := s.ProfileFor("wolf")
	if wolf.Generation != 2 {
		t.Fatalf("profile generation=%d want 2", wolf.Generation)
	}
}

func TestSourceLoadErrorKeepsPreviousSet(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "wolf.yaml", wolfYAML)

	s := NewSource(dir)
	if err := s.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	writeProfile(t, dir, "broken.yaml", "key: [unclosed\n")
	if err := s.Load(); err == nil {
		t.Fatalf("expected parse error")
	}
	if got := s.Generation(); got != 1 {
		t.Fatalf("failed reload bumped generation to %d", got)
	}
	if _, ok := s.ProfileFor("wolf"); !ok {
		t.Fatalf("failed reload dropped previous profiles")
	}
}

func TestSourceRejectsEmptyHandles(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "empty.yaml", "key: empty\n")

	s := NewSource(dir)
	if err := s.Load(); err == nil {
		t.Fatalf("expected error for profile without handles")
	}
}

func TestSourceRejectsDuplicateKeys(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "a.yaml", "key: wolf\nhandles: [hunger]\n")
	writeProfile(t, dir, "b.yaml", "key: wolf\nhandles: [energy]\n")

	s := NewSource(dir)
	if err := s.Load(); err == nil {
		t.Fatalf("expected duplicate key error")
	}
}
