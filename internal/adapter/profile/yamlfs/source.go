// Package yamlfs loads behavior profiles from a directory of YAML files,
// one profile per file, and serves them behind a generation counter so
// containers can detect reloads.
package yamlfs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"wildcore/internal/domain/behavior"

	"gopkg.in/yaml.v3"
)

type profileDoc struct {
	Key                string                    `yaml:"key"`
	Handles            []string                  `yaml:"handles"`
	Params             map[string]map[string]any `yaml:"params"`
	HandleDependencies map[string][]string       `yaml:"handle_dependencies"`
}

// Source implements ports.ProfileSource over a directory of *.yaml files.
type Source struct {
	dir string

	mu         sync.RWMutex
	generation uint64
	profiles   map[string]*behavior.Profile
}

func NewSource(dir string) *Source {
	return &Source{
		dir:      dir,
		profiles: map[string]*behavior.Profile{},
	}
}

// Load reads every profile file in the directory and swaps the active set
// in one step, bumping the generation. A parse error in any file aborts
// the whole reload and keeps the previous set live.
func (s *Source) Load() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read profile dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if ext := filepath.Ext(entry.Name()); ext != ".yaml" && ext != ".yml" {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	loaded := make(map[string]*behavior.Profile, len(names))
	for _, name := range names {
		path := filepath.Join(s.dir, name)
		p, err := parseProfileFile(path)
		if err != nil {
			return err
		}
		if _, dup := loaded[p.Key]; dup {
			return fmt.Errorf("duplicate profile key %q in %s", p.Key, name)
		}
		loaded[p.Key] = p
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	next := s.generation
	for _, p := range loaded {
		p.Generation = next
	}
	s.profiles = loaded
	return nil
}

func parseProfileFile(path string) (*behavior.Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", path, err)
	}

	var doc profileDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if doc.Key == "" {
		base := filepath.Base(path)
		doc.Key = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if len(doc.Handles) == 0 {
		return nil, fmt.Errorf("profile %s declares no handles", path)
	}

	return &behavior.Profile{
		Key:                doc.Key,
		Handles:            doc.Handles,
		Params:             doc.Params,
		HandleDependencies: doc.HandleDependencies,
	}, nil
}

func (s *Source) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

func (s *Source) ProfileFor(key string) (*behavior.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[key]
	return p, ok
}

// Keys returns the loaded profile keys, sorted.
func (s *Source) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.profiles))
	for k := range s.profiles {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
