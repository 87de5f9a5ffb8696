// Package descriptor loads and serves semantic type descriptors. The
// descriptor sets are JSON files produced by cmd/descgen from the CUE
// definitions under schema/.
package descriptor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/flowdeck/flowdeck/internal/semantic"
)

// ErrUnknownType is returned when no descriptor exists for a type name.
var ErrUnknownType = errors.New("descriptor: unknown type")

// Store is a directory-backed descriptor provider. Files load lazily on
// first use and stay cached for the life of the store.
type Store struct {
	dir string

	mu     sync.Mutex
	loaded bool
	types  map[string]*semantic.TypeDescriptor
}

// NewStore creates a store over a directory of *.json descriptor sets.
func NewStore(dir string) *Store {
	return &Store{dir: dir, types: make(map[string]*semantic.TypeDescriptor)}
}

// descriptorSet is the file format: a map of type name to descriptor.
type descriptorSet map[string]*semantic.TypeDescriptor

// Descriptor returns the descriptor for one type name.
func (s *Store) Descriptor(_ context.Context, typeName string) (*semantic.TypeDescriptor, error) {
	if err := s.load(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	desc, ok := s.types[typeName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, typeName)
	}
	return desc, nil
}

// All returns every known descriptor keyed by type name.
func (s *Store) All(_ context.Context) (map[string]*semantic.TypeDescriptor, error) {
	if err := s.load(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*semantic.TypeDescriptor, len(s.types))
	for name, desc := range s.types {
		out[name] = desc
	}
	return out, nil
}

// TypeNames returns all known type names, sorted.
func (s *Store) TypeNames(ctx context.Context) ([]string, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return nil
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("reading descriptor dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		var set descriptorSet
		if err := json.Unmarshal(data, &set); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		for name, desc := range set {
			s.types[name] = desc
		}
	}
	s.loaded = true
	return nil
}
