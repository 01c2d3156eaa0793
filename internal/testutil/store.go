// Package testutil provides in-memory collaborators for history tests.
package testutil

import (
	"context"
	"sync"

	"github.com/dshist/dshist/internal/dataset"
	"github.com/dshist/dshist/internal/history"
)

// MemoryStore is a map-backed history.Store. It stores and returns clones so
// tests cannot alias stored state by accident.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*dataset.Record
	saved   map[string]dataset.Version
	puts    []dataset.VersionRef

	// GetErr, when set, is returned by every Get.
	GetErr error
	// SavedErr, when set, is returned by every GetLatestSaved.
	SavedErr error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*dataset.Record),
		saved:   make(map[string]dataset.Version),
	}
}

func (s *MemoryStore) Get(_ context.Context, ref dataset.VersionRef) (*dataset.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	rec, ok := s.records[ref.Key()]
	if !ok {
		return nil, history.NotFound(ref)
	}
	return rec.Clone(), nil
}

func (s *MemoryStore) Put(_ context.Context, record *dataset.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.Ref().Key()] = record.Clone()
	s.puts = append(s.puts, record.Ref())
	return nil
}

func (s *MemoryStore) GetLatestSaved(_ context.Context, path dataset.Path) (*dataset.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SavedErr != nil {
		return nil, s.SavedErr
	}
	version, ok := s.saved[path.String()]
	if !ok {
		return nil, history.ErrDatasetNotFound
	}
	rec, ok := s.records[dataset.NewRef(path, version).Key()]
	if !ok {
		return nil, history.ErrDatasetNotFound
	}
	return rec.Clone(), nil
}

// Seed stores records without recording them as puts.
func (s *MemoryStore) Seed(records ...*dataset.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		s.records[r.Ref().Key()] = r.Clone()
	}
}

// MarkSaved makes version the saved version of path.
func (s *MemoryStore) MarkSaved(path dataset.Path, version dataset.Version) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved[path.String()] = version
}

// Lookup returns the stored record for ref, or nil.
func (s *MemoryStore) Lookup(ref dataset.VersionRef) *dataset.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[ref.Key()].Clone()
}

// Puts lists the keys written through Put, in order.
func (s *MemoryStore) Puts() []dataset.VersionRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]dataset.VersionRef(nil), s.puts...)
}

// Chain builds records linked oldest to newest: each record's Previous is
// set to the record before it. Records must already carry path and version.
func Chain(records ...*dataset.Record) []*dataset.Record {
	for i := 1; i < len(records); i++ {
		prev := records[i-1].Ref()
		records[i].Previous = &prev
	}
	return records
}
