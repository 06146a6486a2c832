package memstore

import (
	"context"
	"sync"

	"github.com/cognicore/tenderlens/pkg/tenderlens/store"
	"github.com/cognicore/tenderlens/pkg/tenderlens/tender"
)

// Store is an in-memory implementation of store.Store.
type Store struct {
	mu      sync.RWMutex
	records []tender.Record
	byID    map[string]int
	meta    store.Snapshot
	written bool
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{byID: make(map[string]int)}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// ReplaceTenders implements store.Store.
func (s *Store) ReplaceTenders(ctx context.Context, records []tender.Record, meta store.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make([]tender.Record, len(records))
	s.byID = make(map[string]int, len(records))
	for i, r := range records {
		s.records[i] = copyRecord(r)
		if _, dup := s.byID[r.TenderID]; !dup {
			s.byID[r.TenderID] = i
		}
	}
	meta.Records = len(records)
	s.meta = meta
	s.written = true
	return nil
}

// ListTenders implements store.Store.
func (s *Store) ListTenders(ctx context.Context) ([]tender.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]tender.Record, len(s.records))
	for i, r := range s.records {
		out[i] = copyRecord(r)
	}
	return out, nil
}

// GetTender implements store.Store.
func (s *Store) GetTender(ctx context.Context, id string) (tender.Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return tender.Record{}, false, nil
	}
	return copyRecord(s.records[i]), true, nil
}

// Snapshot implements store.Store.
func (s *Store) Snapshot(ctx context.Context) (store.Snapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.meta, s.written, nil
}

func copyRecord(r tender.Record) tender.Record {
	if r.Duration != nil {
		d := *r.Duration
		r.Duration = &d
	}
	return r
}
