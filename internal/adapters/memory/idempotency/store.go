package idempotency

import (
	"context"
	"sync"
	"time"

	"github.com/jubilee25/celebration-api/internal/ports/out/idempotency"
)

// Store is an in-memory implementation of idempotency.Store.
// Records older than the retention window are dropped lazily on Put.
// It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	m         map[idempotency.Fingerprint]idempotency.Record
	retention time.Duration
}

// DefaultRetention is how long replay records are kept.
const DefaultRetention = 24 * time.Hour

func NewStore() *Store {
	return &Store{
		m:         make(map[idempotency.Fingerprint]idempotency.Record),
		retention: DefaultRetention,
	}
}

func (s *Store) Get(ctx context.Context, fp idempotency.Fingerprint) (idempotency.Record, bool, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.m[fp]
	if !ok {
		return idempotency.Record{}, false, nil
	}
	rec.Body = append([]byte(nil), rec.Body...)
	return rec, true, nil
}

func (s *Store) Put(ctx context.Context, fp idempotency.Fingerprint, rec idempotency.Record) error {
	_ = ctx
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	rec.Body = append([]byte(nil), rec.Body...)

	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := rec.CreatedAt.Add(-s.retention)
	for k, v := range s.m {
		if v.CreatedAt.Before(cutoff) {
			delete(s.m, k)
		}
	}
	s.m[fp] = rec
	return nil
}
