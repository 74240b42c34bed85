package idempotency

import (
	"context"
	"sync"
	"time"

	clockport "github.com/Overland-East-Bay/greetings-api/internal/ports/out/clock"
	"github.com/Overland-East-Bay/greetings-api/internal/ports/out/idempotency"
)

// Store is an in-memory implementation of idempotency.Store.
// It is safe for concurrent use.
//
// When TTL is positive, records older than TTL (by CreatedAt) are treated as absent
// and dropped on the next Put.
type Store struct {
	mu  sync.RWMutex
	m   map[idempotency.Fingerprint]idempotency.Record
	clk clockport.Clock
	ttl time.Duration
}

func NewStore(clk clockport.Clock, ttl time.Duration) *Store {
	return &Store{
		m:   make(map[idempotency.Fingerprint]idempotency.Record),
		clk: clk,
		ttl: ttl,
	}
}

func (s *Store) Get(ctx context.Context, fp idempotency.Fingerprint) (idempotency.Record, bool, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.m[fp]
	if !ok || s.expired(rec, s.clk.Now()) {
		return idempotency.Record{}, false, nil
	}
	return cloneRecord(rec), true, nil
}

func (s *Store) Put(ctx context.Context, fp idempotency.Fingerprint, rec idempotency.Record) error {
	_ = ctx
	now := s.clk.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictExpiredLocked(now)
	s.m[fp] = cloneRecord(rec)
	return nil
}

// Len returns the number of retained records, expired or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

func (s *Store) expired(rec idempotency.Record, now time.Time) bool {
	return s.ttl > 0 && now.Sub(rec.CreatedAt) >= s.ttl
}

func (s *Store) evictExpiredLocked(now time.Time) {
	if s.ttl <= 0 {
		return
	}
	for fp, rec := range s.m {
		if s.expired(rec, now) {
			delete(s.m, fp)
		}
	}
}

func cloneRecord(rec idempotency.Record) idempotency.Record {
	out := rec
	out.Body = append([]byte(nil), rec.Body...)
	return out
}
