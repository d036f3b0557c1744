package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a process-local limiter store. State lives in a
// mutex-guarded map and does not survive restarts, nor is it shared across
// instances; deployments running more than one replica should use RedisStore
// so the window cap stays global.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*record
	cfg     Config
	now     func() time.Time
}

type record struct {
	count       int
	lastAttempt time.Time
}

// MemoryOption customizes a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock overrides the store's time source. Tests use this to drive the
// window forward without sleeping.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

// NewMemoryStore creates an in-memory limiter store.
func NewMemoryStore(cfg Config, opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		records: make(map[string]*record),
		cfg:     cfg.withDefaults(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Check applies the admission ladder for key. It never returns an error.
func (s *MemoryStore) Check(_ context.Context, key string) (Decision, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		rec = &record{}
		s.records[key] = rec
	}

	d, count, persist := decide(s.cfg, rec.count, rec.lastAttempt, now)
	if persist {
		rec.count = count
		rec.lastAttempt = now
	}
	return d, nil
}

// Sweep evicts every record whose last attempt is older than the window.
func (s *MemoryStore) Sweep() {
	cutoff := s.now().Add(-s.cfg.Window)

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, rec := range s.records {
		if rec.lastAttempt.Before(cutoff) {
			delete(s.records, key)
		}
	}
}

// StartSweeper launches a goroutine that sweeps expired records once per
// window until ctx is cancelled, bounding memory growth.
func (s *MemoryStore) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.cfg.Window)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}

// size reports the number of tracked keys. Test helper.
func (s *MemoryStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
