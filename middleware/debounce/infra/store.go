package infra

import (
	"context"
	"sync"
	"time"

	"debounce-gateway/middleware/debounce/domain"

	"golang.org/x/time/rate"
)

// Store limita quantos Run cada chave pode disparar, com um token bucket
// (x/time/rate) por chave. Chaves ociosas são removidas por Cleanup.
type Store struct {
	mu      sync.Mutex
	buckets map[domain.Key]*bucket

	perSecond    rate.Limit
	burst        int
	idleTTL      time.Duration
	cleanupEvery time.Duration
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

type StoreOption func(*Store)

func WithIdleTTL(d time.Duration) StoreOption {
	return func(s *Store) { s.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) StoreOption {
	return func(s *Store) { s.cleanupEvery = d }
}

// NewStore cria o store com `runsPerSecond` execuções por segundo e rajada `burst` por chave.
func NewStore(runsPerSecond float64, burst int, opts ...StoreOption) *Store {
	s := &Store{
		buckets:      make(map[domain.Key]*bucket),
		perSecond:    rate.Limit(runsPerSecond),
		burst:        burst,
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) RunsPerSecond() float64 { return float64(s.perSecond) }
func (s *Store) Burst() int             { return s.burst }

// Get implementa domain.LimiterStore.
func (s *Store) Get(key domain.Key) domain.Limiter {
	return s.limiter(key)
}

func (s *Store) limiter(key domain.Key) *rate.Limiter {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.buckets[key]; ok {
		b.lastSeen = now
		return b.lim
	}
	lim := rate.NewLimiter(s.perSecond, s.burst)
	s.buckets[key] = &bucket{lim: lim, lastSeen: now}
	return lim
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

func (s *Store) Cleanup() {
	cutoff := time.Now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, b := range s.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(s.buckets, k)
		}
	}
}

// StartJanitor limpa chaves inativas periodicamente até ctx encerrar.
func (s *Store) StartJanitor(ctx context.Context) {
	StartJanitor(ctx, s.cleanupEvery, s.Cleanup)
}
