package infra

import (
	"context"
	"sync"

	"debounce-gateway/middleware/debounce/domain"
)

// Counters conta as notificações do controlador por tipo.
type Counters struct {
	Runs      int64
	Cancels   int64
	Successes int64
	Errors    int64
}

func (c *Counters) add(event string) {
	switch event {
	case domain.EventRun:
		c.Runs++
	case domain.EventCancel:
		c.Cancels++
	case domain.EventSuccess:
		c.Successes++
	case domain.EventError:
		c.Errors++
	}
}

// MemoryStatsStore é uma implementação simples em memória.
// Útil para testes e desenvolvimento; não faz expiração.
type MemoryStatsStore struct {
	mu           sync.Mutex
	total        Counters
	byController map[string]Counters
	byKey        map[domain.Key]Counters

	trackKeys bool
}

type MemoryStatsOption func(*MemoryStatsStore)

func WithTrackKeys(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackKeys = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		byController: make(map[string]Counters),
		byKey:        make(map[domain.Key]Counters),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total.add(ev.Event)

	c := s.byController[ev.Controller]
	c.add(ev.Event)
	s.byController[ev.Controller] = c

	if s.trackKeys && ev.Key != "" {
		k := s.byKey[ev.Key]
		k.add(ev.Event)
		s.byKey[ev.Key] = k
	}
	return nil
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsStore) ByController() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Counters, len(s.byController))
	for k, v := range s.byController {
		out[k] = v
	}
	return out
}

func (s *MemoryStatsStore) ByKey() map[domain.Key]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[domain.Key]Counters, len(s.byKey))
	for k, v := range s.byKey {
		out[k] = v
	}
	return out
}
