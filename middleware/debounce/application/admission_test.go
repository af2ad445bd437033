package application

import (
	"testing"
	"time"

	"debounce-gateway/middleware/debounce/domain"

	"github.com/stretchr/testify/assert"
)

type fakeLimiter struct {
	allow bool
}

func (f fakeLimiter) Allow() bool { return f.allow }

type fakeStore struct {
	lim domain.Limiter
}

func (s fakeStore) Get(domain.Key) domain.Limiter { return s.lim }

func TestAdmissionService_Decide(t *testing.T) {
	tests := []struct {
		name      string
		svc       AdmissionService
		allowed   bool
		retryWant time.Duration
	}{
		{
			name:    "sem store permite",
			svc:     AdmissionService{},
			allowed: true,
		},
		{
			name:    "limiter nil permite",
			svc:     AdmissionService{Store: fakeStore{}},
			allowed: true,
		},
		{
			name:    "limiter permite",
			svc:     AdmissionService{Store: fakeStore{lim: fakeLimiter{allow: true}}, RetryAfter: 5 * time.Second},
			allowed: true,
		},
		{
			name:      "bloqueia com retry-after padrão",
			svc:       AdmissionService{Store: fakeStore{lim: fakeLimiter{allow: false}}},
			retryWant: time.Second,
		},
		{
			name:      "bloqueia com retry-after configurado",
			svc:       AdmissionService{Store: fakeStore{lim: fakeLimiter{allow: false}}, RetryAfter: 2500 * time.Millisecond},
			retryWant: 2500 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec := tt.svc.Decide("k")
			assert.Equal(t, tt.allowed, dec.Allowed)
			assert.Equal(t, tt.retryWant, dec.RetryAfter)
		})
	}
}
