package application

import (
	"time"

	"debounce-gateway/middleware/debounce/domain"
)

const defaultRetryAfter = 1 * time.Second

// AdmissionService decide se uma chave pode disparar um novo Run agora.
//
// Sem Store (ou sem limiter para a chave) tudo é permitido.
type AdmissionService struct {
	Store      domain.LimiterStore
	RetryAfter time.Duration
}

func (s AdmissionService) Decide(key domain.Key) domain.Decision {
	if s.Store == nil {
		return domain.Decision{Allowed: true}
	}
	lim := s.Store.Get(key)
	if lim == nil || lim.Allow() {
		return domain.Decision{Allowed: true}
	}

	retry := s.RetryAfter
	if retry <= 0 {
		retry = defaultRetryAfter
	}
	return domain.Decision{Allowed: false, RetryAfter: retry}
}
