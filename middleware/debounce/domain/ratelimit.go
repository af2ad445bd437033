package domain

// Admissão de execuções por chave (token bucket), sem dependência de net/http.

import "time"

type Key string

// Limiter decide se uma nova execução é permitida agora.
//
// A camada de infra usa golang.org/x/time/rate.
type Limiter interface {
	Allow() bool
}

// LimiterStore obtém um limiter por chave (ex: IP, API key, usuário).
type LimiterStore interface {
	Get(Key) Limiter
}

type Decision struct {
	Allowed bool
	// RetryAfter é o valor de Retry-After quando bloquear. Se 0, não há recomendação.
	RetryAfter time.Duration
}
