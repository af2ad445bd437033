package domain

import (
	"context"
	"time"
)

// StatsEvent representa uma notificação do controlador (run/cancel/success/error)
// observada para fins de estatística.
//
// Observação: cuidado com cardinalidade de Key em bases como Redis.
type StatsEvent struct {
	Key        Key
	Controller string
	Event      string

	At time.Time
}

// StatsStore persiste contadores de eventos. O histórico das operações em si não
// é guardado, apenas contagens.
//
// Implementações devem ser best-effort: erro aqui não interrompe a operação.
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
