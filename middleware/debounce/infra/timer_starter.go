package infra

import (
	"time"

	"debounce-gateway/middleware/debounce/domain"

	"github.com/google/uuid"
)

// TimerStarter é o par Starter/Canceller mais simples: cada operação é um
// timer que conclui depois de Delay. Cancelar para o timer, então a conclusão
// de uma operação cancelada nunca é entregue.
type TimerStarter struct {
	Delay time.Duration
	// Outcome calcula o Result entregue na conclusão; nil conclui com Result{}.
	Outcome func(call domain.Call) domain.Result
}

// TimerHandle é o handle devolvido por TimerStarter.Start.
type TimerHandle struct {
	ID    string
	timer *time.Timer
}

func (h *TimerHandle) String() string { return h.ID }

// Stop para o timer e informa se a conclusão ainda não tinha sido disparada.
func (h *TimerHandle) Stop() bool { return h.timer.Stop() }

func (s TimerStarter) Start(call domain.Call) domain.Handle {
	h := &TimerHandle{ID: uuid.NewString()}
	h.timer = time.AfterFunc(s.Delay, func() {
		res := domain.Result{}
		if s.Outcome != nil {
			res = s.Outcome(call)
		}
		call.Done(res)
	})
	return h
}

func (s TimerStarter) Cancel(h domain.Handle) {
	if th, ok := h.(*TimerHandle); ok {
		th.Stop()
	}
}
