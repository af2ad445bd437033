package infra

import (
	"context"
	"time"
)

// StartJanitor chama fn a cada `every` numa goroutine até ctx encerrar.
// every <= 0 desliga a limpeza.
func StartJanitor(ctx context.Context, every time.Duration, fn func()) {
	if every <= 0 {
		return
	}

	t := time.NewTicker(every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				fn()
			}
		}
	}()
}
