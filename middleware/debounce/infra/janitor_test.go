package infra

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartJanitor(t *testing.T) {
	t.Run("chama fn periodicamente até o contexto encerrar", func(t *testing.T) {
		var calls atomic.Int32
		ctx, cancel := context.WithCancel(context.Background())

		StartJanitor(ctx, 2*time.Millisecond, func() { calls.Add(1) })

		assert.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, time.Millisecond)
		cancel()
	})

	t.Run("intervalo zero não agenda nada", func(t *testing.T) {
		var calls atomic.Int32

		StartJanitor(context.Background(), 0, func() { calls.Add(1) })

		time.Sleep(10 * time.Millisecond)
		assert.Zero(t, calls.Load())
	})
}
