package infra

import (
	"sync"
	"time"

	"debounce-gateway/middleware/debounce/domain"
)

// Debouncer implementa debounce trailing-edge: cada Call reinicia a janela e
// só a última função agendada roda, depois de `after` sem novas chamadas.
type Debouncer struct {
	after time.Duration

	mu    sync.Mutex
	timer *time.Timer
	seq   uint64
}

var _ domain.Scheduler = (*Debouncer)(nil)

func NewDebouncer(after time.Duration) *Debouncer {
	return &Debouncer{after: after}
}

func (d *Debouncer) Interval() time.Duration { return d.after }

func (d *Debouncer) Call(f func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.timer = time.AfterFunc(d.after, func() {
		d.mu.Lock()
		// um Call/Stop posterior venceu a corrida com este disparo
		if seq != d.seq || d.timer == nil {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		f()
	})
}

func (d *Debouncer) Stop() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer == nil {
		return false
	}
	d.timer.Stop()
	d.timer = nil
	d.seq++
	return true
}

// Pending informa se há uma chamada aguardando a janela fechar.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}
