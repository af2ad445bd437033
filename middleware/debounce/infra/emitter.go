package infra

import (
	"sync"

	"debounce-gateway/middleware/debounce/domain"
)

// Emitter é um publish/subscribe em memória: nome do evento -> lista ordenada
// de listeners. Emit chama os listeners de forma síncrona, fora do lock.
type Emitter struct {
	mu        sync.Mutex
	nextID    uint64
	listeners map[string][]subscription
}

type subscription struct {
	id uint64
	fn domain.Listener
}

var _ domain.Emitter = (*Emitter)(nil)

func NewEmitter() *Emitter {
	return &Emitter{listeners: make(map[string][]subscription)}
}

func (e *Emitter) On(event string, l domain.Listener) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	id := e.nextID
	e.listeners[event] = append(e.listeners[event], subscription{id: id, fn: l})

	var once sync.Once
	return func() {
		once.Do(func() { e.remove(event, id) })
	}
}

func (e *Emitter) remove(event string, id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	subs := e.listeners[event]
	for i, s := range subs {
		if s.id == id {
			// cópia nova: um Emit em andamento continua com o snapshot antigo
			out := make([]subscription, 0, len(subs)-1)
			out = append(out, subs[:i]...)
			out = append(out, subs[i+1:]...)
			e.listeners[event] = out
			break
		}
	}
	if len(e.listeners[event]) == 0 {
		delete(e.listeners, event)
	}
}

func (e *Emitter) Off(events ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(events) == 0 {
		e.listeners = make(map[string][]subscription)
		return
	}
	for _, ev := range events {
		delete(e.listeners, ev)
	}
}

func (e *Emitter) Emit(event string, payload any) {
	e.mu.Lock()
	subs := e.listeners[event]
	e.mu.Unlock()

	for _, s := range subs {
		s.fn(payload)
	}
}

// Listeners informa quantos listeners estão inscritos em event.
func (e *Emitter) Listeners(event string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners[event])
}
