package debounce

import (
	"context"
	"sync"
	"time"

	"debounce-gateway/middleware/debounce/application"
	"debounce-gateway/middleware/debounce/domain"
	"debounce-gateway/middleware/debounce/infra"

	"github.com/sirupsen/logrus"
)

// Factory cria o controlador de uma chave.
type Factory func(key domain.Key) *application.Controller

// Registry mantém um controlador por chave, criado sob demanda, e sabe qual
// requisição de cada chave é a mais recente.
type Registry struct {
	factory Factory
	stats   domain.StatsStore
	log     logrus.FieldLogger

	idleTTL      time.Duration
	cleanupEvery time.Duration

	mu    sync.Mutex
	slots map[domain.Key]*slot
}

type slot struct {
	ctrl *application.Controller
	offs []func()

	// protegidos por Registry.mu
	lastSeen time.Time
	refs     int

	// runMu serializa Dispatch e CancelIfCurrent da chave: a ordem em que as
	// requisições viram "a mais recente" é a ordem dos seus Run.
	runMu sync.Mutex

	waitMu  sync.Mutex
	current *Waiter
}

// Waiter representa uma requisição aguardando o resultado do seu Run.
type Waiter struct {
	slot       *slot
	req        *domain.UpstreamRequest
	superseded chan struct{}
	result     chan domain.Result
}

// Superseded fecha quando uma requisição mais nova da mesma chave chega.
func (w *Waiter) Superseded() <-chan struct{} { return w.superseded }

// Result recebe a conclusão do Run desta requisição, entregue pelos eventos
// success/error do controlador.
func (w *Waiter) Result() <-chan domain.Result { return w.result }

type RegistryOption func(*Registry)

func WithRegistryStats(store domain.StatsStore) RegistryOption {
	return func(r *Registry) { r.stats = store }
}

func WithRegistryIdleTTL(d time.Duration) RegistryOption {
	return func(r *Registry) { r.idleTTL = d }
}

func WithRegistryCleanupEvery(d time.Duration) RegistryOption {
	return func(r *Registry) { r.cleanupEvery = d }
}

func WithRegistryLogger(l logrus.FieldLogger) RegistryOption {
	return func(r *Registry) { r.log = l }
}

func NewRegistry(factory Factory, opts ...RegistryOption) *Registry {
	r := &Registry{
		factory:      factory,
		log:          logrus.StandardLogger(),
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
		slots:        make(map[domain.Key]*slot),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get devolve (criando se preciso) o controlador da chave.
func (r *Registry) Get(key domain.Key) *application.Controller {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.slotLocked(key).ctrl
}

func (r *Registry) slotLocked(key domain.Key) *slot {
	s, ok := r.slots[key]
	if !ok {
		ctrl := r.factory(key)
		s = &slot{ctrl: ctrl}
		s.offs = []func(){
			RecordStats(ctrl, key, r.stats, r.log),
			ctrl.On(domain.EventSuccess, func(payload any) {
				s.deliver(domain.RequestOf(payload), domain.Result{Value: payload})
			}),
			ctrl.On(domain.EventError, func(payload any) {
				err, _ := payload.(error)
				s.deliver(domain.RequestOf(payload), domain.Result{Err: err})
			}),
		}
		r.slots[key] = s
		r.log.WithField("key", key).Debug("controller created")
	}
	s.lastSeen = time.Now()
	return s
}

// deliver entrega res ao waiter atual, desde que ele seja o dono de req.
// Conclusões de requisições já substituídas não chegam aqui (o controlador as
// descarta), mas um evento pode estar a caminho quando a troca acontece.
func (s *slot) deliver(req *domain.UpstreamRequest, res domain.Result) {
	if req == nil {
		return
	}

	s.waitMu.Lock()
	defer s.waitMu.Unlock()

	w := s.current
	if w == nil || w.req != req {
		return
	}
	select {
	case w.result <- res:
	default:
	}
}

// Dispatch registra req como a requisição mais recente da chave, sinaliza a
// anterior (se ainda estiver esperando) e chama Run no controlador, tudo na
// mesma seção crítica da chave.
func (r *Registry) Dispatch(key domain.Key, req *domain.UpstreamRequest) *Waiter {
	r.mu.Lock()
	s := r.slotLocked(key)
	s.refs++
	r.mu.Unlock()

	w := &Waiter{
		slot:       s,
		req:        req,
		superseded: make(chan struct{}),
		result:     make(chan domain.Result, 1),
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	s.waitMu.Lock()
	if s.current != nil {
		close(s.current.superseded)
	}
	s.current = w
	s.waitMu.Unlock()

	s.ctrl.Run(req)
	return w
}

// Release marca w como encerrado. Se w já foi substituído, só libera a referência.
func (r *Registry) Release(w *Waiter) {
	s := w.slot

	s.waitMu.Lock()
	if s.current == w {
		s.current = nil
	}
	s.waitMu.Unlock()

	r.mu.Lock()
	s.refs--
	s.lastSeen = time.Now()
	r.mu.Unlock()
}

// CancelIfCurrent cancela a operação da chave somente se w ainda for a
// requisição mais recente.
func (r *Registry) CancelIfCurrent(w *Waiter) bool {
	s := w.slot

	s.runMu.Lock()
	defer s.runMu.Unlock()

	s.waitMu.Lock()
	current := s.current == w
	s.waitMu.Unlock()

	if !current {
		return false
	}
	s.ctrl.Cancel()
	return true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.slots)
}

// Cleanup remove controladores ociosos: sem requisição esperando, sem operação
// em voo e sem uso há mais de idleTTL.
func (r *Registry) Cleanup() {
	cutoff := time.Now().Add(-r.idleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()

	for k, s := range r.slots {
		if s.refs > 0 || s.lastSeen.After(cutoff) {
			continue
		}
		if _, busy := s.ctrl.InFlight(); busy {
			continue
		}
		for _, off := range s.offs {
			off()
		}
		s.ctrl.Off()
		delete(r.slots, k)
		r.log.WithField("key", k).Debug("idle controller removed")
	}
}

// StartJanitor executa Cleanup periodicamente até ctx encerrar.
func (r *Registry) StartJanitor(ctx context.Context) {
	infra.StartJanitor(ctx, r.cleanupEvery, r.Cleanup)
}
