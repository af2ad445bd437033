package application

import (
	"sync"

	"debounce-gateway/middleware/debounce/domain"

	"github.com/sirupsen/logrus"
)

// Config reúne os colaboradores do Controller. Todos são opcionais:
// sem Start, Run entra em pânico ao chamar a função nil; sem Cancel, o mesmo
// acontece em Cancel quando há handle em voo. Não há validação antecipada.
type Config struct {
	Name   string
	Start  domain.Starter
	Cancel domain.Canceller

	// Scheduler, quando presente, adia o Start (debounce trailing-edge).
	Scheduler domain.Scheduler
	Emitter   domain.Emitter
	Logger    logrus.FieldLogger
}

// Controller coordena um único "slot" de trabalho assíncrono onde só a
// operação mais recente importa: Run sempre cancela a anterior antes de
// disparar a nova.
//
// O estado fica protegido por mu; eventos são sempre emitidos com mu liberado,
// então listeners podem chamar Run/Cancel de dentro de um evento.
type Controller struct {
	name    string
	start   domain.Starter
	cancel  domain.Canceller
	sched   domain.Scheduler
	emitter domain.Emitter
	log     logrus.FieldLogger

	mu sync.Mutex
	// gen identifica a execução corrente; conclusões de gerações antigas são descartadas.
	gen       uint64
	completed uint64
	inFlight  domain.Handle
}

func NewController(cfg Config) *Controller {
	c := &Controller{
		name:    cfg.Name,
		start:   cfg.Start,
		cancel:  cfg.Cancel,
		sched:   cfg.Scheduler,
		emitter: cfg.Emitter,
		log:     cfg.Logger,
	}
	if c.emitter == nil {
		c.emitter = nopEmitter{}
	}
	if c.log == nil {
		c.log = logrus.StandardLogger()
	}
	c.log = c.log.WithField("controller", c.name)
	return c
}

func (c *Controller) Name() string { return c.name }

// InFlight devolve o handle da operação em andamento, se houver.
// Durante a janela de debounce ainda não existe handle.
func (c *Controller) InFlight() (domain.Handle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight, c.inFlight != nil
}

func (c *Controller) On(event string, l domain.Listener) func() {
	return c.emitter.On(event, l)
}

func (c *Controller) Off(events ...string) {
	c.emitter.Off(events...)
}

// Run cancela a operação corrente (se houver), emite "run" com a lista
// completa de argumentos e dispara o Start. Não espera a conclusão.
func (c *Controller) Run(args ...any) {
	c.Cancel()

	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	call := domain.Call{
		Args: domain.Args(args),
		Done: func(res domain.Result) { c.complete(gen, res) },
	}

	c.emitter.Emit(domain.EventRun, call)

	if c.sched == nil {
		c.launch(gen, call)
		return
	}
	c.sched.Call(func() { c.launch(gen, call) })
}

// Cancel emite "cancel" e chama o Canceller com o handle em voo.
// Não limpa o handle: isso é papel do callback de conclusão.
func (c *Controller) Cancel() {
	if c.sched != nil && c.sched.Stop() {
		// start pendente na janela de debounce: ainda não há handle, então não há evento.
		c.mu.Lock()
		c.gen++
		c.mu.Unlock()
		c.log.Debug("pending debounced start discarded")
	}

	c.mu.Lock()
	h := c.inFlight
	c.mu.Unlock()
	if h == nil {
		return
	}

	c.log.WithField("handle", h).Debug("cancelling in-flight operation")
	c.emitter.Emit(domain.EventCancel, h)
	c.cancel(h)
}

func (c *Controller) launch(gen uint64, call domain.Call) {
	c.mu.Lock()
	stale := gen != c.gen
	c.mu.Unlock()
	if stale {
		return
	}

	h := c.start(call)

	c.mu.Lock()
	superseded, finished := gen != c.gen, c.completed == gen
	if !superseded && !finished {
		c.inFlight = h
	}
	c.mu.Unlock()

	// um Run mais novo chegou enquanto o Start rodava: ninguém mais
	// rastreia h, então a operação é abortada aqui
	if superseded && !finished && h != nil {
		c.log.WithField("handle", h).Debug("cancelling operation superseded during start")
		c.emitter.Emit(domain.EventCancel, h)
		c.cancel(h)
	}
}

func (c *Controller) complete(gen uint64, res domain.Result) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		c.log.WithField("generation", gen).Debug("dropping completion of superseded operation")
		return
	}
	c.inFlight = nil
	c.completed = gen
	c.mu.Unlock()

	if res.Failed() {
		c.log.WithError(res.Err).Debug("operation failed")
		c.emitter.Emit(domain.EventError, res.Err)
		return
	}
	c.emitter.Emit(domain.EventSuccess, res.Value)
}

type nopEmitter struct{}

func (nopEmitter) On(string, domain.Listener) func() { return func() {} }
func (nopEmitter) Off(...string)                     {}
func (nopEmitter) Emit(string, any)                  {}
