package debounce

import (
	"context"
	"time"

	"debounce-gateway/middleware/debounce/application"
	"debounce-gateway/middleware/debounce/domain"
	"debounce-gateway/middleware/debounce/infra"

	"github.com/sirupsen/logrus"
)

// Options configura um controlador. Start e Cancel podem ficar vazios; nesse
// caso Run/Cancel entram em pânico ao serem usados (erro de programação).
type Options struct {
	Name   string
	Start  domain.Starter
	Cancel domain.Canceller
	// Rate, se > 0, aplica debounce trailing-edge ao Start.
	Rate    time.Duration
	Emitter domain.Emitter
	Logger  logrus.FieldLogger
}

// New cria o controlador com os defaults de infra: Emitter em memória e,
// com Rate, um Debouncer.
func New(opts Options) *application.Controller {
	cfg := application.Config{
		Name:    opts.Name,
		Start:   opts.Start,
		Cancel:  opts.Cancel,
		Emitter: opts.Emitter,
		Logger:  opts.Logger,
	}
	if cfg.Emitter == nil {
		cfg.Emitter = infra.NewEmitter()
	}
	if opts.Rate > 0 {
		cfg.Scheduler = infra.NewDebouncer(opts.Rate)
	}
	return application.NewController(cfg)
}

// Subscriber é o que RecordStats precisa do controlador.
type Subscriber interface {
	Name() string
	On(event string, l domain.Listener) func()
}

const statsTimeout = 500 * time.Millisecond

// RecordStats inscreve-se em todos os eventos de c e grava cada um em store.
// Erros do store são só logados. Devolve a função que desfaz as inscrições.
func RecordStats(c Subscriber, key domain.Key, store domain.StatsStore, log logrus.FieldLogger) func() {
	if store == nil {
		return func() {}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	offs := make([]func(), 0, len(domain.Events))
	for _, ev := range domain.Events {
		ev := ev
		offs = append(offs, c.On(ev, func(any) {
			ctx, cancel := context.WithTimeout(context.Background(), statsTimeout)
			defer cancel()
			err := store.Record(ctx, domain.StatsEvent{
				Key:        key,
				Controller: c.Name(),
				Event:      ev,
				At:         time.Now(),
			})
			if err != nil {
				log.WithError(err).WithField("event", ev).Warn("stats record failed")
			}
		}))
	}

	return func() {
		for _, off := range offs {
			off()
		}
	}
}
