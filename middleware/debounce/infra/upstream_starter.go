package infra

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"debounce-gateway/middleware/debounce/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrNotUpstreamRequest indica que Call.Args[0] não é um *domain.UpstreamRequest.
var ErrNotUpstreamRequest = errors.New("upstream starter: first argument must be *domain.UpstreamRequest")

const defaultMaxBodyBytes = 10 << 20

// UpstreamStarter dispara a requisição HTTP de Call.Args[0] numa goroutine,
// com um contexto cancelável. O handle é um *Flight; cancelar aborta o
// contexto e a conclusão chega com um erro que satisfaz errors.Is(err, context.Canceled).
// Value e Err da conclusão (*domain.UpstreamResponse e *domain.UpstreamError)
// carregam a requisição de origem.
type UpstreamStarter struct {
	Client       *http.Client
	MaxBodyBytes int64
	Logger       logrus.FieldLogger
}

// Flight identifica uma requisição ao upstream em andamento.
type Flight struct {
	ID        uuid.UUID
	Method    string
	URL       string
	StartedAt time.Time

	cancel context.CancelFunc
}

func (f *Flight) String() string { return f.ID.String() }

func (f *Flight) Cancel() { f.cancel() }

func (s *UpstreamStarter) Start(call domain.Call) domain.Handle {
	req, ok := call.Arg(0).(*domain.UpstreamRequest)
	if !ok || req == nil {
		call.Done(domain.Result{Err: ErrNotUpstreamRequest})
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	f := &Flight{
		ID:        uuid.New(),
		Method:    req.Method,
		URL:       req.URL,
		StartedAt: time.Now(),
		cancel:    cancel,
	}

	go func() {
		defer cancel()

		res := s.do(ctx, req)
		s.logger().WithFields(logrus.Fields{
			"flight":  f.ID.String(),
			"method":  f.Method,
			"url":     f.URL,
			"elapsed": time.Since(f.StartedAt).String(),
			"failed":  res.Failed(),
		}).Debug("upstream call finished")

		call.Done(res)
	}()

	return f
}

func (s *UpstreamStarter) Cancel(h domain.Handle) {
	if f, ok := h.(*Flight); ok {
		f.Cancel()
	}
}

func (s *UpstreamStarter) do(ctx context.Context, req *domain.UpstreamRequest) domain.Result {
	resp, err := s.roundTrip(ctx, req)
	if err != nil {
		return domain.Result{Err: &domain.UpstreamError{Request: req, Err: err}}
	}
	return domain.Result{Value: resp}
}

func (s *UpstreamStarter) roundTrip(ctx context.Context, req *domain.UpstreamRequest) (*domain.UpstreamResponse, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("upstream request %s %s: %w", method, req.URL, err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	resp, err := s.client().Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("upstream %s %s: %w", method, req.URL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	limit := s.MaxBodyBytes
	if limit <= 0 {
		limit = defaultMaxBodyBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("upstream %s %s: read body: %w", method, req.URL, err)
	}

	return &domain.UpstreamResponse{
		Request:    req,
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       data,
	}, nil
}

func (s *UpstreamStarter) client() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return http.DefaultClient
}

func (s *UpstreamStarter) logger() logrus.FieldLogger {
	if s.Logger != nil {
		return s.Logger
	}
	return logrus.StandardLogger()
}
