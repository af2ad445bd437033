package debounce

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"debounce-gateway/middleware/debounce/application"
	"debounce-gateway/middleware/debounce/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrSuperseded é o motivo da resposta 409: outra requisição da mesma chave chegou depois.
var ErrSuperseded = errors.New("superseded by a newer request")

const defaultMaxRequestBody = 1 << 20

type ProxyOptions struct {
	// Upstream é a base para onde as requisições são repassadas.
	Upstream *url.URL
	Registry *Registry

	Store              domain.LimiterStore
	RetryAfter         time.Duration
	KeyFn              KeyFunc
	KeyHeader          string
	TrustXForwardedFor bool
	AddHeaders         bool
	MaxRequestBody     int64

	Logger logrus.FieldLogger
}

type rateInfo interface {
	RunsPerSecond() float64
	Burst() int
}

var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Proxy repassa ao upstream apenas a requisição mais recente de cada chave.
// Requisições anteriores ainda pendentes recebem 409.
func Proxy(opts ProxyOptions) http.Handler {
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.KeyHeader, opts.TrustXForwardedFor)
	}
	if opts.MaxRequestBody <= 0 {
		opts.MaxRequestBody = defaultMaxRequestBody
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	admission := application.AdmissionService{
		Store:      opts.Store,
		RetryAfter: opts.RetryAfter,
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := opts.KeyFn(r)
		log := opts.Logger.WithFields(logrus.Fields{
			"key":        key,
			"request_id": uuid.NewString(),
			"method":     r.Method,
			"path":       r.URL.Path,
		})

		if opts.AddHeaders {
			w.Header().Set("X-Debounce-Key", key)
			if ri, ok := opts.Store.(rateInfo); ok {
				w.Header().Set("X-RateLimit-RPS", formatFloat(ri.RunsPerSecond()))
				w.Header().Set("X-RateLimit-Burst", formatInt(ri.Burst()))
			}
		}

		dec := admission.Decide(domain.Key(key))
		if !dec.Allowed {
			w.Header().Set("Retry-After", formatInt(int(dec.RetryAfter.Seconds())))
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, opts.MaxRequestBody))
		if err != nil {
			http.Error(w, "cannot read request body", http.StatusBadRequest)
			return
		}

		ureq := &domain.UpstreamRequest{
			Method: r.Method,
			URL:    upstreamURL(opts.Upstream, r.URL),
			Header: forwardHeader(r.Header),
			Body:   body,
		}

		waiter := opts.Registry.Dispatch(domain.Key(key), ureq)
		defer opts.Registry.Release(waiter)

		select {
		case res := <-waiter.Result():
			writeResult(w, res, log)
		case <-waiter.Superseded():
			// o resultado pode ter chegado antes da substituição
			select {
			case res := <-waiter.Result():
				writeResult(w, res, log)
			default:
				log.Debug("request superseded")
				http.Error(w, ErrSuperseded.Error(), http.StatusConflict)
			}
		case <-r.Context().Done():
			if opts.Registry.CancelIfCurrent(waiter) {
				log.Debug("client gone, upstream call cancelled")
			}
		}
	})
}

func writeResult(w http.ResponseWriter, res domain.Result, log logrus.FieldLogger) {
	if res.Failed() {
		if errors.Is(res.Err, context.Canceled) {
			http.Error(w, ErrSuperseded.Error(), http.StatusConflict)
			return
		}
		log.WithError(res.Err).Warn("upstream call failed")
		http.Error(w, "bad gateway", http.StatusBadGateway)
		return
	}

	resp, ok := res.Value.(*domain.UpstreamResponse)
	if !ok {
		http.Error(w, "bad gateway", http.StatusBadGateway)
		return
	}

	h := w.Header()
	for k, vs := range resp.Header {
		for _, v := range vs {
			h.Add(k, v)
		}
	}
	for _, k := range hopHeaders {
		h.Del(k)
	}
	h.Del("Content-Length")

	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(resp.Body)
}

func upstreamURL(base *url.URL, in *url.URL) string {
	out := *base
	out.Path = joinPath(base.Path, in.Path)
	out.RawPath = ""
	switch {
	case base.RawQuery == "":
		out.RawQuery = in.RawQuery
	case in.RawQuery != "":
		out.RawQuery = base.RawQuery + "&" + in.RawQuery
	}
	return out.String()
}

func joinPath(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return strings.TrimSuffix(a, "/") + "/" + strings.TrimPrefix(b, "/")
}

func forwardHeader(in http.Header) map[string][]string {
	out := in.Clone()
	for _, k := range hopHeaders {
		out.Del(k)
	}
	return out
}
