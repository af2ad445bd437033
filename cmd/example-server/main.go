package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

// Upstream lento para exercitar o gateway na mão: /search?q=... responde depois
// de um atraso, e loga quando a requisição é abortada pelo gateway.
//
//	go run ./cmd/example-server --delay 800ms
//	GATEWAY_UPSTREAM_URL=http://localhost:8081 go run ./cmd/gateway
func main() {
	fs := pflag.NewFlagSet("example-server", pflag.ExitOnError)
	addr := fs.String("listen", ":8081", "listen address")
	delay := fs.Duration("delay", 500*time.Millisecond, "artificial latency per request")
	_ = fs.Parse(os.Args[1:])

	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		*addr = v
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	mux := http.NewServeMux()
	mux.HandleFunc("/search", searchHandler(*delay))

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logrus.WithFields(logrus.Fields{"listen": *addr, "delay": delay.String()}).Info("example upstream listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logrus.Fatalf("server error: %v", err)
	}
}

func searchHandler(delay time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		log := logrus.WithField("q", q)

		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			log.Info("request aborted by client")
			return
		}

		log.Info("request served")
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = fmt.Fprintf(w, "results for %q\n", q)
	}
}
