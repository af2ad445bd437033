package infra

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"debounce-gateway/middleware/debounce/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitResult(t *testing.T, ch <-chan domain.Result) domain.Result {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timeout esperando o upstream")
		return domain.Result{}
	}
}

func TestUpstreamStarter_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Echo-Header", r.Header.Get("X-Query"))
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write(append([]byte(r.Method+":"), body...))
	}))
	defer srv.Close()

	s := &UpstreamStarter{Client: srv.Client()}
	done := make(chan domain.Result, 1)
	req := &domain.UpstreamRequest{
		Method: http.MethodPost,
		URL:    srv.URL + "/search",
		Header: map[string][]string{"X-Query": {"go"}},
		Body:   []byte("payload"),
	}

	h := s.Start(domain.Call{
		Args: domain.Args{req},
		Done: func(r domain.Result) { done <- r },
	})

	f, ok := h.(*Flight)
	require.True(t, ok)
	assert.Equal(t, http.MethodPost, f.Method)
	assert.NotEmpty(t, f.String())

	r := waitResult(t, done)
	require.NoError(t, r.Err)
	resp := r.Value.(*domain.UpstreamResponse)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "POST:payload", string(resp.Body))
	assert.Equal(t, "go", http.Header(resp.Header).Get("X-Echo-Header"))
	assert.Same(t, req, domain.RequestOf(resp))
}

func TestUpstreamStarter_LimitsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("0123456789"))
	}))
	defer srv.Close()

	s := &UpstreamStarter{Client: srv.Client(), MaxBodyBytes: 4}
	done := make(chan domain.Result, 1)

	s.Start(domain.Call{
		Args: domain.Args{&domain.UpstreamRequest{URL: srv.URL}},
		Done: func(r domain.Result) { done <- r },
	})

	r := waitResult(t, done)
	require.NoError(t, r.Err)
	assert.Equal(t, "0123", string(r.Value.(*domain.UpstreamResponse).Body))
}

func TestUpstreamStarter_CancelAbortsRequest(t *testing.T) {
	entered := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	s := &UpstreamStarter{Client: srv.Client()}
	done := make(chan domain.Result, 1)
	req := &domain.UpstreamRequest{URL: srv.URL}

	h := s.Start(domain.Call{
		Args: domain.Args{req},
		Done: func(r domain.Result) { done <- r },
	})
	<-entered
	s.Cancel(h)

	r := waitResult(t, done)
	require.Error(t, r.Err)
	assert.True(t, errors.Is(r.Err, context.Canceled), "erro: %v", r.Err)

	var upErr *domain.UpstreamError
	require.ErrorAs(t, r.Err, &upErr)
	assert.Same(t, req, upErr.Request)
}

func TestUpstreamStarter_WrongArgumentCompletesSynchronously(t *testing.T) {
	s := &UpstreamStarter{}
	var got domain.Result

	h := s.Start(domain.Call{Args: domain.Args{"not a request"}, Done: func(r domain.Result) { got = r }})

	assert.Nil(t, h)
	assert.ErrorIs(t, got.Err, ErrNotUpstreamRequest)
}

func TestUpstreamStarter_InvalidURL(t *testing.T) {
	s := &UpstreamStarter{}
	done := make(chan domain.Result, 1)

	s.Start(domain.Call{
		Args: domain.Args{&domain.UpstreamRequest{URL: "://bad"}},
		Done: func(r domain.Result) { done <- r },
	})

	r := waitResult(t, done)
	assert.Error(t, r.Err)
}
