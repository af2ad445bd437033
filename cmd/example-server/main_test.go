package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSearchHandler_RespondsAfterDelay(t *testing.T) {
	h := searchHandler(5 * time.Millisecond)
	r := httptest.NewRequest(http.MethodGet, "/search?q=+golang+", nil)
	w := httptest.NewRecorder()

	start := time.Now()
	h(w, r)

	assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "results for \"golang\"\n", w.Body.String())
}

func TestSearchHandler_StopsWhenClientGoesAway(t *testing.T) {
	h := searchHandler(time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := httptest.NewRequest(http.MethodGet, "/search?q=x", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	start := time.Now()
	h(w, r)

	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Empty(t, w.Body.String())
}
