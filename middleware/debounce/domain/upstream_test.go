package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestOf(t *testing.T) {
	req := &UpstreamRequest{URL: "http://up/a"}

	tests := []struct {
		name    string
		payload any
		want    *UpstreamRequest
	}{
		{"resposta", &UpstreamResponse{Request: req, StatusCode: 200}, req},
		{"erro", &UpstreamError{Request: req, Err: context.Canceled}, req},
		{"erro sem origem", errors.New("other"), nil},
		{"nil", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Same(t, tt.want, RequestOf(tt.payload))
		})
	}
}

func TestUpstreamError_Unwrap(t *testing.T) {
	err := error(&UpstreamError{Err: context.Canceled})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, context.Canceled.Error(), err.Error())
}
