package debounce

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultKeyFunc(t *testing.T) {
	tests := []struct {
		name       string
		keyHeader  string
		trustXFF   bool
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "prefere o header quando definido",
			keyHeader:  "X-Client",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Client": " client-123 "},
			want:       "client-123",
		},
		{
			name:       "header vazio cai no RemoteAddr",
			keyHeader:  "X-Client",
			remoteAddr: "10.0.0.1:1234",
			want:       "10.0.0.1",
		},
		{
			name:       "XFF confiável usa o primeiro IP",
			trustXFF:   true,
			remoteAddr: "10.0.0.9:5555",
			headers:    map[string]string{"X-Forwarded-For": "1.2.3.4, 5.6.7.8"},
			want:       "1.2.3.4",
		},
		{
			name:       "XFF ignorado quando não confiável",
			remoteAddr: "10.0.0.9:5555",
			headers:    map[string]string{"X-Forwarded-For": "1.2.3.4"},
			want:       "10.0.0.9",
		},
		{
			name:       "RemoteAddr sem porta",
			remoteAddr: "10.0.0.9",
			want:       "10.0.0.9",
		},
		{
			name: "sem nada",
			want: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}

			assert.Equal(t, tt.want, DefaultKeyFunc(tt.keyHeader, tt.trustXFF)(r))
		})
	}
}
