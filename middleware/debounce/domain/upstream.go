package domain

// Header usa map[string][]string (mesma forma de http.Header) para manter o
// pacote livre de net/http.

// UpstreamRequest é o argumento esperado pelo starter HTTP: a requisição a ser
// repassada ao upstream.
type UpstreamRequest struct {
	Method string
	URL    string
	Header map[string][]string
	Body   []byte
}

// UpstreamResponse é o Result.Value de uma chamada bem sucedida. Request aponta
// para a requisição que a originou, como em http.Response.
type UpstreamResponse struct {
	Request    *UpstreamRequest
	StatusCode int
	Header     map[string][]string
	Body       []byte
}

// UpstreamError é o Result.Err de uma chamada que falhou.
type UpstreamError struct {
	Request *UpstreamRequest
	Err     error
}

func (e *UpstreamError) Error() string { return e.Err.Error() }

func (e *UpstreamError) Unwrap() error { return e.Err }

// RequestOf devolve a requisição que originou o payload de um evento
// success/error, ou nil se o payload não veio do starter HTTP.
func RequestOf(payload any) *UpstreamRequest {
	switch p := payload.(type) {
	case *UpstreamResponse:
		return p.Request
	case *UpstreamError:
		return p.Request
	}
	return nil
}
