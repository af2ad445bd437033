package domain

// Nomes dos eventos emitidos pelo controlador.
const (
	EventRun     = "run"     // payload: Call
	EventCancel  = "cancel"  // payload: Handle cancelado
	EventSuccess = "success" // payload: Result.Value
	EventError   = "error"   // payload: Result.Err
)

// Events lista todos os eventos, na ordem do ciclo de vida.
var Events = []string{EventRun, EventCancel, EventSuccess, EventError}

type Listener func(payload any)

// Emitter é o mínimo de publish/subscribe que o controlador precisa.
//
// Emit é síncrono: os listeners rodam na goroutine de quem emitiu, na ordem
// de inscrição.
type Emitter interface {
	// On inscreve l em event e devolve a função que desfaz a inscrição.
	On(event string, l Listener) (off func())
	// Off remove todos os listeners dos eventos informados; sem argumentos, remove tudo.
	Off(events ...string)
	Emit(event string, payload any)
}

// Scheduler é o primitivo de rate limit usado para adiar o Starter.
//
// Call agenda f substituindo qualquer chamada pendente (trailing-edge);
// Stop descarta a chamada pendente e informa se havia uma.
type Scheduler interface {
	Call(f func())
	Stop() bool
}
