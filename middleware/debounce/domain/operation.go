package domain

// Handle identifica uma operação em andamento para cancelamento posterior.
//
// É opaco (timer, request HTTP, processo...). nil significa "ausente".
type Handle any

// Args são os argumentos repassados pelo chamador de Run.
type Args []any

// Result é o desfecho de uma operação: ou Value (sucesso) ou Err (falha).
type Result struct {
	Value any
	Err   error
}

func (r Result) Failed() bool { return r.Err != nil }

// Done é o callback de conclusão entregue ao Starter.
// Deve ser chamado no máximo uma vez por invocação do Starter.
type Done func(Result)

// Call é a lista completa de argumentos de uma execução: os argumentos do
// chamador mais o callback de conclusão no final. É o payload do evento "run".
type Call struct {
	Args Args
	Done Done
}

// Arg devolve o i-ésimo argumento do chamador, ou nil se não existir.
func (c Call) Arg(i int) any {
	if i < 0 || i >= len(c.Args) {
		return nil
	}
	return c.Args[i]
}

// Starter dispara uma operação e devolve o handle que o Canceller entende.
// A conclusão chega depois, via call.Done.
type Starter func(call Call) Handle

// Canceller aborta a operação identificada por h. Só efeitos colaterais.
type Canceller func(h Handle)
