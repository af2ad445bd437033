// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - Emitter: publish/subscribe síncrono por nome de evento
//   - Debouncer: debounce trailing-edge sobre time.AfterFunc
//   - Store: token bucket por chave usando golang.org/x/time/rate
//   - MemoryStatsStore / RedisStatsStore: contadores de eventos do controlador
//   - TimerStarter / UpstreamStarter: pares Starter/Canceller prontos
package infra
