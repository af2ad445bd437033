// Package debounce liga o controlador latest-wins (application.Controller) às
// implementações de infra e o expõe via HTTP.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos (Starter, Canceller, Emitter, Scheduler, stats)
//   - application: máquina de estados do Controller e admissão por chave
//   - infra: emitter, debouncer, token bucket, stats em memória/Redis, starters
//   - debounce (este pacote): New (wiring com defaults), Registry por chave e o
//     handler HTTP que repassa ao upstream só a requisição mais recente
//
// Fluxo no gateway:
//
//  1. Extrai a chave do cliente (header/XFF/IP)
//  2. Consulta a admissão (429 se a chave estourou o token bucket)
//  3. Avisa a requisição anterior da mesma chave que ela foi substituída (409)
//  4. Controller.Run cancela a chamada anterior ao upstream e dispara a nova
//  5. Responde com o resultado do upstream (ou 502)
package debounce
