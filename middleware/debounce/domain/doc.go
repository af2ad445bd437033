// Package domain define contratos e tipos de domínio do controlador "latest-wins"
// (operação assíncrona única, sempre a mais recente).
//
// Este pacote não depende de net/http nem de implementações concretas.
// Starter, Canceller, Emitter e Scheduler são colaboradores injetados; a camada
// infra fornece implementações e a camada application contém a máquina de estados.
package domain
