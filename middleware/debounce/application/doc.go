// Package application contém os casos de uso do controlador latest-wins:
// a máquina de estados (Controller) e a admissão de execuções por chave
// (AdmissionService).
//
// Ele depende apenas do pacote domain e não conhece net/http.
package application
