package reconciling

import (
	"errors"
	"fmt"
)

// Erros do motor de reconciliação. Problemas de qualidade de dados viram
// avisos no relatório; apenas falhas de integridade ou de escrita abortam a
// unidade de trabalho (o dia), preservando o ledger anterior.
var (
	ErrInvalidDateRange          = errors.New("intervalo de datas inválido")
	ErrUnknownPlatform           = errors.New("plataforma desconhecida")
	ErrDuplicateArtificialVisits = errors.New("colisões de visitas artificiais acima do limite")
)

// DuplicateArtificialVisitError indica que a quantidade de colisões de
// unique_hash na inserção de visitas artificiais passou do limite tolerado.
// Poucas colisões são corridas benignas entre execuções paralelas; muitas
// são um problema de integridade de dados e abortam o dia sem commit.
type DuplicateArtificialVisitError struct {
	Date       string
	Collisions int
	Threshold  int
}

func (e *DuplicateArtificialVisitError) Error() string {
	return fmt.Sprintf("%d colisões de visitas artificiais em %s (limite %d)",
		e.Collisions, e.Date, e.Threshold)
}

func (e *DuplicateArtificialVisitError) Unwrap() error {
	return ErrDuplicateArtificialVisits
}

// WriteTransactionError indica falha de armazenamento durante a fase
// WRITING de um dia. Nenhum estado parcial fica visível: a transação do dia
// é revertida por inteiro.
type WriteTransactionError struct {
	Date string
	Err  error
}

func (e *WriteTransactionError) Error() string {
	return fmt.Sprintf("erro de escrita do ledger em %s: %v", e.Date, e.Err)
}

func (e *WriteTransactionError) Unwrap() error {
	return e.Err
}
