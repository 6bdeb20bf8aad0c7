package domain

import (
	"fmt"
	"time"
)

// PlatformReconciliation acumula as estatísticas de alocação de uma
// plataforma em um dia: custo e cliques reportados pela plataforma contra o
// custo efetivamente alocado no ledger.
type PlatformReconciliation struct {
	Platform         Platform `json:"platform"`
	Date             string   `json:"date"`
	ReportedCost     float64  `json:"reported_cost"`
	ReportedClicks   int64    `json:"reported_clicks"`
	AllocatedCost    float64  `json:"allocated_cost"`
	MatchedVisits    int      `json:"matched_visits"`
	ArtificialVisits int      `json:"artificial_visits"`
}

// Divergence retorna a diferença absoluta entre custo reportado e alocado.
func (p *PlatformReconciliation) Divergence() float64 {
	d := p.ReportedCost - p.AllocatedCost
	if d < 0 {
		return -d
	}
	return d
}

// ReconciliationReport é o resultado do ponto de entrada em lote
// ReconcileDateRange: estatísticas por plataforma/dia, avisos acumulados e
// dias que falharam sem comprometer os demais.
type ReconciliationReport struct {
	StartDate   string                    `json:"start_date"`
	EndDate     string                    `json:"end_date"`
	PerPlatform []*PlatformReconciliation `json:"per_platform"`
	Warnings    []string                  `json:"warnings,omitempty"`
	FailedDates []string                  `json:"failed_dates,omitempty"`
	StartedAt   time.Time                 `json:"started_at"`
	FinishedAt  time.Time                 `json:"finished_at"`
}

// AddWarning registra um aviso não fatal no relatório.
func (r *ReconciliationReport) AddWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// TotalReportedCost soma o custo reportado de todas as plataformas e dias.
func (r *ReconciliationReport) TotalReportedCost() float64 {
	var total float64
	for _, p := range r.PerPlatform {
		total += p.ReportedCost
	}
	return total
}

// TotalAllocatedCost soma o custo alocado de todas as plataformas e dias.
func (r *ReconciliationReport) TotalAllocatedCost() float64 {
	var total float64
	for _, p := range r.PerPlatform {
		total += p.AllocatedCost
	}
	return total
}
