package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/cost-reconciler-api/internal/usecases/reconciling"
	"github.com/vfg2006/cost-reconciler-api/pkg/apiErrors"
	"github.com/vfg2006/cost-reconciler-api/pkg/utils"
)

type ReconcileRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Reconcile dispara uma reconciliação síncrona do intervalo de datas
// informado e retorna o relatório completo
func Reconcile(service reconciling.Reconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - Reconcile")

		var req ReconcileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Erro ao decodificar requisição", nil)
			return
		}

		if req.StartDate == "" || req.EndDate == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "start_date e end_date são obrigatórios", nil)
			return
		}

		startDate, err := utils.ParseDate(req.StartDate)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "start_date inválida, use o formato YYYY-MM-DD", nil)
			return
		}

		endDate, err := utils.ParseDate(req.EndDate)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "end_date inválida, use o formato YYYY-MM-DD", nil)
			return
		}

		report, err := service.ReconcileDateRange(r.Context(), *startDate, *endDate)
		if err != nil {
			logrus.Error(err)

			if err == reconciling.ErrInvalidDateRange {
				apiErrors.WriteError(w, apiErrors.ErrReconciliationDateRange, "Intervalo de datas inválido: end_date anterior a start_date", nil)
				return
			}

			apiErrors.WriteError(w, apiErrors.ErrReconciliationFailed, "Erro ao executar reconciliação", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		err = json.NewEncoder(w).Encode(report)
		if err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao enviar resposta", nil)
			return
		}
	}
}
