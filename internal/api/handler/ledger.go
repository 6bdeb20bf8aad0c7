package handler

import (
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/cost-reconciler-api/infrastructure/repository"
	"github.com/vfg2006/cost-reconciler-api/pkg/apiErrors"
	"github.com/vfg2006/cost-reconciler-api/pkg/utils"
)

// GetLedgerEntryByVisit retorna a entrada do ledger vinculada a uma visita
func GetLedgerEntryByVisit(repo repository.LedgerRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		visitIDStr := httprouter.ParamsFromContext(r.Context()).ByName("visit_id")
		if visitIDStr == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "ID da visita não fornecido", nil)
			return
		}

		visitID, err := strconv.ParseInt(visitIDStr, 10, 64)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "ID da visita inválido", nil)
			return
		}

		entry, err := repo.GetByVisitID(visitID)
		if err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao buscar entrada do ledger", nil)
			return
		}

		if entry == nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Nenhuma entrada do ledger para a visita", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		err = json.NewEncoder(w).Encode(entry)
		if err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao enviar resposta", nil)
			return
		}
	}
}

// ListLedgerEntries lista as entradas do ledger de um site em um dia,
// opcionalmente filtradas por canal
func ListLedgerEntries(repo repository.LedgerRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		siteID := r.URL.Query().Get("site_id")
		dateStr := r.URL.Query().Get("date")
		channel := r.URL.Query().Get("channel")

		if siteID == "" || dateStr == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "site_id e date são obrigatórios", nil)
			return
		}

		date, err := utils.ParseDate(dateStr)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "date inválida, use o formato YYYY-MM-DD", nil)
			return
		}

		entries, err := repo.ListBySiteDateChannel(siteID, *date, channel)
		if err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao listar entradas do ledger", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		err = json.NewEncoder(w).Encode(entries)
		if err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao enviar resposta", nil)
			return
		}
	}
}
