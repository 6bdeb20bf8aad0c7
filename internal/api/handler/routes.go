package handler

import (
	"net/http"

	"github.com/vfg2006/cost-reconciler-api/infrastructure/repository"
	"github.com/vfg2006/cost-reconciler-api/internal/api/handler/router"
	"github.com/vfg2006/cost-reconciler-api/internal/usecases/authenticating"
	"github.com/vfg2006/cost-reconciler-api/internal/usecases/reconciling"
	"github.com/vfg2006/cost-reconciler-api/pkg/middleware"
)

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
	}
}

func Authentication(service authenticating.Authenticator) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/login",
			Method:  http.MethodPost,
			Handler: Login(service),
		},
		{
			Path:    "/v1/register",
			Method:  http.MethodPost,
			Handler: CreateUser(service),
		},
		{
			Path:        "/v1/me",
			Method:      http.MethodGet,
			Handler:     GetMe(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func Reconciliation(service reconciling.Reconciler) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/reconcile",
			Method:      http.MethodPost,
			Handler:     Reconcile(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOrSupervisor()},
		},
	}
}

func Ledger(repo repository.LedgerRepository) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/ledger/visits/:visit_id",
			Method:      http.MethodGet,
			Handler:     GetLedgerEntryByVisit(repo),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/ledger/entries",
			Method:      http.MethodGet,
			Handler:     ListLedgerEntries(repo),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func CronJobs(services CronJobServices) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/cron/:type/run",
			Method:      http.MethodPost,
			Handler:     RunCronJob(services),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOrSupervisor()},
		},
		{
			Path:        "/v1/cron/status",
			Method:      http.MethodGet,
			Handler:     GetCronStatus(services),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOrSupervisor()},
		},
	}
}
