package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/workforce-presence/internal"
	"github.com/frahmantamala/workforce-presence/internal/analytics"
	"github.com/frahmantamala/workforce-presence/internal/attendance"
	"github.com/frahmantamala/workforce-presence/internal/auth"
	"github.com/frahmantamala/workforce-presence/internal/breaksession"
	"github.com/frahmantamala/workforce-presence/internal/identity"
	"github.com/frahmantamala/workforce-presence/internal/process"
	"github.com/frahmantamala/workforce-presence/internal/scan"
	"github.com/frahmantamala/workforce-presence/internal/transport"
	"github.com/frahmantamala/workforce-presence/internal/transport/middleware"
	"github.com/frahmantamala/workforce-presence/internal/transport/swagger"
	"github.com/frahmantamala/workforce-presence/internal/worksession"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/jmoiron/sqlx"
)

const APIPrefix = "/api/v1"

// Handlers bundles the HTTP handlers mounted under APIPrefix.
type Handlers struct {
	Auth         *auth.Handler
	Scan         *scan.Handler
	Attendance   *attendance.Handler
	WorkSession  *worksession.Handler
	Identity     *identity.Handler
	BreakSession *breaksession.Handler
	Analytics    *analytics.Handler
	Process      *process.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sqlx.DB, h Handlers, cfg internal.ServerConfig, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)
	base := transport.NewBaseHandler(logger)
	roles := func(allowed ...string) func(http.Handler) http.Handler {
		return middleware.RequireRoles(base, allowed...)
	}

	// Apply global middleware
	router.Use(middleware.CORS(cfg.Origins()))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	openAPIPath := cfg.OpenAPIPath
	if openAPIPath == "" {
		openAPIPath = DefaultOpenAPIPath
	}
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, openAPIPath)
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route(APIPrefix, func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Post("/auth/login", h.Auth.Login)
		r.Post("/auth/refresh", h.Auth.RefreshToken)

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/auth/me", h.Auth.Me)
			pr.Get("/processes", h.Process.List)
			pr.Post("/qr/resolve", h.Identity.ResolveToken)

			// PROCESS scans are authorized inside the dispatcher against the linked process.
			pr.Post("/scan", h.Scan.Scan)

			pr.Group(func(gr chi.Router) {
				gr.Use(roles(auth.RoleSecurity, auth.RoleSupervisor, auth.RoleAdmin))
				gr.Post("/attendance/scan", h.Attendance.Scan)
				gr.Get("/attendance", h.Attendance.List)
				gr.Get("/attendance/daily-summary", h.Attendance.DailySummary)
			})

			pr.Group(func(wr chi.Router) {
				wr.Use(roles(auth.RoleProcess, auth.RoleSupervisor, auth.RoleAdmin))
				wr.Post("/work-session/start", h.WorkSession.Start)
				wr.Post("/work-session/stop", h.WorkSession.Stop)
				wr.Post("/work-session/toggle", h.WorkSession.Toggle)
			})

			pr.Group(func(sr chi.Router) {
				sr.Use(roles(auth.RoleSupervisor, auth.RoleAdmin))
				sr.Get("/work-session", h.WorkSession.List)

				sr.Get("/break-session", h.BreakSession.List)
				sr.Post("/break-session", h.BreakSession.Create)
				sr.Patch("/break-session/{id}/end", h.BreakSession.End)
				sr.Delete("/break-session/{id}", h.BreakSession.Delete)

				sr.Get("/report/analytics/employee-idle/daily", h.Analytics.DailyIdle)
				sr.Get("/report/analytics/manpower-hours/daily", h.Analytics.DailyHours)
				sr.Get("/report/analytics/manpower-hours/daily-average", h.Analytics.DailyAverageHours)
				sr.Get("/report/analytics/manpower-hours/monthly", h.Analytics.MonthlyHours)
			})

			pr.Group(func(ar chi.Router) {
				ar.Use(roles(auth.RoleAdmin))
				ar.Put("/attendance/logs/{id}/scan-time", h.Attendance.UpdateScanTime)
				ar.Put("/work-session/sessions/{id}/times", h.WorkSession.UpdateTimes)
				ar.Post("/qr/employee/{employeeId}", h.Identity.IssueCredential)
			})
		})
	})
}
