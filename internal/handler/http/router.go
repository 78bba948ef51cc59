package http

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/fieldforce-backend-go/internal/config"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/fieldforce-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"golang.org/x/time/rate"
)

// Handlers groups the route handlers mounted by NewRouter.
type Handlers struct {
	Trigger    TriggerHandler
	Attendance AttendanceHandler
	Payroll    PayrollHandler
	Report     ReportHandler
	Update     UpdateHandler

	// Files serves locally stored reports under /reports. Nil when reports
	// live in object storage.
	Files http.Handler
}

// NewRouter builds the API router. ctx bounds background work owned by the
// router's middleware.
func NewRouter(ctx context.Context, cfg config.AppConfig, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "fieldforce-backend"),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/updates", func(r chi.Router) {
			// The stream authenticates with its own short-lived query token.
			r.Get("/stream", h.Update.Stream)

			r.Group(func(r chi.Router) {
				r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
				r.Use(middleware.AuthRequired(JWTService.JWTAuth()))
				r.Get("/", h.Update.List)
				r.Get("/token", h.Update.GetSSEToken)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			// Dispatcher only
			r.Route("/triggers", func(r chi.Router) {
				r.Use(middleware.RequireRole(jwt.RoleDispatcher))
				r.Use(middleware.RateLimit(ctx, rate.Limit(cfg.TriggerRateLimit), cfg.TriggerBurst))

				r.Post("/check-ins", h.Trigger.CheckIn)
				r.Post("/attendance-regularizations", h.Trigger.Regularization)
				r.Post("/leaves", h.Trigger.Leave)
				r.Post("/branch-holidays", h.Trigger.BranchHoliday)
				r.Post("/weekly-offs", h.Trigger.WeeklyOff)
				r.Post("/reimbursements", h.Trigger.Reimbursement)
				r.Put("/offices", h.Trigger.SyncOffice)
			})

			// Admin only
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(jwt.RoleAdmin))
				r.Use(middleware.RequireOffice)

				r.Get("/attendances/{phoneNumber}", h.Attendance.GetAttendanceMap)

				r.Route("/payroll", func(r chi.Router) {
					r.Get("/summary", h.Payroll.GetPayrollSummary)
					r.Post("/vouchers", h.Payroll.ComputeVoucher)
					r.Post("/vouchers/batch", h.Payroll.AssignBatch)
					r.Get("/reports/workbook", h.Report.DownloadPayrollWorkbook)
					r.Post("/reports", h.Report.SendPayrollReport)
				})
			})
		})
	})

	if h.Files != nil {
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))
			r.Use(middleware.RequireRole(jwt.RoleAdmin))
			r.Handle("/reports/*", http.StripPrefix("/reports/", h.Files))
		})
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})
	return r
}
