package http

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cmlabs-hris/payroll-engine/internal/config"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/metrics"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// NewLogger builds the ECS-formatted JSON logger shared by the request logger and the services.
func NewLogger(out io.Writer, app config.AppConfig) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(app.Env != "production")
	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level:       parseLevel(app.LogLevel),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "payroll-engine"),
		slog.String("env", app.Env),
	)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func NewRouter(
	logger *slog.Logger,
	corsConfig config.CORSConfig,
	JWTService jwt.Service,
	m *metrics.Metrics,
	payrollHandler PayrollHandler,
	leavePaymentHandler LeavePaymentHandler,
	timeLogHandler TimeLogHandler,
	webhookHandler WebhookHandler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsConfig.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Route("/webhooks", func(r chi.Router) {
		r.Post("/xendit/invoice", webhookHandler.HandleXenditInvoice)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chiMiddleware.AllowContentType("application/json"))

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService))

			// Employee self-service
			r.Route("/time-logs", func(r chi.Router) {
				r.Post("/clock-in", timeLogHandler.ClockIn)
				r.Post("/clock-out", timeLogHandler.ClockOut)
				r.Get("/me", timeLogHandler.ListMine)
				r.Get("/me/active", timeLogHandler.GetMyActive)

				r.With(middleware.AdminOnly).Put("/{id}", timeLogHandler.Update)
			})

			// Admin only
			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminOnly)

				r.Route("/payrolls", func(r chi.Router) {
					r.Post("/generate", payrollHandler.GeneratePayroll)
					r.Get("/", payrollHandler.ListPayrollRecords)

					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", payrollHandler.GetPayrollRecord)
						r.Post("/settle", payrollHandler.SettlePayroll)
						r.Get("/checkout", payrollHandler.GetCheckoutStatus)
						r.Get("/leave-payments", leavePaymentHandler.List)
						r.Post("/leave-payments", leavePaymentHandler.Create)
					})
				})

				r.Delete("/leave-payments/{id}", leavePaymentHandler.Delete)

				r.Route("/employees/{employeeID}", func(r chi.Router) {
					r.Get("/payrolls", payrollHandler.ListEmployeePayrolls)
					r.Get("/time-logs", timeLogHandler.ListByEmployee)
					r.Post("/absences", timeLogHandler.MarkAbsent)
				})

				r.Route("/settings/payroll", func(r chi.Router) {
					r.Get("/", payrollHandler.GetSettings)
					r.Put("/", payrollHandler.UpdateSettings)
				})
			})
		})
	})
	return r
}
