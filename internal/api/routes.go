package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ignite/meter-dashboard/internal/dashboard"
	"github.com/ignite/meter-dashboard/internal/pkg/logger"
)

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers, hc *HealthChecker, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	if hc != nil {
		r.Get("/health", hc.HandleHealth)
		r.Get("/health/live", hc.HandleLiveness)
		r.Get("/health/ready", hc.HandleReadiness)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/pages", h.GetPages)
		r.Get("/dashboard", h.GetPage(dashboard.PageDashboard))
		r.Get("/usage", h.GetPage(dashboard.PageUsage))
		r.Get("/budget", h.GetPage(dashboard.PageBudget))
		r.Get("/breakdown", h.GetPage(dashboard.PageBreakdown))
		r.Get("/rooms", h.GetRooms)

		r.Get("/preference", h.GetPreference)
		r.Put("/preference", h.PutPreference)

		r.Get("/plans", h.GetPlans)
		r.Get("/plans/{key}", h.GetPlan)

		r.Get("/charts/{page}", h.GetChart)

		r.Get("/snapshot/latest", h.GetLatestSnapshot)

		r.Route("/ingestions", func(r chi.Router) {
			r.Get("/", h.ListIngestions)
			r.Get("/{id}", h.GetIngestion)
		})
	})

	return r
}

// requestLogger logs one structured line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
