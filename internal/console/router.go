package console

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/diallo/callreview/pkg/httputil"
	"github.com/diallo/callreview/pkg/i18n"
	"github.com/diallo/callreview/pkg/logger"
)

// ServiceName identifies the console in logs, health checks and events
const ServiceName = "callreview-console"

// HealthChecker reports the status of a dependency
type HealthChecker interface {
	Health() map[string]string
}

// RouterOptions configure the HTTP surface
type RouterOptions struct {
	// AllowedOrigins are exact origins or "*.example.com" suffix patterns
	AllowedOrigins []string
	// RequestTimeout bounds one request, including the backend call it makes
	RequestTimeout time.Duration
	// Dependencies are reported on /health; any "down" makes the console degraded
	Dependencies map[string]HealthChecker
}

// NewRouter builds the console router
func NewRouter(h *Handler, opts RouterOptions, log *logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}

	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc: func(r *http.Request, origin string) bool {
			return originAllowed(opts.AllowedOrigins, origin)
		},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID", "Accept-Language"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Use(i18n.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{
			"status":  "healthy",
			"service": ServiceName,
		}
		status := http.StatusOK
		if len(opts.Dependencies) > 0 {
			deps := make(map[string]map[string]string, len(opts.Dependencies))
			for name, checker := range opts.Dependencies {
				deps[name] = checker.Health()
				if deps[name]["status"] == "down" {
					body["status"] = "degraded"
					status = http.StatusServiceUnavailable
				}
			}
			body["dependencies"] = deps
		}
		httputil.JSON(w, status, body)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/agents", h.ListAgents)

		r.Route("/calls", func(r chi.Router) {
			r.Get("/", h.ListCalls)
			r.Post("/refresh", h.RefreshCalls)
			r.Put("/{id}/selection", h.SetSelection)
		})

		r.Get("/reports/{id}", h.GetReport)

		r.Route("/upload", func(r chi.Router) {
			r.Get("/", h.GetUpload)
			r.Put("/candidate", h.SelectCandidate)
			r.Post("/submit", h.SubmitUpload)
			r.Post("/reset", h.ResetUpload)
		})
	})

	return r
}

func originAllowed(allowed []string, origin string) bool {
	for _, pattern := range allowed {
		switch {
		case pattern == "*" || pattern == origin:
			return true
		case strings.HasPrefix(pattern, "*."):
			if strings.HasSuffix(origin, pattern[1:]) {
				return true
			}
		}
	}
	return false
}
