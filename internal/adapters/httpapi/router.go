package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	sloghttp "github.com/samber/slog-http"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
)

type RouterOptions struct {
	// AuthMiddleware authenticates admin requests. nil rejects every admin request.
	AuthMiddleware func(http.Handler) http.Handler
	// AdminEmailDomain is the email domain admin principals must belong to.
	AdminEmailDomain string
	Logger           *slog.Logger
	// ServiceName names the server spans; empty disables the otelhttp wrapper.
	ServiceName string
}

// NewRouter constructs the API HTTP router.
//
// Public routes: POST /api/registrations, GET /api/events.
// Admin routes under /api/admin require an authenticated principal in the admin email
// domain and are never cacheable.
func NewRouter(h *Handlers, opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	authMW := opts.AuthMiddleware
	if authMW == nil {
		authMW = denyAll
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(sloghttp.NewWithConfig(logger.WithGroup("http"), sloghttp.Config{
		DefaultLevel:     slog.LevelInfo,
		ClientErrorLevel: slog.LevelWarn,
		ServerErrorLevel: slog.LevelError,
		WithRequestID:    true,
		WithUserAgent:    true,
	}))
	r.Use(slogAddTraceAttributes)
	r.Use(middleware.Recoverer)

	// Health is unauthenticated and used for infra checks.
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/registrations", h.CreateRegistration)
		r.Get("/events", h.ListEvents)

		r.Route("/admin", func(r chi.Router) {
			r.Use(NoStore)
			r.Use(authMW)
			r.Use(RequireAdminDomain(opts.AdminEmailDomain))

			r.Get("/registrations", h.ListRegistrations)
			r.Get("/registrations/export", h.ExportRegistrations)
			r.Get("/registrations/stats", h.RegistrationStats)
		})
	})

	if opts.ServiceName == "" {
		return r
	}
	return otelhttp.NewHandler(r, opts.ServiceName,
		otelhttp.WithFilter(func(req *http.Request) bool { return req.URL.Path != "/healthz" }),
	)
}

func slogAddTraceAttributes(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sc := trace.SpanFromContext(r.Context()).SpanContext()
		if sc.IsValid() {
			sloghttp.AddCustomAttributes(r, slog.String("trace-id", sc.TraceID().String()))
			sloghttp.AddCustomAttributes(r, slog.String("span-id", sc.SpanID().String()))
		}
		next.ServeHTTP(w, r)
	})
}
