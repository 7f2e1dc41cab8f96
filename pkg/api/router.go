package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/marmos91/shapeview/internal/logger"
	"github.com/marmos91/shapeview/internal/telemetry"
	"github.com/marmos91/shapeview/pkg/api/handlers"
	"github.com/marmos91/shapeview/pkg/viewer"
)

// NewRouter creates and configures the chi router with all middleware and routes.
//
// The router is configured with:
//   - Request ID middleware for request tracking
//   - Real IP extraction for proper client identification
//   - OpenTelemetry server spans
//   - Request logging with a per-request LogContext
//   - Panic recovery to prevent server crashes
//   - Request timeout that cancels in-flight store reads
//
// Routes:
//   - GET /health - Liveness probe
//   - GET /health/ready - Readiness probe
//   - GET /health/stores - Detailed store health
//   - GET /api/v1/datasets - Dataset catalog
//   - GET /api/v1/datasets/{dataset}/info - Dataset metadata (also without /info)
//   - GET /api/v1/datasets/{dataset}/shapes/{id} - Shape record and layout
//   - GET /api/v1/datasets/{dataset}/shapes/{id}/image.png - PNG rendering
//   - GET /api/v1/datasets/{dataset}/shapes/{id}/image.svg - SVG rendering
func NewRouter(v *viewer.Viewer, config APIConfig, canvas handlers.Canvas) http.Handler {
	config.ApplyDefaults()
	if canvas.MaxSize == 0 {
		canvas.MaxSize = config.MaxImageSize
	}

	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(otelhttp.NewMiddleware("shapeview-api"))
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(config.RequestTimeout))

	healthHandler := handlers.NewHealthHandler(v)
	r.Route("/health", func(r chi.Router) {
		r.Get("/", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
		r.Get("/stores", healthHandler.Stores)
	})

	if v != nil {
		datasetHandler := handlers.NewDatasetHandler(v)
		shapeHandler := handlers.NewShapeHandler(v, canvas)

		r.Route("/api/v1/datasets", func(r chi.Router) {
			r.Get("/", datasetHandler.List)
			r.Route("/{dataset}", func(r chi.Router) {
				r.Get("/", datasetHandler.Get)
				r.Get("/info", datasetHandler.Get)
				r.Route("/shapes/{id}", func(r chi.Router) {
					r.Get("/", shapeHandler.Get)
					r.Get("/image.png", shapeHandler.PNG)
					r.Get("/image.svg", shapeHandler.SVG)
				})
			})
		})
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handlers.NotFound(w, "no route for "+r.URL.Path)
	})

	// Root redirect to health for convenience
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	return r
}

// requestLogger attaches a LogContext to the request and logs it.
//
// It logs:
//   - Request start (DEBUG level): method, path, remote addr
//   - Request completion (INFO level): method, path, status, duration
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()

		lc := logger.NewLogContext(middleware.GetReqID(ctx), r.RemoteAddr)
		lc.TraceID, lc.SpanID = telemetry.TraceID(ctx), telemetry.SpanID(ctx)
		ctx = logger.WithContext(ctx, lc)
		r = r.WithContext(ctx)

		logger.DebugCtx(ctx, "API request started",
			"method", r.Method,
			"path", r.URL.Path,
		)

		// Wrap response writer to capture status code
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logger.InfoCtx(ctx, "API request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			logger.DurationMs(logger.Duration(start)),
		)
	})
}
