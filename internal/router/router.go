package router

import (
	"net/http"
	"strings"

	"lorryops/internal/handler"
	"lorryops/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
// mediaHandler may be nil when media uploads are disabled; the proof route
// then responds 404.
func New(
	orderHandler *handler.OrderHandler,
	shiftHandler *handler.ShiftHandler,
	mediaHandler *handler.MediaHandler,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Order handler function
	orderRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		segments := pathSegments(r.URL.Path, "/api/orders")

		switch {
		case len(segments) == 0 && r.Method == http.MethodPost:
			orderHandler.Create(w, r)
		case len(segments) == 1 && r.Method == http.MethodGet:
			orderHandler.GetByID(w, r, segments[0])
		case len(segments) == 2 && segments[1] == "cancel" && r.Method == http.MethodPost:
			orderHandler.Cancel(w, r, segments[0])
		case len(segments) == 2 && segments[1] == "return" && r.Method == http.MethodPost:
			orderHandler.Return(w, r, segments[0])
		case len(segments) == 2 && segments[1] == "payments" && r.Method == http.MethodPost:
			orderHandler.RecordPayment(w, r, segments[0])
		case len(segments) == 4 && segments[1] == "payments" && segments[3] == "void" && r.Method == http.MethodPost:
			orderHandler.VoidPayment(w, r, segments[0], segments[2])
		case len(segments) == 2 && segments[1] == "proof" && r.Method == http.MethodPost && mediaHandler != nil:
			mediaHandler.UploadProof(w, r, segments[0])
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}

	// Register order routes (both with and without trailing slash)
	mux.HandleFunc("/api/orders", orderRouteHandler)
	mux.HandleFunc("/api/orders/", orderRouteHandler)

	// Shift handler function
	shiftRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		segments := pathSegments(r.URL.Path, "/api/shifts")

		switch {
		case len(segments) == 0 && r.Method == http.MethodPost:
			shiftHandler.ClockIn(w, r)
		case len(segments) == 2 && segments[1] == "clock-out" && r.Method == http.MethodPost:
			shiftHandler.ClockOut(w, r, segments[0])
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}

	// Register shift routes (both with and without trailing slash)
	mux.HandleFunc("/api/shifts", shiftRouteHandler)
	mux.HandleFunc("/api/shifts/", shiftRouteHandler)

	// Apply middleware in order: Recovery -> CorrelationID -> Logging -> CORS -> APIKeyAuth
	var h http.Handler = mux
	h = middleware.APIKeyAuth(apiKey, logger)(h)
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.CorrelationID(h)
	h = middleware.Recovery(logger)(h)

	return h
}

// pathSegments splits the path below the given prefix into its non-empty
// segments. "/api/orders/123/cancel" with prefix "/api/orders" yields
// ["123", "cancel"].
func pathSegments(path, prefix string) []string {
	trimmed := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
