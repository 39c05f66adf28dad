// internal/httpserver/server.go
//
// HTTP server wiring for the bloglist backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health".
//   - Blog endpoints under /api/blogs (create/delete require auth).
//   - User endpoints under /api/users and token issuance at /api/login.
//   - JSON request decoding and the {"error": ...} response shape.
//
// Notes:
//   - CORS is origin-aware and allows the Authorization header.
//   - requireAuth is the only place a bearer token is decoded.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/bloglist/internal/apperr"
	"github.com/robalobadob/bloglist/internal/credential"
	"github.com/robalobadob/bloglist/internal/store"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Options tunes the router.
type Options struct {
	ClientOrigin   string        // CORS origin; empty disables CORS headers
	RequestTimeout time.Duration // per-request handler deadline; 0 means 10s
}

// Server bundles router, store and credential service.
type Server struct {
	r     *chi.Mux
	store store.Store
	creds *credential.Service
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, creds *credential.Service, opts Options) *Server {
	s := &Server{r: chi.NewRouter(), store: st, creds: creds}

	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(requestLogger)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(timeout))
	s.r.Use(jsonContentType)
	if opts.ClientOrigin != "" {
		s.r.Use(cors(opts.ClientOrigin))
	}

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":"bloglist","endpoints":["/health","/api/blogs","/api/users","POST /api/login"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.r.Route("/api", func(r chi.Router) {
		s.mountBlogs(r)
		s.mountUsers(r)
	})

	// JSON 404/405 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown endpoint", "path": r.URL.Path})
	})
	s.r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	})

	return s
}

// Router exposes the internal router (useful for tests and http.Server).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger writes one structured access-log line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log.Info().
				Str("reqId", chimw.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("took", time.Since(start)).
				Msg("request")
		}()
		next.ServeHTTP(ww, r)
	})
}

// ------------------------------- helpers -----------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

// writeError maps err onto its status and writes {"error": message}.
// Internal errors are logged with detail and reported generically.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.Status(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).
			Str("reqId", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
	}
	writeJSON(w, status, map[string]string{"error": apperr.Message(err)})
}

// decodeJSON reads a JSON body into dst. Unknown fields are ignored.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Validation("request body too large")
		}
		return apperr.Validation("malformed JSON body")
	}
	return nil
}
