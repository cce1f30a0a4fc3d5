package web

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// loggingMiddleware logs request details and latency.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s - %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// noCacheMiddleware stops browsers from showing a stale chat page after a new upload.
func noCacheMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
		h.Set("Pragma", "no-cache")
		h.Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}

// Router creates and configures the HTTP router.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.Use(loggingMiddleware)
	r.Use(noCacheMiddleware)

	r.HandleFunc("/", s.HandleUploadForm).Methods(http.MethodGet)
	r.HandleFunc("/", s.HandleUpload).Methods(http.MethodPost)
	r.HandleFunc("/chat", s.HandleChat).Methods(http.MethodGet)
	r.HandleFunc("/ask", s.HandleAskRedirect).Methods(http.MethodGet)
	r.HandleFunc("/ask", s.HandleAsk).Methods(http.MethodPost)
	r.HandleFunc("/reset", s.HandleReset).Methods(http.MethodGet)
	r.HandleFunc("/health", s.HandleHealth).Methods(http.MethodGet)
	if s.cfg.Debug {
		r.HandleFunc("/debug/session", s.HandleDebugSession).Methods(http.MethodGet)
	}

	return r
}
