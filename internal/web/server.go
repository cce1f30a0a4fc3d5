// Package web serves the upload and chat pages.
package web

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/sessions"

	"pdfqa/internal/config"
	"pdfqa/internal/pdf"
	"pdfqa/internal/service"
	"pdfqa/internal/vectorstore"
)

const (
	sessionName = "pdfqa"

	keyPDFPath = "pdf_path"
	keyPDFName = "pdf_name"
	keyTxtPath = "txt_path"
	keyLastQ   = "last_q"
	keyLastA   = "last_a"

	devSecret = "dev-secret-change-me"

	sessionMaxAge = 7 * 24 * time.Hour
)

//go:embed templates/*.html
var templateFS embed.FS

// Answerer answers a question against an indexed document.
type Answerer interface {
	Answer(ctx context.Context, question string, store vectorstore.Storage) (string, error)
}

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	cfg       config.ServerConfig
	indexer   *service.Indexer
	agent     Answerer
	agentErr  error
	sessions  sessions.Store
	templates *template.Template
	extract   func(path string) (string, error)
}

// Options configures a Server. AgentErr, when set, is reported on every
// question instead of calling Agent.
type Options struct {
	Config   config.ServerConfig
	Indexer  *service.Indexer
	Agent    Answerer
	AgentErr error
	Secret   string
}

// NewServer creates a Server whose sessions are kept under the upload directory.
func NewServer(opts Options) (*Server, error) {
	if err := os.MkdirAll(opts.Config.UploadDir, 0o755); err != nil {
		return nil, err
	}
	sessionDir := filepath.Join(opts.Config.UploadDir, "sessions")
	if err := os.MkdirAll(sessionDir, 0o700); err != nil {
		return nil, err
	}
	secret := opts.Secret
	if secret == "" {
		log.Printf("warning: %s is not set, using a development session secret", opts.Config.SecretKeyEnv)
		secret = devSecret
	}
	if n, err := pruneSessions(sessionDir, sessionMaxAge, time.Now()); err != nil {
		log.Printf("session cleanup: %v", err)
	} else if n > 0 {
		log.Printf("session cleanup: removed %d expired sessions", n)
	}
	store := sessions.NewFilesystemStore(sessionDir, []byte(secret))
	store.MaxLength(0)
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sessionMaxAge / time.Second),
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Server{
		cfg:       opts.Config,
		indexer:   opts.Indexer,
		agent:     opts.Agent,
		agentErr:  opts.AgentErr,
		sessions:  store,
		templates: tmpl,
		extract:   pdf.ExtractFile,
	}, nil
}

// pruneSessions deletes session files not written since maxAge before now.
// Their cookies have expired, so nothing can load them again.
func pruneSessions(dir string, maxAge time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), "session_") {
			continue
		}
		info, err := e.Info()
		if err != nil || now.Sub(info.ModTime()) <= maxAge {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

type pageData struct {
	PDFName  string
	Summary  string
	Question string
	Answer   string
	Error    string
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data pageData) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("render %s: %v", name, err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// session returns the request's session; a cookie that fails to decode yields a fresh one.
func (s *Server) session(r *http.Request) *sessions.Session {
	sess, err := s.sessions.Get(r, sessionName)
	if err != nil {
		log.Printf("session: starting a new session: %v", err)
	}
	return sess
}

func (s *Server) saveSession(w http.ResponseWriter, r *http.Request, sess *sessions.Session) {
	if err := sess.Save(r, w); err != nil {
		log.Printf("session save: %v", err)
	}
}

func sessionString(sess *sessions.Session, key string) string {
	v, _ := sess.Values[key].(string)
	return v
}

// extractText mirrors the upload flow: failures yield empty text.
func (s *Server) extractText(path string) string {
	text, err := s.extract(path)
	if err != nil {
		log.Printf("extract %s: %v", path, err)
		return ""
	}
	return text
}
