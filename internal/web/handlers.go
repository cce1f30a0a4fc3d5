package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"pdfqa/internal/domain"
	"pdfqa/internal/service"
)

const (
	msgNoText     = "Couldn't extract text from this PDF. Try a different PDF or add OCR/text extraction."
	msgNoQuestion = "Enter a question."
)

func hexID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func isAllowed(filename string) bool {
	return strings.ToLower(filepath.Ext(filename)) == ".pdf"
}

// HandleUploadForm handles GET / requests.
func (s *Server) HandleUploadForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "upload.html", pageData{})
}

// HandleUpload handles POST / requests: it stores the PDF, extracts and
// indexes its text and points the session at it.
func (s *Server) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, int64(s.cfg.MaxUploadMB)<<20)

	file, header, err := r.FormFile("pdf")
	if err != nil {
		msg := "No file field named 'pdf'."
		if !errors.Is(err, http.ErrMissingFile) {
			msg = "Upload failed: " + err.Error()
		}
		s.render(w, http.StatusBadRequest, "upload.html", pageData{Error: msg})
		return
	}
	defer file.Close()

	if strings.TrimSpace(header.Filename) == "" {
		s.render(w, http.StatusBadRequest, "upload.html", pageData{Error: "No file selected."})
		return
	}
	if !isAllowed(header.Filename) {
		s.render(w, http.StatusBadRequest, "upload.html", pageData{Error: "Please upload a .pdf file."})
		return
	}

	originalName := filepath.Base(header.Filename)
	ext := filepath.Ext(originalName)
	stem := strings.TrimSuffix(originalName, ext)
	savePath := filepath.Join(s.cfg.UploadDir, fmt.Sprintf("%s_%s%s", stem, hexID(), strings.ToLower(ext)))
	log.Printf("UPLOAD: original_name=%s content_type=%s content_length=%d",
		originalName, header.Header.Get("Content-Type"), r.ContentLength)

	saved, err := saveFile(file, savePath)
	if err != nil {
		log.Printf("UPLOAD FAILED: %v", err)
		s.render(w, http.StatusInternalServerError, "upload.html", pageData{Error: "Upload failed: " + err.Error()})
		return
	}
	log.Printf("UPLOAD: saved_path=%s saved_bytes=%d", savePath, saved)
	if saved <= 0 {
		if err := os.Remove(savePath); err != nil {
			log.Printf("UPLOAD: remove empty file: %v", err)
		}
		s.render(w, http.StatusBadRequest, "upload.html", pageData{
			Error: "Upload saved 0 bytes. The request may be blocked or file too large.",
		})
		return
	}

	extracted := strings.TrimSpace(s.extractText(savePath))
	txtPath := textPathFor(savePath)
	if err := os.WriteFile(txtPath, []byte(extracted), 0o644); err != nil {
		log.Printf("UPLOAD FAILED: %v", err)
		s.render(w, http.StatusInternalServerError, "upload.html", pageData{Error: "Upload failed: " + err.Error()})
		return
	}
	log.Printf("UPLOAD: txt_path=%s txt_chars=%d", txtPath, len([]rune(extracted)))

	sess := s.session(r)
	if old := sessionString(sess, keyTxtPath); old != "" {
		s.indexer.Forget(old)
	}
	s.indexer.Forget(txtPath)
	if extracted != "" {
		if _, err := s.indexer.IndexDocument(txtPath, extracted); err != nil {
			log.Printf("index %s: %v", txtPath, err)
		}
	}

	sess.Values[keyPDFPath] = savePath
	sess.Values[keyPDFName] = originalName
	sess.Values[keyTxtPath] = txtPath
	delete(sess.Values, keyLastQ)
	delete(sess.Values, keyLastA)
	s.saveSession(w, r, sess)

	http.Redirect(w, r, "/chat?v="+hexID(), http.StatusFound)
}

// HandleChat handles GET /chat requests.
func (s *Server) HandleChat(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	if sessionString(sess, keyPDFPath) == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	data := pageData{PDFName: displayName(sess)}
	if doc, ok := s.indexer.Lookup(sessionString(sess, keyTxtPath)); ok {
		data.Summary = doc.Summary
	}
	s.render(w, http.StatusOK, "chat.html", data)
}

// HandleAskRedirect sends browsers that navigate to /ask back to the chat page.
func (s *Server) HandleAskRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/chat", http.StatusFound)
}

// HandleAsk handles POST /ask requests.
func (s *Server) HandleAsk(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	pdfPath := sessionString(sess, keyPDFPath)
	data := pageData{PDFName: displayName(sess)}

	if s.agentErr != nil {
		data.Error = "Configuration error: " + s.agentErr.Error()
		s.render(w, http.StatusInternalServerError, "chat.html", data)
		return
	}
	if pdfPath == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	doc, err := s.loadDocument(sess, pdfPath)
	if err != nil {
		log.Printf("ask: %v", err)
		data.Error = "Indexing failed: " + err.Error()
		s.render(w, http.StatusInternalServerError, "chat.html", data)
		return
	}
	// loadDocument may have pointed the session at a fresh text file.
	respond := func(status int) {
		s.saveSession(w, r, sess)
		s.render(w, status, "chat.html", data)
	}
	if doc == nil {
		data.Error = msgNoText
		respond(http.StatusBadRequest)
		return
	}
	data.Summary = doc.Summary

	question := strings.TrimSpace(r.FormValue("question"))
	if question == "" {
		data.Error = msgNoQuestion
		respond(http.StatusBadRequest)
		return
	}
	data.Question = question

	answer, err := s.agent.Answer(r.Context(), question, doc.Store)
	if err != nil {
		log.Printf("ask: %v", err)
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrAllModelsFailed) {
			status = http.StatusBadGateway
		}
		data.Error = "The model request failed: " + err.Error()
		respond(status)
		return
	}
	data.Answer = answer

	sess.Values[keyLastQ] = question
	sess.Values[keyLastA] = answer
	respond(http.StatusOK)
}

// loadDocument returns the indexed document for the session, building it from
// the extracted text on disk (or re-extracting the PDF) when it is not cached.
// A nil document means the PDF has no extractable text.
func (s *Server) loadDocument(sess *sessions.Session, pdfPath string) (*service.IndexedDocument, error) {
	txtPath := sessionString(sess, keyTxtPath)
	if txtPath != "" {
		if doc, ok := s.indexer.Lookup(txtPath); ok {
			return doc, nil
		}
	}

	var text string
	if data, err := os.ReadFile(txtPath); err == nil {
		text = strings.TrimSpace(string(data))
	} else {
		extracted := strings.TrimSpace(s.extractText(pdfPath))
		txtPath = textPathFor(pdfPath)
		if err := os.WriteFile(txtPath, []byte(extracted), 0o644); err != nil {
			return nil, err
		}
		sess.Values[keyTxtPath] = txtPath
		text = extracted
	}
	if text == "" {
		return nil, nil
	}
	return s.indexer.IndexDocument(txtPath, text)
}

// HandleReset handles GET /reset requests.
func (s *Server) HandleReset(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	if txtPath := sessionString(sess, keyTxtPath); txtPath != "" {
		s.indexer.Forget(txtPath)
	}
	for _, k := range []string{keyPDFPath, keyPDFName, keyTxtPath, keyLastQ, keyLastA} {
		delete(sess.Values, k)
	}
	s.saveSession(w, r, sess)
	http.Redirect(w, r, "/", http.StatusFound)
}

// HandleDebugSession reports what the server stored in the session.
func (s *Server) HandleDebugSession(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	out := map[string]any{}
	for _, k := range []string{keyPDFName, keyPDFPath, keyTxtPath, keyLastQ} {
		if v := sessionString(sess, k); v != "" {
			out[k] = v
		} else {
			out[k] = nil
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// HandleHealth handles GET /health requests.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintln(w, "ok")
}

func displayName(sess *sessions.Session) string {
	if name := sessionString(sess, keyPDFName); name != "" {
		return name
	}
	if p := sessionString(sess, keyPDFPath); p != "" {
		return filepath.Base(p)
	}
	return ""
}

func textPathFor(pdfPath string) string {
	return strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + ".txt"
}

func saveFile(src io.Reader, path string) (int64, error) {
	dst, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	return n, err
}
