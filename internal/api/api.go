// Package api serves the rewrite sessions over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/joescharf/recode/internal/apperr"
	"github.com/joescharf/recode/internal/diff"
	"github.com/joescharf/recode/internal/guidelines"
	"github.com/joescharf/recode/internal/models"
	"github.com/joescharf/recode/internal/session"
	"github.com/joescharf/recode/internal/source"
	"github.com/joescharf/recode/internal/ui"
)

// maxUploadBytes bounds a rewrite request: two files plus form overhead.
const maxUploadBytes = 2*source.MaxSize + 64<<10

// Server provides the REST API handlers.
type Server struct {
	sessions *session.Manager
	catalog  *guidelines.Catalog
	filename string
	logger   *slog.Logger

	// RequestTimeout bounds every request except rewrites.
	RequestTimeout time.Duration
	// RewriteTimeout is the longest a rewrite may take to answer. The
	// completion call itself is bounded by the client's own timeout.
	RewriteTimeout time.Duration
}

// NewServer creates a new API server. filename is the name offered for
// downloaded improved code.
func NewServer(m *session.Manager, catalog *guidelines.Catalog, filename string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		sessions:       m,
		catalog:        catalog,
		filename:       filename,
		logger:         logger,
		RequestTimeout: 30 * time.Second,
		RewriteTimeout: 2 * time.Minute,
	}
}

// Router returns an http.Handler for the API routes and the embedded page.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Rewrites write their own error when the completion times out, so
		// the timeout middleware only wraps the other routes.
		r.Post("/sessions/{id}/rewrites", s.rewrite)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(s.RequestTimeout))

			r.Get("/templates", s.listTemplates)
			r.Post("/sessions", s.startSession)
			r.Route("/sessions/{id}", func(r chi.Router) {
				r.Get("/", s.getSession)
				r.Delete("/", s.endSession)
				r.Get("/revisions", s.listRevisions)
				r.Get("/revisions/{seq}", s.getRevision)
				r.Get("/revisions/{seq}/download", s.downloadRevision)
				r.Get("/revisions/{seq}/diff", s.diffRevision)
				r.Put("/feedback", s.recordFeedback)
				r.Get("/feedback", s.getFeedback)
			})
		})
	})

	if h, err := ui.Handler(); err != nil {
		s.logger.Warn("embedded UI unavailable", "error", err)
	} else {
		r.Handle("/*", h)
	}

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) writeErr(w http.ResponseWriter, err error) {
	writeError(w, apperr.HTTPStatus(err), err.Error())
}

type sessionInfo struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	RevisionCount int       `json:"revision_count"`
}

func (s *Server) listTemplates(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Templates())
}

func (s *Server) startSession(w http.ResponseWriter, _ *http.Request) {
	sess := s.sessions.Start()
	writeJSON(w, http.StatusCreated, sessionInfo{ID: sess.ID, CreatedAt: sess.CreatedAt})
}

// lookup resolves the {id} URL parameter, writing a 404 if the session is
// unknown or has expired.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "id")
	sess, ok := s.sessions.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("session %q not found", id))
		return nil, false
	}
	return sess, true
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionInfo{ID: sess.ID, CreatedAt: sess.CreatedAt, RevisionCount: sess.Len()})
}

func (s *Server) endSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.sessions.End(id) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("session %q not found", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// rewriteBody is the JSON form of a rewrite request. Multipart uploads carry
// the same fields as files.
type rewriteBody struct {
	SourceCode string  `json:"source_code"`
	Guidelines *string `json:"guidelines"`
	Template   string  `json:"template"`
}

func (s *Server) rewrite(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	var body rewriteBody
	var err error
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
			return
		}
	} else {
		body, err = readRewriteForm(r)
		if err != nil {
			s.writeErr(w, err)
			return
		}
	}

	req, err := s.buildRequest(body)
	if err != nil {
		s.writeErr(w, err)
		return
	}

	rev, err := sess.Rewrite(r.Context(), req)
	if err != nil {
		var terr *apperr.TransportError
		if errors.As(err, &terr) {
			s.logger.Error("completion failed", "session", sess.ID, "status", terr.StatusCode, "error", terr.Err)
		}
		s.writeErr(w, err)
		return
	}

	s.logger.Info("rewrite completed", "session", sess.ID, "seq", rev.Seq, "template", rev.Template)
	writeJSON(w, http.StatusCreated, rev)
}

// readRewriteForm reads the multipart fields: a required "code" file, an
// optional "guidelines" file and an optional "template" name.
func readRewriteForm(r *http.Request) (rewriteBody, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return rewriteBody{}, apperr.Validation("code", "expected a multipart upload: %v", err)
	}

	code, err := readUpload(r, "code")
	if err != nil {
		return rewriteBody{}, err
	}
	if code == nil {
		return rewriteBody{}, apperr.Validation("code", "no code file uploaded")
	}
	g, err := readUpload(r, "guidelines")
	if err != nil {
		return rewriteBody{}, err
	}

	return rewriteBody{
		SourceCode: *code,
		Guidelines: g,
		Template:   r.FormValue("template"),
	}, nil
}

// readUpload returns the decoded text of the named file field, or nil if the
// field was not sent.
func readUpload(r *http.Request, field string) (*string, error) {
	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Validation(field, "%v", err)
	}
	defer f.Close()

	text, err := source.Read(hdr.Filename, f)
	if err != nil {
		return nil, err
	}
	return &text, nil
}

func (s *Server) buildRequest(body rewriteBody) (models.RewriteRequest, error) {
	tmpl := strings.TrimSpace(body.Template)
	if tmpl != "" {
		if _, ok := s.catalog.Lookup(tmpl); !ok {
			return models.RewriteRequest{}, apperr.Validation("template", "unknown template %q", tmpl)
		}
	}

	req := models.RewriteRequest{
		SourceCode: body.SourceCode,
		Guidelines: s.catalog.Resolve(tmpl, body.Guidelines),
	}
	if body.Guidelines == nil {
		req.Template = tmpl
	}
	return req, nil
}

func (s *Server) listRevisions(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Revisions())
}

// revision resolves the {seq} URL parameter, which is a 1-based sequence
// number or "latest".
func (s *Server) revision(w http.ResponseWriter, r *http.Request) (models.Revision, bool) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return models.Revision{}, false
	}

	param := chi.URLParam(r, "seq")
	var rev models.Revision
	if param == "latest" {
		rev, ok = sess.Latest()
	} else {
		seq, err := strconv.Atoi(param)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid revision %q", param))
			return models.Revision{}, false
		}
		rev, ok = sess.Revision(seq)
	}
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("revision %q not found", param))
		return models.Revision{}, false
	}
	return rev, true
}

func (s *Server) getRevision(w http.ResponseWriter, r *http.Request) {
	rev, ok := s.revision(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rev)
}

func (s *Server) downloadRevision(w http.ResponseWriter, r *http.Request) {
	rev, ok := s.revision(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": s.filename}))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, rev.ImprovedCode)
}

func (s *Server) diffRevision(w http.ResponseWriter, r *http.Request) {
	rev, ok := s.revision(w, r)
	if !ok {
		return
	}
	d, err := diff.Unified(s.filename, rev.OriginalCode, rev.ImprovedCode)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, d)
}

type feedbackBody struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (s *Server) recordFeedback(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var body feedbackBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := sess.RecordFeedback(body.Rating, body.Comment); err != nil {
		s.writeErr(w, err)
		return
	}

	s.logger.Info("feedback recorded", "session", sess.ID, "rating", body.Rating)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getFeedback(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	fb, ok := sess.Feedback()
	if !ok {
		writeError(w, http.StatusNotFound, "no feedback recorded")
		return
	}
	writeJSON(w, http.StatusOK, fb)
}
