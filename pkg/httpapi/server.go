// Package httpapi exposes the voice identity pipeline over HTTP.
//
// The surface mirrors the pipeline's two operations plus identity
// removal and a health probe:
//
//	POST   /register          multipart form: user_id, file
//	POST   /verify            multipart form: user_id, file
//	DELETE /users/{user_id}
//	GET    /health
//	GET    /
//
// The verification threshold is server-side policy; requests cannot
// override it. Error responses carry enough to correct the input but
// never internal file paths.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/vospect/vospect/pkg/audio/normalize"
	"github.com/vospect/vospect/pkg/pipeline"
	"github.com/vospect/vospect/pkg/voiceprint"
)

// maxUploadBytes caps a single audio upload. Generous for seconds of
// audio in any supported container.
const maxUploadBytes = 32 << 20

// Server handles the HTTP API.
type Server struct {
	pipe *pipeline.Pipeline
	log  *slog.Logger
}

// New creates a Server around an assembled pipeline.
func New(pipe *pipeline.Pipeline, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{pipe: pipe, log: log}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("POST /verify", s.handleVerify)
	mux.HandleFunc("DELETE /users/{user_id}", s.handleRemove)
	return mux
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "voice identity api",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// upload pulls the identity and audio file out of a multipart form.
func upload(r *http.Request) (identity, filename, contentType string, file multipart.File, err error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return "", "", "", nil, err
	}
	identity = r.FormValue("user_id")
	if identity == "" {
		return "", "", "", nil, errors.New("missing user_id")
	}
	f, header, err := r.FormFile("file")
	if err != nil {
		return "", "", "", nil, errors.New("missing file")
	}
	return identity, header.Filename, header.Header.Get("Content-Type"), f, nil
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	identity, filename, contentType, file, err := upload(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	defer file.Close()

	res, err := s.pipe.Enroll(r.Context(), pipeline.EnrollRequest{
		Identity:    identity,
		Audio:       file,
		Filename:    filename,
		ContentType: contentType,
	})
	if err != nil {
		s.writePipelineErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	identity, filename, contentType, file, err := upload(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	defer file.Close()

	decision, err := s.pipe.Verify(r.Context(), pipeline.VerifyRequest{
		Identity:    identity,
		Audio:       file,
		Filename:    filename,
		ContentType: contentType,
	})
	if err != nil {
		s.writePipelineErr(w, r, err)
		return
	}

	// A rejection is a distinguished outcome, not an internal error:
	// the caller gets the score and threshold either way.
	status := http.StatusOK
	if !decision.Match {
		status = http.StatusUnauthorized
	}
	writeJSON(w, status, decision)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	identity := r.PathValue("user_id")
	if identity == "" {
		writeErr(w, http.StatusBadRequest, "missing user_id")
		return
	}
	if err := s.pipe.Remove(r.Context(), identity); err != nil {
		s.writePipelineErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writePipelineErr maps pipeline errors onto HTTP statuses.
func (s *Server) writePipelineErr(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch {
	case errors.Is(err, normalize.ErrUnsupportedFormat),
		errors.Is(err, normalize.ErrInvalidMIMEType),
		errors.Is(err, normalize.ErrAudioTooShort),
		errors.Is(err, normalize.ErrAudioDecode):
		status = http.StatusBadRequest
	case errors.Is(err, pipeline.ErrAlreadyEnrolled):
		status = http.StatusConflict
	case errors.Is(err, pipeline.ErrIdentityNotEnrolled):
		status = http.StatusNotFound
	case errors.Is(err, voiceprint.ErrModelNotReady),
		errors.Is(err, pipeline.ErrStorageUnavailable):
		status = http.StatusServiceUnavailable
	default:
		status = http.StatusInternalServerError
	}

	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "path", r.URL.Path, "error", err)
		// Internal detail stays in the log.
		writeErr(w, status, "internal error")
		return
	}
	writeErr(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
