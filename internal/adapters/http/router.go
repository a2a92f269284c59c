package httpadapter

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dmarchenko/medclaims/internal/core/domain"
	"github.com/dmarchenko/medclaims/internal/core/ports"
	"github.com/dmarchenko/medclaims/internal/observability/metrics"
)

type Router struct {
	processor ports.ClaimProcessor
	metrics   *metrics.ServerMetrics

	serviceName      string
	oracleConfigured bool
	maxUploadBytes   int64
}

func NewRouter(
	processor ports.ClaimProcessor,
	serverMetrics *metrics.ServerMetrics,
	serviceName string,
	oracleConfigured bool,
	maxUploadBytes int64,
) *Router {
	return &Router{
		processor:        processor,
		metrics:          serverMetrics,
		serviceName:      serviceName,
		oracleConfigured: oracleConfigured,
		maxUploadBytes:   maxUploadBytes,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/health", rt.health)
	mux.HandleFunc("/v1/claims/process", rt.processClaim)
	mux.Handle("/metrics", rt.metrics.Handler())

	var handler http.Handler = mux
	handler = rt.metrics.Middleware(rt.serviceName, handler)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": rt.serviceName,
		"components": map[string]string{
			"oracle":    healthState(rt.oracleConfigured),
			"extractor": "ready",
		},
	})
}

func healthState(configured bool) string {
	if configured {
		return "configured"
	}
	return "not_configured"
}

// processClaim accepts a multipart form with one or more `files` parts.
// Upload validation failures are 400s; once the pipeline runs, failures
// are encoded in the response body and the status stays 200.
func (rt *Router) processClaim(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	if err := r.ParseMultipartForm(rt.maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'files' is required"})
		return
	}

	files := make([]domain.UploadedFile, 0, len(headers))
	for _, header := range headers {
		if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "only PDF files are supported: " + header.Filename,
			})
			return
		}

		part, err := header.Open()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable upload: " + header.Filename})
			return
		}
		content, err := io.ReadAll(part)
		_ = part.Close()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable upload: " + header.Filename})
			return
		}

		files = append(files, domain.UploadedFile{Filename: header.Filename, Content: content})
	}

	response := rt.processor.Process(r.Context(), files)
	rt.metrics.RecordClaim(rt.serviceName, response)

	writeJSON(w, http.StatusOK, response)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
