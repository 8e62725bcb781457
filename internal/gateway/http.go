// ABOUTME: HTTP routes for health checks, attachment download and description rendering
// ABOUTME: Document routes sit behind the bearer-token middleware and map error kinds to status codes

package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/2389/docket/internal/auth"
	"github.com/2389/docket/internal/errs"
)

// readyTimeout bounds the store ping behind /health/ready.
const readyTimeout = 2 * time.Second

func (g *Gateway) routes(logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", g.handleHealth)
	mux.HandleFunc("GET /health/ready", g.handleReady)

	authed := auth.HTTPAuthMiddleware(g.gate, logger.With("component", "auth"))
	mux.Handle("GET /api/documents/{id}/file", authed(http.HandlerFunc(g.handleFile)))
	mux.Handle("GET /api/documents/{id}/description", authed(http.HandlerFunc(g.handleDescription)))
	return mux
}

// handleHealth returns 200 OK if the process is alive.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReady returns 200 OK if the store answers a ping.
func (g *Gateway) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := g.store.Ping(ctx); err != nil {
		g.logger.Warn("readiness check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("database unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// handleFile streams a document's attachment.
func (g *Gateway) handleFile(w http.ResponseWriter, r *http.Request) {
	file, err := g.documents.OpenFile(r.Context(), auth.FromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		g.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", file.Type)
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Name}))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}

// handleDescription returns the description rendered as an HTML fragment.
func (g *Gateway) handleDescription(w http.ResponseWriter, r *http.Request) {
	html, err := g.documents.RenderDescription(r.Context(), auth.FromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(html)
}

// HTTPStatus maps an error kind to its HTTP status code.
func HTTPStatus(kind errs.Kind) int {
	switch kind {
	case errs.KindUnauthenticated:
		return http.StatusUnauthorized
	case errs.KindPermissionDenied:
		return http.StatusForbidden
	case errs.KindInvalidTransition, errs.KindAlreadyExists, errs.KindConflict:
		return http.StatusConflict
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes a JSON error body. Internal causes are logged, not sent.
func (g *Gateway) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := errs.KindOf(err)
	if kind == errs.KindInternal {
		g.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	sendJSONError(w, HTTPStatus(kind), errs.PublicMessage(err))
}

// sendJSONError writes a JSON error response.
func sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		_, _ = fmt.Fprint(w, `{"error":"internal error"}`)
	}
}
