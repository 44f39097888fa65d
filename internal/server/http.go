// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/tejzpr/moodlog-mcp/internal/export"
	"github.com/tejzpr/moodlog-mcp/internal/logging"
	"github.com/tejzpr/moodlog-mcp/internal/metrics"
	"github.com/tejzpr/moodlog-mcp/internal/tools"
)

// HTTPServer exposes metrics, a health check and read-only exports next to
// the stdio transport
type HTTPServer struct {
	srv    *http.Server
	logger *logging.Logger
}

// HealthCheck reports whether the backing store is reachable
type HealthCheck func() error

// NewHTTPServer creates the HTTP server listening on addr
func NewHTTPServer(addr string, tc *tools.ToolContext, rec *metrics.Recorder, health HealthCheck, logger *logging.Logger) *HTTPServer {
	if logger == nil {
		logger = logging.Nop()
	}
	return &HTTPServer{
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(tc, rec, health),
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger.WithComponent("http"),
	}
}

// NewRouter registers /healthz, /metrics when rec is set, and the export
// routes when tc is set. /healthz answers 503 when health fails.
func NewRouter(tc *tools.ToolContext, rec *metrics.Recorder, health HealthCheck) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if health != nil {
			if err := health(); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if rec != nil {
		r.Handle("/metrics", rec.Handler())
	}

	if tc != nil {
		r.Get("/report", exportHandler(tc, export.FormatHTML, "text/html; charset=utf-8"))
		r.Get("/export", exportHandler(tc, export.FormatJSON, "application/json"))
	}
	return r
}

func exportHandler(tc *tools.ToolContext, format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := tools.Render(r.Context(), tc, format)
		if err != nil {
			tc.Logger.Errorw("export failed", "format", format, "error", err)
			http.Error(w, "export failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write([]byte(out))
	}
}

// Start listens in the background. Listen errors other than a clean
// shutdown are logged.
func (h *HTTPServer) Start() {
	go func() {
		h.logger.Infow("http endpoint listening", "address", h.srv.Addr)
		if err := h.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.logger.Errorw("http endpoint failed", "error", err)
		}
	}()
}

// Shutdown stops the server
func (h *HTTPServer) Shutdown(ctx context.Context) error {
	return h.srv.Shutdown(ctx)
}
