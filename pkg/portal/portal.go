// Package portal serves the stubs port: every request is resolved against the
// catalog and rendered by the dispatch strategies.
package portal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/stubkit/stubd/internal/storage"
	"github.com/stubkit/stubd/pkg/dispatch"
	"github.com/stubkit/stubd/pkg/httputil"
	"github.com/stubkit/stubd/pkg/logging"
	"github.com/stubkit/stubd/pkg/metrics"
	"github.com/stubkit/stubd/pkg/stub"
	"github.com/stubkit/stubd/pkg/util"
)

// MaxRequestBodySize is the maximum request body read for matching (10MB).
const MaxRequestBodySize = 10 << 20

// Handler is the stubs portal http.Handler.
type Handler struct {
	store    storage.LifecycleStore
	renderer *dispatch.Renderer
	metrics  *metrics.Metrics
	log      *slog.Logger
}

// NewHandler creates a portal handler over store.
func NewHandler(store storage.LifecycleStore, renderer *dispatch.Renderer) *Handler {
	if renderer == nil {
		renderer = dispatch.NewRenderer("")
	}
	return &Handler{
		store:    store,
		renderer: renderer,
		log:      logging.Nop(),
	}
}

// SetLogger sets the operational logger.
func (h *Handler) SetLogger(log *slog.Logger) {
	if log != nil {
		h.log = log
	} else {
		h.log = logging.Nop()
	}
}

// SetMetrics enables metrics recording.
func (h *Handler) SetMetrics(m *metrics.Metrics) {
	h.metrics = m
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rw := httputil.NewStatusRecorder(w)
	label := metrics.OutcomeError
	index := -1

	if h.metrics != nil {
		h.metrics.ActiveRequests.Inc()
		defer h.metrics.ActiveRequests.Dec()
	}

	defer func() {
		if rec := recover(); rec != nil {
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			label = metrics.OutcomeError
			h.fail(rw, r, "panic", fmt.Errorf("panic: %v", rec))
		}
		elapsed := time.Since(start)
		if h.metrics != nil {
			h.metrics.ObserveStub(label, elapsed)
		}
		h.log.Info("stub request",
			"method", r.Method,
			"uri", r.URL.RequestURI(),
			"outcome", label,
			"index", index,
			"status", rw.Status(),
			"duration_ms", elapsed.Milliseconds(),
		)
	}()

	body, err := io.ReadAll(http.MaxBytesReader(rw, r.Body, MaxRequestBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.renderer.SetCommonHeaders(rw.Header())
			httputil.WriteText(rw, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		h.fail(rw, r, "read", fmt.Errorf("reading request body: %w", err))
		return
	}

	req := stub.NewRequest(r, body)
	out := h.store.FindStubResponseFor(req)
	label, index = classify(out)
	if _, missed := out.(stub.NotFound); missed && h.log.Enabled(r.Context(), slog.LevelDebug) {
		h.log.Debug("no stub matched",
			"method", req.Method,
			"uri", req.URI(),
			"content_type", req.ContentType(),
			"body", util.TruncateBody(body, util.MaxLogBodySize),
		)
	}

	if err := h.renderer.Render(r.Context(), rw, req, out); err != nil {
		reason := errorReason(err)
		if h.metrics != nil {
			h.metrics.RenderErrors.WithLabelValues(reason).Inc()
		}
		if reason == "cancelled" {
			h.log.Debug("client went away during simulated latency", "uri", req.URI())
			return
		}
		label = metrics.OutcomeError
		h.fail(rw, r, reason, err)
	}
}

// fail answers with a 500 unless the response has already started.
func (h *Handler) fail(w *httputil.StatusRecorder, r *http.Request, reason string, err error) {
	h.log.Error("problem handling stub request",
		"method", r.Method,
		"uri", r.URL.RequestURI(),
		"reason", reason,
		"error", err,
	)
	if w.Written() {
		return
	}
	h.renderer.SetCommonHeaders(w.Header())
	httputil.WriteText(w, http.StatusInternalServerError, "Problem handling request in Stubs handler: "+err.Error())
}

func classify(out stub.Outcome) (string, int) {
	switch o := out.(type) {
	case stub.Matched:
		if o.Response.Category() == stub.CategoryRedirect {
			return metrics.OutcomeRedirect, o.Index
		}
		return metrics.OutcomeMatched, o.Index
	case stub.Unauthorized:
		return metrics.OutcomeUnauthorized, o.Index
	default:
		return metrics.OutcomeNotFound, -1
	}
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, dispatch.ErrInvalidStatus):
		return "status"
	case errors.Is(err, dispatch.ErrInvalidLatency):
		return "latency"
	case errors.Is(err, dispatch.ErrMissingLocation):
		return "location"
	case errors.Is(err, dispatch.ErrBodyFile):
		return "body_file"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "write"
	}
}
