package admin

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/stubkit/stubd/internal/storage"
	"github.com/stubkit/stubd/pkg/dispatch"
	"github.com/stubkit/stubd/pkg/logging"
	"github.com/stubkit/stubd/pkg/metrics"
)

// MaxBodySize is the maximum admin request body (10MB).
const MaxBodySize = 10 << 20

// ReloadFunc re-reads the catalog from its data source and returns the new
// lifecycle count. source labels the trigger for metrics.
type ReloadFunc func(ctx context.Context, source string) (int, error)

// StatusInfo describes the running server for GET /status.
type StatusInfo struct {
	Host      string `json:"host"`
	StubsPort int    `json:"stubs_port"`
	AdminPort int    `json:"admin_port"`
	Data      string `json:"data,omitempty"`
	Watching  bool   `json:"watching"`
}

// AdminAPI is the admin portal http.Handler.
type AdminAPI struct {
	store    storage.LifecycleStore
	renderer *dispatch.Renderer
	metrics  *metrics.Metrics
	reload   ReloadFunc
	info     StatusInfo
	baseDir  string
	version  string
	started  time.Time
	cors     *CORSConfig
	log      *slog.Logger

	handler http.Handler
}

// Option configures an AdminAPI.
type Option func(*AdminAPI)

// WithRenderer sets the renderer providing the common response headers.
func WithRenderer(r *dispatch.Renderer) Option {
	return func(a *AdminAPI) {
		a.renderer = r
	}
}

// WithMetrics enables request metrics and the /metrics endpoint.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *AdminAPI) {
		a.metrics = m
	}
}

// WithReload enables POST /refresh.
func WithReload(fn ReloadFunc) Option {
	return func(a *AdminAPI) {
		a.reload = fn
	}
}

// WithStatusInfo sets the server details reported by GET /status.
func WithStatusInfo(info StatusInfo) Option {
	return func(a *AdminAPI) {
		a.info = info
	}
}

// WithBaseDir sets the directory relative file references in posted
// documents resolve against.
func WithBaseDir(dir string) Option {
	return func(a *AdminAPI) {
		a.baseDir = dir
	}
}

// WithVersion sets the version reported by GET /status.
func WithVersion(v string) Option {
	return func(a *AdminAPI) {
		a.version = v
	}
}

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(a *AdminAPI) {
		if log != nil {
			a.log = log
		}
	}
}

// NewAdminAPI creates the admin handler over store.
func NewAdminAPI(store storage.LifecycleStore, opts ...Option) *AdminAPI {
	a := &AdminAPI{
		store:   store,
		version: "dev",
		started: time.Now(),
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.renderer == nil {
		a.renderer = dispatch.NewRenderer(a.version)
	}

	mux := http.NewServeMux()
	a.registerRoutes(mux)
	a.handler = a.withMiddleware(mux)
	return a
}

// ServeHTTP implements http.Handler.
func (a *AdminAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}
