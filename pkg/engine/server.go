package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	"github.com/stubkit/stubd/internal/storage"
	"github.com/stubkit/stubd/pkg/admin"
	"github.com/stubkit/stubd/pkg/config"
	"github.com/stubkit/stubd/pkg/dispatch"
	"github.com/stubkit/stubd/pkg/logging"
	"github.com/stubkit/stubd/pkg/metrics"
	"github.com/stubkit/stubd/pkg/portal"
)

// Default listener settings.
const (
	DefaultHost      = "localhost"
	DefaultStubsPort = 8882
	DefaultAdminPort = 8889
)

// Config configures a Server.
type Config struct {
	Host      string
	StubsPort int
	AdminPort int

	// Data is the stub document source: a file, a directory or a glob.
	// Empty starts with an empty catalog.
	Data string

	// Watch reloads Data when it changes on disk.
	Watch         bool
	WatchDebounce time.Duration

	// MaxConnections caps concurrent connections per port; 0 means unlimited.
	MaxConnections int

	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Host:              DefaultHost,
		StubsPort:         DefaultStubsPort,
		AdminPort:         DefaultAdminPort,
		WatchDebounce:     250 * time.Millisecond,
		ReadHeaderTimeout: 10 * time.Second,
		ShutdownTimeout:   5 * time.Second,
	}
}

// Server owns the repository and both listeners.
type Server struct {
	cfg      Config
	version  string
	log      *slog.Logger
	repo     *storage.Repository
	metrics  *metrics.Metrics
	renderer *dispatch.Renderer

	stubs *http.Server
	admin *http.Server

	mu            sync.Mutex
	stubsListener net.Listener
	adminListener net.Listener
	startTime     time.Time
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) ServerOption {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithVersion sets the version reported in the Server header and /status.
func WithVersion(v string) ServerOption {
	return func(s *Server) {
		s.version = v
	}
}

// WithMetrics replaces the server's metrics set.
func WithMetrics(m *metrics.Metrics) ServerOption {
	return func(s *Server) {
		s.metrics = m
	}
}

// NewServer loads the data source and builds both portals. It does not
// bind any port.
func NewServer(cfg Config, opts ...ServerOption) (*Server, error) {
	s := &Server{
		cfg:     cfg,
		version: "dev",
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	if s.cfg.WatchDebounce <= 0 {
		s.cfg.WatchDebounce = DefaultConfig().WatchDebounce
	}
	if s.cfg.ShutdownTimeout <= 0 {
		s.cfg.ShutdownTimeout = DefaultConfig().ShutdownTimeout
	}

	s.repo = storage.NewRepository(nil)
	s.repo.OnChange(s.metrics.SetCatalogSize)
	if cfg.Data != "" {
		if _, err := s.Reload(context.Background(), metrics.SourceStartup); err != nil {
			return nil, err
		}
	}

	s.renderer = dispatch.NewRenderer(s.version)

	stubsHandler := portal.NewHandler(s.repo, s.renderer)
	stubsHandler.SetLogger(s.log.With("portal", "stubs"))
	stubsHandler.SetMetrics(s.metrics)

	var reload admin.ReloadFunc
	if cfg.Data != "" {
		reload = s.Reload
	}
	adminHandler := admin.NewAdminAPI(s.repo,
		admin.WithRenderer(s.renderer),
		admin.WithMetrics(s.metrics),
		admin.WithReload(reload),
		admin.WithBaseDir(config.BaseDir(cfg.Data)),
		admin.WithVersion(s.version),
		admin.WithLogger(s.log.With("portal", "admin")),
		admin.WithStatusInfo(admin.StatusInfo{
			Host:      cfg.Host,
			StubsPort: cfg.StubsPort,
			AdminPort: cfg.AdminPort,
			Data:      cfg.Data,
			Watching:  cfg.Watch && cfg.Data != "",
		}),
	)

	s.stubs = &http.Server{
		Handler:           stubsHandler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(s.log.Handler(), slog.LevelWarn),
	}
	s.admin = &http.Server{
		Handler:           adminHandler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(s.log.Handler(), slog.LevelWarn),
	}
	return s, nil
}

// Repository returns the live lifecycle repository.
func (s *Server) Repository() *storage.Repository {
	return s.repo
}

// Metrics returns the server's metrics set.
func (s *Server) Metrics() *metrics.Metrics {
	return s.metrics
}

// StubsHandler returns the stubs portal handler.
func (s *Server) StubsHandler() http.Handler {
	return s.stubs.Handler
}

// AdminHandler returns the admin portal handler.
func (s *Server) AdminHandler() http.Handler {
	return s.admin.Handler
}

// Listen binds both ports. A port of 0 picks a free port; the chosen
// addresses are reported by StubsAddr and AdminAddr.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stubsListener != nil {
		return errors.New("server is already listening")
	}
	stubsLn, err := s.listen(s.cfg.StubsPort)
	if err != nil {
		return fmt.Errorf("stubs portal: %w", err)
	}
	adminLn, err := s.listen(s.cfg.AdminPort)
	if err != nil {
		_ = stubsLn.Close()
		return fmt.Errorf("admin portal: %w", err)
	}
	s.stubsListener, s.adminListener = stubsLn, adminLn
	return nil
}

func (s *Server) listen(port int) (net.Listener, error) {
	ln, err := net.Listen("tcp", net.JoinHostPort(s.cfg.Host, strconv.Itoa(port)))
	if err != nil {
		return nil, err
	}
	if s.cfg.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, s.cfg.MaxConnections)
	}
	return ln, nil
}

// StubsAddr returns the bound stubs portal address, or "" before Listen.
func (s *Server) StubsAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stubsListener == nil {
		return ""
	}
	return s.stubsListener.Addr().String()
}

// AdminAddr returns the bound admin portal address, or "" before Listen.
func (s *Server) AdminAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.adminListener == nil {
		return ""
	}
	return s.adminListener.Addr().String()
}

// Run binds both ports if needed and serves until ctx is cancelled or a
// listener fails, then shuts both servers down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if s.StubsAddr() == "" {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	var w *watcher
	if s.cfg.Watch && s.cfg.Data != "" {
		var err error
		if w, err = newWatcher(s.cfg.Data, s.cfg.WatchDebounce, s.log); err != nil {
			s.closeListeners()
			return fmt.Errorf("watching %s: %w", s.cfg.Data, err)
		}
	}

	s.mu.Lock()
	stubsLn, adminLn := s.stubsListener, s.adminListener
	s.startTime = time.Now()
	s.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("stubs portal started", "addr", stubsLn.Addr().String())
		return serve(s.stubs, stubsLn)
	})
	g.Go(func() error {
		s.log.Info("admin portal started", "addr", adminLn.Addr().String())
		return serve(s.admin, adminLn)
	})
	if w != nil {
		g.Go(func() error {
			return w.run(gctx, func() {
				_, _ = s.Reload(gctx, metrics.SourceWatch)
			})
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		return s.shutdown()
	})

	err := g.Wait()
	s.log.Info("stubd stopped")
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (s *Server) closeListeners() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ln := range []net.Listener{s.stubsListener, s.adminListener} {
		if ln != nil {
			_ = ln.Close()
		}
	}
	s.stubsListener, s.adminListener = nil, nil
}

func serve(srv *http.Server, ln net.Listener) error {
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := s.stubs.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stubs portal shutdown: %w", err))
	}
	if err := s.admin.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("admin portal shutdown: %w", err))
	}
	return errors.Join(errs...)
}

// Uptime returns how long the server has been serving.
func (s *Server) Uptime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startTime.IsZero() {
		return 0
	}
	return time.Since(s.startTime)
}
