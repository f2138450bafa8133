package admin

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/stubkit/stubd/pkg/httputil"
)

// CORSConfig holds the cross-origin policy for browser-based admin tools.
type CORSConfig struct {
	// AllowedOrigins lists origins allowed to call the admin API.
	// "*" allows any origin.
	AllowedOrigins []string

	// MaxAge is how long, in seconds, a preflight result may be cached.
	MaxAge int
}

// WithCORS enables CORS handling. Without it no CORS headers are sent.
func WithCORS(cfg CORSConfig) Option {
	return func(a *AdminAPI) {
		if cfg.MaxAge == 0 {
			cfg.MaxAge = 86400
		}
		a.cors = &cfg
	}
}

func (c *CORSConfig) allowOrigin(origin string) string {
	if origin == "" {
		return ""
	}
	if slices.Contains(c.AllowedOrigins, "*") {
		return "*"
	}
	if slices.Contains(c.AllowedOrigins, origin) {
		return origin
	}
	return ""
}

// withMiddleware wraps the admin mux. Outermost first: access log, metrics,
// common headers, CORS, panic recovery.
func (a *AdminAPI) withMiddleware(next http.Handler) http.Handler {
	h := a.recoverMiddleware(next)
	h = a.corsMiddleware(h)
	h = a.headersMiddleware(h)
	h = a.metricsMiddleware(h)
	return httputil.AccessLog(a.log, h)
}

func (a *AdminAPI) headersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.renderer.SetCommonHeaders(w.Header())
		next.ServeHTTP(w, r)
	})
}

func (a *AdminAPI) corsMiddleware(next http.Handler) http.Handler {
	if a.cors == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed := a.cors.allowOrigin(r.Header.Get("Origin"))
		if allowed != "" {
			w.Header().Set("Access-Control-Allow-Origin", allowed)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")
			w.Header().Set("Access-Control-Expose-Headers", "Location")
			w.Header().Set("Access-Control-Max-Age", strconv.Itoa(a.cors.MaxAge))
			if allowed != "*" {
				w.Header().Add("Vary", "Origin")
			}
		}
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *AdminAPI) metricsMiddleware(next http.Handler) http.Handler {
	if a.metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := httputil.NewStatusRecorder(w)
		next.ServeHTTP(rec, r)
		if !strings.HasPrefix(r.URL.Path, "/metrics") {
			a.metrics.ObserveAdmin(r.Method, rec.Status())
		}
	})
}

// recoverMiddleware turns a handler panic into the admin 500 response so a
// malformed request cannot take the admin port down.
func (a *AdminAPI) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := httputil.NewStatusRecorder(w)
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}
			a.log.Error("admin handler panic", "method", r.Method, "path", r.URL.Path, "panic", v)
			if !rec.Written() {
				httputil.WriteText(rec, http.StatusInternalServerError, failureMessage(v))
			}
		}()
		next.ServeHTTP(rec, r)
	})
}
