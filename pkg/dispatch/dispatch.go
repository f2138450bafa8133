package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/stubkit/stubd/pkg/stub"
)

// Render errors. Each is returned before any byte is written.
var (
	ErrInvalidStatus   = errors.New("invalid response status")
	ErrInvalidLatency  = errors.New("invalid response latency")
	ErrMissingLocation = errors.New("redirect response has no Location header")
	ErrBodyFile        = errors.New("cannot read response body file")
	ErrUnknownOutcome  = errors.New("unknown outcome")
)

// Messages written by the built-in strategies.
const (
	UnauthorizedMessage = "You are not authorized to view this page without supplied 'Authorization' HTTP header"
	notFoundFormat      = "No data found for %s request at URI %s"
)

// Renderer writes outcomes. The zero value is not usable; use NewRenderer.
type Renderer struct {
	server string
	now    func() time.Time
}

// NewRenderer creates a renderer advertising version in the Server header.
func NewRenderer(version string) *Renderer {
	if version == "" {
		version = "dev"
	}
	return &Renderer{
		server: "stubd/" + version,
		now:    time.Now,
	}
}

// ServerName returns the value of the Server header.
func (r *Renderer) ServerName() string {
	return r.server
}

// SetCommonHeaders stamps the headers every response carries.
func (r *Renderer) SetCommonHeaders(h http.Header) {
	h.Set("Server", r.server)
	h.Set("Date", r.now().UTC().Format(http.TimeFormat))
	h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")
}

// Render writes out for req. On error nothing past the common headers has
// been written.
func (r *Renderer) Render(ctx context.Context, w http.ResponseWriter, req *stub.Request, out stub.Outcome) error {
	r.SetCommonHeaders(w.Header())

	switch o := out.(type) {
	case stub.Matched:
		if o.Response.Category() == stub.CategoryRedirect {
			return renderRedirect(ctx, w, o.Response)
		}
		return renderOK(ctx, w, o.Response)
	case stub.Unauthorized:
		return renderUnauthorized(w)
	case stub.NotFound:
		return renderNotFound(w, req)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownOutcome, out)
	}
}

// prepared is a response whose textual fields have been validated.
type prepared struct {
	status int
	delay  time.Duration
	body   []byte
}

func prepare(resp stub.Response) (prepared, error) {
	status, err := resp.StatusCode()
	if err != nil {
		return prepared{}, fmt.Errorf("%w: %w", ErrInvalidStatus, err)
	}
	delay, err := resp.Delay()
	if err != nil {
		return prepared{}, fmt.Errorf("%w: %w", ErrInvalidLatency, err)
	}
	body := resp.Body
	if resp.File != "" {
		body, err = os.ReadFile(resp.File)
		if err != nil {
			return prepared{}, fmt.Errorf("%w: %w", ErrBodyFile, err)
		}
	}
	return prepared{status: status, delay: delay, body: body}, nil
}

func renderOK(ctx context.Context, w http.ResponseWriter, resp stub.Response) error {
	p, err := prepare(resp)
	if err != nil {
		return err
	}
	if err := wait(ctx, p.delay); err != nil {
		return err
	}
	writeHeaders(w.Header(), resp.Headers)
	return writeBody(w, p.status, p.body)
}

func renderRedirect(ctx context.Context, w http.ResponseWriter, resp stub.Response) error {
	p, err := prepare(resp)
	if err != nil {
		return err
	}
	if loc, ok := resp.Header("Location"); !ok || strings.TrimSpace(loc) == "" {
		return fmt.Errorf("%w (status %d)", ErrMissingLocation, p.status)
	}
	if err := wait(ctx, p.delay); err != nil {
		return err
	}
	writeHeaders(w.Header(), resp.Headers)
	w.Header().Set("Connection", "close")
	return writeBody(w, p.status, p.body)
}

func renderUnauthorized(w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	return writeBody(w, http.StatusUnauthorized, []byte(UnauthorizedMessage))
}

func renderNotFound(w http.ResponseWriter, req *stub.Request) error {
	method, uri := "", ""
	if req != nil {
		method, uri = req.Method, req.URI()
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	return writeBody(w, http.StatusNotFound, fmt.Appendf(nil, notFoundFormat, method, uri))
}

// wait blocks for d or until ctx is done. Only the serving goroutine waits.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func writeHeaders(dst http.Header, declared map[string]string) {
	for name, value := range declared {
		dst.Set(name, value)
	}
}

func writeBody(w http.ResponseWriter, status int, body []byte) error {
	w.WriteHeader(status)
	if len(body) == 0 {
		return nil
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	return nil
}
