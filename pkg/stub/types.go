package stub

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// MethodAny matches every request method.
const MethodAny = "ANY"

// Validation errors returned by NewLifecycle.
var (
	ErrMissingMethod    = errors.New("request method is required")
	ErrMissingURL       = errors.New("request url is required")
	ErrNoResponses      = errors.New("at least one response is required")
	ErrBodyAndFile      = errors.New("response body and file are mutually exclusive")
	ErrInvalidJSONPath  = errors.New("invalid jsonpath expression")
	ErrNonNumericStatus = errors.New("status is not numeric")
	ErrNonNumericDelay  = errors.New("latency is not numeric")
)

// Category classifies a response for dispatch.
type Category int

const (
	// CategoryOK renders the declared status, headers and body.
	CategoryOK Category = iota
	// CategoryRedirect renders a 3xx status with a mandatory Location header.
	CategoryRedirect
)

func (c Category) String() string {
	switch c {
	case CategoryRedirect:
		return "redirect"
	default:
		return "ok"
	}
}

// Pattern describes which requests a lifecycle answers.
type Pattern struct {
	// Methods lists the accepted methods in upper case. MethodAny or "*"
	// accepts every method.
	Methods []string

	URL Value

	// Query parameters that must be present. Extra request parameters are ignored.
	Query map[string]Value

	// Headers that must be present, keyed by canonical header name.
	Headers map[string]Value

	// Post is the raw body matcher; nil when the pattern ignores the body.
	Post *Value

	// JSONPath conditions evaluated against a JSON request body.
	JSONPath map[string]any

	// RequireAuthorization makes a request without a non-empty
	// Authorization header resolve to Unauthorized.
	RequireAuthorization bool
}

// AcceptsMethod reports whether method is one of the pattern's methods.
// Comparison is case-sensitive.
func (p *Pattern) AcceptsMethod(method string) bool {
	for _, m := range p.Methods {
		if m == MethodAny || m == "*" || m == method {
			return true
		}
	}
	return false
}

// NeedsAuthorization reports whether the pattern demands an Authorization header.
func (p *Pattern) NeedsAuthorization() bool {
	if p.RequireAuthorization {
		return true
	}
	_, ok := p.Headers["Authorization"]
	return ok
}

// Response is one configured reply. It is passed around by value.
type Response struct {
	Status  string
	Headers map[string]string
	Body    []byte
	// File is an absolute path read at render time, so fixtures can be
	// edited without restarting.
	File    string
	Latency string
}

// Category derives the dispatch category from the status.
func (r Response) Category() Category {
	code, err := r.StatusCode()
	if err == nil && code >= 300 && code < 400 {
		return CategoryRedirect
	}
	return CategoryOK
}

// StatusCode parses Status. An empty status means 200.
func (r Response) StatusCode() (int, error) {
	s := strings.TrimSpace(r.Status)
	if s == "" {
		return http.StatusOK, nil
	}
	code, err := strconv.Atoi(s)
	if err != nil || code < 100 || code > 999 {
		return 0, fmt.Errorf("%w: %q", ErrNonNumericStatus, r.Status)
	}
	return code, nil
}

// Delay parses Latency as milliseconds. An empty latency means no delay.
func (r Response) Delay() (time.Duration, error) {
	s := strings.TrimSpace(r.Latency)
	if s == "" {
		return 0, nil
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil || ms < 0 {
		return 0, fmt.Errorf("%w: %q", ErrNonNumericDelay, r.Latency)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// Header looks up a declared response header case-insensitively.
func (r Response) Header(name string) (string, bool) {
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}
