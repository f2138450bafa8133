package stub

import (
	"net/http"
	"net/url"
	"strings"
)

// Request is the transport-neutral description of an inbound request.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// NewRequest builds a descriptor from an already-read request body.
func NewRequest(r *http.Request, body []byte) *Request {
	return &Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   body,
	}
}

// Authorization returns the trimmed Authorization header.
func (r *Request) Authorization() string {
	if r.Header == nil {
		return ""
	}
	return strings.TrimSpace(r.Header.Get("Authorization"))
}

// ContentType returns the media type of the body without parameters.
func (r *Request) ContentType() string {
	if r.Header == nil {
		return ""
	}
	ct := r.Header.Get("Content-Type")
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

// URI returns the path followed by the raw query, if any.
func (r *Request) URI() string {
	if len(r.Query) == 0 {
		return r.Path
	}
	return r.Path + "?" + r.Query.Encode()
}
