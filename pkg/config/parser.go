package config

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/stubkit/stubd/pkg/stub"
)

// Parse decodes, validates and builds a stub document. Relative file
// references resolve against baseDir. An empty document yields no
// lifecycles.
func Parse(raw []byte, baseDir string) ([]*stub.Lifecycle, error) {
	entries, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	return Build(entries, baseDir)
}

// Decode decodes and validates a stub document without building it.
func Decode(raw []byte) ([]Entry, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}
	doc := root.Content[0]

	var generic any
	if err := doc.Decode(&generic); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if generic == nil {
		return nil, nil
	}
	if err := validateDocument(generic); err != nil {
		return nil, err
	}

	if doc.Kind == yaml.MappingNode {
		var single Entry
		if err := doc.Decode(&single); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		return []Entry{single}, nil
	}
	var entries []Entry
	if err := doc.Decode(&entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return entries, nil
}

// Build turns decoded entries into lifecycles, in order.
func Build(entries []Entry, baseDir string) ([]*stub.Lifecycle, error) {
	lifecycles := make([]*stub.Lifecycle, 0, len(entries))
	declared := make(map[string]int, len(entries))
	for i, e := range entries {
		if e.UUID != "" {
			if prev, dup := declared[e.UUID]; dup {
				return nil, fmt.Errorf("%w: entry %d (%s): uuid %q already used by entry %d",
					ErrInvalidDocument, i, e.Request.URL, e.UUID, prev)
			}
			declared[e.UUID] = i
		}
		lc, err := e.build(baseDir)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d (%s): %w", ErrInvalidDocument, i, e.Request.URL, err)
		}
		lifecycles = append(lifecycles, lc)
	}
	return lifecycles, nil
}

func (e Entry) build(baseDir string) (*stub.Lifecycle, error) {
	methods := make([]string, 0, len(e.Request.Method))
	for _, m := range e.Request.Method {
		if m = strings.ToUpper(strings.TrimSpace(m)); m != "" {
			methods = append(methods, m)
		}
	}

	pattern := stub.Pattern{
		Methods:              methods,
		URL:                  stub.NewValue(strings.TrimSpace(e.Request.URL)),
		Query:                toValues(e.Request.Query, false),
		Headers:              toValues(e.Request.Headers, true),
		JSONPath:             e.Request.JSONPath,
		RequireAuthorization: e.Request.RequireAuthorization,
	}

	post := e.Request.Post
	if post == "" && e.Request.File != "" {
		data, err := os.ReadFile(ResolvePath(baseDir, e.Request.File))
		if err != nil {
			return nil, fmt.Errorf("reading request file: %w", err)
		}
		post = string(data)
	}
	if post = strings.TrimSpace(post); post != "" {
		v := stub.NewValue(post)
		pattern.Post = &v
	}

	responses := make([]stub.Response, 0, len(e.Response))
	for _, rc := range e.Response {
		resp := stub.Response{
			Status:  strings.TrimSpace(rc.Status),
			Headers: rc.Headers,
			Latency: strings.TrimSpace(rc.Latency),
		}
		if rc.Body != "" {
			resp.Body = []byte(rc.Body)
		}
		if rc.File != "" {
			path, err := filepath.Abs(ResolvePath(baseDir, rc.File))
			if err != nil {
				return nil, fmt.Errorf("resolving response file: %w", err)
			}
			resp.File = path
		}
		responses = append(responses, resp)
	}

	return stub.NewLifecycle(e.UUID, e.Description, pattern, responses)
}

func toValues(m map[string]string, canonical bool) map[string]stub.Value {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]stub.Value, len(m))
	for k, v := range m {
		if canonical {
			k = http.CanonicalHeaderKey(k)
		}
		out[k] = stub.NewValue(v)
	}
	return out
}

// EntryFor converts a lifecycle back into its document form.
func EntryFor(lc *stub.Lifecycle) Entry {
	p := lc.Pattern
	e := Entry{
		Description: lc.Description,
		UUID:        lc.ID,
		Request: RequestConfig{
			Method:               MethodList(append([]string(nil), p.Methods...)),
			URL:                  p.URL.String(),
			Query:                fromValues(p.Query),
			Headers:              fromValues(p.Headers),
			JSONPath:             p.JSONPath,
			RequireAuthorization: p.RequireAuthorization,
		},
	}
	if p.Post != nil {
		e.Request.Post = p.Post.String()
	}
	for _, r := range lc.Responses {
		e.Response = append(e.Response, ResponseConfig{
			Status:  r.Status,
			Headers: r.Headers,
			Body:    string(r.Body),
			File:    r.File,
			Latency: r.Latency,
		})
	}
	return e
}

func fromValues(m map[string]stub.Value) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v.String()
	}
	return out
}

// Entries converts lifecycles into document entries.
func Entries(lifecycles []*stub.Lifecycle) []Entry {
	entries := make([]Entry, 0, len(lifecycles))
	for _, lc := range lifecycles {
		entries = append(entries, EntryFor(lc))
	}
	return entries
}

// Marshal renders lifecycles as a YAML stub document that Parse accepts.
func Marshal(lifecycles []*stub.Lifecycle) ([]byte, error) {
	data, err := yaml.Marshal(Entries(lifecycles))
	if err != nil {
		return nil, fmt.Errorf("marshaling stub document: %w", err)
	}
	return data, nil
}

// MarshalJSON renders lifecycles as an indented JSON array.
func MarshalJSON(lifecycles []*stub.Lifecycle) ([]byte, error) {
	data, err := json.MarshalIndent(Entries(lifecycles), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling stub document: %w", err)
	}
	return data, nil
}
