package stub

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/ohler55/ojg/jp"
)

// Lifecycle is one matching rule: a pattern plus the responses it cycles
// through. A Lifecycle must not be copied after construction.
type Lifecycle struct {
	ID          string
	Description string
	Pattern     Pattern
	Responses   []Response

	hits   atomic.Int64
	cursor atomic.Uint64

	generatedID bool
}

// NewLifecycle validates the pattern and responses and returns a lifecycle
// with zeroed counters. An empty id is replaced by a random UUID.
func NewLifecycle(id, description string, pattern Pattern, responses []Response) (*Lifecycle, error) {
	if len(pattern.Methods) == 0 {
		return nil, ErrMissingMethod
	}
	if pattern.URL.String() == "" {
		return nil, ErrMissingURL
	}
	if len(responses) == 0 {
		return nil, ErrNoResponses
	}
	for i, r := range responses {
		if len(r.Body) > 0 && r.File != "" {
			return nil, fmt.Errorf("response %d: %w", i, ErrBodyAndFile)
		}
	}
	for expr := range pattern.JSONPath {
		if _, err := jp.ParseString(expr); err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidJSONPath, expr, err)
		}
	}
	generated := id == ""
	if generated {
		id = uuid.NewString()
	}
	return &Lifecycle{
		ID:          id,
		Description: description,
		Pattern:     pattern,
		Responses:   responses,
		generatedID: generated,
	}, nil
}

// GeneratedID reports whether the id was generated rather than declared.
func (l *Lifecycle) GeneratedID() bool {
	return l.generatedID
}

// Hits returns how many times the lifecycle has been matched.
func (l *Lifecycle) Hits() int64 {
	return l.hits.Load()
}

// Advance records a hit and returns the next response in the cycle. After
// the last response the cycle wraps to the first. Concurrent callers each
// observe a distinct cursor position.
func (l *Lifecycle) Advance() Response {
	l.hits.Add(1)
	n := l.cursor.Add(1) - 1
	return l.Responses[n%uint64(len(l.Responses))]
}

// Next returns the response the following Advance would select.
func (l *Lifecycle) Next() Response {
	n := l.cursor.Load()
	return l.Responses[n%uint64(len(l.Responses))]
}
