package matching

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/ohler55/ojg/jp"

	"github.com/stubkit/stubd/pkg/stub"
)

// MatchBody checks the declared post matcher and JSONPath conditions.
// A pattern without either accepts any body.
func MatchBody(p *stub.Pattern, req *stub.Request) bool {
	if p.Post != nil && !MatchPost(*p.Post, req.ContentType(), req.Body) {
		return false
	}
	if len(p.JSONPath) > 0 && !MatchJSONPath(p.JSONPath, req.Body) {
		return false
	}
	return true
}

// MatchPost checks the raw body against a literal or regex first. When that
// fails, form-encoded and JSON bodies are compared field by field.
func MatchPost(expected stub.Value, contentType string, body []byte) bool {
	raw := string(body)
	if expected.Matches(raw) {
		return true
	}
	if trimmed := strings.TrimSpace(raw); trimmed != raw && expected.Matches(trimmed) {
		return true
	}

	switch {
	case contentType == "application/x-www-form-urlencoded":
		return MatchFormFields(expected.String(), body)
	case isJSONContentType(contentType):
		return MatchJSONFields(expected.String(), body)
	}
	return false
}

func isJSONContentType(ct string) bool {
	return ct == "application/json" || strings.HasSuffix(ct, "+json")
}

// MatchFormFields decodes both the declared and the actual form body and
// requires every declared field to be present with a matching value.
func MatchFormFields(declared string, body []byte) bool {
	expected, err := url.ParseQuery(strings.TrimSpace(declared))
	if err != nil || len(expected) == 0 {
		return false
	}
	actual, err := url.ParseQuery(strings.TrimSpace(string(body)))
	if err != nil {
		return false
	}
	for name, wants := range expected {
		for _, want := range wants {
			if !MatchQueryParam(name, stub.NewValue(want), actual) {
				return false
			}
		}
	}
	return true
}

// MatchJSONFields decodes both documents and requires every leaf of the
// declared document to equal the value at the same location in the body.
// Extra fields and trailing array elements in the body are ignored.
// String leaves may be regexes.
func MatchJSONFields(declared string, body []byte) bool {
	var expected, actual any
	if err := json.Unmarshal([]byte(declared), &expected); err != nil {
		return false
	}
	if err := json.Unmarshal(body, &actual); err != nil {
		return false
	}
	return matchJSONNode(jp.R(), expected, actual)
}

func matchJSONNode(path jp.Expr, expected, data any) bool {
	switch want := expected.(type) {
	case map[string]any:
		if len(want) == 0 {
			return isKind[map[string]any](path.First(data))
		}
		for key, child := range want {
			if !matchJSONNode(extend(path, jp.Child(key)), child, data) {
				return false
			}
		}
		return true
	case []any:
		if len(want) == 0 {
			return isKind[[]any](path.First(data))
		}
		for i, child := range want {
			if !matchJSONNode(extend(path, jp.Nth(i)), child, data) {
				return false
			}
		}
		return true
	}

	results := path.Get(data)
	if len(results) != 1 {
		return false
	}
	got := results[0]
	if s, ok := expected.(string); ok {
		gs, isStr := got.(string)
		return isStr && stub.NewValue(s).Matches(gs)
	}
	return valuesEqual(got, expected)
}

// extend returns a copy of path with frag appended, so sibling branches
// never share a backing array.
func extend(path jp.Expr, frag jp.Frag) jp.Expr {
	return append(path[:len(path):len(path)], frag)
}

func isKind[T any](v any) bool {
	_, ok := v.(T)
	return ok
}
