package matching

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stubkit/stubd/pkg/stub"
)

func TestMatchPath(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		path    string
		want    bool
	}{
		{"exact", "/api/users", "/api/users", true},
		{"exact mismatch", "/api/users", "/api/user", false},
		{"regex", `^/api/users/[0-9]+$`, "/api/users/7", true},
		{"unanchored regex must match fully", `/users/\d+`, "/api/users/7", false},
		{"empty path is root", "/", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchPath(stub.NewValue(tt.pattern), tt.path))
		})
	}
}

func TestMatchHeaders(t *testing.T) {
	headers := http.Header{
		"Content-Type": {"application/json"},
		"X-Trace":      {"abc-123"},
		"Accept":       {"text/html", "application/xml"},
	}

	tests := []struct {
		name     string
		expected map[string]string
		want     bool
	}{
		{"empty declaration", nil, true},
		{"case-insensitive name", map[string]string{"content-type": "application/json"}, true},
		{"regex value", map[string]string{"X-Trace": `abc-\d+`}, true},
		{"value mismatch", map[string]string{"X-Trace": "abc-999"}, false},
		{"missing header", map[string]string{"X-Missing": ".*"}, false},
		{"any repeated value", map[string]string{"Accept": "application/xml"}, true},
		{"joined repeated values", map[string]string{"Accept": "text/html, application/xml"}, true},
		{"authorization is skipped", map[string]string{"Authorization": "x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchHeaders(values(tt.expected), headers))
		})
	}
}

func TestMatchQuery(t *testing.T) {
	params := url.Values{
		"status": {"active"},
		"page":   {"2"},
		"tag":    {"a", "b"},
		"empty":  {""},
	}

	tests := []struct {
		name     string
		expected map[string]string
		want     bool
	}{
		{"none declared", nil, true},
		{"literal", map[string]string{"status": "active"}, true},
		{"regex", map[string]string{"page": `\d+`}, true},
		{"extra request params ignored", map[string]string{"page": "2"}, true},
		{"missing param", map[string]string{"sort": "asc"}, false},
		{"name is case-sensitive", map[string]string{"Status": "active"}, false},
		{"repeated param any value", map[string]string{"tag": "b"}, true},
		{"repeated param joined", map[string]string{"tag": "a,b"}, true},
		{"present but empty", map[string]string{"empty": ""}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expected := make(map[string]stub.Value, len(tt.expected))
			for k, v := range tt.expected {
				expected[k] = stub.NewValue(v)
			}
			assert.Equal(t, tt.want, MatchQuery(expected, params))
		})
	}
}

func TestMatchPost(t *testing.T) {
	tests := []struct {
		name        string
		declared    string
		contentType string
		body        string
		want        bool
	}{
		{"literal", "hello", "text/plain", "hello", true},
		{"literal with trailing newline", "hello", "text/plain", "hello\n", true},
		{"regex", `order-\d+`, "text/plain", "order-42", true},
		{"mismatch", "hello", "text/plain", "goodbye", false},
		{"form fields in any order", "a=1&b=two", "application/x-www-form-urlencoded", "b=two&c=3&a=1", true},
		{"form field regex", `a=\d+`, "application/x-www-form-urlencoded", "a=77", true},
		{"form field missing", "a=1&b=two", "application/x-www-form-urlencoded", "a=1", false},
		{"form field differs", "a=1", "application/x-www-form-urlencoded", "a=2", false},
		{"form ignored for other types", "a=1&b=2", "text/plain", "b=2&a=1", false},
		{"json reordered", `{"name":"bob","age":3}`, "application/json", `{ "age": 3, "name": "bob" }`, true},
		{"json extra fields", `{"name":"bob"}`, "application/json; charset=utf-8", `{"name":"bob","id":9}`, true},
		{"json nested", `{"user":{"roles":["admin"]}}`, "application/json", `{"user":{"roles":["admin","dev"],"id":1}}`, true},
		{"json string regex", `{"id":"[a-f0-9]{8}"}`, "application/json", `{"id":"deadbeef"}`, true},
		{"json value differs", `{"age":3}`, "application/json", `{"age":4}`, false},
		{"json type differs", `{"age":3}`, "application/json", `{"age":"3"}`, false},
		{"json missing field", `{"name":"bob"}`, "application/json", `{"id":9}`, false},
		{"json empty object leaf", `{"meta":{}}`, "application/json", `{"meta":{"a":1}}`, true},
		{"json empty object needs object", `{"meta":{}}`, "application/json", `{"meta":[]}`, false},
		{"json vendor type", `{"a":true}`, "application/vnd.api+json", `{"a":true}`, true},
		{"json invalid body", `{"a":1}`, "application/json", `{"a":`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := request("POST", "/", http.Header{"Content-Type": {tt.contentType}}, tt.body)
			got := MatchPost(stub.NewValue(tt.declared), req.ContentType(), req.Body)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchJSONPath(t *testing.T) {
	body := []byte(`{"user":{"name":"ada","age":36,"tags":["x","y"]},"items":[{"id":1},{"id":2}],"flag":false,"none":null}`)

	tests := []struct {
		name       string
		conditions map[string]any
		want       bool
	}{
		{"no conditions", nil, true},
		{"string", map[string]any{"$.user.name": "ada"}, true},
		{"string regex", map[string]any{"$.user.name": "a.a"}, true},
		{"int from yaml", map[string]any{"$.user.age": 36}, true},
		{"bool", map[string]any{"$.flag": false}, true},
		{"wildcard any result", map[string]any{"$.items[*].id": 2}, true},
		{"array equality", map[string]any{"$.user.tags": []any{"x", "y"}}, true},
		{"exists", map[string]any{"$.user.age": map[string]any{"exists": true}}, true},
		{"not exists", map[string]any{"$.user.email": map[string]any{"exists": false}}, true},
		{"exists fails", map[string]any{"$.user.email": map[string]any{"exists": true}}, false},
		{"all must hold", map[string]any{"$.user.name": "ada", "$.flag": true}, false},
		{"missing path", map[string]any{"$.nope": "x"}, false},
		{"invalid expression", map[string]any{"$[": "x"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchJSONPath(tt.conditions, body))
		})
	}
}

func TestMatchJSONPath_InvalidBody(t *testing.T) {
	assert.False(t, MatchJSONPath(map[string]any{"$.a": 1}, []byte("not json")))
}

func TestMatchBody_PostAndJSONPath(t *testing.T) {
	post := stub.NewValue(`{"kind":"order"}`)
	p := stub.Pattern{
		Methods:  []string{"POST"},
		URL:      stub.NewValue("/orders"),
		Post:     &post,
		JSONPath: map[string]any{"$.qty": 2},
	}
	header := http.Header{"Content-Type": {"application/json"}}

	assert.True(t, MatchBody(&p, request("POST", "/orders", header, `{"kind":"order","qty":2}`)))
	assert.False(t, MatchBody(&p, request("POST", "/orders", header, `{"kind":"order","qty":3}`)))
	assert.False(t, MatchBody(&p, request("POST", "/orders", header, `{"kind":"refund","qty":2}`)))
}
