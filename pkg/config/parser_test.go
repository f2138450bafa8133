package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stubkit/stubd/pkg/stub"
)

const sampleDocument = `
- description: first
  uuid: 0b6c2a3e-0000-4000-8000-000000000001
  request:
    method: get
    url: /resource/1
    query:
      page: 2
    headers:
      content-type: application/json
  response:
    status: 200
    headers:
      X-Seq: one
    body: OK
    latency: 10

- request:
    method: [GET, head]
    url: ^/items/\d+$
    require_authorization: true
  response:
    - status: 200
      body: first
    - status: 302
      headers:
        location: /elsewhere
`

func TestParse(t *testing.T) {
	lifecycles, err := Parse([]byte(sampleDocument), "")
	require.NoError(t, err)
	require.Len(t, lifecycles, 2)

	first := lifecycles[0]
	assert.Equal(t, "first", first.Description)
	assert.Equal(t, "0b6c2a3e-0000-4000-8000-000000000001", first.ID)
	assert.Equal(t, []string{"GET"}, first.Pattern.Methods)
	assert.Equal(t, "/resource/1", first.Pattern.URL.String())
	assert.True(t, first.Pattern.Query["page"].Matches("2"))
	require.Contains(t, first.Pattern.Headers, "Content-Type")
	assert.Nil(t, first.Pattern.Post)
	require.Len(t, first.Responses, 1)
	assert.Equal(t, stub.Response{
		Status:  "200",
		Headers: map[string]string{"X-Seq": "one"},
		Body:    []byte("OK"),
		Latency: "10",
	}, first.Responses[0])

	second := lifecycles[1]
	assert.NotEmpty(t, second.ID)
	assert.Equal(t, []string{"GET", "HEAD"}, second.Pattern.Methods)
	assert.True(t, second.Pattern.URL.Matches("/items/7"))
	assert.True(t, second.Pattern.RequireAuthorization)
	require.Len(t, second.Responses, 2)
	assert.Equal(t, stub.CategoryRedirect, second.Responses[1].Category())
}

func TestParse_SingleEntry(t *testing.T) {
	lifecycles, err := Parse([]byte("request: {method: POST, url: /x}\nresponse: {status: 201}\n"), "")
	require.NoError(t, err)
	require.Len(t, lifecycles, 1)
	assert.Equal(t, "201", lifecycles[0].Responses[0].Status)
}

func TestParse_Empty(t *testing.T) {
	for _, raw := range []string{"", "   \n", "~", "[]"} {
		lifecycles, err := Parse([]byte(raw), "")
		require.NoError(t, err, "%q", raw)
		assert.Empty(t, lifecycles, "%q", raw)
	}
}

func TestParse_KeepsTextualStatusAndLatency(t *testing.T) {
	doc := "- request: {method: GET, url: /x}\n  response: {status: teapot, latency: slow}\n"
	lifecycles, err := Parse([]byte(doc), "")
	require.NoError(t, err)

	resp := lifecycles[0].Responses[0]
	_, err = resp.StatusCode()
	assert.Error(t, err)
	_, err = resp.Delay()
	assert.Error(t, err)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not yaml", "- request: [unclosed"},
		{"missing url", "- request: {method: GET}\n  response: {status: 200}"},
		{"missing method", "- request: {url: /x}\n  response: {status: 200}"},
		{"missing response", "- request: {method: GET, url: /x}"},
		{"empty response list", "- request: {method: GET, url: /x}\n  response: []"},
		{"unknown field", "- request: {method: GET, url: /x, verb: POST}\n  response: {}"},
		{"body and file", "- request: {method: GET, url: /x}\n  response: {body: a, file: b}"},
		{"scalar document", "just text"},
		{"bad jsonpath", "- request: {method: POST, url: /x, jsonpath: {'$[': 1}}\n  response: {}"},
		{"duplicate uuid", "- {uuid: a, request: {method: GET, url: /x}, response: {}}\n- {uuid: a, request: {method: GET, url: /y}, response: {}}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), "")
			assert.ErrorIs(t, err, ErrInvalidDocument)
		})
	}
}

func TestParse_SchemaErrorNamesField(t *testing.T) {
	_, err := Parse([]byte("- request: {method: GET}\n  response: {}"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "url")
}

func TestParse_Files(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "req.json"), []byte("{\"a\":1}\n"), 0o644))

	doc := `
- request:
    method: POST
    url: /upload
    file: req.json
  response:
    file: bodies/out.json
`
	lifecycles, err := Parse([]byte(doc), dir)
	require.NoError(t, err)

	lc := lifecycles[0]
	require.NotNil(t, lc.Pattern.Post)
	assert.Equal(t, `{"a":1}`, lc.Pattern.Post.String())
	assert.Equal(t, filepath.Join(dir, "bodies", "out.json"), lc.Responses[0].File)
	assert.Empty(t, lc.Responses[0].Body)
}

func TestParse_MissingRequestFile(t *testing.T) {
	doc := "- request: {method: POST, url: /x, file: nope.txt}\n  response: {}"
	_, err := Parse([]byte(doc), t.TempDir())
	assert.ErrorIs(t, err, ErrInvalidDocument)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMarshal_RoundTrip(t *testing.T) {
	original, err := Parse([]byte(sampleDocument), "")
	require.NoError(t, err)

	data, err := Marshal(original)
	require.NoError(t, err)

	again, err := Parse(data, "")
	require.NoError(t, err)
	require.Len(t, again, len(original))
	for i := range original {
		assert.Equal(t, original[i].ID, again[i].ID)
		assert.Equal(t, original[i].Pattern.Methods, again[i].Pattern.Methods)
		assert.Equal(t, original[i].Pattern.URL.String(), again[i].Pattern.URL.String())
		assert.Equal(t, original[i].Responses, again[i].Responses)
	}
}

func TestMarshalJSON(t *testing.T) {
	lifecycles, err := Parse([]byte(sampleDocument), "")
	require.NoError(t, err)

	data, err := MarshalJSON(lifecycles)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"url": "/resource/1"`)
	assert.Contains(t, string(data), `"require_authorization": true`)
}
