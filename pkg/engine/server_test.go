package engine

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stubkit/stubd/internal/storage"
	"github.com/stubkit/stubd/pkg/metrics"
)

const resourceDoc = `
- request: {method: GET, url: /resource/1}
  response: {status: 200, body: OK}
`

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testConfig(data string) Config {
	cfg := DefaultConfig()
	cfg.Host = "127.0.0.1"
	cfg.StubsPort = 0
	cfg.AdminPort = 0
	cfg.Data = data
	cfg.WatchDebounce = 50 * time.Millisecond
	return cfg
}

func call(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rec
}

func TestServer_EndToEnd(t *testing.T) {
	data := writeDoc(t, t.TempDir(), "stubs.yaml", resourceDoc)
	srv, err := NewServer(testConfig(data), WithVersion("test"))
	require.NoError(t, err)

	stubs, admin := srv.StubsHandler(), srv.AdminHandler()

	rec := call(stubs, http.MethodGet, "/resource/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	lc, ok := srv.Repository().Get(0)
	require.True(t, ok)
	assert.EqualValues(t, 1, lc.Hits())

	rec = call(stubs, http.MethodGet, "/resource/2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(stubs, http.MethodPost, "/resource/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(admin, http.MethodPut, "/0", `
request: {method: GET, url: /resource/1}
response: {status: 201, body: replaced}
`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/0", rec.Header().Get("Location"))

	rec = call(stubs, http.MethodGet, "/resource/1", "")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "replaced", rec.Body.String())
}

func TestServer_NoDataSource(t *testing.T) {
	srv, err := NewServer(testConfig(""))
	require.NoError(t, err)
	assert.Equal(t, 0, srv.Repository().Count())

	_, err = srv.Reload(context.Background(), metrics.SourceAdmin)
	assert.ErrorIs(t, err, ErrNoDataSource)

	rec := call(srv.AdminHandler(), http.MethodPost, "/refresh", "")
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestServer_InvalidDataFailsStartup(t *testing.T) {
	data := writeDoc(t, t.TempDir(), "stubs.yaml", "- request: {url: /missing-method}\n  response: {status: 200}\n")
	_, err := NewServer(testConfig(data))
	assert.Error(t, err)
}

func TestServer_DirectoryLoadsJSONDocuments(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "stubs.yaml", resourceDoc)
	writeDoc(t, dir, "more.json", `[{"request": {"method": "GET", "url": "/json"}, "response": {"body": "from json"}}]`)

	srv, err := NewServer(testConfig(dir))
	require.NoError(t, err)
	assert.Equal(t, 2, srv.Repository().Count())

	rec := call(srv.StubsHandler(), http.MethodGet, "/json", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "from json", rec.Body.String())
}

func TestServer_DuplicateIDsAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "a.yaml", "- {uuid: same, request: {method: GET, url: /a}, response: {status: 200}}\n")
	writeDoc(t, dir, "b.yaml", "- {uuid: same, request: {method: GET, url: /b}, response: {status: 200}}\n")

	_, err := NewServer(testConfig(dir))
	assert.ErrorIs(t, err, storage.ErrDuplicateID)
}

func TestServer_Reload(t *testing.T) {
	dir := t.TempDir()
	data := writeDoc(t, dir, "stubs.yaml", resourceDoc)
	srv, err := NewServer(testConfig(data))
	require.NoError(t, err)
	m := srv.Metrics()
	assert.InDelta(t, 1, testutil.ToFloat64(m.CatalogSize), 0)

	writeDoc(t, dir, "stubs.yaml", resourceDoc+`
- request: {method: GET, url: /resource/2}
  response: {status: 200, body: two}
`)
	rec := call(srv.AdminHandler(), http.MethodPost, "/refresh", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, srv.Repository().Count())
	assert.InDelta(t, 2, testutil.ToFloat64(m.CatalogSize), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.CatalogReloads.WithLabelValues(metrics.SourceAdmin, "ok")), 0)

	// A broken document keeps the previous catalog.
	writeDoc(t, dir, "stubs.yaml", "request: [broken")
	_, err = srv.Reload(context.Background(), metrics.SourceAdmin)
	assert.Error(t, err)
	assert.Equal(t, 2, srv.Repository().Count())
	assert.InDelta(t, 1, testutil.ToFloat64(m.CatalogReloads.WithLabelValues(metrics.SourceAdmin, "error")), 0)
}

func TestServer_Run(t *testing.T) {
	dir := t.TempDir()
	data := writeDoc(t, dir, "stubs.yaml", resourceDoc)
	cfg := testConfig(dir)
	cfg.Watch = true
	srv, err := NewServer(cfg, WithVersion("test"))
	require.NoError(t, err)
	require.NoError(t, srv.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	resp, err := http.Get("http://" + srv.StubsAddr() + "/resource/1")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
	assert.Equal(t, "stubd/test", resp.Header.Get("Server"))

	resp, err = http.Get("http://" + srv.AdminAddr() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Editing the document is picked up by the watcher.
	writeDoc(t, dir, filepath.Base(data), `
- request: {method: GET, url: /resource/1}
  response: {status: 202, body: watched}
`)
	assert.Eventually(t, func() bool {
		lc, ok := srv.Repository().Get(0)
		return ok && lc.Next().Status == "202"
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_ListenTwice(t *testing.T) {
	srv, err := NewServer(testConfig(""))
	require.NoError(t, err)
	require.NoError(t, srv.Listen())
	defer srv.closeListeners()

	assert.Error(t, srv.Listen())
	assert.NotEmpty(t, srv.StubsAddr())
	assert.NotEqual(t, srv.StubsAddr(), srv.AdminAddr())
}
