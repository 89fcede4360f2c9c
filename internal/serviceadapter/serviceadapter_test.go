package serviceadapter

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/felixge/httpsnoop"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/caddyserver/webdir/internal/processor"

	"github.com/caddyserver/webdir"
)

func mustWebDir(root string, index bool) *webdir.WebDir {
	wd, err := webdir.New(root, index)
	if err != nil {
		panic(err)
	}
	return wd
}

func TestServeHTTPSimpleFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "hello.txt"), []byte("hi\n"), 0o644))

	a := New(processor.New(mustWebDir(root, false)), nil)
	handler := a.Mount(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/hello.txt", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	require.Equal(t, "hi\n", rec.Body.String())
	require.Equal(t, "bytes", rec.Header().Get("Accept-Ranges"))
}

func TestServeHTTPNotFoundRendersErrorPage(t *testing.T) {
	root := t.TempDir()
	a := New(processor.New(mustWebDir(root, false)), nil)
	handler := a.Mount(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/missing.txt", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, 404, rec.Code)
	require.Contains(t, rec.Body.String(), "404")
}

func TestServeHTTPBadMethodSetsAllowHeader(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "hello.txt"), []byte("hi\n"), 0o644))

	a := New(processor.New(mustWebDir(root, false)), nil)
	handler := a.Mount(nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/hello.txt", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, 405, rec.Code)
	require.Equal(t, "GET, HEAD", rec.Header().Get("Allow"))
}

func TestMountInvokesCompletionCallback(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "hello.txt"), []byte("hi\n"), 0o644))

	var captured httpsnoop.Metrics
	var gotMethod, gotPath string
	a := New(processor.New(mustWebDir(root, false)), nil)
	handler := a.Mount(nil, func(m httpsnoop.Metrics, method, path string) {
		captured = m
		gotMethod = method
		gotPath = path
	})

	req := httptest.NewRequest(http.MethodGet, "/hello.txt", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, 200, captured.Code)
	require.Equal(t, http.MethodGet, gotMethod)
	require.Equal(t, "/hello.txt", gotPath)
}

func TestMountServesHealthz(t *testing.T) {
	root := t.TempDir()
	a := New(processor.New(mustWebDir(root, false)), nil)
	handler := a.Mount(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
}

func TestMountServesMetricsWhenRegistrySupplied(t *testing.T) {
	root := t.TempDir()
	reg := prometheus.NewRegistry()
	a := New(processor.New(mustWebDir(root, false)), nil)
	handler := a.Mount(reg, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
}

func TestMountOmitsMetricsWhenRegistryNil(t *testing.T) {
	root := t.TempDir()
	a := New(processor.New(mustWebDir(root, false)), nil)
	handler := a.Mount(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, 404, rec.Code)
}
