package processor

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/caddyserver/webdir"
)

func newWebDir(t *testing.T, root string, index bool) *webdir.WebDir {
	t.Helper()
	wd, err := webdir.New(root, index)
	require.NoError(t, err)
	return wd
}

func setupRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "hello.txt"), []byte("hi\n"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "a.txt"), []byte("A"), 0o644))
	return root
}

func readAll(t *testing.T, resp *Response) string {
	t.Helper()
	if resp.Body == nil {
		return ""
	}
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestProcessSimpleFile(t *testing.T) {
	root := setupRoot(t)
	p := New(newWebDir(t, root, false))

	resp, err := p.Process(context.Background(), http.MethodGet, "/hello.txt", http.Header{})
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	require.Equal(t, "3", resp.Header.Get("Content-Length"))
	require.Equal(t, "bytes", resp.Header.Get("Accept-Ranges"))
	require.Equal(t, "hi\n", readAll(t, resp))
}

func TestProcessSingleRange(t *testing.T) {
	root := setupRoot(t)
	p := New(newWebDir(t, root, false))

	h := http.Header{}
	h.Set("Range", "bytes=1-1")
	resp, err := p.Process(context.Background(), http.MethodGet, "/hello.txt", h)
	require.NoError(t, err)
	require.Equal(t, 206, resp.StatusCode)
	require.Equal(t, "1", resp.Header.Get("Content-Length"))
	require.Equal(t, "bytes 1-1/3", resp.Header.Get("Content-Range"))
	require.Equal(t, "i", readAll(t, resp))
}

func TestProcessMultipart(t *testing.T) {
	root := t.TempDir()
	content := make([]byte, 100)
	for i := range content {
		content[i] = 'A'
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "big.txt"), content, 0o644))
	p := New(newWebDir(t, root, false))

	h := http.Header{}
	h.Set("Range", "bytes=0-9,20-29,90-99")
	resp, err := p.Process(context.Background(), http.MethodGet, "/big.txt", h)
	require.NoError(t, err)
	require.Equal(t, 206, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "multipart/byteranges; boundary=")
	body := readAll(t, resp)
	require.Contains(t, body, "Content-Range: bytes 0-9/100")
	require.Contains(t, body, "Content-Range: bytes 20-29/100")
	require.Contains(t, body, "Content-Range: bytes 90-99/100")
}

func TestProcessPathTraversalStaysInsideRoot(t *testing.T) {
	root := setupRoot(t)
	p := New(newWebDir(t, root, false))

	_, err := p.Process(context.Background(), http.MethodGet, "/%2E%2E/%2E%2E/etc/passwd", http.Header{})
	require.Error(t, err)
}

func TestProcessDirectoryListing(t *testing.T) {
	root := setupRoot(t)
	p := New(newWebDir(t, root, false))

	resp, err := p.Process(context.Background(), http.MethodGet, "/sub/", http.Header{})
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	require.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	require.Contains(t, readAll(t, resp), "a.txt")
}

func TestProcessBadMethod(t *testing.T) {
	root := setupRoot(t)
	p := New(newWebDir(t, root, false))

	_, err := p.Process(context.Background(), http.MethodPost, "/hello.txt", http.Header{})
	require.Error(t, err)
}

func TestProcessHeadHasNoBody(t *testing.T) {
	root := setupRoot(t)
	p := New(newWebDir(t, root, false))

	resp, err := p.Process(context.Background(), http.MethodHead, "/hello.txt", http.Header{})
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	require.Nil(t, resp.Body)
	require.Equal(t, "3", resp.Header.Get("Content-Length"))
}

func TestProcessNotFound(t *testing.T) {
	root := setupRoot(t)
	p := New(newWebDir(t, root, false))

	_, err := p.Process(context.Background(), http.MethodGet, "/missing.txt", http.Header{})
	require.Error(t, err)
}

func TestProcessIndexServedWhenEnabled(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("<html/>"), 0o644))
	p := New(newWebDir(t, root, true))

	resp, err := p.Process(context.Background(), http.MethodGet, "/", http.Header{})
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	require.Equal(t, "<html/>", readAll(t, resp))
}
