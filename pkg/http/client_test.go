package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadKeepsFilename(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Jane Doe"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	path, err := NewClient(time.Second).Download(context.Background(), srv.URL+"/files/jane.txt", dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "jane.txt"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", string(data))
}

func TestDownloadUsesContentDisposition(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="cv.docx"`)
		w.Write([]byte("x"))
	}))
	defer srv.Close()

	path, err := NewClient(time.Second).Download(context.Background(), srv.URL+"/download?id=1", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "cv.docx", filepath.Base(path))
}

func TestDownloadBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewClient(time.Second).Download(context.Background(), srv.URL+"/x.pdf", t.TempDir())
	assert.ErrorContains(t, err, "status code 404")
}

func TestDownloadTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 64))
	}))
	defer srv.Close()

	c := NewClient(time.Second)
	c.maxBytes = 16
	_, err := c.Download(context.Background(), srv.URL+"/big.pdf", t.TempDir())
	assert.ErrorContains(t, err, "larger than")
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://example.com/cv.pdf"))
	assert.False(t, IsURL("./cv.pdf"))
}

func TestRemoteFilenameFallback(t *testing.T) {
	u, _ := url.Parse("https://example.com/")
	assert.Equal(t, "resume", remoteFilename(u, ""))
}
