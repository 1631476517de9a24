package http

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

type Client struct {
	httpClient *http.Client
	maxBytes   int64
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxBytes: 20 << 20,
	}
}

// IsURL reports whether s looks like an http(s) URL rather than a path.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Download saves the document at rawURL into dir and returns the local path.
// The remote file name is kept so the extension still selects the reader.
func (c *Client) Download(ctx context.Context, rawURL, dir string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status code %d", rawURL, resp.StatusCode)
	}

	name := remoteFilename(u, resp.Header.Get("Content-Disposition"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	dst := filepath.Join(dir, name)
	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	n, err := io.Copy(f, io.LimitReader(resp.Body, c.maxBytes+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("save %s: %w", rawURL, err)
	}
	if n > c.maxBytes {
		os.Remove(dst)
		return "", fmt.Errorf("fetch %s: larger than %d bytes", rawURL, c.maxBytes)
	}
	return dst, nil
}

func remoteFilename(u *url.URL, disposition string) string {
	if disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			if fn := filepath.Base(params["filename"]); fn != "." && fn != "/" && fn != "" {
				return fn
			}
		}
	}
	if base := path.Base(u.Path); base != "." && base != "/" {
		return base
	}
	return "resume"
}
