// Package source fetches raw quiz text from a local path or an http(s) URL.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// maxQuizBytes caps how much text a single quiz file may contribute.
const maxQuizBytes = 4 << 20

var (
	ErrTooLarge    = fmt.Errorf("quiz source exceeds %d bytes", maxQuizBytes)
	ErrUnavailable = errors.New("quiz source could not be read")
	ErrForbidden   = errors.New("quiz location must be an http(s) URL or a relative path inside the quiz directory")
)

var defaultClient = &http.Client{Timeout: 30 * time.Second}

// IsURL reports whether location should be fetched over HTTP.
func IsURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// Load returns the text stored at location. Any local path is accepted, so
// only trusted callers such as the terminal client should use it.
func Load(ctx context.Context, location string) (string, error) {
	if IsURL(location) {
		return Fetch(ctx, defaultClient, location)
	}
	return ReadFile(location)
}

// LoadWithin is Load for untrusted callers. Local locations must be
// relative and stay inside dir; an empty dir disables local files.
func LoadWithin(ctx context.Context, dir, location string) (string, error) {
	if IsURL(location) {
		return Fetch(ctx, defaultClient, location)
	}
	if dir == "" || !filepath.IsLocal(location) {
		return "", ErrForbidden
	}

	f, err := os.OpenInRoot(dir, location)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer f.Close()
	return readLimited(f)
}

func ReadFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer f.Close()
	return readLimited(f)
}

func Fetch(ctx context.Context, client *http.Client, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: build request: %w", ErrUnavailable, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %s returned %s", ErrUnavailable, url, resp.Status)
	}
	return readLimited(resp.Body)
}

// readLimited reads one byte past the cap so oversized input is reported
// instead of truncated.
func readLimited(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxQuizBytes+1))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if len(data) > maxQuizBytes {
		return "", ErrTooLarge
	}
	return string(data), nil
}
