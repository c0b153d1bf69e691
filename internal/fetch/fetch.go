// Package fetch downloads the page holding the poll tables.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/brogergvhs/pollsmooth/internal/diag"
)

// CacheBust is replaced in a URL by the current Unix time.
const CacheBust = "{rn}"

// StatusError is returned for any response other than 200 OK.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

type Fetcher struct {
	client *http.Client
	now    func() time.Time
}

func New(c *http.Client) *Fetcher {
	if c == nil {
		c = http.DefaultClient
	}
	return &Fetcher{client: c, now: time.Now}
}

// Fetch makes a single GET request and returns the body. Caches along
// the way are asked not to answer it.
func (f *Fetcher) Fetch(ctx context.Context, target string) (string, error) {
	target = strings.ReplaceAll(target, CacheBust, strconv.FormatInt(f.now().Unix(), 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache, must-revalidate, private, max-age=0")
	req.Header.Set("Pragma", "no-cache")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("GET %s: %w", target, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{URL: target, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", target, err)
	}
	return string(body), nil
}

// FetchFile reads a saved copy of a page, warning when the file is
// stale.
func FetchFile(path string, log *diag.Log) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	log.CheckFileCurrent(path)
	return string(b), nil
}
