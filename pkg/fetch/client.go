// pkg/fetch/client.go
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DownloadTimeout bounds a whole source archive download
const DownloadTimeout = 10 * time.Minute

// ErrTruncated indicates the server closed the body before Content-Length bytes
var ErrTruncated = errors.New("truncated download")

// Client downloads source archives over HTTP
type Client struct {
	http      *http.Client
	userAgent string
}

// NewClient creates a client using the environment's proxy settings
func NewClient() *Client {
	return &Client{
		http:      &http.Client{Timeout: DownloadTimeout},
		userAgent: "glewpkg/1.0",
	}
}

// Download streams url into w and returns the number of bytes written.
// Anything but 200 OK is an error, and so is a body shorter than the
// advertised Content-Length.
func (c *Client) Download(ctx context.Context, url string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("requesting %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	written, err := io.Copy(w, resp.Body)
	if errors.Is(err, io.ErrUnexpectedEOF) || (err == nil && resp.ContentLength >= 0 && written != resp.ContentLength) {
		return written, fmt.Errorf("%w: got %d of %d bytes from %s", ErrTruncated, written, resp.ContentLength, url)
	}
	if err != nil {
		return written, fmt.Errorf("reading %s: %w", url, err)
	}

	return written, nil
}
