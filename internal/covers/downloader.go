package covers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultUserAgent = "Mozilla/5.0"
	maxImageSize     = 20 << 20
)

// Downloader fetches cover image bytes.
type Downloader struct {
	httpClient *http.Client
	userAgent  string
}

// NewDownloader creates a downloader with a browser-like user agent, which
// some image CDNs require.
func NewDownloader() *Downloader {
	return &Downloader{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		userAgent: defaultUserAgent,
	}
}

// Download fetches the image at coverURL over HTTPS and returns its bytes.
func (d *Downloader) Download(ctx context.Context, coverURL string) ([]byte, error) {
	if coverURL == "" {
		return nil, fmt.Errorf("cover URL is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, UpgradeToHTTPS(coverURL), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch cover: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxImageSize {
		return nil, fmt.Errorf("cover exceeds %d bytes", maxImageSize)
	}
	return data, nil
}

// UpgradeToHTTPS rewrites a plain http:// URL to https://.
func UpgradeToHTTPS(rawURL string) string {
	if strings.HasPrefix(rawURL, "http://") {
		return "https://" + strings.TrimPrefix(rawURL, "http://")
	}
	return rawURL
}
