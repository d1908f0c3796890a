package fetcher

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent string
	Timeout   time.Duration
	MaxBytes  int64
}

// HTTPFetcher implements Fetcher using net/http. Each call is a single
// attempt; failures are returned to the caller.
type HTTPFetcher struct {
	client *http.Client
	opts   HTTPOptions
}

// NewHTTPFetcher creates a new HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "scrape-playground/1.0"
	}
	if opts.MaxBytes == 0 {
		opts.MaxBytes = 20 << 20
	}
	transport := &http.Transport{
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     20,
		IdleConnTimeout:     90 * time.Second,
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		opts: opts,
	}
}

// Download fetches the URL and returns the response body, capped at MaxBytes.
func (f *HTTPFetcher) Download(ctx context.Context, rawURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(redactError(err), "create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(redactError(err), "download")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("download: unexpected status %d from %s", resp.StatusCode, redactURL(req.URL))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBytes+1))
	if err != nil {
		return nil, eris.Wrap(err, "read body")
	}
	if int64(len(data)) > f.opts.MaxBytes {
		return nil, eris.Errorf("download: body exceeds %d bytes", f.opts.MaxBytes)
	}

	zap.L().Debug("fetcher: downloaded",
		zap.String("url", redactURL(req.URL)),
		zap.Int("bytes", len(data)),
	)

	return &Response{
		Data:        data,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}, nil
}

// FinalURL performs a HEAD request following redirects and returns the
// URL of the last hop.
func (f *HTTPFetcher) FinalURL(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return "", eris.Wrap(redactError(err), "create head request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", eris.Wrap(redactError(err), "head request")
	}
	defer resp.Body.Close() //nolint:errcheck

	return resp.Request.URL.String(), nil
}

// Query parameters that carry credentials.
var secretParams = []string{"key", "api_key", "apikey", "token", "access_token"}

// redactURL renders u with userinfo and credential query parameters masked.
func redactURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	c := *u
	q := c.Query()
	masked := false
	for _, p := range secretParams {
		if q.Has(p) {
			q.Set(p, "REDACTED")
			masked = true
		}
	}
	if masked {
		c.RawQuery = q.Encode()
	}
	return c.Redacted()
}

// redactError masks credentials in the URL of a transport error.
func redactError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		u, perr := url.Parse(ue.URL)
		if perr != nil {
			ue.URL = "[unparseable url]"
		} else {
			ue.URL = redactURL(u)
		}
	}
	return err
}
