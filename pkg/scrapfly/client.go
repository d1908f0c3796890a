// Package scrapfly provides a client for the Scrapfly web scraping API.
package scrapfly

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://api.scrapfly.io"

// DefaultTimeout bounds a single scrape call.
const DefaultTimeout = 60 * time.Second

// ErrNoAPIKey is returned before any request is sent when the client has
// no API key.
var ErrNoAPIKey = eris.New("scrapfly: api key not configured")

// Proxy pool identifiers.
const (
	PoolDatacenter  = "public_datacenter_pool"
	PoolResidential = "public_residential_pool"
)

// Client defines the Scrapfly API operations.
type Client interface {
	Scrape(ctx context.Context, req ScrapeRequest) (*ScrapeResponse, error)
	// ScreenshotURL returns a downloadable form of a screenshot URL from a
	// scrape result. Screenshot downloads are authenticated with the key.
	ScreenshotURL(raw string) string
}

// ScrapeRequest holds the query parameters of GET /scrape.
type ScrapeRequest struct {
	URL           string
	RenderJS      bool
	ProxyPool     string
	Country       string // empty picks a random location
	Format        string
	Timeout       time.Duration
	RenderingWait int // milliseconds, only honored with RenderJS
	Retry         bool
	Cache         bool
	CacheTTL      time.Duration
	Screenshots   map[string]string // name -> "fullpage" or a CSS selector
}

// Values encodes the request as query parameters, without the API key.
func (r ScrapeRequest) Values() url.Values {
	v := url.Values{}
	v.Set("url", r.URL)
	v.Set("render_js", strconv.FormatBool(r.RenderJS))
	if r.ProxyPool != "" {
		v.Set("proxy_pool", r.ProxyPool)
	}
	if r.Country != "" {
		v.Set("country", r.Country)
	}
	if r.Format != "" {
		v.Set("format", r.Format)
	}
	if r.Timeout > 0 {
		v.Set("timeout", strconv.FormatInt(r.Timeout.Milliseconds(), 10))
	}
	if r.RenderJS && r.RenderingWait > 0 {
		v.Set("rendering_wait", strconv.Itoa(r.RenderingWait))
	}
	v.Set("retry", strconv.FormatBool(r.Retry))
	v.Set("cache", strconv.FormatBool(r.Cache))
	if r.Cache && r.CacheTTL > 0 {
		v.Set("cache_ttl", strconv.FormatInt(int64(r.CacheTTL.Seconds()), 10))
	}
	for name, target := range r.Screenshots {
		v.Set(fmt.Sprintf("screenshots[%s]", name), target)
	}
	return v
}

// ScrapeResponse is the response envelope from GET /scrape.
type ScrapeResponse struct {
	Result Result `json:"result"`
}

// Result holds the scraped content.
type Result struct {
	Content     string                `json:"content"`
	Format      string                `json:"format"`
	StatusCode  int                   `json:"status_code"`
	URL         string                `json:"url"`
	Success     bool                  `json:"success"`
	Screenshots map[string]Screenshot `json:"screenshots"`
}

// Screenshot references a captured screenshot.
type Screenshot struct {
	URL       string `json:"url"`
	Extension string `json:"extension"`
	Format    string `json:"format"`
	Size      int    `json:"size"`
}

// APIError is returned when Scrapfly responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("scrapfly: HTTP %d: %s", e.StatusCode, e.Body)
}

// Option configures the httpClient.
type Option func(*httpClient)

// WithBaseURL overrides the default base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		c.http.Timeout = d
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a new Scrapfly client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Scrape(ctx context.Context, req ScrapeRequest) (*ScrapeResponse, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	params := req.Values()
	params.Set("key", c.apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/scrape?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(redactKey(err), "create request")
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(redactKey(err), "execute request")
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	var out ScrapeResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, eris.Wrap(err, "decode response")
	}
	return &out, nil
}

func (c *httpClient) ScreenshotURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || c.apiKey == "" {
		return raw
	}
	q := u.Query()
	q.Set("key", c.apiKey)
	u.RawQuery = q.Encode()
	return u.String()
}

// redactKey removes the API key from the URL carried by a transport error.
func redactKey(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		ue.URL = redactURL(ue.URL)
	}
	return err
}

// redactURL returns raw with the key query parameter masked.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "[unparseable url]"
	}
	q := u.Query()
	if q.Has("key") {
		q.Set("key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.Redacted()
}
