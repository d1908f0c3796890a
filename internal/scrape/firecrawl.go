package scrape

import (
	"context"
	"errors"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/scrape-playground/internal/model"
	"github.com/sells-group/scrape-playground/pkg/firecrawl"
)

// FirecrawlAdapter exposes the Firecrawl scrape API as a Provider.
type FirecrawlAdapter struct {
	client firecrawl.Client
	cfg    adapterConfig
}

// defaultFirecrawlTimeout is the server-side budget in milliseconds.
const defaultFirecrawlTimeout = 30000

// NewFirecrawlAdapter creates a FirecrawlAdapter from a Firecrawl client.
// WithRemoteTimeoutMillis sets the default of the timeout option.
func NewFirecrawlAdapter(client firecrawl.Client, opts ...AdapterOption) *FirecrawlAdapter {
	return &FirecrawlAdapter{client: client, cfg: newAdapterConfig(defaultFirecrawlTimeout, opts)}
}

// Name implements Provider.
func (a *FirecrawlAdapter) Name() string { return "firecrawl" }

// OptionsSchema implements Provider.
func (a *FirecrawlAdapter) OptionsSchema() model.Schema {
	return model.Schema{
		{
			Name:    model.OptSkipTLSVerification,
			Kind:    model.KindBoolean,
			Default: false,
			Help:    "Skip TLS certificate verification when making requests",
		},
		{
			Name:          model.OptFormat,
			Kind:          model.KindSelect,
			Default:       "markdown",
			AllowedValues: []string{"markdown", "html", "rawHtml", "links"},
			Help:          "Format to include in the output",
		},
		{
			Name:    model.OptOnlyMainContent,
			Kind:    model.KindBoolean,
			Default: true,
			Help:    "Only return the main content excluding headers, navs, footers, etc",
		},
		{
			Name:    model.OptWaitFor,
			Kind:    model.KindNumber,
			Default: 0,
			Help:    "Delay in milliseconds before fetching content",
		},
		{
			Name:    model.OptTimeout,
			Kind:    model.KindNumber,
			Default: a.cfg.timeout,
			Help:    "Timeout in milliseconds for the request",
		},
		{
			Name:          model.OptProxyPool,
			Kind:          model.KindSelect,
			Default:       "datacenter",
			AllowedValues: []string{"datacenter", "residential"},
			Help:          "Proxy type - datacenter (basic) or residential (stealth)",
		},
		{
			Name:    model.OptCountry,
			Kind:    model.KindString,
			Default: "US",
			Help:    "ISO 3166-1 alpha-2 country code",
		},
		{
			Name:    model.OptLanguages,
			Kind:    model.KindArray,
			Default: []string{"en-US"},
			Help:    "Preferred languages for the request",
		},
		screenshotOption,
		resolveImagesOption,
	}
}

// Fetch implements Provider.
func (a *FirecrawlAdapter) Fetch(ctx context.Context, targetURL string, opts model.Options) (string, error) {
	o := opts.Resolve(a.OptionsSchema())
	format := o.String(model.OptFormat)
	shot := o.Bool(model.OptScreenshot)

	formats := []string{format}
	if shot {
		formats = append(formats, "screenshot")
	}

	languages := o.Strings(model.OptLanguages)
	if len(languages) == 0 {
		languages = []string{"en-US"}
	}

	req := firecrawl.ScrapeRequest{
		URL:                 targetURL,
		Formats:             formats,
		OnlyMainContent:     o.Bool(model.OptOnlyMainContent),
		SkipTLSVerification: o.Bool(model.OptSkipTLSVerification),
		WaitFor:             o.Int(model.OptWaitFor),
		Timeout:             o.Int(model.OptTimeout),
		Location: &firecrawl.Location{
			Country:   o.String(model.OptCountry),
			Languages: languages,
		},
	}
	if o.String(model.OptProxyPool) == "residential" {
		req.Proxy = "stealth"
	}

	resp, err := a.client.Scrape(ctx, req)
	if err != nil {
		return "", a.translate(err)
	}
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = resp.Data.Metadata.Error
		}
		if msg == "" {
			msg = "scrape not successful"
		}
		return "", &model.RemoteError{Provider: a.Name(), Err: eris.New(msg)}
	}

	content := firecrawlContent(format, resp.Data)
	if !shot {
		return content, nil
	}
	return a.cfg.shots.Attach(ctx, a.Name(), targetURL, resp.Data.Screenshot, content)
}

// firecrawlContent picks the field matching the requested format.
func firecrawlContent(format string, data firecrawl.PageData) string {
	switch format {
	case "html":
		return deref(data.HTML)
	case "rawHtml":
		return deref(data.RawHTML)
	case "links":
		return strings.Join(data.Links, "\n")
	default:
		return data.Markdown
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (a *FirecrawlAdapter) translate(err error) error {
	if cerr := credentialError(a.Name(), "FIRECRAWL_API_KEY", err, firecrawl.ErrNoAPIKey); cerr != nil {
		return cerr
	}
	var apiErr *firecrawl.APIError
	if errors.As(err, &apiErr) {
		return &model.RemoteError{Provider: a.Name(), StatusCode: apiErr.StatusCode, Body: apiErr.Body}
	}
	return transportError(a.Name(), err)
}
