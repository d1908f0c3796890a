package scrape

import (
	"context"
	"errors"
	"time"

	"github.com/sells-group/scrape-playground/internal/model"
	"github.com/sells-group/scrape-playground/pkg/scrapfly"
)

const scrapflyCacheTTL = 12 * time.Hour

// ScrapflyAdapter exposes the Scrapfly API as a Provider.
type ScrapflyAdapter struct {
	client scrapfly.Client
	cfg    adapterConfig
}

// NewScrapflyAdapter creates a ScrapflyAdapter from a Scrapfly client.
func NewScrapflyAdapter(client scrapfly.Client, opts ...AdapterOption) *ScrapflyAdapter {
	return &ScrapflyAdapter{
		client: client,
		cfg:    newAdapterConfig(int(scrapfly.DefaultTimeout.Milliseconds()), opts),
	}
}

// Name implements Provider.
func (a *ScrapflyAdapter) Name() string { return "scrapfly" }

// OptionsSchema implements Provider.
func (a *ScrapflyAdapter) OptionsSchema() model.Schema {
	return model.Schema{
		{
			Name:    model.OptRenderJS,
			Kind:    model.KindBoolean,
			Default: false,
			Help:    "Enable browser rendering. Scrape the target with a browser and render the page",
		},
		{
			Name:          model.OptProxyPool,
			Kind:          model.KindSelect,
			Default:       "datacenter",
			AllowedValues: []string{"datacenter", "residential"},
			Help:          "Select proxy pool type - datacenter (25x cheaper) or residential",
		},
		{
			Name:    model.OptCountry,
			Kind:    model.KindString,
			Default: "",
			Help:    "Proxy country location (ISO 3166 alpha-2). Empty for random location",
		},
		{
			Name:          model.OptFormat,
			Kind:          model.KindSelect,
			Default:       "markdown",
			AllowedValues: []string{"raw", "markdown", "clean_html", "text", "json"},
			Help:          "Output format for the scraped content",
		},
		{
			Name:    model.OptWaitFor,
			Kind:    model.KindNumber,
			Default: 0,
			Help:    "Milliseconds to wait after rendering. Only applies with render_js",
		},
		{
			Name:    model.OptCache,
			Kind:    model.KindBoolean,
			Default: true,
			Help:    "Serve from the Scrapfly cache when a fresh copy exists (12h TTL)",
		},
		screenshotOption,
		resolveImagesOption,
	}
}

// Fetch implements Provider.
func (a *ScrapflyAdapter) Fetch(ctx context.Context, targetURL string, opts model.Options) (string, error) {
	o := opts.Resolve(a.OptionsSchema())
	shot := o.Bool(model.OptScreenshot)

	pool := scrapfly.PoolDatacenter
	if o.String(model.OptProxyPool) == "residential" {
		pool = scrapfly.PoolResidential
	}

	req := scrapfly.ScrapeRequest{
		URL:           targetURL,
		RenderJS:      o.Bool(model.OptRenderJS) || shot, // screenshots need a browser
		ProxyPool:     pool,
		Country:       o.String(model.OptCountry),
		Format:        o.String(model.OptFormat),
		Timeout:       time.Duration(a.cfg.timeout) * time.Millisecond,
		RenderingWait: o.Int(model.OptWaitFor),
		Retry:         false,
		Cache:         o.Bool(model.OptCache),
		CacheTTL:      scrapflyCacheTTL,
	}
	if shot {
		req.Screenshots = map[string]string{"main": "fullpage"}
	}

	resp, err := a.client.Scrape(ctx, req)
	if err != nil {
		return "", a.translate(err)
	}

	content := resp.Result.Content
	if !shot {
		return content, nil
	}

	var shotURL string
	if s, ok := resp.Result.Screenshots["main"]; ok && s.URL != "" {
		shotURL = a.client.ScreenshotURL(s.URL)
	}
	return a.cfg.shots.Attach(ctx, a.Name(), targetURL, shotURL, content)
}

func (a *ScrapflyAdapter) translate(err error) error {
	if cerr := credentialError(a.Name(), "SCRAPFLY_API_KEY", err, scrapfly.ErrNoAPIKey); cerr != nil {
		return cerr
	}
	var apiErr *scrapfly.APIError
	if errors.As(err, &apiErr) {
		return &model.RemoteError{Provider: a.Name(), StatusCode: apiErr.StatusCode, Body: apiErr.Body}
	}
	return transportError(a.Name(), err)
}
