package main

import (
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/scrape-playground/internal/config"
	"github.com/sells-group/scrape-playground/internal/fetcher"
	"github.com/sells-group/scrape-playground/internal/normalize"
	"github.com/sells-group/scrape-playground/internal/scrape"
	"github.com/sells-group/scrape-playground/pkg/firecrawl"
	"github.com/sells-group/scrape-playground/pkg/jina"
	"github.com/sells-group/scrape-playground/pkg/scrapfly"
)

// staticPrefix is the URL path screenshots are served under in static mode.
const staticPrefix = "/static/"

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

// initService builds the API clients, provider adapters, registry, and
// normalizer described by c. Nothing here touches the network.
func initService(c *config.Config) (*scrape.Service, error) {
	dl := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		Timeout:  seconds(c.Screenshot.TimeoutSecs),
		MaxBytes: c.Screenshot.MaxBytes,
	})

	var shotOpts []scrape.ScreenshotOption
	if c.Screenshot.Embed == string(scrape.EmbedStatic) {
		shotOpts = append(shotOpts, scrape.WithStaticDir(c.Screenshot.Dir, staticPrefix))
	}
	shots := scrape.NewScreenshotter(dl, shotOpts...)

	providers := make([]scrape.Provider, 0, len(c.Providers))
	for _, name := range c.Providers {
		p, err := newProvider(c, name, shots)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}

	reg, err := scrape.NewRegistry(providers...)
	if err != nil {
		return nil, eris.Wrap(err, "init registry")
	}

	var normOpts []normalize.Option
	if c.Normalize.FollowRedirects {
		normOpts = append(normOpts, normalize.WithRedirectResolver(dl, seconds(c.Normalize.RedirectTimeoutSecs)))
	}

	zap.L().Debug("service initialized", zap.Strings("providers", reg.Names()))
	return scrape.NewService(reg, normalize.New(normOpts...)), nil
}

func newProvider(c *config.Config, name string, shots *scrape.Screenshotter) (scrape.Provider, error) {
	switch name {
	case "scrapfly":
		warnMissingKey(name, c.Scrapfly.Key, "SCRAPFLY_API_KEY")
		opts := []scrapfly.Option{scrapfly.WithBaseURL(c.Scrapfly.BaseURL)}
		if c.Scrapfly.TimeoutSecs > 0 {
			opts = append(opts, scrapfly.WithTimeout(seconds(c.Scrapfly.TimeoutSecs)))
		}
		adapterOpts := []scrape.AdapterOption{scrape.WithScreenshotter(shots)}
		if c.Scrapfly.TimeoutSecs > 0 {
			adapterOpts = append(adapterOpts, scrape.WithRemoteTimeoutMillis(c.Scrapfly.TimeoutSecs*1000))
		}
		return scrape.NewScrapflyAdapter(scrapfly.NewClient(c.Scrapfly.Key, opts...), adapterOpts...), nil

	case "firecrawl":
		warnMissingKey(name, c.Firecrawl.Key, "FIRECRAWL_API_KEY")
		opts := []firecrawl.Option{firecrawl.WithBaseURL(c.Firecrawl.BaseURL)}
		if c.Firecrawl.TimeoutSecs > 0 {
			opts = append(opts, firecrawl.WithTimeout(seconds(c.Firecrawl.TimeoutSecs)))
		}
		return scrape.NewFirecrawlAdapter(firecrawl.NewClient(c.Firecrawl.Key, opts...), scrape.WithScreenshotter(shots)), nil

	case "jina":
		warnMissingKey(name, c.Jina.Key, "JINA_API_KEY")
		opts := []jina.Option{jina.WithBaseURL(c.Jina.BaseURL)}
		if c.Jina.TimeoutSecs > 0 {
			opts = append(opts, jina.WithTimeout(seconds(c.Jina.TimeoutSecs)))
		}
		return scrape.NewJinaAdapter(jina.NewClient(c.Jina.Key, opts...)), nil
	}
	return nil, eris.Errorf("unknown provider %q", name)
}

// warnMissingKey logs at startup; the request itself fails later with a
// MissingCredentialError.
func warnMissingKey(provider, key, env string) {
	if key == "" {
		zap.L().Warn("provider has no API key, requests will fail",
			zap.String("provider", provider),
			zap.String("env", env),
		)
	}
}
