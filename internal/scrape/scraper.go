// Package scrape adapts third-party scraping APIs behind a common Provider
// interface and runs the fetch-then-normalize pipeline.
package scrape

import (
	"context"
	"errors"

	"github.com/sells-group/scrape-playground/internal/model"
	"github.com/sells-group/scrape-playground/internal/resilience"
)

// Provider fetches a single URL through one third-party scraping API.
type Provider interface {
	// Name is the registry key, e.g. "scrapfly".
	Name() string
	// OptionsSchema lists the options the provider honors.
	OptionsSchema() model.Schema
	// Fetch returns the page content as Markdown, HTML, or text depending
	// on the resolved options. Unknown option keys are ignored.
	Fetch(ctx context.Context, url string, opts model.Options) (string, error)
}

// adapterConfig holds settings shared by every adapter.
type adapterConfig struct {
	shots   *Screenshotter
	timeout int // milliseconds sent to APIs that take a server-side budget
}

// AdapterOption configures a provider adapter.
type AdapterOption func(*adapterConfig)

// WithScreenshotter enables the screenshot option for adapters that support it.
func WithScreenshotter(s *Screenshotter) AdapterOption {
	return func(c *adapterConfig) {
		c.shots = s
	}
}

// WithRemoteTimeoutMillis sets the server-side timeout sent to the API.
func WithRemoteTimeoutMillis(ms int) AdapterOption {
	return func(c *adapterConfig) {
		c.timeout = ms
	}
}

func newAdapterConfig(defaultTimeout int, opts []AdapterOption) adapterConfig {
	c := adapterConfig{timeout: defaultTimeout}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// credentialError maps a client's no-key sentinel onto MissingCredentialError.
func credentialError(provider, setting string, err, sentinel error) error {
	if errors.Is(err, sentinel) {
		return &model.MissingCredentialError{Provider: provider, Setting: setting}
	}
	return nil
}

// transportError wraps a failure that produced no HTTP status.
func transportError(provider string, err error) error {
	return &model.RemoteError{
		Provider: provider,
		Timeout:  resilience.IsTimeout(err),
		Err:      err,
	}
}

// Options every provider carries.
var (
	resolveImagesOption = model.OptionDescriptor{
		Name:    model.OptResolveImages,
		Kind:    model.KindBoolean,
		Default: true,
		Help:    "Rewrite relative image links against the page URL",
	}
	screenshotOption = model.OptionDescriptor{
		Name:    model.OptScreenshot,
		Kind:    model.KindBoolean,
		Default: false,
		Help:    "Capture a full-page screenshot and append it to the content",
	}
)
