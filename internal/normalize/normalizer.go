package normalize

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/scrape-playground/internal/model"
)

// RedirectResolver follows redirects for a URL.
type RedirectResolver interface {
	FinalURL(ctx context.Context, url string) (string, error)
}

// FollowRedirects returns the URL that rawURL finally redirects to.
// It is best effort and always returns a usable URL: on any failure it
// returns rawURL unchanged.
func FollowRedirects(ctx context.Context, resolver RedirectResolver, rawURL string) string {
	if resolver == nil || rawURL == "" {
		return rawURL
	}
	final, err := resolver.FinalURL(ctx, rawURL)
	if err != nil || final == "" {
		zap.L().Debug("normalize: redirect lookup failed, keeping original url",
			zap.String("url", rawURL),
			zap.Error(err),
		)
		return rawURL
	}
	return final
}

const defaultRedirectTimeout = 10 * time.Second

// Normalizer runs the content pipeline that turns provider output into a
// ScrapeResult.
type Normalizer struct {
	resolver        RedirectResolver
	redirectTimeout time.Duration
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithRedirectResolver makes image resolution use the post-redirect page
// URL as its base. timeout bounds the lookup; zero keeps the default.
func WithRedirectResolver(r RedirectResolver, timeout time.Duration) Option {
	return func(n *Normalizer) {
		n.resolver = r
		if timeout > 0 {
			n.redirectTimeout = timeout
		}
	}
}

// New creates a Normalizer.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{redirectTimeout: defaultRedirectTimeout}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize converts HTML to Markdown when needed, optionally rewrites
// relative image links against sourceURL, and renders the preview.
func (n *Normalizer) Normalize(ctx context.Context, raw, sourceURL string, resolveImages bool) (*model.ScrapeResult, error) {
	content := raw
	if IsLikelyHTML(content) {
		converted, err := HTMLToMarkdown(content)
		if err != nil {
			return nil, err
		}
		content = converted
	}

	if resolveImages && sourceURL != "" {
		content = ResolveRelativeImages(content, n.baseURL(ctx, sourceURL))
	}

	return n.Preview(content)
}

// Preview renders already-fetched Markdown. Raw is returned verbatim.
func (n *Normalizer) Preview(raw string) (*model.ScrapeResult, error) {
	html, err := MarkdownToHTML(raw)
	if err != nil {
		return nil, err
	}
	return &model.ScrapeResult{Raw: raw, HTML: html}, nil
}

func (n *Normalizer) baseURL(ctx context.Context, sourceURL string) string {
	if n.resolver == nil {
		return sourceURL
	}
	ctx, cancel := context.WithTimeout(ctx, n.redirectTimeout)
	defer cancel()
	return FollowRedirects(ctx, n.resolver, sourceURL)
}
