package scrape

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/scrape-playground/internal/model"
	"github.com/sells-group/scrape-playground/internal/normalize"
	"github.com/sells-group/scrape-playground/internal/resilience"
)

// Service runs a scrape request end to end: provider lookup, fetch, and
// normalization.
type Service struct {
	registry   *Registry
	normalizer *normalize.Normalizer
}

// NewService creates a Service.
func NewService(registry *Registry, normalizer *normalize.Normalizer) *Service {
	return &Service{registry: registry, normalizer: normalizer}
}

// Registry returns the provider registry backing the service.
func (s *Service) Registry() *Registry { return s.registry }

// Scrape fetches req.URL through req.Provider and returns the content as
// Markdown and rendered HTML.
func (s *Service) Scrape(ctx context.Context, req model.ScrapeRequest) (*model.ScrapeResult, error) {
	if strings.TrimSpace(req.URL) == "" {
		return nil, model.ErrURLRequired
	}
	provider, err := s.registry.Get(req.Provider)
	if err != nil {
		return nil, err
	}

	opts, deprecated := model.Canonicalize(req.Options)
	if len(deprecated) > 0 {
		zap.L().Warn("scrape: deprecated option keys",
			zap.String("provider", req.Provider),
			zap.Strings("keys", deprecated),
		)
	}

	log := zap.L().With(
		zap.String("provider", req.Provider),
		zap.String("url", req.URL),
	)
	start := time.Now()
	log.Info("scrape: fetching")

	// Resolved once here; adapters re-resolving resolved values is a no-op.
	opts = opts.Resolve(provider.OptionsSchema())

	raw, err := provider.Fetch(ctx, req.URL, opts)
	if err != nil {
		log.Warn("scrape: fetch failed",
			zap.Duration("duration", time.Since(start)),
			zap.Bool("transient", resilience.IsTransient(err)),
			zap.Error(err),
		)
		return nil, err
	}

	if blocked, kind := DetectBlock(raw); blocked {
		log.Warn("scrape: content looks like a block page", zap.String("block_type", string(kind)))
	}

	result, err := s.normalizer.Normalize(ctx, raw, req.URL, opts.Bool(model.OptResolveImages))
	if err != nil {
		log.Error("scrape: normalize failed", zap.Error(err))
		return nil, err
	}

	log.Info("scrape: done",
		zap.Duration("duration", time.Since(start)),
		zap.Int("bytes", len(result.Raw)),
	)
	return result, nil
}

// Preview renders caller-edited Markdown without fetching anything.
func (s *Service) Preview(raw string) (*model.ScrapeResult, error) {
	return s.normalizer.Preview(raw)
}
