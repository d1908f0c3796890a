// Package fetcher downloads auxiliary resources (screenshots) and resolves
// redirects for the scrape pipeline.
package fetcher

import "context"

// Fetcher defines the interface for plain HTTP reads outside the provider APIs.
type Fetcher interface {
	// Download fetches the URL and returns its body and content type.
	Download(ctx context.Context, url string) (*Response, error)

	// FinalURL issues a HEAD request, follows redirects, and returns the
	// URL the chain ended on.
	FinalURL(ctx context.Context, url string) (string, error)
}

// Response is a fully read download.
type Response struct {
	Data        []byte
	ContentType string
	StatusCode  int
}
