// Package model holds the data shapes shared by the scrape pipeline and the
// HTTP surface.
package model

// ScrapeRequest is one caller request to fetch a URL through a provider.
type ScrapeRequest struct {
	URL      string  `json:"url"`
	Provider string  `json:"provider"`
	Options  Options `json:"options"`
}

// ScrapeResult carries the fetched content and its rendered preview.
// HTML is always derived from Raw by the Markdown renderer.
type ScrapeResult struct {
	Raw  string `json:"raw"`
	HTML string `json:"html"`
}
