package scrape

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"html"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/scrape-playground/internal/fetcher"
	"github.com/sells-group/scrape-playground/internal/model"
	"github.com/sells-group/scrape-playground/internal/resilience"
)

// EmbedMode selects how a downloaded screenshot is referenced.
type EmbedMode string

const (
	// EmbedDataURI inlines the image as a base64 data URI.
	EmbedDataURI EmbedMode = "data_uri"
	// EmbedStatic writes the image to disk and links to it.
	EmbedStatic EmbedMode = "static"
)

// Screenshotter downloads a provider screenshot and appends it to the
// scraped content as an <img> tag.
type Screenshotter struct {
	fetcher fetcher.Fetcher
	mode    EmbedMode
	dir     string
	prefix  string
	now     func() time.Time
}

// ScreenshotOption configures a Screenshotter.
type ScreenshotOption func(*Screenshotter)

// WithStaticDir stores screenshots under dir and links to them as
// prefix + filename.
func WithStaticDir(dir, prefix string) ScreenshotOption {
	return func(s *Screenshotter) {
		s.mode = EmbedStatic
		s.dir = dir
		s.prefix = prefix
	}
}

// NewScreenshotter creates a Screenshotter that embeds data URIs unless
// configured otherwise.
func NewScreenshotter(f fetcher.Fetcher, opts ...ScreenshotOption) *Screenshotter {
	s := &Screenshotter{
		fetcher: f,
		mode:    EmbedDataURI,
		prefix:  "/static/",
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Attach downloads shotURL and appends the image to content. An empty
// shotURL, or a nil Screenshotter, returns content unchanged.
func (s *Screenshotter) Attach(ctx context.Context, provider, pageURL, shotURL, content string) (string, error) {
	if s == nil || shotURL == "" {
		zap.L().Debug("scrape: no screenshot to attach",
			zap.String("provider", provider),
			zap.String("url", pageURL),
		)
		return content, nil
	}

	resp, err := s.fetcher.Download(ctx, shotURL)
	if err != nil {
		return "", &model.RemoteError{
			Provider: provider,
			Timeout:  resilience.IsTimeout(err),
			Err:      eris.Wrap(err, "screenshot download"),
		}
	}

	mimeType := imageType(resp)
	src, err := s.source(pageURL, mimeType, resp.Data)
	if err != nil {
		return "", err
	}

	tag := fmt.Sprintf(`<img src="%s" alt="%s">`,
		html.EscapeString(src),
		html.EscapeString("Screenshot of "+pageURL),
	)
	return strings.TrimRight(content, "\n") + "\n\n" + tag, nil
}

func (s *Screenshotter) source(pageURL, mimeType string, data []byte) (string, error) {
	if s.mode != EmbedStatic {
		return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
	}

	name := s.fileName(pageURL, mimeType)
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", eris.Wrapf(err, "screenshot: create dir %s", s.dir)
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil { //nolint:gosec
		return "", eris.Wrapf(err, "screenshot: write %s", name)
	}
	return s.prefix + name, nil
}

// fileName is unique per download: url hash, timestamp, and a random suffix.
func (s *Screenshotter) fileName(pageURL, mimeType string) string {
	sum := sha256.Sum256([]byte(pageURL))
	return fmt.Sprintf("%s-%d-%s.%s",
		hex.EncodeToString(sum[:])[:12],
		s.now().UnixNano(),
		uuid.NewString()[:8],
		extensionFor(mimeType),
	)
}

func imageType(resp *fetcher.Response) string {
	if mt, _, err := mime.ParseMediaType(resp.ContentType); err == nil && strings.HasPrefix(mt, "image/") {
		return mt
	}
	if sniffed := http.DetectContentType(resp.Data); strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	return "image/png"
}

var imageExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/webp": "webp",
	"image/gif":  "gif",
}

func extensionFor(mimeType string) string {
	if ext, ok := imageExtensions[mimeType]; ok {
		return ext
	}
	return "img"
}
