package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/scrape-playground/internal/fetcher"
	"github.com/sells-group/scrape-playground/internal/model"
	"github.com/sells-group/scrape-playground/internal/normalize"
	"github.com/sells-group/scrape-playground/internal/scrape"
	"github.com/sells-group/scrape-playground/pkg/scrapfly"
)

type stubProvider struct {
	name    string
	content string
	err     error
	calls   int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) OptionsSchema() model.Schema {
	return model.Schema{
		{Name: model.OptFormat, Kind: model.KindSelect, Default: "markdown", AllowedValues: []string{"markdown", "html"}},
		{Name: model.OptResolveImages, Kind: model.KindBoolean, Default: true},
	}
}

func (s *stubProvider) Fetch(_ context.Context, _ string, _ model.Options) (string, error) {
	s.calls++
	return s.content, s.err
}

func newTestHandler(t *testing.T, opts Options, providers ...scrape.Provider) http.Handler {
	t.Helper()
	reg, err := scrape.NewRegistry(providers...)
	require.NoError(t, err)
	return New(scrape.NewService(reg, normalize.New()), opts).Router()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t, Options{}, &stubProvider{name: "scrapfly"})

	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestIndex(t *testing.T) {
	h := newTestHandler(t, Options{}, &stubProvider{name: "scrapfly"}, &stubProvider{name: "firecrawl"})

	rec := do(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Providers      []string                            `json:"providers"`
		ScraperOptions map[string][]model.OptionDescriptor `json:"scraper_options"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, []string{"scrapfly", "firecrawl"}, body.Providers)
	require.Len(t, body.ScraperOptions["scrapfly"], 2)
	format := body.ScraperOptions["scrapfly"][0]
	assert.Equal(t, "format", format.Name)
	assert.Equal(t, model.KindSelect, format.Kind)
	assert.Equal(t, "markdown", format.Default)
	assert.Equal(t, []string{"markdown", "html"}, format.AllowedValues)
}

func TestSchemaEndpoint(t *testing.T) {
	h := newTestHandler(t, Options{}, &stubProvider{name: "scrapfly"})

	rec := do(t, h, http.MethodGet, "/providers/scrapfly/schema", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"resolve_images"`)

	rec = do(t, h, http.MethodGet, "/providers/nope/schema", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid scraper provider"}`, rec.Body.String())
}

func TestScrape_Preview(t *testing.T) {
	p := &stubProvider{name: "scrapfly"}
	h := newTestHandler(t, Options{}, p)

	rec := do(t, h, http.MethodPost, "/scrape", `{"raw_content":"# Hi"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"raw":"# Hi","html":"<h1>Hi</h1>"}`, rec.Body.String())
	assert.Zero(t, p.calls)

	rec = do(t, h, http.MethodPost, "/scrape", `{"raw_content":""}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"raw":"","html":""}`, rec.Body.String())
}

func TestScrape_Success(t *testing.T) {
	p := &stubProvider{name: "scrapfly", content: "# Acme\n\n![logo](/logo.png)"}
	h := newTestHandler(t, Options{}, p)

	rec := do(t, h, http.MethodPost, "/scrape", `{"url":"https://acme.com/about","provider":"scrapfly","options":{"format":"markdown"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "# Acme\n\n![logo](https://acme.com/logo.png)", body["raw"])
	assert.Contains(t, body["html"], `<img src="https://acme.com/logo.png" alt="logo">`)
	assert.Equal(t, 1, p.calls)
}

func TestScrape_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		provErr  error
		wantCode int
		wantBody string
	}{
		{
			name:     "empty url",
			body:     `{"url":"","provider":"scrapfly"}`,
			wantCode: http.StatusBadRequest,
			wantBody: `{"error":"URL is required"}`,
		},
		{
			name:     "unknown provider",
			body:     `{"url":"https://acme.com","provider":"bogus"}`,
			wantCode: http.StatusBadRequest,
			wantBody: `{"error":"Invalid scraper provider"}`,
		},
		{
			name:     "malformed body",
			body:     `{"url":`,
			wantCode: http.StatusBadRequest,
			wantBody: `{"error":"invalid request body"}`,
		},
		{
			name:     "missing credential",
			body:     `{"url":"https://acme.com","provider":"scrapfly"}`,
			provErr:  &model.MissingCredentialError{Provider: "scrapfly", Setting: "SCRAPFLY_API_KEY"},
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error":"scrapfly: missing API key (set SCRAPFLY_API_KEY)"}`,
		},
		{
			name:     "remote error",
			body:     `{"url":"https://acme.com","provider":"scrapfly"}`,
			provErr:  &model.RemoteError{Provider: "scrapfly", StatusCode: 502, Body: "bad gateway"},
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error":"scrapfly: HTTP 502: bad gateway"}`,
		},
		{
			name:     "timeout",
			body:     `{"url":"https://acme.com","provider":"scrapfly"}`,
			provErr:  &model.RemoteError{Provider: "scrapfly", Timeout: true},
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error":"scrapfly: request timed out"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, Options{}, &stubProvider{name: "scrapfly", err: tt.provErr})

			rec := do(t, h, http.MethodPost, "/scrape", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(model.ErrURLRequired))
	assert.Equal(t, http.StatusBadRequest, statusFor(eris.Wrap(model.ErrUnknownProvider, "lookup")))
	assert.Equal(t, http.StatusInternalServerError, statusFor(&model.ConversionError{Op: "markdown_to_html", Err: eris.New("boom")}))
	assert.Equal(t, http.StatusInternalServerError, statusFor(eris.New("unexpected")))
}

func TestStatic(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shot.png"), []byte("png"), 0o644))
	h := newTestHandler(t, Options{StaticDir: dir}, &stubProvider{name: "scrapfly"})

	rec := do(t, h, http.MethodGet, "/static/shot.png", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png", rec.Body.String())

	rec = do(t, h, http.MethodGet, "/static/missing.png", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStaticDisabled(t *testing.T) {
	h := newTestHandler(t, Options{}, &stubProvider{name: "scrapfly"})
	rec := do(t, h, http.MethodGet, "/static/shot.png", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORS(t *testing.T) {
	h := newTestHandler(t, Options{CORSOrigins: []string{"https://app.example.com"}}, &stubProvider{name: "scrapfly"})

	req := httptest.NewRequest(http.MethodOptions, "/scrape", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

type panicProvider struct{ stubProvider }

func (p *panicProvider) Fetch(context.Context, string, model.Options) (string, error) {
	panic("provider exploded")
}

func TestRecoversFromPanics(t *testing.T) {
	h := newTestHandler(t, Options{}, &panicProvider{stubProvider{name: "scrapfly"}})

	rec := do(t, h, http.MethodPost, "/scrape", `{"url":"https://acme.com","provider":"scrapfly"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "goroutine")
}

func TestScrape_ThroughScrapflyAPI(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/scrape", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "https://acme.com/blog/post", r.URL.Query().Get("url"))
		assert.Equal(t, "false", r.URL.Query().Get("retry"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":{"content":"<h1>Post</h1><p><img src=\"img/a.png\" alt=\"a\"></p>","status_code":200,"success":true}}`))
	}))
	defer upstream.Close()

	client := scrapfly.NewClient("test-key", scrapfly.WithBaseURL(upstream.URL))
	h := newTestHandler(t, Options{}, scrape.NewScrapflyAdapter(client))

	rec := do(t, h, http.MethodPost, "/scrape", `{"url":"https://acme.com/blog/post","provider":"scrapfly"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Contains(t, body["raw"], "# Post")
	assert.Contains(t, body["raw"], "![a](https://acme.com/blog/img/a.png)")
	assert.Contains(t, body["html"], "<h1>Post</h1>")
}

func TestScrape_MissingKeyIsServerError(t *testing.T) {
	h := newTestHandler(t, Options{}, scrape.NewScrapflyAdapter(scrapfly.NewClient("")))

	rec := do(t, h, http.MethodPost, "/scrape", `{"url":"https://acme.com","provider":"scrapfly"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"scrapfly: missing API key (set SCRAPFLY_API_KEY)"}`, rec.Body.String())
}

func TestScrape_ErrorsNeverExposeKey(t *testing.T) {
	const key = "SUPERSECRET-KEY"

	closed := httptest.NewServer(http.NotFoundHandler())
	deadAddr := closed.URL
	closed.Close()

	t.Run("transport failure", func(t *testing.T) {
		client := scrapfly.NewClient(key, scrapfly.WithBaseURL(deadAddr))
		h := newTestHandler(t, Options{}, scrape.NewScrapflyAdapter(client))

		rec := do(t, h, http.MethodPost, "/scrape", `{"url":"https://acme.com","provider":"scrapfly"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "execute request")
		assert.NotContains(t, rec.Body.String(), key)
		assert.NotContains(t, rec.Body.String(), "scrapfly: scrapfly:")
	})

	t.Run("screenshot download failure", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"result":{"content":"<p>hi</p>","status_code":200,"success":true,` +
				`"screenshots":{"main":{"url":"` + deadAddr + `/scrape/screenshot/abc/main","extension":"jpg"}}}}`))
		}))
		defer upstream.Close()

		client := scrapfly.NewClient(key, scrapfly.WithBaseURL(upstream.URL))
		shots := scrape.NewScreenshotter(fetcher.NewHTTPFetcher(fetcher.HTTPOptions{}))
		h := newTestHandler(t, Options{}, scrape.NewScrapflyAdapter(client, scrape.WithScreenshotter(shots)))

		rec := do(t, h, http.MethodPost, "/scrape",
			`{"url":"https://acme.com","provider":"scrapfly","options":{"screenshot":true}}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "screenshot download")
		assert.NotContains(t, rec.Body.String(), key)
	})
}
