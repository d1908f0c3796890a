package scrape

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/scrape-playground/internal/fetcher"
	"github.com/sells-group/scrape-playground/internal/model"
	"github.com/sells-group/scrape-playground/pkg/scrapfly"
	scrapflymocks "github.com/sells-group/scrape-playground/pkg/scrapfly/mocks"
)

func defaultScrapflyRequest(url string) scrapfly.ScrapeRequest {
	return scrapfly.ScrapeRequest{
		URL:       url,
		ProxyPool: scrapfly.PoolDatacenter,
		Format:    "markdown",
		Timeout:   60 * time.Second,
		Cache:     true,
		CacheTTL:  12 * time.Hour,
	}
}

func TestScrapflyAdapter_Name(t *testing.T) {
	t.Parallel()
	adapter := NewScrapflyAdapter(scrapflymocks.NewMockClient(t))
	assert.Equal(t, "scrapfly", adapter.Name())
	require.NoError(t, adapter.OptionsSchema().Validate())
}

func TestScrapflyAdapter_Fetch_Defaults(t *testing.T) {
	t.Parallel()
	client := scrapflymocks.NewMockClient(t)
	adapter := NewScrapflyAdapter(client)

	client.On("Scrape", context.Background(), defaultScrapflyRequest("https://acme.com")).
		Return(&scrapfly.ScrapeResponse{Result: scrapfly.Result{Content: "# Acme"}}, nil)

	got, err := adapter.Fetch(context.Background(), "https://acme.com", nil)
	require.NoError(t, err)
	assert.Equal(t, "# Acme", got)
}

func TestScrapflyAdapter_Fetch_ProjectsOptions(t *testing.T) {
	t.Parallel()
	client := scrapflymocks.NewMockClient(t)
	adapter := NewScrapflyAdapter(client, WithRemoteTimeoutMillis(15000))

	want := scrapfly.ScrapeRequest{
		URL:           "https://acme.com",
		RenderJS:      true,
		ProxyPool:     scrapfly.PoolResidential,
		Country:       "de",
		Format:        "clean_html",
		Timeout:       15 * time.Second,
		RenderingWait: 500,
		Cache:         false,
		CacheTTL:      12 * time.Hour,
	}
	client.On("Scrape", context.Background(), want).
		Return(&scrapfly.ScrapeResponse{Result: scrapfly.Result{Content: "<p>hi</p>"}}, nil)

	got, err := adapter.Fetch(context.Background(), "https://acme.com", model.Options{
		model.OptRenderJS:  "true",
		model.OptProxyPool: "residential",
		model.OptCountry:   "de",
		model.OptFormat:    "clean_html",
		model.OptWaitFor:   "500",
		model.OptCache:     false,
		"unknown_option":   42,
	})
	require.NoError(t, err)
	assert.Equal(t, "<p>hi</p>", got)
}

func TestScrapflyAdapter_Fetch_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		assert func(t *testing.T, err error)
	}{
		{
			name: "missing key",
			err:  scrapfly.ErrNoAPIKey,
			assert: func(t *testing.T, err error) {
				var cred *model.MissingCredentialError
				require.ErrorAs(t, err, &cred)
				assert.Equal(t, "scrapfly", cred.Provider)
				assert.Equal(t, "SCRAPFLY_API_KEY", cred.Setting)
			},
		},
		{
			name: "http status",
			err:  &scrapfly.APIError{StatusCode: 429, Body: "quota exceeded"},
			assert: func(t *testing.T, err error) {
				var remote *model.RemoteError
				require.ErrorAs(t, err, &remote)
				assert.Equal(t, 429, remote.StatusCode)
				assert.Equal(t, "quota exceeded", remote.Body)
				assert.False(t, remote.Timeout)
			},
		},
		{
			name: "timeout",
			err:  eris.Wrap(context.DeadlineExceeded, "execute request"),
			assert: func(t *testing.T, err error) {
				var remote *model.RemoteError
				require.ErrorAs(t, err, &remote)
				assert.True(t, remote.Timeout)
				assert.Equal(t, "scrapfly: request timed out", err.Error())
			},
		},
		{
			name: "malformed payload",
			err:  eris.Wrap(errors.New("unexpected end of JSON input"), "decode response"),
			assert: func(t *testing.T, err error) {
				var remote *model.RemoteError
				require.ErrorAs(t, err, &remote)
				assert.Zero(t, remote.StatusCode)
				assert.Contains(t, err.Error(), "unexpected end of JSON input")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := scrapflymocks.NewMockClient(t)
			client.On("Scrape", mock.Anything, mock.Anything).Return(nil, tt.err)

			_, err := NewScrapflyAdapter(client).Fetch(context.Background(), "https://acme.com", nil)
			require.Error(t, err)
			tt.assert(t, err)
		})
	}
}

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestScrapflyAdapter_Fetch_Screenshot(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "k", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngBytes)
	}))
	defer srv.Close()

	client := scrapflymocks.NewMockClient(t)
	shots := NewScreenshotter(fetcher.NewHTTPFetcher(fetcher.HTTPOptions{}))
	adapter := NewScrapflyAdapter(client, WithScreenshotter(shots))

	want := defaultScrapflyRequest("https://acme.com")
	want.RenderJS = true
	want.Screenshots = map[string]string{"main": "fullpage"}
	client.On("Scrape", context.Background(), want).Return(&scrapfly.ScrapeResponse{Result: scrapfly.Result{
		Content: "# Acme\n",
		Screenshots: map[string]scrapfly.Screenshot{
			"main": {URL: srv.URL + "/shot.png", Extension: "png"},
		},
	}}, nil)
	client.On("ScreenshotURL", srv.URL+"/shot.png").Return(srv.URL + "/shot.png?key=k")

	got, err := adapter.Fetch(context.Background(), "https://acme.com", model.Options{model.OptScreenshot: true})
	require.NoError(t, err)
	assert.Equal(t, `# Acme

<img src="data:image/png;base64,iVBORw0KGgoAAAANSUhEUg==" alt="Screenshot of https://acme.com">`, got)
}

func TestScrapflyAdapter_Fetch_ScreenshotMissing(t *testing.T) {
	t.Parallel()
	client := scrapflymocks.NewMockClient(t)
	adapter := NewScrapflyAdapter(client, WithScreenshotter(NewScreenshotter(fetcher.NewHTTPFetcher(fetcher.HTTPOptions{}))))

	client.On("Scrape", mock.Anything, mock.Anything).
		Return(&scrapfly.ScrapeResponse{Result: scrapfly.Result{Content: "# Acme"}}, nil)

	got, err := adapter.Fetch(context.Background(), "https://acme.com", model.Options{model.OptScreenshot: true})
	require.NoError(t, err)
	assert.Equal(t, "# Acme", got)
}

func TestScrapflyAdapter_Fetch_ScreenshotDownloadFails(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	client := scrapflymocks.NewMockClient(t)
	adapter := NewScrapflyAdapter(client, WithScreenshotter(NewScreenshotter(fetcher.NewHTTPFetcher(fetcher.HTTPOptions{}))))

	client.On("Scrape", mock.Anything, mock.Anything).Return(&scrapfly.ScrapeResponse{Result: scrapfly.Result{
		Content:     "# Acme",
		Screenshots: map[string]scrapfly.Screenshot{"main": {URL: srv.URL + "/gone.png"}},
	}}, nil)
	client.On("ScreenshotURL", srv.URL+"/gone.png").Return(srv.URL + "/gone.png")

	_, err := adapter.Fetch(context.Background(), "https://acme.com", model.Options{model.OptScreenshot: true})
	var remote *model.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "scrapfly", remote.Provider)
}
