package scrape

import (
	"context"
	"errors"
	"time"

	"github.com/sells-group/scrape-playground/internal/model"
	"github.com/sells-group/scrape-playground/pkg/jina"
)

// JinaAdapter exposes the Jina Reader API as a Provider.
type JinaAdapter struct {
	client jina.Client
}

// NewJinaAdapter creates a JinaAdapter from a Jina client.
func NewJinaAdapter(client jina.Client) *JinaAdapter {
	return &JinaAdapter{client: client}
}

// Name implements Provider.
func (a *JinaAdapter) Name() string { return "jina" }

// OptionsSchema implements Provider.
func (a *JinaAdapter) OptionsSchema() model.Schema {
	return model.Schema{
		{
			Name:          model.OptFormat,
			Kind:          model.KindSelect,
			Default:       "markdown",
			AllowedValues: []string{"markdown", "html", "text"},
			Help:          "Output format returned by the reader",
		},
		{
			Name:    model.OptCache,
			Kind:    model.KindBoolean,
			Default: true,
			Help:    "Allow cached copies. Disable to force a fresh fetch",
		},
		{
			Name:    model.OptTargetSelector,
			Kind:    model.KindString,
			Default: "",
			Help:    "CSS selector limiting extraction to matching elements",
		},
		{
			Name:    model.OptTimeout,
			Kind:    model.KindNumber,
			Default: 0,
			Help:    "Page load budget in milliseconds. 0 uses the reader default",
		},
		resolveImagesOption,
	}
}

// Fetch implements Provider.
func (a *JinaAdapter) Fetch(ctx context.Context, targetURL string, opts model.Options) (string, error) {
	o := opts.Resolve(a.OptionsSchema())

	resp, err := a.client.Read(ctx, targetURL, jina.ReadOptions{
		Format:         o.String(model.OptFormat),
		NoCache:        !o.Bool(model.OptCache),
		TargetSelector: o.String(model.OptTargetSelector),
		Timeout:        time.Duration(o.Int(model.OptTimeout)) * time.Millisecond,
	})
	if err != nil {
		return "", a.translate(err)
	}
	if resp.Code != 0 && resp.Code != 200 {
		return "", &model.RemoteError{Provider: a.Name(), StatusCode: resp.Code, Body: resp.Data.Content}
	}
	return resp.Data.Content, nil
}

func (a *JinaAdapter) translate(err error) error {
	if cerr := credentialError(a.Name(), "JINA_API_KEY", err, jina.ErrNoAPIKey); cerr != nil {
		return cerr
	}
	var apiErr *jina.APIError
	if errors.As(err, &apiErr) {
		return &model.RemoteError{Provider: a.Name(), StatusCode: apiErr.StatusCode, Body: apiErr.Body}
	}
	return transportError(a.Name(), err)
}
