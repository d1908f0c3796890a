package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/sells-group/scrape-playground/internal/model"
)

// maxBodyBytes caps POST bodies; raw_content previews can be large pages.
const maxBodyBytes = 10 << 20

type indexResponse struct {
	Providers      []string                `json:"providers"`
	ScraperOptions map[string]model.Schema `json:"scraper_options"`
}

type scrapeRequest struct {
	URL        string        `json:"url"`
	Provider   string        `json:"provider"`
	Options    model.Options `json:"options"`
	RawContent *string       `json:"raw_content"`
}

func (h *Handler) handleIndex(w http.ResponseWriter, _ *http.Request) {
	reg := h.svc.Registry()
	writeJSON(w, http.StatusOK, indexResponse{
		Providers:      reg.Names(),
		ScraperOptions: reg.Schemas(),
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleSchema(w http.ResponseWriter, r *http.Request) {
	schema, err := h.svc.Registry().SchemaFor(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schema)
}

func (h *Handler) handleScrape(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	if req.RawContent != nil {
		result, err := h.svc.Preview(*req.RawContent)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
		return
	}

	result, err := h.svc.Scrape(r.Context(), model.ScrapeRequest{
		URL:      req.URL,
		Provider: req.Provider,
		Options:  req.Options,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type errorBody struct {
	Error string `json:"error"`
}

// statusFor maps the error taxonomy onto HTTP status codes. Only caller
// mistakes are 4xx; everything else, including provider failures, is 500.
func statusFor(err error) int {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		zap.L().Error("server: request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		zap.L().Debug("server: write response", zap.Error(err))
	}
}
