package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/shopsight/product-scraper/internal/models"
	"github.com/shopsight/product-scraper/internal/scraper"
)

type Handlers struct {
	scraper *scraper.Service
	logger  *slog.Logger
}

func NewHandlers(scraper *scraper.Service, logger *slog.Logger) *Handlers {
	return &Handlers{
		scraper: scraper,
		logger:  logger,
	}
}

// ScrapeRequest accepts either a single url or a list of urls, plus an
// optional source hint.
type ScrapeRequest struct {
	URL    string   `json:"url,omitempty"`
	URLs   []string `json:"urls,omitempty"`
	Source string   `json:"source,omitempty"`
}

// ScrapeResponse is the single-item response envelope.
type ScrapeResponse struct {
	Success bool            `json:"success"`
	Data    *models.Product `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// BatchScrapeResponse is the batch response envelope. It reports success
// even when individual items failed; per-item failures live inside Data.
type BatchScrapeResponse struct {
	Success bool                     `json:"success"`
	Data    []models.BatchItemResult `json:"data"`
	Message string                   `json:"message"`
}

// Scrape handles both single-URL and batch scraping requests.
func (h *Handlers) Scrape(w http.ResponseWriter, r *http.Request) {
	var req ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "urls" {
			h.respondError(w, http.StatusBadRequest, "urls must be an array of strings")
			return
		}
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.URL == "" && req.URLs == nil {
		h.respondError(w, http.StatusBadRequest, "either url or urls is required")
		return
	}
	if req.URL != "" && req.URLs != nil {
		h.respondError(w, http.StatusBadRequest, "provide either url or urls, not both")
		return
	}

	src, ok := models.ParseSource(req.Source)
	if !ok {
		h.respondError(w, http.StatusBadRequest,
			fmt.Sprintf("unknown source %q", req.Source))
		return
	}

	if req.URLs != nil {
		// Batch items resolve their source per URL; a single hint cannot
		// speak for a mixed list, so it is refused rather than ignored.
		if src != models.SourceAuto {
			h.respondError(w, http.StatusBadRequest,
				"source hint is only valid for single-url requests")
			return
		}
		h.scrapeBatch(w, r, req.URLs)
		return
	}

	product, err := h.scraper.ScrapeOne(r.Context(), scraper.Request{
		URL:    req.URL,
		Source: src,
	})
	if err != nil {
		h.respondJSON(w, statusForKind(models.KindOf(err)), ScrapeResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	h.respondJSON(w, http.StatusOK, ScrapeResponse{
		Success: true,
		Data:    product,
	})
}

func (h *Handlers) scrapeBatch(w http.ResponseWriter, r *http.Request, urls []string) {
	results := h.scraper.ScrapeMany(r.Context(), urls)

	succeeded := 0
	for _, res := range results {
		if res.Success {
			succeeded++
		}
	}

	h.respondJSON(w, http.StatusOK, BatchScrapeResponse{
		Success: true,
		Data:    results,
		Message: fmt.Sprintf("scraped %d of %d urls", succeeded, len(results)),
	})
}

// SourcesResponse lists the supported sources for the discovery endpoint.
type SourcesResponse struct {
	Sources []SourceInfo `json:"sources"`
}

type SourceInfo struct {
	Source     models.Source `json:"source"`
	Hosts      []string      `json:"hosts"`
	ExampleURL string        `json:"example_url"`
}

// ListSources enumerates the implemented sources with one example URL
// each. Purely descriptive, the pipeline does not consult it.
func (h *Handlers) ListSources(w http.ResponseWriter, r *http.Request) {
	infos := h.scraper.Sources()
	resp := SourcesResponse{Sources: make([]SourceInfo, len(infos))}
	for i, info := range infos {
		resp.Sources[i] = SourceInfo{
			Source:     info.Source,
			Hosts:      info.Hosts,
			ExampleURL: info.ExampleURL,
		}
	}
	h.respondJSON(w, http.StatusOK, resp)
}

// statusForKind maps error kinds to HTTP statuses: input-tied failures are
// client errors, upstream fetch problems surface as bad gateway.
func statusForKind(kind models.ErrorKind) int {
	switch kind {
	case models.ErrMissingInput, models.ErrInvalidFormat,
		models.ErrUnsupportedSource, models.ErrSourceMismatch,
		models.ErrParseFailed:
		return http.StatusBadRequest
	case models.ErrFetchFailed, models.ErrTimeout:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, ScrapeResponse{Success: false, Error: message})
}
