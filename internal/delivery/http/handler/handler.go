package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/user/image-crawler-service/internal/delivery/http/request"
	"github.com/user/image-crawler-service/internal/delivery/http/response"
	"github.com/user/image-crawler-service/internal/entity"
	"github.com/user/image-crawler-service/internal/stealth"
	"github.com/user/image-crawler-service/internal/usecase"
)

type Handler struct {
	crawler usecase.ImageCrawler
	service string
}

func NewHandler(crawler usecase.ImageCrawler, serviceName string) *Handler {
	return &Handler{
		crawler: crawler,
		service: serviceName,
	}
}

// HandleCrawlImages runs one synchronous extraction for the posted task
// descriptor and returns the filtered record set.
func (h *Handler) HandleCrawlImages(w http.ResponseWriter, r *http.Request) {
	var req request.CrawlImagesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	task := entity.Task{
		TargetURL:           req.URL,
		MaxImages:           req.MaxImages,
		DelayMinMS:          req.DelayMin,
		DelayMaxMS:          req.DelayMax,
		MaxRequestsPerCrawl: req.MaxRequestsPerCrawl,
	}
	task.ApplyDefaults()

	records, err := h.crawler.Crawl(r.Context(), task)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrMissingURL), errors.Is(err, entity.ErrInvalidDelayBounds):
			h.writeJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, stealth.ErrChallengeDetected):
			slog.Error("Crawl blocked by challenge", "url", req.URL)
			h.writeJSONError(w, err.Error(), http.StatusInternalServerError)
		default:
			slog.Error("Crawl failed", "url", req.URL, "error", err)
			h.writeJSONError(w, "Failed to crawl images: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}

	data := usecase.FilterComplete(records)
	h.writeJSON(w, http.StatusOK, response.CrawlImagesResponse{
		Success: true,
		Count:   len(data),
		Data:    data,
	})
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, response.HealthResponse{
		Status:  "ok",
		Service: h.service,
	})
}

// HandleServiceInfo lists the available endpoints.
func (h *Handler) HandleServiceInfo(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, response.ServiceInfoResponse{
		Service:     h.service,
		Description: "Extracts image metadata from a search-engine image results page.",
		Endpoints: map[string]string{
			"POST /api/crawl-images": "Run an extraction for the task descriptor in the body.",
			"GET /health":            "Service health.",
			"GET /metrics":           "Prometheus metrics.",
		},
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, response.ErrorResponse{Success: false, Error: message})
}
