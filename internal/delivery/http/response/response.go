package response

import "github.com/user/image-crawler-service/internal/entity"

// CrawlImagesResponse is the success envelope for POST /api/crawl-images.
// Data holds the filtered record set; Count mirrors its length.
type CrawlImagesResponse struct {
	Success bool                 `json:"success"`
	Count   int                  `json:"count"`
	Data    []entity.ImageRecord `json:"data"`
}

// ErrorResponse is the envelope for every failed request. A response is
// either a full success or an error, never a mix.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// HealthResponse is the GET /health body.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// ServiceInfoResponse describes the service and its endpoints at GET /.
type ServiceInfoResponse struct {
	Service     string            `json:"service"`
	Description string            `json:"description"`
	Endpoints   map[string]string `json:"endpoints"`
}
