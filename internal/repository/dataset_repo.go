package repository

import (
	"context"

	"github.com/user/image-crawler-service/internal/entity"
)

// DatasetRepository defines the interface for the append-only record sink
// used in batch mode. Records are appended one per call, in extraction order.
type DatasetRepository interface {
	Append(ctx context.Context, record *entity.ImageRecord) error
}
