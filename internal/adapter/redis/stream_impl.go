package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/user/image-crawler-service/internal/entity"
)

const datasetStreamKey = "crawler:images"

// StreamRepoImpl provides a concrete implementation for the
// DatasetRepository interface using a Redis Stream, which is append-only by
// construction. Each record becomes one stream entry.
type StreamRepoImpl struct {
	client *redis.Client
}

// NewStreamRepo creates a new instance of StreamRepoImpl.
func NewStreamRepo(client *redis.Client) *StreamRepoImpl {
	return &StreamRepoImpl{client: client}
}

// Append XADDs one extracted record to the dataset stream.
func (r *StreamRepoImpl) Append(ctx context.Context, record *entity.ImageRecord) error {
	return r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: datasetStreamKey,
		Values: map[string]interface{}{
			"imageUrl":    record.ImageURL,
			"alt":         record.Alt,
			"title":       record.Title,
			"sourceUrl":   record.SourceURL,
			"sourceTitle": record.SourceTitle,
			"nearbyText":  record.NearbyText,
			"searchQuery": record.SearchQuery,
			"crawledAt":   record.CrawledAt.Format("2006-01-02T15:04:05.000Z07:00"),
		},
	}).Err()
}
