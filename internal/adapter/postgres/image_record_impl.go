package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/image-crawler-service/internal/entity"
	"github.com/user/image-crawler-service/pkg/utils"
)

// ImageRecordRepoImpl provides a concrete implementation for the
// DatasetRepository interface using PostgreSQL. The image_records table is
// append-only; a repeated image URL across runs is ignored.
type ImageRecordRepoImpl struct {
	db *pgxpool.Pool
}

// NewImageRecordRepo creates a new instance of ImageRecordRepoImpl.
func NewImageRecordRepo(db *pgxpool.Pool) *ImageRecordRepoImpl {
	return &ImageRecordRepoImpl{db: db}
}

// Append stores one extracted record.
func (r *ImageRecordRepoImpl) Append(ctx context.Context, record *entity.ImageRecord) error {
	query := `
		INSERT INTO image_records (url_hash, image_url, alt, title, source_url, source_title, nearby_text, search_query, crawled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (url_hash) DO NOTHING;
	`
	_, err := r.db.Exec(ctx, query,
		utils.HashURL(record.ImageURL),
		record.ImageURL,
		record.Alt,
		record.Title,
		record.SourceURL,
		record.SourceTitle,
		record.NearbyText,
		record.SearchQuery,
		record.CrawledAt,
	)
	return err
}
