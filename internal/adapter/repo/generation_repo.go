package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rohan-patnaik/convex-imagegen-studio/internal/domain"
)

// DBTX is the subset of pgxpool.Pool the repository needs. Tests substitute
// an in-memory implementation.
type DBTX interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
}

// GenerationRepositoryPG implements domain.GenerationRepository on PostgreSQL.
type GenerationRepositoryPG struct {
	db DBTX
}

// NewGenerationRepository creates a generation repository backed by PostgreSQL.
func NewGenerationRepository(db DBTX) *GenerationRepositoryPG {
	return &GenerationRepositoryPG{db: db}
}

var _ domain.GenerationRepository = (*GenerationRepositoryPG)(nil)

// Create inserts a new generation record in its initial queued state.
func (r *GenerationRepositoryPG) Create(ctx context.Context, rec *domain.GenerationRecord) error {
	query := `
INSERT INTO generations (id, prompt, model, provider, aspect_ratio, resolution, output_format, num_images, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
`
	_, err := r.db.Exec(ctx, query,
		rec.ID,
		rec.Prompt,
		rec.Model,
		rec.Provider,
		rec.AspectRatio,
		rec.Resolution,
		rec.OutputFormat,
		rec.NumImages,
		rec.Status,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	return err
}

// MarkComplete issues the successful terminal patch: status, image URLs and
// the optional provider request id.
func (r *GenerationRepositoryPG) MarkComplete(ctx context.Context, id string, imageURLs []string, requestID string) error {
	query := `
UPDATE generations
SET status = 'complete',
    image_urls = $2,
    request_id = NULLIF($3, ''),
    updated_at = now()
WHERE id = $1;
`
	_, err := r.db.Exec(ctx, query, id, imageURLs, requestID)
	return err
}

// MarkFailed issues the failing terminal patch with a human-readable message.
func (r *GenerationRepositoryPG) MarkFailed(ctx context.Context, id string, message string) error {
	query := `
UPDATE generations
SET status = 'failed',
    error = $2,
    updated_at = now()
WHERE id = $1;
`
	_, err := r.db.Exec(ctx, query, id, message)
	return err
}

const selectColumns = `id, prompt, model, provider, aspect_ratio, resolution, output_format, num_images, status, image_urls, request_id, error, created_at, updated_at`

// GetByID fetches a single record by its identifier.
func (r *GenerationRepositoryPG) GetByID(ctx context.Context, id string) (*domain.GenerationRecord, error) {
	query := `
SELECT ` + selectColumns + `
FROM generations
WHERE id = $1;
`
	rec, err := scanRecord(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// ListRecent returns up to limit records ordered by descending creation time.
func (r *GenerationRepositoryPG) ListRecent(ctx context.Context, limit int) ([]domain.GenerationRecord, error) {
	query := `
SELECT ` + selectColumns + `
FROM generations
ORDER BY created_at DESC
LIMIT $1;
`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.GenerationRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func scanRecord(row pgx.Row) (*domain.GenerationRecord, error) {
	var (
		rec       domain.GenerationRecord
		urls      []string
		requestID *string
		errMsg    *string
	)
	if err := row.Scan(
		&rec.ID,
		&rec.Prompt,
		&rec.Model,
		&rec.Provider,
		&rec.AspectRatio,
		&rec.Resolution,
		&rec.OutputFormat,
		&rec.NumImages,
		&rec.Status,
		&urls,
		&requestID,
		&errMsg,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	rec.ImageURLs = urls
	if requestID != nil {
		rec.RequestID = *requestID
	}
	if errMsg != nil {
		rec.ErrorMessage = *errMsg
	}
	return &rec, nil
}
