package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sonbm-itealvn/smart-parking-api/internal/domain"
	"github.com/sonbm-itealvn/smart-parking-api/internal/repository"
)

type pgUploadedImageRepository struct {
	db *sql.DB
}

func NewPgUploadedImageRepository(db *sql.DB) repository.UploadedImageRepository {
	return &pgUploadedImageRepository{db: db}
}

func (r *pgUploadedImageRepository) Create(ctx context.Context, image *domain.UploadedImage) (*domain.UploadedImage, error) {
	query := `INSERT INTO uploaded_images (object_key, url, file_name, size_bytes, uploaded_by, created_at)
	           VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
	           RETURNING id, created_at`
	var uploadedByVal sql.NullInt64
	if image.UploadedBy.Valid {
		uploadedByVal = sql.NullInt64{Int64: image.UploadedBy.Int64, Valid: true}
	}
	err := r.db.QueryRowContext(ctx, query,
		image.ObjectKey, image.URL, image.FileName, image.SizeBytes, uploadedByVal,
	).Scan(&image.ID, &image.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("UploadedImageRepository.Create: %w", err)
	}
	image.CreatedAt = image.CreatedAt.In(time.UTC)
	return image, nil
}

func (r *pgUploadedImageRepository) FindAll(ctx context.Context) ([]domain.UploadedImage, error) {
	query := `SELECT id, object_key, url, file_name, size_bytes, uploaded_by, created_at
	           FROM uploaded_images ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("UploadedImageRepository.FindAll: %w", err)
	}
	defer rows.Close()

	var images []domain.UploadedImage
	for rows.Next() {
		var image domain.UploadedImage
		if err := rows.Scan(
			&image.ID, &image.ObjectKey, &image.URL, &image.FileName,
			&image.SizeBytes, &image.UploadedBy, &image.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("UploadedImageRepository.FindAll (scanning row): %w", err)
		}
		image.CreatedAt = image.CreatedAt.In(time.UTC)
		images = append(images, image)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("UploadedImageRepository.FindAll (rows error): %w", err)
	}
	return images, nil
}

func (r *pgUploadedImageRepository) Delete(ctx context.Context, id int) (*domain.UploadedImage, error) {
	image := &domain.UploadedImage{}
	query := `DELETE FROM uploaded_images WHERE id = $1
	           RETURNING id, object_key, url, file_name, size_bytes, uploaded_by, created_at`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&image.ID, &image.ObjectKey, &image.URL, &image.FileName,
		&image.SizeBytes, &image.UploadedBy, &image.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("UploadedImageRepository.Delete: %w", err)
	}
	image.CreatedAt = image.CreatedAt.In(time.UTC)
	return image, nil
}
