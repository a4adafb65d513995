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

type pgCameraRepository struct {
	db *sql.DB
}

func NewPgCameraRepository(db *sql.DB) repository.CameraRepository {
	return &pgCameraRepository{db: db}
}

func (r *pgCameraRepository) Create(ctx context.Context, camera *domain.Camera) (*domain.Camera, error) {
	query := `INSERT INTO cameras (name, stream_url, camera_type, status, lot_id, description, location, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	           RETURNING id, created_at, updated_at`
	var lotIDVal sql.NullInt64
	if camera.LotID.Valid {
		lotIDVal = sql.NullInt64{Int64: camera.LotID.Int64, Valid: true}
	}
	err := r.db.QueryRowContext(ctx, query,
		camera.Name, camera.StreamURL, camera.CameraType, camera.Status, lotIDVal,
		camera.Description, camera.Location,
	).Scan(&camera.ID, &camera.CreatedAt, &camera.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("CameraRepository.Create: %w", err)
	}
	camera.CreatedAt = camera.CreatedAt.In(time.UTC)
	camera.UpdatedAt = camera.UpdatedAt.In(time.UTC)
	return camera, nil
}

func (r *pgCameraRepository) FindByID(ctx context.Context, id int) (*domain.Camera, error) {
	camera := &domain.Camera{}
	query := `SELECT id, name, stream_url, camera_type, status, lot_id, description, location, created_at, updated_at
	           FROM cameras WHERE id = $1`
	var description, location sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&camera.ID, &camera.Name, &camera.StreamURL, &camera.CameraType, &camera.Status,
		&camera.LotID, &description, &location, &camera.CreatedAt, &camera.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("CameraRepository.FindByID: %w", err)
	}
	if description.Valid {
		camera.Description = description.String
	}
	if location.Valid {
		camera.Location = location.String
	}
	camera.CreatedAt = camera.CreatedAt.In(time.UTC)
	camera.UpdatedAt = camera.UpdatedAt.In(time.UTC)
	return camera, nil
}

func (r *pgCameraRepository) FindAll(ctx context.Context) ([]domain.Camera, error) {
	query := `SELECT id, name, stream_url, camera_type, status, lot_id, description, location, created_at, updated_at
	           FROM cameras ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("CameraRepository.FindAll: %w", err)
	}
	defer rows.Close()

	var cameras []domain.Camera
	for rows.Next() {
		var camera domain.Camera
		var description, location sql.NullString
		if err := rows.Scan(
			&camera.ID, &camera.Name, &camera.StreamURL, &camera.CameraType, &camera.Status,
			&camera.LotID, &description, &location, &camera.CreatedAt, &camera.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("CameraRepository.FindAll (scanning row): %w", err)
		}
		if description.Valid {
			camera.Description = description.String
		}
		if location.Valid {
			camera.Location = location.String
		}
		camera.CreatedAt = camera.CreatedAt.In(time.UTC)
		camera.UpdatedAt = camera.UpdatedAt.In(time.UTC)
		cameras = append(cameras, camera)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("CameraRepository.FindAll (rows error): %w", err)
	}
	return cameras, nil
}

func (r *pgCameraRepository) Update(ctx context.Context, camera *domain.Camera) (*domain.Camera, error) {
	query := `UPDATE cameras
	           SET name = $1, stream_url = $2, camera_type = $3, status = $4, lot_id = $5,
	               description = $6, location = $7, updated_at = CURRENT_TIMESTAMP
	           WHERE id = $8
	           RETURNING updated_at`
	var lotIDVal sql.NullInt64
	if camera.LotID.Valid {
		lotIDVal = sql.NullInt64{Int64: camera.LotID.Int64, Valid: true}
	}
	err := r.db.QueryRowContext(ctx, query,
		camera.Name, camera.StreamURL, camera.CameraType, camera.Status, lotIDVal,
		camera.Description, camera.Location, camera.ID,
	).Scan(&camera.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("CameraRepository.Update: %w", err)
	}
	camera.UpdatedAt = camera.UpdatedAt.In(time.UTC)
	return camera, nil
}

func (r *pgCameraRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM cameras WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("CameraRepository.Delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("CameraRepository.Delete (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
