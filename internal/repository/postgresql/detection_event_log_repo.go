package postgresql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sonbm-itealvn/smart-parking-api/internal/domain"
	"github.com/sonbm-itealvn/smart-parking-api/internal/repository"
)

type pgDetectionEventLogRepository struct {
	db *sql.DB
}

func NewPgDetectionEventLogRepository(db *sql.DB) repository.DetectionEventLogRepository {
	return &pgDetectionEventLogRepository{db: db}
}

func (r *pgDetectionEventLogRepository) Create(ctx context.Context, event *domain.DetectionEventLog) error {
	query := `INSERT INTO detection_events_log
	           (received_at, license_plate, flag, payload, processed_status, processing_notes)
	           VALUES ($1, $2, $3, $4, $5, $6)
	           RETURNING id`
	var notesVal sql.NullString
	if event.ProcessingNotes != "" {
		notesVal = sql.NullString{String: event.ProcessingNotes, Valid: true}
	}
	err := r.db.QueryRowContext(ctx, query,
		event.ReceivedAt, event.LicensePlate, event.Flag, event.Payload,
		event.ProcessedStatus, notesVal,
	).Scan(&event.ID)
	if err != nil {
		return fmt.Errorf("DetectionEventLogRepository.Create: %w", err)
	}
	return nil
}
