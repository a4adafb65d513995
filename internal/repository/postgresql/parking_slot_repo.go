package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sonbm-itealvn/smart-parking-api/internal/domain"
	"github.com/sonbm-itealvn/smart-parking-api/internal/repository"

	"github.com/lib/pq"
)

type pgParkingSlotRepository struct {
	db *sql.DB
}

func NewPgParkingSlotRepository(db *sql.DB) repository.ParkingSlotRepository {
	return &pgParkingSlotRepository{db: db}
}

func (r *pgParkingSlotRepository) Create(ctx context.Context, slot *domain.ParkingSlot) (*domain.ParkingSlot, error) {
	query := `INSERT INTO parking_slots (lot_id, slot_code, status, coordinates, last_status_update_source, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	           RETURNING id, created_at, updated_at`
	var sourceVal sql.NullString
	if slot.LastStatusUpdateSource != "" {
		sourceVal = sql.NullString{String: slot.LastStatusUpdateSource, Valid: true}
	}
	err := r.db.QueryRowContext(ctx, query,
		slot.LotID, slot.SlotCode, slot.Status, slot.Coordinates, sourceVal,
	).Scan(&slot.ID, &slot.CreatedAt, &slot.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code.Name() == "unique_violation" && pqErr.Constraint == "parking_slots_lot_id_slot_code_key" {
				return nil, fmt.Errorf("%w: chỗ đỗ '%s' đã tồn tại trong bãi %d", repository.ErrDuplicateEntry, slot.SlotCode, slot.LotID)
			}
		}
		return nil, fmt.Errorf("ParkingSlotRepository.Create: %w", err)
	}
	slot.CreatedAt = slot.CreatedAt.In(time.UTC)
	slot.UpdatedAt = slot.UpdatedAt.In(time.UTC)
	return slot, nil
}

func (r *pgParkingSlotRepository) scanRow(row *sql.Row) (*domain.ParkingSlot, error) {
	slot := &domain.ParkingSlot{}
	var sourceVal sql.NullString
	err := row.Scan(
		&slot.ID, &slot.LotID, &slot.SlotCode, &slot.Status, &slot.Coordinates,
		&sourceVal, &slot.CreatedAt, &slot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if sourceVal.Valid {
		slot.LastStatusUpdateSource = sourceVal.String
	}
	slot.CreatedAt = slot.CreatedAt.In(time.UTC)
	slot.UpdatedAt = slot.UpdatedAt.In(time.UTC)
	return slot, nil
}

func (r *pgParkingSlotRepository) FindByID(ctx context.Context, id int) (*domain.ParkingSlot, error) {
	query := `SELECT id, lot_id, slot_code, status, coordinates, last_status_update_source, created_at, updated_at
	           FROM parking_slots WHERE id = $1`
	slot, err := r.scanRow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ParkingSlotRepository.FindByID: %w", err)
	}
	return slot, nil
}

func (r *pgParkingSlotRepository) FindByLotID(ctx context.Context, lotID int) ([]domain.ParkingSlot, error) {
	query := `SELECT id, lot_id, slot_code, status, coordinates, last_status_update_source, created_at, updated_at
	           FROM parking_slots WHERE lot_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, lotID)
	if err != nil {
		return nil, fmt.Errorf("ParkingSlotRepository.FindByLotID: %w", err)
	}
	defer rows.Close()

	var slots []domain.ParkingSlot
	for rows.Next() {
		var slot domain.ParkingSlot
		var sourceVal sql.NullString
		if err := rows.Scan(
			&slot.ID, &slot.LotID, &slot.SlotCode, &slot.Status, &slot.Coordinates,
			&sourceVal, &slot.CreatedAt, &slot.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ParkingSlotRepository.FindByLotID (scanning row): %w", err)
		}
		if sourceVal.Valid {
			slot.LastStatusUpdateSource = sourceVal.String
		}
		slot.CreatedAt = slot.CreatedAt.In(time.UTC)
		slot.UpdatedAt = slot.UpdatedAt.In(time.UTC)
		slots = append(slots, slot)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ParkingSlotRepository.FindByLotID (rows error): %w", err)
	}
	return slots, nil
}

func (r *pgParkingSlotRepository) FindFirstAvailableByLotID(ctx context.Context, lotID int) (*domain.ParkingSlot, error) {
	// Lấy slot trống có id nhỏ nhất để phân bổ nhất quán giữa các lần gọi
	query := `SELECT id, lot_id, slot_code, status, coordinates, last_status_update_source, created_at, updated_at
	           FROM parking_slots
	           WHERE lot_id = $1 AND status = $2
	           ORDER BY id ASC LIMIT 1`
	slot, err := r.scanRow(r.db.QueryRowContext(ctx, query, lotID, domain.SlotAvailable))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ParkingSlotRepository.FindFirstAvailableByLotID: %w", err)
	}
	return slot, nil
}

func (r *pgParkingSlotRepository) Update(ctx context.Context, slot *domain.ParkingSlot) (*domain.ParkingSlot, error) {
	query := `UPDATE parking_slots
	           SET lot_id = $1, slot_code = $2, status = $3, coordinates = $4,
	               last_status_update_source = $5, updated_at = CURRENT_TIMESTAMP
	           WHERE id = $6
	           RETURNING updated_at`
	var sourceVal sql.NullString
	if slot.LastStatusUpdateSource != "" {
		sourceVal = sql.NullString{String: slot.LastStatusUpdateSource, Valid: true}
	}
	err := r.db.QueryRowContext(ctx, query,
		slot.LotID, slot.SlotCode, slot.Status, slot.Coordinates, sourceVal, slot.ID,
	).Scan(&slot.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code.Name() == "unique_violation" && pqErr.Constraint == "parking_slots_lot_id_slot_code_key" {
				return nil, fmt.Errorf("%w: chỗ đỗ '%s' đã tồn tại trong bãi %d", repository.ErrDuplicateEntry, slot.SlotCode, slot.LotID)
			}
		}
		return nil, fmt.Errorf("ParkingSlotRepository.Update: %w", err)
	}
	slot.UpdatedAt = slot.UpdatedAt.In(time.UTC)
	return slot, nil
}

func (r *pgParkingSlotRepository) UpdateStatus(ctx context.Context, id int, status domain.SlotStatus, source string) error {
	query := `UPDATE parking_slots
	           SET status = $1, last_status_update_source = $2, updated_at = CURRENT_TIMESTAMP
	           WHERE id = $3`
	var sourceVal sql.NullString
	if source != "" {
		sourceVal = sql.NullString{String: source, Valid: true}
	}
	result, err := r.db.ExecContext(ctx, query, status, sourceVal, id)
	if err != nil {
		return fmt.Errorf("ParkingSlotRepository.UpdateStatus: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ParkingSlotRepository.UpdateStatus (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *pgParkingSlotRepository) ClaimAvailable(ctx context.Context, id int, source string) error {
	// Điều kiện status = 'available' trong WHERE đảm bảo chỉ một request
	// thắng khi nhiều request cùng tranh một slot
	query := `UPDATE parking_slots
	           SET status = $1, last_status_update_source = $2, updated_at = CURRENT_TIMESTAMP
	           WHERE id = $3 AND status = $4`
	var sourceVal sql.NullString
	if source != "" {
		sourceVal = sql.NullString{String: source, Valid: true}
	}
	result, err := r.db.ExecContext(ctx, query, domain.SlotOccupied, sourceVal, id, domain.SlotAvailable)
	if err != nil {
		return fmt.Errorf("ParkingSlotRepository.ClaimAvailable: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ParkingSlotRepository.ClaimAvailable (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrSlotNotAvailable
	}
	return nil
}

func (r *pgParkingSlotRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM parking_slots WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("ParkingSlotRepository.Delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ParkingSlotRepository.Delete (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
