package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sonbm-itealvn/smart-parking-api/internal/domain"
	"github.com/sonbm-itealvn/smart-parking-api/internal/repository"
)

type pgParkingSessionRepository struct {
	db *sql.DB
}

func NewPgParkingSessionRepository(db *sql.DB) repository.ParkingSessionRepository {
	return &pgParkingSessionRepository{db: db}
}

const sessionColumns = `id, vehicle_id, license_plate, slot_id, entry_time, exit_time, fee, status, created_at, updated_at`

func normalizeSessionTimes(session *domain.ParkingSession) {
	session.EntryTime = session.EntryTime.In(time.UTC)
	if session.ExitTime.Valid {
		session.ExitTime.Time = session.ExitTime.Time.In(time.UTC)
	}
	session.CreatedAt = session.CreatedAt.In(time.UTC)
	session.UpdatedAt = session.UpdatedAt.In(time.UTC)
}

func (r *pgParkingSessionRepository) Create(ctx context.Context, session *domain.ParkingSession) (*domain.ParkingSession, error) {
	query := `INSERT INTO parking_sessions (vehicle_id, license_plate, slot_id, entry_time, status, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	           RETURNING id, created_at, updated_at`

	var vehicleIDVal sql.NullInt64
	if session.VehicleID.Valid {
		vehicleIDVal = sql.NullInt64{Int64: session.VehicleID.Int64, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query,
		vehicleIDVal, session.LicensePlate, session.SlotID, session.EntryTime, session.Status,
	).Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("ParkingSessionRepository.Create: %w", err)
	}
	session.CreatedAt = session.CreatedAt.In(time.UTC)
	session.UpdatedAt = session.UpdatedAt.In(time.UTC)
	return session, nil
}

func (r *pgParkingSessionRepository) FindByID(ctx context.Context, id int) (*domain.ParkingSession, error) {
	session := &domain.ParkingSession{}
	query := `SELECT ` + sessionColumns + ` FROM parking_sessions WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID, &session.VehicleID, &session.LicensePlate, &session.SlotID,
		&session.EntryTime, &session.ExitTime, &session.Fee, &session.Status,
		&session.CreatedAt, &session.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ParkingSessionRepository.FindByID: %w", err)
	}
	normalizeSessionTimes(session)
	return session, nil
}

func (r *pgParkingSessionRepository) FindActiveByVehicleID(ctx context.Context, vehicleID int) (*domain.ParkingSession, error) {
	session := &domain.ParkingSession{}
	query := `SELECT ` + sessionColumns + `
	           FROM parking_sessions
	           WHERE vehicle_id = $1 AND status = $2
	           ORDER BY entry_time DESC LIMIT 1`

	err := r.db.QueryRowContext(ctx, query, vehicleID, domain.SessionActive).Scan(
		&session.ID, &session.VehicleID, &session.LicensePlate, &session.SlotID,
		&session.EntryTime, &session.ExitTime, &session.Fee, &session.Status,
		&session.CreatedAt, &session.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNoActiveSession
		}
		return nil, fmt.Errorf("ParkingSessionRepository.FindActiveByVehicleID: %w", err)
	}
	normalizeSessionTimes(session)
	return session, nil
}

func (r *pgParkingSessionRepository) FindActiveByPlate(ctx context.Context, plate string) (*domain.ParkingSession, error) {
	session := &domain.ParkingSession{}
	// vehicle_id IS NULL: chỉ khớp phiên của xe vãng lai, xe đã đăng ký tra theo vehicle_id
	query := `SELECT ` + sessionColumns + `
	           FROM parking_sessions
	           WHERE license_plate = $1 AND vehicle_id IS NULL AND status = $2
	           ORDER BY entry_time DESC LIMIT 1`

	err := r.db.QueryRowContext(ctx, query, plate, domain.SessionActive).Scan(
		&session.ID, &session.VehicleID, &session.LicensePlate, &session.SlotID,
		&session.EntryTime, &session.ExitTime, &session.Fee, &session.Status,
		&session.CreatedAt, &session.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNoActiveSession
		}
		return nil, fmt.Errorf("ParkingSessionRepository.FindActiveByPlate: %w", err)
	}
	normalizeSessionTimes(session)
	return session, nil
}

func (r *pgParkingSessionRepository) Complete(ctx context.Context, id int, exitTime time.Time, fee int64) (*domain.ParkingSession, error) {
	session := &domain.ParkingSession{}
	// Điều kiện status = 'active' chặn double check-out: lần gọi thứ hai không
	// khớp row nào và nhận ErrNoActiveSession
	query := `UPDATE parking_sessions
	           SET exit_time = $1, fee = $2, status = $3, updated_at = CURRENT_TIMESTAMP
	           WHERE id = $4 AND status = $5
	           RETURNING ` + sessionColumns

	err := r.db.QueryRowContext(ctx, query, exitTime, fee, domain.SessionCompleted, id, domain.SessionActive).Scan(
		&session.ID, &session.VehicleID, &session.LicensePlate, &session.SlotID,
		&session.EntryTime, &session.ExitTime, &session.Fee, &session.Status,
		&session.CreatedAt, &session.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNoActiveSession
		}
		return nil, fmt.Errorf("ParkingSessionRepository.Complete: %w", err)
	}
	normalizeSessionTimes(session)
	return session, nil
}

func (r *pgParkingSessionRepository) Cancel(ctx context.Context, id int) (*domain.ParkingSession, error) {
	session := &domain.ParkingSession{}
	query := `UPDATE parking_sessions
	           SET status = $1, updated_at = CURRENT_TIMESTAMP
	           WHERE id = $2 AND status = $3
	           RETURNING ` + sessionColumns

	err := r.db.QueryRowContext(ctx, query, domain.SessionCancelled, id, domain.SessionActive).Scan(
		&session.ID, &session.VehicleID, &session.LicensePlate, &session.SlotID,
		&session.EntryTime, &session.ExitTime, &session.Fee, &session.Status,
		&session.CreatedAt, &session.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNoActiveSession
		}
		return nil, fmt.Errorf("ParkingSessionRepository.Cancel: %w", err)
	}
	normalizeSessionTimes(session)
	return session, nil
}

func (r *pgParkingSessionRepository) ActiveSlotIDsByLot(ctx context.Context, lotID int) (map[int]bool, error) {
	query := `SELECT ps.slot_id
	           FROM parking_sessions ps
	           JOIN parking_slots sl ON sl.id = ps.slot_id
	           WHERE sl.lot_id = $1 AND ps.status = $2`
	rows, err := r.db.QueryContext(ctx, query, lotID, domain.SessionActive)
	if err != nil {
		return nil, fmt.Errorf("ParkingSessionRepository.ActiveSlotIDsByLot: %w", err)
	}
	defer rows.Close()

	slotIDs := make(map[int]bool)
	for rows.Next() {
		var slotID int
		if err := rows.Scan(&slotID); err != nil {
			return nil, fmt.Errorf("ParkingSessionRepository.ActiveSlotIDsByLot (scanning row): %w", err)
		}
		slotIDs[slotID] = true
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ParkingSessionRepository.ActiveSlotIDsByLot (rows error): %w", err)
	}
	return slotIDs, nil
}

func (r *pgParkingSessionRepository) Find(ctx context.Context, filter domain.ParkingSessionFilterDTO) ([]domain.ParkingSession, error) {
	baseQuery := `SELECT ps.id, ps.vehicle_id, ps.license_plate, ps.slot_id, ps.entry_time, ps.exit_time,
	                     ps.fee, ps.status, ps.created_at, ps.updated_at
	               FROM parking_sessions ps
	               JOIN parking_slots sl ON sl.id = ps.slot_id`

	var conditions []string
	var args []interface{}
	argID := 1

	if filter.LotID != nil {
		conditions = append(conditions, fmt.Sprintf("sl.lot_id = $%d", argID))
		args = append(args, *filter.LotID)
		argID++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("ps.status = $%d", argID))
		args = append(args, *filter.Status)
		argID++
	}
	if filter.LicensePlate != nil {
		conditions = append(conditions, fmt.Sprintf("ps.license_plate = $%d", argID))
		args = append(args, *filter.LicensePlate)
		argID++
	}

	query := baseQuery
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY ps.entry_time DESC" // Sắp xếp theo thời gian vào gần nhất

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ParkingSessionRepository.Find: %w", err)
	}
	defer rows.Close()

	var sessions []domain.ParkingSession
	for rows.Next() {
		var session domain.ParkingSession
		if err := rows.Scan(
			&session.ID, &session.VehicleID, &session.LicensePlate, &session.SlotID,
			&session.EntryTime, &session.ExitTime, &session.Fee, &session.Status,
			&session.CreatedAt, &session.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ParkingSessionRepository.Find (scanning row): %w", err)
		}
		normalizeSessionTimes(&session)
		sessions = append(sessions, session)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ParkingSessionRepository.Find (rows error): %w", err)
	}
	return sessions, nil
}
