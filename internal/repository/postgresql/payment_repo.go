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

type pgPaymentRepository struct {
	db *sql.DB
}

func NewPgPaymentRepository(db *sql.DB) repository.PaymentRepository {
	return &pgPaymentRepository{db: db}
}

func (r *pgPaymentRepository) Create(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	query := `INSERT INTO payments (parking_session_id, amount, payment_method, payment_time, status, created_at)
	           VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
	           RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		payment.ParkingSessionID, payment.Amount, payment.PaymentMethod, payment.PaymentTime, payment.Status,
	).Scan(&payment.ID, &payment.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("PaymentRepository.Create: %w", err)
	}
	payment.CreatedAt = payment.CreatedAt.In(time.UTC)
	return payment, nil
}

func (r *pgPaymentRepository) FindByID(ctx context.Context, id int) (*domain.Payment, error) {
	payment := &domain.Payment{}
	query := `SELECT id, parking_session_id, amount, payment_method, payment_time, status, created_at
	           FROM payments WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&payment.ID, &payment.ParkingSessionID, &payment.Amount, &payment.PaymentMethod,
		&payment.PaymentTime, &payment.Status, &payment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("PaymentRepository.FindByID: %w", err)
	}
	payment.PaymentTime = payment.PaymentTime.In(time.UTC)
	payment.CreatedAt = payment.CreatedAt.In(time.UTC)
	return payment, nil
}

func (r *pgPaymentRepository) FindBySessionID(ctx context.Context, sessionID int) ([]domain.Payment, error) {
	query := `SELECT id, parking_session_id, amount, payment_method, payment_time, status, created_at
	           FROM payments WHERE parking_session_id = $1 ORDER BY payment_time DESC`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("PaymentRepository.FindBySessionID: %w", err)
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var payment domain.Payment
		if err := rows.Scan(
			&payment.ID, &payment.ParkingSessionID, &payment.Amount, &payment.PaymentMethod,
			&payment.PaymentTime, &payment.Status, &payment.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("PaymentRepository.FindBySessionID (scanning row): %w", err)
		}
		payment.PaymentTime = payment.PaymentTime.In(time.UTC)
		payment.CreatedAt = payment.CreatedAt.In(time.UTC)
		payments = append(payments, payment)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("PaymentRepository.FindBySessionID (rows error): %w", err)
	}
	return payments, nil
}
