package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sonbm-itealvn/smart-parking-api/internal/domain"
	"github.com/sonbm-itealvn/smart-parking-api/internal/repository"
)

type pgNotificationRepository struct {
	db *sql.DB
}

func NewPgNotificationRepository(db *sql.DB) repository.NotificationRepository {
	return &pgNotificationRepository{db: db}
}

func (r *pgNotificationRepository) Create(ctx context.Context, notification *domain.Notification) (*domain.Notification, error) {
	query := `INSERT INTO notifications (user_id, message, is_read, created_at)
	           VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
	           RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, notification.UserID, notification.Message, notification.IsRead).
		Scan(&notification.ID, &notification.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("NotificationRepository.Create: %w", err)
	}
	notification.CreatedAt = notification.CreatedAt.In(time.UTC)
	return notification, nil
}

func (r *pgNotificationRepository) FindByUserID(ctx context.Context, userID int) ([]domain.Notification, error) {
	query := `SELECT id, user_id, message, is_read, created_at
	           FROM notifications WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("NotificationRepository.FindByUserID: %w", err)
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		var notification domain.Notification
		if err := rows.Scan(
			&notification.ID, &notification.UserID, &notification.Message,
			&notification.IsRead, &notification.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("NotificationRepository.FindByUserID (scanning row): %w", err)
		}
		notification.CreatedAt = notification.CreatedAt.In(time.UTC)
		notifications = append(notifications, notification)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("NotificationRepository.FindByUserID (rows error): %w", err)
	}
	return notifications, nil
}

func (r *pgNotificationRepository) MarkRead(ctx context.Context, id int, userID int) error {
	// userID trong WHERE để user không đánh dấu được thông báo của người khác
	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("NotificationRepository.MarkRead: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("NotificationRepository.MarkRead (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
