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

type pgRefreshTokenRepository struct {
	db *sql.DB
}

func NewPgRefreshTokenRepository(db *sql.DB) repository.RefreshTokenRepository {
	return &pgRefreshTokenRepository{db: db}
}

func (r *pgRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) (*domain.RefreshToken, error) {
	query := `INSERT INTO refresh_tokens (user_id, token, expires_at, created_at)
	           VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
	           RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, token.UserID, token.Token, token.ExpiresAt).
		Scan(&token.ID, &token.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("RefreshTokenRepository.Create: %w", err)
	}
	token.CreatedAt = token.CreatedAt.In(time.UTC)
	return token, nil
}

func (r *pgRefreshTokenRepository) FindByToken(ctx context.Context, tokenStr string) (*domain.RefreshToken, error) {
	token := &domain.RefreshToken{}
	query := `SELECT id, user_id, token, expires_at, created_at FROM refresh_tokens WHERE token = $1`
	err := r.db.QueryRowContext(ctx, query, tokenStr).Scan(
		&token.ID, &token.UserID, &token.Token, &token.ExpiresAt, &token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("RefreshTokenRepository.FindByToken: %w", err)
	}
	token.ExpiresAt = token.ExpiresAt.In(time.UTC)
	token.CreatedAt = token.CreatedAt.In(time.UTC)
	return token, nil
}

func (r *pgRefreshTokenRepository) Delete(ctx context.Context, tokenStr string) error {
	query := `DELETE FROM refresh_tokens WHERE token = $1`
	result, err := r.db.ExecContext(ctx, query, tokenStr)
	if err != nil {
		return fmt.Errorf("RefreshTokenRepository.Delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("RefreshTokenRepository.Delete (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *pgRefreshTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM refresh_tokens WHERE expires_at < CURRENT_TIMESTAMP`
	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("RefreshTokenRepository.DeleteExpired: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("RefreshTokenRepository.DeleteExpired (checking rows affected): %w", err)
	}
	return rowsAffected, nil
}
