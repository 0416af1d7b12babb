package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type tokenRepository struct {
	db *pgxpool.Pool
}

// NewTokenRepository создает Postgres-хранилище черного списка токенов.
// Истекшие записи не влияют на проверку (срок сверяется при чтении),
// а физически удаляются периодической очисткой CleanupExpiredTokens.
func NewTokenRepository(db *pgxpool.Pool) TokenRepository {
	return &tokenRepository{db: db}
}

// AddToBlacklist добавляет токен в черный список.
// Повторное добавление того же токена - no-op.
func (r *tokenRepository) AddToBlacklist(ctx context.Context, token string, expiresAt time.Time) error {
	if !expiresAt.After(time.Now()) {
		// Токен уже истек, хранить его незачем
		return nil
	}

	query := `
		INSERT INTO blacklisted_tokens (token, expires_at, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token) DO NOTHING
	`

	if _, err := r.db.Exec(ctx, query, token, expiresAt, time.Now()); err != nil {
		return fmt.Errorf("failed to add token to blacklist: %w", err)
	}

	return nil
}

// IsBlacklisted проверяет, отозван ли токен.
// Записи с истекшим сроком считаются отсутствующими.
func (r *tokenRepository) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM blacklisted_tokens WHERE token = $1 AND expires_at > $2)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, token, time.Now()).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check if token is blacklisted: %w", err)
	}

	return exists, nil
}

// CleanupExpiredTokens удаляет истекшие записи черного списка,
// чтобы таблица не росла безгранично. Запускается по расписанию.
func (r *tokenRepository) CleanupExpiredTokens(ctx context.Context) error {
	query := `DELETE FROM blacklisted_tokens WHERE expires_at < $1`

	if _, err := r.db.Exec(ctx, query, time.Now()); err != nil {
		return fmt.Errorf("failed to cleanup expired blacklisted tokens: %w", err)
	}

	return nil
}
