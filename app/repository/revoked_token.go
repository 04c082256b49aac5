package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/refi-auto/ms-go-accounts/app/entity"
)

type RevokedTokenRepository struct {
	db *sql.DB
}

func NewRevokedTokenRepository(db *sql.DB) *RevokedTokenRepository {
	return &RevokedTokenRepository{db: db}
}

func (r *RevokedTokenRepository) Add(ctx context.Context, token *entity.RevokedToken) error {
	query := `
		INSERT INTO revoked_tokens (jti, expires_at, created_at)
		VALUES (?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		token.JTI,
		token.ExpiresAt,
		token.CreatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	token.ID = uint64(id)
	return nil
}

func (r *RevokedTokenRepository) Exists(ctx context.Context, jti string) (bool, error) {
	query := `SELECT 1 FROM revoked_tokens WHERE jti = ? LIMIT 1`
	var one int
	err := r.db.QueryRowContext(ctx, query, jti).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// DeleteExpired drops denylist rows for tokens past their natural expiry.
func (r *RevokedTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM revoked_tokens WHERE expires_at < ?`
	result, err := r.db.ExecContext(ctx, query, time.Now())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
