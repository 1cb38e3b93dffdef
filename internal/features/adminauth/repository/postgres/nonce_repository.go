package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"miniurban-backend/internal/domain/nonce"
)

type nonceRepository struct {
	db *sql.DB
}

func NewNonceRepository(db *sql.DB) nonce.Repository {
	return &nonceRepository{db: db}
}

func (r *nonceRepository) Create(ctx context.Context, n *nonce.LoginNonce) error {
	query := `
		INSERT INTO telegram_nonces (nonce, created_at, expires_at, used)
		VALUES ($1, $2, $3, FALSE)
	`
	if _, err := r.db.ExecContext(ctx, query, n.Nonce, n.CreatedAt, n.ExpiresAt); err != nil {
		return fmt.Errorf("failed to create nonce: %w", err)
	}
	return nil
}

func (r *nonceRepository) Get(ctx context.Context, value string) (*nonce.LoginNonce, error) {
	query := `
		SELECT nonce, created_at, expires_at, used, admin_user_id, tg_id, exchange_token
		FROM telegram_nonces
		WHERE nonce = $1
	`

	var (
		n             nonce.LoginNonce
		adminUserID   sql.NullString
		tgID          sql.NullInt64
		exchangeToken sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&n.Nonce, &n.CreatedAt, &n.ExpiresAt, &n.Used, &adminUserID, &tgID, &exchangeToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nonce.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}

	if adminUserID.Valid {
		n.AdminUserID = &adminUserID.String
	}
	if tgID.Valid {
		n.TgID = &tgID.Int64
	}
	if exchangeToken.Valid {
		n.ExchangeToken = &exchangeToken.String
	}
	return &n, nil
}

// MarkUsed is the single compare-and-set that consumes a nonce.
func (r *nonceRepository) MarkUsed(ctx context.Context, value string, tgID int64, adminUserID string, now time.Time) (bool, error) {
	query := `
		UPDATE telegram_nonces
		SET used = TRUE, tg_id = $2, admin_user_id = $3
		WHERE nonce = $1 AND used = FALSE AND expires_at > $4
	`
	res, err := r.db.ExecContext(ctx, query, value, tgID, adminUserID, now)
	if err != nil {
		return false, fmt.Errorf("failed to mark nonce used: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected == 1, nil
}

func (r *nonceRepository) AttachExchangeToken(ctx context.Context, value string, tgID int64, token string) (bool, error) {
	query := `
		UPDATE telegram_nonces
		SET exchange_token = $3
		WHERE nonce = $1 AND used = TRUE AND tg_id = $2 AND exchange_token IS NULL
	`
	res, err := r.db.ExecContext(ctx, query, value, tgID, token)
	if err != nil {
		return false, fmt.Errorf("failed to attach exchange token: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected == 1, nil
}
