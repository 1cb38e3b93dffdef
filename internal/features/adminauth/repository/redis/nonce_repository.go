package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"miniurban-backend/internal/domain/nonce"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "tg_nonce:"

// Hash fields.
const (
	fieldCreatedAt     = "created_at"
	fieldExpiresAt     = "expires_at"
	fieldUsed          = "used"
	fieldAdminUserID   = "admin_user_id"
	fieldTgID          = "tg_id"
	fieldExchangeToken = "exchange_token"
)

// markUsedScript consumes an unused, unexpired nonce.
// KEYS[1] nonce key; ARGV tg_id, admin_user_id, now (unix ms).
var markUsedScript = redis.NewScript(`
local k = KEYS[1]
if redis.call('EXISTS', k) == 0 then return 0 end
if redis.call('HGET', k, 'used') == '1' then return 0 end
local exp = tonumber(redis.call('HGET', k, 'expires_at'))
if exp == nil or tonumber(ARGV[3]) >= exp then return 0 end
redis.call('HSET', k, 'used', '1', 'tg_id', ARGV[1], 'admin_user_id', ARGV[2])
return 1
`)

// attachTokenScript sets the exchange token once, for the confirmer only.
// KEYS[1] nonce key; ARGV tg_id, token.
var attachTokenScript = redis.NewScript(`
local k = KEYS[1]
if redis.call('HGET', k, 'used') ~= '1' then return 0 end
if redis.call('HGET', k, 'tg_id') ~= ARGV[1] then return 0 end
if redis.call('HEXISTS', k, 'exchange_token') == 1 then return 0 end
redis.call('HSET', k, 'exchange_token', ARGV[2])
return 1
`)

type nonceRepository struct {
	client    redis.UniversalClient
	retention time.Duration
}

// NewNonceRepository stores nonces as hashes. Keys are kept for retention
// past expires_at so that late polls can still see the record.
func NewNonceRepository(client redis.UniversalClient, retention time.Duration) nonce.Repository {
	return &nonceRepository{client: client, retention: retention}
}

func key(value string) string {
	return keyPrefix + value
}

func (r *nonceRepository) Create(ctx context.Context, n *nonce.LoginNonce) error {
	k := key(n.Nonce)
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, k,
		fieldCreatedAt, n.CreatedAt.UnixMilli(),
		fieldExpiresAt, n.ExpiresAt.UnixMilli(),
		fieldUsed, "0",
	)
	pipe.PExpireAt(ctx, k, n.ExpiresAt.Add(r.retention))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create nonce: %w", err)
	}
	return nil
}

func (r *nonceRepository) Get(ctx context.Context, value string) (*nonce.LoginNonce, error) {
	fields, err := r.client.HGetAll(ctx, key(value)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}
	if len(fields) == 0 {
		return nil, nonce.ErrNotFound
	}

	n := &nonce.LoginNonce{Nonce: value, Used: fields[fieldUsed] == "1"}
	if n.CreatedAt, err = parseMillis(fields[fieldCreatedAt]); err != nil {
		return nil, err
	}
	if n.ExpiresAt, err = parseMillis(fields[fieldExpiresAt]); err != nil {
		return nil, err
	}
	if v, ok := fields[fieldAdminUserID]; ok {
		n.AdminUserID = &v
	}
	if v, ok := fields[fieldTgID]; ok {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad tg_id in nonce %s: %w", value, err)
		}
		n.TgID = &id
	}
	if v, ok := fields[fieldExchangeToken]; ok {
		n.ExchangeToken = &v
	}
	return n, nil
}

func (r *nonceRepository) MarkUsed(ctx context.Context, value string, tgID int64, adminUserID string, now time.Time) (bool, error) {
	res, err := markUsedScript.Run(ctx, r.client, []string{key(value)},
		strconv.FormatInt(tgID, 10), adminUserID, now.UnixMilli()).Int()
	if err != nil {
		return false, fmt.Errorf("failed to mark nonce used: %w", err)
	}
	return res == 1, nil
}

func (r *nonceRepository) AttachExchangeToken(ctx context.Context, value string, tgID int64, token string) (bool, error) {
	res, err := attachTokenScript.Run(ctx, r.client, []string{key(value)},
		strconv.FormatInt(tgID, 10), token).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to attach exchange token: %w", err)
	}
	return res == 1, nil
}

func parseMillis(v string) (time.Time, error) {
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad timestamp %q: %w", v, err)
	}
	return time.UnixMilli(ms).UTC(), nil
}
