package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"miniurban-backend/internal/domain/staff"
	"miniurban-backend/internal/platform/postgres"

	"github.com/rs/zerolog"
)

const staffColumns = `id::text, email, tg_id, role, is_active`

// staffRepository reads admin_users from the first configured schema that
// has a matching row.
type staffRepository struct {
	db      *sql.DB
	schemas []string
	logger  zerolog.Logger
}

func NewStaffRepository(db *sql.DB, schemas []string, logger zerolog.Logger) staff.Repository {
	return &staffRepository{
		db:      db,
		schemas: schemas,
		logger:  logger.With().Str("component", "staff_repository").Logger(),
	}
}

func (r *staffRepository) ActiveByTelegramID(ctx context.Context, tgID int64) ([]staff.Membership, error) {
	rows, _, found, err := postgres.FirstHit(ctx, r.logger, r.schemas,
		func(ctx context.Context, schema string) ([]staff.Membership, bool, error) {
			list, err := r.queryMany(ctx, schema, `tg_id = $1 AND is_active`, tgID)
			return list, len(list) > 0, err
		})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", staff.ErrDataSource, err)
	}
	if !found {
		return nil, staff.ErrNotFound
	}
	return rows, nil
}

func (r *staffRepository) FindByTelegramID(ctx context.Context, tgID int64) (*staff.Membership, error) {
	return r.findOne(ctx, `tg_id = $1`, tgID)
}

func (r *staffRepository) FindByEmail(ctx context.Context, email string) (*staff.Membership, error) {
	return r.findOne(ctx, `LOWER(email) = LOWER($1)`, email)
}

func (r *staffRepository) FindByID(ctx context.Context, id string) (*staff.Membership, error) {
	return r.findOne(ctx, `id::text = $1`, id)
}

func (r *staffRepository) findOne(ctx context.Context, where string, arg interface{}) (*staff.Membership, error) {
	m, _, found, err := postgres.FirstHit(ctx, r.logger, r.schemas,
		func(ctx context.Context, schema string) (*staff.Membership, bool, error) {
			list, err := r.queryMany(ctx, schema, where, arg)
			if err != nil || len(list) == 0 {
				return nil, false, err
			}
			return &list[0], true, nil
		})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", staff.ErrDataSource, err)
	}
	if !found {
		return nil, staff.ErrNotFound
	}
	return m, nil
}

// queryMany returns matching rows of schema.admin_users, active rows first.
func (r *staffRepository) queryMany(ctx context.Context, schema, where string, arg interface{}) ([]staff.Membership, error) {
	table, err := postgres.QualifiedTable(schema, "admin_users")
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + staffColumns + ` FROM ` + table + ` WHERE ` + where + ` ORDER BY is_active DESC, id`
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []staff.Membership
	for rows.Next() {
		var (
			m     staff.Membership
			email sql.NullString
			tgID  sql.NullInt64
		)
		if err := rows.Scan(&m.ID, &email, &tgID, &m.Role, &m.IsActive); err != nil {
			return nil, err
		}
		if email.Valid {
			m.Email = &email.String
		}
		if tgID.Valid {
			m.TgID = &tgID.Int64
		}
		m.Schema = schema
		out = append(out, m)
	}
	return out, rows.Err()
}
