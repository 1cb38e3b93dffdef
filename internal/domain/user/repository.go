package user

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("user not found")

// Repository defines persistence operations for resident profiles. Both write
// paths insert the row when it does not exist yet and return the stored row.
type Repository interface {
	// UpsertLogin records a Mini App launch. Username always takes the
	// incoming value; name, language and avatar only when non-nil.
	UpsertLogin(ctx context.Context, p *Profile) (*Profile, error)
	// Merge applies a profile edit: non-nil fields overwrite, nil fields keep
	// the stored value, and a pointer to "" clears the column.
	Merge(ctx context.Context, p *Profile) (*Profile, error)
	GetByID(ctx context.Context, tgID int64) (*Profile, error)
}
