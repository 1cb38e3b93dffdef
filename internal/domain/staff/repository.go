package staff

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("staff membership not found")
	// ErrDataSource means every schema candidate failed, so absence of a
	// record cannot be concluded.
	ErrDataSource = errors.New("staff membership source unavailable")
)

// Repository reads staff memberships. Lookups return ErrNotFound when no
// schema holds a matching row and ErrDataSource when all schemas failed.
type Repository interface {
	ActiveByTelegramID(ctx context.Context, tgID int64) ([]Membership, error)
	FindByTelegramID(ctx context.Context, tgID int64) (*Membership, error)
	FindByEmail(ctx context.Context, email string) (*Membership, error)
	FindByID(ctx context.Context, id string) (*Membership, error)
}
