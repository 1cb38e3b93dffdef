package service

import (
	"context"
	"errors"
	"fmt"

	"miniurban-backend/internal/domain/role"
	"miniurban-backend/internal/domain/staff"
)

// pickMembership returns the active row with the highest staff role.
func pickMembership(rows []staff.Membership) (*staff.Membership, role.Role, bool) {
	var (
		best     *staff.Membership
		bestRole role.Role
	)
	for i := range rows {
		if !rows[i].IsActive {
			continue
		}
		r, ok := role.Parse(rows[i].Role)
		if !ok || !r.IsStaff() {
			continue
		}
		if best == nil || r.Outranks(bestRole) {
			best, bestRole = &rows[i], r
		}
	}
	return best, bestRole, best != nil
}

// activeStaff checks a single membership row.
func activeStaff(m *staff.Membership) (role.Role, error) {
	if m == nil || !m.IsActive {
		return "", ErrForbidden
	}
	r, ok := role.Parse(m.Role)
	if !ok || !r.IsStaff() {
		return "", ErrForbidden
	}
	return r, nil
}

// lookupErr maps repository errors onto service errors.
func lookupErr(err error) error {
	if errors.Is(err, staff.ErrNotFound) {
		return ErrForbidden
	}
	return fmt.Errorf("%w: %w", ErrDataSource, err)
}

func findActiveByTelegramID(ctx context.Context, repo staff.Repository, tgID int64) (*staff.Membership, role.Role, error) {
	rows, err := repo.ActiveByTelegramID(ctx, tgID)
	if err != nil {
		return nil, "", lookupErr(err)
	}
	m, r, ok := pickMembership(rows)
	if !ok {
		return nil, "", ErrForbidden
	}
	return m, r, nil
}
