package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"miniurban-backend/internal/domain/role"
	"miniurban-backend/internal/domain/staff"
	"miniurban-backend/internal/domain/user"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	mu   sync.Mutex
	rows map[int64]user.Profile
	err  error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{rows: make(map[int64]user.Profile)}
}

func pick(in, old *string) *string {
	if in != nil {
		return in
	}
	return old
}

func edit(in, old *string) *string {
	if in == nil {
		return old
	}
	if *in == "" {
		return nil
	}
	return in
}

func (f *fakeUsers) UpsertLogin(_ context.Context, p *user.Profile) (*user.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	cur := f.rows[p.TgID]
	cur.TgID = p.TgID
	cur.Username = p.Username
	cur.Name = pick(p.Name, cur.Name)
	cur.Language = pick(p.Language, cur.Language)
	cur.AvatarURL = pick(p.AvatarURL, cur.AvatarURL)
	f.rows[p.TgID] = cur
	return &cur, nil
}

func (f *fakeUsers) Merge(_ context.Context, p *user.Profile) (*user.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur := f.rows[p.TgID]
	cur.TgID = p.TgID
	cur.Username = edit(p.Username, cur.Username)
	cur.Name = edit(p.Name, cur.Name)
	cur.Email = edit(p.Email, cur.Email)
	cur.Phone = edit(p.Phone, cur.Phone)
	cur.Language = pick(p.Language, cur.Language)
	cur.Unit = edit(p.Unit, cur.Unit)
	cur.AvatarURL = pick(p.AvatarURL, cur.AvatarURL)
	f.rows[p.TgID] = cur
	return &cur, nil
}

func (f *fakeUsers) GetByID(_ context.Context, tgID int64) (*user.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[tgID]
	if !ok {
		return nil, user.ErrNotFound
	}
	return &p, nil
}

type fakeStaff struct {
	rows []staff.Membership
	err  error
}

func (f *fakeStaff) ActiveByTelegramID(context.Context, int64) ([]staff.Membership, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.rows) == 0 {
		return nil, staff.ErrNotFound
	}
	return f.rows, nil
}

func (f *fakeStaff) FindByTelegramID(context.Context, int64) (*staff.Membership, error) {
	return nil, staff.ErrNotFound
}

func (f *fakeStaff) FindByEmail(context.Context, string) (*staff.Membership, error) {
	return nil, staff.ErrNotFound
}

func (f *fakeStaff) FindByID(context.Context, string) (*staff.Membership, error) {
	return nil, staff.ErrNotFound
}

var ivan = user.Hints{Username: "ivanp", FirstName: "Ivan", LastName: "Petrov", LanguageCode: "ru"}

func TestResolve_ResidentByDefault(t *testing.T) {
	svc := NewUserService(newFakeUsers(), &fakeStaff{}, zerolog.Nop())

	p, roles, err := svc.Resolve(context.Background(), 12345, ivan)
	require.NoError(t, err)
	assert.Equal(t, []role.Role{role.Resident}, roles)
	assert.Equal(t, "Ivan Petrov", *p.Name)
	assert.Equal(t, "ivanp", *p.Username)
	assert.Equal(t, "ru", *p.Language)
	assert.Nil(t, p.AvatarURL)
}

func TestResolve_StaffRolesNormalized(t *testing.T) {
	staffRepo := &fakeStaff{rows: []staff.Membership{
		{ID: "a", Role: "Owner", IsActive: true},
		{ID: "b", Role: " operator ", IsActive: true},
		{ID: "c", Role: "manager", IsActive: false},
	}}
	svc := NewUserService(newFakeUsers(), staffRepo, zerolog.Nop())

	_, roles, err := svc.Resolve(context.Background(), 12345, ivan)
	require.NoError(t, err)
	assert.Equal(t, []role.Role{role.Admin, role.Operator}, roles)
}

func TestResolve_DataSourceFailure(t *testing.T) {
	staffRepo := &fakeStaff{err: staff.ErrDataSource}
	svc := NewUserService(newFakeUsers(), staffRepo, zerolog.Nop())

	_, _, err := svc.Resolve(context.Background(), 12345, ivan)
	assert.ErrorIs(t, err, ErrDataSource)
}

func TestResolve_UpsertFailure(t *testing.T) {
	users := newFakeUsers()
	users.err = errors.New("connection refused")
	svc := NewUserService(users, &fakeStaff{}, zerolog.Nop())

	_, _, err := svc.Resolve(context.Background(), 12345, ivan)
	assert.ErrorIs(t, err, ErrDataSource)
}

func TestResolve_KeepsEditedFieldsOnRelaunch(t *testing.T) {
	users := newFakeUsers()
	svc := NewUserService(users, &fakeStaff{}, zerolog.Nop())
	ctx := context.Background()

	_, _, err := svc.Resolve(ctx, 12345, ivan)
	require.NoError(t, err)

	unit := " B-12 "
	lang := "zh"
	_, err = svc.SaveProfile(ctx, 12345, ProfileUpdate{Unit: &unit, Language: &lang})
	require.NoError(t, err)

	p, _, err := svc.Resolve(ctx, 12345, user.Hints{FirstName: "Ivan"})
	require.NoError(t, err)
	assert.Equal(t, "B-12", *p.Unit)
	assert.Equal(t, "ZH", *p.Language, "a launch without language keeps the stored one")
	assert.Nil(t, p.Username)
	assert.Equal(t, "Ivan", *p.Name)
}

func TestSaveProfile_EmptyClears(t *testing.T) {
	svc := NewUserService(newFakeUsers(), &fakeStaff{}, zerolog.Nop())
	ctx := context.Background()

	email, unit, phone := "a@b.co", "B-1", "+85512345678"
	_, err := svc.SaveProfile(ctx, 7, ProfileUpdate{Email: &email, Unit: &unit, Phone: &phone})
	require.NoError(t, err)

	blank, spaces := "", "  "
	p, err := svc.SaveProfile(ctx, 7, ProfileUpdate{Email: &blank, Unit: &spaces})
	require.NoError(t, err)
	assert.Nil(t, p.Email)
	assert.Nil(t, p.Unit)
	require.NotNil(t, p.Phone, "omitted fields are kept")
	assert.Equal(t, phone, *p.Phone)
}

func TestGetProfile_EmptyForUnknown(t *testing.T) {
	svc := NewUserService(newFakeUsers(), &fakeStaff{}, zerolog.Nop())

	p, err := svc.GetProfile(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), p.TgID)
	assert.Nil(t, p.Name)
}

func TestSaveProfile_UnknownLanguage(t *testing.T) {
	svc := NewUserService(newFakeUsers(), &fakeStaff{}, zerolog.Nop())

	lang := "fr"
	p, err := svc.SaveProfile(context.Background(), 42, ProfileUpdate{Language: &lang})
	require.NoError(t, err)
	assert.Equal(t, "EN", *p.Language)
}

func TestGetUser(t *testing.T) {
	svc := NewUserService(newFakeUsers(), &fakeStaff{rows: []staff.Membership{{Role: "manager", IsActive: true}}}, zerolog.Nop())

	_, _, err := svc.GetUser(context.Background(), 1)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, _, err = svc.Resolve(context.Background(), 1, ivan)
	require.NoError(t, err)

	p, roles, err := svc.GetUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.TgID)
	assert.Equal(t, []role.Role{role.Manager}, roles)
}
