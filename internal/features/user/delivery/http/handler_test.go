package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"miniurban-backend/internal/common/middleware"
	"miniurban-backend/internal/domain/role"
	"miniurban-backend/internal/domain/user"
	"miniurban-backend/internal/features/user/models"
	"miniurban-backend/internal/features/user/service"
	"miniurban-backend/internal/utils/telegram"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const botToken = "123456:test-token"

type fakeService struct {
	profiles map[int64]*user.Profile
	roles    []role.Role
	lastHint user.Hints
	lastUpd  service.ProfileUpdate
	err      error
}

func (f *fakeService) Resolve(_ context.Context, tgID int64, hints user.Hints) (*user.Profile, []role.Role, error) {
	f.lastHint = hints
	if f.err != nil {
		return nil, nil, f.err
	}
	name := hints.DisplayName()
	return &user.Profile{TgID: tgID, Name: &name}, f.roles, nil
}

func (f *fakeService) Roles(context.Context, int64) ([]role.Role, error) {
	return f.roles, f.err
}

func (f *fakeService) GetProfile(_ context.Context, tgID int64) (*user.Profile, error) {
	if p, ok := f.profiles[tgID]; ok {
		return p, nil
	}
	return &user.Profile{TgID: tgID}, f.err
}

func (f *fakeService) SaveProfile(_ context.Context, tgID int64, upd service.ProfileUpdate) (*user.Profile, error) {
	f.lastUpd = upd
	lang := user.NormalizeLanguage(*upd.Language)
	return &user.Profile{TgID: tgID, Language: &lang}, nil
}

func (f *fakeService) GetUser(_ context.Context, tgID int64) (*user.Profile, []role.Role, error) {
	p, ok := f.profiles[tgID]
	if !ok {
		return nil, nil, service.ErrUserNotFound
	}
	return p, f.roles, nil
}

func newRouter(svc service.UserService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID())

	h := NewUserHandler(svc)
	api := r.Group("/api", middleware.InitData(botToken, time.Hour, nil))
	h.RegisterRoutes(api)
	h.RegisterAdminRoutes(r.Group("/admin/api"))
	return r
}

func initData(tgID int64) string {
	return telegram.EncodeInitData(map[string]string{
		"auth_date": strconv.FormatInt(time.Now().Unix(), 10),
		"user":      `{"id":` + strconv.FormatInt(tgID, 10) + `,"first_name":"Ivan","last_name":"Petrov","username":"ivanp","language_code":"ru"}`,
	}, botToken)
}

func TestGetMe(t *testing.T) {
	svc := &fakeService{roles: []role.Role{role.Manager}}
	r := newRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/me", nil)
	req.Header.Set(middleware.InitDataHeader, initData(12345))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body models.MeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(12345), body.User.TgID)
	assert.Equal(t, "Ivan Petrov", body.User.Name)
	assert.Equal(t, []string{"manager"}, body.Roles)
	assert.Equal(t, "ivanp", svc.lastHint.Username)
	assert.Equal(t, "ru", svc.lastHint.LanguageCode)
}

func TestGetMe_DataSourceError(t *testing.T) {
	r := newRouter(&fakeService{err: service.ErrDataSource})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/me", nil)
	req.Header.Set(middleware.InitDataHeader, initData(12345))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "DATA_SOURCE_ERROR")
}

func TestCheck_RejectsForgedInitData(t *testing.T) {
	r := newRouter(&fakeService{})

	forged := strings.Replace(initData(12345), "%3A12345", "%3A99999", 1)
	req := httptest.NewRequest(http.MethodGet, "/api/auth/check", nil)
	req.Header.Set(middleware.InitDataHeader, forged)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_SIGNATURE")
}

func TestProfile(t *testing.T) {
	svc := &fakeService{}
	r := newRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set(middleware.InitDataHeader, initData(777))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"profile":{"tg_id":777,"username":"","name":"","email":"","phone":"","language":"","unit":"","avatar_url":""}}`, w.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/api/profile", strings.NewReader(`{"language":"fr","unit":" B-1 "}`))
	req.Header.Set(middleware.InitDataHeader, initData(777))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"language":"EN"`)
	require.NotNil(t, svc.lastUpd.Unit)
	assert.Nil(t, svc.lastUpd.Name)

	req = httptest.NewRequest(http.MethodPost, "/api/profile", strings.NewReader(`{"email":"not-an-email"}`))
	req.Header.Set(middleware.InitDataHeader, initData(777))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"message":"email: must be a valid address"`)

	req = httptest.NewRequest(http.MethodPost, "/api/profile", strings.NewReader(`{`))
	req.Header.Set(middleware.InitDataHeader, initData(777))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetUser(t *testing.T) {
	name := "Ivan"
	svc := &fakeService{
		profiles: map[int64]*user.Profile{12345: {TgID: 12345, Name: &name}},
		roles:    []role.Role{role.Resident},
	}
	r := newRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/api/users/12345", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"roles":["resident"]`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/api/users/1", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/api/users/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
