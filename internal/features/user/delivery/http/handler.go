package http

import (
	"net/http"
	"strconv"

	"miniurban-backend/internal/common/errors"
	"miniurban-backend/internal/common/middleware"
	"miniurban-backend/internal/common/validation"
	"miniurban-backend/internal/domain/user"
	"miniurban-backend/internal/features/user/mapper"
	"miniurban-backend/internal/features/user/models"
	"miniurban-backend/internal/features/user/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service service.UserService
}

func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// RegisterRoutes mounts the Mini App routes. The group must already verify
// init data.
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/me", h.getMe)
		auth.GET("/check", h.check)
	}

	router.GET("/profile", h.getProfile)
	router.POST("/profile", h.saveProfile)
}

// RegisterAdminRoutes mounts the staff-facing routes behind the guard.
func (h *UserHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	router.GET("/users/:tg_id", h.GetUser)
}

// @Summary Resolve current user
// @Description Verifies Telegram init data, upserts the profile and returns it with the effective roles.
// @Tags auth
// @Produce json
// @Security TelegramInitData
// @Success 200 {object} models.MeResponse "Resolved user"
// @Failure 400 {object} models.ErrorResponse "Malformed init data"
// @Failure 401 {object} models.ErrorResponse "Invalid signature or expired init data"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /api/auth/me [post]
func (h *UserHandler) getMe(c *gin.Context) {
	data, ok := middleware.InitDataFrom(c)
	if !ok {
		middleware.Abort(c, errors.NewUnauthorizedError())
		return
	}

	tg := data.User
	profile, roles, err := h.service.Resolve(c.Request.Context(), tg.ID, user.Hints{
		Username:     tg.Username,
		FirstName:    tg.FirstName,
		LastName:     tg.LastName,
		LanguageCode: tg.LanguageCode,
		PhotoURL:     tg.PhotoURL,
	})
	if err != nil {
		middleware.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, mapper.ToMeResponse(profile, roles))
}

// @Summary Check init data
// @Description Verifies Telegram init data without touching storage.
// @Tags auth
// @Produce json
// @Security TelegramInitData
// @Success 200 {object} models.CheckResponse
// @Failure 400 {object} models.ErrorResponse "Malformed init data"
// @Failure 401 {object} models.ErrorResponse "Invalid signature or expired init data"
// @Router /api/auth/check [get]
func (h *UserHandler) check(c *gin.Context) {
	data, ok := middleware.InitDataFrom(c)
	if !ok {
		middleware.Abort(c, errors.NewUnauthorizedError())
		return
	}
	c.JSON(http.StatusOK, models.CheckResponse{OK: true, TgID: data.User.ID})
}

// @Summary Get own profile
// @Description Returns the stored profile, or an empty one for users that never logged in.
// @Tags profile
// @Produce json
// @Security TelegramInitData
// @Success 200 {object} models.ProfileResponse
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /api/profile [get]
func (h *UserHandler) getProfile(c *gin.Context) {
	data, ok := middleware.InitDataFrom(c)
	if !ok {
		middleware.Abort(c, errors.NewUnauthorizedError())
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), data.User.ID)
	if err != nil {
		middleware.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ProfileResponse{Profile: mapper.ToProfile(profile)})
}

// @Summary Update own profile
// @Description Merges the provided fields into the profile. Language is normalized to EN, RU, KM or ZH.
// @Tags profile
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param profile body models.ProfileRequest true "Fields to update"
// @Success 200 {object} models.ProfileResponse
// @Failure 400 {object} models.ErrorResponse "Invalid request body"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /api/profile [post]
func (h *UserHandler) saveProfile(c *gin.Context) {
	data, ok := middleware.InitDataFrom(c)
	if !ok {
		middleware.Abort(c, errors.NewUnauthorizedError())
		return
	}

	var req models.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Abort(c, errors.NewBadRequestError("invalid request body"))
		return
	}
	if err := validateProfile(&req); err != nil {
		middleware.Abort(c, err)
		return
	}

	profile, err := h.service.SaveProfile(c.Request.Context(), data.User.ID, mapper.ToProfileUpdate(&req))
	if err != nil {
		middleware.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ProfileResponse{Profile: mapper.ToProfile(profile)})
}

// @Summary Get user by Telegram ID
// @Description Staff lookup of a resident profile with its effective roles
// @Tags admin
// @Produce json
// @Security AdminSession
// @Param tg_id path int true "Telegram user ID"
// @Success 200 {object} models.UserResponse "User data"
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 403 {object} models.ErrorResponse "Forbidden"
// @Failure 404 {object} models.ErrorResponse "User not found"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /admin/api/users/{tg_id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("tg_id"), 10, 64)
	if err != nil || id <= 0 {
		middleware.Abort(c, errors.NewBadRequestError("invalid user id"))
		return
	}

	profile, roles, err := h.service.GetUser(c.Request.Context(), id)
	if err != nil {
		middleware.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, mapper.ToUserResponse(profile, roles))
}

func validateProfile(req *models.ProfileRequest) error {
	err := validation.First(
		validation.Optional(req.Username, validation.ValidateUsername),
		validation.Optional(req.Name, validation.ValidateName),
		validation.Optional(req.Email, validation.ValidateEmail),
		validation.Optional(req.Phone, validation.ValidatePhone),
		validation.Optional(req.Unit, validation.ValidateUnit),
	)
	if fe, ok := err.(*validation.FieldError); ok {
		return errors.NewBadRequestError(fe.Error()).WithDetail("field", fe.Field)
	}
	return err
}
