package http

import (
	"net/http"

	"miniurban-backend/internal/common/errors"
	"miniurban-backend/internal/common/middleware"
	"miniurban-backend/internal/features/adminauth/models"
	"miniurban-backend/internal/features/adminauth/service"
	"miniurban-backend/internal/features/adminauth/session"

	"github.com/gin-gonic/gin"
)

type AdminAuthHandler struct {
	telegram  *service.TelegramAuthService
	email     *service.EmailAuthService
	sessions  *session.Manager
	botSecret string
}

func NewAdminAuthHandler(telegram *service.TelegramAuthService, email *service.EmailAuthService, sessions *session.Manager, botSecret string) *AdminAuthHandler {
	return &AdminAuthHandler{
		telegram:  telegram,
		email:     email,
		sessions:  sessions,
		botSecret: botSecret,
	}
}

// RegisterRoutes mounts the unauthenticated login routes under /admin/auth.
func (h *AdminAuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/email-session", h.emailSession)
	router.POST("/logout", h.logout)
	router.GET("/me", h.me)

	tg := router.Group("/telegram")
	{
		tg.GET("/start", h.telegramStart)
		tg.POST("/callback", middleware.RequireBotSecret(h.botSecret), h.telegramCallback)
		tg.POST("/wait", h.telegramWait)
	}
}

// RegisterProtectedRoutes mounts routes that run behind RequireAdmin.
func (h *AdminAuthHandler) RegisterProtectedRoutes(router *gin.RouterGroup) {
	router.GET("/whoami", h.whoami)
}

// @Summary Email login
// @Description Verifies staff credentials with the identity provider and sets the admin session cookie.
// @Tags admin-auth
// @Accept json
// @Produce json
// @Param credentials body models.EmailLoginRequest true "Credentials"
// @Success 200 {object} models.SessionResponse
// @Failure 400 {object} middleware.ErrorResponse "Invalid request body"
// @Failure 401 {object} middleware.ErrorResponse "Invalid credentials"
// @Failure 403 {object} middleware.ErrorResponse "Not an active staff member"
// @Failure 503 {object} middleware.ErrorResponse "Identity provider unavailable"
// @Router /admin/auth/email-session [post]
func (h *AdminAuthHandler) emailSession(c *gin.Context) {
	var req models.EmailLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Abort(c, errors.NewBadRequestError("email and password are required"))
		return
	}

	res, err := h.email.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		middleware.Abort(c, err)
		return
	}

	h.sessions.SetCookie(c.Writer, res.Token)
	c.JSON(http.StatusOK, models.SessionResponse{OK: true, Session: models.ToSession(res.Session)})
}

// @Summary Start Telegram login
// @Description Creates a one-time nonce and the bot deep link that confirms it.
// @Tags admin-auth
// @Produce json
// @Success 200 {object} service.StartResult
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /admin/auth/telegram/start [get]
func (h *AdminAuthHandler) telegramStart(c *gin.Context) {
	res, err := h.telegram.Start(c.Request.Context())
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Confirm Telegram login
// @Description Called by the bot when a user opens the deep link.
// @Tags admin-auth
// @Accept json
// @Produce json
// @Param X-Bot-Secret header string true "Shared bot secret"
// @Param confirmation body models.CallbackRequest true "Nonce and Telegram user"
// @Success 200 {object} service.ConfirmResult
// @Failure 401 {object} middleware.ErrorResponse "Bad bot secret"
// @Failure 403 {object} middleware.ErrorResponse "Not an active staff member"
// @Failure 404 {object} middleware.ErrorResponse "Unknown nonce"
// @Failure 409 {object} middleware.ErrorResponse "Nonce already used"
// @Failure 410 {object} middleware.ErrorResponse "Nonce expired"
// @Router /admin/auth/telegram/callback [post]
func (h *AdminAuthHandler) telegramCallback(c *gin.Context) {
	var req models.CallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Abort(c, errors.NewBadRequestError("nonce and tg_id are required"))
		return
	}

	res, err := h.telegram.Confirm(c.Request.Context(), req.Nonce, req.TgID)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Poll Telegram login
// @Description Reports whether the nonce was confirmed. Once it is, the session cookie is set.
// @Tags admin-auth
// @Accept json
// @Produce json
// @Param poll body models.WaitRequest true "Nonce"
// @Success 200 {object} service.WaitResult
// @Failure 403 {object} middleware.ErrorResponse "Not an active staff member"
// @Failure 404 {object} middleware.ErrorResponse "Unknown nonce"
// @Failure 410 {object} middleware.ErrorResponse "Nonce expired"
// @Router /admin/auth/telegram/wait [post]
func (h *AdminAuthHandler) telegramWait(c *gin.Context) {
	var req models.WaitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Abort(c, errors.NewBadRequestError("nonce is required"))
		return
	}

	res, err := h.telegram.Wait(c.Request.Context(), req.Nonce)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	if res.Ready {
		h.sessions.SetCookie(c.Writer, res.Token)
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Logout
// @Description Deletes the session cookie.
// @Tags admin-auth
// @Produce json
// @Success 200 {object} models.OKResponse
// @Router /admin/auth/logout [post]
func (h *AdminAuthHandler) logout(c *gin.Context) {
	h.sessions.ClearCookie(c.Writer)
	c.JSON(http.StatusOK, models.OKResponse{OK: true})
}

// @Summary Current session
// @Description Reads the session cookie without any development fallback.
// @Tags admin-auth
// @Produce json
// @Success 200 {object} models.SessionResponse
// @Failure 401 {object} middleware.ErrorResponse "No valid session"
// @Router /admin/auth/me [get]
func (h *AdminAuthHandler) me(c *gin.Context) {
	p, err := h.sessions.FromRequest(c.Request)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SessionResponse{OK: true, Session: models.ToSession(p)})
}

// @Summary Who am I
// @Description Returns the session admitted by the guard.
// @Tags admin
// @Produce json
// @Security AdminSession
// @Success 200 {object} models.SessionResponse
// @Failure 401 {object} middleware.ErrorResponse "Unauthorized"
// @Failure 403 {object} middleware.ErrorResponse "Forbidden"
// @Router /admin/api/whoami [get]
func (h *AdminAuthHandler) whoami(c *gin.Context) {
	p, ok := middleware.AdminFrom(c)
	if !ok {
		middleware.Abort(c, errors.NewUnauthorizedError())
		return
	}
	c.JSON(http.StatusOK, models.SessionResponse{OK: true, Session: models.ToSession(p)})
}
