package cmd

import (
	"context"
	"errors"
	"fmt"

	"miniurban-backend/internal/common/config"
	"miniurban-backend/internal/common/logger"
	"miniurban-backend/internal/common/metrics"
	"miniurban-backend/internal/domain/nonce"
	"miniurban-backend/internal/features/adminauth/guard"
	"miniurban-backend/internal/features/adminauth/repository/memory"
	adminpg "miniurban-backend/internal/features/adminauth/repository/postgres"
	adminredis "miniurban-backend/internal/features/adminauth/repository/redis"
	adminservice "miniurban-backend/internal/features/adminauth/service"
	"miniurban-backend/internal/features/adminauth/session"
	userpg "miniurban-backend/internal/features/user/repository/postgres"
	userservice "miniurban-backend/internal/features/user/service"
	apphttp "miniurban-backend/internal/http"
	"miniurban-backend/internal/platform/identity"
	"miniurban-backend/internal/platform/postgres"
	"miniurban-backend/internal/platform/redis"
	"miniurban-backend/internal/platform/telegram"
)

// app holds the clients and services shared by the serve and bot commands.
type app struct {
	pg       *postgres.Client
	rdb      *redis.Client
	bot      *telegram.Client
	metrics  *metrics.Metrics
	sessions *session.Manager

	memNonces *memory.NonceRepository

	users     userservice.UserService
	tgAuth    *adminservice.TelegramAuthService
	emailAuth *adminservice.EmailAuthService
	guard     *guard.Guard
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{metrics: metrics.New()}

	pg, err := postgres.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.pg = pg

	rdb, err := redis.Open(ctx, cfg)
	switch {
	case errors.Is(err, redis.ErrNotConfigured):
	case err != nil:
		a.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	default:
		a.rdb = rdb
	}

	sessions, err := session.NewManager(session.Options{
		Secret:     cfg.Admin.JWTSecret,
		CookieName: cfg.Admin.CookieName,
		TTL:        cfg.Admin.SessionTTL,
		Hardened:   !cfg.IsDev(),
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.sessions = sessions

	a.bot = telegram.NewClient(cfg.Telegram.APIURL, cfg.Telegram.BotToken, cfg.Identity.Timeout, logger.Named("telegram"))
	botUsername := cfg.Telegram.BotUsername
	if botUsername == "" {
		if me, err := a.bot.GetMe(ctx); err != nil {
			log.Warn().Err(err).Msg("TELEGRAM_BOT_USERNAME is empty and getMe failed; Telegram login is disabled")
		} else {
			botUsername = me.Username
		}
	}

	staffRepo := adminpg.NewStaffRepository(pg.DB(), cfg.Postgres.AdminSchemas, logger.Named("staff_repository"))

	a.users = userservice.NewUserService(userpg.NewPostgresRepository(pg.DB()), staffRepo, logger.Named("user_service"))
	a.tgAuth = adminservice.NewTelegramAuthService(
		a.nonceStore(cfg),
		staffRepo,
		sessions,
		a.bot,
		adminservice.TelegramOptions{
			BotUsername: botUsername,
			LinkHost:    cfg.Telegram.LinkHost,
			NonceTTL:    cfg.Admin.NonceTTL,
			RedeemGrace: cfg.Admin.NonceRedeemGrace,
		},
		log,
		a.metrics,
	)
	a.emailAuth = adminservice.NewEmailAuthService(
		identity.NewClient(cfg.Identity.URL, cfg.Identity.AnonKey, cfg.Identity.Timeout, logger.Named("identity")),
		staffRepo,
		sessions,
		log,
		a.metrics,
	)
	a.guard = guard.New(sessions, cfg.IsDev(), log, a.metrics)

	if cfg.IsDev() {
		log.Warn().Msg("APP_ENV=dev: admin guard falls back to a dev admin and cookies are not Secure")
	}
	return a, nil
}

func (a *app) nonceStore(cfg *config.Config) nonce.Repository {
	switch cfg.Admin.NonceStore {
	case config.NonceStoreRedis:
		return adminredis.NewNonceRepository(a.rdb.Client, cfg.Admin.NonceRedeemGrace)
	case config.NonceStoreMemory:
		a.memNonces = memory.NewNonceRepository()
		return a.memNonces
	default:
		return adminpg.NewNonceRepository(a.pg.DB())
	}
}

func (a *app) readinessChecks() []apphttp.ReadinessCheck {
	checks := []apphttp.ReadinessCheck{{Name: "postgres", Ping: a.pg.HealthCheck}}
	if a.rdb != nil {
		checks = append(checks, apphttp.ReadinessCheck{Name: "redis", Ping: a.rdb.HealthCheck})
	}
	return checks
}

// Close releases the clients. It is safe on a partially built app.
func (a *app) Close() {
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close redis client")
		}
	}
	if a.pg != nil {
		stats := a.pg.Stats()
		log.Debug().Int("open_connections", stats.OpenConnections).Int64("wait_count", stats.WaitCount).Msg("Closing database pool")
		if err := a.pg.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}
}
