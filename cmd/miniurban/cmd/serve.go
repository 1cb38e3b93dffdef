package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"miniurban-backend/internal/common/logger"
	adminhttp "miniurban-backend/internal/features/adminauth/delivery/http"
	userhttp "miniurban-backend/internal/features/user/delivery/http"
	apphttp "miniurban-backend/internal/http"
	"miniurban-backend/internal/workers"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const (
	shutdownTimeout = 30 * time.Second
	sweepInterval   = time.Minute
)

var withBot bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Starts the Mini App and admin authentication API. With --with-bot the
Telegram update poller runs in the same process, which is required when
NONCE_STORE=memory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		if !cfg.Debug {
			gin.SetMode(gin.ReleaseMode)
		}

		router := apphttp.NewRouter(apphttp.Deps{
			Users:       userhttp.NewUserHandler(a.users),
			AdminAuth:   adminhttp.NewAdminAuthHandler(a.tgAuth, a.emailAuth, a.sessions, cfg.Telegram.CallbackSecret),
			Guard:       a.guard,
			BotToken:    cfg.Telegram.BotToken,
			InitDataTTL: cfg.Telegram.InitDataTTL,
			CORSOrigins: cfg.Server.CORSOrigins,
			Metrics:     a.metrics,
			Checks:      a.readinessChecks(),
			Logger:      logger.Named("http"),
			Swagger:     cfg.IsDev() || cfg.Debug,
		})

		if a.memNonces != nil {
			janitor := workers.NewNonceJanitor(a.memNonces, sweepInterval, cfg.Admin.NonceRedeemGrace, log)
			go janitor.Start(ctx)
		}
		if withBot {
			poller := workers.NewTelegramPoller(a.bot, a.tgAuth, cfg.Telegram.PollTimeout, log)
			go poller.Start(ctx)
		} else if a.memNonces != nil {
			log.Warn().Msg("NONCE_STORE=memory without --with-bot: a separate bot process cannot confirm logins")
		}

		server := &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info().Str("addr", cfg.Server.Addr).Str("env", cfg.Env).Str("nonce_store", cfg.Admin.NonceStore).Msg("Starting HTTP server")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return err
			}
		case <-ctx.Done():
		}

		log.Info().Msg("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
		}
		if err := a.tgAuth.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Pending bot notifications dropped")
		}

		log.Info().Msg("Server exited")
		return nil
	},
}

func init() {
	serveCmd.Flags().BoolVar(&withBot, "with-bot", false, "Run the Telegram update poller in this process")
}
