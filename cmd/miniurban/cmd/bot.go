package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"miniurban-backend/internal/common/config"
	"miniurban-backend/internal/workers"

	"github.com/spf13/cobra"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot that confirms admin logins",
	Long: `Long-polls Telegram for updates and confirms "/start <nonce>" deep links
against the shared nonce store. Do not run it next to a webhook.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Admin.NonceStore == config.NonceStoreMemory {
			return errors.New("the bot needs a shared nonce store; use NONCE_STORE=postgres or redis, or serve --with-bot")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		me, err := a.bot.GetMe(ctx)
		if err != nil {
			return err
		}
		log.Info().Str("bot", me.Username).Msg("Bot authorized")

		workers.NewTelegramPoller(a.bot, a.tgAuth, cfg.Telegram.PollTimeout, log).Start(ctx)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := a.tgAuth.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Pending bot notifications dropped")
		}
		return nil
	},
}
