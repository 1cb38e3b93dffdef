package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"miniurban-backend/internal/utils/telegram"

	"github.com/spf13/cobra"
)

var (
	initDataTgID     int64
	initDataUsername string
	initDataName     string
)

// initDataCmd prints signed init data so the Mini App API can be exercised
// with curl against a dev deployment.
var initDataCmd = &cobra.Command{
	Use:   "initdata",
	Short: "Print signed Telegram init data for local testing (dev only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.IsDev() {
			return errors.New("initdata is only available with APP_ENV=dev")
		}
		if initDataTgID <= 0 {
			return errors.New("--tg-id is required")
		}

		u, err := json.Marshal(telegram.WebAppUser{
			ID:        initDataTgID,
			Username:  initDataUsername,
			FirstName: initDataName,
		})
		if err != nil {
			return err
		}

		raw := telegram.EncodeInitData(map[string]string{
			"auth_date": strconv.FormatInt(time.Now().Unix(), 10),
			"user":      string(u),
		}, cfg.Telegram.BotToken)
		fmt.Fprintln(cmd.OutOrStdout(), raw)
		return nil
	},
}

func init() {
	initDataCmd.Flags().Int64Var(&initDataTgID, "tg-id", 0, "Telegram user ID")
	initDataCmd.Flags().StringVar(&initDataUsername, "username", "", "Telegram username")
	initDataCmd.Flags().StringVar(&initDataName, "name", "Dev", "First name")
}
