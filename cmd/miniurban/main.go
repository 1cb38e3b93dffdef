package main

import (
	"miniurban-backend/cmd/miniurban/cmd"

	_ "miniurban-backend/docs"
)

// @title           MiniUrban API
// @version         1.0
// @description     Authentication and session backend for the MiniUrban Mini App and admin panel.

// @BasePath  /

// @securityDefinitions.apikey TelegramInitData
// @in header
// @name X-Telegram-Init-Data
// @description Telegram Mini App init data query string

// @securityDefinitions.apikey AdminSession
// @in cookie
// @name uv_admin
// @description Admin session cookie set by the login endpoints

// @tag.name auth
// @tag.description Mini App authentication

// @tag.name profile
// @tag.description Resident profile

// @tag.name admin-auth
// @tag.description Admin panel login and logout

// @tag.name admin
// @tag.description Staff-only endpoints

func main() {
	cmd.Execute()
}
