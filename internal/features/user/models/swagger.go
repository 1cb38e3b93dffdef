package models

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success   bool        `json:"success" example:"false"`
	Error     ErrorDetail `json:"error"`
	RequestID string      `json:"request_id" example:"3f6c2a51-9b0e-4c34-8a7d-0d2f5e1b7c44"`
}

type ErrorDetail struct {
	Code    string `json:"code" example:"INVALID_SIGNATURE"`
	Message string `json:"message" example:"invalid init data signature"`
}

// CheckResponse represents a successful init data check
type CheckResponse struct {
	OK   bool  `json:"ok" example:"true"`
	TgID int64 `json:"tg_id" example:"123456789"`
}

// ProfileRequest is a partial profile update. Omitted fields are kept.
type ProfileRequest struct {
	Username *string `json:"username" example:"ivanp"`
	Name     *string `json:"name" example:"Ivan Petrov"`
	Email    *string `json:"email" example:"ivan@example.org"`
	Phone    *string `json:"phone" example:"+85512345678"`
	Language *string `json:"language" example:"RU"`
	Unit     *string `json:"unit" example:"B-1204"`
}
