package staff

// Membership is a row of the admin_users relation. It is managed outside of
// this service and only read here.
type Membership struct {
	ID       string  `json:"id"`
	Email    *string `json:"email,omitempty"`
	TgID     *int64  `json:"tg_id,omitempty"`
	Role     string  `json:"role"`
	IsActive bool    `json:"is_active"`
	// Schema is the namespace the row was found in.
	Schema string `json:"-"`
}
