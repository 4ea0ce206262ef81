package handlers

// LoginRequest represents an editorial login
type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// VoteRequest represents a poll vote
type VoteRequest struct {
	PollID int    `json:"poll_id" validate:"required|int|min:1"`
	Option string `json:"option" validate:"required"`
}

// SettingsUpdateRequest represents a request to update settings
type SettingsUpdateRequest struct {
	BaseURL          string `json:"base_url" validate:"fullUrl"`
	ScheduleTimezone string `json:"schedule_timezone"`
}

// DatabaseResetRequest represents a request to reset database tables
type DatabaseResetRequest struct {
	Tables []string `json:"tables" validate:"required"`
}
