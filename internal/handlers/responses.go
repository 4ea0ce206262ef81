package handlers

import "github.com/wavenation/wavenation/internal/schedule"

// VoteResponse is the response for an accepted vote
type VoteResponse struct {
	Success bool `json:"success"`
}

// LoginResponse carries the session token for API clients that do not
// use the cookie
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// SettingsResponse is the response for settings
type SettingsResponse struct {
	BaseURL          string `json:"base_url"`
	ScheduleTimezone string `json:"schedule_timezone"`
}

// ScheduleResponse is the normalized schedule with its authoritative zone
type ScheduleResponse struct {
	Timezone string          `json:"timezone"`
	Slots    []schedule.Slot `json:"slots"`
}
