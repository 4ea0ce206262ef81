package handlers

import (
	"net/http"

	"github.com/wavenation/wavenation/internal/services"
)

func (h *Handlers) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	baseURL, err := h.Settings.GetBaseURL(ctx)
	if err != nil {
		h.respondError(w, err)
		return
	}
	tz, err := h.Settings.ScheduleTimezone(ctx)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, SettingsResponse{BaseURL: baseURL, ScheduleTimezone: tz})
}

func (h *Handlers) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsUpdateRequest
	if err := decodeAndValidate(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	err := h.Settings.UpdateSettings(r.Context(), services.Settings{
		BaseURL:          req.BaseURL,
		ScheduleTimezone: req.ScheduleTimezone,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.handleGetSettings(w, r)
}

// handleResetDatabase clears the named tables and their dependents
func (h *Handlers) handleResetDatabase(w http.ResponseWriter, r *http.Request) {
	var req DatabaseResetRequest
	if err := decodeAndValidate(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	result, err := h.Settings.ResetTables(r.Context(), req.Tables)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, map[string]interface{}{
		"message": result.Message,
		"tables":  result.Tables,
	})
}
