package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/wavenation/wavenation/internal/models"
)

// ==================== Public ====================

func (h *Handlers) handleRadioSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	respondOK(w, ScheduleResponse{
		Timezone: h.Schedule.Location(ctx).String(),
		Slots:    h.Schedule.Schedule(ctx),
	})
}

// handleOnAir resolves the live and next show. Labels are rendered in
// the IANA zone named by ?tz=, or the schedule zone when absent.
func (h *Handlers) handleOnAir(w http.ResponseWriter, r *http.Request) {
	var viewer *time.Location
	if tz := strings.TrimSpace(r.URL.Query().Get("tz")); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			h.respondError(w, ValidationError("Unknown timezone: "+tz))
			return
		}
		viewer = loc
	}
	respondOK(w, h.Schedule.OnAir(r.Context(), time.Now(), viewer))
}

func (h *Handlers) handleNowPlaying(w http.ResponseWriter, r *http.Request) {
	np := h.NowPlaying.Current(r.Context())
	if np == nil {
		respondNull(w)
		return
	}
	respondOK(w, np)
}

// ==================== Shows ====================

func (h *Handlers) handleListShows(w http.ResponseWriter, r *http.Request) {
	shows, err := h.Schedule.ListShows(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, shows)
}

func (h *Handlers) handleGetShow(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	show, err := h.Schedule.GetShow(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, show)
}

func (h *Handlers) handleCreateShow(w http.ResponseWriter, r *http.Request) {
	var show models.RadioShow
	if err := decodeJSON(r, &show); err != nil {
		h.respondError(w, err)
		return
	}
	show.ID = 0

	created, err := h.Schedule.CreateShow(r.Context(), &show)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondCreated(w, created)
}

func (h *Handlers) handleUpdateShow(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	var show models.RadioShow
	if err := decodeJSON(r, &show); err != nil {
		h.respondError(w, err)
		return
	}
	show.ID = id

	updated, err := h.Schedule.UpdateShow(r.Context(), &show)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, updated)
}

func (h *Handlers) handleDeleteShow(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	if err := h.Schedule.DeleteShow(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	respondDeleted(w)
}

// ==================== Schedule items ====================

func (h *Handlers) handleListScheduleItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.Schedule.ListScheduleItems(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, items)
}

func (h *Handlers) handleGetScheduleItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	item, err := h.Schedule.GetScheduleItem(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, item)
}

func (h *Handlers) handleCreateScheduleItem(w http.ResponseWriter, r *http.Request) {
	var item models.RadioScheduleItem
	if err := decodeJSON(r, &item); err != nil {
		h.respondError(w, err)
		return
	}
	item.ID = 0

	created, err := h.Schedule.CreateScheduleItem(r.Context(), &item)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondCreated(w, created)
}

func (h *Handlers) handleUpdateScheduleItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	var item models.RadioScheduleItem
	if err := decodeJSON(r, &item); err != nil {
		h.respondError(w, err)
		return
	}
	item.ID = id

	updated, err := h.Schedule.UpdateScheduleItem(r.Context(), &item)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, updated)
}

func (h *Handlers) handleDeleteScheduleItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	if err := h.Schedule.DeleteScheduleItem(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	respondDeleted(w)
}

// handleImportSchedule upserts shows and slots from a YAML schedule file
func (h *Handlers) handleImportSchedule(w http.ResponseWriter, r *http.Request) {
	body, err := uploadedFile(r, "file")
	if err != nil {
		h.respondError(w, err)
		return
	}
	defer body.Close()

	result, err := h.Schedule.ImportYAML(r.Context(), body)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, result)
}
