package handlers

import (
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wavenation/wavenation/internal/models"
	"github.com/wavenation/wavenation/internal/repository"
)

// ==================== Public ====================

func (h *Handlers) handleListCharts(w http.ResponseWriter, r *http.Request) {
	limit, err := parseIntQuery(r, "limit", 0)
	if err != nil {
		h.respondError(w, err)
		return
	}
	key := models.ChartKey(r.URL.Query().Get("chart_key"))

	charts, err := h.Charts.ListPublished(r.Context(), key, limit)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, charts)
}

func (h *Handlers) handleChartsByKey(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("chart_key")
	if key == "" {
		h.respondError(w, BadRequest("Missing chart_key parameter"))
		return
	}

	charts, err := h.Charts.ListByKey(r.Context(), models.ChartKey(key))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, charts)
}

func (h *Handlers) handleChartBySlug(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("slug")
	if slug == "" {
		h.respondError(w, BadRequest("Missing slug parameter"))
		return
	}

	chart, err := h.Charts.GetChartBySlug(r.Context(), slug, true)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, chart)
}

func (h *Handlers) handleCompareChart(w http.ResponseWriter, r *http.Request) {
	cmp, err := h.Charts.CompareChart(r.Context(), chi.URLParam(r, "slug"), r.URL.Query().Get("with"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, cmp)
}

func (h *Handlers) handleChartMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.Charts.Metrics(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, m)
}

func (h *Handlers) handleChartOverview(w http.ResponseWriter, r *http.Request) {
	items, err := h.Charts.Overview(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, items)
}

// ==================== Editorial ====================

func (h *Handlers) handleAdminListCharts(w http.ResponseWriter, r *http.Request) {
	limit, err := parseIntQuery(r, "limit", 0)
	if err != nil {
		h.respondError(w, err)
		return
	}
	q := r.URL.Query()
	charts, err := h.Charts.ListCharts(r.Context(), repository.ChartFilter{
		Status:   models.ChartStatus(q.Get("status")),
		ChartKey: models.ChartKey(q.Get("chart_key")),
		Limit:    limit,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, charts)
}

func (h *Handlers) handleGetChart(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}

	chart, err := h.Charts.GetChart(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, chart)
}

func (h *Handlers) handleCreateChart(w http.ResponseWriter, r *http.Request) {
	var chart models.Chart
	if err := decodeJSON(r, &chart); err != nil {
		h.respondError(w, err)
		return
	}
	chart.ID = 0

	saved, err := h.Charts.SaveChart(r.Context(), &chart)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondCreated(w, saved)
}

func (h *Handlers) handleUpdateChart(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}

	var chart models.Chart
	if err := decodeJSON(r, &chart); err != nil {
		h.respondError(w, err)
		return
	}
	chart.ID = id

	saved, err := h.Charts.SaveChart(r.Context(), &chart)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, saved)
}

func (h *Handlers) handleDeleteChart(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}

	if err := h.Charts.DeleteChart(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	respondDeleted(w)
}

// handleImportChartCSV replaces a chart's entries from a CSV body, sent
// raw or as the "file" field of a multipart form
func (h *Handlers) handleImportChartCSV(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}

	body, err := uploadedFile(r, "file")
	if err != nil {
		h.respondError(w, err)
		return
	}
	defer body.Close()

	chart, err := h.Charts.ImportCSV(r.Context(), id, body)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, chart)
}

func (h *Handlers) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}

	snaps, err := h.Charts.ListSnapshots(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, snaps)
}

// uploadedFile returns the named multipart file, or the raw body for any
// other content type
func uploadedFile(r *http.Request, field string) (io.ReadCloser, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if !strings.HasPrefix(mediaType, "multipart/") {
		return io.NopCloser(io.LimitReader(r.Body, maxBodyBytes)), nil
	}
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
		return nil, BadRequest("Invalid multipart form: " + err.Error())
	}
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, BadRequest("Missing " + field + " upload")
	}
	return file, nil
}
