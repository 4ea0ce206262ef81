package handlers

import (
	"net/http"

	"github.com/wavenation/wavenation/internal/metrics"
	"github.com/wavenation/wavenation/internal/models"
)

// ==================== Public ====================

// handleFeaturedPoll returns the homepage poll, or null when none is live
func (h *Handlers) handleFeaturedPoll(w http.ResponseWriter, r *http.Request) {
	poll, err := h.Polls.FeaturedPoll(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	if poll == nil {
		respondNull(w)
		return
	}
	respondOK(w, poll)
}

func (h *Handlers) handleVote(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)
	if !h.voteLimiter.Allow(ip) {
		h.Metrics.IncVotes(metrics.VoteThrottled)
		h.respondError(w, TooManyRequests("Too many votes, slow down"))
		return
	}

	var req VoteRequest
	if err := decodeAndValidate(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	if err := h.Polls.Vote(r.Context(), req.PollID, req.Option, ip); err != nil {
		h.respondError(w, err)
		return
	}
	respondCreated(w, VoteResponse{Success: true})
}

func (h *Handlers) handlePollResults(w http.ResponseWriter, r *http.Request) {
	pollID, err := parseIntQuery(r, "poll_id", 0)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if pollID == 0 {
		h.respondError(w, BadRequest("Invalid poll_id parameter"))
		return
	}

	results, err := h.Polls.Results(r.Context(), pollID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, results)
}

func (h *Handlers) handlePollQR(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}

	png, err := h.Polls.ShareQR(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondPNG(w, png)
}

// ==================== Editorial ====================

func (h *Handlers) handleListPolls(w http.ResponseWriter, r *http.Request) {
	polls, err := h.Polls.ListPolls(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, polls)
}

func (h *Handlers) handleGetPoll(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	poll, err := h.Polls.GetPoll(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, poll)
}

func (h *Handlers) handleCreatePoll(w http.ResponseWriter, r *http.Request) {
	var poll models.Poll
	if err := decodeJSON(r, &poll); err != nil {
		h.respondError(w, err)
		return
	}
	poll.ID = 0

	created, err := h.Polls.CreatePoll(r.Context(), &poll)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondCreated(w, created)
}

func (h *Handlers) handleUpdatePoll(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	var poll models.Poll
	if err := decodeJSON(r, &poll); err != nil {
		h.respondError(w, err)
		return
	}
	poll.ID = id

	updated, err := h.Polls.UpdatePoll(r.Context(), &poll)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, updated)
}

func (h *Handlers) handleDeletePoll(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	if err := h.Polls.DeletePoll(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	respondDeleted(w)
}
