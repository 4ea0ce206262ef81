package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wavenation/wavenation/internal/errors"
	"github.com/wavenation/wavenation/internal/logger"
	"github.com/wavenation/wavenation/internal/services"
)

func TestToAPIError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", services.ErrPollNotFound, http.StatusNotFound, ErrCodeNotFound},
		{"validation", errors.Validation("bad"), http.StatusBadRequest, ErrCodeValidation},
		{"invalid input", errors.InvalidInput("bad"), http.StatusBadRequest, ErrCodeValidation},
		{"conflict with code", services.ErrAlreadyVoted, http.StatusConflict, services.CodeAlreadyVoted},
		{"wrapped conflict", fmt.Errorf("vote: %w", services.ErrDuplicateChartWeek), http.StatusConflict, services.CodeDuplicateChartWeek},
		{"unauthorized", errors.Unauthorized("no"), http.StatusUnauthorized, ErrCodeUnauthorized},
		{"rate limited", errors.RateLimited("slow"), http.StatusTooManyRequests, ErrCodeRateLimited},
		{"internal kind", errors.Internal(fmt.Errorf("boom")), http.StatusInternalServerError, ErrCodeInternalServer},
		{"service error", services.ErrNoTablesSpecified, http.StatusBadRequest, ErrCodeBadRequest},
		{"invalid table", &services.InvalidTableError{Table: "users"}, http.StatusBadRequest, ErrCodeBadRequest},
		{"plain error", fmt.Errorf("disk full"), http.StatusInternalServerError, ErrCodeInternalServer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToAPIError(logger.Nop(), tt.err)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.code, got.Code)
		})
	}
}

func TestToAPIError_DoesNotMutateSentinels(t *testing.T) {
	ToAPIError(logger.Nop(), services.ErrAlreadyVoted)
	got := ToAPIError(logger.Nop(), services.ErrPollNotFound)
	assert.Equal(t, ErrCodeNotFound, got.Code)
}

func TestRespondError_PassesAPIErrorThrough(t *testing.T) {
	h := New(Deps{})
	rec := httptest.NewRecorder()
	h.respondError(rec, Conflict("taken"))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"code":"CONFLICT","error":"taken"}`, rec.Body.String())
}

func TestParseIntQuery(t *testing.T) {
	tests := []struct {
		query   string
		want    int
		wantErr bool
	}{
		{"", 7, false},
		{"?n=3", 3, false},
		{"?n=%20", 7, false},
		{"?n=0", 0, false},
		{"?n=-1", 0, true},
		{"?n=x", 0, true},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)
		got, err := parseIntQuery(r, "n", 7)
		if tt.wantErr {
			assert.Error(t, err, tt.query)
			continue
		}
		assert.NoError(t, err, tt.query)
		assert.Equal(t, tt.want, got, tt.query)
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.7:5555"
	assert.Equal(t, "203.0.113.7", clientIP(r))

	r.RemoteAddr = "203.0.113.7"
	assert.Equal(t, "203.0.113.7", clientIP(r))
}

func TestIPLimiter(t *testing.T) {
	assert.Nil(t, newIPLimiter(0))
	var disabled *ipLimiter
	assert.True(t, disabled.Allow("1.2.3.4"))

	now := time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC)
	l := newIPLimiter(2)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"), "addresses are limited independently")

	now = now.Add(30 * time.Second)
	assert.True(t, l.Allow("a"), "one token refills every 30s")
	assert.False(t, l.Allow("a"))
}

func TestIPLimiter_PrunesIdleAddresses(t *testing.T) {
	now := time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC)
	l := newIPLimiter(5)
	l.now = func() time.Time { return now }

	l.Allow("a")
	l.Allow("b")
	assert.Len(t, l.entries, 2)

	now = now.Add(limiterIdle + time.Minute)
	l.Allow("c")
	assert.Len(t, l.entries, 1)
}
