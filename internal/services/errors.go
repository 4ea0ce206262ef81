package services

import (
	"fmt"

	"github.com/wavenation/wavenation/internal/errors"
)

// API codes carried by service errors
const (
	CodeAlreadyVoted       = "ALREADY_VOTED"
	CodePollClosed         = "POLL_CLOSED"
	CodeInvalidOption      = "INVALID_OPTION"
	CodeDuplicateChartWeek = "DUPLICATE_CHART_WEEK"
)

// Service errors
var (
	ErrChartNotFound        = errors.NotFound("chart not found")
	ErrDuplicateChartWeek   = errors.Conflict("a chart for this key and week already exists").WithCode(CodeDuplicateChartWeek)
	ErrInvalidChartKey      = errors.Validation("invalid chart key")
	ErrShowNotFound         = errors.NotFound("radio show not found")
	ErrDuplicateShow        = errors.Conflict("a radio show with this slug already exists")
	ErrScheduleItemNotFound = errors.NotFound("schedule item not found")
	ErrPollNotFound         = errors.NotFound("poll not found")
	ErrPollClosed           = errors.Validation("poll is not accepting votes").WithCode(CodePollClosed)
	ErrInvalidOption        = errors.Validation("invalid poll option").WithCode(CodeInvalidOption)
	ErrAlreadyVoted         = errors.Conflict("already voted").WithCode(CodeAlreadyVoted)
	ErrNoTablesSpecified    = &ServiceError{Message: "no tables specified"}
)

// ServiceError represents a service-level error
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// InvalidTableError represents an invalid table name error
type InvalidTableError struct {
	Table string
}

func (e *InvalidTableError) Error() string {
	return fmt.Sprintf("invalid table name: %s", e.Table)
}
