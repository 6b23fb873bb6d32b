package scheduling

import "errors"

// Common errors returned by the scheduling service. Callers match them
// with errors.Is; messages returned to clients carry the wrapped detail.
var (
	ErrValidation             = errors.New("invalid appointment request")
	ErrInvalidRange           = errors.New("end time must be after start time")
	ErrInvalidDuration        = errors.New("invalid slot duration")
	ErrOutOfSchedule          = errors.New("requested time is outside the doctor's availability")
	ErrConflict               = errors.New("requested time overlaps an existing appointment")
	ErrInvalidTransition      = errors.New("status transition not allowed")
	ErrNotFound               = errors.New("appointment not found")
	ErrWindowNotFound         = errors.New("availability window not found")
	ErrOverlappingWindow      = errors.New("availability window overlaps an existing window")
	ErrConcurrentModification = errors.New("appointment was modified concurrently")
)
