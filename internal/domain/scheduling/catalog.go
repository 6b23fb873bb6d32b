package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// minutesPerDay is the exclusive upper bound for window minutes; a window
// ending at 1440 runs to midnight.
const minutesPerDay = 24 * 60

// ScheduleCatalog manages a doctor's recurring weekly availability.
type ScheduleCatalog struct {
	store AvailabilityStore
}

func NewScheduleCatalog(store AvailabilityStore) *ScheduleCatalog {
	return &ScheduleCatalog{store: store}
}

// AddWindow validates and persists a new availability window. Windows for
// the same doctor and weekday must not overlap; back-to-back windows are
// allowed because minute ranges are half-open.
func (c *ScheduleCatalog) AddWindow(ctx context.Context, w *AvailabilityWindow) error {
	if w.DoctorID == uuid.Nil {
		return fmt.Errorf("%w: doctor_id is required", ErrValidation)
	}
	if w.Weekday < time.Sunday || w.Weekday > time.Saturday {
		return fmt.Errorf("%w: weekday must be 0 (Sunday) through 6 (Saturday)", ErrValidation)
	}
	if w.StartMinute < 0 || w.EndMinute > minutesPerDay {
		return fmt.Errorf("%w: window minutes must be within a single day", ErrValidation)
	}
	if w.StartMinute >= w.EndMinute {
		return fmt.Errorf("%w: window must end after it starts", ErrValidation)
	}

	existing, err := c.store.ListWindowsForDay(ctx, w.DoctorID, w.Weekday)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if w.StartMinute < other.EndMinute && other.StartMinute < w.EndMinute {
			return fmt.Errorf("%w: clashes with window %s", ErrOverlappingWindow, other.ID)
		}
	}

	return c.store.InsertWindow(ctx, w)
}

// RemoveWindow deletes an availability window.
func (c *ScheduleCatalog) RemoveWindow(ctx context.Context, id uuid.UUID) error {
	return c.store.DeleteWindow(ctx, id)
}

// WindowsFor returns all windows for a doctor ordered by weekday and start.
func (c *ScheduleCatalog) WindowsFor(ctx context.Context, doctorID uuid.UUID) ([]*AvailabilityWindow, error) {
	return c.store.ListWindows(ctx, doctorID)
}

// WindowsOn returns the doctor's windows for the weekday of the given date,
// ordered by start minute.
func (c *ScheduleCatalog) WindowsOn(ctx context.Context, doctorID uuid.UUID, day time.Time) ([]*AvailabilityWindow, error) {
	return c.store.ListWindowsForDay(ctx, doctorID, day.Weekday())
}

// Covers reports whether [start,end) falls entirely within a single one of
// the doctor's availability windows. An appointment spanning two adjacent
// windows is not covered.
func (c *ScheduleCatalog) Covers(ctx context.Context, doctorID uuid.UUID, start, end time.Time) (bool, error) {
	windows, err := c.store.ListWindowsForDay(ctx, doctorID, start.Weekday())
	if err != nil {
		return false, err
	}
	for _, w := range windows {
		if w.Contains(start, end) {
			return true, nil
		}
	}
	return false, nil
}
