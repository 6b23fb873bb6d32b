package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ConflictDetector checks a proposed time range against a doctor's existing
// active appointments. Canceled appointments never conflict.
type ConflictDetector struct {
	store AppointmentStore
}

func NewConflictDetector(store AppointmentStore) *ConflictDetector {
	return &ConflictDetector{store: store}
}

// Check returns ErrConflict when [start,end) overlaps any active appointment
// for the doctor. Pass exclude to ignore one appointment, e.g. the record
// being rescheduled; uuid.Nil excludes nothing. Intervals are half-open, so
// an appointment ending exactly when another starts does not conflict.
func (d *ConflictDetector) Check(ctx context.Context, doctorID uuid.UUID, start, end time.Time, exclude uuid.UUID) error {
	existing, err := d.store.ListActiveInRange(ctx, doctorID, start, end)
	if err != nil {
		return err
	}
	for _, a := range existing {
		if exclude != uuid.Nil && a.ID == exclude {
			continue
		}
		if Overlaps(start, end, a.StartTime, a.EndTime) {
			return fmt.Errorf("%w: overlaps appointment %s", ErrConflict, a.ID)
		}
	}
	return nil
}
