package scheduling

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// maxSlotDuration guards against nonsensical slot sizes; no slot can be
// longer than a day.
const maxSlotDuration = 24 * time.Hour

// SlotCalculator derives bookable time slots from a doctor's availability
// windows minus their active appointments.
type SlotCalculator struct {
	catalog *ScheduleCatalog
	store   AppointmentStore
}

func NewSlotCalculator(catalog *ScheduleCatalog, store AppointmentStore) *SlotCalculator {
	return &SlotCalculator{catalog: catalog, store: store}
}

// FreeSlots returns the open slots of exactly slotDuration for the given
// doctor on the given calendar day, in chronological order. Each window is
// carved into consecutive slots from its start; time left over at the end of
// a window or before a booked appointment that is shorter than slotDuration
// is discarded, never returned as a partial slot.
func (s *SlotCalculator) FreeSlots(ctx context.Context, doctorID uuid.UUID, day time.Time, slotDuration time.Duration) ([]TimeSlot, error) {
	if slotDuration <= 0 {
		return nil, fmt.Errorf("%w: slot duration must be positive", ErrInvalidDuration)
	}
	if slotDuration > maxSlotDuration {
		return nil, fmt.Errorf("%w: slot duration exceeds one day", ErrInvalidDuration)
	}

	windows, err := s.catalog.WindowsOn(ctx, doctorID, day)
	if err != nil {
		return nil, err
	}
	if len(windows) == 0 {
		return []TimeSlot{}, nil
	}

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	booked, err := s.store.ListActiveInRange(ctx, doctorID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	sort.Slice(booked, func(i, j int) bool { return booked[i].StartTime.Before(booked[j].StartTime) })

	slots := []TimeSlot{}
	for _, w := range windows {
		ws, we := w.Interval(day)
		slots = append(slots, carve(ws, we, booked, slotDuration)...)
	}
	return slots, nil
}

// carve splits [ws,we) into slots of exactly d, skipping over booked
// intervals. busy must be sorted by start time.
func carve(ws, we time.Time, busy []*Appointment, d time.Duration) []TimeSlot {
	var out []TimeSlot
	cursor := ws
	for !cursor.Add(d).After(we) {
		next := cursor.Add(d)
		blocked := false
		for _, b := range busy {
			if Overlaps(cursor, next, b.StartTime, b.EndTime) {
				blocked = true
				// Jump past the booking rather than sliding minute by
				// minute; slots always align to window start or a
				// booking's end.
				if b.EndTime.After(cursor) {
					cursor = b.EndTime
				}
				break
			}
		}
		if blocked {
			continue
		}
		out = append(out, TimeSlot{Start: cursor, End: next})
		cursor = next
	}
	return out
}
