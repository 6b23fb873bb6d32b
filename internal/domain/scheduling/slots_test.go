package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newSlotFixture(t *testing.T) (*MemoryStore, *SlotCalculator, uuid.UUID) {
	t.Helper()
	store := NewMemoryStore()
	catalog := NewScheduleCatalog(store)
	doctorID := uuid.New()

	// Monday 09:00-12:00.
	w := &AvailabilityWindow{DoctorID: doctorID, Weekday: time.Monday, StartMinute: 9 * 60, EndMinute: 12 * 60}
	if err := catalog.AddWindow(context.Background(), w); err != nil {
		t.Fatalf("AddWindow() error: %v", err)
	}
	return store, NewSlotCalculator(catalog, store), doctorID
}

func TestFreeSlots_AroundBooking(t *testing.T) {
	store, calc, doctorID := newSlotFixture(t)
	monday := time.Date(2030, 6, 3, 0, 0, 0, 0, time.UTC)

	// Booked 10:00-10:30.
	seedAppointment(t, store, doctorID, monday.Add(10*time.Hour), monday.Add(10*time.Hour+30*time.Minute), StatusScheduled)

	slots, err := calc.FreeSlots(context.Background(), doctorID, monday, 30*time.Minute)
	if err != nil {
		t.Fatalf("FreeSlots() error: %v", err)
	}

	want := []TimeSlot{
		{Start: monday.Add(9 * time.Hour), End: monday.Add(9*time.Hour + 30*time.Minute)},
		{Start: monday.Add(9*time.Hour + 30*time.Minute), End: monday.Add(10 * time.Hour)},
		{Start: monday.Add(10*time.Hour + 30*time.Minute), End: monday.Add(11 * time.Hour)},
		{Start: monday.Add(11 * time.Hour), End: monday.Add(11*time.Hour + 30*time.Minute)},
		{Start: monday.Add(11*time.Hour + 30*time.Minute), End: monday.Add(12 * time.Hour)},
	}
	if len(slots) != len(want) {
		t.Fatalf("expected %d slots, got %d: %v", len(want), len(slots), slots)
	}
	for i := range want {
		if !slots[i].Start.Equal(want[i].Start) || !slots[i].End.Equal(want[i].End) {
			t.Errorf("slot[%d] = [%s, %s), want [%s, %s)", i, slots[i].Start, slots[i].End, want[i].Start, want[i].End)
		}
	}
}

func TestFreeSlots_EmptyWindow(t *testing.T) {
	_, calc, doctorID := newSlotFixture(t)
	monday := time.Date(2030, 6, 3, 0, 0, 0, 0, time.UTC)

	slots, err := calc.FreeSlots(context.Background(), doctorID, monday, 30*time.Minute)
	if err != nil {
		t.Fatalf("FreeSlots() error: %v", err)
	}
	if len(slots) != 6 {
		t.Fatalf("expected 6 slots for an empty 3h window, got %d", len(slots))
	}
}

func TestFreeSlots_TrailingPartialDiscarded(t *testing.T) {
	_, calc, doctorID := newSlotFixture(t)
	monday := time.Date(2030, 6, 3, 0, 0, 0, 0, time.UTC)

	// 3h window does not fit a fifth 40m slot; the trailing 20m is dropped.
	slots, err := calc.FreeSlots(context.Background(), doctorID, monday, 40*time.Minute)
	if err != nil {
		t.Fatalf("FreeSlots() error: %v", err)
	}
	if len(slots) != 4 {
		t.Fatalf("expected 4 slots of 40m, got %d", len(slots))
	}
	last := slots[len(slots)-1]
	if !last.End.Equal(monday.Add(11*time.Hour + 40*time.Minute)) {
		t.Errorf("expected last slot to end 11:40, got %s", last.End)
	}
}

func TestFreeSlots_GapShorterThanSlotDiscarded(t *testing.T) {
	store, calc, doctorID := newSlotFixture(t)
	monday := time.Date(2030, 6, 3, 0, 0, 0, 0, time.UTC)

	// Booked 09:15-09:45: the 15m gaps on both sides cannot hold a 30m slot.
	seedAppointment(t, store, doctorID, monday.Add(9*time.Hour+15*time.Minute), monday.Add(9*time.Hour+45*time.Minute), StatusConfirmed)

	slots, err := calc.FreeSlots(context.Background(), doctorID, monday, 30*time.Minute)
	if err != nil {
		t.Fatalf("FreeSlots() error: %v", err)
	}
	if len(slots) == 0 {
		t.Fatal("expected slots after the booking")
	}
	if !slots[0].Start.Equal(monday.Add(9*time.Hour + 45*time.Minute)) {
		t.Errorf("expected first slot at 09:45, got %s", slots[0].Start)
	}
}

func TestFreeSlots_CanceledFreesSlot(t *testing.T) {
	store, calc, doctorID := newSlotFixture(t)
	monday := time.Date(2030, 6, 3, 0, 0, 0, 0, time.UTC)

	seedAppointment(t, store, doctorID, monday.Add(10*time.Hour), monday.Add(10*time.Hour+30*time.Minute), StatusCanceled)

	slots, err := calc.FreeSlots(context.Background(), doctorID, monday, 30*time.Minute)
	if err != nil {
		t.Fatalf("FreeSlots() error: %v", err)
	}
	if len(slots) != 6 {
		t.Fatalf("expected 6 slots when the only booking is canceled, got %d", len(slots))
	}
}

func TestFreeSlots_NoWindows(t *testing.T) {
	store := NewMemoryStore()
	calc := NewSlotCalculator(NewScheduleCatalog(store), store)
	monday := time.Date(2030, 6, 3, 0, 0, 0, 0, time.UTC)

	slots, err := calc.FreeSlots(context.Background(), uuid.New(), monday, 30*time.Minute)
	if err != nil {
		t.Fatalf("FreeSlots() error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no slots without windows, got %d", len(slots))
	}
}

func TestFreeSlots_InvalidDuration(t *testing.T) {
	_, calc, doctorID := newSlotFixture(t)
	monday := time.Date(2030, 6, 3, 0, 0, 0, 0, time.UTC)

	for _, d := range []time.Duration{0, -30 * time.Minute, 25 * time.Hour} {
		_, err := calc.FreeSlots(context.Background(), doctorID, monday, d)
		if !errors.Is(err, ErrInvalidDuration) {
			t.Errorf("FreeSlots(%s): expected ErrInvalidDuration, got %v", d, err)
		}
	}
}

func TestFreeSlots_MultipleWindows(t *testing.T) {
	store := NewMemoryStore()
	catalog := NewScheduleCatalog(store)
	doctorID := uuid.New()

	for _, mins := range [][2]int{{9 * 60, 10 * 60}, {14 * 60, 15 * 60}} {
		w := &AvailabilityWindow{DoctorID: doctorID, Weekday: time.Monday, StartMinute: mins[0], EndMinute: mins[1]}
		if err := catalog.AddWindow(context.Background(), w); err != nil {
			t.Fatalf("AddWindow() error: %v", err)
		}
	}

	calc := NewSlotCalculator(catalog, store)
	monday := time.Date(2030, 6, 3, 0, 0, 0, 0, time.UTC)

	slots, err := calc.FreeSlots(context.Background(), doctorID, monday, 30*time.Minute)
	if err != nil {
		t.Fatalf("FreeSlots() error: %v", err)
	}
	if len(slots) != 4 {
		t.Fatalf("expected 4 slots across two windows, got %d", len(slots))
	}
	if !slots[2].Start.Equal(monday.Add(14 * time.Hour)) {
		t.Errorf("expected third slot at 14:00, got %s", slots[2].Start)
	}
}
