package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMemoryStore_ApplyStatus(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2030, 6, 3, 12, 0, 0, 0, time.UTC)
	appt := seedAppointment(t, store, uuid.New(), now, now.Add(30*time.Minute), StatusScheduled)

	// Expectation mismatch returns false without error.
	applied, err := store.ApplyStatus(context.Background(), StatusChange{
		ID:     appt.ID,
		Expect: []AppointmentStatus{StatusConfirmed},
		To:     StatusCompleted,
	})
	if err != nil {
		t.Fatalf("ApplyStatus() error: %v", err)
	}
	if applied {
		t.Fatal("expected no-op on expectation mismatch")
	}

	got, _ := store.GetByID(context.Background(), appt.ID)
	if got.Status != StatusScheduled {
		t.Fatalf("expected status unchanged, got %s", got.Status)
	}

	reason := "clinic closure"
	applied, err = store.ApplyStatus(context.Background(), StatusChange{
		ID:           appt.ID,
		Expect:       []AppointmentStatus{StatusScheduled, StatusConfirmed},
		To:           StatusCanceled,
		CancelReason: &reason,
	})
	if err != nil {
		t.Fatalf("ApplyStatus() error: %v", err)
	}
	if !applied {
		t.Fatal("expected update to apply")
	}

	got, _ = store.GetByID(context.Background(), appt.ID)
	if got.Status != StatusCanceled {
		t.Errorf("expected canceled, got %s", got.Status)
	}
	if got.CancelReason == nil || *got.CancelReason != reason {
		t.Error("expected cancel reason to be stored")
	}
}

func TestMemoryStore_ApplyStatus_NotFound(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.ApplyStatus(context.Background(), StatusChange{
		ID:     uuid.New(),
		Expect: []AppointmentStatus{StatusScheduled},
		To:     StatusCanceled,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_CopySemantics(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2030, 6, 3, 12, 0, 0, 0, time.UTC)
	appt := seedAppointment(t, store, uuid.New(), now, now.Add(30*time.Minute), StatusScheduled)

	got, err := store.GetByID(context.Background(), appt.ID)
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	got.Status = StatusCompleted

	// Mutating the returned value must not leak into the store.
	again, _ := store.GetByID(context.Background(), appt.ID)
	if again.Status != StatusScheduled {
		t.Fatalf("expected stored record unchanged, got %s", again.Status)
	}
}

func TestMemoryStore_ListActiveInRange_Ordering(t *testing.T) {
	store := NewMemoryStore()
	doctorID := uuid.New()
	day := time.Date(2030, 6, 3, 0, 0, 0, 0, time.UTC)

	late := seedAppointment(t, store, doctorID, day.Add(11*time.Hour), day.Add(12*time.Hour), StatusScheduled)
	early := seedAppointment(t, store, doctorID, day.Add(9*time.Hour), day.Add(10*time.Hour), StatusScheduled)

	appts, err := store.ListActiveInRange(context.Background(), doctorID, day, day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("ListActiveInRange() error: %v", err)
	}
	if len(appts) != 2 {
		t.Fatalf("expected 2 appointments, got %d", len(appts))
	}
	if appts[0].ID != early.ID || appts[1].ID != late.ID {
		t.Error("expected appointments ordered by start time")
	}
}

func TestMemoryStore_Windows(t *testing.T) {
	store := NewMemoryStore()
	doctorID := uuid.New()

	for _, mins := range [][2]int{{14 * 60, 17 * 60}, {9 * 60, 12 * 60}} {
		w := &AvailabilityWindow{DoctorID: doctorID, Weekday: time.Monday, StartMinute: mins[0], EndMinute: mins[1]}
		if err := store.InsertWindow(context.Background(), w); err != nil {
			t.Fatalf("InsertWindow() error: %v", err)
		}
	}

	windows, err := store.ListWindowsForDay(context.Background(), doctorID, time.Monday)
	if err != nil {
		t.Fatalf("ListWindowsForDay() error: %v", err)
	}
	if len(windows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(windows))
	}
	if windows[0].StartMinute != 9*60 {
		t.Error("expected windows ordered by start minute")
	}

	if err := store.DeleteWindow(context.Background(), windows[0].ID); err != nil {
		t.Fatalf("DeleteWindow() error: %v", err)
	}
	if err := store.DeleteWindow(context.Background(), windows[0].ID); !errors.Is(err, ErrWindowNotFound) {
		t.Fatalf("expected ErrWindowNotFound, got %v", err)
	}
}
