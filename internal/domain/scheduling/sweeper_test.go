package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func TestSweep(t *testing.T) {
	store := NewMemoryStore()
	doctorID := uuid.New()
	now := time.Date(2030, 6, 3, 12, 0, 0, 0, time.UTC)

	// Started 2h ago, never confirmed.
	overdue := seedAppointment(t, store, doctorID, now.Add(-2*time.Hour), now.Add(-90*time.Minute), StatusScheduled)
	// Started 5m ago, still within the grace period.
	recent := seedAppointment(t, store, doctorID, now.Add(-5*time.Minute), now.Add(25*time.Minute), StatusScheduled)
	// Overdue and confirmed; the patient still never showed up.
	confirmed := seedAppointment(t, store, doctorID, now.Add(-2*time.Hour), now.Add(-90*time.Minute), StatusConfirmed)
	// Overdue but already completed; terminal statuses are never touched.
	completed := seedAppointment(t, store, doctorID, now.Add(-2*time.Hour), now.Add(-90*time.Minute), StatusCompleted)
	// In the future.
	upcoming := seedAppointment(t, store, doctorID, now.Add(time.Hour), now.Add(90*time.Minute), StatusScheduled)

	sweeper := NewNoShowSweeper(store, nil, zerolog.Nop(), 15*time.Minute)
	sweeper.now = func() time.Time { return now }

	count, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 swept appointments, got %d", count)
	}

	expect := map[uuid.UUID]AppointmentStatus{
		overdue.ID:   StatusNoShow,
		recent.ID:    StatusScheduled,
		confirmed.ID: StatusNoShow,
		completed.ID: StatusCompleted,
		upcoming.ID:  StatusScheduled,
	}
	for id, want := range expect {
		got, err := store.GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("GetByID() error: %v", err)
		}
		if got.Status != want {
			t.Errorf("appointment %s: expected status %s, got %s", id, want, got.Status)
		}
	}
}

func TestSweep_Idempotent(t *testing.T) {
	store := NewMemoryStore()
	doctorID := uuid.New()
	now := time.Date(2030, 6, 3, 12, 0, 0, 0, time.UTC)

	seedAppointment(t, store, doctorID, now.Add(-2*time.Hour), now.Add(-90*time.Minute), StatusScheduled)

	sweeper := NewNoShowSweeper(store, nil, zerolog.Nop(), 15*time.Minute)
	sweeper.now = func() time.Time { return now }

	first, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() error: %v", err)
	}
	if first != 1 {
		t.Fatalf("expected first sweep to mark 1, got %d", first)
	}

	second, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() error: %v", err)
	}
	if second != 0 {
		t.Fatalf("expected second sweep to mark 0, got %d", second)
	}
}

func TestSweep_GraceBoundary(t *testing.T) {
	store := NewMemoryStore()
	doctorID := uuid.New()
	now := time.Date(2030, 6, 3, 12, 0, 0, 0, time.UTC)

	// Started exactly at the grace boundary; not yet past it.
	boundary := seedAppointment(t, store, doctorID, now.Add(-15*time.Minute), now.Add(15*time.Minute), StatusScheduled)

	sweeper := NewNoShowSweeper(store, nil, zerolog.Nop(), 15*time.Minute)
	sweeper.now = func() time.Time { return now }

	count, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected nothing swept at the boundary, got %d", count)
	}

	got, err := store.GetByID(context.Background(), boundary.ID)
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if got.Status != StatusScheduled {
		t.Errorf("expected boundary appointment untouched, got %s", got.Status)
	}
}

// flakyStore fails ApplyStatus for one appointment id and delegates
// everything else to the wrapped store.
type flakyStore struct {
	AppointmentStore
	failID uuid.UUID
}

func (f *flakyStore) ApplyStatus(ctx context.Context, change StatusChange) (bool, error) {
	if change.ID == f.failID {
		return false, errors.New("write failed")
	}
	return f.AppointmentStore.ApplyStatus(ctx, change)
}

func TestSweep_RecordFailureDoesNotStopSweep(t *testing.T) {
	store := NewMemoryStore()
	doctorID := uuid.New()
	now := time.Date(2030, 6, 3, 12, 0, 0, 0, time.UTC)

	broken := seedAppointment(t, store, doctorID, now.Add(-3*time.Hour), now.Add(-150*time.Minute), StatusScheduled)
	healthy := seedAppointment(t, store, doctorID, now.Add(-2*time.Hour), now.Add(-90*time.Minute), StatusScheduled)

	sweeper := NewNoShowSweeper(&flakyStore{AppointmentStore: store, failID: broken.ID}, nil, zerolog.Nop(), 15*time.Minute)
	sweeper.now = func() time.Time { return now }

	count, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() must not surface per-record errors, got: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 swept appointment, got %d", count)
	}

	got, err := store.GetByID(context.Background(), healthy.ID)
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if got.Status != StatusNoShow {
		t.Errorf("expected the healthy record swept, got %s", got.Status)
	}
}

func TestSweep_Empty(t *testing.T) {
	sweeper := NewNoShowSweeper(NewMemoryStore(), nil, zerolog.Nop(), 15*time.Minute)
	count, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0, got %d", count)
	}
}
