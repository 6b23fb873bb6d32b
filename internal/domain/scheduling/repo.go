package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AppointmentStore is the persistence contract for appointments. It is
// deliberately narrow: status changes go through ApplyStatus so that every
// transition is a single conditional update, and booking-critical sections
// run inside WithDoctorLock so that two writers for the same doctor are
// serialized.
type AppointmentStore interface {
	Insert(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// ListActiveInRange returns non-canceled appointments for the doctor
	// whose [start,end) range intersects [from,to).
	ListActiveInRange(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*Appointment, error)
	// ListStale returns scheduled and confirmed appointments whose start
	// time is before cutoff.
	ListStale(ctx context.Context, cutoff time.Time) ([]*Appointment, error)
	// ApplyStatus performs a conditional transition. It returns false with a
	// nil error when the appointment exists but its status is not in Expect.
	ApplyStatus(ctx context.Context, change StatusChange) (bool, error)
	// WithDoctorLock runs fn while holding an exclusive per-doctor lock.
	// The context passed to fn carries the lock's transaction when the
	// store is database-backed.
	WithDoctorLock(ctx context.Context, doctorID uuid.UUID, fn func(ctx context.Context) error) error
}

// AvailabilityStore persists recurring weekly availability windows.
type AvailabilityStore interface {
	InsertWindow(ctx context.Context, w *AvailabilityWindow) error
	DeleteWindow(ctx context.Context, id uuid.UUID) error
	ListWindows(ctx context.Context, doctorID uuid.UUID) ([]*AvailabilityWindow, error)
	// ListWindowsForDay returns the doctor's windows on the given weekday,
	// ordered by start minute.
	ListWindowsForDay(ctx context.Context, doctorID uuid.UUID, weekday time.Weekday) ([]*AvailabilityWindow, error)
}

// Directory is the subset of the directory domain the scheduler needs.
type Directory interface {
	DoctorExists(ctx context.Context, id uuid.UUID) (bool, error)
	PatientExists(ctx context.Context, id uuid.UUID) (bool, error)
}
