package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicd/clinicd/internal/platform/db"
	"github.com/clinicd/clinicd/internal/platform/events"
)

const (
	retryAttempts = 3
	retryBaseWait = 50 * time.Millisecond
)

// Service implements the appointment lifecycle: booking, confirmation,
// cancellation, completion, rescheduling and no-show handling. Booking and
// rescheduling run under a per-doctor lock so two racing requests for the
// same range cannot both succeed.
type Service struct {
	store     AppointmentStore
	catalog   *ScheduleCatalog
	conflicts *ConflictDetector
	slots     *SlotCalculator
	directory Directory
	events    events.Publisher
	logger    zerolog.Logger
	now       func() time.Time
}

func NewService(store AppointmentStore, catalog *ScheduleCatalog, directory Directory, pub events.Publisher, logger zerolog.Logger) *Service {
	return &Service{
		store:     store,
		catalog:   catalog,
		conflicts: NewConflictDetector(store),
		slots:     NewSlotCalculator(catalog, store),
		directory: directory,
		events:    pub,
		logger:    logger.With().Str("component", "scheduling").Logger(),
		now:       time.Now,
	}
}

// Create books a new appointment in [start,end) for the doctor and patient.
// The range must sit inside one of the doctor's availability windows and
// must not overlap any active appointment.
func (s *Service) Create(ctx context.Context, appt *Appointment) error {
	if appt.DoctorID == uuid.Nil {
		return fmt.Errorf("%w: doctor_id is required", ErrValidation)
	}
	if appt.PatientID == uuid.Nil {
		return fmt.Errorf("%w: patient_id is required", ErrValidation)
	}
	if err := s.validateRange(appt.StartTime, appt.EndTime); err != nil {
		return err
	}
	if err := s.checkDirectory(ctx, appt.DoctorID, appt.PatientID); err != nil {
		return err
	}

	if appt.ID == uuid.Nil {
		appt.ID = uuid.New()
	}
	appt.Status = StatusScheduled

	err := s.withRetry(ctx, func() error {
		return s.store.WithDoctorLock(ctx, appt.DoctorID, func(ctx context.Context) error {
			covered, err := s.catalog.Covers(ctx, appt.DoctorID, appt.StartTime, appt.EndTime)
			if err != nil {
				return err
			}
			if !covered {
				return fmt.Errorf("%w: no availability window covers the requested range", ErrOutOfSchedule)
			}
			if err := s.conflicts.Check(ctx, appt.DoctorID, appt.StartTime, appt.EndTime, uuid.Nil); err != nil {
				return err
			}
			return s.store.Insert(ctx, appt)
		})
	})
	if err != nil {
		return err
	}

	s.publish(ctx, appt, "", StatusScheduled)
	return nil
}

// Get returns one appointment by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.store.GetByID(ctx, id)
}

// ListForDoctor returns the doctor's non-canceled appointments intersecting
// [from,to), ordered by start time.
func (s *Service) ListForDoctor(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*Appointment, error) {
	if !from.Before(to) {
		return nil, fmt.Errorf("%w: from must precede to", ErrInvalidRange)
	}
	return s.store.ListActiveInRange(ctx, doctorID, from, to)
}

// FreeSlots returns open slots of exactly slotDuration for the doctor on the
// given day.
func (s *Service) FreeSlots(ctx context.Context, doctorID uuid.UUID, day time.Time, slotDuration time.Duration) ([]TimeSlot, error) {
	return s.slots.FreeSlots(ctx, doctorID, day, slotDuration)
}

// Confirm moves a scheduled appointment to confirmed.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status != StatusScheduled {
		return nil, fmt.Errorf("%w: cannot confirm a %s appointment", ErrInvalidTransition, appt.Status)
	}

	at := s.now()
	applied, err := s.store.ApplyStatus(ctx, StatusChange{
		ID:          id,
		Expect:      []AppointmentStatus{StatusScheduled},
		To:          StatusConfirmed,
		ConfirmedAt: &at,
	})
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, fmt.Errorf("%w: appointment %s changed concurrently", ErrConcurrentModification, id)
	}

	s.publish(ctx, appt, StatusScheduled, StatusConfirmed)
	return s.store.GetByID(ctx, id)
}

// Cancel cancels a scheduled or confirmed appointment. A reason is required;
// the record is kept and its slot becomes bookable again.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason string) (*Appointment, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: cancellation reason is required", ErrValidation)
	}
	appt, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status.Terminal() {
		return nil, fmt.Errorf("%w: cannot cancel a %s appointment", ErrInvalidTransition, appt.Status)
	}

	applied, err := s.store.ApplyStatus(ctx, StatusChange{
		ID:           id,
		Expect:       []AppointmentStatus{StatusScheduled, StatusConfirmed},
		To:           StatusCanceled,
		CancelReason: &reason,
	})
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, fmt.Errorf("%w: appointment %s changed concurrently", ErrConcurrentModification, id)
	}

	s.publish(ctx, appt, appt.Status, StatusCanceled)
	return s.store.GetByID(ctx, id)
}

// Complete marks a scheduled or confirmed appointment as completed. An
// appointment cannot be completed before its start time.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status.Terminal() {
		return nil, fmt.Errorf("%w: cannot complete a %s appointment", ErrInvalidTransition, appt.Status)
	}
	if s.now().Before(appt.StartTime) {
		return nil, fmt.Errorf("%w: appointment has not started yet", ErrInvalidTransition)
	}

	applied, err := s.store.ApplyStatus(ctx, StatusChange{
		ID:     id,
		Expect: []AppointmentStatus{StatusScheduled, StatusConfirmed},
		To:     StatusCompleted,
	})
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, fmt.Errorf("%w: appointment %s changed concurrently", ErrConcurrentModification, id)
	}

	s.publish(ctx, appt, appt.Status, StatusCompleted)
	return s.store.GetByID(ctx, id)
}

// Reschedule atomically books a replacement appointment in [newStart,newEnd)
// and cancels the original, linking the two. The old appointment is excluded
// from conflict checks so the new range may reuse its slot. If any step
// fails the original appointment is left untouched.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, newStart, newEnd time.Time) (*Appointment, error) {
	if err := s.validateRange(newStart, newEnd); err != nil {
		return nil, err
	}

	var replacement *Appointment
	err := s.withRetry(ctx, func() error {
		old, err := s.store.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if old.Status.Terminal() {
			return fmt.Errorf("%w: cannot reschedule a %s appointment", ErrInvalidTransition, old.Status)
		}

		return s.store.WithDoctorLock(ctx, old.DoctorID, func(ctx context.Context) error {
			covered, err := s.catalog.Covers(ctx, old.DoctorID, newStart, newEnd)
			if err != nil {
				return err
			}
			if !covered {
				return fmt.Errorf("%w: no availability window covers the requested range", ErrOutOfSchedule)
			}
			if err := s.conflicts.Check(ctx, old.DoctorID, newStart, newEnd, old.ID); err != nil {
				return err
			}

			next := &Appointment{
				ID:        uuid.New(),
				DoctorID:  old.DoctorID,
				PatientID: old.PatientID,
				StartTime: newStart,
				EndTime:   newEnd,
				Status:    StatusScheduled,
				Reason:    old.Reason,
				Note:      old.Note,
				Location:  old.Location,
				CreatedBy: old.CreatedBy,
			}
			if err := s.store.Insert(ctx, next); err != nil {
				return err
			}

			reason := "rescheduled"
			applied, err := s.store.ApplyStatus(ctx, StatusChange{
				ID:            old.ID,
				Expect:        []AppointmentStatus{StatusScheduled, StatusConfirmed},
				To:            StatusCanceled,
				CancelReason:  &reason,
				RescheduledTo: &next.ID,
			})
			if err != nil {
				return err
			}
			if !applied {
				return fmt.Errorf("%w: appointment %s changed concurrently", ErrConcurrentModification, old.ID)
			}
			replacement = next
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, replacement, "", StatusScheduled)
	return replacement, nil
}

func (s *Service) validateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: start and end times are required", ErrValidation)
	}
	if !start.Before(end) {
		return fmt.Errorf("%w: start must precede end", ErrInvalidRange)
	}
	if start.Before(s.now()) {
		return fmt.Errorf("%w: appointment cannot start in the past", ErrValidation)
	}
	return nil
}

func (s *Service) checkDirectory(ctx context.Context, doctorID, patientID uuid.UUID) error {
	ok, err := s.directory.DoctorExists(ctx, doctorID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: doctor %s", ErrNotFound, doctorID)
	}
	ok, err = s.directory.PatientExists(ctx, patientID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: patient %s", ErrNotFound, patientID)
	}
	return nil
}

// withRetry reruns fn on transient storage failures with exponential
// backoff. Domain errors are returned immediately.
func (s *Service) withRetry(ctx context.Context, fn func() error) error {
	wait := retryBaseWait
	var err error
	for attempt := 1; attempt <= retryAttempts; attempt++ {
		err = fn()
		if err == nil || !db.IsTransient(err) {
			return err
		}
		if attempt == retryAttempts {
			break
		}
		s.logger.Warn().Err(err).Int("attempt", attempt).Msg("transient storage error, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
	return err
}

func (s *Service) publish(ctx context.Context, appt *Appointment, from, to AppointmentStatus) {
	if s.events == nil || appt == nil {
		return
	}
	s.events.Publish(ctx, events.Event{
		AppointmentID: appt.ID,
		DoctorID:      appt.DoctorID,
		PatientID:     appt.PatientID,
		From:          string(from),
		To:            string(to),
		At:            s.now(),
	})
}
