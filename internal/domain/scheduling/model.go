package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCanceled  AppointmentStatus = "canceled"
	StatusNoShow    AppointmentStatus = "no_show"
)

// Terminal reports whether no further transitions are allowed from s.
func (s AppointmentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCanceled || s == StatusNoShow
}

// Active reports whether the appointment still occupies its time range.
// Every status except canceled counts as active.
func (s AppointmentStatus) Active() bool {
	return s != StatusCanceled
}

// Appointment maps to the appointment table. Rows are never deleted;
// cancellation and no-show are recorded as status changes.
type Appointment struct {
	ID            uuid.UUID         `db:"id" json:"id"`
	DoctorID      uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	PatientID     uuid.UUID         `db:"patient_id" json:"patient_id"`
	StartTime     time.Time         `db:"start_time" json:"start_time"`
	EndTime       time.Time         `db:"end_time" json:"end_time"`
	Status        AppointmentStatus `db:"status" json:"status"`
	Reason        *string           `db:"reason" json:"reason,omitempty"`
	CancelReason  *string           `db:"cancel_reason" json:"cancel_reason,omitempty"`
	Note          *string           `db:"note" json:"note,omitempty"`
	Location      *string           `db:"location" json:"location,omitempty"`
	ConfirmedAt   *time.Time        `db:"confirmed_at" json:"confirmed_at,omitempty"`
	RescheduledTo *uuid.UUID        `db:"rescheduled_to" json:"rescheduled_to,omitempty"`
	CreatedBy     *uuid.UUID        `db:"created_by" json:"created_by,omitempty"`
	CreatedAt     time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time         `db:"updated_at" json:"updated_at"`
}

// Overlaps reports whether [s1,e1) and [s2,e2) intersect. Ranges are
// half-open, so a booking ending exactly when another starts does not overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// AvailabilityWindow is a recurring weekly block of bookable time for a
// doctor, expressed as minutes since midnight on a weekday. EndMinute is
// exclusive and may be 1440 for a window that runs to midnight.
type AvailabilityWindow struct {
	ID          uuid.UUID    `db:"id" json:"id"`
	DoctorID    uuid.UUID    `db:"doctor_id" json:"doctor_id"`
	Weekday     time.Weekday `db:"weekday" json:"weekday"`
	StartMinute int          `db:"start_minute" json:"start_minute"`
	EndMinute   int          `db:"end_minute" json:"end_minute"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

// Interval materializes the window on the calendar date of day, returning
// the concrete [start,end) range in day's location.
func (w *AvailabilityWindow) Interval(day time.Time) (time.Time, time.Time) {
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	start := midnight.Add(time.Duration(w.StartMinute) * time.Minute)
	end := midnight.Add(time.Duration(w.EndMinute) * time.Minute)
	return start, end
}

// Contains reports whether the range [start,end) falls entirely inside the
// window when materialized on start's date. The weekday must match.
func (w *AvailabilityWindow) Contains(start, end time.Time) bool {
	if start.Weekday() != w.Weekday {
		return false
	}
	ws, we := w.Interval(start)
	return !start.Before(ws) && !end.After(we)
}

// TimeSlot is a single bookable interval offered to a caller.
type TimeSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// StatusChange is a conditional status update: the transition is applied
// only if the appointment's current status is one of Expect.
type StatusChange struct {
	ID            uuid.UUID
	Expect        []AppointmentStatus
	To            AppointmentStatus
	CancelReason  *string
	ConfirmedAt   *time.Time
	RescheduledTo *uuid.UUID
}
