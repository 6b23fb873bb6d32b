package scheduling

import (
	"context"
	"errors"
	"hash/fnv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicd/clinicd/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// advisory lock class for per-doctor booking serialization
const doctorLockClass = 1

// =========== Appointment Store ===========

type appointmentStorePG struct{ pool *pgxpool.Pool }

func NewAppointmentStorePG(pool *pgxpool.Pool) AppointmentStore {
	return &appointmentStorePG{pool: pool}
}

func (r *appointmentStorePG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const apptCols = `id, doctor_id, patient_id, start_time, end_time, status,
	reason, cancel_reason, note, location, confirmed_at, rescheduled_to,
	created_by, created_at, updated_at`

func (r *appointmentStorePG) scanAppt(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.DoctorID, &a.PatientID, &a.StartTime, &a.EndTime, &a.Status,
		&a.Reason, &a.CancelReason, &a.Note, &a.Location, &a.ConfirmedAt, &a.RescheduledTo,
		&a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &a, err
}

func (r *appointmentStorePG) Insert(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO appointment (id, doctor_id, patient_id, start_time, end_time, status,
			reason, note, location, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at, updated_at`,
		a.ID, a.DoctorID, a.PatientID, a.StartTime, a.EndTime, a.Status,
		a.Reason, a.Note, a.Location, a.CreatedBy).Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (r *appointmentStorePG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return r.scanAppt(r.conn(ctx).QueryRow(ctx, `SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
}

func (r *appointmentStorePG) ListActiveInRange(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+` FROM appointment
		WHERE doctor_id = $1 AND status <> $2 AND start_time < $3 AND end_time > $4
		ORDER BY start_time ASC`,
		doctorID, StatusCanceled, to, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := r.scanAppt(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *appointmentStorePG) ListStale(ctx context.Context, cutoff time.Time) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+` FROM appointment
		WHERE status = ANY($1) AND start_time < $2
		ORDER BY start_time ASC`,
		[]string{string(StatusScheduled), string(StatusConfirmed)}, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := r.scanAppt(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *appointmentStorePG) ApplyStatus(ctx context.Context, change StatusChange) (bool, error) {
	expect := make([]string, len(change.Expect))
	for i, s := range change.Expect {
		expect[i] = string(s)
	}
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment
		SET status = $2,
			cancel_reason = COALESCE($3, cancel_reason),
			confirmed_at = COALESCE($4, confirmed_at),
			rescheduled_to = COALESCE($5, rescheduled_to),
			updated_at = NOW()
		WHERE id = $1 AND status = ANY($6)`,
		change.ID, change.To, change.CancelReason, change.ConfirmedAt, change.RescheduledTo, expect)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *appointmentStorePG) WithDoctorLock(ctx context.Context, doctorID uuid.UUID, fn func(ctx context.Context) error) error {
	return db.InTx(ctx, r.pool, func(ctx context.Context) error {
		if err := db.AdvisoryLock(ctx, db.TxFromContext(ctx), doctorLockClass, doctorLockKey(doctorID)); err != nil {
			return err
		}
		return fn(ctx)
	})
}

// doctorLockKey hashes a doctor ID into the 32-bit advisory lock keyspace.
func doctorLockKey(doctorID uuid.UUID) int32 {
	h := fnv.New32a()
	h.Write(doctorID[:])
	return int32(h.Sum32())
}

// =========== Availability Store ===========

type availabilityStorePG struct{ pool *pgxpool.Pool }

func NewAvailabilityStorePG(pool *pgxpool.Pool) AvailabilityStore {
	return &availabilityStorePG{pool: pool}
}

func (r *availabilityStorePG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const windowCols = `id, doctor_id, weekday, start_minute, end_minute, created_at, updated_at`

func (r *availabilityStorePG) scanWindow(row pgx.Row) (*AvailabilityWindow, error) {
	var w AvailabilityWindow
	err := row.Scan(&w.ID, &w.DoctorID, &w.Weekday, &w.StartMinute, &w.EndMinute, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrWindowNotFound
	}
	return &w, err
}

func (r *availabilityStorePG) InsertWindow(ctx context.Context, w *AvailabilityWindow) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO availability_window (id, doctor_id, weekday, start_minute, end_minute)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at, updated_at`,
		w.ID, w.DoctorID, w.Weekday, w.StartMinute, w.EndMinute).Scan(&w.CreatedAt, &w.UpdatedAt)
}

func (r *availabilityStorePG) DeleteWindow(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM availability_window WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrWindowNotFound
	}
	return nil
}

func (r *availabilityStorePG) ListWindows(ctx context.Context, doctorID uuid.UUID) ([]*AvailabilityWindow, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+windowCols+` FROM availability_window
		WHERE doctor_id = $1 ORDER BY weekday ASC, start_minute ASC`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*AvailabilityWindow
	for rows.Next() {
		w, err := r.scanWindow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, w)
	}
	return items, rows.Err()
}

func (r *availabilityStorePG) ListWindowsForDay(ctx context.Context, doctorID uuid.UUID, weekday time.Weekday) ([]*AvailabilityWindow, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+windowCols+` FROM availability_window
		WHERE doctor_id = $1 AND weekday = $2 ORDER BY start_minute ASC`, doctorID, weekday)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*AvailabilityWindow
	for rows.Next() {
		w, err := r.scanWindow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, w)
	}
	return items, rows.Err()
}
