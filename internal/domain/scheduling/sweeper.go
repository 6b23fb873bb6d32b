package scheduling

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicd/clinicd/internal/platform/events"
)

// DefaultNoShowGrace is how long past the start time an appointment may
// sit before the sweeper marks it a no-show.
const DefaultNoShowGrace = 15 * time.Minute

// NoShowSweeper marks overdue scheduled and confirmed appointments as
// no-shows. The sweep is idempotent: records already moved to a terminal
// status are skipped by the conditional update.
type NoShowSweeper struct {
	store  AppointmentStore
	events events.Publisher
	logger zerolog.Logger
	grace  time.Duration
	now    func() time.Time
}

func NewNoShowSweeper(store AppointmentStore, pub events.Publisher, logger zerolog.Logger, grace time.Duration) *NoShowSweeper {
	if grace <= 0 {
		grace = DefaultNoShowGrace
	}
	return &NoShowSweeper{
		store:  store,
		events: pub,
		logger: logger.With().Str("component", "noshow_sweeper").Logger(),
		grace:  grace,
		now:    time.Now,
	}
}

// Sweep transitions every scheduled or confirmed appointment whose start
// time is more than the grace period in the past to no-show. A failure on
// one record is logged and does not stop the sweep or surface to the
// caller; only a failure to list candidates does. Returns the count of
// transitioned records.
func (w *NoShowSweeper) Sweep(ctx context.Context) (int, error) {
	cutoff := w.now().Add(-w.grace)

	stale, err := w.store.ListStale(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	var swept int
	for _, appt := range stale {
		applied, err := w.store.ApplyStatus(ctx, StatusChange{
			ID:     appt.ID,
			Expect: []AppointmentStatus{StatusScheduled, StatusConfirmed},
			To:     StatusNoShow,
		})
		if err != nil {
			w.logger.Error().Err(err).
				Str("appointment_id", appt.ID.String()).
				Msg("failed to mark no-show")
			continue
		}
		if !applied {
			// Changed under us since the list query; nothing to do.
			continue
		}
		swept++
		if w.events != nil {
			w.events.Publish(ctx, events.Event{
				AppointmentID: appt.ID,
				DoctorID:      appt.DoctorID,
				PatientID:     appt.PatientID,
				From:          string(appt.Status),
				To:            string(StatusNoShow),
				At:            w.now(),
			})
		}
	}

	if swept > 0 {
		w.logger.Info().Int("count", swept).Msg("no-show sweep completed")
	}
	return swept, nil
}
