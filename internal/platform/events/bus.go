package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Event describes an appointment status change.
type Event struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	DoctorID      uuid.UUID `json:"doctor_id"`
	PatientID     uuid.UUID `json:"patient_id"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	At            time.Time `json:"at"`
}

// Listener receives appointment events. Implementations must not block;
// slow work should be handed off to their own goroutines.
type Listener interface {
	OnAppointmentEvent(ctx context.Context, ev Event)
}

// Publisher is the producer side of the bus.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

// Bus fans appointment events out to registered listeners from a single
// dispatch goroutine. Publish never blocks the caller; when the buffer is
// full the event is dropped and logged.
type Bus struct {
	logger zerolog.Logger
	ch     chan Event

	mu        sync.RWMutex
	listeners []Listener
}

func NewBus(logger zerolog.Logger, buffer int) *Bus {
	if buffer <= 0 {
		buffer = 256
	}
	return &Bus{
		logger: logger.With().Str("component", "event_bus").Logger(),
		ch:     make(chan Event, buffer),
	}
}

func (b *Bus) Subscribe(l Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, l)
}

func (b *Bus) Publish(_ context.Context, ev Event) {
	select {
	case b.ch <- ev:
	default:
		b.logger.Warn().
			Str("appointment_id", ev.AppointmentID.String()).
			Str("to", ev.To).
			Msg("event buffer full, dropping event")
	}
}

// Start runs the dispatch loop until ctx is canceled. Call it from its own
// goroutine.
func (b *Bus) Start(ctx context.Context) {
	b.logger.Info().Msg("event bus started")
	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("event bus stopped")
			return
		case ev := <-b.ch:
			b.dispatch(ctx, ev)
		}
	}
}

func (b *Bus) dispatch(ctx context.Context, ev Event) {
	b.mu.RLock()
	listeners := make([]Listener, len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.RUnlock()

	for _, l := range listeners {
		l.OnAppointmentEvent(ctx, ev)
	}
}

// LogListener writes every event to the log. It doubles as a liveness check
// for the dispatch loop in development.
type LogListener struct {
	Logger zerolog.Logger
}

func (l *LogListener) OnAppointmentEvent(_ context.Context, ev Event) {
	l.Logger.Info().
		Str("appointment_id", ev.AppointmentID.String()).
		Str("doctor_id", ev.DoctorID.String()).
		Str("from", ev.From).
		Str("to", ev.To).
		Time("at", ev.At).
		Msg("appointment event")
}
