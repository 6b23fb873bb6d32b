package scheduling

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory implementation of AppointmentStore and
// AvailabilityStore. It backs unit tests and single-process deployments
// that run without a database.
type MemoryStore struct {
	mu      sync.RWMutex
	appts   map[uuid.UUID]*Appointment
	windows map[uuid.UUID]*AvailabilityWindow

	// lockMu guards locks; each doctor gets a dedicated mutex so booking
	// critical sections for different doctors do not serialize each other.
	lockMu sync.Mutex
	locks  map[uuid.UUID]*sync.Mutex
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		appts:   make(map[uuid.UUID]*Appointment),
		windows: make(map[uuid.UUID]*AvailabilityWindow),
		locks:   make(map[uuid.UUID]*sync.Mutex),
	}
}

func (m *MemoryStore) Insert(_ context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now

	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.appts[a.ID] = &cp
	return nil
}

func (m *MemoryStore) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.appts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *MemoryStore) ListActiveInRange(_ context.Context, doctorID uuid.UUID, from, to time.Time) ([]*Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var results []*Appointment
	for _, a := range m.appts {
		if a.DoctorID != doctorID || !a.Status.Active() {
			continue
		}
		if !Overlaps(a.StartTime, a.EndTime, from, to) {
			continue
		}
		cp := *a
		results = append(results, &cp)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].StartTime.Before(results[j].StartTime)
	})
	return results, nil
}

func (m *MemoryStore) ListStale(_ context.Context, cutoff time.Time) ([]*Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var results []*Appointment
	for _, a := range m.appts {
		if (a.Status != StatusScheduled && a.Status != StatusConfirmed) || !a.StartTime.Before(cutoff) {
			continue
		}
		cp := *a
		results = append(results, &cp)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].StartTime.Before(results[j].StartTime)
	})
	return results, nil
}

func (m *MemoryStore) ApplyStatus(_ context.Context, change StatusChange) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.appts[change.ID]
	if !ok {
		return false, ErrNotFound
	}

	matched := false
	for _, s := range change.Expect {
		if a.Status == s {
			matched = true
			break
		}
	}
	if !matched {
		return false, nil
	}

	a.Status = change.To
	if change.CancelReason != nil {
		a.CancelReason = change.CancelReason
	}
	if change.ConfirmedAt != nil {
		a.ConfirmedAt = change.ConfirmedAt
	}
	if change.RescheduledTo != nil {
		a.RescheduledTo = change.RescheduledTo
	}
	a.UpdatedAt = time.Now()
	return true, nil
}

func (m *MemoryStore) WithDoctorLock(ctx context.Context, doctorID uuid.UUID, fn func(ctx context.Context) error) error {
	m.lockMu.Lock()
	lock, ok := m.locks[doctorID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[doctorID] = lock
	}
	m.lockMu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	return fn(ctx)
}

func (m *MemoryStore) InsertWindow(_ context.Context, w *AvailabilityWindow) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	now := time.Now()
	w.CreatedAt = now
	w.UpdatedAt = now

	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *w
	m.windows[w.ID] = &cp
	return nil
}

func (m *MemoryStore) DeleteWindow(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.windows[id]; !ok {
		return ErrWindowNotFound
	}
	delete(m.windows, id)
	return nil
}

func (m *MemoryStore) ListWindows(_ context.Context, doctorID uuid.UUID) ([]*AvailabilityWindow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var results []*AvailabilityWindow
	for _, w := range m.windows {
		if w.DoctorID != doctorID {
			continue
		}
		cp := *w
		results = append(results, &cp)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Weekday != results[j].Weekday {
			return results[i].Weekday < results[j].Weekday
		}
		return results[i].StartMinute < results[j].StartMinute
	})
	return results, nil
}

func (m *MemoryStore) ListWindowsForDay(_ context.Context, doctorID uuid.UUID, weekday time.Weekday) ([]*AvailabilityWindow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var results []*AvailabilityWindow
	for _, w := range m.windows {
		if w.DoctorID != doctorID || w.Weekday != weekday {
			continue
		}
		cp := *w
		results = append(results, &cp)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].StartMinute < results[j].StartMinute
	})
	return results, nil
}
