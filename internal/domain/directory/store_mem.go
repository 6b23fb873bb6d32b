package directory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory DoctorStore and PatientStore for tests and
// local development.
type MemoryStore struct {
	mu       sync.RWMutex
	doctors  map[uuid.UUID]Doctor
	patients map[uuid.UUID]Patient
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		doctors:  make(map[uuid.UUID]Doctor),
		patients: make(map[uuid.UUID]Patient),
	}
}

func (m *MemoryStore) Insert(ctx context.Context, d *Doctor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	d.CreatedAt, d.UpdatedAt = now, now
	m.doctors[d.ID] = *d
	return nil
}

func (m *MemoryStore) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.doctors[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (m *MemoryStore) List(ctx context.Context) ([]*Doctor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Doctor, 0, len(m.doctors))
	for _, d := range m.doctors {
		d := d
		out = append(out, &d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (m *MemoryStore) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.doctors[id]
	return ok && d.Active, nil
}

// Patients returns a PatientStore view over the same store.
func (m *MemoryStore) Patients() PatientStore {
	return (*memoryPatients)(m)
}

type memoryPatients MemoryStore

func (m *memoryPatients) Insert(ctx context.Context, p *Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	m.patients[p.ID] = *p
	return nil
}

func (m *memoryPatients) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *memoryPatients) List(ctx context.Context) ([]*Patient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Patient, 0, len(m.patients))
	for _, p := range m.patients {
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (m *memoryPatients) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.patients[id]
	return ok, nil
}
