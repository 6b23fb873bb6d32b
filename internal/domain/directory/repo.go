package directory

import (
	"context"

	"github.com/google/uuid"
)

// DoctorStore persists doctors.
type DoctorStore interface {
	Insert(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	List(ctx context.Context) ([]*Doctor, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// PatientStore persists patients.
type PatientStore interface {
	Insert(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	List(ctx context.Context) ([]*Patient, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}
