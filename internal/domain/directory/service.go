package directory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service manages the doctor and patient registry. It also satisfies the
// scheduling domain's Directory interface.
type Service struct {
	doctors  DoctorStore
	patients PatientStore
	logger   zerolog.Logger
}

func NewService(doctors DoctorStore, patients PatientStore, logger zerolog.Logger) *Service {
	return &Service{
		doctors:  doctors,
		patients: patients,
		logger:   logger.With().Str("component", "directory").Logger(),
	}
}

func (s *Service) CreateDoctor(ctx context.Context, d *Doctor) error {
	if d.FullName == "" {
		return fmt.Errorf("%w: full_name is required", ErrValidation)
	}
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return s.doctors.Insert(ctx, d)
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) ListDoctors(ctx context.Context) ([]*Doctor, error) {
	return s.doctors.List(ctx)
}

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if p.FullName == "" {
		return fmt.Errorf("%w: full_name is required", ErrValidation)
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return s.patients.Insert(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context) ([]*Patient, error) {
	return s.patients.List(ctx)
}

// DoctorExists reports whether an active doctor with the id is registered.
func (s *Service) DoctorExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.doctors.Exists(ctx, id)
}

// PatientExists reports whether a patient with the id is registered.
func (s *Service) PatientExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.patients.Exists(ctx, id)
}
