package medications

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, m *Medication) error
	GetByID(ctx context.Context, id uuid.UUID) (*Medication, error)
	Update(ctx context.Context, m *Medication) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Medication, int, error)
	// AllByPatient returns every medication for a patient, unpaginated.
	// The daily schedule is built from the full list.
	AllByPatient(ctx context.Context, patientID uuid.UUID) ([]*Medication, error)
}
