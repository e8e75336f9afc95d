package readings

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNoReadings is returned when a patient has no recorded readings in the
// requested scope. Callers that compute health status treat it as Unknown,
// not as a failure.
var ErrNoReadings = errors.New("no readings recorded")

type Repository interface {
	Create(ctx context.Context, r *Reading) error
	GetByID(ctx context.Context, id uuid.UUID) (*Reading, error)
	Latest(ctx context.Context, patientID uuid.UUID) (*Reading, error)
	ListRange(ctx context.Context, patientID uuid.UUID, from, to time.Time, limit, offset int) ([]*Reading, int, error)
	ListSince(ctx context.Context, patientID uuid.UUID, since time.Time) ([]*Reading, error)
	LatestPerPatient(ctx context.Context) ([]*Reading, error)
}
