package readings

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record validates and stores a new reading. The classifier accepts any
// value; ingestion is where implausible payloads are rejected.
func (s *Service) Record(ctx context.Context, r *Reading) error {
	if r.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if r.RecordedAt.IsZero() {
		r.RecordedAt = time.Now().UTC()
	}
	if r.HeartRate < 0 {
		return fmt.Errorf("heart_rate must not be negative")
	}
	if r.BPSystolic < 0 || r.BPDiastolic < 0 {
		return fmt.Errorf("blood pressure must not be negative")
	}
	if r.OxygenPct < 0 || r.OxygenPct > 100 {
		return fmt.Errorf("oxygen_pct must be between 0 and 100")
	}
	return s.repo.Create(ctx, r)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Reading, error) {
	return s.repo.GetByID(ctx, id)
}

// Latest returns the most recent reading for a patient, or ErrNoReadings.
func (s *Service) Latest(ctx context.Context, patientID uuid.UUID) (*Reading, error) {
	return s.repo.Latest(ctx, patientID)
}

// ListRange returns readings for a patient between from and to, ascending by
// recorded_at. A zero to means "up to now".
func (s *Service) ListRange(ctx context.Context, patientID uuid.UUID, from, to time.Time, limit, offset int) ([]*Reading, int, error) {
	if to.IsZero() {
		to = time.Now().UTC()
	}
	if to.Before(from) {
		return nil, 0, fmt.Errorf("to must not be before from")
	}
	return s.repo.ListRange(ctx, patientID, from, to, limit, offset)
}

// ListLastDays returns the unpaginated reading window covering the last n
// days, the shape the analysis operations consume.
func (s *Service) ListLastDays(ctx context.Context, patientID uuid.UUID, days int) ([]*Reading, error) {
	if days <= 0 {
		return nil, fmt.Errorf("days must be positive")
	}
	since := time.Now().UTC().AddDate(0, 0, -days)
	return s.repo.ListSince(ctx, patientID, since)
}

// LatestPerPatient returns the newest reading of every patient that has one.
func (s *Service) LatestPerPatient(ctx context.Context) ([]*Reading, error) {
	return s.repo.LatestPerPatient(ctx)
}
