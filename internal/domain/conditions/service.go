package conditions

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

var validSeverities = map[string]bool{
	"mild": true, "moderate": true, "severe": true, "critical": true,
}

var validStatuses = map[string]bool{
	"active": true, "managed": true, "resolved": true,
}

func (s *Service) validate(c *Condition) error {
	if c.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if c.Severity != nil && !validSeverities[*c.Severity] {
		return fmt.Errorf("invalid severity: %s", *c.Severity)
	}
	if c.Status == "" {
		c.Status = "active"
	}
	if !validStatuses[c.Status] {
		return fmt.Errorf("invalid status: %s", c.Status)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, c *Condition) error {
	if err := s.validate(c); err != nil {
		return err
	}
	return s.repo.Create(ctx, c)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Condition, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, c *Condition) error {
	if err := s.validate(c); err != nil {
		return err
	}
	return s.repo.Update(ctx, c)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// ListByPatient returns a patient's conditions, optionally filtered by
// status. Any status transition is legal, so the filter is a plain match.
func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, status string, limit, offset int) ([]*Condition, int, error) {
	if status != "" && !validStatuses[status] {
		return nil, 0, fmt.Errorf("invalid status: %s", status)
	}
	return s.repo.ListByPatient(ctx, patientID, status, limit, offset)
}
