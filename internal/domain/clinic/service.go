package clinic

import (
	"context"

	"github.com/google/uuid"
)

type Service struct {
	clinics Repository
}

func NewService(clinics Repository) *Service {
	return &Service{clinics: clinics}
}

func (s *Service) Create(ctx context.Context, c *Clinic) error {
	if len(c.Specialties) == 0 {
		c.Specialties = []string{SpecialtyGeneral}
	}
	if err := c.Validate(); err != nil {
		return err
	}
	c.IsActive = true
	return s.clinics.Create(ctx, c)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Clinic, error) {
	return s.clinics.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, c *Clinic) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return s.clinics.Update(ctx, c)
}

// Deactivate soft-deletes a clinic so its history stays intact.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	c, err := s.clinics.GetByID(ctx, id)
	if err != nil {
		return err
	}
	c.IsActive = false
	return s.clinics.Update(ctx, c)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.clinics.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Clinic, int, error) {
	return s.clinics.List(ctx, limit, offset)
}

func (s *Service) FindCandidates(ctx context.Context, f CandidateFilter) ([]*Clinic, error) {
	return s.clinics.FindCandidates(ctx, f)
}
