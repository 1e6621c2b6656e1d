package clinic

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("clinic not found")

// CandidateFilter narrows the clinic set for the matching engine.
type CandidateFilter struct {
	Specialties   []string
	EmergencyOnly bool
	Open24Hours   bool
	Limit         int
}

type Repository interface {
	Create(ctx context.Context, c *Clinic) error
	GetByID(ctx context.Context, id uuid.UUID) (*Clinic, error)
	Update(ctx context.Context, c *Clinic) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Clinic, int, error)
	FindCandidates(ctx context.Context, f CandidateFilter) ([]*Clinic, error)
}
