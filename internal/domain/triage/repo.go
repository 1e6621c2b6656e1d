package triage

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("symptom rule not found")

type Repository interface {
	Create(ctx context.Context, r *Rule) error
	GetByID(ctx context.Context, id uuid.UUID) (*Rule, error)
	Update(ctx context.Context, r *Rule) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListActive(ctx context.Context) ([]*Rule, error)
	// ListForSymptoms returns active rules whose symptom is in the set.
	ListForSymptoms(ctx context.Context, symptoms []string) ([]*Rule, error)
}
