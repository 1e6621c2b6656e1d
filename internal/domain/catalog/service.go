package catalog

import (
	"context"

	"github.com/google/uuid"
)

type Catalog struct {
	services Repository
}

func NewCatalog(services Repository) *Catalog {
	return &Catalog{services: services}
}

func (c *Catalog) Create(ctx context.Context, s *Service) error {
	if err := s.Validate(); err != nil {
		return err
	}
	s.IsActive = true
	return c.services.Create(ctx, s)
}

func (c *Catalog) Get(ctx context.Context, id uuid.UUID) (*Service, error) {
	return c.services.GetByID(ctx, id)
}

func (c *Catalog) Update(ctx context.Context, s *Service) error {
	if err := s.Validate(); err != nil {
		return err
	}
	return c.services.Update(ctx, s)
}

func (c *Catalog) Delete(ctx context.Context, id uuid.UUID) error {
	return c.services.Delete(ctx, id)
}

func (c *Catalog) List(ctx context.Context, category string, limit, offset int) ([]*Service, int, error) {
	return c.services.List(ctx, category, limit, offset)
}
