package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("appointment not found")
	ErrSlotTaken         = errors.New("slot already booked")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	ListByPet(ctx context.Context, petID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListByClinic(ctx context.Context, clinicID uuid.UUID, from, to time.Time, limit, offset int) ([]*Appointment, int, error)
	// ListBlocking returns pending and confirmed appointments for the
	// clinic with dates in [from, to], ordered by date and start time.
	ListBlocking(ctx context.Context, clinicID uuid.UUID, from, to time.Time) ([]*Appointment, error)
	// HasBlockingOverlap reports whether any blocking appointment at
	// the clinic on the given date intersects [startMin, endMin).
	HasBlockingOverlap(ctx context.Context, clinicID uuid.UUID, date time.Time, startMin, endMin int) (bool, error)
}
