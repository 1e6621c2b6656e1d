package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vetlink/vetlink/internal/domain/catalog"
	"github.com/vetlink/vetlink/internal/domain/clinic"
	"github.com/vetlink/vetlink/internal/platform/lock"
)

// ClinicGetter is the slice of the clinic service booking needs.
type ClinicGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*clinic.Clinic, error)
}

// ServiceGetter is the slice of the catalog booking needs.
type ServiceGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*catalog.Service, error)
}

type Service struct {
	appointments Repository
	clinics      ClinicGetter
	catalog      ServiceGetter
	locker       lock.Locker
	now          func() time.Time
}

func NewService(appointments Repository, clinics ClinicGetter, cat ServiceGetter, locker lock.Locker) *Service {
	return &Service{
		appointments: appointments,
		clinics:      clinics,
		catalog:      cat,
		locker:       locker,
		now:          time.Now,
	}
}

// WithClock overrides the wall clock. Test use only.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Book validates the request, serializes on the slot's lock key, and
// inserts the appointment. Conflicting concurrent attempts either lose
// the lock race or hit the overlap re-check; the unique index on
// (clinic, veterinarian, date, start_time) is the final backstop.
func (s *Service) Book(ctx context.Context, a *Appointment) error {
	if err := a.validate(); err != nil {
		return err
	}

	svc, err := s.catalog.Get(ctx, a.ServiceID)
	if err != nil {
		return fmt.Errorf("service lookup: %w", err)
	}
	if !svc.IsActive {
		return fmt.Errorf("service %s is not offered", svc.Name)
	}
	a.DurationMinutes = svc.DurationMinutes

	startMin, err := a.StartMinutes()
	if err != nil {
		return err
	}
	endMin := startMin + a.DurationMinutes
	a.EndTime = clinic.FormatClock(endMin)

	cl, err := s.clinics.Get(ctx, a.ClinicID)
	if err != nil {
		return fmt.Errorf("clinic lookup: %w", err)
	}
	if !cl.IsActive {
		return fmt.Errorf("clinic %s is not active", cl.Name)
	}
	if err := s.checkClinicOpen(cl, a.Date, startMin, endMin); err != nil {
		return err
	}

	startAt := a.Date.Add(time.Duration(startMin) * time.Minute)
	if !startAt.After(s.now()) {
		return fmt.Errorf("appointment must start in the future")
	}

	if a.Status == "" {
		a.Status = StatusPending
	}

	return s.locker.WithBookingLock(ctx, a.LockKey(), func(ctx context.Context) error {
		taken, err := s.appointments.HasBlockingOverlap(ctx, a.ClinicID, a.Date, startMin, endMin)
		if err != nil {
			return err
		}
		if taken {
			return ErrSlotTaken
		}
		return s.appointments.Create(ctx, a)
	})
}

func (s *Service) checkClinicOpen(cl *clinic.Clinic, date time.Time, startMin, endMin int) error {
	oh := cl.OperatingHours
	if oh == nil {
		return fmt.Errorf("clinic %s has no operating hours on record", cl.Name)
	}
	if !oh.OpenOn(date.Weekday()) {
		return fmt.Errorf("clinic is closed on %s", date.Weekday())
	}
	if oh.Is24Hours {
		return nil
	}
	openMin, err := clinic.ParseClock(oh.OpeningTime)
	if err != nil {
		return fmt.Errorf("clinic hours: %w", err)
	}
	closeMin, err := clinic.ParseClock(oh.ClosingTime)
	if err != nil {
		return fmt.Errorf("clinic hours: %w", err)
	}
	if startMin < openMin || endMin > closeMin {
		return fmt.Errorf("requested time is outside clinic hours %s-%s", oh.OpeningTime, oh.ClosingTime)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

func (s *Service) Confirm(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, id, StatusConfirmed)
}

func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, id, StatusCompleted)
}

// Cancel releases the appointment's interval; cancelled appointments
// no longer block slot generation.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, id, StatusCancelled)
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, status string) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, status)
	}
	if err := s.appointments.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	a.Status = status
	return a, nil
}

func (s *Service) ListByPet(ctx context.Context, petID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByPet(ctx, petID, limit, offset)
}

func (s *Service) ListByClinic(ctx context.Context, clinicID uuid.UUID, from, to time.Time, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByClinic(ctx, clinicID, from, to, limit, offset)
}

// ListBlocking exposes the matcher's view of booked intervals.
func (s *Service) ListBlocking(ctx context.Context, clinicID uuid.UUID, from, to time.Time) ([]*Appointment, error) {
	return s.appointments.ListBlocking(ctx, clinicID, from, to)
}

// IsConflict reports whether the error is a booking collision a client
// should retry with a different slot.
func IsConflict(err error) bool {
	return errors.Is(err, ErrSlotTaken) || errors.Is(err, lock.ErrNotAcquired)
}
