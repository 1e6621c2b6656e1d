package matching

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vetlink/vetlink/internal/domain/clinic"
	"github.com/vetlink/vetlink/internal/domain/scheduling"
)

// displaySlotLimit caps the per-clinic slot list in a matching
// response; NextAvailable always carries the earliest one.
const displaySlotLimit = 3

// ClinicSource is the slice of the clinic domain the matcher reads.
type ClinicSource interface {
	Get(ctx context.Context, id uuid.UUID) (*clinic.Clinic, error)
	FindCandidates(ctx context.Context, f clinic.CandidateFilter) ([]*clinic.Clinic, error)
}

// AppointmentSource supplies the booked intervals that block slots.
type AppointmentSource interface {
	ListBlocking(ctx context.Context, clinicID uuid.UUID, from, to time.Time) ([]*scheduling.Appointment, error)
}

type Service struct {
	clinics       ClinicSource
	appointments  AppointmentSource
	maxCandidates int
	log           zerolog.Logger
	now           func() time.Time
}

func NewService(clinics ClinicSource, appointments AppointmentSource, maxCandidates int, log zerolog.Logger) *Service {
	return &Service{
		clinics:       clinics,
		appointments:  appointments,
		maxCandidates: maxCandidates,
		log:           log,
		now:           time.Now,
	}
}

// WithClock overrides the wall clock. Test use only.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// FindBestClinics filters candidate clinics by the triage result,
// computes each one's free slots inside the urgency window, and
// returns the survivors ordered by score descending. Clinics with no
// open slots are dropped. Candidates are evaluated concurrently;
// their slot generation is read-only and independent.
//
// The result is advisory: nothing here reserves a slot, and a
// reported interval can be taken by the time a booking arrives. The
// booking path owns the double-booking guard.
func (s *Service) FindBestClinics(ctx context.Context, triage *TriageResult, userLoc *Location) ([]*ScoredClinic, error) {
	if err := triage.Validate(); err != nil {
		return nil, err
	}

	filter := clinic.CandidateFilter{
		Specialties: triage.SuggestedSpecialties,
		Limit:       s.maxCandidates,
	}
	if triage.Urgency == UrgencyEmergency {
		filter.EmergencyOnly = true
		filter.Open24Hours = true
	}

	candidates, err := s.clinics.FindCandidates(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("candidate query: %w", err)
	}

	window := WindowFor(triage.Urgency, s.now())
	duration := triage.EstimatedDurationMinutes
	if duration <= 0 {
		duration = DefaultSlotDurationMinutes
	}

	results := make([]*ScoredClinic, len(candidates))
	errs := make([]error, len(candidates))
	var wg sync.WaitGroup
	for i, cl := range candidates {
		wg.Add(1)
		go func(i int, cl *clinic.Clinic) {
			defer wg.Done()
			results[i], errs[i] = s.evaluate(ctx, cl, triage, userLoc, window, duration)
		}(i, cl)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	var scored []*ScoredClinic
	for _, r := range results {
		if r != nil {
			scored = append(scored, r)
		}
	}

	// Stable sort keeps discovery order among equal scores.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored, nil
}

// evaluate computes one clinic's slots and score. A clinic without
// usable operating hours contributes nothing rather than failing the
// batch.
func (s *Service) evaluate(ctx context.Context, cl *clinic.Clinic, triage *TriageResult, userLoc *Location, window Window, duration int) (*ScoredClinic, error) {
	if cl.OperatingHours == nil {
		s.log.Warn().
			Str("clinic_id", cl.ID.String()).
			Str("clinic", cl.Name).
			Msg("clinic has no operating hours, skipping")
		return nil, nil
	}

	appts, err := s.appointments.ListBlocking(ctx, cl.ID, dateOf(window.Start), dateOf(window.End))
	if err != nil {
		return nil, fmt.Errorf("appointments for clinic %s: %w", cl.ID, err)
	}

	slots := GenerateSlots(cl, appts, window, duration)
	if len(slots) == 0 {
		return nil, nil
	}

	sc := &ScoredClinic{
		Clinic:         cl,
		Score:          Score(cl, triage, userLoc),
		NextAvailable:  &slots[0],
		AvailableSlots: slots,
	}
	if len(sc.AvailableSlots) > displaySlotLimit {
		sc.AvailableSlots = sc.AvailableSlots[:displaySlotLimit]
	}
	if km, ok := DistanceKm(cl, userLoc); ok {
		sc.DistanceKm = &km
	}
	return sc, nil
}

// AvailabilityQuery bounds a single-clinic availability check. When
// StartDate and EndDate are set they replace the urgency window.
type AvailabilityQuery struct {
	DurationMinutes int
	Urgency         string
	StartDate       *time.Time
	EndDate         *time.Time
}

// CheckClinicAvailability runs slot generation for one clinic.
// Returns clinic.ErrNotFound when the id does not resolve.
func (s *Service) CheckClinicAvailability(ctx context.Context, clinicID uuid.UUID, q AvailabilityQuery) ([]CandidateSlot, error) {
	cl, err := s.clinics.Get(ctx, clinicID)
	if err != nil {
		return nil, err
	}

	duration := q.DurationMinutes
	if duration <= 0 {
		duration = DefaultSlotDurationMinutes
	}

	var window Window
	if q.StartDate != nil && q.EndDate != nil {
		window = Window{Start: *q.StartDate, End: endOfDay(*q.EndDate)}
	} else {
		urgency := q.Urgency
		if urgency == "" {
			urgency = UrgencyRoutine
		}
		window = WindowFor(urgency, s.now())
	}
	if window.End.Before(window.Start) {
		return nil, fmt.Errorf("end date precedes start date")
	}

	appts, err := s.appointments.ListBlocking(ctx, cl.ID, dateOf(window.Start), dateOf(window.End))
	if err != nil {
		return nil, fmt.Errorf("appointments for clinic %s: %w", cl.ID, err)
	}
	return GenerateSlots(cl, appts, window, duration), nil
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return dateOf(t).AddDate(0, 0, 1).Add(-time.Minute)
}
