package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vetlink/vetlink/internal/domain/catalog"
	"github.com/vetlink/vetlink/internal/domain/clinic"
	"github.com/vetlink/vetlink/internal/platform/lock"
)

// -- Mocks --

type mockApptRepo struct {
	appts map[uuid.UUID]*Appointment
}

func newMockApptRepo() *mockApptRepo {
	return &mockApptRepo{appts: make(map[uuid.UUID]*Appointment)}
}

func (m *mockApptRepo) Create(_ context.Context, a *Appointment) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = time.Now()
	m.appts[a.ID] = a
	return nil
}

func (m *mockApptRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.appts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

func (m *mockApptRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	a, ok := m.appts[id]
	if !ok {
		return ErrNotFound
	}
	a.Status = status
	return nil
}

func (m *mockApptRepo) ListByPet(_ context.Context, petID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var result []*Appointment
	for _, a := range m.appts {
		if a.PetID == petID {
			result = append(result, a)
		}
	}
	return result, len(result), nil
}

func (m *mockApptRepo) ListByClinic(_ context.Context, clinicID uuid.UUID, from, to time.Time, limit, offset int) ([]*Appointment, int, error) {
	var result []*Appointment
	for _, a := range m.appts {
		if a.ClinicID == clinicID && !a.Date.Before(from) && !a.Date.After(to) {
			result = append(result, a)
		}
	}
	return result, len(result), nil
}

func (m *mockApptRepo) ListBlocking(_ context.Context, clinicID uuid.UUID, from, to time.Time) ([]*Appointment, error) {
	var result []*Appointment
	for _, a := range m.appts {
		if a.ClinicID == clinicID && a.IsBlocking() && !a.Date.Before(from) && !a.Date.After(to) {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *mockApptRepo) HasBlockingOverlap(ctx context.Context, clinicID uuid.UUID, date time.Time, startMin, endMin int) (bool, error) {
	appts, err := m.ListBlocking(ctx, clinicID, date, date)
	if err != nil {
		return false, err
	}
	for _, a := range appts {
		if a.Overlaps(startMin, endMin) {
			return true, nil
		}
	}
	return false, nil
}

type mockClinicGetter struct {
	clinics map[uuid.UUID]*clinic.Clinic
}

func (m *mockClinicGetter) Get(_ context.Context, id uuid.UUID) (*clinic.Clinic, error) {
	c, ok := m.clinics[id]
	if !ok {
		return nil, clinic.ErrNotFound
	}
	return c, nil
}

type mockServiceGetter struct {
	services map[uuid.UUID]*catalog.Service
}

func (m *mockServiceGetter) Get(_ context.Context, id uuid.UUID) (*catalog.Service, error) {
	s, ok := m.services[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return s, nil
}

// -- Fixtures --

type fixture struct {
	svc      *Service
	repo     *mockApptRepo
	clinicID uuid.UUID
	svcID    uuid.UUID
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cl := &clinic.Clinic{
		ID:       uuid.New(),
		Name:     "Harbor Animal Hospital",
		IsActive: true,
		OperatingHours: &clinic.OperatingHours{
			OpeningTime: "09:00",
			ClosingTime: "17:00",
		},
	}
	catSvc := &catalog.Service{
		ID:              uuid.New(),
		Name:            "consultation",
		Category:        catalog.CategoryTreatment,
		DurationMinutes: 30,
		IsActive:        true,
	}

	repo := newMockApptRepo()
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	svc := NewService(repo,
		&mockClinicGetter{clinics: map[uuid.UUID]*clinic.Clinic{cl.ID: cl}},
		&mockServiceGetter{services: map[uuid.UUID]*catalog.Service{catSvc.ID: catSvc}},
		lock.NoopLocker{},
	).WithClock(func() time.Time { return now })

	return &fixture{svc: svc, repo: repo, clinicID: cl.ID, svcID: catSvc.ID, now: now}
}

func (f *fixture) newAppointment(start string) *Appointment {
	return &Appointment{
		PetID:     uuid.New(),
		ClinicID:  f.clinicID,
		ServiceID: f.svcID,
		Date:      time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
		StartTime: start,
	}
}

// -- Tests --

func TestBook_Success(t *testing.T) {
	f := newFixture(t)

	a := f.newAppointment("10:00")
	if err := f.svc.Book(context.Background(), a); err != nil {
		t.Fatalf("Book failed: %v", err)
	}
	if a.Status != StatusPending {
		t.Errorf("expected pending status, got %s", a.Status)
	}
	if a.EndTime != "10:30" {
		t.Errorf("expected end time 10:30 from service duration, got %s", a.EndTime)
	}
	if a.DurationMinutes != 30 {
		t.Errorf("expected duration 30, got %d", a.DurationMinutes)
	}
}

func TestBook_RejectsOutsideHours(t *testing.T) {
	f := newFixture(t)

	for _, start := range []string{"08:30", "16:45"} {
		if err := f.svc.Book(context.Background(), f.newAppointment(start)); err == nil {
			t.Errorf("expected rejection for start %s outside 09:00-17:00", start)
		}
	}
}

func TestBook_RejectsPastDate(t *testing.T) {
	f := newFixture(t)

	a := f.newAppointment("10:00")
	a.Date = time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
	if err := f.svc.Book(context.Background(), a); err == nil {
		t.Error("expected rejection for past date")
	}
}

func TestBook_ConflictDetection(t *testing.T) {
	f := newFixture(t)

	first := f.newAppointment("10:00")
	if err := f.svc.Book(context.Background(), first); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	// Exact duplicate and partial overlaps must be rejected.
	for _, start := range []string{"10:00", "09:45", "10:15"} {
		err := f.svc.Book(context.Background(), f.newAppointment(start))
		if !errors.Is(err, ErrSlotTaken) {
			t.Errorf("start %s: expected ErrSlotTaken, got %v", start, err)
		}
	}

	// Adjacent intervals share only an endpoint and must succeed.
	for _, start := range []string{"09:30", "10:30"} {
		if err := f.svc.Book(context.Background(), f.newAppointment(start)); err != nil {
			t.Errorf("start %s: adjacent booking should succeed, got %v", start, err)
		}
	}
}

func TestBook_CancelledFreesSlot(t *testing.T) {
	f := newFixture(t)

	first := f.newAppointment("10:00")
	if err := f.svc.Book(context.Background(), first); err != nil {
		t.Fatalf("Book failed: %v", err)
	}
	if _, err := f.svc.Cancel(context.Background(), first.ID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	if err := f.svc.Book(context.Background(), f.newAppointment("10:00")); err != nil {
		t.Errorf("expected cancelled slot to be rebookable, got %v", err)
	}
}

func TestStatusTransitions(t *testing.T) {
	f := newFixture(t)

	a := f.newAppointment("11:00")
	if err := f.svc.Book(context.Background(), a); err != nil {
		t.Fatalf("Book failed: %v", err)
	}

	if _, err := f.svc.Complete(context.Background(), a.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("pending -> completed should fail, got %v", err)
	}

	if _, err := f.svc.Confirm(context.Background(), a.ID); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if _, err := f.svc.Confirm(context.Background(), a.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("confirmed -> confirmed should fail, got %v", err)
	}

	got, err := f.svc.Complete(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Errorf("expected completed, got %s", got.Status)
	}

	if _, err := f.svc.Cancel(context.Background(), a.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("completed is terminal, got %v", err)
	}
}

func TestBook_ClosedWeekday(t *testing.T) {
	f := newFixture(t)

	cl, _ := f.svc.clinics.Get(context.Background(), f.clinicID)
	// 2025-03-11 is a Tuesday.
	cl.OperatingHours.Weekdays = []time.Weekday{time.Monday, time.Wednesday}

	if err := f.svc.Book(context.Background(), f.newAppointment("10:00")); err == nil {
		t.Error("expected rejection on a closed weekday")
	}
}

func TestAppointmentOverlaps(t *testing.T) {
	a := &Appointment{StartTime: "10:00", EndTime: "10:30", Status: StatusConfirmed}

	tests := []struct {
		name     string
		startMin int
		endMin   int
		want     bool
	}{
		{"identical", 600, 630, true},
		{"straddles start", 585, 615, true},
		{"straddles end", 615, 645, true},
		{"contains", 570, 660, true},
		{"ends at start", 570, 600, false},
		{"starts at end", 630, 660, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Overlaps(tt.startMin, tt.endMin); got != tt.want {
				t.Errorf("Overlaps(%d, %d) = %v, want %v", tt.startMin, tt.endMin, got, tt.want)
			}
		})
	}
}
