package clinic

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	clinics map[uuid.UUID]*Clinic
}

func newMockRepo() *mockRepo {
	return &mockRepo{clinics: make(map[uuid.UUID]*Clinic)}
}

func (m *mockRepo) Create(_ context.Context, c *Clinic) error {
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	c.UpdatedAt = time.Now()
	m.clinics[c.ID] = c
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Clinic, error) {
	c, ok := m.clinics[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

func (m *mockRepo) Update(_ context.Context, c *Clinic) error {
	if _, ok := m.clinics[c.ID]; !ok {
		return ErrNotFound
	}
	m.clinics[c.ID] = c
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.clinics[id]; !ok {
		return ErrNotFound
	}
	delete(m.clinics, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Clinic, int, error) {
	var result []*Clinic
	for _, c := range m.clinics {
		result = append(result, c)
	}
	return result, len(result), nil
}

func (m *mockRepo) FindCandidates(_ context.Context, f CandidateFilter) ([]*Clinic, error) {
	var result []*Clinic
	for _, c := range m.clinics {
		if !c.IsActive {
			continue
		}
		if f.EmergencyOnly && !c.EmergencySupport {
			continue
		}
		result = append(result, c)
	}
	return result, nil
}

func TestCreateClinic_DefaultsAndActivation(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	c := validClinic()
	c.Specialties = nil
	if err := svc.Create(context.Background(), c); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if c.ID == uuid.Nil {
		t.Error("expected an assigned id")
	}
	if !c.IsActive {
		t.Error("new clinics should be active")
	}
	if len(c.Specialties) != 1 || c.Specialties[0] != SpecialtyGeneral {
		t.Errorf("expected default specialty [general], got %v", c.Specialties)
	}
}

func TestCreateClinic_RejectsInvalid(t *testing.T) {
	svc := NewService(newMockRepo())

	c := validClinic()
	c.OperatingHours = &OperatingHours{OpeningTime: "17:00", ClosingTime: "09:00"}
	if err := svc.Create(context.Background(), c); err == nil {
		t.Error("expected validation error for inverted hours")
	}
}

func TestDeactivateClinic(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	c := validClinic()
	if err := svc.Create(context.Background(), c); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := svc.Deactivate(context.Background(), c.ID); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}

	got, err := svc.Get(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.IsActive {
		t.Error("expected clinic to be inactive")
	}

	candidates, err := svc.FindCandidates(context.Background(), CandidateFilter{})
	if err != nil {
		t.Fatalf("FindCandidates failed: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("deactivated clinic should not be a candidate, got %d", len(candidates))
	}
}

func TestDeactivateClinic_NotFound(t *testing.T) {
	svc := NewService(newMockRepo())
	if err := svc.Deactivate(context.Background(), uuid.New()); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
