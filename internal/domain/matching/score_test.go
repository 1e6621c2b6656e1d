package matching

import (
	"math"
	"testing"

	"github.com/vetlink/vetlink/internal/domain/clinic"
)

func scoringClinic(lat, lon float64) *clinic.Clinic {
	c := testClinic()
	c.Latitude = &lat
	c.Longitude = &lon
	c.Specialties = []string{clinic.SpecialtySurgery, clinic.SpecialtyEmergency}
	c.EmergencySupport = true
	return c
}

func TestScore_FullMatch(t *testing.T) {
	cl := scoringClinic(40.0, -74.0)
	triage := &TriageResult{
		Urgency:              UrgencyEmergency,
		SuggestedSpecialties: []string{clinic.SpecialtySurgery},
	}
	loc := &Location{Latitude: 40.0, Longitude: -74.0}

	if got := Score(cl, triage, loc); got != 100 {
		t.Errorf("specialty + emergency + zero distance should score 100, got %g", got)
	}
}

func TestScore_NoLocation(t *testing.T) {
	cl := scoringClinic(40.0, -74.0)
	triage := &TriageResult{
		Urgency:              UrgencyEmergency,
		SuggestedSpecialties: []string{clinic.SpecialtySurgery},
	}

	if got := Score(cl, triage, nil); got != 70 {
		t.Errorf("without a user location the same clinic should score 70, got %g", got)
	}
}

func TestScore_Components(t *testing.T) {
	cl := scoringClinic(40.0, -74.0)

	t.Run("no suggested specialties", func(t *testing.T) {
		triage := &TriageResult{Urgency: UrgencyRoutine}
		if got := Score(cl, triage, nil); got != 0 {
			t.Errorf("expected 0, got %g", got)
		}
	})

	t.Run("specialty mismatch", func(t *testing.T) {
		triage := &TriageResult{Urgency: UrgencyRoutine, SuggestedSpecialties: []string{clinic.SpecialtyDentistry}}
		if got := Score(cl, triage, nil); got != 0 {
			t.Errorf("expected 0, got %g", got)
		}
	})

	t.Run("emergency bonus needs emergency urgency", func(t *testing.T) {
		triage := &TriageResult{Urgency: UrgencyRoutine, SuggestedSpecialties: []string{clinic.SpecialtySurgery}}
		if got := Score(cl, triage, nil); got != 50 {
			t.Errorf("expected 50, got %g", got)
		}
	})

	t.Run("clinic without emergency support", func(t *testing.T) {
		noEmerg := scoringClinic(40.0, -74.0)
		noEmerg.EmergencySupport = false
		triage := &TriageResult{Urgency: UrgencyEmergency, SuggestedSpecialties: []string{clinic.SpecialtySurgery}}
		if got := Score(noEmerg, triage, nil); got != 50 {
			t.Errorf("expected 50, got %g", got)
		}
	})
}

func TestScore_ProximityDecay(t *testing.T) {
	// One degree of latitude is roughly 111 km, far beyond the 30 km
	// cutoff, so proximity must contribute nothing.
	cl := scoringClinic(40.0, -74.0)
	triage := &TriageResult{Urgency: UrgencyRoutine}
	far := &Location{Latitude: 41.0, Longitude: -74.0}

	if got := Score(cl, triage, far); got != 0 {
		t.Errorf("beyond 30km proximity must be 0, got %g", got)
	}

	// ~0.1 degrees ≈ 11.1 km away: proximity ≈ 30 - 11.1.
	near := &Location{Latitude: 40.1, Longitude: -74.0}
	got := Score(cl, triage, near)
	if math.Abs(got-18.88) > 0.2 {
		t.Errorf("expected roughly 18.9 proximity points, got %g", got)
	}
}

func TestScore_Bounds(t *testing.T) {
	clinics := []*clinic.Clinic{
		scoringClinic(40.0, -74.0),
		testClinic(),
		func() *clinic.Clinic {
			c := scoringClinic(40.0, -74.0)
			c.EmergencySupport = false
			return c
		}(),
	}
	triages := []*TriageResult{
		{Urgency: UrgencyEmergency, SuggestedSpecialties: []string{clinic.SpecialtySurgery}},
		{Urgency: UrgencyUrgent},
		{Urgency: UrgencyRoutine, SuggestedSpecialties: []string{clinic.SpecialtyGeneral}},
	}
	locations := []*Location{
		nil,
		{Latitude: 40.0, Longitude: -74.0},
		{Latitude: -33.9, Longitude: 151.2},
	}

	for _, cl := range clinics {
		for _, tr := range triages {
			for _, loc := range locations {
				got := Score(cl, tr, loc)
				if got < 0 || got > 100 {
					t.Errorf("score %g out of [0,100] for clinic=%v triage=%v loc=%v", got, cl.Name, tr.Urgency, loc)
				}
			}
		}
	}
}

func TestDistanceKm(t *testing.T) {
	cl := scoringClinic(40.0, -74.0)
	if _, ok := DistanceKm(cl, nil); ok {
		t.Error("expected ok=false without user location")
	}

	noLoc := testClinic()
	if _, ok := DistanceKm(noLoc, &Location{Latitude: 40, Longitude: -74}); ok {
		t.Error("expected ok=false when the clinic has no location")
	}

	km, ok := DistanceKm(cl, &Location{Latitude: 40.0, Longitude: -74.0})
	if !ok || km != 0 {
		t.Errorf("expected 0 km for identical points, got %g ok=%v", km, ok)
	}
}
