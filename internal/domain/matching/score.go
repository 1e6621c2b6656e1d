package matching

import (
	"github.com/vetlink/vetlink/internal/domain/clinic"
	"github.com/vetlink/vetlink/internal/platform/geo"
)

const (
	specialtyMatchPoints = 50
	emergencyBonusPoints = 20
	proximityMaxPoints   = 30
)

// Score ranks a candidate clinic for a triage result. Deterministic
// and pure; bounded to [0, 100].
func Score(cl *clinic.Clinic, triage *TriageResult, userLoc *Location) float64 {
	var score float64

	if len(triage.SuggestedSpecialties) > 0 && intersects(cl.Specialties, triage.SuggestedSpecialties) {
		score += specialtyMatchPoints
	}

	if triage.Urgency == UrgencyEmergency && cl.EmergencySupport {
		score += emergencyBonusPoints
	}

	if km, ok := DistanceKm(cl, userLoc); ok {
		points := proximityMaxPoints - km
		if points > 0 {
			score += points
		}
	}

	return score
}

// DistanceKm returns the great-circle distance between the user and
// the clinic, or ok=false when either location is absent.
func DistanceKm(cl *clinic.Clinic, userLoc *Location) (float64, bool) {
	if userLoc == nil || !cl.HasLocation() {
		return 0, false
	}
	meters := geo.DistanceMeters(userLoc.Latitude, userLoc.Longitude, *cl.Latitude, *cl.Longitude)
	return meters / 1000, true
}

func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
