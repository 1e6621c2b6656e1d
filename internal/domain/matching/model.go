package matching

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vetlink/vetlink/internal/domain/clinic"
)

const (
	UrgencyEmergency = "emergency"
	UrgencyUrgent    = "urgent"
	UrgencyRoutine   = "routine"
)

// UrgencyRank orders urgencies from most to least severe. Unknown
// values rank last.
func UrgencyRank(urgency string) int {
	switch urgency {
	case UrgencyEmergency:
		return 0
	case UrgencyUrgent:
		return 1
	case UrgencyRoutine:
		return 2
	default:
		return 3
	}
}

// DefaultSlotDurationMinutes applies when a triage result carries no
// duration estimate.
const DefaultSlotDurationMinutes = 30

// SlotStepMinutes is the fixed cursor increment for slot generation.
const SlotStepMinutes = 15

// TriageResult is the matcher's input, produced by the triage engine
// or supplied directly by a client.
type TriageResult struct {
	Urgency                  string   `json:"urgency"`
	Diagnosis                string   `json:"diagnosis,omitempty"`
	SuggestedSpecialties     []string `json:"suggested_specialties,omitempty"`
	EstimatedDurationMinutes int      `json:"estimated_duration_minutes,omitempty"`
}

func (t *TriageResult) Validate() error {
	switch t.Urgency {
	case UrgencyEmergency, UrgencyUrgent, UrgencyRoutine:
	case "":
		return fmt.Errorf("urgency is required")
	default:
		return fmt.Errorf("unknown urgency: %s", t.Urgency)
	}
	if t.EstimatedDurationMinutes < 0 {
		return fmt.Errorf("estimated duration cannot be negative")
	}
	return nil
}

// Location is a caller-supplied point used for proximity scoring.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CandidateSlot is a free interval of the requested duration. Computed
// per request, never persisted.
type CandidateSlot struct {
	ClinicID  uuid.UUID `json:"clinic_id"`
	Date      string    `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	StartAt   time.Time `json:"start_at"`
}

// ScoredClinic is one ranked entry in a matching response.
type ScoredClinic struct {
	Clinic         *clinic.Clinic  `json:"clinic"`
	Score          float64         `json:"score"`
	DistanceKm     *float64        `json:"distance_km,omitempty"`
	NextAvailable  *CandidateSlot  `json:"next_available"`
	AvailableSlots []CandidateSlot `json:"available_slots"`
}
