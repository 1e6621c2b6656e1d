package scheduling

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vetlink/vetlink/internal/domain/clinic"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// allowedTransitions holds the legal status moves. Completed and
// cancelled are terminal.
var allowedTransitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// BlockingStatuses are the states that occupy a time slot. Cancelled
// and completed appointments free their interval.
var BlockingStatuses = []string{StatusPending, StatusConfirmed}

// Appointment maps to the appointment table. Date is the calendar day;
// start and end are HH:MM clock values within that day.
type Appointment struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	PetID           uuid.UUID  `db:"pet_id" json:"pet_id"`
	ClinicID        uuid.UUID  `db:"clinic_id" json:"clinic_id"`
	ServiceID       uuid.UUID  `db:"service_id" json:"service_id"`
	VeterinarianID  *uuid.UUID `db:"veterinarian_id" json:"veterinarian_id,omitempty"`
	Date            time.Time  `db:"date" json:"date"`
	StartTime       string     `db:"start_time" json:"start_time"`
	EndTime         string     `db:"end_time" json:"end_time"`
	DurationMinutes int        `db:"duration_minutes" json:"duration_minutes"`
	Status          string     `db:"status" json:"status"`
	Urgency         *string    `db:"urgency" json:"urgency,omitempty"`
	Diagnosis       *string    `db:"diagnosis" json:"diagnosis,omitempty"`
	Notes           *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// IsBlocking reports whether this appointment occupies its interval.
func (a *Appointment) IsBlocking() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

// StartMinutes returns the start time as minutes since midnight.
func (a *Appointment) StartMinutes() (int, error) {
	return clinic.ParseClock(a.StartTime)
}

// EndMinutes returns the end time as minutes since midnight.
func (a *Appointment) EndMinutes() (int, error) {
	return clinic.ParseClock(a.EndTime)
}

// Overlaps reports whether [startMin, endMin) intersects this
// appointment's interval. Both intervals are half-open, so an
// appointment ending at 10:30 does not block a slot starting there.
func (a *Appointment) Overlaps(startMin, endMin int) bool {
	aStart, err := a.StartMinutes()
	if err != nil {
		return false
	}
	aEnd, err := a.EndMinutes()
	if err != nil {
		return false
	}
	return startMin < aEnd && aStart < endMin
}

// CanTransitionTo reports whether the status move is legal.
func (a *Appointment) CanTransitionTo(status string) bool {
	for _, next := range allowedTransitions[a.Status] {
		if next == status {
			return true
		}
	}
	return false
}

func (a *Appointment) validate() error {
	if a.PetID == uuid.Nil {
		return fmt.Errorf("pet_id is required")
	}
	if a.ClinicID == uuid.Nil {
		return fmt.Errorf("clinic_id is required")
	}
	if a.ServiceID == uuid.Nil {
		return fmt.Errorf("service_id is required")
	}
	if a.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	if _, err := clinic.ParseClock(a.StartTime); err != nil {
		return fmt.Errorf("start_time: %w", err)
	}
	return nil
}

// LockKey identifies the slot this appointment claims, used to
// serialize concurrent booking attempts.
func (a *Appointment) LockKey() string {
	return fmt.Sprintf("%s:%s:%s", a.ClinicID, a.Date.Format("2006-01-02"), a.StartTime)
}
