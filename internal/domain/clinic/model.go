package clinic

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Known specialty tags. Matching treats unknown tags as non-matching
// rather than erroring, so validation happens at write time only.
const (
	SpecialtyGeneral          = "general"
	SpecialtyEmergency        = "emergency"
	SpecialtyDermatology      = "dermatology"
	SpecialtySurgery          = "surgery"
	SpecialtyInternalMedicine = "internal_medicine"
	SpecialtyDentistry        = "dentistry"
)

var validSpecialties = map[string]bool{
	SpecialtyGeneral: true, SpecialtyEmergency: true, SpecialtyDermatology: true,
	SpecialtySurgery: true, SpecialtyInternalMedicine: true, SpecialtyDentistry: true,
}

var (
	clockPattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)
	phonePattern = regexp.MustCompile(`^[0-9]{10,15}$`)
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// OperatingHours describes when a clinic accepts appointments.
// Weekdays is optional; empty means open every day.
type OperatingHours struct {
	OpeningTime string         `db:"opening_time" json:"opening_time"`
	ClosingTime string         `db:"closing_time" json:"closing_time"`
	Weekdays    []time.Weekday `db:"weekdays" json:"weekdays,omitempty"`
	Is24Hours   bool           `db:"is_24_hours" json:"is_24_hours"`
}

// OpenOn reports whether the clinic accepts appointments on the given weekday.
func (oh *OperatingHours) OpenOn(day time.Weekday) bool {
	if len(oh.Weekdays) == 0 {
		return true
	}
	for _, d := range oh.Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// Clinic maps to the clinic table.
type Clinic struct {
	ID               uuid.UUID       `db:"id" json:"id"`
	Name             string          `db:"name" json:"name"`
	Address          string          `db:"address" json:"address"`
	ContactNumber    string          `db:"contact_number" json:"contact_number"`
	Email            string          `db:"email" json:"email"`
	Latitude         *float64        `db:"latitude" json:"latitude,omitempty"`
	Longitude        *float64        `db:"longitude" json:"longitude,omitempty"`
	OperatingHours   *OperatingHours `db:"-" json:"operating_hours,omitempty"`
	Specialties      []string        `db:"specialties" json:"specialties"`
	EmergencySupport bool            `db:"emergency_support" json:"emergency_support"`
	IsActive         bool            `db:"is_active" json:"is_active"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}

// HasLocation reports whether both coordinates are present.
func (c *Clinic) HasLocation() bool {
	return c.Latitude != nil && c.Longitude != nil
}

// Validate checks the clinic's field invariants before persistence.
func (c *Clinic) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if c.Address == "" {
		return fmt.Errorf("address is required")
	}
	if c.ContactNumber != "" && !phonePattern.MatchString(c.ContactNumber) {
		return fmt.Errorf("invalid contact number: %s", c.ContactNumber)
	}
	if c.Email != "" && !emailPattern.MatchString(c.Email) {
		return fmt.Errorf("invalid email: %s", c.Email)
	}
	if (c.Latitude == nil) != (c.Longitude == nil) {
		return fmt.Errorf("latitude and longitude must be provided together")
	}
	if c.Latitude != nil {
		if *c.Latitude < -90 || *c.Latitude > 90 {
			return fmt.Errorf("latitude out of range: %g", *c.Latitude)
		}
		if *c.Longitude < -180 || *c.Longitude > 180 {
			return fmt.Errorf("longitude out of range: %g", *c.Longitude)
		}
	}
	for _, sp := range c.Specialties {
		if !validSpecialties[sp] {
			return fmt.Errorf("unknown specialty: %s", sp)
		}
	}
	if c.OperatingHours != nil {
		if err := c.OperatingHours.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the HH:MM fields and the opening-before-closing invariant.
func (oh *OperatingHours) Validate() error {
	if oh.Is24Hours {
		return nil
	}
	open, err := ParseClock(oh.OpeningTime)
	if err != nil {
		return fmt.Errorf("opening_time: %w", err)
	}
	closing, err := ParseClock(oh.ClosingTime)
	if err != nil {
		return fmt.Errorf("closing_time: %w", err)
	}
	if open >= closing {
		return fmt.Errorf("opening_time %s must be before closing_time %s", oh.OpeningTime, oh.ClosingTime)
	}
	for _, d := range oh.Weekdays {
		if d < time.Sunday || d > time.Saturday {
			return fmt.Errorf("invalid weekday: %d", d)
		}
	}
	return nil
}

// ParseClock converts an HH:MM string into minutes since midnight.
func ParseClock(s string) (int, error) {
	if !clockPattern.MatchString(s) {
		return 0, fmt.Errorf("invalid clock value %q, expected HH:MM", s)
	}
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid clock value %q: %w", s, err)
	}
	return h*60 + m, nil
}

// FormatClock converts minutes since midnight into an HH:MM string.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
