package catalog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	CategoryPreventive = "preventive"
	CategoryTreatment  = "treatment"
	CategoryHygiene    = "hygiene"
	CategoryEmergency  = "emergency"
)

var validCategories = map[string]bool{
	CategoryPreventive: true, CategoryTreatment: true,
	CategoryHygiene: true, CategoryEmergency: true,
}

var validNames = map[string]bool{
	"vaccination": true, "grooming": true, "consultation": true,
	"deworming": true, "surgery": true,
}

const MinDurationMinutes = 5

// Service maps to the service table. One row per offered procedure;
// its duration feeds slot generation for appointments booking it.
type Service struct {
	ID              uuid.UUID `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Description     string    `db:"description" json:"description,omitempty"`
	Category        string    `db:"category" json:"category"`
	BasePrice       float64   `db:"base_price" json:"base_price"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	IsActive        bool      `db:"is_active" json:"is_active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

func (s *Service) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !validNames[s.Name] {
		return fmt.Errorf("unknown service name: %s", s.Name)
	}
	if !validCategories[s.Category] {
		return fmt.Errorf("unknown category: %s", s.Category)
	}
	if s.BasePrice < 0 {
		return fmt.Errorf("base_price cannot be negative")
	}
	if s.DurationMinutes < MinDurationMinutes {
		return fmt.Errorf("duration_minutes must be at least %d", MinDurationMinutes)
	}
	return nil
}
