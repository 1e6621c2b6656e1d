package triage

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vetlink/vetlink/internal/domain/matching"
)

var validSymptoms = map[string]bool{
	"fever": true, "vomiting": true, "lethargy": true, "loss_of_appetite": true,
	"coughing": true, "diarrhea": true, "itching": true, "limping": true,
}

const (
	QuestionBoolean        = "boolean"
	QuestionNumber         = "number"
	QuestionMultipleChoice = "multiple_choice"
)

// Comparison operators for rule criteria. A criterion is an explicit
// (field, op, value) triple; there is no shape-sniffing of the value.
const (
	OpEquals      = "eq"
	OpGreaterThan = "gt"
	OpLessThan    = "lt"
)

// Question is one intake prompt attached to a symptom rule.
type Question struct {
	Text     string   `json:"text"`
	Type     string   `json:"type"`
	Options  []string `json:"options,omitempty"`
	Required bool     `json:"required,omitempty"`
}

// Criterion compares one answer field against a rule value.
type Criterion struct {
	Field string      `json:"field"`
	Op    string      `json:"op"`
	Value interface{} `json:"value"`
}

// Matches evaluates the criterion against an answer set. A missing
// answer never matches.
func (c *Criterion) Matches(answers map[string]interface{}) bool {
	got, ok := answers[c.Field]
	if !ok || got == nil {
		return false
	}
	switch c.Op {
	case OpGreaterThan, OpLessThan:
		gotNum, ok1 := toFloat(got)
		wantNum, ok2 := toFloat(c.Value)
		if !ok1 || !ok2 {
			return false
		}
		if c.Op == OpGreaterThan {
			return gotNum > wantNum
		}
		return gotNum < wantNum
	default:
		if gotNum, ok1 := toFloat(got); ok1 {
			wantNum, ok2 := toFloat(c.Value)
			return ok2 && gotNum == wantNum
		}
		return got == c.Value
	}
}

// toFloat normalizes JSON and Go numerics for comparison.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// Condition is one diagnosable outcome of a rule. All criteria must
// match for the condition to fire.
type Condition struct {
	Criteria            []Criterion `json:"criteria"`
	Diagnosis           string      `json:"diagnosis"`
	Urgency             string      `json:"urgency"`
	SuggestedSpecialty  string      `json:"suggested_specialty,omitempty"`
	RecommendedServices []uuid.UUID `json:"recommended_services,omitempty"`
	FollowUpAdvice      string      `json:"follow_up_advice,omitempty"`
}

// Fires reports whether every criterion matches the answers.
func (c *Condition) Fires(answers map[string]interface{}) bool {
	if len(c.Criteria) == 0 {
		return false
	}
	for i := range c.Criteria {
		if !c.Criteria[i].Matches(answers) {
			return false
		}
	}
	return true
}

// Confidence is the fraction of criteria the answers satisfy, in
// [0, 1].
func (c *Condition) Confidence(answers map[string]interface{}) float64 {
	if len(c.Criteria) == 0 {
		return 0
	}
	matched := 0
	for i := range c.Criteria {
		if c.Criteria[i].Matches(answers) {
			matched++
		}
	}
	return float64(matched) / float64(len(c.Criteria))
}

// Rule maps to the symptom_rule table. Questions and conditions are
// stored as JSON documents.
type Rule struct {
	ID         uuid.UUID   `db:"id" json:"id"`
	Symptom    string      `db:"symptom" json:"symptom"`
	Questions  []Question  `db:"questions" json:"questions"`
	Conditions []Condition `db:"conditions" json:"conditions"`
	IsActive   bool        `db:"is_active" json:"is_active"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time   `db:"updated_at" json:"updated_at"`
}

func (r *Rule) Validate() error {
	if !validSymptoms[r.Symptom] {
		return fmt.Errorf("unknown symptom: %s", r.Symptom)
	}
	if len(r.Conditions) == 0 {
		return fmt.Errorf("at least one condition is required")
	}
	for i, q := range r.Questions {
		switch q.Type {
		case QuestionBoolean, QuestionNumber:
		case QuestionMultipleChoice:
			if len(q.Options) == 0 {
				return fmt.Errorf("question %d: multiple_choice requires options", i)
			}
		default:
			return fmt.Errorf("question %d: unknown type %s", i, q.Type)
		}
	}
	for i, cond := range r.Conditions {
		if cond.Diagnosis == "" {
			return fmt.Errorf("condition %d: diagnosis is required", i)
		}
		switch cond.Urgency {
		case matching.UrgencyEmergency, matching.UrgencyUrgent, matching.UrgencyRoutine:
		default:
			return fmt.Errorf("condition %d: unknown urgency %s", i, cond.Urgency)
		}
		if len(cond.Criteria) == 0 {
			return fmt.Errorf("condition %d: at least one criterion is required", i)
		}
		for j, cr := range cond.Criteria {
			if cr.Field == "" {
				return fmt.Errorf("condition %d criterion %d: field is required", i, j)
			}
			switch cr.Op {
			case OpEquals, OpGreaterThan, OpLessThan:
			default:
				return fmt.Errorf("condition %d criterion %d: unknown op %s", i, j, cr.Op)
			}
		}
	}
	return nil
}

// Finding is one fired condition during an assessment.
type Finding struct {
	RuleID     uuid.UUID `json:"rule_id"`
	Symptom    string    `json:"symptom"`
	Diagnosis  string    `json:"diagnosis"`
	Urgency    string    `json:"urgency"`
	Confidence float64   `json:"confidence"`

	suggestedSpecialty  string
	recommendedServices []uuid.UUID
	followUpAdvice      string
}

// Assessment is the triage verdict for one symptom submission. The
// primary finding drives diagnosis and urgency; the rest are listed
// as additional considerations.
type Assessment struct {
	Diagnosis           string      `json:"diagnosis"`
	Urgency             string      `json:"urgency"`
	Confidence          float64     `json:"confidence"`
	SuggestedSpecialty  string      `json:"suggested_specialty,omitempty"`
	RecommendedServices []uuid.UUID `json:"recommended_services,omitempty"`
	FollowUpAdvice      string      `json:"follow_up_advice,omitempty"`
	AdditionalFindings  []Finding   `json:"additional_findings,omitempty"`
}

// TriageResult converts the assessment into the matcher's input.
func (a *Assessment) TriageResult() *matching.TriageResult {
	t := &matching.TriageResult{
		Urgency:   a.Urgency,
		Diagnosis: a.Diagnosis,
	}
	if a.SuggestedSpecialty != "" {
		t.SuggestedSpecialties = []string{a.SuggestedSpecialty}
	}
	return t
}
