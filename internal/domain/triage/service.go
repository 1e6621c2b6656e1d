package triage

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/vetlink/vetlink/internal/domain/matching"
)

// noFindingsDiagnosis is returned when submitted symptoms fire no
// rule condition.
const noFindingsDiagnosis = "No specific concerns detected based on symptoms"

type Service struct {
	rules Repository
}

func NewService(rules Repository) *Service {
	return &Service{rules: rules}
}

func (s *Service) CreateRule(ctx context.Context, r *Rule) error {
	if err := r.Validate(); err != nil {
		return err
	}
	r.IsActive = true
	return s.rules.Create(ctx, r)
}

func (s *Service) GetRule(ctx context.Context, id uuid.UUID) (*Rule, error) {
	return s.rules.GetByID(ctx, id)
}

func (s *Service) UpdateRule(ctx context.Context, r *Rule) error {
	if err := r.Validate(); err != nil {
		return err
	}
	return s.rules.Update(ctx, r)
}

func (s *Service) DeleteRule(ctx context.Context, id uuid.UUID) error {
	return s.rules.Delete(ctx, id)
}

func (s *Service) ListRules(ctx context.Context) ([]*Rule, error) {
	return s.rules.ListActive(ctx)
}

// Assess evaluates the submitted symptoms against the active rules.
// Findings are prioritized by urgency, then by confidence; the top
// finding becomes the verdict. No fired condition is a valid routine
// outcome, not an error.
func (s *Service) Assess(ctx context.Context, symptoms map[string]map[string]interface{}) (*Assessment, error) {
	if len(symptoms) == 0 {
		return nil, fmt.Errorf("at least one symptom is required")
	}

	names := make([]string, 0, len(symptoms))
	for name := range symptoms {
		if !validSymptoms[name] {
			return nil, fmt.Errorf("unknown symptom: %s", name)
		}
		names = append(names, name)
	}

	rules, err := s.rules.ListForSymptoms(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("rule query: %w", err)
	}

	var findings []Finding
	for _, rule := range rules {
		answers := symptoms[rule.Symptom]
		for i := range rule.Conditions {
			cond := &rule.Conditions[i]
			if !cond.Fires(answers) {
				continue
			}
			findings = append(findings, Finding{
				RuleID:              rule.ID,
				Symptom:             rule.Symptom,
				Diagnosis:           cond.Diagnosis,
				Urgency:             cond.Urgency,
				Confidence:          cond.Confidence(answers),
				suggestedSpecialty:  cond.SuggestedSpecialty,
				recommendedServices: cond.RecommendedServices,
				followUpAdvice:      cond.FollowUpAdvice,
			})
		}
	}

	if len(findings) == 0 {
		return &Assessment{
			Diagnosis: noFindingsDiagnosis,
			Urgency:   matching.UrgencyRoutine,
		}, nil
	}

	sort.SliceStable(findings, func(i, j int) bool {
		ri, rj := matching.UrgencyRank(findings[i].Urgency), matching.UrgencyRank(findings[j].Urgency)
		if ri != rj {
			return ri < rj
		}
		return findings[i].Confidence > findings[j].Confidence
	})

	primary := findings[0]
	return &Assessment{
		Diagnosis:           primary.Diagnosis,
		Urgency:             primary.Urgency,
		Confidence:          primary.Confidence,
		SuggestedSpecialty:  primary.suggestedSpecialty,
		RecommendedServices: primary.recommendedServices,
		FollowUpAdvice:      primary.followUpAdvice,
		AdditionalFindings:  findings[1:],
	}, nil
}
