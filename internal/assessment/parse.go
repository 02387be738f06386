package assessment

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

const wantRecommendations = 3

// draft is a parsed model reply before local classification.
type draft struct {
	MentalScore     float64
	PhysicalScore   float64
	OverallRisk     float64
	ClaimedLevel    string
	ClaimedRoute    string
	Reasoning       string
	Recommendations []string

	// observability only
	clamped  []string
	recCount int
}

type payload struct {
	MentalScore     *float64 `json:"mentalScore"`
	PhysicalScore   *float64 `json:"physicalScore"`
	OverallRisk     *float64 `json:"overallRisk"`
	Level           *string  `json:"level"`
	Route           *string  `json:"route"`
	Reasoning       *string  `json:"reasoning"`
	Recommendations *[]any   `json:"recommendations"`
}

// parseDraft decodes text against the assessment schema. Schema mismatches
// are ErrUpstream; unusable recommendations are ErrValidation.
func parseDraft(text string) (*draft, error) {
	body := stripCodeFence(text)
	if body == "" {
		return nil, fmt.Errorf("%w: empty response from model", ErrUpstream)
	}

	var p payload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return nil, fmt.Errorf("%w: decode model response: %w", ErrUpstream, err)
	}

	var missing []string
	if p.MentalScore == nil {
		missing = append(missing, fieldMentalScore)
	}
	if p.PhysicalScore == nil {
		missing = append(missing, fieldPhysicalScore)
	}
	if p.OverallRisk == nil {
		missing = append(missing, fieldOverallRisk)
	}
	if p.Level == nil {
		missing = append(missing, fieldLevel)
	}
	if p.Route == nil {
		missing = append(missing, fieldRoute)
	}
	if p.Reasoning == nil {
		missing = append(missing, fieldReasoning)
	}
	if p.Recommendations == nil {
		missing = append(missing, fieldRecommendations)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: model response missing %s", ErrUpstream, strings.Join(missing, ", "))
	}

	reasoning := strings.TrimSpace(*p.Reasoning)
	if reasoning == "" {
		return nil, fmt.Errorf("%w: model response has empty reasoning", ErrUpstream)
	}

	recs, err := normalizeRecommendations(*p.Recommendations)
	if err != nil {
		return nil, err
	}

	d := &draft{
		ClaimedLevel:    strings.TrimSpace(*p.Level),
		ClaimedRoute:    strings.TrimSpace(*p.Route),
		Reasoning:       reasoning,
		Recommendations: recs,
		recCount:        len(*p.Recommendations),
	}
	d.MentalScore = d.clamp(fieldMentalScore, *p.MentalScore)
	d.PhysicalScore = d.clamp(fieldPhysicalScore, *p.PhysicalScore)
	d.OverallRisk = d.clamp(fieldOverallRisk, *p.OverallRisk)
	return d, nil
}

func (d *draft) clamp(field string, v float64) float64 {
	c := math.Min(math.Max(v, 0), 100)
	if c != v {
		d.clamped = append(d.clamped, field)
	}
	return c
}

// normalizeRecommendations trims entries, drops blank ones and keeps at
// most three. Fewer than three is accepted.
func normalizeRecommendations(raw []any) ([]string, error) {
	out := make([]string, 0, wantRecommendations)
	for i, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: recommendation %d is %T, not a string", ErrValidation, i, v)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if len(out) < wantRecommendations {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: model returned no actionable recommendation", ErrValidation)
	}
	return out, nil
}

// stripCodeFence removes a surrounding ``` or ```json fence.
func stripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = ""
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}
