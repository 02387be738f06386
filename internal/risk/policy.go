package risk

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy holds the inclusive lower bounds of each level above LOW and the
// sub-score above which a MEDIUM case is routed to teleconsultation.
type Policy struct {
	MediumFrom       float64 `yaml:"medium_from" json:"mediumFrom"`
	HighFrom         float64 `yaml:"high_from" json:"highFrom"`
	CriticalFrom     float64 `yaml:"critical_from" json:"criticalFrom"`
	TeleconsultAbove float64 `yaml:"teleconsult_above" json:"teleconsultAbove"`
}

var defaultPolicy = Policy{
	MediumFrom:       25,
	HighFrom:         50,
	CriticalFrom:     75,
	TeleconsultAbove: 60,
}

func DefaultPolicy() Policy {
	return defaultPolicy
}

func (p Policy) Validate() error {
	if !(p.MediumFrom > 0 && p.MediumFrom < p.HighFrom && p.HighFrom < p.CriticalFrom && p.CriticalFrom <= 100) {
		return fmt.Errorf("risk policy bounds must satisfy 0 < medium (%v) < high (%v) < critical (%v) <= 100",
			p.MediumFrom, p.HighFrom, p.CriticalFrom)
	}
	if p.TeleconsultAbove < 0 || p.TeleconsultAbove > 100 {
		return fmt.Errorf("teleconsult_above must be within [0,100], got %v", p.TeleconsultAbove)
	}
	return nil
}

// LoadPolicy reads a YAML policy file. Keys missing from the file keep
// their default values. An empty path yields DefaultPolicy.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read risk policy: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("parse risk policy %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, errors.Join(fmt.Errorf("invalid risk policy %s", path), err)
	}
	return p, nil
}

// Level maps the overall score. The comparisons are ordered so that NaN
// falls through to CRITICAL.
func (p Policy) Level(overallRisk float64) Level {
	switch {
	case overallRisk < p.MediumFrom:
		return Low
	case overallRisk < p.HighFrom:
		return Medium
	case overallRisk < p.CriticalFrom:
		return High
	default:
		return Critical
	}
}

func (p Policy) Route(level Level, mentalScore, physicalScore float64) Route {
	switch level {
	case Critical:
		return Emergency
	case High:
		return Teleconsultation
	case Medium:
		if exceeds(mentalScore, p.TeleconsultAbove) || exceeds(physicalScore, p.TeleconsultAbove) {
			return Teleconsultation
		}
		return SelfCare
	default:
		return SelfCare
	}
}

func (p Policy) Classify(overallRisk, mentalScore, physicalScore float64) (Level, Route) {
	level := p.Level(overallRisk)
	return level, p.Route(level, mentalScore, physicalScore)
}

// a NaN sub-score is treated as exceeding the threshold
func exceeds(score, threshold float64) bool {
	return math.IsNaN(score) || score > threshold
}
