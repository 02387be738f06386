// Package risk maps assessment scores to a risk level and a care route.
// The mapping is deterministic and independent of whatever level or route
// an upstream model claims.
package risk

import (
	"fmt"
	"strings"
)

type Level string

const (
	Low      Level = "LOW"
	Medium   Level = "MEDIUM"
	High     Level = "HIGH"
	Critical Level = "CRITICAL"
)

type Route string

const (
	SelfCare         Route = "SELF_CARE"
	Teleconsultation Route = "TELECONSULTATION"
	Emergency        Route = "EMERGENCY"
)

var (
	levels = []Level{Low, Medium, High, Critical}
	routes = []Route{SelfCare, Teleconsultation, Emergency}
)

func (l Level) Valid() bool {
	for _, v := range levels {
		if l == v {
			return true
		}
	}
	return false
}

func (r Route) Valid() bool {
	for _, v := range routes {
		if r == v {
			return true
		}
	}
	return false
}

// ParseLevel is lenient about case and surrounding space, since upstream
// models are not.
func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToUpper(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("unknown risk level %q", s)
	}
	return l, nil
}

func ParseRoute(s string) (Route, error) {
	r := Route(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", "_")))
	if !r.Valid() {
		return "", fmt.Errorf("unknown care route %q", s)
	}
	return r, nil
}

// Classify applies DefaultPolicy.
func Classify(overallRisk, mentalScore, physicalScore float64) (Level, Route) {
	return defaultPolicy.Classify(overallRisk, mentalScore, physicalScore)
}

// Discrepancy describes where an upstream claim differs from the computed
// classification. Empty fields mean the claim agreed or was absent.
type Discrepancy struct {
	ClaimedLevel Level
	ClaimedRoute Route
}

func (d Discrepancy) Any() bool {
	return d.ClaimedLevel != "" || d.ClaimedRoute != ""
}

// Reconcile classifies the scores and compares the result with the claimed
// level and route. The computed values are always returned.
func (p Policy) Reconcile(overallRisk, mentalScore, physicalScore float64, claimedLevel, claimedRoute string) (Level, Route, Discrepancy) {
	level, route := p.Classify(overallRisk, mentalScore, physicalScore)

	var d Discrepancy
	if claimedLevel != "" {
		if cl, err := ParseLevel(claimedLevel); err != nil || cl != level {
			d.ClaimedLevel = Level(claimedLevel)
		}
	}
	if claimedRoute != "" {
		if cr, err := ParseRoute(claimedRoute); err != nil || cr != route {
			d.ClaimedRoute = Route(claimedRoute)
		}
	}
	return level, route, d
}
