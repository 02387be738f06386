package assessment

import (
	"time"

	"github.com/google/uuid"

	"github.com/Skufu/CareFusion/internal/risk"
)

// Result is one scored, classified and routed assessment. It is never
// modified once the Service has stamped it.
type Result struct {
	ID              uuid.UUID  `json:"id"`
	UserID          string     `json:"userId"`
	MentalScore     float64    `json:"mentalScore"`
	PhysicalScore   float64    `json:"physicalScore"`
	OverallRisk     float64    `json:"overallRisk"`
	Level           risk.Level `json:"level"`
	Route           risk.Route `json:"route"`
	Reasoning       string     `json:"reasoning"`
	Recommendations []string   `json:"recommendations"`
	Timestamp       time.Time  `json:"timestamp"`
}

func (r Result) clone() Result {
	out := r
	out.Recommendations = append([]string(nil), r.Recommendations...)
	return out
}

type Request struct {
	UserID        string `json:"userId"`
	MentalInput   string `json:"mentalInput"`
	PhysicalInput string `json:"physicalInput"`
}

// Outcome is what the portal needs to render a finished assessment.
type Outcome struct {
	Result  Result       `json:"result"`
	Target  string       `json:"target"`
	Display risk.Display `json:"display"`
	Saved   bool         `json:"saved"`
}
