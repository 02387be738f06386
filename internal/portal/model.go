package portal

import (
	"time"

	"github.com/google/uuid"
)

type Profile struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Age        int    `json:"age"`
	BloodGroup string `json:"bloodGroup"`
	Phone      string `json:"phone"`
}

const StatusScheduled = "scheduled"

type Appointment struct {
	ID          uuid.UUID `json:"id"`
	PatientName string    `json:"patientName"`
	DoctorName  string    `json:"doctorName"`
	Specialty   string    `json:"specialty"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Medication.Taken is 0 or 1.
type Medication struct {
	ID     uuid.UUID `json:"id"`
	UserID string    `json:"userId"`
	Name   string    `json:"name"`
	Dosage string    `json:"dosage"`
	Time   string    `json:"time"`
	Taken  int       `json:"taken"`
}

type Bed struct {
	ID        int    `json:"id"`
	Hospital  string `json:"hospital"`
	Location  string `json:"location"`
	Available int    `json:"available"`
	Total     int    `json:"total"`
}

// DefaultBeds is the roster served before any hospital reports live data.
func DefaultBeds() []Bed {
	return []Bed{
		{ID: 1, Hospital: "Emergency Care Plus", Location: "789 Urgent Way", Available: 12, Total: 20},
		{ID: 2, Hospital: "City General Hospital", Location: "123 Medical Dr", Available: 5, Total: 15},
		{ID: 3, Hospital: "St. Mary Medical Center", Location: "456 Health Ave", Available: 0, Total: 10},
	}
}
