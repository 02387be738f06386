package portal

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("not found")

type ProfileRepository interface {
	Get(ctx context.Context, id string) (*Profile, error)
	Upsert(ctx context.Context, p *Profile) error
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	List(ctx context.Context) ([]*Appointment, error)
}

type MedicationRepository interface {
	Create(ctx context.Context, m *Medication) error
	ListByUser(ctx context.Context, userID string) ([]*Medication, error)
	ToggleTaken(ctx context.Context, id uuid.UUID) (*Medication, error)
}

type BedRepository interface {
	List(ctx context.Context) ([]Bed, error)
}
