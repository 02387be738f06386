package portal

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// ErrValidation marks input the portal refuses to store.
var ErrValidation = errors.New("validation failed")

type Service struct {
	profiles     ProfileRepository
	appointments AppointmentRepository
	medications  MedicationRepository
	beds         BedRepository
}

func NewService(profiles ProfileRepository, appointments AppointmentRepository,
	medications MedicationRepository, beds BedRepository) *Service {
	return &Service{
		profiles:     profiles,
		appointments: appointments,
		medications:  medications,
		beds:         beds,
	}
}

// -- Profiles --

func (s *Service) GetProfile(ctx context.Context, id string) (*Profile, error) {
	return s.profiles.Get(ctx, strings.TrimSpace(id))
}

func (s *Service) SaveProfile(ctx context.Context, p *Profile) error {
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)
	if err := required(map[string]string{"id": p.ID, "name": p.Name}); err != nil {
		return err
	}
	if p.Age < 0 {
		return fmt.Errorf("%w: age must not be negative", ErrValidation)
	}
	return s.profiles.Upsert(ctx, p)
}

// -- Appointments --

func (s *Service) BookAppointment(ctx context.Context, a *Appointment) error {
	a.PatientName = strings.TrimSpace(a.PatientName)
	a.DoctorName = strings.TrimSpace(a.DoctorName)
	if err := required(map[string]string{
		"patientName": a.PatientName,
		"doctorName":  a.DoctorName,
		"date":        a.Date,
		"time":        a.Time,
	}); err != nil {
		return err
	}
	if strings.TrimSpace(a.Status) == "" {
		a.Status = StatusScheduled
	}
	return s.appointments.Create(ctx, a)
}

func (s *Service) ListAppointments(ctx context.Context) ([]*Appointment, error) {
	return s.appointments.List(ctx)
}

// -- Medications --

func (s *Service) AddMedication(ctx context.Context, m *Medication) error {
	m.UserID = strings.TrimSpace(m.UserID)
	m.Name = strings.TrimSpace(m.Name)
	if err := required(map[string]string{
		"userId": m.UserID,
		"name":   m.Name,
		"dosage": m.Dosage,
		"time":   m.Time,
	}); err != nil {
		return err
	}
	if m.Taken != 0 && m.Taken != 1 {
		return fmt.Errorf("%w: taken must be 0 or 1", ErrValidation)
	}
	return s.medications.Create(ctx, m)
}

func (s *Service) ListMedications(ctx context.Context, userID string) ([]*Medication, error) {
	return s.medications.ListByUser(ctx, userID)
}

// ToggleTaken flips the taken flag of one medication.
func (s *Service) ToggleTaken(ctx context.Context, id uuid.UUID) (*Medication, error) {
	return s.medications.ToggleTaken(ctx, id)
}

// -- Beds --

func (s *Service) ListBeds(ctx context.Context) ([]Bed, error) {
	return s.beds.List(ctx)
}

func required(fields map[string]string) error {
	var missing []string
	for name, v := range fields {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("%w: missing %s", ErrValidation, strings.Join(missing, ", "))
}
