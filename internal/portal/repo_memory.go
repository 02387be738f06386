package portal

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepos backs every portal repository with process memory. It is
// used when ENABLE_DB is off.
type MemoryRepos struct {
	mu           sync.RWMutex
	profiles     map[string]Profile
	appointments []Appointment
	medications  []Medication
	beds         []Bed
}

func NewMemoryRepos() *MemoryRepos {
	return &MemoryRepos{
		profiles: make(map[string]Profile),
		beds:     DefaultBeds(),
	}
}

func (m *MemoryRepos) Profiles() ProfileRepository         { return memProfiles{m} }
func (m *MemoryRepos) Appointments() AppointmentRepository { return memAppointments{m} }
func (m *MemoryRepos) Medications() MedicationRepository   { return memMedications{m} }
func (m *MemoryRepos) Beds() BedRepository                 { return memBeds{m} }

type memProfiles struct{ *MemoryRepos }

func (r memProfiles) Get(_ context.Context, id string) (*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r memProfiles) Upsert(_ context.Context, p *Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.ID] = *p
	return nil
}

type memAppointments struct{ *MemoryRepos }

func (r memAppointments) Create(_ context.Context, a *Appointment) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appointments = append(r.appointments, *a)
	return nil
}

func (r memAppointments) List(_ context.Context) ([]*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Appointment, 0, len(r.appointments))
	for i := len(r.appointments) - 1; i >= 0; i-- {
		a := r.appointments[i]
		out = append(out, &a)
	}
	return out, nil
}

type memMedications struct{ *MemoryRepos }

func (r memMedications) Create(_ context.Context, med *Medication) error {
	med.ID = uuid.New()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.medications = append(r.medications, *med)
	return nil
}

func (r memMedications) ListByUser(_ context.Context, userID string) ([]*Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*Medication{}
	for _, med := range r.medications {
		if med.UserID == userID {
			med := med
			out = append(out, &med)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out, nil
}

func (r memMedications) ToggleTaken(_ context.Context, id uuid.UUID) (*Medication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.medications {
		if r.medications[i].ID == id {
			r.medications[i].Taken = 1 - r.medications[i].Taken
			med := r.medications[i]
			return &med, nil
		}
	}
	return nil, ErrNotFound
}

type memBeds struct{ *MemoryRepos }

func (r memBeds) List(_ context.Context) ([]Bed, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Bed(nil), r.beds...), nil
}
