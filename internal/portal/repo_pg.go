package portal

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// =========== Profiles ===========

type profileRepoPG struct{ db queryable }

func NewProfileRepoPG(pool *pgxpool.Pool) ProfileRepository { return &profileRepoPG{db: pool} }

func (r *profileRepoPG) Get(ctx context.Context, id string) (*Profile, error) {
	var p Profile
	err := r.db.QueryRow(ctx, `
		SELECT id, name, email, age, blood_group, phone FROM profiles WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Email, &p.Age, &p.BloodGroup, &p.Phone)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepoPG) Upsert(ctx context.Context, p *Profile) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO profiles (id, name, email, age, blood_group, phone)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO UPDATE SET name=$2, email=$3, age=$4, blood_group=$5,
			phone=$6, updated_at=NOW()`,
		p.ID, p.Name, p.Email, p.Age, p.BloodGroup, p.Phone)
	return err
}

// =========== Appointments ===========

type appointmentRepoPG struct{ db queryable }

func NewAppointmentRepoPG(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepoPG{db: pool}
}

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	return r.db.QueryRow(ctx, `
		INSERT INTO appointments (id, patient_name, doctor_name, specialty, date, time, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at`,
		a.ID, a.PatientName, a.DoctorName, a.Specialty, a.Date, a.Time, a.Status).
		Scan(&a.CreatedAt)
}

func (r *appointmentRepoPG) List(ctx context.Context) ([]*Appointment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, patient_name, doctor_name, specialty, date, time, status, created_at
		FROM appointments ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []*Appointment{}
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.ID, &a.PatientName, &a.DoctorName, &a.Specialty,
			&a.Date, &a.Time, &a.Status, &a.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &a)
	}
	return items, rows.Err()
}

// =========== Medications ===========

type medicationRepoPG struct{ db queryable }

func NewMedicationRepoPG(pool *pgxpool.Pool) MedicationRepository {
	return &medicationRepoPG{db: pool}
}

const medCols = `id, user_id, name, dosage, time, taken`

func scanMedication(row pgx.Row) (*Medication, error) {
	var m Medication
	var taken int16
	if err := row.Scan(&m.ID, &m.UserID, &m.Name, &m.Dosage, &m.Time, &taken); err != nil {
		return nil, err
	}
	m.Taken = int(taken)
	return &m, nil
}

func (r *medicationRepoPG) Create(ctx context.Context, m *Medication) error {
	m.ID = uuid.New()
	_, err := r.db.Exec(ctx, `
		INSERT INTO medications (`+medCols+`) VALUES ($1,$2,$3,$4,$5,$6)`,
		m.ID, m.UserID, m.Name, m.Dosage, m.Time, int16(m.Taken))
	return err
}

func (r *medicationRepoPG) ListByUser(ctx context.Context, userID string) ([]*Medication, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+medCols+` FROM medications WHERE user_id = $1 ORDER BY time, created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []*Medication{}
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (r *medicationRepoPG) ToggleTaken(ctx context.Context, id uuid.UUID) (*Medication, error) {
	m, err := scanMedication(r.db.QueryRow(ctx, `
		UPDATE medications SET taken = 1 - taken WHERE id = $1
		RETURNING `+medCols, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return m, err
}

// =========== Beds ===========

type bedRepoPG struct{ db queryable }

func NewBedRepoPG(pool *pgxpool.Pool) BedRepository { return &bedRepoPG{db: pool} }

func (r *bedRepoPG) List(ctx context.Context) ([]Bed, error) {
	rows, err := r.db.Query(ctx, `SELECT id, hospital, location, available, total FROM beds ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	beds := []Bed{}
	for rows.Next() {
		var b Bed
		if err := rows.Scan(&b.ID, &b.Hospital, &b.Location, &b.Available, &b.Total); err != nil {
			return nil, err
		}
		beds = append(beds, b)
	}
	return beds, rows.Err()
}
