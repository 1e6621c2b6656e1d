package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const apptCols = `id, pet_id, clinic_id, service_id, veterinarian_id, date,
	start_time, end_time, duration_minutes, status, urgency, diagnosis, notes,
	created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PetID, &a.ClinicID, &a.ServiceID, &a.VeterinarianID, &a.Date,
		&a.StartTime, &a.EndTime, &a.DurationMinutes, &a.Status, &a.Urgency, &a.Diagnosis, &a.Notes,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointment (id, pet_id, clinic_id, service_id, veterinarian_id, date,
			start_time, end_time, duration_minutes, status, urgency, diagnosis, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		a.ID, a.PetID, a.ClinicID, a.ServiceID, a.VeterinarianID, a.Date,
		a.StartTime, a.EndTime, a.DurationMinutes, a.Status, a.Urgency, a.Diagnosis, a.Notes)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrSlotTaken
		}
		return err
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.pool.QueryRow(ctx, `SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE appointment SET status=$2, updated_at=NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListByPet(ctx context.Context, petID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM appointment WHERE pet_id = $1`, petID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+apptCols+` FROM appointment
		WHERE pet_id = $1 ORDER BY date DESC, start_time DESC LIMIT $2 OFFSET $3`,
		petID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectAppointments(rows)
	return items, total, err
}

func (r *repoPG) ListByClinic(ctx context.Context, clinicID uuid.UUID, from, to time.Time, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM appointment WHERE clinic_id = $1 AND date BETWEEN $2 AND $3`,
		clinicID, from, to).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+apptCols+` FROM appointment
		WHERE clinic_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date, start_time LIMIT $4 OFFSET $5`,
		clinicID, from, to, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectAppointments(rows)
	return items, total, err
}

func (r *repoPG) ListBlocking(ctx context.Context, clinicID uuid.UUID, from, to time.Time) ([]*Appointment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+apptCols+` FROM appointment
		WHERE clinic_id = $1 AND date BETWEEN $2 AND $3 AND status = ANY($4)
		ORDER BY date, start_time`,
		clinicID, from, to, BlockingStatuses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

func (r *repoPG) HasBlockingOverlap(ctx context.Context, clinicID uuid.UUID, date time.Time, startMin, endMin int) (bool, error) {
	appts, err := r.ListBlocking(ctx, clinicID, date, date)
	if err != nil {
		return false, err
	}
	for _, a := range appts {
		if a.Overlaps(startMin, endMin) {
			return true, nil
		}
	}
	return false, nil
}

func collectAppointments(rows pgx.Rows) ([]*Appointment, error) {
	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}
