package clinic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const clinicCols = `id, name, address, contact_number, email, latitude, longitude,
	opening_time, closing_time, weekdays, is_24_hours,
	specialties, emergency_support, is_active, created_at, updated_at`

func scanClinic(row pgx.Row) (*Clinic, error) {
	var (
		c           Clinic
		openingTime *string
		closingTime *string
		weekdays    []int32
		is24        bool
	)
	err := row.Scan(&c.ID, &c.Name, &c.Address, &c.ContactNumber, &c.Email,
		&c.Latitude, &c.Longitude,
		&openingTime, &closingTime, &weekdays, &is24,
		&c.Specialties, &c.EmergencySupport, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if openingTime != nil || is24 {
		oh := &OperatingHours{Is24Hours: is24}
		if openingTime != nil {
			oh.OpeningTime = *openingTime
		}
		if closingTime != nil {
			oh.ClosingTime = *closingTime
		}
		for _, d := range weekdays {
			oh.Weekdays = append(oh.Weekdays, time.Weekday(d))
		}
		c.OperatingHours = oh
	}
	return &c, nil
}

func hoursColumns(c *Clinic) (openingTime, closingTime *string, weekdays []int32, is24 bool) {
	if c.OperatingHours == nil {
		return nil, nil, nil, false
	}
	oh := c.OperatingHours
	if oh.OpeningTime != "" {
		openingTime = &oh.OpeningTime
	}
	if oh.ClosingTime != "" {
		closingTime = &oh.ClosingTime
	}
	for _, d := range oh.Weekdays {
		weekdays = append(weekdays, int32(d))
	}
	return openingTime, closingTime, weekdays, oh.Is24Hours
}

func (r *repoPG) Create(ctx context.Context, c *Clinic) error {
	c.ID = uuid.New()
	openingTime, closingTime, weekdays, is24 := hoursColumns(c)
	_, err := r.pool.Exec(ctx, `
		INSERT INTO clinic (id, name, address, contact_number, email, latitude, longitude,
			opening_time, closing_time, weekdays, is_24_hours,
			specialties, emergency_support, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		c.ID, c.Name, c.Address, c.ContactNumber, c.Email, c.Latitude, c.Longitude,
		openingTime, closingTime, weekdays, is24,
		c.Specialties, c.EmergencySupport, c.IsActive)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Clinic, error) {
	return scanClinic(r.pool.QueryRow(ctx, `SELECT `+clinicCols+` FROM clinic WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, c *Clinic) error {
	openingTime, closingTime, weekdays, is24 := hoursColumns(c)
	tag, err := r.pool.Exec(ctx, `
		UPDATE clinic SET name=$2, address=$3, contact_number=$4, email=$5,
			latitude=$6, longitude=$7,
			opening_time=$8, closing_time=$9, weekdays=$10, is_24_hours=$11,
			specialties=$12, emergency_support=$13, is_active=$14, updated_at=NOW()
		WHERE id = $1`,
		c.ID, c.Name, c.Address, c.ContactNumber, c.Email,
		c.Latitude, c.Longitude,
		openingTime, closingTime, weekdays, is24,
		c.Specialties, c.EmergencySupport, c.IsActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clinic WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Clinic, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM clinic`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+clinicCols+` FROM clinic ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Clinic
	for rows.Next() {
		c, err := scanClinic(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}

func (r *repoPG) FindCandidates(ctx context.Context, f CandidateFilter) ([]*Clinic, error) {
	query := `SELECT ` + clinicCols + ` FROM clinic WHERE is_active = TRUE`
	var args []interface{}
	idx := 1

	if len(f.Specialties) > 0 {
		query += fmt.Sprintf(` AND specialties && $%d`, idx)
		args = append(args, f.Specialties)
		idx++
	}
	if f.EmergencyOnly {
		query += ` AND emergency_support = TRUE`
	}
	if f.Open24Hours {
		query += ` AND is_24_hours = TRUE`
	}

	query += ` ORDER BY created_at`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, idx)
		args = append(args, f.Limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Clinic
	for rows.Next() {
		c, err := scanClinic(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}
