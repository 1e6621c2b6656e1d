package triage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const ruleCols = `id, symptom, questions, conditions, is_active, created_at, updated_at`

func scanRule(row pgx.Row) (*Rule, error) {
	var (
		r          Rule
		questions  []byte
		conditions []byte
	)
	err := row.Scan(&r.ID, &r.Symptom, &questions, &conditions, &r.IsActive, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(questions, &r.Questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	if err := json.Unmarshal(conditions, &r.Conditions); err != nil {
		return nil, fmt.Errorf("decode conditions: %w", err)
	}
	return &r, nil
}

func encodeRule(r *Rule) (questions, conditions []byte, err error) {
	if questions, err = json.Marshal(r.Questions); err != nil {
		return nil, nil, fmt.Errorf("encode questions: %w", err)
	}
	if conditions, err = json.Marshal(r.Conditions); err != nil {
		return nil, nil, fmt.Errorf("encode conditions: %w", err)
	}
	return questions, conditions, nil
}

func (p *repoPG) Create(ctx context.Context, r *Rule) error {
	questions, conditions, err := encodeRule(r)
	if err != nil {
		return err
	}
	r.ID = uuid.New()
	_, err = p.pool.Exec(ctx, `
		INSERT INTO symptom_rule (id, symptom, questions, conditions, is_active)
		VALUES ($1,$2,$3,$4,$5)`,
		r.ID, r.Symptom, questions, conditions, r.IsActive)
	return err
}

func (p *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Rule, error) {
	return scanRule(p.pool.QueryRow(ctx, `SELECT `+ruleCols+` FROM symptom_rule WHERE id = $1`, id))
}

func (p *repoPG) Update(ctx context.Context, r *Rule) error {
	questions, conditions, err := encodeRule(r)
	if err != nil {
		return err
	}
	tag, err := p.pool.Exec(ctx, `
		UPDATE symptom_rule SET symptom=$2, questions=$3, conditions=$4, is_active=$5, updated_at=NOW()
		WHERE id = $1`,
		r.ID, r.Symptom, questions, conditions, r.IsActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM symptom_rule WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *repoPG) ListActive(ctx context.Context) ([]*Rule, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+ruleCols+` FROM symptom_rule WHERE is_active = TRUE ORDER BY symptom`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRules(rows)
}

func (p *repoPG) ListForSymptoms(ctx context.Context, symptoms []string) ([]*Rule, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+ruleCols+` FROM symptom_rule
		WHERE is_active = TRUE AND symptom = ANY($1) ORDER BY symptom`, symptoms)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRules(rows)
}

func collectRules(rows pgx.Rows) ([]*Rule, error) {
	var items []*Rule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}
