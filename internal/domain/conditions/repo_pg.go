package conditions

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vitalwatch/vitalwatch/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const conditionCols = `id, patient_id, name, diagnosis_date, severity,
	treatment_plan, notes, status, created_at, updated_at`

func (r *repoPG) scanCondition(row pgx.Row) (*Condition, error) {
	var c Condition
	err := row.Scan(&c.ID, &c.PatientID, &c.Name, &c.DiagnosisDate, &c.Severity,
		&c.TreatmentPlan, &c.Notes, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	return &c, err
}

func (r *repoPG) Create(ctx context.Context, c *Condition) error {
	c.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medical_conditions (id, patient_id, name, diagnosis_date,
			severity, treatment_plan, notes, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		c.ID, c.PatientID, c.Name, c.DiagnosisDate,
		c.Severity, c.TreatmentPlan, c.Notes, c.Status)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Condition, error) {
	return r.scanCondition(r.conn(ctx).QueryRow(ctx,
		`SELECT `+conditionCols+` FROM medical_conditions WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, c *Condition) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE medical_conditions SET name=$2, diagnosis_date=$3, severity=$4,
			treatment_plan=$5, notes=$6, status=$7, updated_at=NOW()
		WHERE id = $1`,
		c.ID, c.Name, c.DiagnosisDate, c.Severity,
		c.TreatmentPlan, c.Notes, c.Status)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM medical_conditions WHERE id = $1`, id)
	return err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, status string, limit, offset int) ([]*Condition, int, error) {
	where := `WHERE patient_id = $1`
	args := []interface{}{patientID}
	if status != "" {
		where += ` AND status = $2`
		args = append(args, status)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM medical_conditions `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM medical_conditions %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		conditionCols, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var conditions []*Condition
	for rows.Next() {
		c, err := r.scanCondition(rows)
		if err != nil {
			return nil, 0, err
		}
		conditions = append(conditions, c)
	}
	return conditions, total, rows.Err()
}
