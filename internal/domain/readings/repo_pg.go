package readings

import (
	"context"
	"errors"
	"time"

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

const readingCols = `id, patient_id, recorded_at, heart_rate, bp_systolic,
	bp_diastolic, oxygen_pct, temperature_c, created_at`

func (r *repoPG) scanReading(row pgx.Row) (*Reading, error) {
	var rd Reading
	err := row.Scan(&rd.ID, &rd.PatientID, &rd.RecordedAt, &rd.HeartRate,
		&rd.BPSystolic, &rd.BPDiastolic, &rd.OxygenPct, &rd.TemperatureC,
		&rd.CreatedAt)
	return &rd, err
}

func (r *repoPG) collect(rows pgx.Rows) ([]*Reading, error) {
	defer rows.Close()
	var result []*Reading
	for rows.Next() {
		rd, err := r.scanReading(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rd)
	}
	return result, rows.Err()
}

func (r *repoPG) Create(ctx context.Context, rd *Reading) error {
	rd.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO readings (id, patient_id, recorded_at, heart_rate,
			bp_systolic, bp_diastolic, oxygen_pct, temperature_c)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		rd.ID, rd.PatientID, rd.RecordedAt, rd.HeartRate,
		rd.BPSystolic, rd.BPDiastolic, rd.OxygenPct, rd.TemperatureC)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Reading, error) {
	return r.scanReading(r.conn(ctx).QueryRow(ctx,
		`SELECT `+readingCols+` FROM readings WHERE id = $1`, id))
}

func (r *repoPG) Latest(ctx context.Context, patientID uuid.UUID) (*Reading, error) {
	rd, err := r.scanReading(r.conn(ctx).QueryRow(ctx, `
		SELECT `+readingCols+` FROM readings
		WHERE patient_id = $1
		ORDER BY recorded_at DESC
		LIMIT 1`, patientID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoReadings
	}
	return rd, err
}

func (r *repoPG) ListRange(ctx context.Context, patientID uuid.UUID, from, to time.Time, limit, offset int) ([]*Reading, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM readings
		WHERE patient_id = $1 AND recorded_at >= $2 AND recorded_at <= $3`,
		patientID, from, to).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+readingCols+` FROM readings
		WHERE patient_id = $1 AND recorded_at >= $2 AND recorded_at <= $3
		ORDER BY recorded_at ASC
		LIMIT $4 OFFSET $5`, patientID, from, to, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	result, err := r.collect(rows)
	return result, total, err
}

func (r *repoPG) ListSince(ctx context.Context, patientID uuid.UUID, since time.Time) ([]*Reading, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+readingCols+` FROM readings
		WHERE patient_id = $1 AND recorded_at >= $2
		ORDER BY recorded_at ASC`, patientID, since)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

func (r *repoPG) LatestPerPatient(ctx context.Context) ([]*Reading, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT DISTINCT ON (patient_id) `+readingCols+` FROM readings
		ORDER BY patient_id, recorded_at DESC`)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}
