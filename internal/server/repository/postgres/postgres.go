// Package postgres stores applications in PostgreSQL through lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"fundingintake/internal/server/repository"
	"fundingintake/internal/shared/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS applications (
	id BIGSERIAL PRIMARY KEY,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	email TEXT NOT NULL,
	phone TEXT NOT NULL,
	address TEXT NOT NULL,
	city TEXT NOT NULL,
	state TEXT NOT NULL,
	zip_code TEXT NOT NULL,
	funding_amount TEXT NOT NULL,
	funding_purpose TEXT NOT NULL,
	business_type TEXT NOT NULL,
	years_in_business TEXT NOT NULL,
	annual_revenue TEXT NOT NULL,
	credit_score TEXT NOT NULL,
	terms_accepted BOOLEAN NOT NULL,
	payment BYTEA NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const insertApplication = `INSERT INTO applications (` + repository.ApplicantColumns + `, payment)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
RETURNING id, created_at`

const listApplications = `SELECT ` + repository.SelectColumns + ` FROM applications ORDER BY id ASC`

type Repository struct {
	db     *sql.DB
	sealer repository.Sealer
}

// New opens the database, tunes the pool and ensures the schema exists.
func New(ctx context.Context, dsn string, sealer repository.Sealer) (*Repository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	r := newRepository(db, sealer)
	if err := r.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func newRepository(db *sql.DB, sealer repository.Sealer) *Repository {
	return &Repository{db: db, sealer: sealer}
}

func (r *Repository) migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create applications table: %w", err)
	}
	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) CreateApplication(ctx context.Context, rec models.ApplicationRecord) (models.ApplicationRecord, error) {
	payment, err := repository.SealPayment(r.sealer, rec.PaymentInstrument)
	if err != nil {
		return models.ApplicationRecord{}, fmt.Errorf("seal payment: %w", err)
	}
	args := append(repository.ApplicantArgs(rec), payment)
	var createdAt time.Time
	if err := r.db.QueryRowContext(ctx, insertApplication, args...).Scan(&rec.ID, &createdAt); err != nil {
		return models.ApplicationRecord{}, fmt.Errorf("insert application: %w", err)
	}
	createdAt = createdAt.UTC()
	rec.CreatedAt = &createdAt
	return rec, nil
}

func (r *Repository) ListApplications(ctx context.Context) ([]models.ApplicationRecord, error) {
	rows, err := r.db.QueryContext(ctx, listApplications)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()
	out := []models.ApplicationRecord{}
	for rows.Next() {
		rec, err := repository.ScanApplication(rows, r.sealer)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
