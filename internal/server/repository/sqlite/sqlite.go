package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"fundingintake/internal/server/repository"
	"fundingintake/internal/shared/models"
)

type Repository struct {
	db     *sql.DB
	sealer repository.Sealer
}

func New(dsn string, sealer repository.Sealer) (*Repository, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS applications (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
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
			terms_accepted INTEGER NOT NULL,
			payment BLOB NOT NULL,
			created_at TIMESTAMP NOT NULL
		);
	`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repository{db: db, sealer: sealer}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateApplication inserts rec and returns it with the assigned id and
// created_at. Any id or timestamp on rec is ignored.
func (r *Repository) CreateApplication(ctx context.Context, rec models.ApplicationRecord) (models.ApplicationRecord, error) {
	payment, err := repository.SealPayment(r.sealer, rec.PaymentInstrument)
	if err != nil {
		return models.ApplicationRecord{}, fmt.Errorf("seal payment: %w", err)
	}
	now := time.Now().UTC()
	args := append(repository.ApplicantArgs(rec), payment, now)
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO applications(`+repository.ApplicantColumns+`, payment, created_at)
		VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`, args...)
	if err != nil {
		return models.ApplicationRecord{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.ApplicationRecord{}, err
	}
	rec.ID = id
	rec.CreatedAt = &now
	return rec, nil
}

// ListApplications returns every application in insertion order.
func (r *Repository) ListApplications(ctx context.Context) ([]models.ApplicationRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+repository.SelectColumns+` FROM applications ORDER BY id ASC`)
	if err != nil {
		return nil, err
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
