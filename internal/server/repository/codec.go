package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"fundingintake/internal/shared/models"
)

// Sealer encrypts the payment group before it reaches the database.
type Sealer interface {
	Seal(plaintext, aad []byte) ([]byte, error)
	Open(ciphertext, aad []byte) ([]byte, error)
}

var paymentAAD = []byte("application.payment.v1")

// ApplicantColumns are the plaintext columns, in the order of ApplicantArgs.
const ApplicantColumns = "first_name, last_name, email, phone, address, city, state, zip_code, " +
	"funding_amount, funding_purpose, business_type, years_in_business, annual_revenue, credit_score, terms_accepted"

// SelectColumns is the column list read back by ScanApplication.
const SelectColumns = "id, " + ApplicantColumns + ", payment, created_at"

func ApplicantArgs(rec models.ApplicationRecord) []any {
	return []any{
		rec.FirstName, rec.LastName, rec.Email, rec.Phone,
		rec.Street, rec.City, rec.State, rec.ZipCode,
		rec.FundingAmount, rec.FundingPurpose, rec.BusinessType,
		rec.YearsInBusiness, rec.AnnualRevenue, rec.CreditScore,
		rec.TermsAccepted,
	}
}

func SealPayment(s Sealer, p models.PaymentInstrument) ([]byte, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return s.Seal(b, paymentAAD)
}

func OpenPayment(s Sealer, blob []byte) (models.PaymentInstrument, error) {
	var p models.PaymentInstrument
	b, err := s.Open(blob, paymentAAD)
	if err != nil {
		return p, fmt.Errorf("%w: %v", ErrCorruptPayment, err)
	}
	if err := json.Unmarshal(b, &p); err != nil {
		return p, fmt.Errorf("%w: %v", ErrCorruptPayment, err)
	}
	return p, nil
}

type Scanner interface {
	Scan(dest ...any) error
}

// ScanApplication reads one row selected with SelectColumns.
func ScanApplication(row Scanner, s Sealer) (models.ApplicationRecord, error) {
	var rec models.ApplicationRecord
	var payment []byte
	var createdAt time.Time
	if err := row.Scan(
		&rec.ID,
		&rec.FirstName, &rec.LastName, &rec.Email, &rec.Phone,
		&rec.Street, &rec.City, &rec.State, &rec.ZipCode,
		&rec.FundingAmount, &rec.FundingPurpose, &rec.BusinessType,
		&rec.YearsInBusiness, &rec.AnnualRevenue, &rec.CreditScore,
		&rec.TermsAccepted,
		&payment, &createdAt,
	); err != nil {
		return models.ApplicationRecord{}, err
	}
	p, err := OpenPayment(s, payment)
	if err != nil {
		return models.ApplicationRecord{}, fmt.Errorf("application %d: %w", rec.ID, err)
	}
	rec.PaymentInstrument = p
	createdAt = createdAt.UTC()
	rec.CreatedAt = &createdAt
	return rec, nil
}
