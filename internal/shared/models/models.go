package models

import "time"

// Contact is the identity and contact group of an application.
type Contact struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// MailingAddress is the applicant's street address.
type MailingAddress struct {
	Street  string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

// FundingRequest describes the business and the amount asked for.
type FundingRequest struct {
	FundingAmount   string `json:"fundingAmount"`
	FundingPurpose  string `json:"fundingPurpose"`
	BusinessType    string `json:"businessType"`
	YearsInBusiness string `json:"yearsInBusiness"`
	AnnualRevenue   string `json:"annualRevenue"`
	CreditScore     string `json:"creditScore"`
}

// PaymentInstrument holds raw card data. It must never be logged or included
// in the handoff message.
type PaymentInstrument struct {
	CardholderName string `json:"cardholderName"`
	BillingAddress string `json:"billingAddress"`
	BillingCity    string `json:"billingCity"`
	BillingState   string `json:"billingState"`
	BillingZip     string `json:"billingZip"`
	CardNumber     string `json:"cardNumber"`
	ExpMonth       string `json:"expMonth"`
	ExpYear        string `json:"expYear"`
	CVV            string `json:"cvv"`
}

// ApplicationRecord is both the wizard draft and the persisted record. The
// embedded groups flatten into the wire format used by /api/submit-form.
type ApplicationRecord struct {
	ID        int64      `json:"id,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`

	Contact
	MailingAddress
	FundingRequest
	TermsAccepted bool `json:"termsAccepted"`
	PaymentInstrument
}

// Finalized reports whether the persistence collaborator has assigned both
// the id and the creation timestamp.
func (r ApplicationRecord) Finalized() bool {
	return r.ID != 0 && r.CreatedAt != nil && !r.CreatedAt.IsZero()
}

// ReviewerSession is returned by the reviewer login endpoint.
type ReviewerSession struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ErrorResponse is the failure body of every API endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}
