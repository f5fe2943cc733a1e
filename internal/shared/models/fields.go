package models

import (
	"slices"
	"strconv"
	"time"
)

// DefaultFundingAmount seeds every new draft.
const DefaultFundingAmount = "$100,000 or More"

// Maximum lengths enforced on free-text card fields.
const (
	MaxCardNumberLength = 19
	MaxCVVLength        = 4
)

// ExpYearSpan is how many years past the current one an expiration may be.
const ExpYearSpan = 10

var States = []string{
	"Alabama", "Alaska", "Arizona", "Arkansas", "California", "Colorado", "Connecticut", "Delaware",
	"Florida", "Georgia", "Hawaii", "Idaho", "Illinois", "Indiana", "Iowa", "Kansas",
	"Kentucky", "Louisiana", "Maine", "Maryland", "Massachusetts", "Michigan", "Minnesota", "Mississippi",
	"Missouri", "Montana", "Nebraska", "Nevada", "New Hampshire", "New Jersey", "New Mexico", "New York",
	"North Carolina", "North Dakota", "Ohio", "Oklahoma", "Oregon", "Pennsylvania", "Rhode Island", "South Carolina",
	"South Dakota", "Tennessee", "Texas", "Utah", "Vermont", "Virginia", "Washington", "West Virginia",
	"Wisconsin", "Wyoming",
}

var FundingAmounts = []string{
	"Under $25,000",
	"$25,000 - $49,999",
	"$50,000 - $99,999",
	DefaultFundingAmount,
}

var BusinessTypes = []string{
	"Sole Proprietorship",
	"Partnership",
	"LLC",
	"Corporation",
	"Non-Profit",
	"Other",
}

var YearsInBusinessBrackets = []string{
	"Less than 1 year",
	"1-2 years",
	"3-5 years",
	"5-10 years",
	"More than 10 years",
}

var AnnualRevenueBrackets = []string{
	"Under $100,000",
	"$100,000 - $500,000",
	"$500,000 - $1,000,000",
	"$1,000,000 - $5,000,000",
	"Over $5,000,000",
}

var CreditScoreBrackets = []string{
	"Excellent (750+)",
	"Good (700-749)",
	"Fair (650-699)",
	"Poor (600-649)",
	"Very Poor (Below 600)",
	"Not sure",
}

var ExpMonths = []string{"01", "02", "03", "04", "05", "06", "07", "08", "09", "10", "11", "12"}

// ExpYears returns the accepted expiration years: the calendar year of now
// through ExpYearSpan years later.
func ExpYears(now time.Time) []string {
	out := make([]string, 0, ExpYearSpan+1)
	for y := now.Year(); y <= now.Year()+ExpYearSpan; y++ {
		out = append(out, strconv.Itoa(y))
	}
	return out
}

// Group identifies one logical attribute group of an ApplicationRecord.
type Group int

const (
	GroupContact Group = iota
	GroupAddress
	GroupFunding
	GroupPayment
)

func (g Group) Title() string {
	switch g {
	case GroupContact:
		return "Personal Information"
	case GroupAddress:
		return "Address"
	case GroupFunding:
		return "Funding Details"
	case GroupPayment:
		return "Payment Information (Sensitive)"
	}
	return "Other"
}

// Field describes one string attribute of an ApplicationRecord.
type Field struct {
	Name      string
	Label     string
	Group     Group
	Sensitive bool
	MaxLength int
	domain    func(now time.Time) []string
}

// Enumerated reports whether the field only accepts values from a fixed domain.
func (f Field) Enumerated() bool { return f.domain != nil }

// Domain returns the accepted values, or nil for free text.
func (f Field) Domain(now time.Time) []string {
	if f.domain == nil {
		return nil
	}
	return f.domain(now)
}

// InDomain reports whether v is accepted. Free-text fields accept anything.
func (f Field) InDomain(v string, now time.Time) bool {
	if f.domain == nil {
		return true
	}
	return slices.Contains(f.domain(now), v)
}

func fixed(values []string) func(time.Time) []string {
	return func(time.Time) []string { return values }
}

// Fields lists every string attribute in wire order. Consent is a boolean
// and is handled separately.
var Fields = []Field{
	{Name: "firstName", Label: "First Name", Group: GroupContact},
	{Name: "lastName", Label: "Last Name", Group: GroupContact},
	{Name: "email", Label: "Email Address", Group: GroupContact},
	{Name: "phone", Label: "Phone Number", Group: GroupContact},
	{Name: "address", Label: "Street Address", Group: GroupAddress},
	{Name: "city", Label: "City", Group: GroupAddress},
	{Name: "state", Label: "State", Group: GroupAddress, domain: fixed(States)},
	{Name: "zipCode", Label: "ZIP Code", Group: GroupAddress},
	{Name: "fundingAmount", Label: "Funding Amount Needed", Group: GroupFunding, domain: fixed(FundingAmounts)},
	{Name: "fundingPurpose", Label: "Purpose of Funding", Group: GroupFunding},
	{Name: "businessType", Label: "Business Type", Group: GroupFunding, domain: fixed(BusinessTypes)},
	{Name: "yearsInBusiness", Label: "Years in Business", Group: GroupFunding, domain: fixed(YearsInBusinessBrackets)},
	{Name: "annualRevenue", Label: "Annual Revenue", Group: GroupFunding, domain: fixed(AnnualRevenueBrackets)},
	{Name: "creditScore", Label: "Credit Score Range", Group: GroupFunding, domain: fixed(CreditScoreBrackets)},
	{Name: "cardholderName", Label: "Cardholder Name", Group: GroupPayment, Sensitive: true},
	{Name: "billingAddress", Label: "Billing Address", Group: GroupPayment, Sensitive: true},
	{Name: "billingCity", Label: "Billing City", Group: GroupPayment, Sensitive: true},
	{Name: "billingState", Label: "Billing State", Group: GroupPayment, Sensitive: true, domain: fixed(States)},
	{Name: "billingZip", Label: "Billing ZIP", Group: GroupPayment, Sensitive: true},
	{Name: "cardNumber", Label: "Credit Card Number", Group: GroupPayment, Sensitive: true, MaxLength: MaxCardNumberLength},
	{Name: "expMonth", Label: "Expiration Month", Group: GroupPayment, Sensitive: true, domain: fixed(ExpMonths)},
	{Name: "expYear", Label: "Expiration Year", Group: GroupPayment, Sensitive: true, domain: ExpYears},
	{Name: "cvv", Label: "CVV", Group: GroupPayment, Sensitive: true, MaxLength: MaxCVVLength},
}

// ConsentField is the wire name of the terms-accepted flag.
const ConsentField = "termsAccepted"

// LookupField finds a field by its wire name.
func LookupField(name string) (Field, bool) {
	for _, f := range Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// StringField returns a pointer to the named string attribute so callers can
// read or assign it without reflection.
func (r *ApplicationRecord) StringField(name string) (*string, bool) {
	switch name {
	case "firstName":
		return &r.FirstName, true
	case "lastName":
		return &r.LastName, true
	case "email":
		return &r.Email, true
	case "phone":
		return &r.Phone, true
	case "address":
		return &r.Street, true
	case "city":
		return &r.City, true
	case "state":
		return &r.State, true
	case "zipCode":
		return &r.ZipCode, true
	case "fundingAmount":
		return &r.FundingAmount, true
	case "fundingPurpose":
		return &r.FundingPurpose, true
	case "businessType":
		return &r.BusinessType, true
	case "yearsInBusiness":
		return &r.YearsInBusiness, true
	case "annualRevenue":
		return &r.AnnualRevenue, true
	case "creditScore":
		return &r.CreditScore, true
	case "cardholderName":
		return &r.CardholderName, true
	case "billingAddress":
		return &r.BillingAddress, true
	case "billingCity":
		return &r.BillingCity, true
	case "billingState":
		return &r.BillingState, true
	case "billingZip":
		return &r.BillingZip, true
	case "cardNumber":
		return &r.CardNumber, true
	case "expMonth":
		return &r.ExpMonth, true
	case "expYear":
		return &r.ExpYear, true
	case "cvv":
		return &r.CVV, true
	}
	return nil, false
}

// Value returns the named string attribute, or "" for unknown names.
func (r ApplicationRecord) Value(name string) string {
	p, ok := r.StringField(name)
	if !ok {
		return ""
	}
	return *p
}
