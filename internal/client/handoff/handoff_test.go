package handoff

import (
	"bytes"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundingintake/internal/shared/models"
)

func sampleRecord() models.ApplicationRecord {
	return models.ApplicationRecord{
		Contact:        models.Contact{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Phone: "555-0100"},
		MailingAddress: models.MailingAddress{Street: "1 Main St", City: "Columbus", State: "Ohio", ZipCode: "43004"},
		FundingRequest: models.FundingRequest{
			FundingAmount: "$50,000 - $99,999", FundingPurpose: "New oven & mixer",
			BusinessType: "LLC", YearsInBusiness: "3-5 years", AnnualRevenue: "Under $100,000", CreditScore: "Good (700-749)",
		},
		TermsAccepted: true,
		PaymentInstrument: models.PaymentInstrument{
			CardholderName: "A. L. Byron", BillingAddress: "99 Card Ave", BillingCity: "Dayton",
			BillingState: "Texas", BillingZip: "75001", CardNumber: "4111111111111111",
			ExpMonth: "09", ExpYear: "2031", CVV: "987",
		},
	}
}

func TestMessage(t *testing.T) {
	msg := Message(sampleRecord())
	want := "*NEW FUNDING APPLICATION*\n\n" +
		"*Personal Information*\n" +
		"Name: Ada Lovelace\n" +
		"Email: ada@example.com\n" +
		"Phone: 555-0100\n" +
		"Address: 1 Main St, Columbus, Ohio 43004\n\n" +
		"*Funding Details*\n" +
		"Amount Needed: $50,000 - $99,999\n" +
		"Business Type: LLC\n" +
		"Years in Business: 3-5 years\n" +
		"Annual Revenue: Under $100,000\n" +
		"Credit Score: Good (700-749)\n\n" +
		"*Purpose of Funding*\n" +
		"New oven & mixer\n\n" +
		"Please contact me to discuss further."
	assert.Equal(t, want, msg)
}

func TestMessage_ExcludesPaymentFields(t *testing.T) {
	rec := sampleRecord()
	msg := Message(rec)
	for _, f := range models.Fields {
		if !f.Sensitive {
			continue
		}
		assert.NotContains(t, msg, rec.Value(f.Name), f.Name)
	}
}

func TestLink(t *testing.T) {
	link := Link(DefaultDestination, sampleRecord())
	require.True(t, strings.HasPrefix(link, "https://wa.me/19783475703?text="))
	assert.NotContains(t, link, "+")
	assert.NotContains(t, link, " ")
	assert.Contains(t, link, "Ada%20Lovelace")
	assert.Contains(t, link, "oven%20%26%20mixer")

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, Message(sampleRecord()), u.Query().Get("text"))
}

func TestOpeners(t *testing.T) {
	var got []string
	o := OpenerFunc(func(link string) error {
		got = append(got, link)
		return nil
	})
	require.NoError(t, o.Open("https://wa.me/1"))
	assert.Equal(t, []string{"https://wa.me/1"}, got)

	var buf bytes.Buffer
	require.NoError(t, PrintOpener{W: &buf}.Open("https://wa.me/1"))
	assert.Contains(t, buf.String(), "https://wa.me/1")
}
