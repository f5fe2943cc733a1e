// Package handoff builds the messaging deep link opened after a successful
// submission. The message never carries payment fields.
package handoff

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/pkg/browser"

	"fundingintake/internal/shared/models"
)

// DefaultDestination is the business line that receives handoff messages.
const DefaultDestination = "19783475703"

const baseURL = "https://wa.me/"

// Message renders the non-sensitive summary of rec.
func Message(rec models.ApplicationRecord) string {
	var b strings.Builder
	b.WriteString("*NEW FUNDING APPLICATION*\n\n")

	b.WriteString("*Personal Information*\n")
	fmt.Fprintf(&b, "Name: %s %s\n", rec.FirstName, rec.LastName)
	fmt.Fprintf(&b, "Email: %s\n", rec.Email)
	fmt.Fprintf(&b, "Phone: %s\n", rec.Phone)
	fmt.Fprintf(&b, "Address: %s, %s, %s %s\n\n", rec.Street, rec.City, rec.State, rec.ZipCode)

	b.WriteString("*Funding Details*\n")
	fmt.Fprintf(&b, "Amount Needed: %s\n", rec.FundingAmount)
	fmt.Fprintf(&b, "Business Type: %s\n", rec.BusinessType)
	fmt.Fprintf(&b, "Years in Business: %s\n", rec.YearsInBusiness)
	fmt.Fprintf(&b, "Annual Revenue: %s\n", rec.AnnualRevenue)
	fmt.Fprintf(&b, "Credit Score: %s\n\n", rec.CreditScore)

	b.WriteString("*Purpose of Funding*\n")
	b.WriteString(rec.FundingPurpose)
	b.WriteString("\n\n")
	b.WriteString("Please contact me to discuss further.")
	return b.String()
}

// Link returns the deep link for destination carrying Message(rec).
func Link(destination string, rec models.ApplicationRecord) string {
	return baseURL + url.PathEscape(destination) + "?text=" + encode(Message(rec))
}

// encode escapes s as a query value with spaces as %20.
func encode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Opener opens a handoff link. Delivery is not confirmed.
type Opener interface {
	Open(link string) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(link string) error

func (f OpenerFunc) Open(link string) error { return f(link) }

// BrowserOpener opens links in the system browser.
type BrowserOpener struct{}

func (BrowserOpener) Open(link string) error {
	return browser.OpenURL(link)
}

// PrintOpener writes the link for the user to open manually.
type PrintOpener struct {
	W io.Writer
}

func (p PrintOpener) Open(link string) error {
	_, err := fmt.Fprintf(p.W, "Continue the conversation here: %s\n", link)
	return err
}
