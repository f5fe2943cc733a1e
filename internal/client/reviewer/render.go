package reviewer

import (
	"fmt"
	"io"
	"strconv"

	"fundingintake/internal/shared/models"
)

const createdAtLayout = "2006-01-02 15:04:05 MST"

// Row is one labelled value.
type Row struct {
	Label string
	Value string
}

// Section is one attribute group of a record.
type Section struct {
	Title     string
	Sensitive bool
	Rows      []Row
}

// Heading returns "Submission #<id> - <created_at>".
func Heading(rec models.ApplicationRecord) string {
	created := "unknown date"
	if rec.CreatedAt != nil {
		created = rec.CreatedAt.UTC().Format(createdAtLayout)
	}
	return "Submission #" + strconv.FormatInt(rec.ID, 10) + " - " + created
}

// Sections groups every field of rec, payment fields included.
func Sections(rec models.ApplicationRecord) []Section {
	groups := []models.Group{models.GroupContact, models.GroupAddress, models.GroupFunding, models.GroupPayment}
	out := make([]Section, 0, len(groups))
	for _, g := range groups {
		s := Section{Title: g.Title(), Sensitive: g == models.GroupPayment}
		for _, f := range models.Fields {
			if f.Group == g {
				s.Rows = append(s.Rows, Row{Label: f.Label, Value: rec.Value(f.Name)})
			}
		}
		if g == models.GroupFunding {
			s.Rows = append(s.Rows, Row{Label: "Terms Accepted", Value: yesNo(rec.TermsAccepted)})
		}
		out = append(out, s)
	}
	return out
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// Render writes a plain-text rendition of snap.
func Render(w io.Writer, snap Snapshot) error {
	var err error
	p := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}

	switch snap.Status {
	case StatusIdle:
		p("Submissions not loaded\n")
	case StatusLoading:
		p("Loading submissions...\n")
	case StatusError:
		p("Error: %s\n", snap.Message)
	case StatusEmpty:
		p("No submissions yet\n")
	case StatusLoaded:
		p("%d submission(s)\n", len(snap.Records))
		for _, rec := range snap.Records {
			p("\n%s\n", Heading(rec))
			for _, s := range Sections(rec) {
				p("  %s\n", s.Title)
				for _, r := range s.Rows {
					p("    %s: %s\n", r.Label, r.Value)
				}
			}
		}
	}
	return err
}
