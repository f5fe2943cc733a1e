package wizard

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"fundingintake/internal/shared/models"
)

// Validate returns every failing field of step for rec, or nil. Only
// presence, domain membership and maximum length are checked.
func Validate(step Step, rec models.ApplicationRecord, now time.Time) []FieldError {
	var out []FieldError
	for _, f := range step.Fields() {
		if fe, ok := checkField(f, rec.Value(f.Name), now); !ok {
			out = append(out, fe)
		}
	}
	if step == Step3 && !rec.TermsAccepted {
		out = append(out, FieldError{
			Field:   models.ConsentField,
			Label:   "Terms and Conditions",
			Message: "You must accept the terms and conditions",
		})
	}
	return out
}

func checkField(f models.Field, v string, now time.Time) (FieldError, bool) {
	fe := FieldError{Field: f.Name, Label: f.Label}
	switch {
	case strings.TrimSpace(v) == "":
		fe.Message = f.Label + " is required"
	case !f.InDomain(v, now):
		fe.Message = f.Label + " must be one of the listed options"
	case f.MaxLength > 0 && utf8.RuneCountInString(v) > f.MaxLength:
		fe.Message = fmt.Sprintf("%s must be at most %d characters", f.Label, f.MaxLength)
	default:
		return FieldError{}, true
	}
	return fe, false
}
