package wizard

import (
	"fmt"
	"strconv"
	"time"

	"fundingintake/internal/shared/models"
)

// NewDraft returns the seeded record a session starts from: the highest
// funding bracket and an expiration one month after now.
func NewDraft(now time.Time) models.ApplicationRecord {
	exp := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location())
	var rec models.ApplicationRecord
	rec.FundingAmount = models.DefaultFundingAmount
	rec.ExpMonth = fmt.Sprintf("%02d", int(exp.Month()))
	rec.ExpYear = strconv.Itoa(exp.Year())
	return rec
}

// setField assigns a registry field on rec.
func setField(rec *models.ApplicationRecord, name, value string) error {
	p, ok := rec.StringField(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	*p = value
	return nil
}
