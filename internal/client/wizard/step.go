package wizard

import (
	"fmt"

	"fundingintake/internal/shared/models"
)

// Step is a wizard state.
type Step int

const (
	Step1 Step = iota + 1
	Step2
	Step3
	Submitted
)

// TotalSteps is the number of input steps.
const TotalSteps = 3

func (s Step) String() string {
	switch s {
	case Step1, Step2, Step3:
		return fmt.Sprintf("Step %d of %d", int(s), TotalSteps)
	case Submitted:
		return "Submitted"
	}
	return fmt.Sprintf("Step(%d)", int(s))
}

// Title is the heading shown for the step.
func (s Step) Title() string {
	switch s {
	case Step1:
		return "Personal Information"
	case Step2:
		return "Funding Details"
	case Step3:
		return "Review & Submit"
	case Submitted:
		return "Application Submitted!"
	}
	return ""
}

// Groups returns the attribute groups collected on the step.
func (s Step) Groups() []models.Group {
	switch s {
	case Step1:
		return []models.Group{models.GroupContact, models.GroupAddress}
	case Step2:
		return []models.Group{models.GroupFunding}
	case Step3:
		return []models.Group{models.GroupPayment}
	}
	return nil
}

// Fields returns the registry fields collected on the step, in order.
func (s Step) Fields() []models.Field {
	var out []models.Field
	for _, g := range s.Groups() {
		for _, f := range models.Fields {
			if f.Group == g {
				out = append(out, f)
			}
		}
	}
	return out
}
