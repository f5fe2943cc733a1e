// Package console drives the application wizard through line prompts.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"fundingintake/internal/client/wizard"
	"fundingintake/internal/shared/models"
)

// ErrAborted is returned when the applicant quits or input ends.
var ErrAborted = errors.New("console: aborted")

// Commands accepted at any field prompt.
const (
	cmdBack = ":back"
	cmdQuit = ":quit"
)

var errBack = errors.New("back")

// StepHeader returns a step hook that prints the header of the new step.
func StepHeader(out io.Writer) wizard.StepHook {
	return func(_, to wizard.Step) {
		printHeader(out, to)
	}
}

func printHeader(out io.Writer, s wizard.Step) {
	if s == wizard.Submitted {
		fmt.Fprintf(out, "\n=== %s ===\n", s.Title())
		return
	}
	fmt.Fprintf(out, "\n=== %s: %s ===\n", s, s.Title())
}

// Session is one interactive run of the wizard.
type Session struct {
	in   *bufio.Scanner
	out  io.Writer
	ctrl *wizard.Controller
	now  func() time.Time
}

func New(in io.Reader, out io.Writer, ctrl *wizard.Controller) *Session {
	return &Session{in: bufio.NewScanner(in), out: out, ctrl: ctrl, now: time.Now}
}

// Run prompts until the applicant declines another application, quits or
// input ends.
func (s *Session) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, "Business Funding Application")
	fmt.Fprintf(s.out, "Type %s to go to the previous step or %s to exit.\n", cmdBack, cmdQuit)
	printHeader(s.out, s.ctrl.Step())

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		switch s.ctrl.Step() {
		case wizard.Step1, wizard.Step2:
			err = s.runInputStep()
		case wizard.Step3:
			err = s.runFinalStep(ctx)
		case wizard.Submitted:
			var again bool
			again, err = s.runSubmitted()
			if err == nil && !again {
				return nil
			}
		}
		if errors.Is(err, errBack) {
			if berr := s.ctrl.Back(); berr != nil {
				fmt.Fprintf(s.out, "%v\n", berr)
			}
			continue
		}
		if err != nil {
			return err
		}
	}
}

func (s *Session) runInputStep() error {
	if err := s.promptFields(s.ctrl.Step().Fields()); err != nil {
		return err
	}
	for {
		err := s.ctrl.Next()
		var verr *wizard.ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		s.printProblems(verr)
		if err := s.promptFields(failing(verr)); err != nil {
			return err
		}
	}
}

func (s *Session) runFinalStep(ctx context.Context) error {
	s.printSummary()
	fmt.Fprintln(s.out, "\n"+models.GroupPayment.Title())
	if err := s.promptFields(wizard.Step3.Fields()); err != nil {
		return err
	}
	if err := s.promptConsent(); err != nil {
		return err
	}

	for {
		fmt.Fprintln(s.out, "Submitting...")
		err := s.ctrl.Submit(ctx)
		if err == nil {
			return nil
		}
		var verr *wizard.ValidationError
		var perr *wizard.PersistenceError
		switch {
		case errors.Is(err, wizard.ErrConsentRequired):
			fmt.Fprintln(s.out, "Please accept the terms and conditions")
			if err := s.promptConsent(); err != nil {
				return err
			}
		case errors.As(err, &verr):
			s.printProblems(verr)
			if err := s.promptFields(failing(verr)); err != nil {
				return err
			}
		case errors.As(err, &perr):
			fmt.Fprintf(s.out, "Error: %s\n", perr.Message)
			retry, err := s.confirm("Try again?", true)
			if err != nil {
				return err
			}
			if !retry {
				return ErrAborted
			}
		default:
			return err
		}
	}
}

func (s *Session) runSubmitted() (bool, error) {
	receipt, ok := s.ctrl.Receipt()
	if ok {
		fmt.Fprintln(s.out, "Thank you! Your application has been received.")
		fmt.Fprintf(s.out, "Reference Number: %s\n", receipt.DisplayReference())
		fmt.Fprintf(s.out, "Application ID: %d\n", receipt.Record.ID)
		fmt.Fprintln(s.out, "A specialist will contact you shortly.")
	}
	again, err := s.confirm("Submit Another Application?", false)
	if err != nil || !again {
		return false, err
	}
	return true, s.ctrl.Reset()
}

func (s *Session) printSummary() {
	d := s.ctrl.Draft()
	fmt.Fprintln(s.out, "Please review your information:")
	for _, step := range []wizard.Step{wizard.Step1, wizard.Step2} {
		fmt.Fprintf(s.out, "  %s\n", step.Title())
		for _, f := range step.Fields() {
			fmt.Fprintf(s.out, "    %s: %s\n", f.Label, d.Value(f.Name))
		}
	}
}

func (s *Session) printProblems(verr *wizard.ValidationError) {
	fmt.Fprintln(s.out, "Please correct the following:")
	for _, fe := range verr.Fields {
		fmt.Fprintf(s.out, "  - %s\n", fe.Message)
	}
}

// failing returns the registry fields named in verr, without consent.
func failing(verr *wizard.ValidationError) []models.Field {
	var out []models.Field
	for _, fe := range verr.Fields {
		if f, ok := models.LookupField(fe.Field); ok {
			out = append(out, f)
		}
	}
	return out
}

func (s *Session) promptFields(fields []models.Field) error {
	for _, f := range fields {
		if err := s.promptField(f); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) promptField(f models.Field) error {
	current := s.ctrl.Draft().Value(f.Name)
	options := f.Domain(s.now())
	if len(options) > 0 {
		printOptions(s.out, options)
	}
	label := f.Label
	if current != "" && !f.Sensitive {
		label += " [" + current + "]"
	}
	line, err := s.readLine(label + ": ")
	if err != nil {
		return err
	}
	if line == "" {
		return nil
	}
	return s.ctrl.Set(f.Name, resolveOption(line, options))
}

func (s *Session) promptConsent() error {
	ok, err := s.confirm("I accept the terms and conditions and authorize a credit review.", false)
	if err != nil {
		return err
	}
	return s.ctrl.SetConsent(ok)
}

func (s *Session) confirm(question string, def bool) (bool, error) {
	hint := "[y/N]"
	if def {
		hint = "[Y/n]"
	}
	line, err := s.readLine(question + " " + hint + " ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func (s *Session) readLine(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)
	if !s.in.Scan() {
		fmt.Fprintln(s.out)
		if err := s.in.Err(); err != nil {
			return "", err
		}
		return "", ErrAborted
	}
	line := strings.TrimSpace(s.in.Text())
	switch line {
	case cmdBack:
		return "", errBack
	case cmdQuit:
		return "", ErrAborted
	}
	return line, nil
}

func printOptions(out io.Writer, options []string) {
	const perRow = 4
	for i, o := range options {
		fmt.Fprintf(out, "  %2d) %-22s", i+1, o)
		if (i+1)%perRow == 0 || i == len(options)-1 {
			fmt.Fprintln(out)
		}
	}
}

// resolveOption maps a 1-based index or a case-insensitive match to the
// canonical option. Anything else is returned unchanged for validation.
func resolveOption(in string, options []string) string {
	if len(options) == 0 {
		return in
	}
	if n, err := strconv.Atoi(in); err == nil && n >= 1 && n <= len(options) {
		// Numeric options such as months and years are taken literally.
		if !isOption(in, options) {
			return options[n-1]
		}
	}
	for _, o := range options {
		if strings.EqualFold(o, in) {
			return o
		}
	}
	return in
}

func isOption(in string, options []string) bool {
	for _, o := range options {
		if o == in {
			return true
		}
	}
	return false
}
