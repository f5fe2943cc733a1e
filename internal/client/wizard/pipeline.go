package wizard

import (
	"context"
	"math/rand"

	"go.uber.org/zap"

	"fundingintake/internal/client/handoff"
	"fundingintake/internal/shared/logging"
	"fundingintake/internal/shared/models"
)

// FallbackSubmitMessage is shown when a failed submission carries no
// collaborator message.
const FallbackSubmitMessage = "Failed to submit form"

const (
	referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	referenceLength   = 9
	referencePrefix   = "USA-"
)

// Persister stores a draft and returns it with id and created_at assigned.
type Persister interface {
	SubmitApplication(ctx context.Context, rec models.ApplicationRecord) (models.ApplicationRecord, error)
}

// Receipt is the outcome of a successful submission.
type Receipt struct {
	Record models.ApplicationRecord
	// ReferenceCode is cosmetic. It is neither persisted nor unique; the
	// record id is the authoritative reference.
	ReferenceCode string
	HandoffURL    string
}

// DisplayReference returns the reference code as shown to the applicant.
func (r Receipt) DisplayReference() string {
	return referencePrefix + r.ReferenceCode
}

// NewReferenceCode returns 9 random characters from [A-Z0-9].
func NewReferenceCode() string {
	b := make([]byte, referenceLength)
	for i := range b {
		b[i] = referenceAlphabet[rand.Intn(len(referenceAlphabet))]
	}
	return string(b)
}

// Pipeline persists a draft and then hands the summary off.
type Pipeline struct {
	persister   Persister
	opener      handoff.Opener
	destination string
	logger      *zap.Logger
	newCode     func() string
}

type PipelineOption func(*Pipeline)

// WithDestination overrides handoff.DefaultDestination.
func WithDestination(dest string) PipelineOption {
	return func(p *Pipeline) {
		if dest != "" {
			p.destination = dest
		}
	}
}

func WithPipelineLogger(l *zap.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = logging.OrNop(l).Named("pipeline") }
}

func NewPipeline(persister Persister, opener handoff.Opener, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		persister:   persister,
		opener:      opener,
		destination: handoff.DefaultDestination,
		logger:      zap.NewNop(),
		newCode:     NewReferenceCode,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Submit persists draft and, only after that succeeds, opens the handoff.
// Opener failures are logged and do not fail the submission.
func (p *Pipeline) Submit(ctx context.Context, draft models.ApplicationRecord) (Receipt, error) {
	if !draft.TermsAccepted {
		return Receipt{}, ErrConsentRequired
	}

	saved, err := p.persister.SubmitApplication(ctx, draft)
	if err != nil {
		p.logger.Warn("submission failed", zap.Error(err))
		return Receipt{}, &PersistenceError{Message: displayMessage(err, FallbackSubmitMessage), Err: err}
	}
	if !saved.Finalized() {
		p.logger.Warn("persisted record is missing id or created_at", zap.Int64("id", saved.ID))
	}

	link := handoff.Link(p.destination, draft)
	if p.opener != nil {
		if err := p.opener.Open(link); err != nil {
			p.logger.Warn("open handoff link", zap.Error(err))
		}
	}

	receipt := Receipt{Record: saved, ReferenceCode: p.newCode(), HandoffURL: link}
	p.logger.Info("application submitted",
		zap.Int64("id", saved.ID),
		zap.String("reference", receipt.DisplayReference()),
	)
	return receipt, nil
}
