// Package gate switches the client between the applicant form and the
// reviewer listing behind a credential check.
package gate

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"fundingintake/internal/shared/logging"
	"fundingintake/internal/shared/models"
)

// InvalidCredentialsMessage is the only text shown for a rejected login.
const InvalidCredentialsMessage = "Invalid email or password"

// FallbackMessage is shown when a login fails without a server message.
const FallbackMessage = "Login failed"

type userMessager interface {
	UserMessage() string
}

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidTransition  = errors.New("gate: invalid transition")
)

// Mode is the current view of the client. Exactly one mode is active.
type Mode int

const (
	ModeApplicant Mode = iota
	ModeLoginPrompt
	ModeReviewer
)

func (m Mode) String() string {
	switch m {
	case ModeApplicant:
		return "applicant"
	case ModeLoginPrompt:
		return "login"
	case ModeReviewer:
		return "reviewer"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Authenticator exchanges a reviewer credential for a session. It returns
// ErrInvalidCredentials when the pair is rejected.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (models.ReviewerSession, error)
}

// Gate is the access state machine. It is safe for concurrent use.
type Gate struct {
	auth   Authenticator
	logger *zap.Logger

	mu       sync.Mutex
	mode     Mode
	email    string
	password string
	errMsg   string
	session  *models.ReviewerSession
	attempt  uint64
}

func New(auth Authenticator, logger *zap.Logger) *Gate {
	return &Gate{auth: auth, logger: logging.OrNop(logger).Named("gate")}
}

func (g *Gate) Mode() Mode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mode
}

// Error returns the message shown on the login prompt, or "".
func (g *Gate) Error() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.errMsg
}

// Email returns the email currently typed into the login prompt.
func (g *Gate) Email() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.email
}

// Session returns the reviewer session while in ModeReviewer.
func (g *Gate) Session() (models.ReviewerSession, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mode != ModeReviewer || g.session == nil {
		return models.ReviewerSession{}, false
	}
	return *g.session, true
}

// Reveal opens the login prompt from the applicant view.
func (g *Gate) Reveal() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch g.mode {
	case ModeApplicant:
		g.mode = ModeLoginPrompt
		return nil
	case ModeLoginPrompt:
		return nil
	}
	return ErrInvalidTransition
}

func (g *Gate) SetCredentials(email, password string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mode != ModeLoginPrompt {
		return ErrInvalidTransition
	}
	g.email = email
	g.password = password
	return nil
}

// Login checks the typed credentials. A rejected pair keeps the prompt open
// with InvalidCredentialsMessage. There is no lockout or attempt counting.
func (g *Gate) Login(ctx context.Context) error {
	g.mu.Lock()
	if g.mode != ModeLoginPrompt {
		g.mu.Unlock()
		return ErrInvalidTransition
	}
	email, password := g.email, g.password
	if email == "" || password == "" {
		g.errMsg = InvalidCredentialsMessage
		g.mu.Unlock()
		return ErrInvalidCredentials
	}
	g.attempt++
	attempt := g.attempt
	g.mu.Unlock()

	sess, err := g.auth.Authenticate(ctx, email, password)

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mode != ModeLoginPrompt || g.attempt != attempt {
		// Cancelled or superseded while the check was running.
		return ErrInvalidTransition
	}
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			g.errMsg = InvalidCredentialsMessage
			g.logger.Info("reviewer login rejected")
			return ErrInvalidCredentials
		}
		g.errMsg = FallbackMessage
		var um userMessager
		if errors.As(err, &um) && um.UserMessage() != "" {
			g.errMsg = um.UserMessage()
		}
		g.logger.Warn("reviewer login failed", zap.Error(err))
		return fmt.Errorf("login: %w", err)
	}
	g.mode = ModeReviewer
	g.email, g.password, g.errMsg = "", "", ""
	g.session = &sess
	g.logger.Info("reviewer view granted")
	return nil
}

// Cancel closes the login prompt and clears its inputs and error.
func (g *Gate) Cancel() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mode != ModeLoginPrompt {
		return ErrInvalidTransition
	}
	g.mode = ModeApplicant
	g.email, g.password, g.errMsg = "", "", ""
	g.attempt++
	return nil
}

// Leave returns from the reviewer view to the form and drops the session.
func (g *Gate) Leave() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mode != ModeReviewer {
		return ErrInvalidTransition
	}
	g.mode = ModeApplicant
	g.session = nil
	return nil
}
