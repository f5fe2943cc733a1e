// Package reviewer is the credential-gated listing of stored applications.
package reviewer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"fundingintake/internal/shared/logging"
	"fundingintake/internal/shared/models"
)

// FallbackMessage is shown when a failed listing carries no collaborator
// message.
const FallbackMessage = "Failed to fetch submissions"

type userMessager interface {
	UserMessage() string
}

// displayMessage returns the collaborator's reported text. Transport errors
// are logged, never shown.
func displayMessage(err error) string {
	var um userMessager
	if errors.As(err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}
	return FallbackMessage
}

// Lister reads every stored application in insertion order.
type Lister interface {
	ListApplications(ctx context.Context) ([]models.ApplicationRecord, error)
}

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusError
	StatusEmpty
	StatusLoaded
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	case StatusEmpty:
		return "empty"
	case StatusLoaded:
		return "loaded"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Snapshot is an immutable copy of the view state.
type Snapshot struct {
	Status  Status
	Records []models.ApplicationRecord
	// Message is set in StatusError.
	Message string
	// Seq identifies the request that produced the snapshot.
	Seq uint64
}

type Option func(*View)

func WithLogger(l *zap.Logger) Option {
	return func(v *View) { v.logger = logging.OrNop(l).Named("reviewer") }
}

// WithOnChange registers a callback run after every state change, outside
// the view lock.
func WithOnChange(fn func(Snapshot)) Option {
	return func(v *View) { v.onChange = fn }
}

// View tracks one listing. Every request gets a sequence number and its own
// context; a newer request cancels the older one and stale results are
// dropped.
type View struct {
	lister   Lister
	logger   *zap.Logger
	onChange func(Snapshot)

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
	snap   Snapshot
	closed bool
}

func NewView(lister Lister, opts ...Option) *View {
	v := &View{lister: lister, logger: zap.NewNop()}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Open issues the initial request. It is the same as Refresh.
func (v *View) Open() <-chan struct{} {
	return v.Refresh()
}

// Refresh issues a new list request, superseding any outstanding one. The
// returned channel is closed once the request has settled.
func (v *View) Refresh() <-chan struct{} {
	done := make(chan struct{})

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		close(done)
		return done
	}
	if v.cancel != nil {
		v.cancel()
	}
	v.seq++
	seq := v.seq
	ctx, cancel := context.WithCancel(context.Background())
	v.cancel = cancel
	v.snap = Snapshot{Status: StatusLoading, Records: v.snap.Records, Seq: seq}
	snap := v.snap
	v.mu.Unlock()
	v.notify(snap)

	go func() {
		defer close(done)
		records, err := v.lister.ListApplications(ctx)
		v.finish(seq, records, err)
	}()
	return done
}

func (v *View) finish(seq uint64, records []models.ApplicationRecord, err error) {
	v.mu.Lock()
	if v.closed || seq != v.seq {
		v.mu.Unlock()
		v.logger.Debug("discarding stale listing", zap.Uint64("seq", seq))
		return
	}
	v.cancel()
	v.cancel = nil

	switch {
	case err != nil:
		v.snap = Snapshot{Status: StatusError, Message: displayMessage(err), Seq: seq}
		v.logger.Warn("list submissions", zap.Error(err))
	case len(records) == 0:
		v.snap = Snapshot{Status: StatusEmpty, Records: []models.ApplicationRecord{}, Seq: seq}
	default:
		v.snap = Snapshot{Status: StatusLoaded, Records: records, Seq: seq}
		v.logger.Debug("submissions loaded", zap.Int("count", len(records)))
	}
	snap := v.snap
	v.mu.Unlock()
	v.notify(snap)
}

func (v *View) notify(s Snapshot) {
	if v.onChange != nil {
		v.onChange(s)
	}
}

func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snap
}

// Close cancels the outstanding request. Later results are discarded and
// Refresh becomes a no-op.
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
}
