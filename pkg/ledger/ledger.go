package ledger

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/arnavshah/trip-roster-api/pkg/metrics"
	"github.com/puzpuzpuz/xsync/v4"
	"go.uber.org/zap"
)

// DefaultTTL is how long a proposal waits for approval
const DefaultTTL = 10 * time.Minute

var (
	// ErrNoPendingProposal means the trip has no proposal, or it expired
	ErrNoPendingProposal = errors.New("no pending randomization found")
	// ErrProposalMismatch means the submitted ids differ from the staged ones
	ErrProposalMismatch = errors.New("approval data does not match randomization")
)

// Proposal is a staged roster/waitlist split awaiting approval
type Proposal struct {
	TripID      string
	RosterIDs   []string
	WaitlistIDs []string
	CreatedAt   time.Time
}

// Ledger holds at most one pending proposal per trip. Entries expire after
// the TTL and are removed by Sweep.
type Ledger struct {
	entries *xsync.Map[string, Proposal]
	ttl     time.Duration
	now     func() time.Time
	logger  *zap.Logger
	metrics *metrics.Collector

	// lastSweep is the unix-nano time of the last SweepIfDue pass
	lastSweep atomic.Int64
}

// Option configures a Ledger
type Option func(*Ledger)

// WithTTL overrides DefaultTTL
func WithTTL(ttl time.Duration) Option {
	return func(l *Ledger) { l.ttl = ttl }
}

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func WithLogger(logger *zap.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

func WithMetrics(c *metrics.Collector) Option {
	return func(l *Ledger) { l.metrics = c }
}

// New creates an empty ledger
func New(opts ...Option) *Ledger {
	l := &Ledger{
		entries: xsync.NewMap[string, Proposal](),
		ttl:     DefaultTTL,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// TTL is the configured time-to-live
func (l *Ledger) TTL() time.Duration {
	return l.ttl
}

// Stage records a proposal for the trip, replacing any pending one
func (l *Ledger) Stage(tripID string, rosterIDs, waitlistIDs []string) Proposal {
	p := Proposal{
		TripID:      tripID,
		RosterIDs:   append([]string(nil), rosterIDs...),
		WaitlistIDs: append([]string(nil), waitlistIDs...),
		CreatedAt:   l.now(),
	}
	l.entries.Store(tripID, p)
	l.metrics.ProposalStaged()
	l.metrics.SetPending(l.entries.Size())
	return p
}

// Get returns the live proposal for a trip
func (l *Ledger) Get(tripID string) (Proposal, bool) {
	p, ok := l.entries.Load(tripID)
	if !ok || l.expired(p, l.now()) {
		return Proposal{}, false
	}
	return p, true
}

// Len is the number of stored proposals, expired ones included until swept
func (l *Ledger) Len() int {
	return l.entries.Size()
}

// Approve checks the submitted ids against the staged proposal and, on an
// exact match of both collections (order ignored), removes and returns it.
// The check and the removal happen atomically, so of two concurrent
// approvals for the same trip at most one succeeds. A mismatch leaves the
// proposal in place.
func (l *Ledger) Approve(tripID string, rosterIDs, waitlistIDs []string) (Proposal, error) {
	now := l.now()
	var (
		approved Proposal
		err      error
	)
	l.entries.Compute(tripID, func(p Proposal, loaded bool) (Proposal, xsync.ComputeOp) {
		switch {
		case !loaded:
			err = ErrNoPendingProposal
			return p, xsync.CancelOp
		case l.expired(p, now):
			err = ErrNoPendingProposal
			return p, xsync.DeleteOp
		case !sameIDs(p.RosterIDs, rosterIDs) || !sameIDs(p.WaitlistIDs, waitlistIDs):
			err = ErrProposalMismatch
			return p, xsync.CancelOp
		}
		approved = p
		return p, xsync.DeleteOp
	})
	l.metrics.SetPending(l.entries.Size())

	switch {
	case errors.Is(err, ErrNoPendingProposal):
		l.metrics.ProposalRejected("none")
		return Proposal{}, err
	case errors.Is(err, ErrProposalMismatch):
		l.metrics.ProposalRejected("mismatch")
		return Proposal{}, err
	}
	l.metrics.ProposalApproved()
	return approved, nil
}

// Sweep removes every proposal older than the TTL and returns how many
func (l *Ledger) Sweep() int {
	now := l.now()
	purged := 0
	l.entries.Range(func(tripID string, p Proposal) bool {
		if !l.expired(p, now) {
			return true
		}
		l.entries.Compute(tripID, func(cur Proposal, loaded bool) (Proposal, xsync.ComputeOp) {
			// re-check: the trip may have been re-staged since Range read it
			if loaded && l.expired(cur, now) {
				purged++
				l.logger.Info("removed expired proposal", zap.String("trip_id", tripID))
				return cur, xsync.DeleteOp
			}
			return cur, xsync.CancelOp
		})
		return true
	})
	l.metrics.ProposalsExpired(purged)
	l.metrics.SetPending(l.entries.Size())
	return purged
}

// SweepIfDue runs Sweep when at least interval has passed since the last
// SweepIfDue pass, for callers without a background goroutine. Concurrent
// callers share one pass; the others return 0.
func (l *Ledger) SweepIfDue(interval time.Duration) int {
	now := l.now().UnixNano()
	last := l.lastSweep.Load()
	if last != 0 && now-last < int64(interval) {
		return 0
	}
	if !l.lastSweep.CompareAndSwap(last, now) {
		return 0
	}
	return l.Sweep()
}

// Run sweeps on every interval tick until ctx is done
func (l *Ledger) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}

func (l *Ledger) expired(p Proposal, now time.Time) bool {
	return now.Sub(p.CreatedAt) > l.ttl
}

// sameIDs reports whether a and b hold the same ids with the same
// multiplicity, in any order
func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, id := range a {
		counts[id]++
	}
	for _, id := range b {
		if counts[id] == 0 {
			return false
		}
		counts[id]--
	}
	return true
}
