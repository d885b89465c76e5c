package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/arnavshah/trip-roster-api/pkg/ledger"
	"github.com/arnavshah/trip-roster-api/pkg/metrics"
	"github.com/arnavshah/trip-roster-api/pkg/models"
	"github.com/arnavshah/trip-roster-api/pkg/roster"
	"github.com/arnavshah/trip-roster-api/pkg/store"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency caps simultaneous store writes during an approval
const DefaultConcurrency = 2

// EventLimit is how many events Events returns
const EventLimit = 100

// EventRecorder persists roster status changes
type EventRecorder interface {
	Record(ctx context.Context, events ...models.RosterEvent) error
	List(ctx context.Context, tripID string, limit int) ([]models.RosterEvent, error)
}

// ApprovalError reports an approval whose write phase did not fully
// succeed. The proposal is already consumed; writes that went through are
// not rolled back.
type ApprovalError struct {
	TripID   string
	Updated  int
	Failures map[string]string
	Missing  []string
}

func (e *ApprovalError) Error() string {
	return fmt.Sprintf("approved roster for trip %s partially applied: %d updated, %d failed, %d missing",
		e.TripID, e.Updated, len(e.Failures), len(e.Missing))
}

// RosterService runs the roster workflows over a store
type RosterService struct {
	store       store.Store
	allocator   *roster.Allocator
	ledger      *ledger.Ledger
	events      EventRecorder
	metrics     *metrics.Collector
	logger      *zap.Logger
	concurrency int
	now         func() time.Time
}

// Option configures a RosterService
type Option func(*RosterService)

func WithEvents(r EventRecorder) Option {
	return func(s *RosterService) { s.events = r }
}

func WithMetrics(c *metrics.Collector) Option {
	return func(s *RosterService) { s.metrics = c }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *RosterService) { s.logger = logger }
}

// WithConcurrency sets how many status writes an approval runs at once
func WithConcurrency(n int) Option {
	return func(s *RosterService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithClock replaces time.Now for event timestamps and drop dates
func WithClock(now func() time.Time) Option {
	return func(s *RosterService) { s.now = now }
}

// New creates a RosterService
func New(st store.Store, alloc *roster.Allocator, l *ledger.Ledger, opts ...Option) *RosterService {
	s := &RosterService{
		store:       st,
		allocator:   alloc,
		ledger:      l,
		logger:      zap.NewNop(),
		concurrency: DefaultConcurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Trips lists every trip in the store
func (s *RosterService) Trips(ctx context.Context) ([]models.Trip, error) {
	return s.store.ListTrips(ctx)
}

// Trip returns one trip
func (s *RosterService) Trip(ctx context.Context, id string) (models.Trip, error) {
	return s.store.GetTrip(ctx, id)
}

// Signups returns a trip's signups with the roster, waitlist and dropped
// partitions. Signups with an unrecognised status appear only in the full list.
func (s *RosterService) Signups(ctx context.Context, tripID string) (models.SignupsResponse, error) {
	signups, err := s.store.ListSignupsForTrip(ctx, tripID)
	if err != nil {
		return models.SignupsResponse{}, err
	}

	resp := models.SignupsResponse{
		Signups:  nonNil(signups),
		Roster:   []models.Signup{},
		Waitlist: []models.Signup{},
		Dropped:  []models.Signup{},
	}
	for _, su := range signups {
		switch roster.ParseStatus(su.Status).Category {
		case roster.Roster:
			resp.Roster = append(resp.Roster, su)
			if su.IsDriver {
				resp.DriverCount++
			}
		case roster.Waitlist:
			resp.Waitlist = append(resp.Waitlist, su)
		case roster.Dropped:
			resp.Dropped = append(resp.Dropped, su)
		}
	}
	return resp, nil
}

// RandomizeResult is a staged proposal
type RandomizeResult struct {
	Allocation roster.Allocation
	Message    string
}

// Randomize draws a roster for the trip from all of its signups and stages
// it for approval, replacing any pending proposal.
func (s *RosterService) Randomize(ctx context.Context, tripID string) (RandomizeResult, error) {
	trip, err := s.store.GetTrip(ctx, tripID)
	if err != nil {
		return RandomizeResult{}, err
	}
	signups, err := s.store.ListSignupsForTrip(ctx, tripID)
	if err != nil {
		return RandomizeResult{}, err
	}

	alloc, err := s.allocator.Propose(trip, signups)
	if err != nil {
		return RandomizeResult{}, err
	}
	s.ledger.Stage(tripID, alloc.RosterIDs(), alloc.WaitlistIDs())

	s.logger.Info("staged roster proposal",
		zap.String("trip_id", tripID),
		zap.Int("roster", len(alloc.Roster)),
		zap.Int("drivers", alloc.DriversSelected),
		zap.Int("non_drivers", alloc.NonDriversSelected),
		zap.Int("backfilled", alloc.Backfilled),
		zap.Int("waitlist", len(alloc.Waitlist)),
	)

	return RandomizeResult{
		Allocation: alloc,
		Message: fmt.Sprintf("Randomized %d participants to roster (%d drivers, %d non-drivers). Click Approve to commit changes.",
			len(alloc.Roster), alloc.DriversSelected, alloc.NonDriversSelected),
	}, nil
}

// Approve commits a staged proposal. The ledger entry is consumed before any
// write, then statuses are written with bounded concurrency. When some
// writes fail the returned error is an *ApprovalError.
func (s *RosterService) Approve(ctx context.Context, tripID string, rosterIDs, waitlistIDs []string) (string, error) {
	proposal, err := s.ledger.Approve(tripID, rosterIDs, waitlistIDs)
	if err != nil {
		return "", err
	}

	signups, err := s.store.ListSignupsForTrip(ctx, tripID)
	if err != nil {
		return "", err
	}
	updates, missing := roster.PlanStatuses(proposal.RosterIDs, proposal.WaitlistIDs, signups)

	var (
		mu       sync.Mutex
		failures = make(map[string]string)
		written  []models.RosterEvent
	)
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for _, u := range updates {
		g.Go(func() error {
			_, err := s.store.UpdateSignupStatus(ctx, u.SignupID, u.Status)
			s.metrics.StatusUpdate(err == nil)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures[u.SignupID] = err.Error()
				return nil
			}
			written = append(written, s.event(tripID, u.SignupID, u.Status, models.ActionApprove))
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(written, func(i, j int) bool { return written[i].SignupID < written[j].SignupID })
	s.record(ctx, written...)

	if len(failures) > 0 || len(missing) > 0 {
		aerr := &ApprovalError{TripID: tripID, Updated: len(written), Failures: failures, Missing: missing}
		s.logger.Error("approval partially applied",
			zap.String("trip_id", tripID),
			zap.Int("updated", aerr.Updated),
			zap.Any("failures", failures),
			zap.Strings("missing", missing),
		)
		return "", aerr
	}

	s.logger.Info("approved roster",
		zap.String("trip_id", tripID),
		zap.Int("roster", len(proposal.RosterIDs)),
		zap.Int("waitlist", len(proposal.WaitlistIDs)),
	)
	return fmt.Sprintf("Successfully updated roster: %d on roster, %d on waitlist",
		len(proposal.RosterIDs), len(proposal.WaitlistIDs)), nil
}

// PromotionResult is a participant moved onto the roster
type PromotionResult struct {
	Participant models.Signup
	Message     string
}

// AddFromWaitlist promotes the next waitlisted participant into whichever
// sub-pool has room
func (s *RosterService) AddFromWaitlist(ctx context.Context, tripID string) (PromotionResult, error) {
	return s.promote(ctx, tripID, models.ActionAddWaitlist, roster.PromoteNext, func(name string) string {
		return fmt.Sprintf("Added %s from waitlist to roster", name)
	})
}

// AddDriver promotes the next waitlisted driver
func (s *RosterService) AddDriver(ctx context.Context, tripID string) (PromotionResult, error) {
	return s.promote(ctx, tripID, models.ActionAddDriver, roster.PromoteDriver, func(name string) string {
		return fmt.Sprintf("Added %s (driver) from waitlist to roster", name)
	})
}

// AddNonDriver promotes the next waitlisted non-driver
func (s *RosterService) AddNonDriver(ctx context.Context, tripID string) (PromotionResult, error) {
	return s.promote(ctx, tripID, models.ActionAddNonDriver, roster.PromoteNonDriver, func(name string) string {
		return fmt.Sprintf("Added %s (non-driver) from waitlist to roster", name)
	})
}

// ReAdd puts a specific waitlisted or dropped participant back on the roster
func (s *RosterService) ReAdd(ctx context.Context, tripID, participantID, participantName string) (PromotionResult, error) {
	pick := func(trip models.Trip, signups []models.Signup) (roster.Promotion, error) {
		return roster.ReAdd(trip, signups, participantID)
	}
	return s.promote(ctx, tripID, models.ActionReAdd, pick, func(name string) string {
		if participantName != "" {
			name = participantName
		}
		return fmt.Sprintf("Re-added %s to roster", name)
	})
}

type pickFunc func(models.Trip, []models.Signup) (roster.Promotion, error)

func (s *RosterService) promote(ctx context.Context, tripID, action string, pick pickFunc, message func(name string) string) (PromotionResult, error) {
	trip, err := s.store.GetTrip(ctx, tripID)
	if err != nil {
		return PromotionResult{}, err
	}
	signups, err := s.store.ListSignupsForTrip(ctx, tripID)
	if err != nil {
		return PromotionResult{}, err
	}

	p, err := pick(trip, signups)
	if err != nil {
		return PromotionResult{}, err
	}

	updated, err := s.store.UpdateSignupStatus(ctx, p.Signup.ID, p.Status)
	s.metrics.StatusUpdate(err == nil)
	if err != nil {
		return PromotionResult{}, err
	}
	s.metrics.Promotion(action)
	s.record(ctx, s.event(tripID, p.Signup.ID, p.Status, action))

	s.logger.Info("promoted participant",
		zap.String("trip_id", tripID),
		zap.String("signup_id", p.Signup.ID),
		zap.String("action", action),
		zap.String("status", p.Status),
	)
	return PromotionResult{Participant: updated, Message: message(p.Signup.Name)}, nil
}

// Drop marks a participant as dropped today
func (s *RosterService) Drop(ctx context.Context, tripID, participantID, participantName string) (string, error) {
	status := roster.DroppedStatus(s.now())
	_, err := s.store.UpdateSignupStatus(ctx, participantID, status)
	s.metrics.StatusUpdate(err == nil)
	if err != nil {
		return "", err
	}
	s.record(ctx, s.event(tripID, participantID, status, models.ActionDrop))

	s.logger.Info("dropped participant",
		zap.String("trip_id", tripID),
		zap.String("signup_id", participantID),
		zap.String("status", status),
	)
	if strings.TrimSpace(participantName) == "" {
		participantName = "participant"
	}
	return fmt.Sprintf("Removed %s from roster", participantName), nil
}

// Events returns the most recent status changes for a trip, newest first
func (s *RosterService) Events(ctx context.Context, tripID string) ([]models.RosterEvent, error) {
	if s.events == nil {
		return []models.RosterEvent{}, nil
	}
	events, err := s.events.List(ctx, tripID, EventLimit)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []models.RosterEvent{}
	}
	return events, nil
}

func (s *RosterService) event(tripID, signupID, status, action string) models.RosterEvent {
	return models.RosterEvent{
		TripID:    tripID,
		SignupID:  signupID,
		Status:    status,
		Action:    action,
		CreatedAt: s.now(),
	}
}

// record appends to the event log. A failure here never fails the request.
func (s *RosterService) record(ctx context.Context, events ...models.RosterEvent) {
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Record(ctx, events...); err != nil {
		s.logger.Warn("failed to record roster events", zap.Error(err), zap.Int("count", len(events)))
	}
}

func nonNil(signups []models.Signup) []models.Signup {
	if signups == nil {
		return []models.Signup{}
	}
	return signups
}
