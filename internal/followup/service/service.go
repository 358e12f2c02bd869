// Package service orchestrates follow-up evaluations: it loads lead
// snapshots, runs the decision engine, persists arc mutations, and publishes
// the resulting domain events. Decisions themselves stay pure; everything
// with a side effect lives here.
package service

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"followup_engine_backend/internal/events"
	"followup_engine_backend/internal/followup/domain"
	"followup_engine_backend/internal/followup/repository"
	"followup_engine_backend/platform/apperr"
	"followup_engine_backend/platform/config"
	"followup_engine_backend/platform/logger"
	"followup_engine_backend/platform/metrics"
)

// ErrLeadBusy means another evaluation currently holds the per-lead lock.
// Callers treat it as a skip, not a failure.
var ErrLeadBusy = errors.New("lead is being evaluated elsewhere")

const (
	// conversationWindow bounds how much history one evaluation reads.
	conversationWindow = 50
	// cycleWorkers bounds concurrent evaluations within one cycle.
	cycleWorkers = 8
	// dueCooldown prefilters candidates in SQL. It matches the shortest
	// timing-policy interval; the gates enforce everything stricter.
	dueCooldown = 15 * time.Minute
)

// Store is the persistence surface the service needs.
type Store interface {
	GetLeadContext(ctx context.Context, id uuid.UUID) (domain.LeadContext, error)
	ListConversation(ctx context.Context, leadID uuid.UUID, limit int) ([]domain.ConversationMessage, error)
	ListDueLeadIDs(ctx context.Context, now time.Time, cooldown time.Duration, limit int) ([]uuid.UUID, error)
	AdvanceEscalationArc(ctx context.Context, leadID uuid.UUID, expectedPosition int, sentAt time.Time) error
	ResetEscalationArc(ctx context.Context, leadID uuid.UUID) error
	MarkDisengaged(ctx context.Context, leadID uuid.UUID, note string) error
	RecordInbound(ctx context.Context, leadID uuid.UUID, content string, at time.Time) error
	RecordOutbound(ctx context.Context, leadID uuid.UUID, content string, at time.Time) error
}

// Locker serializes evaluations per lead across processes.
type Locker interface {
	AcquireLeadLock(ctx context.Context, leadID uuid.UUID, ttl time.Duration) (acquired bool, release func(), err error)
}

// CycleStats summarizes one evaluation cycle.
type CycleStats struct {
	Due       int
	Evaluated int
	Approved  int
	Skipped   int
}

type Service struct {
	store    Store
	locker   Locker
	engine   *domain.Engine
	bus      events.Bus
	metrics  *metrics.Metrics
	settings domain.Settings
	cycle    config.CycleConfig
	log      *logger.Logger

	// now is swappable for tests.
	now func() time.Time
}

func New(store Store, locker Locker, engine *domain.Engine, bus events.Bus, m *metrics.Metrics, settings domain.Settings, cycle config.CycleConfig, log *logger.Logger) *Service {
	return &Service{
		store:    store,
		locker:   locker,
		engine:   engine,
		bus:      bus,
		metrics:  m,
		settings: settings,
		cycle:    cycle,
		log:      log,
		now:      time.Now,
	}
}

// Evaluate runs one full decision for a lead under the per-lead lock and
// applies its side effects. The returned decision is final the moment it is
// computed: mutation failures afterwards are logged and counted but never
// reverse it.
func (s *Service) Evaluate(ctx context.Context, leadID uuid.UUID) (domain.Decision, error) {
	acquired, release, err := s.locker.AcquireLeadLock(ctx, leadID, s.cycle.GetLeadLockTTL())
	if err != nil {
		return domain.Decision{}, apperr.Wrap(apperr.KindUnavailable, "failed to acquire lead lock", err).WithOp("followup.Evaluate")
	}
	if !acquired {
		s.metrics.LeadsSkipped.Inc()
		return domain.Decision{}, ErrLeadBusy
	}
	defer release()

	lead, err := s.store.GetLeadContext(ctx, leadID)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Decision{}, apperr.NotFound("lead context not found").WithOp("followup.Evaluate")
	}
	if err != nil {
		return domain.Decision{}, apperr.Wrap(apperr.KindUnavailable, "failed to load lead context", err).WithOp("followup.Evaluate")
	}

	conversation, err := s.store.ListConversation(ctx, leadID, conversationWindow)
	if err != nil {
		return domain.Decision{}, apperr.Wrap(apperr.KindUnavailable, "failed to load conversation", err).WithOp("followup.Evaluate")
	}

	now := s.now().UTC()
	decision := s.engine.Decide(domain.Input{
		Lead:         lead,
		Conversation: conversation,
		Settings:     s.settings,
		Now:          now,
	})

	outcome := "rejected"
	if decision.ShouldFollowUp {
		outcome = "approved"
	}
	s.metrics.Decisions.WithLabelValues(outcome, decision.Gate).Inc()
	s.log.WithContext(ctx).DecisionEvent(leadID.String(), decision.ShouldFollowUp, decision.Gate, decision.Score.Total, lead.ArcPosition)

	if decision.ShouldFollowUp {
		s.applyApproval(ctx, lead, decision, now)
	} else {
		s.applyRejection(ctx, lead, decision)
	}

	return decision, nil
}

func (s *Service) applyApproval(ctx context.Context, lead domain.LeadContext, decision domain.Decision, sentAt time.Time) {
	next := decision.Arc.Advance()

	if err := s.store.AdvanceEscalationArc(ctx, lead.ID, lead.ArcPosition, sentAt); err != nil {
		s.recordMutationFailure(ctx, "advance", lead.ID, err)
	} else {
		s.metrics.ArcMutations.WithLabelValues("advance").Inc()
	}

	s.bus.Publish(ctx, events.FollowUpApproved{
		BaseEvent:          events.NewBaseEvent(),
		LeadID:             lead.ID,
		Score:              decision.Score.Total,
		ArcPosition:        next.Position,
		ArcTag:             string(next.Tag),
		MinIntervalMinutes: decision.Timing.MinIntervalMinutes,
		Reasoning:          decision.Reasoning,
	})
}

func (s *Service) applyRejection(ctx context.Context, lead domain.LeadContext, decision domain.Decision) {
	s.bus.Publish(ctx, events.FollowUpRejected{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		Gate:      decision.Gate,
		Reason:    decision.Reason,
		Score:     decision.Score.Total,
	})

	if decision.Gate != domain.GateDisengagement {
		return
	}

	note := disengagementNote(decision.Disengagement)
	if err := s.store.MarkDisengaged(ctx, lead.ID, note); err != nil {
		s.recordMutationFailure(ctx, "mark_disengaged", lead.ID, err)
		return
	}
	s.metrics.ArcMutations.WithLabelValues("mark_disengaged").Inc()

	s.bus.Publish(ctx, events.LeadDisengaged{
		BaseEvent:  events.NewBaseEvent(),
		LeadID:     lead.ID,
		Note:       note,
		Confidence: decision.Disengagement.Confidence,
	})
}

// HandleLeadReply records an inbound message and resets the escalation arc.
// A reply always reopens the sequence, including for leads marked disengaged.
func (s *Service) HandleLeadReply(ctx context.Context, leadID uuid.UUID, content string, receivedAt time.Time) error {
	if receivedAt.IsZero() {
		receivedAt = s.now().UTC()
	}

	if err := s.store.RecordInbound(ctx, leadID, content, receivedAt); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("lead context not found").WithOp("followup.HandleLeadReply")
		}
		return apperr.Wrap(apperr.KindUnavailable, "failed to record inbound message", err).WithOp("followup.HandleLeadReply")
	}

	if err := s.store.ResetEscalationArc(ctx, leadID); err != nil {
		s.recordMutationFailure(ctx, "reset", leadID, err)
		return apperr.Wrap(apperr.KindUnavailable, "failed to reset escalation arc", err).WithOp("followup.HandleLeadReply")
	}
	s.metrics.ArcMutations.WithLabelValues("reset").Inc()

	s.bus.Publish(ctx, events.LeadReplied{
		BaseEvent:  events.NewBaseEvent(),
		LeadID:     leadID,
		ReceivedAt: receivedAt,
	})

	return nil
}

// HandleFollowupSent records the final text of a follow-up once the
// downstream sender confirms it went out, keeping the conversation history
// the scorer reads complete.
func (s *Service) HandleFollowupSent(ctx context.Context, leadID uuid.UUID, content string, sentAt time.Time) error {
	if sentAt.IsZero() {
		sentAt = s.now().UTC()
	}

	if err := s.store.RecordOutbound(ctx, leadID, content, sentAt); err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "failed to record outbound message", err).WithOp("followup.HandleFollowupSent")
	}
	return nil
}

// RunCycle evaluates every due lead once, rate limited and bounded in
// concurrency. Individual evaluation failures are logged and skipped; the
// cycle itself only fails when the context is cancelled or the candidate
// query fails.
func (s *Service) RunCycle(ctx context.Context) (CycleStats, error) {
	started := s.now().UTC()

	cycleID, _ := ctx.Value(logger.CycleIDKey).(string)
	if cycleID == "" {
		cycleID = uuid.NewString()
		ctx = context.WithValue(ctx, logger.CycleIDKey, cycleID)
	}

	ids, err := s.store.ListDueLeadIDs(ctx, started, dueCooldown, s.cycle.GetCycleBatchSize())
	if err != nil {
		return CycleStats{}, apperr.Wrap(apperr.KindUnavailable, "failed to list due leads", err).WithOp("followup.RunCycle")
	}

	limit := rate.Limit(s.cycle.GetEvaluationRatePerSec())
	if limit <= 0 {
		limit = rate.Inf
	}
	limiter := rate.NewLimiter(limit, 1)

	var evaluated, approved, skipped atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cycleWorkers)
	for _, id := range ids {
		leadID := id
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return err
			}

			decision, err := s.Evaluate(gctx, leadID)
			switch {
			case errors.Is(err, ErrLeadBusy):
				skipped.Add(1)
				return nil
			case err != nil:
				s.log.WithContext(gctx).Error("evaluation failed", "lead_id", leadID.String(), "error", err)
				return nil
			}

			evaluated.Add(1)
			if decision.ShouldFollowUp {
				approved.Add(1)
			}
			return nil
		})
	}
	runErr := g.Wait()

	s.metrics.CycleDuration.Observe(time.Since(started).Seconds())

	stats := CycleStats{
		Due:       len(ids),
		Evaluated: int(evaluated.Load()),
		Approved:  int(approved.Load()),
		Skipped:   int(skipped.Load()),
	}
	s.log.CycleSummary(cycleID, stats.Evaluated, stats.Approved, stats.Skipped)

	return stats, runErr
}

func (s *Service) recordMutationFailure(ctx context.Context, operation string, leadID uuid.UUID, err error) {
	kind := "unavailable"
	switch {
	case errors.Is(err, repository.ErrStaleArc):
		kind = "stale"
	case errors.Is(err, repository.ErrNotFound):
		kind = "missing"
	}
	s.metrics.MutationFailures.WithLabelValues(operation, kind).Inc()
	s.log.WithContext(ctx).MutationError(operation, leadID.String(), err)
}

// disengagementNote renders the tripped signals into the persisted note.
func disengagementNote(signals domain.DisengagementSignals) string {
	parts := make([]string, 0, 3)
	if signals.ExplicitDisengage {
		parts = append(parts, "explicit opt-out phrase")
	}
	if signals.MultipleNoResponse {
		parts = append(parts, "no response to repeated follow-ups")
	}
	if signals.ShorterReplies {
		parts = append(parts, "replies getting shorter")
	}
	if len(parts) == 0 {
		return "disengagement detected"
	}
	return strings.Join(parts, "; ")
}
