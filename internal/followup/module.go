// Package followup provides the autonomous follow-up decision bounded
// context module. This file wires the repository, engine, service and event
// subscriptions together.
package followup

import (
	"context"
	"time"

	"followup_engine_backend/internal/events"
	"followup_engine_backend/internal/followup/domain"
	"followup_engine_backend/internal/followup/repository"
	"followup_engine_backend/internal/followup/service"
	"followup_engine_backend/platform/config"
	"followup_engine_backend/platform/logger"
	"followup_engine_backend/platform/metrics"
	"followup_engine_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// EvaluationQueuer schedules a single-lead evaluation at a future time. The
// scheduler client satisfies this without the module importing it.
type EvaluationQueuer interface {
	ScheduleAt(ctx context.Context, leadID string, runAt time.Time) error
}

// Module is the follow-up bounded context module.
type Module struct {
	service *service.Service
	engine  *domain.Engine
}

// NewModule creates and initializes the follow-up module with all its
// dependencies. Phrase lists load from the configured file, falling back to
// the built-in defaults when none is set.
func NewModule(pool *pgxpool.Pool, redisClient redis.UniversalClient, eventBus events.Bus, m *metrics.Metrics, val *validator.Validator, cfg *config.Config, log *logger.Logger) (*Module, error) {
	phrases, err := domain.LoadPhrases(cfg.GetPhraseConfigPath())
	if err != nil {
		return nil, err
	}
	engine := domain.NewEngine(phrases)

	settings := domain.Settings{Aggressiveness: cfg.GetAggressiveness()}
	if err := val.Struct(settings); err != nil {
		return nil, err
	}

	repo := repository.New(pool)
	locker := service.NewRedisLocker(redisClient)
	svc := service.New(repo, locker, engine, eventBus, m, settings, cfg, log)

	return &Module{
		service: svc,
		engine:  engine,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "followups"
}

// Service returns the evaluation service for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Engine returns the decision engine for external use.
func (m *Module) Engine() *domain.Engine {
	return m.engine
}

// SubscribeReplyFollowups schedules a fresh evaluation one session break after
// each reply, so a lead who answers gets reconsidered once the conversation
// naturally pauses.
func (m *Module) SubscribeReplyFollowups(eventBus events.Bus, queue EvaluationQueuer, sessionBreak time.Duration, log *logger.Logger) {
	eventBus.Subscribe(events.LeadReplied{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.LeadReplied)
		if !ok {
			return nil
		}

		runAt := e.ReceivedAt.Add(sessionBreak)
		if err := queue.ScheduleAt(ctx, e.LeadID.String(), runAt); err != nil {
			log.Error("failed to schedule post-reply evaluation", "error", err, "leadId", e.LeadID)
		}
		return nil
	}))
}
