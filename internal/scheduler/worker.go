package scheduler

import (
	"context"
	"errors"
	"fmt"

	"followup_engine_backend/internal/followup/service"
	"followup_engine_backend/platform/config"
	"followup_engine_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	svc    *service.Service
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, svc *service.Service, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		svc:    svc,
		log:    log,
	}

	mux.HandleFunc(TaskEvaluateLead, w.handleEvaluateLead)
	mux.HandleFunc(TaskEvaluationCycle, w.handleEvaluationCycle)
	mux.HandleFunc(TaskLeadReply, w.handleLeadReply)
	mux.HandleFunc(TaskFollowupSent, w.handleFollowupSent)

	return w, nil
}

func (w *Worker) handleEvaluateLead(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseEvaluateLeadPayload(task)
	if err != nil {
		return err
	}

	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return err
	}

	_, err = w.svc.Evaluate(ctx, leadID)
	if errors.Is(err, service.ErrLeadBusy) {
		// Another evaluation holds the lock; the next cycle picks it up.
		return nil
	}
	return err
}

func (w *Worker) handleEvaluationCycle(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseEvaluationCyclePayload(task)
	if err != nil {
		return err
	}

	cycleCtx := context.WithValue(ctx, logger.CycleIDKey, payload.CycleID)
	_, err = w.svc.RunCycle(cycleCtx)
	return err
}

func (w *Worker) handleLeadReply(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadReplyPayload(task)
	if err != nil {
		return err
	}

	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return err
	}

	return w.svc.HandleLeadReply(ctx, leadID, payload.Content, payload.ReceivedAt)
}

func (w *Worker) handleFollowupSent(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseFollowupSentPayload(task)
	if err != nil {
		return err
	}

	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return err
	}

	return w.svc.HandleFollowupSent(ctx, leadID, payload.Content, payload.SentAt)
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
