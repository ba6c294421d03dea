package scheduler

import (
	"context"
	"fmt"

	"crm_backend/platform/config"
	"crm_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// CampaignRunner delivers a dispatched campaign.
type CampaignRunner interface {
	RunCampaign(ctx context.Context, campaignID uuid.UUID) error
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, campaigns CampaignRunner, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	return &Worker{
		server: server,
		mux:    NewMux(campaigns, log),
		log:    log,
	}, nil
}

// NewMux routes task types to their handlers.
func NewMux(campaigns CampaignRunner, log *logger.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskCampaignDispatch, func(ctx context.Context, task *asynq.Task) error {
		id, err := ParseCampaignDispatchPayload(task)
		if err != nil {
			log.Error("dropping malformed campaign task", "error", err)
			return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
		}
		return campaigns.RunCampaign(ctx, id)
	})
	return mux
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
