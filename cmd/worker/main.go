package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crm_backend/internal/adapters"
	"crm_backend/internal/campaigns"
	campaignsservice "crm_backend/internal/campaigns/service"
	"crm_backend/internal/conversations"
	"crm_backend/internal/email"
	"crm_backend/internal/events"
	"crm_backend/internal/notification"
	"crm_backend/internal/scheduler"
	sellersrepo "crm_backend/internal/sellers/repository"
	"crm_backend/internal/whatsapp"
	"crm_backend/platform/amqp"
	"crm_backend/platform/config"
	"crm_backend/platform/db"
	"crm_backend/platform/logger"
	"crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env, "queue", cfg.GetAsynqQueueName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	var sender campaignsservice.Sender
	if client := whatsapp.NewClient(cfg, log); client != nil {
		sender = client
	} else {
		log.Warn("WHATSAPP_URL not configured; every campaign delivery will fail")
	}

	// Campaign changes made here reach browsers only through the AMQP feed.
	var feed *notification.ChangeFeed
	if cfg.IsAMQPEnabled() {
		pub, err := amqp.New(cfg.GetAMQPURL(), cfg.GetAMQPExchange(), log)
		if err != nil {
			log.Error("failed to connect change feed; continuing without it", "error", err)
		} else {
			defer func() {
				_ = pub.Close()
			}()
			feed = notification.NewChangeFeed(pub)
		}
	}
	notification.New(email.NoopSender{}, nil, adapters.NewSellerContacts(sellersrepo.New(pool)), feed, log).RegisterHandlers(eventBus)

	conversationsModule := conversations.NewModule(pool, eventBus, val)
	campaignsModule := campaigns.NewModule(
		pool,
		nil,
		sender,
		adapters.NewCampaignMessageRecorder(conversationsModule.Service()),
		eventBus,
		val,
		log,
	)

	worker, err := scheduler.NewWorker(cfg, adapters.NewCampaignRunner(campaignsModule.Service()), log)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		panic("failed to initialize worker: " + err.Error())
	}

	worker.Run(ctx)
	eventBus.Wait()
	log.Info("worker stopped")
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	if lastErr == nil {
		return errors.New(name + ": no attempts made")
	}
	return errors.New(name + ": " + lastErr.Error())
}
