package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crm_backend/internal/adapters"
	"crm_backend/internal/agents"
	"crm_backend/internal/campaigns"
	campaignsservice "crm_backend/internal/campaigns/service"
	"crm_backend/internal/conversations"
	"crm_backend/internal/dashboard"
	"crm_backend/internal/email"
	"crm_backend/internal/events"
	apphttp "crm_backend/internal/http"
	"crm_backend/internal/http/router"
	"crm_backend/internal/leads"
	"crm_backend/internal/notification"
	"crm_backend/internal/qualification"
	"crm_backend/internal/scheduler"
	"crm_backend/internal/sellers"
	"crm_backend/internal/webhook"
	"crm_backend/internal/whatsapp"
	"crm_backend/migrations"
	"crm_backend/platform/ai/gateway"
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

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

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
	log.Info("database connection established")

	if cfg.MigrationsEnabled {
		if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
			return db.RunMigrations(ctx, pool, migrations.FS)
		}); err != nil {
			log.Error("failed to run database migrations", "error", err)
			panic("failed to run database migrations: " + err.Error())
		}
		log.Info("database migrations complete")
	}

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	val := validator.New()

	llm := gateway.NewModel(gateway.Config{
		APIKey:  cfg.GetLLMAPIKey(),
		BaseURL: cfg.GetLLMBaseURL(),
		Model:   cfg.GetLLMModel(),
		Timeout: cfg.GetLLMTimeout(),
	})

	whatsappSender := whatsapp.NewClient(cfg, log)
	if whatsappSender == nil {
		log.Warn("WHATSAPP_URL not configured; outbound WhatsApp disabled")
	}

	campaignQueue, closeQueue := initCampaignQueue(cfg, log)
	if closeQueue != nil {
		defer closeQueue()
	}

	changeFeed, closeFeed := initChangeFeed(cfg, log)
	if closeFeed != nil {
		defer closeFeed()
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	sellersModule := sellers.NewModule(pool, eventBus, log)
	leadsModule := leads.NewModule(pool, eventBus, val)
	conversationsModule := conversations.NewModule(pool, eventBus, val)
	qualificationModule := qualification.NewModule(pool, llm, eventBus, cfg, log)

	agentsModule := agents.NewModule(
		pool,
		adapters.NewSellerDirectory(sellersModule.Repository()),
		adapters.NewAgentContextUpdater(sellersModule.Service()),
		eventBus,
		val,
		log,
	)

	// Absent integrations must stay nil interfaces, not typed nils.
	var replySender webhook.ReplySender
	var campaignSender campaignsservice.Sender
	var alertSender notification.WhatsAppSender
	if whatsappSender != nil {
		replySender, campaignSender, alertSender = whatsappSender, whatsappSender, whatsappSender
	}

	webhookModule := webhook.NewModule(
		qualificationModule.Repository(),
		qualificationModule.Pipeline(),
		replySender,
		cfg.GetWhatsAppAutoReply(),
		log,
	)

	var enqueuer campaignsservice.Enqueuer
	if campaignQueue != nil {
		enqueuer = campaignQueue
	}
	campaignsModule := campaigns.NewModule(
		pool,
		enqueuer,
		campaignSender,
		adapters.NewCampaignMessageRecorder(conversationsModule.Service()),
		eventBus,
		val,
		log,
	)

	dashboardModule := dashboard.NewModule(pool, leadsModule.Metrics())

	// Notification module subscribes to domain events and serves the SSE stream
	notificationModule := notification.New(
		email.NewSender(cfg),
		alertSender,
		adapters.NewSellerContacts(sellersModule.Repository()),
		changeFeed,
		log,
	)
	notificationModule.SetPanelURL(cfg.GetPanelURL())
	notificationModule.RegisterHandlers(eventBus)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:            cfg,
		Logger:            log,
		Health:            pool,
		EventBus:          eventBus,
		ProfileMiddleware: sellersModule.ProfileMiddleware(),
		Modules: []apphttp.Module{
			sellersModule,
			leadsModule,
			conversationsModule,
			qualificationModule,
			agentsModule,
			webhookModule,
			campaignsModule,
			dashboardModule,
			notificationModule,
		},
	}

	engine := router.New(app)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
		eventBus.Wait()
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initCampaignQueue(cfg config.SchedulerConfig, log *logger.Logger) (*scheduler.Client, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; campaign dispatch disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize campaign queue client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func initChangeFeed(cfg config.AMQPConfig, log *logger.Logger) (*notification.ChangeFeed, func()) {
	if !cfg.IsAMQPEnabled() {
		return nil, nil
	}

	pub, err := amqp.New(cfg.GetAMQPURL(), cfg.GetAMQPExchange(), log)
	if err != nil {
		log.Error("failed to connect change feed; continuing without it", "error", err)
		return nil, nil
	}
	log.Info("change feed enabled", "exchange", cfg.GetAMQPExchange())

	return notification.NewChangeFeed(pub), func() {
		_ = pub.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

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

	return errors.New(name + ": " + lastErr.Error())
}
