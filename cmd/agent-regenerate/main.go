package main

import (
	"context"
	"os"

	"crm_backend/internal/adapters"
	"crm_backend/internal/agents"
	"crm_backend/internal/events"
	sellersrepo "crm_backend/internal/sellers/repository"
	"crm_backend/platform/config"
	"crm_backend/platform/db"
	"crm_backend/platform/logger"
	"crm_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting agent regeneration")

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)
	sellers := sellersrepo.New(pool)
	module := agents.NewModule(pool, adapters.NewSellerDirectory(sellers), nil, eventBus, validator.New(), log)

	count, err := module.Service().RegenerateAll(ctx)
	eventBus.Wait()
	if err != nil {
		log.Error("agent regeneration finished with failures", "regenerated", count, "error", err)
		os.Exit(1)
	}
	log.Info("agent regeneration complete", "regenerated", count)
}
