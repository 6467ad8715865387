package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/harryli1024/hotel-purchase/internal/ai"
	"github.com/harryli1024/hotel-purchase/internal/application"
	"github.com/harryli1024/hotel-purchase/internal/auth"
	"github.com/harryli1024/hotel-purchase/internal/config"
	"github.com/harryli1024/hotel-purchase/internal/dailycount"
	"github.com/harryli1024/hotel-purchase/internal/db"
	"github.com/harryli1024/hotel-purchase/internal/item"
	"github.com/harryli1024/hotel-purchase/internal/router"
	"github.com/harryli1024/hotel-purchase/internal/storage"
	"github.com/harryli1024/hotel-purchase/pkg/logger"
)

func main() {
	log := logger.Must(logger.New())
	defer log.Sync()

	// ───────────────────────── CONFIG ─────────────────────────
	cfg, err := config.Load("")
	if err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx := context.Background()

	// ───────────────────────── DB ─────────────────────────
	pool, err := db.ConnectPostgres(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatal("postgres connection failed", zap.Error(err))
	}
	defer pool.Close()

	// ───────────────────────── STORAGE ─────────────────────────
	var uploader application.Uploader
	if cfg.Storage.Endpoint != "" {
		r2Client, err := storage.NewR2Client(ctx, cfg.Storage)
		if err != nil {
			log.Fatal("r2 init failed", zap.Error(err))
		}
		uploader = r2Client
	} else {
		log.Warn("R2_ENDPOINT not set, attachment upload disabled")
	}

	// ───────────────────────── REPOS ─────────────────────────
	userRepo := auth.NewPostgresRepository(pool)
	itemRepo := item.NewPostgresRepository(pool)
	countRepo := dailycount.NewPostgresRepository(pool)
	appRepo := application.NewPostgresRepository(pool)
	store := ai.NewPostgresStore(pool)

	// ───────────────────────── SERVICES ─────────────────────────
	authService := auth.NewService(userRepo)
	itemService := item.NewService(itemRepo)
	countService := dailycount.NewService(countRepo)

	learner := ai.NewLearner(store, countService)
	advisor := ai.NewAdvisor(store, countService)
	appService := application.NewService(appRepo, store, learner, advisor, log.Named("application"))

	aiService := ai.NewService(store)
	reconciler := ai.NewReconciler(store)

	// ───────────────────────── ROUTER ─────────────────────────
	r := router.NewRouter(router.Deps{
		Auth:         auth.NewHandler(authService),
		Items:        item.NewHandler(itemService),
		Applications: application.NewHandler(appService, uploader, log.Named("application")),
		DailyCounts:  dailycount.NewHandler(countService),
		AI:           ai.NewHandler(aiService, reconciler),
	})

	log.Info("server starting", zap.String("port", cfg.Server.Port))
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}
