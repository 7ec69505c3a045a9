package main

import (
	"context"
	"log"
	"net/http"

	"civicbot-be/ai"
	"civicbot-be/bot"
	"civicbot-be/config"
	"civicbot-be/controllers"
	"civicbot-be/logger"
	"civicbot-be/messaging"
	"civicbot-be/nlu"
	"civicbot-be/notifier"
	"civicbot-be/routes"
	"civicbot-be/similarity"
	"civicbot-be/store"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()
	logg := logger.New(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mongoClient, db, err := config.ConnectDB(ctx, cfg)
	if err != nil {
		logg.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer mongoClient.Disconnect(context.Background())
	logg.Info().Msg("MongoDB connection established successfully!")

	rdb, err := config.ConnectRedis(ctx, cfg)
	if err != nil {
		logg.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	logg.Info().Msg("Connected to Redis")

	// Stores and adapters
	issues := store.NewIssues(db, logg)
	sessions := store.NewSessions(rdb, logg)
	aiClient := ai.NewClient(cfg, logg)
	matcher := similarity.NewMatcher(issues, aiClient, logg)
	sender := messaging.NewWhatsApp(cfg, logg)
	nluClient := nlu.NewClient(cfg, logg)

	// Engine
	dispatcher := bot.NewDispatcher(logg, issues, sessions, aiClient, matcher, aiClient, cfg.SummarySampleSize)

	// Change-detection notifier
	watcher := notifier.NewWatcher(issues, sender, logg)
	go func() {
		if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
			logg.Error().Err(err).Msg("change stream watcher stopped")
		}
	}()

	// HTTP surface
	if cfg.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	webhook := controllers.NewWebhookController(nluClient, dispatcher, sessions, logg)
	fulfillment := controllers.NewFulfillmentController(dispatcher, logg)
	admin := controllers.NewAdminController(issues, aiClient, cfg, logg)

	routes.BotRoutes(r, webhook, fulfillment, rdb, cfg.ReportDailyLimit)
	routes.AdminRoutes(r, admin, cfg.JWTSecret)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	if err := r.Run(cfg.HTTPAddr); err != nil {
		logg.Fatal().Err(err).Msg("Failed to start server")
	}
}
