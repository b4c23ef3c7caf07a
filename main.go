package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/vocabot/internal/catalog"
	"github.com/example/vocabot/internal/cleanup"
	"github.com/example/vocabot/internal/config"
	"github.com/example/vocabot/internal/database"
	"github.com/example/vocabot/internal/telegram"
	"github.com/example/vocabot/internal/trainer"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	db, err := database.Connect(cfg.Database.Driver, cfg.DSN())
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	store := database.NewWordStore(db, cfg.LearningThreshold)
	importer := catalog.NewImporter(store, logger)

	// Seed the catalog when a words file is configured.
	if cfg.WordsFile != "" {
		ctx := context.Background()
		report, err := importer.ImportFile(ctx, cfg.WordsFile)
		if err != nil {
			logger.Fatal("Failed to import seed catalog", zap.Error(err))
		}
		logger.Info("seed catalog loaded", zap.String("report", report.String()))
	}

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}
	logger.Info("authorized on bot account", zap.String("username", api.Self.UserName))

	client := telegram.NewClient(api, cfg.DownloadDir, cfg.RetryDelay, logger)
	rewardHook := telegram.NewRewardHook(client, cfg.RewardEvery, cfg.StickerFileID, logger)
	sessions := trainer.NewRegistry(store, cfg.LearningThreshold, rewardHook)
	dispatcher := telegram.NewDispatcher(client, store, sessions, importer, logger)
	poller := telegram.NewPoller(api, dispatcher, cfg.PollTimeout, cfg.RetryDelay, logger)

	sweeper := cleanup.New(cfg.DownloadDir, cfg.FileMaxAge, logger)
	sweeper.Start()
	defer sweeper.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		cancel()
	}()

	logger.Info("bot started")
	if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("polling loop failed", zap.Error(err))
	}
	logger.Info("bot stopped")
}
