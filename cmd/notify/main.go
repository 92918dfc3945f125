// The notify binary drains the alert queue and posts alerts to the review
// channel.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"marks-content-agent/internal/chat"
	"marks-content-agent/internal/config"
	"marks-content-agent/internal/db"
	"marks-content-agent/internal/notify"
	"marks-content-agent/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()

	database, err := db.New(cfg.DatabaseURL)
	if err != nil {
		logger.Error("connect database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	queue, err := db.NewQueue(cfg.RedisURL)
	if err != nil {
		logger.Error("connect redis", "error", err)
		os.Exit(1)
	}
	defer queue.Close()

	slackBot := chat.NewSlack(cfg.SlackBotToken, cfg.SlackAppToken, cfg.SlackChannelID)
	notifier := notify.New(queue, slackBot,
		store.NewTweetStore(database), store.NewRSSStore(database), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("notifier starting", "channel", cfg.SlackChannelID)
	notifier.Run(ctx)
	logger.Info("notifier stopped")
}
