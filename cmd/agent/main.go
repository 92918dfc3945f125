// The agent binary runs the chat bot: it connects to Slack over Socket
// Mode and routes messages and reactions through the review dispatcher.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"marks-content-agent/internal/chat"
	"marks-content-agent/internal/command"
	"marks-content-agent/internal/config"
	"marks-content-agent/internal/db"
	"marks-content-agent/internal/llm"
	"marks-content-agent/internal/marks"
	"marks-content-agent/internal/review"
	"marks-content-agent/internal/store"
	"marks-content-agent/internal/twitter"
	"marks-content-agent/internal/voice"
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
	if err := database.RunMigrations("./migrations"); err != nil {
		logger.Error("run migrations", "error", err)
		os.Exit(1)
	}

	spec, err := llm.LoadVoiceSpec(cfg.VoiceSpecPath)
	if err != nil {
		logger.Error("load voice spec", "error", err)
		os.Exit(1)
	}

	oracle, fast := buildClients(cfg)

	accounts := store.NewAccountStore(database)
	tweets := store.NewTweetStore(database)
	feeds := store.NewRSSStore(database)
	samples := store.NewSampleStore(database)
	content := store.NewContentStore(database)
	feedback := store.NewFeedbackStore(database)

	tw := twitter.NewClient(cfg.TwitterAPIKey, cfg.TwitterAPISecret, cfg.TwitterBaseURL)
	sampler := voice.NewSampler(tw, accounts, samples, logger)
	directory := voice.NewDirectory(accounts, samples)
	market := marks.NewClient(cfg.MarksAPIURL)
	generator := llm.NewGenerator(oracle, spec, content, directory, feedback, market)

	slackBot := chat.NewSlack(cfg.SlackBotToken, cfg.SlackAppToken, cfg.SlackChannelID)

	registry := review.NewRegistry(cfg.SessionMaxAge)
	router := command.NewRouter(fast, accounts, feeds, sampler, samples, generator, tw, registry, slackBot, logger)

	dispatcher := review.NewDispatcher(
		registry,
		review.NewClassifier(fast),
		review.NewVoiceDetector(fast, directory),
		review.NewEngine(oracle, spec.Profile),
		review.NewExtractor(oracle),
		feedback,
		review.NewAlertIndex(tweets, feeds),
		directory,
		slackBot,
		router,
		oracle,
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("agent starting", "channel", cfg.SlackChannelID, "provider", cfg.LLMProvider)
	if err := slackBot.Run(ctx, dispatcher); err != nil && ctx.Err() == nil {
		logger.Error("slack connection", "error", err)
		os.Exit(1)
	}
	logger.Info("agent stopped")
}

// buildClients returns the full-strength oracle used for generation and a
// cheaper one for classification and scoring. OpenAI has no fast tier
// configured, so it serves both roles there.
func buildClients(cfg config.Config) (llm.Client, llm.Client) {
	if cfg.LLMProvider == "openai" {
		client := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		return client, client
	}
	return llm.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel),
		llm.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicFastModel)
}
