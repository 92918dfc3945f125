// The monitor binary runs the polling loops that watch Twitter accounts,
// RSS feeds and market headlines, scoring new items and queueing alerts.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"marks-content-agent/internal/config"
	"marks-content-agent/internal/db"
	"marks-content-agent/internal/llm"
	"marks-content-agent/internal/marks"
	"marks-content-agent/internal/monitor"
	"marks-content-agent/internal/news"
	"marks-content-agent/internal/rss"
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

	queue, err := db.NewQueue(cfg.RedisURL)
	if err != nil {
		logger.Error("connect redis", "error", err)
		os.Exit(1)
	}
	defer queue.Close()

	spec, err := llm.LoadVoiceSpec(cfg.VoiceSpecPath)
	if err != nil {
		logger.Error("load voice spec", "error", err)
		os.Exit(1)
	}

	var oracle, fast llm.Client
	if cfg.LLMProvider == "openai" {
		oracle = llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		fast = oracle
	} else {
		oracle = llm.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
		fast = llm.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicFastModel)
	}
	scorer := llm.NewScorer(fast, spec)

	accounts := store.NewAccountStore(database)
	tweets := store.NewTweetStore(database)
	feeds := store.NewRSSStore(database)
	samples := store.NewSampleStore(database)
	content := store.NewContentStore(database)
	feedback := store.NewFeedbackStore(database)

	directory := voice.NewDirectory(accounts, samples)
	market := marks.NewClient(cfg.MarksAPIURL)
	generator := llm.NewGenerator(oracle, spec, content, directory, feedback, market)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	run := func(name string, loop func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Info("monitor starting", "name", name)
			loop(ctx)
			logger.Info("monitor stopped", "name", name)
		}()
	}

	if cfg.TwitterAPIKey != "" {
		tw := twitter.NewClient(cfg.TwitterAPIKey, cfg.TwitterAPISecret, cfg.TwitterBaseURL)
		m := monitor.NewTwitterMonitor(tw, accounts, tweets, scorer, generator, queue,
			cfg.RelevanceThreshold, cfg.TwitterPollInterval, logger)
		run("twitter", m.Run)
	}

	m := monitor.NewRSSMonitor(rss.NewFetcher(), feeds, scorer, generator, queue,
		cfg.RelevanceThreshold, cfg.RSSPollInterval, logger)
	run("rss", m.Run)

	if cfg.FinnhubAPIKey != "" {
		n := monitor.NewNewsMonitor(news.NewClient(cfg.FinnhubAPIKey), feeds, scorer, generator, queue,
			cfg.RelevanceThreshold, cfg.NewsPollInterval, logger)
		run("news", n.Run)
	}

	wg.Wait()
}
