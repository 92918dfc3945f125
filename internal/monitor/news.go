package monitor

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"marks-content-agent/internal/db"
	"marks-content-agent/internal/llm"
	"marks-content-agent/internal/model"
	"marks-content-agent/internal/news"
	"marks-content-agent/internal/store"
)

const newsPerPoll = 30

// NewsMonitor polls the Finnhub crypto headlines. Captured headlines share
// the feed-item table and alert path with the RSS monitor, under a pseudo
// source registered at startup.
type NewsMonitor struct {
	client    *news.Client
	sources   *store.RSSStore
	scorer    *llm.Scorer
	drafter   Drafter
	queue     *db.Queue
	threshold float64
	interval  time.Duration
	logger    *slog.Logger
	source    model.RSSSource
}

func NewNewsMonitor(client *news.Client, sources *store.RSSStore, scorer *llm.Scorer, drafter Drafter,
	queue *db.Queue, threshold float64, interval time.Duration, logger *slog.Logger) *NewsMonitor {
	return &NewsMonitor{
		client: client, sources: sources, scorer: scorer, drafter: drafter,
		queue: queue, threshold: threshold, interval: interval, logger: logger,
		source: model.RSSSource{
			Name:     "Finnhub Crypto News",
			URL:      "finnhub://market-news/crypto",
			Category: model.CategoryCryptoDefi,
		},
	}
}

func (m *NewsMonitor) Run(ctx context.Context) {
	if err := m.sources.CreateSource(ctx, &m.source); err != nil {
		m.logger.Error("register news source", "error", err)
		return
	}
	m.cycle(ctx)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.cycle(ctx)
		}
	}
}

func (m *NewsMonitor) cycle(ctx context.Context) {
	articles, err := m.client.Fetch(ctx, newsPerPoll)
	if err != nil {
		m.logger.Error("fetch headlines", "error", err)
		return
	}

	for _, a := range articles {
		if ctx.Err() != nil {
			return
		}
		guid := "finnhub-" + a.ExternalID
		seen, err := m.sources.ItemExists(ctx, guid)
		if err != nil {
			m.logger.Error("check headline", "guid", guid, "error", err)
			return
		}
		if seen {
			continue
		}

		verdict := m.scorer.ScoreArticle(ctx, a.Headline, a.Summary, a.Publisher, m.source.Category)

		if verdict.Type != model.RelevanceSkip && verdict.Score >= m.threshold && verdict.Suggested == "" {
			suggested, err := m.drafter.GenerateNewsReaction(ctx, a.Publisher, a.Headline, a.Summary)
			if err != nil {
				m.logger.Warn("backfill reaction draft", "guid", guid, "error", err)
			} else {
				verdict.Suggested = suggested
			}
		}

		record := &model.RSSItem{
			SourceID:         m.source.ID,
			GUID:             guid,
			Title:            a.Headline,
			URL:              a.URL,
			Summary:          a.Summary,
			PublishedAt:      a.PublishedAt,
			RelevanceScore:   verdict.Score,
			SuggestedContent: verdict.Suggested,
		}
		if err := m.sources.CreateItem(ctx, record); err != nil {
			m.logger.Error("store headline", "guid", guid, "error", err)
			return
		}

		if verdict.Type == model.RelevanceSkip || verdict.Score < m.threshold {
			continue
		}
		payload, err := json.Marshal(model.Alert{
			SourceType: "news",
			Kind:       verdict.Type,
			ItemID:     guid,
			SourceName: a.Publisher,
			Headline:   a.Headline,
			Link:       a.URL,
			Category:   m.source.Category,
			Suggested:  verdict.Suggested,
			Urgency:    urgency(verdict.Score, 2),
		})
		if err != nil {
			m.logger.Error("marshal alert", "error", err)
			continue
		}
		if err := m.queue.Push(ctx, db.AlertQueueKey, string(payload)); err != nil {
			m.logger.Error("queue alert", "item", guid, "error", err)
			continue
		}
		m.logger.Info("alert queued", "source", "news", "item", guid)
	}

	if err := m.sources.TouchSource(ctx, m.source.ID); err != nil {
		m.logger.Error("touch news source", "error", err)
	}
}
