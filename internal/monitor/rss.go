package monitor

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"marks-content-agent/internal/db"
	"marks-content-agent/internal/llm"
	"marks-content-agent/internal/model"
	"marks-content-agent/internal/rss"
	"marks-content-agent/internal/store"
)

// RSSMonitor polls the registered feeds for new entries.
type RSSMonitor struct {
	fetcher   *rss.Fetcher
	sources   *store.RSSStore
	scorer    *llm.Scorer
	drafter   Drafter
	queue     *db.Queue
	threshold float64
	interval  time.Duration
	logger    *slog.Logger
}

func NewRSSMonitor(fetcher *rss.Fetcher, sources *store.RSSStore, scorer *llm.Scorer, drafter Drafter,
	queue *db.Queue, threshold float64, interval time.Duration, logger *slog.Logger) *RSSMonitor {
	return &RSSMonitor{
		fetcher: fetcher, sources: sources, scorer: scorer, drafter: drafter,
		queue: queue, threshold: threshold, interval: interval, logger: logger,
	}
}

func (m *RSSMonitor) Run(ctx context.Context) {
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

func (m *RSSMonitor) cycle(ctx context.Context) {
	sources, err := m.sources.ActiveSources(ctx)
	if err != nil {
		m.logger.Error("load rss sources", "error", err)
		return
	}
	for _, src := range sources {
		if err := m.pollSource(ctx, &src); err != nil {
			m.logger.Error("poll feed", "name", src.Name, "error", err)
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (m *RSSMonitor) pollSource(ctx context.Context, src *model.RSSSource) error {
	items, err := m.fetcher.Fetch(ctx, src.URL)
	if err != nil {
		return err
	}

	for _, item := range items {
		seen, err := m.sources.ItemExists(ctx, item.GUID)
		if err != nil {
			return err
		}
		if seen {
			continue
		}

		summary := item.Summary
		if body := m.fetcher.ArticleBody(ctx, item.URL); body != "" {
			summary = body
		}

		verdict := m.scorer.ScoreArticle(ctx, item.Title, summary, src.Name, src.Category)

		if verdict.Type != model.RelevanceSkip && verdict.Score >= m.threshold && verdict.Suggested == "" {
			suggested, err := m.drafter.GenerateNewsReaction(ctx, src.Name, item.Title, summary)
			if err != nil {
				m.logger.Warn("backfill reaction draft", "guid", item.GUID, "error", err)
			} else {
				verdict.Suggested = suggested
			}
		}

		record := &model.RSSItem{
			SourceID:         src.ID,
			GUID:             item.GUID,
			Title:            item.Title,
			URL:              item.URL,
			Summary:          item.Summary,
			PublishedAt:      item.PublishedAt,
			RelevanceScore:   verdict.Score,
			SuggestedContent: verdict.Suggested,
		}
		if err := m.sources.CreateItem(ctx, record); err != nil {
			return err
		}

		if verdict.Type == model.RelevanceSkip || verdict.Score < m.threshold {
			continue
		}
		m.enqueue(ctx, model.Alert{
			SourceType: "rss",
			Kind:       verdict.Type,
			ItemID:     item.GUID,
			SourceName: src.Name,
			Headline:   item.Title,
			Link:       item.URL,
			Category:   src.Category,
			Suggested:  verdict.Suggested,
			Urgency:    urgency(verdict.Score, 2),
		})
	}

	return m.sources.TouchSource(ctx, src.ID)
}

func (m *RSSMonitor) enqueue(ctx context.Context, alert model.Alert) {
	payload, err := json.Marshal(alert)
	if err != nil {
		m.logger.Error("marshal alert", "error", err)
		return
	}
	if err := m.queue.Push(ctx, db.AlertQueueKey, string(payload)); err != nil {
		m.logger.Error("queue alert", "item", alert.ItemID, "error", err)
		return
	}
	m.logger.Info("alert queued", "source", alert.SourceType, "item", alert.ItemID)
}
