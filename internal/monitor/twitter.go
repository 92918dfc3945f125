// Package monitor runs the polling loops that watch upstream sources,
// score new items and queue alerts for the notifier.
package monitor

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"marks-content-agent/internal/db"
	"marks-content-agent/internal/llm"
	"marks-content-agent/internal/model"
	"marks-content-agent/internal/store"
	"marks-content-agent/internal/twitter"
)

const tweetsPerPoll = 10

// Drafter backfills suggested content when scoring passed an item but the
// verdict came back without a draft. A session can only open from an alert
// that carries one.
type Drafter interface {
	GenerateNewsReaction(ctx context.Context, source, headline, summary string) (string, error)
	GenerateReply(ctx context.Context, handle string, followers int, tweetContent, accountContext, topic string) (string, error)
}

// TwitterMonitor polls the monitored accounts for new tweets.
type TwitterMonitor struct {
	tw        *twitter.Client
	accounts  *store.AccountStore
	tweets    *store.TweetStore
	scorer    *llm.Scorer
	drafter   Drafter
	queue     *db.Queue
	threshold float64
	interval  time.Duration
	logger    *slog.Logger
}

func NewTwitterMonitor(tw *twitter.Client, accounts *store.AccountStore, tweets *store.TweetStore,
	scorer *llm.Scorer, drafter Drafter, queue *db.Queue, threshold float64, interval time.Duration, logger *slog.Logger) *TwitterMonitor {
	return &TwitterMonitor{
		tw: tw, accounts: accounts, tweets: tweets, scorer: scorer, drafter: drafter,
		queue: queue, threshold: threshold, interval: interval, logger: logger,
	}
}

// Run polls on the configured interval until the context is canceled. One
// cycle runs immediately on start.
func (m *TwitterMonitor) Run(ctx context.Context) {
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

func (m *TwitterMonitor) cycle(ctx context.Context) {
	accounts, err := m.accounts.Active(ctx)
	if err != nil {
		m.logger.Error("load accounts", "error", err)
		return
	}
	for _, acct := range accounts {
		if acct.IsVoiceRef && acct.Category == model.CategoryReplyTarget {
			continue
		}
		if err := m.pollAccount(ctx, &acct); err != nil {
			m.logger.Error("poll account", "handle", acct.Handle, "error", err)
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (m *TwitterMonitor) pollAccount(ctx context.Context, acct *model.Account) error {
	userID := acct.TwitterID
	if userID == "" {
		user, err := m.tw.UserByUsername(ctx, acct.Handle)
		if err != nil {
			return err
		}
		userID = user.ID
		acct.FollowerCount = user.Metrics.Followers
	}

	tweets, err := m.tw.UserTweets(ctx, userID, acct.LastTweetID, tweetsPerPoll)
	if err != nil {
		return err
	}
	if len(tweets) == 0 {
		return m.accounts.SetCursor(ctx, acct.ID, acct.LastTweetID)
	}

	for _, t := range tweets {
		seen, err := m.tweets.Exists(ctx, t.ID)
		if err != nil {
			return err
		}
		if seen {
			continue
		}

		verdict := m.scorer.ScoreTweet(ctx, t.Text, acct.Handle, acct.Category,
			acct.FollowerCount, t.Metrics.Likes, t.Metrics.Retweets)

		if verdict.Type != model.RelevanceSkip && verdict.Score >= m.threshold && verdict.Suggested == "" {
			suggested, err := m.drafter.GenerateReply(ctx, acct.Handle, acct.FollowerCount,
				t.Text, string(acct.Category), verdict.Reasoning)
			if err != nil {
				m.logger.Warn("backfill reply draft", "tweet", t.ID, "error", err)
			} else {
				verdict.Suggested = suggested
			}
		}

		record := &model.Tweet{
			TweetID:          t.ID,
			AccountID:        acct.ID,
			AccountHandle:    acct.Handle,
			Content:          t.Text,
			TweetCreatedAt:   t.CreatedAt,
			RelevanceScore:   verdict.Score,
			RelevanceType:    verdict.Type,
			SuggestedContent: verdict.Suggested,
			Likes:            t.Metrics.Likes,
			Retweets:         t.Metrics.Retweets,
		}
		if err := m.tweets.Create(ctx, record); err != nil {
			return err
		}

		if verdict.Type == model.RelevanceSkip || verdict.Score < m.threshold {
			continue
		}
		m.enqueue(ctx, model.Alert{
			SourceType:    "twitter",
			Kind:          verdict.Type,
			ItemID:        t.ID,
			SourceHandle:  acct.Handle,
			Headline:      t.Text,
			Category:      acct.Category,
			FollowerCount: acct.FollowerCount,
			Likes:         t.Metrics.Likes,
			Suggested:     verdict.Suggested,
			Urgency:       urgency(verdict.Score, acct.Priority),
		})
	}

	// Tweets arrive newest first; the first id is the next cursor.
	return m.accounts.SetCursor(ctx, acct.ID, tweets[0].ID)
}

func (m *TwitterMonitor) enqueue(ctx context.Context, alert model.Alert) {
	payload, err := json.Marshal(alert)
	if err != nil {
		m.logger.Error("marshal alert", "error", err)
		return
	}
	if err := m.queue.Push(ctx, db.AlertQueueKey, string(payload)); err != nil {
		m.logger.Error("queue alert", "item", alert.ItemID, "error", err)
		return
	}
	m.logger.Info("alert queued", "source", alert.SourceType, "item", alert.ItemID, "kind", alert.Kind)
}

// urgency marks priority-1 accounts and very high scores for louder alerts.
func urgency(score float64, priority int) string {
	if priority == 1 || score >= 0.9 {
		return "high"
	}
	return "normal"
}
