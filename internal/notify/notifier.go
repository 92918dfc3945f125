// Package notify drains the alert queue and posts alerts to the review
// channel, linking each posted message back to its stored item so a
// reviewer's thread reply can find it later.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"marks-content-agent/internal/db"
	"marks-content-agent/internal/model"
)

const popTimeout = 5 * time.Second

// AlertPoster posts one alert and returns the message id.
type AlertPoster interface {
	PostAlert(ctx context.Context, alert model.Alert) (string, error)
}

// TweetLinker records which chat message carries a tweet's alert.
type TweetLinker interface {
	SetAlertMessage(ctx context.Context, tweetID, messageID string) error
}

// ItemLinker records which chat message carries a feed item's alert.
type ItemLinker interface {
	SetItemAlertMessage(ctx context.Context, guid, messageID string) error
}

// Notifier is the queue consumer.
type Notifier struct {
	queue  *db.Queue
	poster AlertPoster
	tweets TweetLinker
	items  ItemLinker
	logger *slog.Logger
}

func New(queue *db.Queue, poster AlertPoster, tweets TweetLinker, items ItemLinker, logger *slog.Logger) *Notifier {
	return &Notifier{queue: queue, poster: poster, tweets: tweets, items: items, logger: logger}
}

// Run consumes alerts until the context is canceled. Payloads that cannot
// be delivered go to the dead-letter key instead of being retried forever.
func (n *Notifier) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		payload, err := n.queue.Pop(ctx, db.AlertQueueKey, popTimeout)
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			n.logger.Error("pop alert", "error", err)
			time.Sleep(time.Second)
			continue
		}
		n.deliver(ctx, payload)
	}
}

func (n *Notifier) deliver(ctx context.Context, payload string) {
	var alert model.Alert
	if err := json.Unmarshal([]byte(payload), &alert); err != nil {
		n.logger.Error("decode alert", "error", err)
		n.deadLetter(ctx, payload)
		return
	}

	messageID, err := n.poster.PostAlert(ctx, alert)
	if err != nil {
		n.logger.Error("post alert", "item", alert.ItemID, "error", err)
		n.deadLetter(ctx, payload)
		return
	}

	if err := n.link(ctx, alert, messageID); err != nil {
		n.logger.Error("link alert message", "item", alert.ItemID, "error", err)
	}
	n.logger.Info("alert posted", "source", alert.SourceType, "item", alert.ItemID, "message", messageID)
}

func (n *Notifier) link(ctx context.Context, alert model.Alert, messageID string) error {
	if alert.SourceType == "twitter" {
		return n.tweets.SetAlertMessage(ctx, alert.ItemID, messageID)
	}
	return n.items.SetItemAlertMessage(ctx, alert.ItemID, messageID)
}

func (n *Notifier) deadLetter(ctx context.Context, payload string) {
	if err := n.queue.Push(ctx, db.DeadLetterKey, payload); err != nil {
		n.logger.Error("dead-letter alert", "error", err, "payload", truncate(payload, 200))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n]) + "..."
}
