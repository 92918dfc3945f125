package review

import (
	"context"
	"fmt"

	"marks-content-agent/internal/model"
)

// TweetAlerts is the slice of the tweet store the alert index needs.
type TweetAlerts interface {
	ByAlertMessage(ctx context.Context, messageID string) (*model.Tweet, error)
	MarkActioned(ctx context.Context, tweetID string) error
}

// ArticleAlerts is the slice of the feed store the alert index needs.
type ArticleAlerts interface {
	ItemByAlertMessage(ctx context.Context, messageID string) (*model.RSSItem, error)
	MarkItemActioned(ctx context.Context, guid string) error
}

// AlertIndex resolves alert messages to session seeds across both upstream
// stores. It implements ItemSource.
type AlertIndex struct {
	tweets   TweetAlerts
	articles ArticleAlerts
}

func NewAlertIndex(tweets TweetAlerts, articles ArticleAlerts) *AlertIndex {
	return &AlertIndex{tweets: tweets, articles: articles}
}

// SeedForMessage finds the suggested item behind an alert message. Alerts
// posted without suggested content cannot seed a session.
func (a *AlertIndex) SeedForMessage(ctx context.Context, messageID string) (*ItemSeed, error) {
	t, err := a.tweets.ByAlertMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if t != nil {
		if t.SuggestedContent == "" {
			return nil, nil
		}
		pillar := model.PillarMarketCommentary
		topic := "reaction to @" + t.AccountHandle
		if t.RelevanceType == model.RelevanceReply {
			pillar = model.PillarSocialProof
			topic = "reply to @" + t.AccountHandle
		}
		return &ItemSeed{
			Pillar:    pillar,
			Topic:     topic,
			Suggested: t.SuggestedContent,
			Source: &SourceReference{
				ID:           t.TweetID,
				Text:         t.Content,
				AuthorHandle: t.AccountHandle,
			},
		}, nil
	}

	item, err := a.articles.ItemByAlertMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if item == nil || item.SuggestedContent == "" {
		return nil, nil
	}
	return &ItemSeed{
		Pillar:    model.PillarMarketCommentary,
		Topic:     item.Title,
		Suggested: item.SuggestedContent,
		Source: &SourceReference{
			ID:   item.GUID,
			Text: fmt.Sprintf("%s\n%s", item.Title, item.Summary),
		},
	}, nil
}

// MarkActioned flags the underlying item as handled, whichever store it
// lives in.
func (a *AlertIndex) MarkActioned(ctx context.Context, messageID string) error {
	t, err := a.tweets.ByAlertMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if t != nil {
		return a.tweets.MarkActioned(ctx, t.TweetID)
	}
	item, err := a.articles.ItemByAlertMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if item != nil {
		return a.articles.MarkItemActioned(ctx, item.GUID)
	}
	return nil
}
