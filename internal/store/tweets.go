package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"marks-content-agent/internal/db"
	"marks-content-agent/internal/model"
)

// TweetStore persists captured tweets and their relevance verdicts.
type TweetStore struct {
	db *db.DB
}

func NewTweetStore(database *db.DB) *TweetStore {
	return &TweetStore{db: database}
}

// Create inserts a captured tweet. A tweet seen twice is left untouched so
// a re-poll never overwrites an existing verdict or alert linkage.
func (s *TweetStore) Create(ctx context.Context, t *model.Tweet) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	query := `
		INSERT INTO tweets (id, tweet_id, account_id, account_handle, content, tweet_created_at,
			relevance_score, relevance_type, suggested_content, likes, retweets)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (tweet_id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		t.ID, t.TweetID, t.AccountID, t.AccountHandle, t.Content, t.TweetCreatedAt,
		t.RelevanceScore, t.RelevanceType, t.SuggestedContent, t.Likes, t.Retweets)
	if err != nil {
		return fmt.Errorf("create tweet %s: %w", t.TweetID, err)
	}
	return nil
}

// Exists reports whether a tweet id has been captured before.
func (s *TweetStore) Exists(ctx context.Context, tweetID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM tweets WHERE tweet_id = $1)`, tweetID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("tweet exists %s: %w", tweetID, err)
	}
	return exists, nil
}

// SetAlertMessage links a tweet to the alert message posted for it.
func (s *TweetStore) SetAlertMessage(ctx context.Context, tweetID, messageID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE tweets SET alert_message_id = $2 WHERE tweet_id = $1`, tweetID, messageID)
	if err != nil {
		return fmt.Errorf("set tweet alert message: %w", err)
	}
	return nil
}

// ByAlertMessage returns the tweet behind an alert message, or nil.
func (s *TweetStore) ByAlertMessage(ctx context.Context, messageID string) (*model.Tweet, error) {
	query := `
		SELECT id, tweet_id, account_id, account_handle, content, tweet_created_at,
			relevance_score, relevance_type, COALESCE(suggested_content, ''), likes, retweets, actioned
		FROM tweets WHERE alert_message_id = $1
	`
	var t model.Tweet
	err := s.db.QueryRowContext(ctx, query, messageID).Scan(
		&t.ID, &t.TweetID, &t.AccountID, &t.AccountHandle, &t.Content, &t.TweetCreatedAt,
		&t.RelevanceScore, &t.RelevanceType, &t.SuggestedContent, &t.Likes, &t.Retweets, &t.Actioned)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("tweet by alert message: %w", err)
	}
	t.AlertMessageID = messageID
	return &t, nil
}

// MarkActioned records that the tweet's review finished.
func (s *TweetStore) MarkActioned(ctx context.Context, tweetID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE tweets SET actioned = TRUE WHERE tweet_id = $1`, tweetID)
	if err != nil {
		return fmt.Errorf("mark tweet actioned: %w", err)
	}
	return nil
}
