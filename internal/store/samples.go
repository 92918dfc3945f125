package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"marks-content-agent/internal/db"
	"marks-content-agent/internal/model"
)

// SampleStore persists voice-reference posts used for style emulation.
type SampleStore struct {
	db *db.DB
}

func NewSampleStore(database *db.DB) *SampleStore {
	return &SampleStore{db: database}
}

// Create inserts a sampled post. Duplicate tweet ids are skipped.
func (s *SampleStore) Create(ctx context.Context, sample *model.VoiceSample) error {
	if sample.ID == uuid.Nil {
		sample.ID = uuid.New()
	}
	query := `
		INSERT INTO voice_samples (id, account_id, account_handle, tweet_id, content,
			tweet_created_at, likes, retweets)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (tweet_id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		sample.ID, sample.AccountID, sample.AccountHandle, sample.TweetID, sample.Content,
		sample.TweetCreatedAt, sample.Likes, sample.Retweets)
	if err != nil {
		return fmt.Errorf("create voice sample %s: %w", sample.TweetID, err)
	}
	return nil
}

// Exists reports whether a post has been sampled before.
func (s *SampleStore) Exists(ctx context.Context, tweetID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM voice_samples WHERE tweet_id = $1)`, tweetID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("voice sample exists %s: %w", tweetID, err)
	}
	return exists, nil
}

// ForHandle returns an account's sampled posts, most liked first.
func (s *SampleStore) ForHandle(ctx context.Context, handle string, limit int) ([]string, error) {
	query := `
		SELECT content FROM voice_samples
		WHERE LOWER(account_handle) = LOWER($1) AND is_active
		ORDER BY likes DESC LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, handle, limit)
	if err != nil {
		return nil, fmt.Errorf("samples for %s: %w", handle, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, fmt.Errorf("scan voice sample: %w", err)
		}
		out = append(out, content)
	}
	return out, rows.Err()
}

// CountForHandle returns how many active samples an account has.
func (s *SampleStore) CountForHandle(ctx context.Context, handle string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM voice_samples WHERE LOWER(account_handle) = LOWER($1) AND is_active`,
		handle).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count samples for %s: %w", handle, err)
	}
	return n, nil
}
