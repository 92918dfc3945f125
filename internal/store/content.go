package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"marks-content-agent/internal/db"
	"marks-content-agent/internal/model"
)

// ContentStore keeps the history of generated content. Besides the archive
// itself it feeds the variety checks that stop the generator from repeating
// recent topics and angles.
type ContentStore struct {
	db *db.DB
}

func NewContentStore(database *db.DB) *ContentStore {
	return &ContentStore{db: database}
}

func (s *ContentStore) Create(ctx context.Context, c *model.ContentRecord) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	query := `
		INSERT INTO content_history (id, content_type, pillar, topic, angle, content, source_tweet_id, source_account)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		c.ID, c.Type, c.Pillar, c.Topic, c.Angle, c.Content, c.SourceTweetID, c.SourceAccount)
	if err != nil {
		return fmt.Errorf("create content record: %w", err)
	}
	return nil
}

// RecentTopics returns distinct topics generated in the last N days.
func (s *ContentStore) RecentTopics(ctx context.Context, days int) ([]string, error) {
	return s.recentValues(ctx, "topic", days)
}

// RecentAngles returns distinct angles generated in the last N days.
func (s *ContentStore) RecentAngles(ctx context.Context, days int) ([]string, error) {
	return s.recentValues(ctx, "angle", days)
}

func (s *ContentStore) recentValues(ctx context.Context, column string, days int) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT %s FROM content_history
		WHERE created_at > $1 AND %s <> ''
	`, column, column)
	cutoff := time.Now().UTC().Add(-time.Duration(days) * 24 * time.Hour)
	rows, err := s.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("recent %ss: %w", column, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan %s: %w", column, err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Recent returns the latest generated content, newest first.
func (s *ContentStore) Recent(ctx context.Context, limit int) ([]model.ContentRecord, error) {
	query := `
		SELECT id, content_type, pillar, topic, angle, content,
			COALESCE(source_tweet_id, ''), COALESCE(source_account, ''), created_at
		FROM content_history ORDER BY created_at DESC LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("recent content: %w", err)
	}
	defer rows.Close()

	var out []model.ContentRecord
	for rows.Next() {
		var c model.ContentRecord
		err := rows.Scan(&c.ID, &c.Type, &c.Pillar, &c.Topic, &c.Angle, &c.Content,
			&c.SourceTweetID, &c.SourceAccount, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan content record: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
