package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"marks-content-agent/internal/db"
	"marks-content-agent/internal/model"
)

// RSSStore persists polled feeds and the items captured from them.
type RSSStore struct {
	db *db.DB
}

func NewRSSStore(database *db.DB) *RSSStore {
	return &RSSStore{db: database}
}

// CreateSource registers a feed to poll. Re-adding a URL reactivates it.
func (s *RSSStore) CreateSource(ctx context.Context, src *model.RSSSource) error {
	if src.ID == uuid.Nil {
		src.ID = uuid.New()
	}
	query := `
		INSERT INTO rss_sources (id, name, url, category, keywords, is_active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		ON CONFLICT (url) DO UPDATE SET name = EXCLUDED.name, is_active = TRUE
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query,
		src.ID, src.Name, src.URL, src.Category, pq.Array(src.Keywords)).Scan(&src.ID)
	if err != nil {
		return fmt.Errorf("create rss source %s: %w", src.URL, err)
	}
	return nil
}

// ActiveSources returns the feeds to poll.
func (s *RSSStore) ActiveSources(ctx context.Context) ([]model.RSSSource, error) {
	query := `
		SELECT id, name, url, category, keywords, is_active, last_checked_at, created_at
		FROM rss_sources WHERE is_active ORDER BY name
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("active rss sources: %w", err)
	}
	defer rows.Close()

	var out []model.RSSSource
	for rows.Next() {
		var (
			src         model.RSSSource
			keywords    pq.StringArray
			lastChecked sql.NullTime
		)
		err := rows.Scan(&src.ID, &src.Name, &src.URL, &src.Category, &keywords,
			&src.IsActive, &lastChecked, &src.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan rss source: %w", err)
		}
		src.Keywords = keywords
		src.LastCheckedAt = lastChecked.Time
		out = append(out, src)
	}
	return out, rows.Err()
}

// TouchSource records a completed poll.
func (s *RSSStore) TouchSource(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE rss_sources SET last_checked_at = $2 WHERE id = $1`, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("touch rss source: %w", err)
	}
	return nil
}

// CreateItem inserts a captured feed entry. Duplicate guids are skipped.
func (s *RSSStore) CreateItem(ctx context.Context, item *model.RSSItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	query := `
		INSERT INTO rss_items (id, source_id, guid, title, url, summary, published_at,
			relevance_score, suggested_content)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (guid) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		item.ID, item.SourceID, item.GUID, item.Title, item.URL, item.Summary,
		item.PublishedAt, item.RelevanceScore, item.SuggestedContent)
	if err != nil {
		return fmt.Errorf("create rss item %s: %w", item.GUID, err)
	}
	return nil
}

// ItemExists reports whether a feed entry has been captured before.
func (s *RSSStore) ItemExists(ctx context.Context, guid string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM rss_items WHERE guid = $1)`, guid).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("rss item exists %s: %w", guid, err)
	}
	return exists, nil
}

// SetItemAlertMessage links an item to the alert message posted for it.
func (s *RSSStore) SetItemAlertMessage(ctx context.Context, guid, messageID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE rss_items SET alert_message_id = $2 WHERE guid = $1`, guid, messageID)
	if err != nil {
		return fmt.Errorf("set rss item alert message: %w", err)
	}
	return nil
}

// ItemByAlertMessage returns the feed entry behind an alert message, or nil.
func (s *RSSStore) ItemByAlertMessage(ctx context.Context, messageID string) (*model.RSSItem, error) {
	query := `
		SELECT id, source_id, guid, title, url, COALESCE(summary, ''), published_at,
			relevance_score, COALESCE(suggested_content, ''), actioned
		FROM rss_items WHERE alert_message_id = $1
	`
	var item model.RSSItem
	err := s.db.QueryRowContext(ctx, query, messageID).Scan(
		&item.ID, &item.SourceID, &item.GUID, &item.Title, &item.URL, &item.Summary,
		&item.PublishedAt, &item.RelevanceScore, &item.SuggestedContent, &item.Actioned)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("rss item by alert message: %w", err)
	}
	item.AlertMessageID = messageID
	return &item, nil
}

// MarkItemActioned records that the item's review finished.
func (s *RSSStore) MarkItemActioned(ctx context.Context, guid string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE rss_items SET actioned = TRUE WHERE guid = $1`, guid)
	if err != nil {
		return fmt.Errorf("mark rss item actioned: %w", err)
	}
	return nil
}
