package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"marks-content-agent/internal/db"
	"marks-content-agent/internal/model"
)

// FeedbackStore persists confirmed style learnings and renders them for
// generation prompts.
type FeedbackStore struct {
	db *db.DB
}

func NewFeedbackStore(database *db.DB) *FeedbackStore {
	return &FeedbackStore{db: database}
}

func (s *FeedbackStore) Create(ctx context.Context, fb *model.Feedback) error {
	if fb.ID == uuid.Nil {
		fb.ID = uuid.New()
	}
	query := `
		INSERT INTO voice_feedback (id, pillar, original_content, feedback, thread_id)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(ctx, query, fb.ID, fb.Pillar, fb.Original, fb.Text, fb.ThreadID)
	if err != nil {
		return fmt.Errorf("create feedback: %w", err)
	}
	return nil
}

// Recent returns the latest learnings, newest first.
func (s *FeedbackStore) Recent(ctx context.Context, limit int) ([]model.Feedback, error) {
	query := `
		SELECT id, pillar, original_content, feedback, COALESCE(thread_id, ''), created_at
		FROM voice_feedback ORDER BY created_at DESC LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("recent feedback: %w", err)
	}
	defer rows.Close()

	var out []model.Feedback
	for rows.Next() {
		var fb model.Feedback
		if err := rows.Scan(&fb.ID, &fb.Pillar, &fb.Original, &fb.Text, &fb.ThreadID, &fb.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		out = append(out, fb)
	}
	return out, rows.Err()
}

// FeedbackForPrompt renders the latest learnings for a pillar as a bullet
// list for prompt injection. An empty pillar matches all; empty string when
// there are none.
func (s *FeedbackStore) FeedbackForPrompt(ctx context.Context, pillar model.Pillar, limit int) (string, error) {
	query := `
		SELECT feedback FROM voice_feedback
		WHERE $1 = '' OR pillar = $1
		ORDER BY created_at DESC LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, string(pillar), limit)
	if err != nil {
		return "", fmt.Errorf("feedback for prompt: %w", err)
	}
	defer rows.Close()

	var b strings.Builder
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return "", fmt.Errorf("scan feedback text: %w", err)
		}
		fmt.Fprintf(&b, "- %s\n", text)
	}
	return strings.TrimRight(b.String(), "\n"), rows.Err()
}
