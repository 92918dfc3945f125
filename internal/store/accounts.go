// Package store holds the Postgres persistence layer. Each store wraps the
// shared db handle with raw SQL for one table.
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

// AccountStore manages monitored accounts and voice references.
type AccountStore struct {
	db *db.DB
}

func NewAccountStore(database *db.DB) *AccountStore {
	return &AccountStore{db: database}
}

const accountColumns = `id, handle, twitter_id, category, priority, follower_count,
	is_voice_ref, voice_pillars, is_active, last_tweet_id, last_checked_at, created_at`

// Create inserts a new account. Re-adding an existing handle reactivates it
// instead of failing.
func (s *AccountStore) Create(ctx context.Context, a *model.Account) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	query := `
		INSERT INTO accounts (id, handle, twitter_id, category, priority, follower_count, is_voice_ref, voice_pillars, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE)
		ON CONFLICT (handle) DO UPDATE SET
			category = EXCLUDED.category,
			priority = EXCLUDED.priority,
			is_voice_ref = accounts.is_voice_ref OR EXCLUDED.is_voice_ref,
			is_active = TRUE
	`
	_, err := s.db.ExecContext(ctx, query,
		a.ID, a.Handle, a.TwitterID, a.Category, a.Priority, a.FollowerCount,
		a.IsVoiceRef, pq.Array(pillarStrings(a.VoicePillars)))
	if err != nil {
		return fmt.Errorf("create account %s: %w", a.Handle, err)
	}
	return nil
}

// ByHandle returns the account with the given handle, or nil when none.
func (s *AccountStore) ByHandle(ctx context.Context, handle string) (*model.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE LOWER(handle) = LOWER($1)`, accountColumns)
	a, err := scanAccount(s.db.QueryRowContext(ctx, query, handle))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("account by handle %s: %w", handle, err)
	}
	return a, nil
}

// Active returns all active monitored accounts.
func (s *AccountStore) Active(ctx context.Context) ([]model.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE is_active ORDER BY priority, handle`, accountColumns)
	return s.queryAccounts(ctx, query)
}

// VoiceReferences returns the active accounts flagged as style references.
func (s *AccountStore) VoiceReferences(ctx context.Context) ([]model.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE is_active AND is_voice_ref ORDER BY handle`, accountColumns)
	return s.queryAccounts(ctx, query)
}

// TagVoice flags an account as a voice reference for the given pillars.
func (s *AccountStore) TagVoice(ctx context.Context, handle string, pillars []model.Pillar) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET is_voice_ref = TRUE, voice_pillars = $2 WHERE LOWER(handle) = LOWER($1)`,
		handle, pq.Array(pillarStrings(pillars)))
	if err != nil {
		return fmt.Errorf("tag voice %s: %w", handle, err)
	}
	return requireRow(res, handle)
}

// Deactivate soft-removes an account from monitoring.
func (s *AccountStore) Deactivate(ctx context.Context, handle string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET is_active = FALSE WHERE LOWER(handle) = LOWER($1)`, handle)
	if err != nil {
		return fmt.Errorf("deactivate account %s: %w", handle, err)
	}
	return requireRow(res, handle)
}

// SetCursor advances the monitoring cursor after a poll.
func (s *AccountStore) SetCursor(ctx context.Context, id uuid.UUID, lastTweetID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET last_tweet_id = $2, last_checked_at = $3 WHERE id = $1`,
		id, lastTweetID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set account cursor: %w", err)
	}
	return nil
}

func (s *AccountStore) queryAccounts(ctx context.Context, query string, args ...any) ([]model.Account, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var out []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*model.Account, error) {
	var (
		a           model.Account
		pillars     pq.StringArray
		twitterID   sql.NullString
		lastTweetID sql.NullString
		lastChecked sql.NullTime
	)
	err := row.Scan(&a.ID, &a.Handle, &twitterID, &a.Category, &a.Priority, &a.FollowerCount,
		&a.IsVoiceRef, &pillars, &a.IsActive, &lastTweetID, &lastChecked, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	a.TwitterID = twitterID.String
	a.LastTweetID = lastTweetID.String
	a.LastCheckedAt = lastChecked.Time
	for _, p := range pillars {
		if parsed, ok := model.ParsePillar(p); ok {
			a.VoicePillars = append(a.VoicePillars, parsed)
		}
	}
	return &a, nil
}

func pillarStrings(pillars []model.Pillar) []string {
	out := make([]string, 0, len(pillars))
	for _, p := range pillars {
		out = append(out, string(p))
	}
	return out
}

func requireRow(res sql.Result, handle string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("account %s not found", handle)
	}
	return nil
}
