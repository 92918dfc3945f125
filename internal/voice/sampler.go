// Package voice maintains the pool of reference-account posts used for
// style emulation, and exposes them to the review loop and the generator.
package voice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"marks-content-agent/internal/model"
	"marks-content-agent/internal/twitter"
)

const (
	samplesPerAccount = 30
	minSampleChars    = 50
	maxLinksPerSample = 3
	maxMentionsPer    = 5
)

// AccountSource is the slice of the account store the sampler needs.
type AccountSource interface {
	VoiceReferences(ctx context.Context) ([]model.Account, error)
	ByHandle(ctx context.Context, handle string) (*model.Account, error)
}

// SampleSink is the slice of the sample store the sampler needs.
type SampleSink interface {
	Create(ctx context.Context, sample *model.VoiceSample) error
	Exists(ctx context.Context, tweetID string) (bool, error)
	ForHandle(ctx context.Context, handle string, limit int) ([]string, error)
}

// Sampler fetches reference-account timelines and stores a filtered pool
// of their posts.
type Sampler struct {
	tw       *twitter.Client
	accounts AccountSource
	samples  SampleSink
	logger   *slog.Logger
}

func NewSampler(tw *twitter.Client, accounts AccountSource, samples SampleSink, logger *slog.Logger) *Sampler {
	return &Sampler{tw: tw, accounts: accounts, samples: samples, logger: logger}
}

// RefreshAll resamples every voice reference. Per-account failures are
// logged and skipped so one dead handle never blocks the rest.
func (s *Sampler) RefreshAll(ctx context.Context) (int, error) {
	refs, err := s.accounts.VoiceReferences(ctx)
	if err != nil {
		return 0, fmt.Errorf("load voice references: %w", err)
	}
	total := 0
	for _, acct := range refs {
		n, err := s.Refresh(ctx, &acct)
		if err != nil {
			s.logger.Error("refresh voice samples", "handle", acct.Handle, "error", err)
			continue
		}
		total += n
	}
	return total, nil
}

// RefreshHandle resamples one account by handle.
func (s *Sampler) RefreshHandle(ctx context.Context, handle string) (int, error) {
	acct, err := s.accounts.ByHandle(ctx, handle)
	if err != nil {
		return 0, err
	}
	if acct == nil {
		return 0, fmt.Errorf("account %s not found", handle)
	}
	return s.Refresh(ctx, acct)
}

// Refresh pulls an account's recent timeline and stores the posts that
// pass the sample filter. Returns the number of new samples stored.
func (s *Sampler) Refresh(ctx context.Context, acct *model.Account) (int, error) {
	userID := acct.TwitterID
	if userID == "" {
		user, err := s.tw.UserByUsername(ctx, acct.Handle)
		if err != nil {
			return 0, err
		}
		userID = user.ID
	}

	tweets, err := s.tw.UserTweets(ctx, userID, "", samplesPerAccount*2)
	if err != nil {
		return 0, err
	}

	stored := 0
	for _, t := range tweets {
		if stored >= samplesPerAccount {
			break
		}
		if !Sampleable(t.Text) {
			continue
		}
		seen, err := s.samples.Exists(ctx, t.ID)
		if err != nil {
			return stored, err
		}
		if seen {
			continue
		}
		sample := &model.VoiceSample{
			AccountID:      acct.ID,
			AccountHandle:  acct.Handle,
			TweetID:        t.ID,
			Content:        t.Text,
			TweetCreatedAt: t.CreatedAt,
			Likes:          t.Metrics.Likes,
			Retweets:       t.Metrics.Retweets,
		}
		if err := s.samples.Create(ctx, sample); err != nil {
			return stored, err
		}
		stored++
	}
	s.logger.Info("voice samples refreshed", "handle", acct.Handle, "stored", stored)
	return stored, nil
}

// Sampleable filters out posts that carry no usable style signal: short
// fragments, link dumps and heavy mention chains.
func Sampleable(text string) bool {
	if len(strings.TrimSpace(text)) < minSampleChars {
		return false
	}
	if strings.Count(text, "http") > maxLinksPerSample {
		return false
	}
	if strings.Count(text, "@") > maxMentionsPer {
		return false
	}
	return true
}

// Directory joins accounts and samples behind the lookup interface the
// review loop and generator consume.
type Directory struct {
	accounts AccountSource
	samples  SampleSink
}

func NewDirectory(accounts AccountSource, samples SampleSink) *Directory {
	return &Directory{accounts: accounts, samples: samples}
}

func (d *Directory) VoiceReferences(ctx context.Context) ([]model.Account, error) {
	return d.accounts.VoiceReferences(ctx)
}

func (d *Directory) SamplesFor(ctx context.Context, handle string, limit int) ([]string, error) {
	return d.samples.ForHandle(ctx, handle, limit)
}

// SamplesForPrompt renders a style section for generation prompts: a few
// top samples from each voice reference tagged for the pillar. Empty
// string when the pillar has no tagged references or no samples yet.
func (d *Directory) SamplesForPrompt(ctx context.Context, pillar model.Pillar, perAccount int) (string, error) {
	refs, err := d.accounts.VoiceReferences(ctx)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, acct := range refs {
		if !tagsPillar(acct, pillar) {
			continue
		}
		samples, err := d.samples.ForHandle(ctx, acct.Handle, perAccount)
		if err != nil {
			return "", err
		}
		if len(samples) == 0 {
			continue
		}
		fmt.Fprintf(&b, "@%s:\n", acct.Handle)
		for _, sample := range samples {
			fmt.Fprintf(&b, "- %s\n", sample)
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func tagsPillar(acct model.Account, pillar model.Pillar) bool {
	if len(acct.VoicePillars) == 0 {
		return true
	}
	for _, p := range acct.VoicePillars {
		if p == pillar {
			return true
		}
	}
	return false
}
