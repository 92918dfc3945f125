package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"marks-content-agent/internal/model"
)

// HistoryStore records generated content and exposes the recent topic/angle
// lists used to keep generation varied.
type HistoryStore interface {
	Create(ctx context.Context, rec *model.ContentRecord) error
	RecentTopics(ctx context.Context, days int) ([]string, error)
	RecentAngles(ctx context.Context, days int) ([]string, error)
}

// SampleSource supplies formatted voice-reference examples.
type SampleSource interface {
	SamplesForPrompt(ctx context.Context, pillar model.Pillar, perAccount int) (string, error)
}

// FeedbackSource supplies formatted stored style preferences.
type FeedbackSource interface {
	FeedbackForPrompt(ctx context.Context, pillar model.Pillar, limit int) (string, error)
}

// MarketData supplies formatted price and platform context; implementations
// return a human-readable "unavailable" string rather than failing.
type MarketData interface {
	MarketSummary(ctx context.Context) string
	PlatformMetrics(ctx context.Context) string
}

// PostDraft is one generated post.
type PostDraft struct {
	Topic   string `json:"topic"`
	Angle   string `json:"angle"`
	Content string `json:"content"`
}

// BatchItem is one entry of the weekly batch.
type BatchItem struct {
	Day     string `json:"day"`
	Pillar  string `json:"pillar"`
	Topic   string `json:"topic"`
	Angle   string `json:"angle"`
	Content string `json:"content"`
}

// Generator produces brand content: single posts, weekly batches, news
// reactions and replies.
type Generator struct {
	client   Client
	spec     *VoiceSpec
	history  HistoryStore
	samples  SampleSource
	feedback FeedbackSource
	market   MarketData
}

func NewGenerator(client Client, spec *VoiceSpec, history HistoryStore, samples SampleSource, feedback FeedbackSource, market MarketData) *Generator {
	return &Generator{
		client:   client,
		spec:     spec,
		history:  history,
		samples:  samples,
		feedback: feedback,
		market:   market,
	}
}

// GeneratePost creates one post for a pillar and records it in history.
func (g *Generator) GeneratePost(ctx context.Context, pillar model.Pillar, topicHint string) (*PostDraft, error) {
	voiceSection := g.voiceSection(ctx, pillar)
	avoid := g.avoidTopics(ctx)

	prompt := singlePostPrompt(string(pillar), g.market.MarketSummary(ctx), voiceSection, avoid, topicHint)
	raw, err := g.client.Complete(ctx, weeklyBatchSystemPrompt(g.spec.Profile, g.pillarSection(), ""), []Message{{Role: RoleUser, Content: prompt}}, 1024)
	if err != nil {
		return nil, fmt.Errorf("post generation failed: %w", err)
	}

	var draft PostDraft
	if err := DecodeJSON(raw, &draft); err != nil {
		return nil, fmt.Errorf("failed to parse post generation response: %w", err)
	}

	if g.history != nil {
		_ = g.history.Create(ctx, &model.ContentRecord{
			Type:    model.ContentWeeklyPost,
			Pillar:  pillar,
			Topic:   draft.Topic,
			Angle:   draft.Angle,
			Content: draft.Content,
		})
	}
	return &draft, nil
}

// GenerateWeeklyBatch creates 7 posts for the upcoming week and records them.
func (g *Generator) GenerateWeeklyBatch(ctx context.Context, recentNews string) ([]BatchItem, error) {
	weekStart, weekEnd := nextWeek(time.Now().UTC())
	if recentNews == "" {
		recentNews = "No recent news provided"
	}

	voiceSection := g.voiceSection(ctx, "")
	system := weeklyBatchSystemPrompt(g.spec.Profile, g.pillarSection(), voiceSection)
	prompt := weeklyBatchPrompt(
		weekStart.Format("January 2"),
		weekEnd.Format("January 2, 2006"),
		g.market.MarketSummary(ctx),
		g.market.PlatformMetrics(ctx),
		recentNews,
		g.avoidTopics(ctx),
	)

	raw, err := g.client.Complete(ctx, system, []Message{{Role: RoleUser, Content: prompt}}, 4096)
	if err != nil {
		return nil, fmt.Errorf("weekly batch generation failed: %w", err)
	}

	var items []BatchItem
	if err := DecodeJSON(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to parse weekly batch response: %w", err)
	}

	if g.history != nil {
		for _, item := range items {
			pillar, ok := model.ParsePillar(item.Pillar)
			if !ok {
				continue
			}
			_ = g.history.Create(ctx, &model.ContentRecord{
				Type:    model.ContentWeeklyPost,
				Pillar:  pillar,
				Topic:   item.Topic,
				Angle:   item.Angle,
				Content: item.Content,
			})
		}
	}
	return items, nil
}

// GenerateNewsReaction drafts a reactive post about a news item.
func (g *Generator) GenerateNewsReaction(ctx context.Context, source, headline, summary string) (string, error) {
	prompt := newsReactionPrompt(source, headline, summary, g.market.MarketSummary(ctx))
	raw, err := g.client.Complete(ctx, newsReactionSystemPrompt(g.spec.Profile), []Message{{Role: RoleUser, Content: prompt}}, 512)
	if err != nil {
		return "", fmt.Errorf("news reaction generation failed: %w", err)
	}
	return strings.TrimSpace(raw), nil
}

// GenerateReply drafts a reply to someone else's post.
func (g *Generator) GenerateReply(ctx context.Context, handle string, followers int, tweetContent, accountContext, topic string) (string, error) {
	prompt := replyPrompt(handle, followers, tweetContent, accountContext, topic)
	raw, err := g.client.Complete(ctx, replySystemPrompt(g.spec.Profile), []Message{{Role: RoleUser, Content: prompt}}, 256)
	if err != nil {
		return "", fmt.Errorf("reply generation failed: %w", err)
	}
	return strings.TrimSpace(raw), nil
}

func (g *Generator) voiceSection(ctx context.Context, pillar model.Pillar) string {
	var b strings.Builder
	if g.samples != nil {
		if s, err := g.samples.SamplesForPrompt(ctx, pillar, 5); err == nil && s != "" {
			b.WriteString("\n" + s + "\n")
		}
	}
	if g.feedback != nil {
		if s, err := g.feedback.FeedbackForPrompt(ctx, pillar, 5); err == nil && s != "" {
			b.WriteString("\n" + s + "\n")
		}
	}
	return b.String()
}

func (g *Generator) avoidTopics(ctx context.Context) string {
	if g.history == nil {
		return "No recent topics to avoid"
	}
	var lines []string
	if topics, err := g.history.RecentTopics(ctx, 30); err == nil && len(topics) > 0 {
		lines = append(lines, "Recent topics (don't repeat):")
		for i, t := range topics {
			if i >= 10 {
				break
			}
			lines = append(lines, "- "+t)
		}
	}
	if angles, err := g.history.RecentAngles(ctx, 30); err == nil && len(angles) > 0 {
		lines = append(lines, "Recent angles (don't repeat):")
		for i, a := range angles {
			if i >= 10 {
				break
			}
			lines = append(lines, "- "+a)
		}
	}
	if len(lines) == 0 {
		return "No recent topics to avoid"
	}
	return strings.Join(lines, "\n")
}

func (g *Generator) pillarSection() string {
	var b strings.Builder
	for _, p := range model.ValidPillars() {
		spec, ok := g.spec.Pillars[string(p)]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "- **%s** — Goal: %s. Tone: %s.\n", string(p), spec.Goal, spec.Tone)
	}
	return b.String()
}

// nextWeek returns the Monday after now and the Sunday that follows it.
func nextWeek(now time.Time) (time.Time, time.Time) {
	daysUntilMonday := (int(time.Monday) - int(now.Weekday()) + 7) % 7
	if daysUntilMonday == 0 {
		daysUntilMonday = 7
	}
	start := now.AddDate(0, 0, daysUntilMonday)
	return start, start.AddDate(0, 0, 6)
}
