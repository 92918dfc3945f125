package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"marks-content-agent/internal/model"
)

// ScoreResult is the relevance verdict for one upstream item.
type ScoreResult struct {
	Score     float64             `json:"score"`
	Type      model.RelevanceType `json:"type"`
	Reasoning string              `json:"reasoning"`
	Suggested string              `json:"suggested_content"`
}

// Scorer decides whether the brand should react to an upstream item and, if
// so, drafts the suggested content in the same call.
type Scorer struct {
	client Client
	spec   *VoiceSpec
}

func NewScorer(client Client, spec *VoiceSpec) *Scorer {
	return &Scorer{client: client, spec: spec}
}

// KeywordMatch is the cheap pre-filter: items with none of the configured
// keywords never reach the model.
func (s *Scorer) KeywordMatch(content string) bool {
	lower := strings.ToLower(content)
	for _, kw := range s.spec.Keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func (s *Scorer) ScoreTweet(ctx context.Context, text, handle string, category model.Category, followers, likes, retweets int) ScoreResult {
	if !s.KeywordMatch(text) {
		return ScoreResult{Score: 0.1, Type: model.RelevanceSkip, Reasoning: "No relevant keywords found"}
	}

	var parts []string
	if likes > 0 {
		parts = append(parts, fmt.Sprintf("%d likes", likes))
	}
	if retweets > 0 {
		parts = append(parts, fmt.Sprintf("%d retweets", retweets))
	}
	engagement := "N/A"
	if len(parts) > 0 {
		engagement = strings.Join(parts, ", ")
	}

	return s.score(ctx, evaluateTweetPrompt(text, handle, categoryTitle(category), followers, engagement))
}

func (s *Scorer) ScoreArticle(ctx context.Context, title, summary, sourceName string, category model.Category) ScoreResult {
	content := title
	if summary != "" {
		content = title + "\n\n" + summary
	}
	if !s.KeywordMatch(content) {
		return ScoreResult{Score: 0.1, Type: model.RelevanceSkip, Reasoning: "No relevant keywords found"}
	}
	return s.score(ctx, evaluateArticlePrompt(title, summary, sourceName, categoryTitle(category)))
}

func (s *Scorer) score(ctx context.Context, userPrompt string) ScoreResult {
	raw, err := s.client.Complete(ctx, evaluateSystemPrompt(s.spec.Profile), []Message{{Role: RoleUser, Content: userPrompt}}, 1024)
	if err != nil {
		slog.Error("relevance scoring failed", "error", err)
		return ScoreResult{Score: 0, Type: model.RelevanceSkip, Reasoning: "Error: " + err.Error()}
	}

	var result ScoreResult
	if err := DecodeJSON(raw, &result); err != nil {
		slog.Error("failed to parse relevance response", "error", err)
		return ScoreResult{Score: 0.5, Type: model.RelevanceSkip, Reasoning: "Failed to parse response"}
	}
	switch result.Type {
	case model.RelevanceNews, model.RelevanceReply, model.RelevanceSkip:
	default:
		result.Type = model.RelevanceSkip
	}
	return result
}

func categoryTitle(c model.Category) string {
	words := strings.Split(strings.ReplaceAll(string(c), "_", " "), " ")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
