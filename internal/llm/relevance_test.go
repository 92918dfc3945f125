package llm

import (
	"context"
	"fmt"
	"testing"

	"marks-content-agent/internal/model"
)

type stubClient struct {
	response string
	err      error
	called   bool
}

func (c *stubClient) Complete(_ context.Context, _ string, _ []Message, _ int) (string, error) {
	c.called = true
	return c.response, c.err
}

func testSpec() *VoiceSpec {
	return &VoiceSpec{
		Profile:  "test profile",
		Keywords: []string{"naira", "inflation", "perp"},
	}
}

func TestKeywordMatch(t *testing.T) {
	s := NewScorer(&stubClient{}, testSpec())

	tests := []struct {
		content string
		want    bool
	}{
		{"The Naira hit a new low today", true},
		{"INFLATION print tomorrow", true},
		{"I had a great lunch", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := s.KeywordMatch(tt.content); got != tt.want {
			t.Errorf("KeywordMatch(%q) = %v, want %v", tt.content, got, tt.want)
		}
	}
}

func TestScoreTweetKeywordMissSkipsOracle(t *testing.T) {
	client := &stubClient{response: `{"score": 0.9, "type": "news"}`}
	s := NewScorer(client, testSpec())

	got := s.ScoreTweet(context.Background(), "nothing to see here", "whale", model.CategoryNigeria, 100, 0, 0)
	if client.called {
		t.Fatal("oracle called despite keyword miss")
	}
	if got.Score != 0.1 || got.Type != model.RelevanceSkip || got.Reasoning != "No relevant keywords found" {
		t.Errorf("unexpected miss verdict: %+v", got)
	}
}

func TestScoreTweetAPIError(t *testing.T) {
	client := &stubClient{err: fmt.Errorf("rate limited")}
	s := NewScorer(client, testSpec())

	got := s.ScoreTweet(context.Background(), "naira down again", "whale", model.CategoryNigeria, 100, 5, 1)
	if got.Score != 0 || got.Type != model.RelevanceSkip {
		t.Errorf("unexpected error verdict: %+v", got)
	}
}

func TestScoreTweetParseFailure(t *testing.T) {
	client := &stubClient{response: "I think this tweet is quite relevant."}
	s := NewScorer(client, testSpec())

	got := s.ScoreTweet(context.Background(), "naira down again", "whale", model.CategoryNigeria, 100, 0, 0)
	if got.Score != 0.5 || got.Type != model.RelevanceSkip || got.Reasoning != "Failed to parse response" {
		t.Errorf("unexpected parse-failure verdict: %+v", got)
	}
}

func TestScoreNormalizesUnknownType(t *testing.T) {
	client := &stubClient{response: `{"score": 0.8, "type": "banana", "reasoning": "x"}`}
	s := NewScorer(client, testSpec())

	got := s.ScoreTweet(context.Background(), "perp funding spike", "whale", model.CategoryCryptoDefi, 100, 0, 0)
	if got.Type != model.RelevanceSkip {
		t.Errorf("unknown type should normalize to skip, got %+v", got)
	}
	if got.Score != 0.8 {
		t.Errorf("score should pass through, got %v", got.Score)
	}
}

func TestScoreArticleHappyPath(t *testing.T) {
	client := &stubClient{response: "```json\n{\"score\": 0.85, \"type\": \"news\", \"reasoning\": \"relevant\", \"suggested_content\": \"our take\"}\n```"}
	s := NewScorer(client, testSpec())

	got := s.ScoreArticle(context.Background(), "Inflation surges", "CPI details", "Reuters", model.CategoryGlobalMacro)
	if got.Score != 0.85 || got.Type != model.RelevanceNews || got.Suggested != "our take" {
		t.Errorf("unexpected verdict: %+v", got)
	}
}

func TestCategoryTitle(t *testing.T) {
	tests := []struct {
		in   model.Category
		want string
	}{
		{model.CategoryNigeria, "Nigeria"},
		{model.CategoryGlobalMacro, "Global Macro"},
		{model.CategoryCryptoDefi, "Crypto Defi"},
	}
	for _, tt := range tests {
		if got := categoryTitle(tt.in); got != tt.want {
			t.Errorf("categoryTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
