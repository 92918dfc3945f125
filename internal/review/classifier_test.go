package review

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

func TestIsQuickApproval(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"good", true},
		{"Good!", true},
		{"yes", true},
		{"👍", true},
		{"✅", true},
		{"lgtm", true},
		{"looks good", true},
		{"Looks good!", true},
		{"ship it", true},
		{"ship it.", true},
		{"good start but tighten it up", false},
		{"looks good except the second line", false},
		{"make it shorter", false},
		{"", false},
		{"no", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := IsQuickApproval(tt.text); got != tt.want {
				t.Errorf("IsQuickApproval(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func classifierSession() *DraftSession {
	return &DraftSession{
		ThreadID: "t1",
		Pillar:   "education",
		Source:   &SourceReference{ID: "99", Text: "NGN hit a new low today", AuthorHandle: "macrowatcher"},
		Drafts:   []DraftVersion{{Content: "draft"}},
		Status:   StatusIterating,
	}
}

func TestClassifyFastPathSkipsOracle(t *testing.T) {
	oracle := &routedOracle{err: fmt.Errorf("oracle must not be called")}
	c := NewClassifier(oracle)

	if got := c.Classify(context.Background(), "ship it", classifierSession()); got != IntentApproval {
		t.Fatalf("got %v, want approval", got)
	}
}

func TestClassifyOracleLabels(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     Intent
	}{
		{"question label", `{"intent": "question"}`, IntentQuestion},
		{"approval label", `{"intent": "approval"}`, IntentApproval},
		{"capitalized label", `{"intent": "Approval"}`, IntentApproval},
		{"padded label", `{"intent": " QUESTION "}`, IntentQuestion},
		{"revision label", `{"intent": "revision"}`, IntentRevision},
		{"unknown label", `{"intent": "banana"}`, IntentRevision},
		{"garbage output", `not json at all`, IntentRevision},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oracle := &routedOracle{routes: map[string]string{"label a reviewer's reply": tt.response}}
			c := NewClassifier(oracle)
			if got := c.Classify(context.Background(), "what about the intro?", classifierSession()); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyPromptCarriesSessionContext(t *testing.T) {
	oracle := &capturingOracle{response: `{"intent": "question"}`}
	c := NewClassifier(oracle)

	c.Classify(context.Background(), "is that the right figure?", classifierSession())

	if len(oracle.messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(oracle.messages))
	}
	prompt := oracle.messages[0].Content
	for _, want := range []string{"education", "@macrowatcher", "NGN hit a new low today", "draft"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("classification prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestClassifyOracleFailureDefaultsToRevision(t *testing.T) {
	oracle := &routedOracle{err: fmt.Errorf("api down")}
	c := NewClassifier(oracle)

	if got := c.Classify(context.Background(), "hmm, rework the middle", classifierSession()); got != IntentRevision {
		t.Fatalf("got %v, want revision", got)
	}
}
