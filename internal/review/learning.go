package review

import (
	"context"
	"fmt"
	"strings"

	"marks-content-agent/internal/llm"
	"marks-content-agent/internal/model"
)

// FeedbackStore persists confirmed style learnings.
type FeedbackStore interface {
	Create(ctx context.Context, fb *model.Feedback) error
}

// Extractor distills the revision history of an approved session into
// reusable style preferences.
type Extractor struct {
	client llm.Client
}

func NewExtractor(client llm.Client) *Extractor {
	return &Extractor{client: client}
}

const extractSystemPrompt = `You review the edit history of an approved social media post and extract durable style preferences worth applying to future posts.
Only extract preferences that generalize (tone, length, structure, wording habits). Skip one-off factual corrections tied to this post's topic.
Respond with JSON only: an array of short preference strings, e.g. ["Prefer posts under 200 characters", "Avoid exclamation marks"]. Return [] when nothing generalizes.`

// Extract returns candidate learnings for a session that went through at
// least one revision. The caller decides what to do with an empty result.
func (e *Extractor) Extract(ctx context.Context, s *DraftSession) ([]string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Original draft:\n%s\n", s.Drafts[0].Content)
	for _, d := range s.Drafts[1:] {
		fmt.Fprintf(&b, "\nReviewer asked: %s\nRevised to:\n%s\n", d.RevisionRequest, d.Content)
	}
	fmt.Fprintf(&b, "\nFinal approved version:\n%s\n", s.Latest().Content)

	raw, err := e.client.Complete(ctx, extractSystemPrompt, []llm.Message{{Role: llm.RoleUser, Content: b.String()}}, 500)
	if err != nil {
		return nil, fmt.Errorf("extract learnings: %w", err)
	}
	var learnings []string
	if err := llm.DecodeJSON(raw, &learnings); err != nil {
		return nil, fmt.Errorf("extract learnings: %w", err)
	}
	var out []string
	for _, l := range learnings {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out, nil
}

var confirmNegatives = []string{"no", "nope", "none", "skip", "discard", "don't", "dont", "nah"}

var confirmAffirmatives = []string{"yes", "yep", "yeah", "sure", "ok", "okay", "confirm", "save", "good", "👍", "✅"}

// ParseConfirmation reduces proposed learnings to the set the reviewer
// accepted. Plain agreement keeps all, plain refusal keeps none,
// "yes, except ..." drops the named ones, and any other reply is read as a
// list of exceptions.
func ParseConfirmation(text string, learnings []string) []string {
	t := strings.ToLower(strings.TrimSpace(text))

	if startsWithAny(t, confirmNegatives) {
		return nil
	}
	if startsWithAny(t, confirmAffirmatives) {
		rest := trimLeadingAffirmation(t)
		if rest == "" {
			return append([]string(nil), learnings...)
		}
		return dropMatching(learnings, rest)
	}
	return dropMatching(learnings, t)
}

func startsWithAny(t string, words []string) bool {
	for _, w := range words {
		if t == w || strings.HasPrefix(t, w+" ") || strings.HasPrefix(t, w+",") || strings.HasPrefix(t, w+".") || strings.HasPrefix(t, w+"!") {
			return true
		}
	}
	return false
}

func trimLeadingAffirmation(t string) string {
	for _, w := range confirmAffirmatives {
		for _, sep := range []string{" ", ",", ".", "!"} {
			if strings.HasPrefix(t, w+sep) {
				t = strings.TrimSpace(t[len(w)+len(sep):])
			}
		}
	}
	for _, marker := range []string{"except", "but not", "but skip", "apart from", "other than"} {
		if i := strings.Index(t, marker); i >= 0 {
			t = strings.TrimSpace(t[i+len(marker):])
		}
	}
	return strings.Trim(t, " ,.!")
}

// dropMatching removes learnings that share a significant word with the
// exception text.
func dropMatching(learnings []string, exceptions string) []string {
	words := significantWords(exceptions)
	if len(words) == 0 {
		return append([]string(nil), learnings...)
	}
	var kept []string
	for _, l := range learnings {
		lower := strings.ToLower(l)
		matched := false
		for _, w := range words {
			if strings.Contains(lower, w) {
				matched = true
				break
			}
		}
		if !matched {
			kept = append(kept, l)
		}
	}
	return kept
}

var stopWords = map[string]struct{}{
	"the": {}, "one": {}, "ones": {}, "that": {}, "this": {}, "about": {},
	"and": {}, "not": {}, "for": {}, "with": {}, "part": {}, "thing": {},
	"keep": {}, "drop": {}, "first": {}, "second": {}, "last": {},
	"post": {}, "posts": {}, "rule": {}, "draft": {},
}

func significantWords(text string) []string {
	var out []string
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	}) {
		if len(w) < 3 {
			continue
		}
		if _, skip := stopWords[w]; skip {
			continue
		}
		out = append(out, w)
	}
	return out
}
