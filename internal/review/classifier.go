package review

import (
	"context"
	"fmt"
	"strings"

	"marks-content-agent/internal/llm"
)

// Intent is the coarse label for a reply inside a draft thread.
type Intent string

const (
	IntentApproval Intent = "approval"
	IntentQuestion Intent = "question"
	IntentRevision Intent = "revision"
)

// Short standalone affirmations that approve without an oracle round trip.
var quickApprovals = map[string]struct{}{
	"good":     {},
	"great":    {},
	"perfect":  {},
	"yes":      {},
	"yep":      {},
	"yeah":     {},
	"approved": {},
	"approve":  {},
	"lgtm":     {},
	"👍":        {},
	"✅":        {},
}

var approvalPhrases = []string{
	"looks good",
	"ship it",
	"send it",
	"post it",
	"go ahead",
}

// IsQuickApproval matches unambiguous approvals by exact token or known
// phrase. Anything longer than a short phrase falls through to the oracle,
// so "good start but tighten it up" never fast-paths.
func IsQuickApproval(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	t = strings.TrimRight(t, ".!")
	if _, ok := quickApprovals[t]; ok {
		return true
	}
	if len(t) > 25 {
		return false
	}
	for _, p := range approvalPhrases {
		if strings.Contains(t, p) {
			return true
		}
	}
	return false
}

// Classifier labels thread replies as approval, question or revision.
type Classifier struct {
	client llm.Client
}

func NewClassifier(client llm.Client) *Classifier {
	return &Classifier{client: client}
}

const classifySystemPrompt = `You label a reviewer's reply in a social-media draft review thread.
Respond with JSON only: {"intent": "approval" | "question" | "revision"}
- approval: the reviewer accepts the draft as-is
- question: the reviewer asks about the draft or its topic without requesting a change
- revision: the reviewer wants the draft changed in any way
When unsure, choose revision.`

type classifyResult struct {
	Intent string `json:"intent"`
}

// Classify returns the intent of a reviewer reply. Oracle failures and
// unrecognized labels default to revision: a wrongly revised draft costs one
// follow-up message, a wrongly approved one publishes bad content.
func (c *Classifier) Classify(ctx context.Context, text string, s *DraftSession) Intent {
	if IsQuickApproval(text) {
		return IntentApproval
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Pillar: %s\n\n", s.Pillar)
	if s.Source != nil {
		fmt.Fprintf(&b, "The draft replies to this post by @%s:\n%s\n\n", s.Source.AuthorHandle, s.Source.Text)
	}
	fmt.Fprintf(&b, "Current draft:\n%s\n\nReviewer reply:\n%s", s.Latest().Content, text)

	raw, err := c.client.Complete(ctx, classifySystemPrompt, []llm.Message{{Role: llm.RoleUser, Content: b.String()}}, 100)
	if err != nil {
		return IntentRevision
	}

	var res classifyResult
	if err := llm.DecodeJSON(raw, &res); err != nil {
		return IntentRevision
	}
	switch intent := Intent(strings.ToLower(strings.TrimSpace(res.Intent))); intent {
	case IntentApproval, IntentQuestion:
		return intent
	default:
		return IntentRevision
	}
}
