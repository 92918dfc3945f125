package review

import (
	"context"
	"fmt"
	"strings"

	"marks-content-agent/internal/llm"
)

// Engine produces revised drafts. Each revision replays the whole session
// as alternating turns so the oracle sees every instruction given so far,
// not just the latest one.
type Engine struct {
	client  llm.Client
	profile string
}

func NewEngine(client llm.Client, profile string) *Engine {
	return &Engine{client: client, profile: profile}
}

func (e *Engine) systemPrompt() string {
	return fmt.Sprintf(`You revise social media posts for a trading platform.

Brand voice:
%s

Apply the reviewer's instruction to the latest draft. Keep everything they have not asked to change. Return only the revised post text with no preamble or commentary.`, e.profile)
}

// Revise generates the next draft version and appends it to the session.
// On oracle failure nothing is appended and the session is unchanged.
// Callers must hold the thread lock.
func (e *Engine) Revise(ctx context.Context, s *DraftSession, instruction string) (*DraftVersion, error) {
	msgs := replay(s)
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: instruction})

	content, err := e.complete(ctx, msgs)
	if err != nil {
		return nil, err
	}
	return s.appendDraft(content, instruction, ""), nil
}

// ReviseWithVoice is Revise with style samples from a voice reference
// attached to the final instruction.
func (e *Engine) ReviseWithVoice(ctx context.Context, s *DraftSession, instruction, handle string, samples []string) (*DraftVersion, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Example posts from @%s:\n", handle)
	for _, sample := range samples {
		fmt.Fprintf(&b, "- %s\n", sample)
	}
	fmt.Fprintf(&b, "\nRewrite the draft in the style of the examples above, and also apply: %s", instruction)

	msgs := replay(s)
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: b.String()})

	content, err := e.complete(ctx, msgs)
	if err != nil {
		return nil, err
	}
	return s.appendDraft(content, instruction, handle), nil
}

func (e *Engine) complete(ctx context.Context, msgs []llm.Message) (string, error) {
	content, err := e.client.Complete(ctx, e.systemPrompt(), msgs, 1000)
	if err != nil {
		return "", fmt.Errorf("revise draft: %w", err)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("revise draft: empty response")
	}
	return content, nil
}

// replay rebuilds the conversation: source context and the drafting request
// as user turns, then each draft as an assistant turn with the revision
// request that produced it in between.
func replay(s *DraftSession) []llm.Message {
	var msgs []llm.Message
	if s.Source != nil {
		msgs = append(msgs, llm.Message{
			Role:    llm.RoleUser,
			Content: fmt.Sprintf("We are drafting a reply to this post by @%s:\n\n%q", s.Source.AuthorHandle, s.Source.Text),
		})
		msgs = append(msgs, llm.Message{Role: llm.RoleAssistant, Content: "Understood."})
	}
	msgs = append(msgs, llm.Message{
		Role:    llm.RoleUser,
		Content: fmt.Sprintf("Draft a %s post about: %s", s.Pillar, s.Topic),
	})
	msgs = append(msgs, llm.Message{Role: llm.RoleAssistant, Content: s.Drafts[0].Content})
	for _, d := range s.Drafts[1:] {
		msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: d.RevisionRequest})
		msgs = append(msgs, llm.Message{Role: llm.RoleAssistant, Content: d.Content})
	}
	return msgs
}
