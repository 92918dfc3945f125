package review

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"marks-content-agent/internal/llm"
	"marks-content-agent/internal/model"
)

// routedOracle answers based on a substring of the system prompt, so one
// fake serves classification, voice detection, revision and extraction in
// the same test.
type routedOracle struct {
	mu     sync.Mutex
	routes map[string]string
	err    error
	calls  []string
}

func (o *routedOracle) Complete(_ context.Context, system string, _ []llm.Message, _ int) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return "", o.err
	}
	for key, response := range o.routes {
		if strings.Contains(system, key) {
			o.calls = append(o.calls, key)
			return response, nil
		}
	}
	return "", fmt.Errorf("no route for system prompt: %.60s", system)
}

type postedMessage struct {
	ThreadID string
	Text     string
}

// fakeTransport records outbound messages and hands out sequential ids.
type fakeTransport struct {
	mu     sync.Mutex
	posts  []postedMessage
	nextID int
}

func (t *fakeTransport) PostMessage(_ context.Context, text string) (string, error) {
	return t.record("", text), nil
}

func (t *fakeTransport) PostReply(_ context.Context, threadID, text string) (string, error) {
	return t.record(threadID, text), nil
}

func (t *fakeTransport) record(threadID, text string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	t.posts = append(t.posts, postedMessage{ThreadID: threadID, Text: text})
	return fmt.Sprintf("msg-%d", t.nextID)
}

func (t *fakeTransport) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.posts)
}

func (t *fakeTransport) last() postedMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.posts) == 0 {
		return postedMessage{}
	}
	return t.posts[len(t.posts)-1]
}

type fakeFeedback struct {
	mu    sync.Mutex
	saved []model.Feedback
}

func (f *fakeFeedback) Create(_ context.Context, fb *model.Feedback) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, *fb)
	return nil
}

type fakeItems struct {
	seeds    map[string]*ItemSeed
	actioned []string
}

func (f *fakeItems) SeedForMessage(_ context.Context, messageID string) (*ItemSeed, error) {
	return f.seeds[messageID], nil
}

func (f *fakeItems) MarkActioned(_ context.Context, messageID string) error {
	f.actioned = append(f.actioned, messageID)
	return nil
}

type fakeDirectory struct {
	refs    []model.Account
	samples map[string][]string
}

func (f *fakeDirectory) VoiceReferences(_ context.Context) ([]model.Account, error) {
	return f.refs, nil
}

func (f *fakeDirectory) SamplesFor(_ context.Context, handle string, _ int) ([]string, error) {
	return f.samples[strings.ToLower(handle)], nil
}

type stubCommander struct {
	bangReplies    []string
	naturalReplies []string
}

func (c *stubCommander) HandleBang(_ context.Context, _, text string) string {
	c.bangReplies = append(c.bangReplies, text)
	return "command handled"
}

func (c *stubCommander) HandleNatural(_ context.Context, _, text string) string {
	c.naturalReplies = append(c.naturalReplies, text)
	return "request handled"
}
