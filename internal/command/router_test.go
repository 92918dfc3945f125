package command

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marks-content-agent/internal/llm"
	"marks-content-agent/internal/model"
	"marks-content-agent/internal/review"
)

type scriptedOracle struct {
	response string
	err      error
}

func (o *scriptedOracle) Complete(_ context.Context, _ string, _ []llm.Message, _ int) (string, error) {
	return o.response, o.err
}

type fakeAccounts struct {
	created     []model.Account
	deactivated []string
	tagged      []string
	refs        []model.Account
}

func (f *fakeAccounts) Create(_ context.Context, a *model.Account) error {
	f.created = append(f.created, *a)
	return nil
}
func (f *fakeAccounts) ByHandle(_ context.Context, handle string) (*model.Account, error) {
	for i := range f.refs {
		if strings.EqualFold(f.refs[i].Handle, handle) {
			return &f.refs[i], nil
		}
	}
	return nil, nil
}
func (f *fakeAccounts) Active(_ context.Context) ([]model.Account, error)          { return f.refs, nil }
func (f *fakeAccounts) VoiceReferences(_ context.Context) ([]model.Account, error) { return f.refs, nil }
func (f *fakeAccounts) TagVoice(_ context.Context, handle string, _ []model.Pillar) error {
	f.tagged = append(f.tagged, handle)
	return nil
}
func (f *fakeAccounts) Deactivate(_ context.Context, handle string) error {
	f.deactivated = append(f.deactivated, handle)
	return nil
}

type fakeFeeds struct {
	sources []model.RSSSource
}

func (f *fakeFeeds) CreateSource(_ context.Context, src *model.RSSSource) error {
	f.sources = append(f.sources, *src)
	return nil
}
func (f *fakeFeeds) ActiveSources(_ context.Context) ([]model.RSSSource, error) {
	return f.sources, nil
}

type fakeSampler struct {
	refreshed []string
}

func (f *fakeSampler) RefreshAll(_ context.Context) (int, error) {
	f.refreshed = append(f.refreshed, "*")
	return 5, nil
}
func (f *fakeSampler) RefreshHandle(_ context.Context, handle string) (int, error) {
	f.refreshed = append(f.refreshed, handle)
	return 3, nil
}

type fakeCounts struct{}

func (fakeCounts) CountForHandle(_ context.Context, _ string) (int, error) { return 12, nil }

type fakeGenerator struct {
	draft *llm.PostDraft
}

func (f *fakeGenerator) GeneratePost(_ context.Context, _ model.Pillar, _ string) (*llm.PostDraft, error) {
	return f.draft, nil
}
func (f *fakeGenerator) GenerateWeeklyBatch(_ context.Context, _ string) ([]llm.BatchItem, error) {
	return []llm.BatchItem{{Day: "monday", Pillar: "education", Content: "batch post"}}, nil
}

type recordingTransport struct {
	posts  []string
	nextID int
}

func (t *recordingTransport) PostMessage(_ context.Context, text string) (string, error) {
	t.nextID++
	t.posts = append(t.posts, text)
	return "msg-1", nil
}
func (t *recordingTransport) PostReply(_ context.Context, _, text string) (string, error) {
	t.nextID++
	t.posts = append(t.posts, text)
	return "msg-r", nil
}

func newTestRouter(oracle llm.Client) (*Router, *fakeAccounts, *fakeSampler, *recordingTransport, *review.Registry) {
	accounts := &fakeAccounts{}
	sampler := &fakeSampler{}
	transport := &recordingTransport{}
	registry := review.NewRegistry(24 * time.Hour)
	r := NewRouter(oracle, accounts, &fakeFeeds{}, sampler, fakeCounts{},
		&fakeGenerator{draft: &llm.PostDraft{Topic: "basis trades", Angle: "simple", Content: "the draft"}},
		nil, registry, transport, slog.New(slog.DiscardHandler))
	return r, accounts, sampler, transport, registry
}

func TestHandleBangRemove(t *testing.T) {
	r, accounts, _, _, _ := newTestRouter(&scriptedOracle{})

	reply := r.HandleBang(context.Background(), "u1", "!remove @whale")
	assert.Contains(t, reply, "@whale")
	assert.Equal(t, []string{"whale"}, accounts.deactivated)
}

func TestHandleBangUnknownCommand(t *testing.T) {
	r, _, _, _, _ := newTestRouter(&scriptedOracle{})

	reply := r.HandleBang(context.Background(), "u1", "!frobnicate")
	assert.Contains(t, reply, "!help")
}

func TestGeneratePostOpensSession(t *testing.T) {
	r, _, _, transport, registry := newTestRouter(&scriptedOracle{})

	reply := r.HandleBang(context.Background(), "u1", "!post education")
	assert.Empty(t, reply, "the draft goes out as its own message")
	require.Len(t, transport.posts, 1)
	assert.Contains(t, transport.posts[0], "the draft")

	s := registry.Get("msg-1")
	require.NotNil(t, s, "the posted draft is reviewable")
	assert.Equal(t, model.PillarEducation, s.Pillar)
	assert.Equal(t, "the draft", s.Latest().Content)
}

func TestHandleNaturalHighConfidenceExecutes(t *testing.T) {
	oracle := &scriptedOracle{response: `{"intent": "remove_account", "confidence": 0.95,
		"entities": {"handle": "@whale"}, "clarification_needed": ""}`}
	r, accounts, _, _, _ := newTestRouter(oracle)

	reply := r.HandleNatural(context.Background(), "u1", "stop tracking whale please")
	assert.Contains(t, reply, "@whale")
	assert.Equal(t, []string{"whale"}, accounts.deactivated)
}

func TestHandleNaturalLowConfidenceAsksFirst(t *testing.T) {
	oracle := &scriptedOracle{response: `{"intent": "remove_account", "confidence": 0.5,
		"entities": {"handle": "@whale"}, "clarification_needed": ""}`}
	r, accounts, _, _, _ := newTestRouter(oracle)
	ctx := context.Background()

	reply := r.HandleNatural(ctx, "u1", "maybe drop whale?")
	assert.Contains(t, reply, "confirm")
	assert.Empty(t, accounts.deactivated, "nothing executes before confirmation")

	reply = r.HandleNatural(ctx, "u1", "yes")
	assert.Contains(t, reply, "@whale")
	assert.Equal(t, []string{"whale"}, accounts.deactivated)
}

func TestHandleNaturalConfirmationDeclined(t *testing.T) {
	oracle := &scriptedOracle{response: `{"intent": "refresh_voices", "confidence": 0.4,
		"entities": {}, "clarification_needed": ""}`}
	r, _, sampler, _, _ := newTestRouter(oracle)
	ctx := context.Background()

	_ = r.HandleNatural(ctx, "u1", "resample everything?")
	reply := r.HandleNatural(ctx, "u1", "no")
	assert.Contains(t, reply, "dropped")
	assert.Empty(t, sampler.refreshed)
}

func TestHandleNaturalConfirmationIsPerUser(t *testing.T) {
	oracle := &scriptedOracle{response: `{"intent": "refresh_voices", "confidence": 0.4,
		"entities": {}, "clarification_needed": ""}`}
	r, _, sampler, _, _ := newTestRouter(oracle)
	ctx := context.Background()

	_ = r.HandleNatural(ctx, "u1", "resample everything?")

	// A different user's yes opens their own parse, not u1's confirmation.
	_ = r.HandleNatural(ctx, "u2", "yes")
	assert.Empty(t, sampler.refreshed)

	_ = r.HandleNatural(ctx, "u1", "yes")
	assert.Equal(t, []string{"*"}, sampler.refreshed)
}

func TestHandleNaturalMissingFieldMergesAnswer(t *testing.T) {
	oracle := &scriptedOracle{response: `{"intent": "tag_voice", "confidence": 0.9,
		"entities": {"handle": "@whale", "pillars": []}, "clarification_needed": ""}`}
	r, accounts, _, _, _ := newTestRouter(oracle)
	ctx := context.Background()

	reply := r.HandleNatural(ctx, "u1", "retag whale")
	assert.Contains(t, reply, "pillars for @whale")
	assert.Empty(t, accounts.tagged, "nothing executes before the answer")

	reply = r.HandleNatural(ctx, "u1", "education, product")
	assert.Contains(t, reply, "@whale")
	assert.Equal(t, []string{"whale"}, accounts.tagged)
}

func TestHandleNaturalMissingFieldReasksOnBadAnswer(t *testing.T) {
	oracle := &scriptedOracle{response: `{"intent": "tag_voice", "confidence": 0.9,
		"entities": {"handle": "@whale", "pillars": []}, "clarification_needed": ""}`}
	r, accounts, _, _, _ := newTestRouter(oracle)
	ctx := context.Background()

	question := r.HandleNatural(ctx, "u1", "retag whale")
	reply := r.HandleNatural(ctx, "u1", "hmm not sure")
	assert.Equal(t, question, reply, "an unusable answer repeats the question")

	reply = r.HandleNatural(ctx, "u1", "education")
	assert.Contains(t, reply, "@whale")
	assert.Equal(t, []string{"whale"}, accounts.tagged)
}

func TestHandleNaturalMissingFieldDropped(t *testing.T) {
	oracle := &scriptedOracle{response: `{"intent": "tag_voice", "confidence": 0.9,
		"entities": {"handle": "@whale", "pillars": []}, "clarification_needed": ""}`}
	r, accounts, _, _, _ := newTestRouter(oracle)
	ctx := context.Background()

	_ = r.HandleNatural(ctx, "u1", "retag whale")
	reply := r.HandleNatural(ctx, "u1", "no")
	assert.Contains(t, reply, "dropped")
	assert.Empty(t, accounts.tagged)
}

func TestHandleNaturalMissingFieldChains(t *testing.T) {
	oracle := &scriptedOracle{response: `{"intent": "add_monitor", "confidence": 0.9,
		"entities": {"handle": "", "category": ""}, "clarification_needed": ""}`}
	r, accounts, _, _, _ := newTestRouter(oracle)
	ctx := context.Background()

	reply := r.HandleNatural(ctx, "u1", "monitor someone new")
	assert.Contains(t, reply, "Which account")

	// Answering the handle surfaces the next missing field.
	reply = r.HandleNatural(ctx, "u1", "@jack")
	assert.Contains(t, reply, "category is @jack")
	assert.Empty(t, accounts.created)
}

func TestHandleNaturalChatterStaysSilent(t *testing.T) {
	oracle := &scriptedOracle{response: `{"intent": "none", "confidence": 0.9,
		"entities": {}, "clarification_needed": ""}`}
	r, _, _, _, _ := newTestRouter(oracle)

	reply := r.HandleNatural(context.Background(), "u1", "lol that chart")
	assert.Empty(t, reply)
}
