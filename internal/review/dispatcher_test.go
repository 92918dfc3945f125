package review

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marks-content-agent/internal/chat"
	"marks-content-agent/internal/model"
)

const (
	routeClassify = "label a reviewer's reply"
	routeVoice    = "imitate a specific person"
	routeRevise   = "You revise social media posts"
	routeExtract  = "edit history"
	routeAnswer   = "answer a reviewer's question"
)

type fixture struct {
	dispatcher *Dispatcher
	registry   *Registry
	oracle     *routedOracle
	transport  *fakeTransport
	feedback   *fakeFeedback
	items      *fakeItems
	commander  *stubCommander
}

func newFixture(routes map[string]string) *fixture {
	oracle := &routedOracle{routes: routes}
	transport := &fakeTransport{}
	feedback := &fakeFeedback{}
	items := &fakeItems{seeds: map[string]*ItemSeed{}}
	commander := &stubCommander{}
	registry := NewRegistry(24 * time.Hour)
	dir := &fakeDirectory{samples: map[string][]string{}}

	d := NewDispatcher(
		registry,
		NewClassifier(oracle),
		NewVoiceDetector(oracle, dir),
		NewEngine(oracle, "test profile"),
		NewExtractor(oracle),
		feedback,
		items,
		dir,
		transport,
		commander,
		oracle,
		slog.New(slog.DiscardHandler),
	)
	return &fixture{
		dispatcher: d,
		registry:   registry,
		oracle:     oracle,
		transport:  transport,
		feedback:   feedback,
		items:      items,
		commander:  commander,
	}
}

func message(thread, text string) chat.MessageEvent {
	return chat.MessageEvent{ChannelID: "c1", UserID: "u1", Text: text, MessageID: "m1", ThreadID: thread}
}

func TestDispatcherFullReviewCycle(t *testing.T) {
	f := newFixture(map[string]string{
		routeClassify: `{"intent": "revision"}`,
		routeVoice:    `{"match": false, "hint": ""}`,
		routeRevise:   "BTC perps explained, in one line.",
		routeExtract:  `["Prefer posts under 200 characters"]`,
	})
	ctx := context.Background()

	s, err := f.registry.Create("t1", model.PillarEducation, "perps 101", "a long first draft about perps", nil)
	require.NoError(t, err)

	// Revision request appends v1 and posts it back to the thread.
	f.dispatcher.HandleMessage(ctx, message("t1", "make it shorter"))
	require.Len(t, s.Drafts, 2)
	assert.Equal(t, "BTC perps explained, in one line.", s.Drafts[1].Content)
	assert.Equal(t, "make it shorter", s.Drafts[1].RevisionRequest)
	assert.NotEmpty(t, s.Drafts[1].MessageRef)
	assert.Contains(t, f.transport.last().Text, "Draft v1")

	// Approval reaction on the posted draft triggers learning extraction.
	f.dispatcher.HandleReaction(ctx, chat.ReactionEvent{UserID: "u1", MessageID: s.Drafts[1].MessageRef, Reaction: "white_check_mark"})
	assert.Equal(t, StatusLearningsPending, s.Status)
	assert.Contains(t, f.transport.last().Text, "Prefer posts under 200 characters")

	// A second approval reaction while pending is a no-op.
	before := f.transport.count()
	f.dispatcher.HandleReaction(ctx, chat.ReactionEvent{UserID: "u1", MessageID: s.Drafts[1].MessageRef, Reaction: "thumbsup"})
	assert.Equal(t, before, f.transport.count())
	assert.Equal(t, StatusLearningsPending, s.Status)

	// Confirming saves the learning and completes the session.
	f.dispatcher.HandleMessage(ctx, message("t1", "yes"))
	assert.Equal(t, StatusComplete, s.Status)
	require.Len(t, f.feedback.saved, 1)
	assert.Equal(t, "Prefer posts under 200 characters", f.feedback.saved[0].Text)
	assert.Equal(t, model.PillarEducation, f.feedback.saved[0].Pillar)
	assert.Equal(t, "a long first draft about perps", f.feedback.saved[0].Original)

	// Messages after completion are ignored.
	before = f.transport.count()
	f.dispatcher.HandleMessage(ctx, message("t1", "one more thing"))
	assert.Equal(t, before, f.transport.count())
	require.Len(t, s.Drafts, 2)
}

func TestDispatcherSingleDraftApprovalSkipsLearnings(t *testing.T) {
	f := newFixture(map[string]string{
		routeExtract: `["should never be asked"]`,
	})
	ctx := context.Background()

	s, err := f.registry.Create("t1", model.PillarProduct, "feature", "only draft", nil)
	require.NoError(t, err)

	f.dispatcher.HandleMessage(ctx, message("t1", "ship it"))
	assert.Equal(t, StatusComplete, s.Status)
	assert.Empty(t, f.feedback.saved)
	assert.Contains(t, f.transport.last().Text, "only draft")
}

func TestDispatcherQuestionLeavesDraftsUnchanged(t *testing.T) {
	f := newFixture(map[string]string{
		routeClassify: `{"intent": "question"}`,
		routeAnswer:   "It cites the January funding data.",
	})
	ctx := context.Background()

	s, err := f.registry.Create("t1", model.PillarMarketCommentary, "funding", "v0", nil)
	require.NoError(t, err)

	f.dispatcher.HandleMessage(ctx, message("t1", "where is that number from?"))
	assert.Len(t, s.Drafts, 1)
	assert.Equal(t, StatusIterating, s.Status)
	assert.Equal(t, "It cites the January funding data.", f.transport.last().Text)
}

func TestDispatcherRunsVoiceDetectionForNonApprovals(t *testing.T) {
	f := newFixture(map[string]string{
		routeClassify: `{"intent": "question"}`,
		routeVoice:    `{"match": false, "hint": ""}`,
		routeAnswer:   "It came from the funding dashboard.",
	})
	ctx := context.Background()

	_, err := f.registry.Create("t1", model.PillarMarketCommentary, "funding", "v0", nil)
	require.NoError(t, err)

	f.dispatcher.HandleMessage(ctx, message("t1", "who reported that number?"))
	assert.Contains(t, f.oracle.calls, routeVoice, "non-approval replies run voice detection")
	assert.Contains(t, f.oracle.calls, routeAnswer)
}

func TestDispatcherMaterializesSessionFromAlert(t *testing.T) {
	f := newFixture(map[string]string{
		routeClassify: `{"intent": "revision"}`,
		routeVoice:    `{"match": false, "hint": ""}`,
		routeRevise:   "revised suggestion",
	})
	ctx := context.Background()

	f.items.seeds["alert-1"] = &ItemSeed{
		Pillar:    model.PillarMarketCommentary,
		Topic:     "reaction to @whale",
		Suggested: "suggested take on the move",
		Source:    &SourceReference{ID: "777", Text: "BTC just moved", AuthorHandle: "whale"},
	}

	f.dispatcher.HandleMessage(ctx, message("alert-1", "punchier please"))

	s := f.registry.Get("alert-1")
	require.NotNil(t, s, "replying in an alert thread opens a session")
	require.Len(t, s.Drafts, 2)
	assert.Equal(t, "suggested take on the move", s.Drafts[0].Content)
	assert.Equal(t, "revised suggestion", s.Drafts[1].Content)

	// Approving marks the upstream item actioned.
	f.dispatcher.HandleMessage(ctx, message("alert-1", "ship it"))
	assert.Equal(t, StatusLearningsPending, s.Status)
	f.dispatcher.HandleMessage(ctx, message("alert-1", "no"))
	assert.Equal(t, StatusComplete, s.Status)
	assert.Equal(t, []string{"alert-1"}, f.items.actioned)
}

func TestDispatcherIgnoresUnknownThreadsAndBots(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()

	f.dispatcher.HandleMessage(ctx, message("no-such-thread", "hello?"))
	assert.Zero(t, f.transport.count())

	ev := message("", "!help")
	ev.FromBot = true
	f.dispatcher.HandleMessage(ctx, ev)
	assert.Empty(t, f.commander.bangReplies)

	f.dispatcher.HandleReaction(ctx, chat.ReactionEvent{MessageID: "nothing", Reaction: "white_check_mark"})
	f.dispatcher.HandleReaction(ctx, chat.ReactionEvent{MessageID: "nothing", Reaction: "eyes"})
	assert.Zero(t, f.transport.count())
}

func TestDispatcherRoutesCommands(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()

	f.dispatcher.HandleMessage(ctx, message("", "!voices"))
	require.Equal(t, []string{"!voices"}, f.commander.bangReplies)
	assert.Equal(t, "command handled", f.transport.last().Text)

	f.dispatcher.HandleMessage(ctx, message("", "track @jack for global macro"))
	require.Equal(t, []string{"track @jack for global macro"}, f.commander.naturalReplies)
	assert.Equal(t, "request handled", f.transport.last().Text)
}

func TestDispatcherRevisionFailureKeepsSession(t *testing.T) {
	f := newFixture(map[string]string{
		routeClassify: `{"intent": "revision"}`,
		routeVoice:    `{"match": false, "hint": ""}`,
		// no revise route: the engine call fails
	})
	ctx := context.Background()

	s, err := f.registry.Create("t1", model.PillarEducation, "x", "v0", nil)
	require.NoError(t, err)

	f.dispatcher.HandleMessage(ctx, message("t1", "tighten the middle"))
	assert.Len(t, s.Drafts, 1, "failed revision appends nothing")
	assert.Equal(t, StatusIterating, s.Status)
	assert.True(t, strings.Contains(f.transport.last().Text, "Try again"))
}

func TestDispatcherVoiceRevision(t *testing.T) {
	f := newFixture(map[string]string{
		routeClassify: `{"intent": "revision"}`,
		routeVoice:    `{"match": true, "hint": "raoul"}`,
		routeRevise:   "macro-flavored rewrite",
	})
	dir := &fakeDirectory{
		refs:    []model.Account{{Handle: "RaoulGMI"}},
		samples: map[string][]string{"raoulgmi": {"sample one", "sample two"}},
	}
	f.dispatcher.detector = NewVoiceDetector(f.oracle, dir)
	f.dispatcher.dir = dir
	ctx := context.Background()

	s, err := f.registry.Create("t1", model.PillarMarketCommentary, "x", "v0", nil)
	require.NoError(t, err)

	f.dispatcher.HandleMessage(ctx, message("t1", "write it how raoul would"))
	require.Len(t, s.Drafts, 2)
	assert.Equal(t, "RaoulGMI", s.Drafts[1].VoiceReference)
	assert.Equal(t, "macro-flavored rewrite", s.Drafts[1].Content)
}

func TestDispatcherVoiceMissReportsWithoutRevising(t *testing.T) {
	f := newFixture(map[string]string{
		routeClassify: `{"intent": "revision"}`,
		routeVoice:    `{"match": true, "hint": "somebody nobody knows"}`,
	})
	ctx := context.Background()

	s, err := f.registry.Create("t1", model.PillarMarketCommentary, "x", "v0", nil)
	require.NoError(t, err)

	f.dispatcher.HandleMessage(ctx, message("t1", "write it like somebody nobody knows"))
	assert.Len(t, s.Drafts, 1)
	assert.Contains(t, f.transport.last().Text, "voice reference")
}
