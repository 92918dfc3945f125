package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"marks-content-agent/internal/chat"
	"marks-content-agent/internal/llm"
	"marks-content-agent/internal/model"
)

// ItemSeed is the material needed to open a draft session from an alert
// the bot posted earlier.
type ItemSeed struct {
	Pillar    model.Pillar
	Topic     string
	Suggested string
	Source    *SourceReference
}

// ItemSource resolves alert messages back to their suggested items.
type ItemSource interface {
	// SeedForMessage returns the seed behind an alert message id, or nil
	// when the message is not a known alert.
	SeedForMessage(ctx context.Context, messageID string) (*ItemSeed, error)
	// MarkActioned records that the item's review finished.
	MarkActioned(ctx context.Context, messageID string) error
}

// Commander handles everything that is not part of a draft thread:
// explicit "!" commands and top-level natural-language requests.
type Commander interface {
	HandleBang(ctx context.Context, userID, text string) string
	HandleNatural(ctx context.Context, userID, text string) string
}

// Dispatcher routes chat events. Exactly one path handles each message:
// ignore, bang command, session reply, session materialization from an
// alert thread, or natural-language command.
type Dispatcher struct {
	registry   *Registry
	classifier *Classifier
	detector   *VoiceDetector
	engine     *Engine
	extractor  *Extractor
	feedback   FeedbackStore
	items      ItemSource
	dir        VoiceDirectory
	transport  chat.Transport
	commands   Commander
	oracle     llm.Client
	logger     *slog.Logger
}

func NewDispatcher(
	registry *Registry,
	classifier *Classifier,
	detector *VoiceDetector,
	engine *Engine,
	extractor *Extractor,
	feedback FeedbackStore,
	items ItemSource,
	dir VoiceDirectory,
	transport chat.Transport,
	commands Commander,
	oracle llm.Client,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		registry:   registry,
		classifier: classifier,
		detector:   detector,
		engine:     engine,
		extractor:  extractor,
		feedback:   feedback,
		items:      items,
		dir:        dir,
		transport:  transport,
		commands:   commands,
		oracle:     oracle,
		logger:     logger,
	}
}

// HandleMessage implements chat.Handler.
func (d *Dispatcher) HandleMessage(ctx context.Context, ev chat.MessageEvent) {
	if ev.FromBot || ev.Edited {
		return
	}
	text := strings.TrimSpace(ev.Text)
	if text == "" {
		return
	}

	if strings.HasPrefix(text, "!") {
		reply := d.commands.HandleBang(ctx, ev.UserID, text)
		d.respond(ctx, ev, reply)
		return
	}

	if ev.ThreadID != "" {
		if s := d.registry.Get(ev.ThreadID); s != nil {
			d.handleSessionReply(ctx, s, ev, text)
			return
		}
		if s := d.materialize(ctx, ev.ThreadID); s != nil {
			d.handleSessionReply(ctx, s, ev, text)
			return
		}
		// Threaded reply outside any known session: stay silent rather
		// than answer a conversation the bot is not part of.
		return
	}

	reply := d.commands.HandleNatural(ctx, ev.UserID, text)
	d.respond(ctx, ev, reply)
}

// HandleReaction implements chat.Handler. Only approval emojis act; the
// reacted-to message may be the thread root or the latest draft message.
func (d *Dispatcher) HandleReaction(ctx context.Context, ev chat.ReactionEvent) {
	switch ev.Reaction {
	case "white_check_mark", "heavy_check_mark", "thumbsup", "+1":
	default:
		return
	}

	s := d.registry.FindByMessageRef(ev.MessageID)
	if s == nil {
		if seed := d.materialize(ctx, ev.MessageID); seed != nil {
			s = seed
		} else {
			return
		}
	}

	unlock := d.registry.Lock(s.ThreadID)
	defer unlock()
	d.approve(ctx, s)
}

// materialize lazily opens a session when the first interaction with an
// alert thread arrives. Returns nil when the thread root is not an alert.
func (d *Dispatcher) materialize(ctx context.Context, threadID string) *DraftSession {
	seed, err := d.items.SeedForMessage(ctx, threadID)
	if err != nil {
		d.logger.Error("resolve alert item", "thread", threadID, "error", err)
		return nil
	}
	if seed == nil {
		return nil
	}
	s, err := d.registry.Create(threadID, seed.Pillar, seed.Topic, seed.Suggested, seed.Source)
	if err != nil {
		if errors.Is(err, ErrDuplicateSession) {
			return d.registry.Get(threadID)
		}
		d.logger.Error("create session", "thread", threadID, "error", err)
		return nil
	}
	d.logger.Info("session opened", "thread", threadID, "pillar", s.Pillar)
	return s
}

func (d *Dispatcher) handleSessionReply(ctx context.Context, s *DraftSession, ev chat.MessageEvent, text string) {
	unlock := d.registry.Lock(s.ThreadID)
	defer unlock()

	switch s.Status {
	case StatusComplete, StatusApproved:
		return
	case StatusLearningsPending:
		d.confirmLearnings(ctx, s, text)
		return
	}

	intent := d.classifier.Classify(ctx, text, s)

	// Voice detection runs for every non-approval; only a revision
	// consumes the hint today.
	var voiceHint string
	var voiceRequested bool
	if intent != IntentApproval {
		voiceHint, voiceRequested = d.detector.Detect(ctx, text)
	}

	switch intent {
	case IntentApproval:
		d.approve(ctx, s)
	case IntentQuestion:
		d.answerQuestion(ctx, s, text)
	default:
		d.revise(ctx, s, text, voiceHint, voiceRequested)
	}
}

func (d *Dispatcher) revise(ctx context.Context, s *DraftSession, instruction, hint string, voiceRequested bool) {
	var (
		draft *DraftVersion
		err   error
	)
	if voiceRequested {
		acct, rerr := d.detector.Resolve(ctx, hint)
		if errors.Is(rerr, ErrNoVoiceMatch) {
			d.reply(ctx, s, fmt.Sprintf("I don't have a voice reference matching %q. Use `!voices` to list the ones I know, or `!voice add @handle` to add one.", hint))
			return
		}
		if rerr != nil {
			d.logger.Error("resolve voice", "hint", hint, "error", rerr)
			d.reply(ctx, s, "Something went wrong looking up that voice reference. Try again.")
			return
		}
		samples, serr := d.dir.SamplesFor(ctx, acct.Handle, 20)
		if serr != nil || len(samples) == 0 {
			d.reply(ctx, s, fmt.Sprintf("I know @%s but have no posts sampled yet. Run `!voice refresh` first.", acct.Handle))
			return
		}
		draft, err = d.engine.ReviseWithVoice(ctx, s, instruction, acct.Handle, samples)
	} else {
		draft, err = d.engine.Revise(ctx, s, instruction)
	}
	if err != nil {
		d.logger.Error("revise draft", "thread", s.ThreadID, "error", err)
		d.reply(ctx, s, "Couldn't generate a revision just now. Try again in a moment.")
		return
	}

	msg := fmt.Sprintf("*Draft v%d:*\n\n%s\n\n_Reply with more changes, or ✅ to approve._", draft.Version, draft.Content)
	if id, perr := d.transport.PostReply(ctx, s.ThreadID, msg); perr == nil {
		draft.MessageRef = id
	} else {
		d.logger.Error("post draft", "thread", s.ThreadID, "error", perr)
	}
}

func (d *Dispatcher) answerQuestion(ctx context.Context, s *DraftSession, question string) {
	system := "You answer a reviewer's question about a social media draft under review. Be brief and factual. Do not produce a new draft."
	var b strings.Builder
	fmt.Fprintf(&b, "Current draft:\n%s\n", s.Latest().Content)
	if s.Source != nil {
		fmt.Fprintf(&b, "\nIt responds to this post by @%s:\n%s\n", s.Source.AuthorHandle, s.Source.Text)
	}
	fmt.Fprintf(&b, "\nQuestion: %s", question)

	answer, err := d.oracle.Complete(ctx, system, []llm.Message{{Role: llm.RoleUser, Content: b.String()}}, 500)
	if err != nil {
		d.logger.Error("answer question", "thread", s.ThreadID, "error", err)
		d.reply(ctx, s, "Couldn't answer that just now. Try again in a moment.")
		return
	}
	d.reply(ctx, s, strings.TrimSpace(answer))
}

// approve runs the approval transition. A second approval of the same
// session is a no-op. Callers must hold the thread lock.
func (d *Dispatcher) approve(ctx context.Context, s *DraftSession) {
	if s.Status != StatusIterating {
		return
	}
	s.Status = StatusApproved

	if len(s.Drafts) == 1 {
		d.finish(ctx, s)
		return
	}

	learnings, err := d.extractor.Extract(ctx, s)
	if err != nil {
		d.logger.Error("extract learnings", "thread", s.ThreadID, "error", err)
		learnings = nil
	}
	if len(learnings) == 0 {
		d.finish(ctx, s)
		return
	}

	s.PendingLearnings = learnings
	s.Status = StatusLearningsPending

	var b strings.Builder
	b.WriteString("Approved ✅ Final version:\n\n")
	b.WriteString(s.Latest().Content)
	b.WriteString("\n\nI picked up these style preferences from your edits:\n")
	for i, l := range learnings {
		fmt.Fprintf(&b, "%d. %s\n", i+1, l)
	}
	b.WriteString("\nSave them for future drafts? (yes / yes, except ... / no)")
	d.reply(ctx, s, b.String())
}

func (d *Dispatcher) confirmLearnings(ctx context.Context, s *DraftSession, text string) {
	kept := ParseConfirmation(text, s.PendingLearnings)
	saved := 0
	for _, l := range kept {
		fb := &model.Feedback{
			Pillar:   s.Pillar,
			Original: s.Drafts[0].Content,
			Text:     l,
			ThreadID: s.ThreadID,
		}
		if err := d.feedback.Create(ctx, fb); err != nil {
			d.logger.Error("save feedback", "thread", s.ThreadID, "error", err)
			continue
		}
		saved++
	}
	s.PendingLearnings = nil
	s.Status = StatusComplete
	d.markActioned(ctx, s)

	if saved == 0 {
		d.reply(ctx, s, "Okay, nothing saved. This one's done.")
		return
	}
	d.reply(ctx, s, fmt.Sprintf("Saved %d preference(s) for future drafts. This one's done.", saved))
}

func (d *Dispatcher) finish(ctx context.Context, s *DraftSession) {
	s.Status = StatusComplete
	d.markActioned(ctx, s)
	d.reply(ctx, s, "Approved ✅ Final version:\n\n"+s.Latest().Content)
}

func (d *Dispatcher) markActioned(ctx context.Context, s *DraftSession) {
	if s.Source == nil {
		return
	}
	if err := d.items.MarkActioned(ctx, s.ThreadID); err != nil {
		d.logger.Error("mark item actioned", "thread", s.ThreadID, "error", err)
	}
}

func (d *Dispatcher) reply(ctx context.Context, s *DraftSession, text string) {
	if _, err := d.transport.PostReply(ctx, s.ThreadID, text); err != nil {
		d.logger.Error("post reply", "thread", s.ThreadID, "error", err)
	}
}

func (d *Dispatcher) respond(ctx context.Context, ev chat.MessageEvent, text string) {
	if text == "" {
		return
	}
	var err error
	if ev.ThreadID != "" {
		_, err = d.transport.PostReply(ctx, ev.ThreadID, text)
	} else {
		_, err = d.transport.PostMessage(ctx, text)
	}
	if err != nil {
		d.logger.Error("post response", "error", err)
	}
}
