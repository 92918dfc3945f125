package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"marks-content-agent/internal/chat"
	"marks-content-agent/internal/llm"
	"marks-content-agent/internal/model"
	"marks-content-agent/internal/review"
	"marks-content-agent/internal/twitter"
)

// Accounts is the slice of the account store the router needs.
type Accounts interface {
	Create(ctx context.Context, a *model.Account) error
	ByHandle(ctx context.Context, handle string) (*model.Account, error)
	Active(ctx context.Context) ([]model.Account, error)
	VoiceReferences(ctx context.Context) ([]model.Account, error)
	TagVoice(ctx context.Context, handle string, pillars []model.Pillar) error
	Deactivate(ctx context.Context, handle string) error
}

// Feeds is the slice of the feed store the router needs.
type Feeds interface {
	CreateSource(ctx context.Context, src *model.RSSSource) error
	ActiveSources(ctx context.Context) ([]model.RSSSource, error)
}

// Sampler refreshes voice samples on demand.
type Sampler interface {
	RefreshAll(ctx context.Context) (int, error)
	RefreshHandle(ctx context.Context, handle string) (int, error)
}

// SampleCounts reports how many samples a voice reference has.
type SampleCounts interface {
	CountForHandle(ctx context.Context, handle string) (int, error)
}

// Generator drafts content on demand.
type Generator interface {
	GeneratePost(ctx context.Context, pillar model.Pillar, topicHint string) (*llm.PostDraft, error)
	GenerateWeeklyBatch(ctx context.Context, recentNews string) ([]llm.BatchItem, error)
}

// Router executes operator commands. It implements the dispatcher's
// Commander interface.
type Router struct {
	oracle    llm.Client
	accounts  Accounts
	feeds     Feeds
	sampler   Sampler
	counts    SampleCounts
	generator Generator
	tw        *twitter.Client
	registry  *review.Registry
	transport chat.Transport
	pending   *pendingStore
	logger    *slog.Logger
}

func NewRouter(oracle llm.Client, accounts Accounts, feeds Feeds, sampler Sampler, counts SampleCounts,
	generator Generator, tw *twitter.Client, registry *review.Registry, transport chat.Transport,
	logger *slog.Logger) *Router {
	return &Router{
		oracle:    oracle,
		accounts:  accounts,
		feeds:     feeds,
		sampler:   sampler,
		counts:    counts,
		generator: generator,
		tw:        tw,
		registry:  registry,
		transport: transport,
		pending:   newPendingStore(),
		logger:    logger,
	}
}

// HandleBang parses and executes an explicit "!" command.
func (r *Router) HandleBang(ctx context.Context, userID, text string) string {
	cmd, err := ParseBang(text)
	if err != nil {
		return err.Error()
	}
	return r.execute(ctx, cmd)
}

// HandleNatural interprets a top-level natural-language message. A pending
// confirmation for the user takes precedence over fresh parsing, and
// low-confidence parses become a pending confirmation instead of executing.
func (r *Router) HandleNatural(ctx context.Context, userID, text string) string {
	if entry, ok := r.pending.Get(userID); ok {
		if entry.missing != "" {
			if isNo(text) {
				r.pending.Clear(userID)
				return "Okay, dropped it."
			}
			cmd, err := fillField(entry.command, entry.missing, text)
			if err != nil {
				var mf *missingFieldError
				if errors.As(err, &mf) {
					r.pending.Set(userID, mf.partial, mf.question, mf.field)
					return mf.question
				}
				// Keep the pending command and ask again.
				return entry.question
			}
			r.pending.Clear(userID)
			return r.execute(ctx, cmd)
		}
		r.pending.Clear(userID)
		if isYes(text) {
			return r.execute(ctx, entry.command)
		}
		if isNo(text) {
			return "Okay, dropped it."
		}
		// Anything else abandons the confirmation and parses fresh.
	}

	cmd, confidence, clarification, err := nlParse(ctx, r.oracle, text)
	if err != nil {
		var mf *missingFieldError
		if errors.As(err, &mf) {
			r.pending.Set(userID, mf.partial, mf.question, mf.field)
			return mf.question
		}
		r.logger.Error("parse request", "error", err)
		return "Couldn't make sense of that just now. Try again, or use `!help` for explicit commands."
	}
	if cmd == nil {
		return clarification
	}
	if confidence < confidenceFloor {
		question := fmt.Sprintf("Just to confirm: %s? (yes/no)", describe(cmd))
		r.pending.Set(userID, cmd, question, "")
		return question
	}
	return r.execute(ctx, cmd)
}

func (r *Router) execute(ctx context.Context, cmd Command) string {
	switch c := cmd.(type) {
	case AddMonitorCommand:
		return r.addMonitor(ctx, c)
	case AddVoiceCommand:
		return r.addVoice(ctx, c)
	case TagVoiceCommand:
		if err := r.accounts.TagVoice(ctx, c.Handle, c.Pillars); err != nil {
			return fmt.Sprintf("Couldn't retag @%s: %v", c.Handle, err)
		}
		return fmt.Sprintf("@%s is now a voice reference for %s.", c.Handle, joinPillars(c.Pillars))
	case RemoveAccountCommand:
		if err := r.accounts.Deactivate(ctx, c.Handle); err != nil {
			return fmt.Sprintf("Couldn't remove @%s: %v", c.Handle, err)
		}
		return fmt.Sprintf("Stopped monitoring @%s.", c.Handle)
	case AddFeedCommand:
		src := &model.RSSSource{Name: c.Name, URL: c.URL, Category: c.Category}
		if err := r.feeds.CreateSource(ctx, src); err != nil {
			return fmt.Sprintf("Couldn't add feed: %v", err)
		}
		return fmt.Sprintf("Polling %s (%s).", c.Name, c.Category)
	case ListMonitorsCommand:
		return r.listMonitors(ctx)
	case ListVoicesCommand:
		return r.listVoices(ctx)
	case RefreshVoicesCommand:
		return r.refreshVoices(ctx, c)
	case GeneratePostCommand:
		return r.generatePost(ctx, c)
	case WeeklyBatchCommand:
		return r.weeklyBatch(ctx)
	case HelpCommand:
		return helpText
	default:
		return "I don't know how to do that yet."
	}
}

func (r *Router) addMonitor(ctx context.Context, c AddMonitorCommand) string {
	acct := &model.Account{Handle: c.Handle, Category: c.Category, Priority: c.Priority}
	if user, err := r.tw.UserByUsername(ctx, c.Handle); err == nil {
		acct.TwitterID = user.ID
		acct.FollowerCount = user.Metrics.Followers
	} else {
		r.logger.Warn("lookup handle", "handle", c.Handle, "error", err)
	}
	if err := r.accounts.Create(ctx, acct); err != nil {
		return fmt.Sprintf("Couldn't add @%s: %v", c.Handle, err)
	}
	return fmt.Sprintf("Monitoring @%s (%s, priority %d).", c.Handle, c.Category, c.Priority)
}

func (r *Router) addVoice(ctx context.Context, c AddVoiceCommand) string {
	acct := &model.Account{
		Handle:       c.Handle,
		Category:     model.CategoryReplyTarget,
		Priority:     3,
		IsVoiceRef:   true,
		VoicePillars: c.Pillars,
	}
	if user, err := r.tw.UserByUsername(ctx, c.Handle); err == nil {
		acct.TwitterID = user.ID
		acct.FollowerCount = user.Metrics.Followers
	}
	if err := r.accounts.Create(ctx, acct); err != nil {
		return fmt.Sprintf("Couldn't add @%s: %v", c.Handle, err)
	}
	n, err := r.sampler.RefreshHandle(ctx, c.Handle)
	if err != nil {
		return fmt.Sprintf("Added @%s as a voice reference, but sampling failed: %v", c.Handle, err)
	}
	return fmt.Sprintf("Added @%s as a voice reference and sampled %d posts.", c.Handle, n)
}

func (r *Router) listMonitors(ctx context.Context) string {
	accounts, err := r.accounts.Active(ctx)
	if err != nil {
		return fmt.Sprintf("Couldn't list monitors: %v", err)
	}
	feeds, err := r.feeds.ActiveSources(ctx)
	if err != nil {
		return fmt.Sprintf("Couldn't list feeds: %v", err)
	}
	if len(accounts) == 0 && len(feeds) == 0 {
		return "Nothing monitored yet. Use `!add @handle category` or `!feed name url category`."
	}
	var b strings.Builder
	if len(accounts) > 0 {
		b.WriteString("*Accounts:*\n")
		for _, a := range accounts {
			fmt.Fprintf(&b, "- @%s (%s, p%d)", a.Handle, a.Category, a.Priority)
			if a.IsVoiceRef {
				b.WriteString(" 🎙")
			}
			b.WriteString("\n")
		}
	}
	if len(feeds) > 0 {
		b.WriteString("*Feeds:*\n")
		for _, f := range feeds {
			fmt.Fprintf(&b, "- %s (%s)\n", f.Name, f.Category)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *Router) listVoices(ctx context.Context) string {
	refs, err := r.accounts.VoiceReferences(ctx)
	if err != nil {
		return fmt.Sprintf("Couldn't list voices: %v", err)
	}
	if len(refs) == 0 {
		return "No voice references yet. Use `!voice add @handle`."
	}
	var b strings.Builder
	b.WriteString("*Voice references:*\n")
	for _, a := range refs {
		n, _ := r.counts.CountForHandle(ctx, a.Handle)
		fmt.Fprintf(&b, "- @%s (%d samples", a.Handle, n)
		if len(a.VoicePillars) > 0 {
			fmt.Fprintf(&b, ", %s", joinPillars(a.VoicePillars))
		}
		b.WriteString(")\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *Router) refreshVoices(ctx context.Context, c RefreshVoicesCommand) string {
	if c.Handle != "" {
		n, err := r.sampler.RefreshHandle(ctx, c.Handle)
		if err != nil {
			return fmt.Sprintf("Refresh failed for @%s: %v", c.Handle, err)
		}
		return fmt.Sprintf("Sampled %d new posts from @%s.", n, c.Handle)
	}
	n, err := r.sampler.RefreshAll(ctx)
	if err != nil {
		return fmt.Sprintf("Refresh failed: %v", err)
	}
	return fmt.Sprintf("Sampled %d new posts across all voice references.", n)
}

// generatePost drafts a post and opens a review session on the message
// that carries it, so thread replies iterate on it like any alert draft.
func (r *Router) generatePost(ctx context.Context, c GeneratePostCommand) string {
	draft, err := r.generator.GeneratePost(ctx, c.Pillar, c.Topic)
	if err != nil {
		r.logger.Error("generate post", "pillar", c.Pillar, "error", err)
		return "Generation failed. Try again in a moment."
	}

	text := fmt.Sprintf("*Draft (%s / %s):*\n\n%s\n\n_Reply in thread with changes, or ✅ to approve._",
		c.Pillar, draft.Topic, draft.Content)
	messageID, err := r.transport.PostMessage(ctx, text)
	if err != nil {
		r.logger.Error("post draft", "error", err)
		return "Generated the draft but couldn't post it."
	}
	if _, err := r.registry.Create(messageID, c.Pillar, draft.Topic, draft.Content, nil); err != nil && !errors.Is(err, review.ErrDuplicateSession) {
		r.logger.Error("open session", "message", messageID, "error", err)
	}
	return ""
}

func (r *Router) weeklyBatch(ctx context.Context) string {
	items, err := r.generator.GenerateWeeklyBatch(ctx, "")
	if err != nil {
		r.logger.Error("generate weekly batch", "error", err)
		return "Batch generation failed. Try again in a moment."
	}
	var b strings.Builder
	b.WriteString("*Next week's batch:*\n")
	for _, item := range items {
		fmt.Fprintf(&b, "\n*%s — %s*\n%s\n", item.Day, item.Pillar, item.Content)
	}
	return b.String()
}

var yesWords = []string{"yes", "yep", "yeah", "sure", "ok", "okay", "confirm", "do it", "👍", "✅"}

var noWords = []string{"no", "nope", "nah", "cancel", "stop", "don't", "dont"}

func isYes(text string) bool {
	t := strings.ToLower(strings.Trim(strings.TrimSpace(text), ".!"))
	for _, w := range yesWords {
		if t == w {
			return true
		}
	}
	return false
}

func isNo(text string) bool {
	t := strings.ToLower(strings.Trim(strings.TrimSpace(text), ".!"))
	for _, w := range noWords {
		if t == w {
			return true
		}
	}
	return false
}

const helpText = "*Commands:*\n" +
	"`!add @handle category [priority]` — monitor an account\n" +
	"`!feed name url category` — poll an RSS feed\n" +
	"`!voice add @handle [pillars]` — add a voice reference\n" +
	"`!voice tag @handle pillar[,pillar]` — retag a voice reference\n" +
	"`!voice refresh [@handle]` — resample voice posts\n" +
	"`!remove @handle` — stop monitoring\n" +
	"`!monitors` / `!voices` — list what's tracked\n" +
	"`!post pillar [topic]` — draft a post now\n" +
	"`!weekly` — draft next week's batch\n" +
	"Plain English works too: \"track @jack for global macro\"."
