package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"marks-content-agent/internal/model"
)

// Slack is the Socket Mode transport for the review channel.
type Slack struct {
	api       *slack.Client
	channelID string
	botUserID string
}

func NewSlack(botToken, appToken, channelID string) *Slack {
	api := slack.New(botToken, slack.OptionAppLevelToken(appToken))
	return &Slack{api: api, channelID: channelID}
}

func (s *Slack) PostMessage(ctx context.Context, text string) (string, error) {
	_, ts, err := s.api.PostMessageContext(ctx, s.channelID, slack.MsgOptionText(text, false))
	if err != nil {
		return "", fmt.Errorf("slack post failed: %w", err)
	}
	return ts, nil
}

func (s *Slack) PostReply(ctx context.Context, threadID, text string) (string, error) {
	_, ts, err := s.api.PostMessageContext(ctx, s.channelID,
		slack.MsgOptionText(text, false),
		slack.MsgOptionTS(threadID),
	)
	if err != nil {
		return "", fmt.Errorf("slack reply failed: %w", err)
	}
	return ts, nil
}

// Run connects via Socket Mode and delivers inbound events to handler until
// ctx is cancelled.
func (s *Slack) Run(ctx context.Context, handler Handler) error {
	auth, err := s.api.AuthTestContext(ctx)
	if err != nil {
		return fmt.Errorf("slack auth test failed: %w", err)
	}
	s.botUserID = auth.UserID

	client := socketmode.New(s.api)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-client.Events:
				if !ok {
					return
				}
				s.dispatch(ctx, client, evt, handler)
			}
		}
	}()

	slog.Info("slack socket mode connecting", "channel", s.channelID)
	return client.RunContext(ctx)
}

func (s *Slack) dispatch(ctx context.Context, client *socketmode.Client, evt socketmode.Event, handler Handler) {
	if evt.Type != socketmode.EventTypeEventsAPI {
		return
	}
	apiEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
	if !ok {
		return
	}
	client.Ack(*evt.Request)

	switch ev := apiEvent.InnerEvent.Data.(type) {
	case *slackevents.MessageEvent:
		handler.HandleMessage(ctx, MessageEvent{
			ChannelID: ev.Channel,
			UserID:    ev.User,
			Text:      ev.Text,
			MessageID: ev.TimeStamp,
			ThreadID:  threadRoot(ev.ThreadTimeStamp, ev.TimeStamp),
			FromBot:   ev.BotID != "" || ev.User == s.botUserID,
			Edited:    ev.SubType == "message_changed",
		})
	case *slackevents.ReactionAddedEvent:
		handler.HandleReaction(ctx, ReactionEvent{
			UserID:    ev.User,
			MessageID: ev.Item.Timestamp,
			Reaction:  ev.Reaction,
		})
	}
}

// threadRoot returns the thread id for a threaded message and "" for a
// top-level one. Slack sets thread_ts == ts on the root message itself.
func threadRoot(threadTS, ts string) string {
	if threadTS == "" || threadTS == ts {
		return ""
	}
	return threadTS
}

// PostAlert posts a news alert or reply opportunity with Block Kit
// formatting and returns the message id so monitors can link replies back.
func (s *Slack) PostAlert(ctx context.Context, alert model.Alert) (string, error) {
	var blocks []slack.Block
	var fallback string

	switch alert.Kind {
	case model.RelevanceReply:
		fallback = fmt.Sprintf("💬 Reply Opportunity: @%s", alert.SourceHandle)
		blocks = replyOpportunityBlocks(alert)
	default:
		emoji := "🗞️"
		if alert.SourceType == "rss" || alert.SourceType == "news" {
			emoji = "📰"
		}
		fallback = fmt.Sprintf("%s News Alert: %s", emoji, alert.Headline)
		blocks = newsAlertBlocks(alert, emoji)
	}

	_, ts, err := s.api.PostMessageContext(ctx, s.channelID,
		slack.MsgOptionText(fallback, false),
		slack.MsgOptionBlocks(blocks...),
	)
	if err != nil {
		return "", fmt.Errorf("slack alert failed: %w", err)
	}
	return ts, nil
}

func newsAlertBlocks(alert model.Alert, emoji string) []slack.Block {
	sourceLine := alert.SourceName + ":"
	if alert.SourceType == "twitter" {
		sourceLine = fmt.Sprintf("@%s just posted:", alert.SourceHandle)
	}

	meta := []string{"Category: " + categoryDisplay(alert.Category)}
	if alert.FollowerCount > 0 {
		meta = append(meta, fmt.Sprintf("Followers: %d", alert.FollowerCount))
	}

	suggested := fmt.Sprintf("📝 *Suggested post:*\n```%s```", alert.Suggested)
	if alert.Urgency == "high" {
		suggested += "\n\n⚡ *React fast — this is breaking news*"
	}

	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, emoji+" News Alert", true, false)),
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType,
			fmt.Sprintf("*%s*\n\"%s\"", sourceLine, alert.Headline), false, false), nil, nil),
		slack.NewContextBlock("", slack.NewTextBlockObject(slack.MarkdownType, strings.Join(meta, " | "), false, false)),
		slack.NewDividerBlock(),
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, suggested, false, false), nil, nil),
	}
	if alert.Link != "" {
		blocks = append(blocks, slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("<%s|View source>", alert.Link), false, false)))
	}
	return blocks
}

func replyOpportunityBlocks(alert model.Alert) []slack.Block {
	meta := []string{fmt.Sprintf("Followers: %d", alert.FollowerCount)}
	if alert.Likes > 0 {
		meta = append(meta, fmt.Sprintf("Likes: %d", alert.Likes))
	}

	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, "💬 Reply Opportunity", true, false)),
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType,
			fmt.Sprintf("*@%s just posted:*\n\"%s\"", alert.SourceHandle, alert.Headline), false, false), nil, nil),
		slack.NewContextBlock("", slack.NewTextBlockObject(slack.MarkdownType, strings.Join(meta, " | "), false, false)),
		slack.NewDividerBlock(),
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType,
			fmt.Sprintf("📝 *Suggested reply:*\n```%s```", alert.Suggested), false, false), nil, nil),
	}
	if alert.Link != "" {
		blocks = append(blocks, slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType,
				fmt.Sprintf("⚡ Post within 30 min for best visibility | <%s|View post>", alert.Link), false, false)))
	}
	return blocks
}

func categoryDisplay(c model.Category) string {
	words := strings.Split(strings.ReplaceAll(string(c), "_", " "), " ")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
