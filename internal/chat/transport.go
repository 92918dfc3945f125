// Package chat abstracts the review channel: a message bus with threaded
// replies and reactions. The Slack adapter is the only production
// implementation; tests use in-memory fakes.
package chat

import "context"

// MessageEvent is one inbound chat message.
type MessageEvent struct {
	ChannelID string
	UserID    string
	Text      string
	MessageID string // platform id of this message
	ThreadID  string // root message id when threaded, empty for top-level
	FromBot   bool
	Edited    bool
}

// ReactionEvent is an emoji reaction added to a message.
type ReactionEvent struct {
	UserID    string
	MessageID string // the reacted-to message
	Reaction  string
}

// Handler receives inbound events. Implementations must be safe for
// concurrent calls across threads; ordering is only guaranteed per thread.
type Handler interface {
	HandleMessage(ctx context.Context, ev MessageEvent)
	HandleReaction(ctx context.Context, ev ReactionEvent)
}

// Transport posts outbound messages. Threaded replies are addressed by the
// root message id.
type Transport interface {
	// PostMessage posts a top-level message to the review channel and
	// returns its message id.
	PostMessage(ctx context.Context, text string) (string, error)
	// PostReply posts into an existing thread and returns the message id.
	PostReply(ctx context.Context, threadID, text string) (string, error)
}
