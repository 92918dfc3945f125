// Package model holds the shared domain types for the content agent.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

func normalizeToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, " ", "_")
}

// Pillar is a fixed content category used to scope voice references and topics.
type Pillar string

const (
	PillarMarketCommentary Pillar = "market_commentary"
	PillarEducation        Pillar = "education"
	PillarProduct          Pillar = "product"
	PillarSocialProof      Pillar = "social_proof"
)

func ValidPillars() []Pillar {
	return []Pillar{PillarMarketCommentary, PillarEducation, PillarProduct, PillarSocialProof}
}

// ParsePillar normalizes a user-supplied pillar name. Returns false for
// anything outside the fixed set.
func ParsePillar(s string) (Pillar, bool) {
	p := Pillar(normalizeToken(s))
	for _, v := range ValidPillars() {
		if p == v {
			return v, true
		}
	}
	return "", false
}

// Category classifies monitored accounts and RSS sources.
type Category string

const (
	CategoryNigeria     Category = "nigeria"
	CategoryArgentina   Category = "argentina"
	CategoryColombia    Category = "colombia"
	CategoryGlobalMacro Category = "global_macro"
	CategoryCryptoDefi  Category = "crypto_defi"
	CategoryReplyTarget Category = "reply_target"
)

func ValidCategories() []Category {
	return []Category{
		CategoryNigeria, CategoryArgentina, CategoryColombia,
		CategoryGlobalMacro, CategoryCryptoDefi, CategoryReplyTarget,
	}
}

func ParseCategory(s string) (Category, bool) {
	c := Category(normalizeToken(s))
	for _, v := range ValidCategories() {
		if c == v {
			return v, true
		}
	}
	return "", false
}

// ContentType distinguishes history records by how they were produced.
type ContentType string

const (
	ContentWeeklyPost   ContentType = "weekly_post"
	ContentNewsReaction ContentType = "news_reaction"
	ContentReply        ContentType = "reply"
)

// RelevanceType is the scorer's verdict for an upstream item.
type RelevanceType string

const (
	RelevanceNews  RelevanceType = "news"
	RelevanceReply RelevanceType = "reply_opportunity"
	RelevanceSkip  RelevanceType = "skip"
)

// Account is a monitored or voice-reference Twitter account.
type Account struct {
	ID            uuid.UUID
	Handle        string
	TwitterID     string
	Category      Category
	Priority      int // 1 high, 2 medium, 3 low
	FollowerCount int
	IsVoiceRef    bool
	VoicePillars  []Pillar
	IsActive      bool
	LastTweetID   string
	LastCheckedAt time.Time
	CreatedAt     time.Time
}

// Tweet is an upstream post captured by the Twitter monitor.
type Tweet struct {
	ID               uuid.UUID
	TweetID          string
	AccountID        uuid.UUID
	AccountHandle    string
	Content          string
	TweetCreatedAt   time.Time
	FetchedAt        time.Time
	RelevanceScore   float64
	RelevanceType    RelevanceType
	SuggestedContent string
	Likes            int
	Retweets         int
	AlertMessageID   string // chat message id of the alert, if one was posted
	Actioned         bool
}

// RSSSource is a polled feed.
type RSSSource struct {
	ID            uuid.UUID
	Name          string
	URL           string
	Category      Category
	Keywords      []string
	IsActive      bool
	LastCheckedAt time.Time
	CreatedAt     time.Time
}

// RSSItem is an entry captured from a feed.
type RSSItem struct {
	ID               uuid.UUID
	SourceID         uuid.UUID
	GUID             string
	Title            string
	URL              string
	Summary          string
	PublishedAt      time.Time
	FetchedAt        time.Time
	RelevanceScore   float64
	SuggestedContent string
	AlertMessageID   string
	Actioned         bool
}

// ContentRecord is one generated piece of content kept for variety tracking.
type ContentRecord struct {
	ID            uuid.UUID
	Type          ContentType
	Pillar        Pillar
	Topic         string
	Angle         string
	Content       string
	SourceTweetID string
	SourceAccount string
	CreatedAt     time.Time
	PostedAt      time.Time
}

// VoiceSample is one reference-account post used for style emulation.
type VoiceSample struct {
	ID             uuid.UUID
	AccountID      uuid.UUID
	AccountHandle  string
	TweetID        string
	Content        string
	TweetCreatedAt time.Time
	Likes          int
	Retweets       int
	IsActive       bool
	FetchedAt      time.Time
}

// Feedback is a stored style preference fed back into generation prompts.
type Feedback struct {
	ID        uuid.UUID
	Pillar    Pillar
	Original  string
	Text      string
	ThreadID  string
	CreatedAt time.Time
}
