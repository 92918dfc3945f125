package llm

import (
	"fmt"
	"strings"
)

// The generation prompts share one framing: Marks Exchange is a perpetual
// futures platform for global currencies, and every post leads with data,
// not with the brand.

func evaluateSystemPrompt(profile string) string {
	return fmt.Sprintf(`You are the content strategist for Marks Exchange, a perpetual futures trading platform for global currencies - both emerging markets (NGN, ARS, COP) and developed markets (EUR, GBP, JPY, CHF, etc.).

Your job is to evaluate content and decide whether Marks should react to it. If yes, generate the post. If no, skip it.

%s

## DECISION CRITERIA - Be Strict

Only react to content that has SPECIFIC, ACTIONABLE information with real data. Ask yourself: "Does this contain concrete numbers or facts we can reference?" If no, SKIP.

React to: central bank announcements with specific numbers, major currency moves with percentages or price levels, inflation data with actual figures, stablecoin news with concrete details, high-engagement posts explicitly asking about hedging/FX (reply opportunity).

Skip: vague political news, "possible scenarios" without concrete policy or data, general commentary without numbers, speculation or opinion without hard data.

## RESPONSE FORMAT

Return JSON:
{
    "score": 0.0 to 1.0,
    "type": "news" | "reply_opportunity" | "skip",
    "reasoning": "Brief explanation of decision",
    "suggested_content": "The post/reply text if reacting, null if skip"
}`, profile)
}

func evaluateTweetPrompt(content, handle, category string, followers int, engagement string) string {
	return fmt.Sprintf(`Evaluate this tweet and decide whether Marks should react:

Account: @%s
Category: %s
Followers: %d
Engagement: %s

Tweet:
"%s"

Return JSON with your decision and content (if reacting).`, handle, category, followers, engagement, content)
}

func evaluateArticlePrompt(title, summary, sourceName, category string) string {
	if summary == "" {
		summary = "No summary available"
	}
	return fmt.Sprintf(`Evaluate this news article and decide whether Marks should react:

Source: %s
Category: %s

Headline: %s

Summary:
%s

Return JSON with your decision and content (if reacting).`, sourceName, category, title, summary)
}

func newsReactionSystemPrompt(profile string) string {
	return fmt.Sprintf(`You are creating a reactive post for Marks Exchange about breaking news.

Marks Exchange is a perpetual futures trading platform for global currencies.

%s

Guidelines: lead with the news, not with Marks; add context that demonstrates expertise; only mention Marks if there's a natural connection; use "BREAKING:" only for genuinely breaking news; include specific numbers when available; keep it under 280 characters if possible. Don't force a Marks plug, don't be promotional, don't speculate without data.`, profile)
}

func newsReactionPrompt(source, headline, summary, marketContext string) string {
	return fmt.Sprintf(`Create a reactive post about this news:

Source: %s
Headline: %s
Summary: %s

Current market context:
%s

Generate a post that reacts to this news appropriately. If Marks is relevant, mention it naturally. If not, just provide valuable commentary.`, source, headline, summary, marketContext)
}

func replySystemPrompt(profile string) string {
	return fmt.Sprintf(`You are crafting a reply for Marks Exchange's Twitter account.

%s

Guidelines: be helpful first, promotional second; add value, don't just shill; match the tone of the conversation; keep replies under 200 characters where possible; only mention Marks if genuinely relevant. No hashtags in replies. Don't argue or be defensive.`, profile)
}

func replyPrompt(handle string, followers int, tweetContent, accountContext, topic string) string {
	return fmt.Sprintf(`Craft a reply to this tweet:

@%s (%d followers):
"%s"

Context about this account: %s

The conversation is about: %s

Generate a natural reply that adds value. Only mention Marks if genuinely relevant.`, handle, followers, tweetContent, accountContext, topic)
}

func singlePostPrompt(pillar, marketData, voiceSection, avoidTopics, topicHint string) string {
	topicLine := "Choose an engaging topic."
	if topicHint != "" {
		topicLine = "Topic hint: " + topicHint
	}
	return fmt.Sprintf(`Generate a single %s post for Marks Exchange.

%s
%s
Topics to avoid: %s

%s

Return JSON: {"topic": "...", "angle": "...", "content": "..."}`,
		strings.ReplaceAll(pillar, "_", " "), marketData, voiceSection, avoidTopics, topicLine)
}

func weeklyBatchSystemPrompt(profile, pillarSection, voiceFeedback string) string {
	system := fmt.Sprintf(`You are the content strategist for Marks Exchange, a perpetual futures trading platform for global currencies.

%s

## Content Pillars

%s

Guidelines: every post must include specific numbers when relevant; never use corporate speak or "we're excited"; keep posts under 280 characters when possible; use "BREAKING:" only for genuinely breaking news; vary angles within a 30 day window.`, profile, pillarSection)
	if voiceFeedback != "" {
		system += "\n\n## Voice Preferences (learned from feedback)\n\n" + voiceFeedback + "\n\nApply these preferences to your generation."
	}
	return system
}

func weeklyBatchPrompt(weekStart, weekEnd, marketData, platformMetrics, recentNews, avoidTopics string) string {
	return fmt.Sprintf(`Generate 7 content drafts for the week of %s to %s.

## Market Data
%s

## Platform Metrics
%s

## Recent News Headlines
%s

## Topics/Angles to AVOID (used in last 30 days)
%s

Return a JSON array with 7 items:
[{"day": "monday", "pillar": "market_commentary", "topic": "Brief topic description", "angle": "Specific angle/hook", "content": "Full post text"}, ...]

Generate varied, engaging content that follows the voice guidelines.`,
		weekStart, weekEnd, marketData, platformMetrics, recentNews, avoidTopics)
}
