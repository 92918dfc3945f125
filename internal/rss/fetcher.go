// Package rss fetches feed entries and extracts article text for scoring.
package rss

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/codeGROOVE-dev/retry"
	"github.com/mmcdole/gofeed"
)

const maxArticleChars = 4000

// Item is one feed entry with everything the scorer needs.
type Item struct {
	GUID        string
	Title       string
	URL         string
	Summary     string
	PublishedAt time.Time
}

// Fetcher pulls feeds and article bodies over plain HTTP.
type Fetcher struct {
	parser *gofeed.Parser
	http   *http.Client
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		parser: gofeed.NewParser(),
		http:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch returns the entries of a feed, newest first per the feed's own
// ordering. Transient fetch failures are retried with backoff.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) ([]Item, error) {
	var feed *gofeed.Feed
	err := retry.Do(
		func() error {
			var perr error
			feed, perr = f.parser.ParseURLWithContext(feedURL, ctx)
			return perr
		},
		retry.Attempts(3),
		retry.Delay(2*time.Second),
		retry.MaxDelay(20*time.Second),
		retry.MaxJitter(time.Second),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", feedURL, err)
	}

	items := make([]Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		item := Item{
			GUID:    entry.GUID,
			Title:   strings.TrimSpace(entry.Title),
			URL:     entry.Link,
			Summary: strings.TrimSpace(entry.Description),
		}
		if item.GUID == "" {
			item.GUID = entry.Link
		}
		if entry.PublishedParsed != nil {
			item.PublishedAt = *entry.PublishedParsed
		}
		items = append(items, item)
	}
	return items, nil
}

// ArticleBody fetches an article page and extracts its paragraph text,
// truncated to what a scoring prompt can reasonably carry. Returns the
// empty string when the page yields nothing usable; the caller falls back
// to the feed summary.
func (f *Fetcher) ArticleBody(ctx context.Context, articleURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, articleURL, nil)
	if err != nil {
		return ""
	}
	res, err := f.http.Do(req)
	if err != nil {
		return ""
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return ""
	}

	var b strings.Builder
	doc.Find("article p, main p, p").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		if len(text) < 40 {
			return true
		}
		b.WriteString(text)
		b.WriteString("\n")
		return b.Len() < maxArticleChars
	})

	body := strings.TrimSpace(b.String())
	if len(body) > maxArticleChars {
		body = body[:maxArticleChars]
	}
	return body
}
