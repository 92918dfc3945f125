// Package news pulls headlines from the Finnhub market-news API as a third
// upstream source alongside the Twitter and feed monitors.
package news

import (
	"context"
	"fmt"
	"strconv"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"
)

// Article is one market-news headline.
type Article struct {
	ExternalID  string
	Headline    string
	Summary     string
	URL         string
	Publisher   string
	PublishedAt time.Time
}

// Client wraps the Finnhub SDK for the crypto news category.
type Client struct {
	api *finnhub.DefaultApiService
}

func NewClient(apiKey string) *Client {
	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	return &Client{api: finnhub.NewAPIClient(cfg).DefaultApi}
}

// Fetch returns the latest crypto headlines, at most limit of them.
func (c *Client) Fetch(ctx context.Context, limit int) ([]Article, error) {
	res, _, err := c.api.MarketNews(ctx).Category("crypto").Execute()
	if err != nil {
		return nil, fmt.Errorf("fetch market news: %w", err)
	}

	var articles []Article
	for _, item := range res {
		if limit > 0 && len(articles) >= limit {
			break
		}
		a := Article{}
		if item.Id != nil {
			a.ExternalID = strconv.FormatInt(*item.Id, 10)
		}
		if item.Headline != nil {
			a.Headline = *item.Headline
		}
		if item.Summary != nil {
			a.Summary = *item.Summary
		}
		if item.Url != nil {
			a.URL = *item.Url
		}
		if item.Source != nil {
			a.Publisher = *item.Source
		}
		if item.Datetime != nil {
			a.PublishedAt = time.Unix(*item.Datetime, 0)
		}
		if a.ExternalID == "" || a.Headline == "" {
			continue
		}
		articles = append(articles, a)
	}
	return articles, nil
}
