// Package twitter is a minimal v2 API client scoped to what the monitors
// need: user lookup and recent-tweet pagination by cursor.
package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"golang.org/x/oauth2/clientcredentials"
)

const defaultBaseURL = "https://api.twitter.com"

// User is an account as returned by the users endpoint.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Metrics  struct {
		Followers int `json:"followers_count"`
	} `json:"public_metrics"`
}

// Tweet is one post from a user timeline.
type Tweet struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Metrics   struct {
		Likes    int `json:"like_count"`
		Retweets int `json:"retweet_count"`
	} `json:"public_metrics"`
}

// Client talks to the Twitter v2 API with app-only auth. The oauth2
// transport fetches and refreshes the bearer token on demand.
type Client struct {
	http    *http.Client
	baseURL string
}

func NewClient(apiKey, apiSecret, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	creds := clientcredentials.Config{
		ClientID:     apiKey,
		ClientSecret: apiSecret,
		TokenURL:     baseURL + "/oauth2/token",
	}
	return &Client{
		http:    creds.Client(context.Background()),
		baseURL: baseURL,
	}
}

// UserByUsername resolves a handle to its user record.
func (c *Client) UserByUsername(ctx context.Context, username string) (*User, error) {
	endpoint := fmt.Sprintf("%s/2/users/by/username/%s?user.fields=public_metrics",
		c.baseURL, url.PathEscape(username))

	var resp struct {
		Data *User `json:"data"`
	}
	if err := c.get(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("lookup user %s: %w", username, err)
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("lookup user %s: not found", username)
	}
	return resp.Data, nil
}

// UserTweets returns a user's recent original tweets, newest first. A
// non-empty sinceID limits the page to tweets after that cursor.
func (c *Client) UserTweets(ctx context.Context, userID, sinceID string, limit int) ([]Tweet, error) {
	q := url.Values{}
	q.Set("max_results", fmt.Sprintf("%d", limit))
	q.Set("tweet.fields", "created_at,public_metrics")
	q.Set("exclude", "retweets,replies")
	if sinceID != "" {
		q.Set("since_id", sinceID)
	}
	endpoint := fmt.Sprintf("%s/2/users/%s/tweets?%s", c.baseURL, url.PathEscape(userID), q.Encode())

	var resp struct {
		Data []Tweet `json:"data"`
	}
	if err := c.get(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("user tweets %s: %w", userID, err)
	}
	return resp.Data, nil
}

// get fetches and decodes one endpoint, retrying transient failures with
// backoff. Rate limiting (429) and auth errors are not retried; the next
// poll cycle will come around anyway.
func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			res, err := c.http.Do(req)
			if err != nil {
				return err
			}
			defer res.Body.Close()

			switch {
			case res.StatusCode == http.StatusOK:
			case res.StatusCode >= 500:
				return fmt.Errorf("status %d", res.StatusCode)
			default:
				body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
				return retry.Unrecoverable(fmt.Errorf("status %d: %s", res.StatusCode, body))
			}
			return json.NewDecoder(res.Body).Decode(out)
		},
		retry.Attempts(4),
		retry.Delay(time.Second),
		retry.MaxDelay(15*time.Second),
		retry.MaxJitter(time.Second),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
}
